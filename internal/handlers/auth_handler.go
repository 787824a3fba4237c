package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/auth"
	"github.com/SAP-F-2025/exam-portal/internal/events"
	"github.com/SAP-F-2025/exam-portal/internal/guard"
	"github.com/SAP-F-2025/exam-portal/internal/models"
	"github.com/SAP-F-2025/exam-portal/internal/session"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

// LoginPageResponse tells the login page which methods are offered.
type LoginPageResponse struct {
	Methods    []string `json:"methods"`
	CasdoorURL string   `json:"casdoor_url,omitempty"`
	Next       string   `json:"next,omitempty"`
}

type AuthHandler struct {
	BaseHandler
	password  auth.Authenticator
	casdoor   *auth.CasdoorAuthenticator
	client    *api.Client
	publisher events.EventPublisher
	cookies   session.Options
}

func NewAuthHandler(
	password auth.Authenticator,
	casdoor *auth.CasdoorAuthenticator,
	client *api.Client,
	publisher events.EventPublisher,
	cookies session.Options,
	validator *validator.Validator,
	logger utils.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		password:    password,
		casdoor:     casdoor,
		client:      client,
		publisher:   publisher,
		cookies:     cookies,
	}
}

// LoginPage describes the available login methods.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	resp := LoginPageResponse{
		Methods: []string{auth.MethodPassword},
		Next:    guard.SafeNext(c.Query("next"), ""),
	}
	if h.casdoor != nil {
		state, cookie := h.casdoor.NewState()
		http.SetCookie(c.Writer, cookie)
		resp.Methods = append(resp.Methods, auth.MethodCasdoor)
		resp.CasdoorURL = h.casdoor.SigninURL(state)
	}
	c.JSON(http.StatusOK, resp)
}

// Login performs a password login. JSON callers get a LoginResponse, form
// posts are redirected.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	h.LogRequest(c, "Password login", "email", req.Email)

	ctx := h.backendContext(c)
	s, err := h.password.Login(ctx, auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, auth.ErrUnknownRole) {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "El usuario no tiene un rol asignado"})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	redirect := h.startSession(c, s, auth.MethodPassword, req.Next)

	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{User: s.User, Redirect: redirect})
}

// Callback completes a Casdoor login. The state must match the cookie set by
// LoginPage for this browser.
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.casdoor == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Inicio de sesión externo no disponible"})
		return
	}

	expected, _ := c.Cookie(auth.StateCookie)
	http.SetCookie(c.Writer, h.casdoor.ClearStateCookie())

	s, err := h.casdoor.Exchange(h.backendContext(c), c.Query("code"), c.Query("state"), expected)
	if err != nil {
		h.LogError(c, err, "Casdoor login failed")
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Error al iniciar sesión",
			Details: err.Error(),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, h.startSession(c, s, auth.MethodCasdoor, ""))
}

// Logout clears the portal cookies and ends the backend session on a best
// effort basis.
func (h *AuthHandler) Logout(c *gin.Context) {
	vals := session.Read(c.Request)
	ctx := h.backendContext(c)

	if err := h.client.Logout(ctx); err != nil {
		utils.FromContext(c, h.logger).Warn("Backend logout failed", "error", err)
	}

	session.Clear(c.Writer, h.cookies)
	if _, err := c.Cookie(auth.TokenCookie); err == nil {
		http.SetCookie(c.Writer, &http.Cookie{Name: auth.TokenCookie, Path: "/", MaxAge: -1, HttpOnly: true})
	}

	events.PublishSafe(ctx, h.publisher, h.logger.Slog(), events.TypeLogout, events.LogoutData{Role: vals.Role})
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

// startSession relays backend cookies, issues the portal cookies and returns
// where the browser should go next.
func (h *AuthHandler) startSession(c *gin.Context, s *models.Session, method, next string) string {
	for _, line := range s.BackendCookies {
		c.Writer.Header().Add("Set-Cookie", line)
	}
	session.Set(c.Writer, h.cookies, s.Role, s.IsHead)

	root, _ := guard.AllowedRoot(string(s.Role), headValue(s.IsHead))
	redirect := guard.SafeNext(next, root)
	if decision := guard.Evaluate(pathOnly(redirect), "", string(s.Role), headValue(s.IsHead)); decision.Action == guard.Redirect {
		redirect = decision.Location
	}

	events.PublishSafe(h.backendContext(c), h.publisher, h.logger.Slog(), events.TypeLogin, events.LoginData{
		UserID: s.User.ID,
		Role:   string(s.Role),
		IsHead: s.IsHead,
		Method: method,
	})
	return redirect
}

func headValue(isHead bool) string {
	if isHead {
		return "1"
	}
	return "0"
}

func pathOnly(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		return target[:i]
	}
	return target
}

func isFormPost(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == gin.MIMEPOSTForm || ct == gin.MIMEMultipartPOSTForm
}
