package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/SAP-F-2025/exam-portal/internal/config"
	"github.com/SAP-F-2025/exam-portal/internal/models"
)

// TokenCookie carries the Casdoor access token to the backend.
const TokenCookie = "access_token"

// StateCookie binds an SSO round trip to the browser that started it.
const StateCookie = "aeg_oauth_state"

const (
	headTeacherKey = "head_teacher"
	stateTTL       = 10 * time.Minute
)

var (
	ErrMissingCode   = errors.New("missing authorization code")
	ErrStateMismatch = errors.New("oauth state does not match")
)

// casdoorClient is the part of the Casdoor SDK used for the SSO flow.
type casdoorClient interface {
	GetSigninUrl(redirectURI string) string
	GetOAuthToken(code string, state string) (*oauth2.Token, error)
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthenticator implements the OAuth authorization code flow against
// Casdoor.
type CasdoorAuthenticator struct {
	client      casdoorClient
	redirectURL string
	secure      bool
}

func NewCasdoorAuthenticator(cfg config.CasdoorConfig, secureCookies bool) *CasdoorAuthenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorAuthenticator{client: client, redirectURL: cfg.RedirectURL, secure: secureCookies}
}

// NewState returns a fresh OAuth state and the HttpOnly cookie that stores it
// until the callback.
func (a *CasdoorAuthenticator) NewState() (string, *http.Cookie) {
	state := uuid.NewString()
	return state, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/auth/login",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearStateCookie expires the cookie issued by NewState.
func (a *CasdoorAuthenticator) ClearStateCookie() *http.Cookie {
	return &http.Cookie{
		Name:     StateCookie,
		Path:     "/auth/login",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SigninURL is where the browser is sent to start SSO. The SDK fills the
// state parameter with the application name; it is replaced with state.
func (a *CasdoorAuthenticator) SigninURL(state string) string {
	raw := a.client.GetSigninUrl(a.redirectURL)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// Exchange completes the flow with the code Casdoor sent to the callback.
// expectedState is the value stored by NewState for this browser.
func (a *CasdoorAuthenticator) Exchange(ctx context.Context, code, state, expectedState string) (*models.Session, error) {
	if expectedState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		return nil, ErrStateMismatch
	}
	if code == "" {
		return nil, ErrMissingCode
	}
	token, err := a.client.GetOAuthToken(code, state)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	claims, err := a.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	session, err := NewSession(userFromClaims(claims))
	if err != nil {
		return nil, err
	}
	cookie := &http.Cookie{
		Name:     TokenCookie,
		Value:    token.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !token.Expiry.IsZero() {
		cookie.MaxAge = int(time.Until(token.Expiry).Seconds())
	}
	session.BackendCookies = []string{cookie.String()}
	return session, nil
}

func userFromClaims(claims *casdoorsdk.Claims) models.User {
	u := claims.User
	user := models.User{
		FullName:      u.DisplayName,
		Email:         u.Email,
		Role:          casdoorRole(&u),
		IsHeadTeacher: isHeadTeacher(&u),
		Active:        !u.IsForbidden,
	}
	if id, err := strconv.Atoi(u.Properties["user_id"]); err == nil {
		user.ID = id
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		user.AvatarURL = &avatar
	}
	return user
}

// casdoorRole prefers admin over any other role, then the first mapped role,
// then the user type.
func casdoorRole(u *casdoorsdk.User) models.UserRole {
	if u.IsAdmin {
		return models.RoleAdmin
	}
	var roles []models.UserRole
	for _, r := range u.Roles {
		if r == nil {
			continue
		}
		roles = append(roles, mapCasdoorRole(r.Name))
	}
	if slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return mapCasdoorRole(u.Type)
}

func mapCasdoorRole(name string) models.UserRole {
	switch strings.ToLower(name) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "teacher", "instructor", "educator", "head_teacher":
		return models.RoleTeacher
	default:
		return models.RoleStudent
	}
}

func isHeadTeacher(u *casdoorsdk.User) bool {
	if strings.EqualFold(u.Tag, headTeacherKey) {
		return true
	}
	if v, err := strconv.ParseBool(u.Properties[headTeacherKey]); err == nil && v {
		return true
	}
	for _, r := range u.Roles {
		if r != nil && strings.EqualFold(r.Name, headTeacherKey) {
			return true
		}
	}
	return false
}
