package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/events"
	"github.com/SAP-F-2025/exam-portal/internal/guard"
	"github.com/SAP-F-2025/exam-portal/internal/session"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

const (
	sessionKey = "session"
	rootKey    = "allowed_root"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries what every handler needs: logging, validation and the
// translation of backend errors into responses.
type BaseHandler struct {
	logger    utils.Logger
	validator *validator.Validator
}

func NewBaseHandler(logger utils.Logger, validator *validator.Validator) BaseHandler {
	return BaseHandler{logger: logger, validator: validator}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.FromContext(c, h.logger).Error(msg, append(args, "error", err)...)
}

// backendContext derives the context for backend calls: the browser cookies
// minus the portal's own ones, and the request ID.
func (h *BaseHandler) backendContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()

	var forward []*http.Cookie
	for _, ck := range c.Request.Cookies() {
		if !session.IsOwn(ck.Name) {
			forward = append(forward, ck)
		}
	}
	ctx = api.WithCookies(ctx, forward)

	if id := c.GetString("request_id"); id != "" {
		ctx = api.WithRequestID(ctx, id)
		ctx = events.WithRequestID(ctx, id)
	}
	return ctx
}

// bind decodes the body into req and validates it. On failure the response
// has already been written.
func (h *BaseHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Solicitud inválida",
			Details: err.Error(),
		})
		return false
	}
	if errs := h.validator.Validate(req); errs != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Datos inválidos",
			Details: errs,
		})
		return false
	}
	return true
}

// parseIDParam returns 0 after writing a 400 when the parameter is not a
// positive integer.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) int {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		details := "must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return id
}

// optionalIntQuery parses an optional integer query parameter. ok is false
// when the value is present but malformed; the response is then written.
func (h *BaseHandler) optionalIntQuery(c *gin.Context, key string) (value *int, ok bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + key,
			Details: err.Error(),
		})
		return nil, false
	}
	return &v, true
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Datos inválidos",
			Details: validationErrors,
		})
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		switch {
		case status == 0:
			// Transport failure or undecodable response.
			status = http.StatusBadGateway
		case status < 400:
			status = http.StatusBadGateway
		}
		if status >= 500 {
			h.LogError(c, err, "Backend call failed", "status", apiErr.Status)
		}
		resp := ErrorResponse{Message: apiErr.Message}
		if apiErr.Detail != "" {
			resp.Details = apiErr.Detail
		}
		c.JSON(status, resp)
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Message: "El servidor tardó demasiado en responder"})
		return
	}

	h.LogError(c, err, "Unexpected service error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: "Error interno del servidor",
	})
}

// sessionFrom returns the cookie values stored by RouteGuard.
func sessionFrom(c *gin.Context) session.Values {
	if v, ok := c.Get(sessionKey); ok {
		if vals, ok := v.(session.Values); ok {
			return vals
		}
	}
	return session.Read(c.Request)
}

// isHeadTeacher reports whether the request was admitted under the head
// teacher dashboard.
func isHeadTeacher(c *gin.Context) bool {
	if root := c.GetString(rootKey); root != "" {
		return root == guard.HeadTeacherRoot
	}
	vals := sessionFrom(c)
	root, _ := guard.AllowedRoot(vals.Role, vals.Head)
	return root == guard.HeadTeacherRoot
}
