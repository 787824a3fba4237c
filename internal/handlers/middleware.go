package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	uuid2 "github.com/google/uuid"

	"github.com/SAP-F-2025/exam-portal/internal/events"
	"github.com/SAP-F-2025/exam-portal/internal/guard"
	"github.com/SAP-F-2025/exam-portal/internal/session"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
)

// SetupMiddleware sets up common middleware for the Gin router. The route
// guard sits between the logging and CORS middleware.
func SetupMiddleware(router *gin.Engine, logger utils.Logger, routeGuard gin.HandlerFunc) {
	// Request ID middleware
	router.Use(RequestIDMiddleware())

	// Recovery middleware
	router.Use(gin.Recovery())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(logger))

	// Custom logging middleware
	router.Use(utils.LoggerMiddleware(logger))

	// Security headers middleware
	router.Use(SecurityMiddleware())

	if routeGuard != nil {
		router.Use(routeGuard)
	}

	router.Use(CORSMiddleware())
}

// RouteGuard applies guard.Evaluate to every request. Paths matching one of
// skipPaths (exact, or as a prefix when it ends in "/") bypass the decision
// but still carry the marker header.
func RouteGuard(skipPaths []string, publisher events.EventPublisher, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(guard.MarkerHeader, guard.MarkerHeaderValue)

		path := c.Request.URL.Path
		if c.Request.Method == http.MethodOptions || skipped(path, skipPaths) {
			c.Next()
			return
		}

		vals := session.Read(c.Request)
		decision := guard.Evaluate(path, c.Request.URL.RawQuery, vals.Role, vals.Head)

		if decision.Action == guard.Redirect {
			if decision.Reason == guard.ReasonCrossRole {
				ctx := events.WithRequestID(c.Request.Context(), c.GetString("request_id"))
				events.PublishSafe(ctx, publisher, utils.FromContext(c, logger).Slog(), events.TypeGuardDenied, events.GuardDeniedData{
					Path:     path,
					Role:     vals.Role,
					Location: decision.Location,
				})
			}
			c.Redirect(http.StatusTemporaryRedirect, decision.Location)
			c.Abort()
			return
		}

		c.Set(sessionKey, vals)
		c.Set(rootKey, decision.Root)
		c.Next()
	}
}

func skipped(path string, skipPaths []string) bool {
	for _, p := range skipPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid2.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, "+guard.MarkerHeader)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "43200")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
