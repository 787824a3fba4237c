package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/auth"
	"github.com/SAP-F-2025/exam-portal/internal/events"
	"github.com/SAP-F-2025/exam-portal/internal/guard"
	"github.com/SAP-F-2025/exam-portal/internal/services"
	"github.com/SAP-F-2025/exam-portal/internal/session"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

const healthTimeout = 3 * time.Second

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Client    *api.Client
	Services  services.ServiceManager
	Validator *validator.Validator
	Logger    utils.Logger
	Publisher events.EventPublisher

	Password auth.Authenticator
	// Casdoor is nil when SSO is not configured.
	Casdoor *auth.CasdoorAuthenticator

	Cookies        session.Options
	GuardSkipPaths []string
}

type HandlerManager struct {
	authHandler       *AuthHandler
	dashboardHandler  *DashboardHandler
	adminHandler      *AdminHandler
	teacherHandler    *TeacherHandler
	assessmentHandler *AssessmentHandler
	studentHandler    *StudentHandler

	services       services.ServiceManager
	publisher      events.EventPublisher
	logger         utils.Logger
	guardSkipPaths []string
}

func NewHandlerManager(deps Dependencies) *HandlerManager {
	sm := deps.Services
	return &HandlerManager{
		authHandler:       NewAuthHandler(deps.Password, deps.Casdoor, deps.Client, deps.Publisher, deps.Cookies, deps.Validator, deps.Logger),
		dashboardHandler:  NewDashboardHandler(sm.Overview(), sm.Reports(), deps.Validator, deps.Logger),
		adminHandler:      NewAdminHandler(deps.Client, sm.Catalog(), deps.Validator, deps.Logger),
		teacherHandler:    NewTeacherHandler(deps.Client, sm.Catalog(), deps.Validator, deps.Logger),
		assessmentHandler: NewAssessmentHandler(deps.Client, deps.Publisher, deps.Validator, deps.Logger),
		studentHandler:    NewStudentHandler(deps.Client, deps.Publisher, deps.Validator, deps.Logger),
		services:          sm,
		publisher:         deps.Publisher,
		logger:            deps.Logger,
		guardSkipPaths:    deps.GuardSkipPaths,
	}
}

// NewRouter builds the engine with middleware and routes. Trailing slash
// redirects are disabled because gin issues them before any middleware runs.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	SetupMiddleware(router, hm.logger, hm.RouteGuard())
	hm.SetupRoutes(router)
	return router
}

// RouteGuard returns the guard middleware configured for this manager.
func (hm *HandlerManager) RouteGuard() gin.HandlerFunc {
	return RouteGuard(hm.guardSkipPaths, hm.publisher, hm.logger)
}

// SetupRoutes sets up all routes. Access control is done by the route guard
// middleware, so the dashboard groups carry no role middleware of their own.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.Health)

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login", hm.authHandler.LoginPage)
		authGroup.POST("/login", hm.authHandler.Login)
		authGroup.GET("/login/callback", hm.authHandler.Callback)
		authGroup.POST("/logout", hm.authHandler.Logout)
	}

	// Admin dashboard
	admin := router.Group(guard.AdminRoot)
	{
		admin.GET("", hm.dashboardHandler.AdminOverview)
		admin.GET("/reports/:kind", hm.dashboardHandler.GetReport)
		admin.GET("/reports/:kind/export", hm.dashboardHandler.ExportReport)
		hm.adminHandler.Register(admin)
	}

	// Teacher and head teacher dashboards share everything but approvals
	for _, root := range []string{guard.TeacherRoot, guard.HeadTeacherRoot} {
		teacher := router.Group(root)
		teacher.GET("", hm.dashboardHandler.TeacherOverview)
		teacher.GET("/reports/:kind", hm.dashboardHandler.GetReport)
		teacher.GET("/reports/:kind/export", hm.dashboardHandler.ExportReport)
		hm.teacherHandler.Register(teacher)
		hm.assessmentHandler.Register(teacher)
		if root == guard.HeadTeacherRoot {
			hm.assessmentHandler.RegisterApprovals(teacher)
		}
	}

	// Student dashboard
	student := router.Group(guard.StudentRoot)
	{
		student.GET("", hm.dashboardHandler.StudentOverview)
		hm.studentHandler.Register(student)
	}
}

// Health reports liveness and whether the backend is reachable.
func (hm *HandlerManager) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := hm.services.HealthCheck(ctx); err != nil {
		utils.FromContext(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": "exam-portal",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exam-portal",
	})
}
