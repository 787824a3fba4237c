package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/models"
	"github.com/SAP-F-2025/exam-portal/internal/services"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

// AdminHandler manages users, subjects and system parameters.
type AdminHandler struct {
	BaseHandler
	client  *api.Client
	catalog services.QuestionCatalog
}

func NewAdminHandler(client *api.Client, catalog services.QuestionCatalog, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		client:      client,
		catalog:     catalog,
	}
}

func (h *AdminHandler) Register(g *gin.RouterGroup) {
	base := &h.BaseHandler

	users := g.Group("/users")
	{
		users.GET("", listHandler(base, h.client.Users))
		users.GET("/:id", getHandler(base, h.client.Users))
		users.POST("", createHandler[models.User, models.UserCreateRequest](base, h.client.Users))
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", deleteHandler(base, h.client.Users, nil))
	}

	g.GET("/teachers", listHandler(base, h.client.Teachers))
	g.GET("/teachers/:id", getHandler(base, h.client.Teachers))
	g.GET("/students", listHandler(base, h.client.Students))
	g.GET("/students/:id", getHandler(base, h.client.Students))

	subjects := g.Group("/subjects")
	{
		subjects.GET("", listHandler(base, h.client.Subjects))
		subjects.GET("/:id", getHandler(base, h.client.Subjects))
		subjects.POST("", createHandler[models.Subject, models.SubjectRequest](base, h.client.Subjects))
		subjects.PUT("/:id", updateHandler[models.Subject, models.SubjectRequest](base, h.client.Subjects, h.forgetSubject))
		subjects.DELETE("/:id", deleteHandler(base, h.client.Subjects, h.forgetSubject))
	}

	g.GET("/parameters", listHandler(base, h.client.Parameters))
	g.PUT("/parameters/:id", updateHandler[models.Parameter, models.ParameterUpdateRequest](base, h.client.Parameters, nil))
}

// UpdateUser applies a partial update. Only the fields present are sent.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req models.UserUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	h.LogRequest(c, "Updating user", "user_id", id)
	user, err := h.client.Users.Patch(h.backendContext(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) forgetSubject(c *gin.Context, id int) {
	h.catalog.ForgetSubject(c.Request.Context(), id)
}
