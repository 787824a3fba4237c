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

// TeacherHandler manages the question catalog: topics, subtopics and
// questions.
type TeacherHandler struct {
	BaseHandler
	client  *api.Client
	catalog services.QuestionCatalog
}

func NewTeacherHandler(client *api.Client, catalog services.QuestionCatalog, validator *validator.Validator, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		client:      client,
		catalog:     catalog,
	}
}

func (h *TeacherHandler) Register(g *gin.RouterGroup) {
	base := &h.BaseHandler

	g.GET("/subjects", listHandler(base, h.client.Subjects))

	topics := g.Group("/topics")
	{
		topics.GET("", h.ListTopics)
		topics.GET("/:id", getHandler(base, h.client.Topics))
		topics.POST("", createHandler[models.Topic, models.TopicRequest](base, h.client.Topics))
		topics.PUT("/:id", updateHandler[models.Topic, models.TopicRequest](base, h.client.Topics, h.forgetTopic))
		topics.DELETE("/:id", deleteHandler(base, h.client.Topics, h.forgetTopic))
	}

	subtopics := g.Group("/subtopics")
	{
		subtopics.GET("", listHandler(base, h.client.Subtopics))
		subtopics.GET("/:id", getHandler(base, h.client.Subtopics))
		subtopics.POST("", createHandler[models.Subtopic, models.SubtopicRequest](base, h.client.Subtopics))
		subtopics.PUT("/:id", updateHandler[models.Subtopic, models.SubtopicRequest](base, h.client.Subtopics, nil))
		subtopics.DELETE("/:id", deleteHandler(base, h.client.Subtopics, nil))
	}

	questions := g.Group("/questions")
	{
		questions.GET("", h.ListQuestions)
		questions.GET("/:id", getHandler(base, h.client.Questions))
		questions.POST("", createHandler[models.Question, models.QuestionRequest](base, h.client.Questions))
		questions.PUT("/:id", updateHandler[models.Question, models.QuestionRequest](base, h.client.Questions, nil))
		questions.DELETE("/:id", deleteHandler(base, h.client.Questions, nil))
	}
}

// ListQuestions returns the questions with topic and subject names filled in
// where they could be resolved.
func (h *TeacherHandler) ListQuestions(c *gin.Context) {
	h.LogRequest(c, "Listing questions")
	views, err := h.catalog.ListQuestions(h.backendContext(c), c.Request.URL.Query())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TeacherHandler) ListTopics(c *gin.Context) {
	h.LogRequest(c, "Listing topics")
	views, err := h.catalog.ListTopics(h.backendContext(c), c.Request.URL.Query())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TeacherHandler) forgetTopic(c *gin.Context, id int) {
	h.catalog.ForgetTopic(c.Request.Context(), id)
}
