package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/events"
	"github.com/SAP-F-2025/exam-portal/internal/models"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

// StudentHandler serves the student dashboard. The backend scopes every call
// to the student owning the forwarded session.
type StudentHandler struct {
	BaseHandler
	client    *api.Client
	publisher events.EventPublisher
}

func NewStudentHandler(client *api.Client, publisher events.EventPublisher, validator *validator.Validator, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		client:      client,
		publisher:   publisher,
	}
}

func (h *StudentHandler) Register(g *gin.RouterGroup) {
	g.GET("/exams/:id", getHandler(&h.BaseHandler, h.client.Exams))
	g.POST("/exams/:id/answers", h.SubmitAnswers)
	g.GET("/exams/:id/results", h.GetResults)
	g.GET("/results", listHandler(&h.BaseHandler, h.client.Answers))
	g.POST("/reevaluations", h.RequestReevaluation)
	g.GET("/reevaluations", listHandler(&h.BaseHandler, h.client.Reevaluations))
}

func (h *StudentHandler) SubmitAnswers(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	var req models.AnswerSubmitRequest
	if !h.bind(c, &req) {
		return
	}
	h.LogRequest(c, "Submitting answers", "exam_id", examID, "count", len(req.Answers))

	answers, err := h.client.SubmitAnswers(h.backendContext(c), examID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, answers)
}

// GetResults lists the caller's graded answers for one exam.
func (h *StudentHandler) GetResults(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	h.LogRequest(c, "Getting exam results", "exam_id", examID)

	answers, err := h.client.ExamAnswers(h.backendContext(c), examID, nil)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *StudentHandler) RequestReevaluation(c *gin.Context) {
	var req models.ReevaluationCreateRequest
	if !h.bind(c, &req) {
		return
	}
	h.LogRequest(c, "Requesting reevaluation", "answer_id", req.AnswerID)

	ctx := h.backendContext(c)
	reevaluation, err := h.client.Reevaluations.Create(ctx, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	events.PublishSafe(ctx, h.publisher, h.logger.Slog(), events.TypeReevaluationRequested, events.ReevaluationRequestedData{
		ReevaluationID: reevaluation.ID,
		AnswerID:       req.AnswerID,
	})
	c.JSON(http.StatusCreated, reevaluation)
}
