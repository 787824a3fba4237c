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

// AssessmentHandler covers exams, grading, reevaluations and, for head
// teachers, exam approval.
type AssessmentHandler struct {
	BaseHandler
	client    *api.Client
	publisher events.EventPublisher
}

func NewAssessmentHandler(client *api.Client, publisher events.EventPublisher, validator *validator.Validator, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		client:      client,
		publisher:   publisher,
	}
}

func (h *AssessmentHandler) Register(g *gin.RouterGroup) {
	base := &h.BaseHandler

	exams := g.Group("/exams")
	{
		exams.GET("", listHandler(base, h.client.Exams))
		exams.GET("/:id", getHandler(base, h.client.Exams))
		exams.POST("", createHandler[models.Exam, models.ExamRequest](base, h.client.Exams))
		exams.PUT("/:id", updateHandler[models.Exam, models.ExamRequest](base, h.client.Exams, nil))
		exams.DELETE("/:id", deleteHandler(base, h.client.Exams, nil))
		exams.GET("/:id/students", h.GetExamStudents)
		exams.GET("/:id/answers", h.GetExamAnswers)
	}

	g.PATCH("/answers/:id/grade", h.GradeAnswer)

	g.GET("/reevaluations", listHandler(base, h.client.Reevaluations))
	g.PATCH("/reevaluations/:id", h.ResolveReevaluation)
}

// RegisterApprovals adds the head teacher only routes.
func (h *AssessmentHandler) RegisterApprovals(g *gin.RouterGroup) {
	g.GET("/approvals", h.ListPendingApprovals)
	g.POST("/approvals/:id", h.ApproveExam)
}

func (h *AssessmentHandler) GetExamStudents(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Getting exam students", "exam_id", id)

	students, err := h.client.ExamStudents(h.backendContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetExamAnswers lists the answers of an exam, optionally for ?student_id=.
func (h *AssessmentHandler) GetExamAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	studentID, ok := h.optionalIntQuery(c, "student_id")
	if !ok {
		return
	}
	h.LogRequest(c, "Getting exam answers", "exam_id", id)

	answers, err := h.client.ExamAnswers(h.backendContext(c), id, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *AssessmentHandler) GradeAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req models.GradeRequest
	if !h.bind(c, &req) {
		return
	}
	h.LogRequest(c, "Grading answer", "answer_id", id, "score", req.Score)

	answer, err := h.client.GradeAnswer(h.backendContext(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *AssessmentHandler) ResolveReevaluation(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req models.ReevaluationResolveRequest
	if !h.bind(c, &req) {
		return
	}
	h.LogRequest(c, "Resolving reevaluation", "reevaluation_id", id, "status", req.Status)

	reevaluation, err := h.client.Reevaluations.Patch(h.backendContext(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reevaluation)
}

// ListPendingApprovals lists published exams still waiting for approval.
func (h *AssessmentHandler) ListPendingApprovals(c *gin.Context) {
	h.LogRequest(c, "Listing pending approvals")

	query := c.Request.URL.Query()
	query.Set("is_approved", "false")
	if query.Get("status") == "" {
		query.Set("status", string(models.ExamPublished))
	}

	exams, err := h.client.Exams.List(h.backendContext(c), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

// ApproveExam records the head teacher's approval. The body is optional.
func (h *AssessmentHandler) ApproveExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req models.ApproveExamRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	h.LogRequest(c, "Approving exam", "exam_id", id)

	ctx := h.backendContext(c)
	approval, err := h.client.ApproveExam(ctx, id, req.Comment)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	events.PublishSafe(ctx, h.publisher, h.logger.Slog(), events.TypeExamApproved, events.ExamApprovedData{
		ExamID:     id,
		ApprovalID: approval.ID,
	})
	c.JSON(http.StatusCreated, approval)
}
