package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/services"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the landing view of every dashboard and the
// report pages shared by admins and teachers.
type DashboardHandler struct {
	BaseHandler
	overview services.OverviewService
	reports  services.ReportService
}

func NewDashboardHandler(overview services.OverviewService, reports services.ReportService, validator *validator.Validator, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		overview:    overview,
		reports:     reports,
	}
}

func (h *DashboardHandler) AdminOverview(c *gin.Context) {
	h.LogRequest(c, "Getting admin overview")
	out, err := h.overview.Admin(h.backendContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// TeacherOverview serves both teacher dashboards; head teachers also get the
// pending approval count.
func (h *DashboardHandler) TeacherOverview(c *gin.Context) {
	head := isHeadTeacher(c)
	h.LogRequest(c, "Getting teacher overview", "head_teacher", head)
	out, err := h.overview.Teacher(h.backendContext(c), head)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) StudentOverview(c *gin.Context) {
	h.LogRequest(c, "Getting student overview")
	out, err := h.overview.Student(h.backendContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetReport returns a backend report as JSON. The query string is passed on
// as report filters.
func (h *DashboardHandler) GetReport(c *gin.Context) {
	kind := c.Param("kind")
	h.LogRequest(c, "Getting report", "kind", kind)

	report, err := h.reports.Get(h.backendContext(c), kind, c.Request.URL.Query())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportReport returns the report as an xlsx download.
func (h *DashboardHandler) ExportReport(c *gin.Context) {
	kind := c.Param("kind")
	h.LogRequest(c, "Exporting report", "kind", kind)

	var buf bytes.Buffer
	if err := h.reports.ExportXLSX(h.backendContext(c), kind, c.Request.URL.Query(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, strings.ReplaceAll(services.SheetName(kind), `"`, "_")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
