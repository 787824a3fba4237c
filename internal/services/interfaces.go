package services

import (
	"context"
	"io"
	"net/url"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

// QuestionCatalog lists questions decorated with topic and subject names.
type QuestionCatalog interface {
	ListQuestions(ctx context.Context, query url.Values) ([]models.QuestionView, error)
	ListTopics(ctx context.Context, query url.Values) ([]models.TopicView, error)
	// Forget drops cached names after a subject or topic changed.
	ForgetSubject(ctx context.Context, subjectID int)
	ForgetTopic(ctx context.Context, topicID int)
}

// OverviewService assembles the landing view of each dashboard.
type OverviewService interface {
	Admin(ctx context.Context) (*models.AdminOverview, error)
	Teacher(ctx context.Context, isHead bool) (*models.TeacherOverview, error)
	Student(ctx context.Context) (*models.StudentOverview, error)
}

// ReportService serves backend reports as JSON or spreadsheet.
type ReportService interface {
	Get(ctx context.Context, kind string, query url.Values) (*models.Report, error)
	ExportXLSX(ctx context.Context, kind string, query url.Values, w io.Writer) error
}

type ServiceManager interface {
	Catalog() QuestionCatalog
	Overview() OverviewService
	Reports() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
