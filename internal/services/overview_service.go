package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/models"
)

type overviewService struct {
	client *api.Client
	logger *slog.Logger
}

func NewOverviewService(client *api.Client, logger *slog.Logger) OverviewService {
	return &overviewService{client: client, logger: logger}
}

// Admin counts the main collections. Any failed call fails the overview.
func (s *overviewService) Admin(ctx context.Context) (*models.AdminOverview, error) {
	var out models.AdminOverview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.client.Users.List(ctx, nil)
		out.Users = len(users)
		return err
	})
	g.Go(func() error {
		teachers, err := s.client.Teachers.List(ctx, nil)
		out.Teachers = len(teachers)
		return err
	})
	g.Go(func() error {
		students, err := s.client.Students.List(ctx, nil)
		out.Students = len(students)
		return err
	})
	g.Go(func() error {
		subjects, err := s.client.Subjects.List(ctx, nil)
		out.Subjects = len(subjects)
		return err
	})
	g.Go(func() error {
		exams, err := s.client.Exams.List(ctx, nil)
		out.Exams = len(exams)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *overviewService) Teacher(ctx context.Context, isHead bool) (*models.TeacherOverview, error) {
	me, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	teacherID := me.ID
	if me.TeacherID != nil {
		teacherID = *me.TeacherID
	}
	byTeacher := url.Values{"teacher_id": {strconv.Itoa(teacherID)}}

	out := &models.TeacherOverview{User: *me}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		subjects, err := s.client.TeacherSubjects(gctx, teacherID)
		out.Subjects = subjects
		return err
	})
	g.Go(func() error {
		exams, err := s.client.Exams.List(gctx, byTeacher)
		out.Exams = exams
		return err
	})
	g.Go(func() error {
		q := url.Values{"teacher_id": {strconv.Itoa(teacherID)}, "status": {string(models.ReevaluationPending)}}
		pending, err := s.client.Reevaluations.List(gctx, q)
		out.PendingReevaluations = len(pending)
		return err
	})
	if isHead {
		g.Go(func() error {
			q := url.Values{"is_approved": {"false"}, "status": {string(models.ExamPublished)}}
			exams, err := s.client.Exams.List(gctx, q)
			n := len(exams)
			out.PendingApprovals = &n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *overviewService) Student(ctx context.Context) (*models.StudentOverview, error) {
	me, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	if me.StudentID == nil {
		return nil, &api.Error{
			Message: "El usuario no tiene un registro de estudiante",
			Status:  http.StatusNotFound,
			Detail:  fmt.Sprintf("user %d has no student_id", me.ID),
		}
	}

	exams, err := s.client.StudentExams(ctx, *me.StudentID)
	if err != nil {
		return nil, err
	}
	return &models.StudentOverview{User: *me, Exams: exams}, nil
}
