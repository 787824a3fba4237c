package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

// Login authenticates against the backend. The returned cookies are the raw
// Set-Cookie lines of the backend session, to be relayed to the browser.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, []string, error) {
	body := map[string]string{"email": email, "password": password}

	var raw json.RawMessage
	header, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: body, action: "iniciar sesión"}, &raw)
	if err != nil {
		return nil, nil, err
	}

	user, err := decodeUser(raw)
	if err != nil {
		return nil, nil, &Error{Message: "Error al iniciar sesión", Status: http.StatusOK, Err: err}
	}
	return user, header.Values("Set-Cookie"), nil
}

// decodeUser accepts either {"user": {...}} or the user object itself.
func decodeUser(raw json.RawMessage) (*models.User, error) {
	var envelope struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.User != nil {
		return envelope.User, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", action: "cerrar sesión"}, nil)
	return err
}

// Me returns the user owning the forwarded backend session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", action: "obtener el usuario actual"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ExamStudents(ctx context.Context, examID int) ([]models.ExamStudent, error) {
	path := c.Exams.itemPath(examID) + "/students"
	return listAt[models.ExamStudent](ctx, c, path, nil, "obtener estudiantes del examen")
}

func (c *Client) TeacherSubjects(ctx context.Context, teacherID int) ([]models.Subject, error) {
	path := c.Teachers.itemPath(teacherID) + "/subjects"
	return listAt[models.Subject](ctx, c, path, nil, "obtener materias del docente")
}

func (c *Client) StudentExams(ctx context.Context, studentID int) ([]models.Exam, error) {
	path := c.Students.itemPath(studentID) + "/exams"
	return listAt[models.Exam](ctx, c, path, nil, "obtener exámenes del estudiante")
}

// ExamAnswers lists the answers given in one exam, optionally for one student.
func (c *Client) ExamAnswers(ctx context.Context, examID int, studentID *int) ([]models.Answer, error) {
	q := url.Values{"exam_id": {strconv.Itoa(examID)}}
	if studentID != nil {
		q.Set("student_id", strconv.Itoa(*studentID))
	}
	return c.Answers.List(ctx, q)
}

// SubmitAnswers sends a student's answers for an exam in one call.
func (c *Client) SubmitAnswers(ctx context.Context, examID int, answers []models.AnswerItem) ([]models.Answer, error) {
	body := map[string]any{"exam_id": examID, "answers": answers}

	var raw json.RawMessage
	if _, err := c.do(ctx, request{method: http.MethodPost, path: c.Answers.Path(), body: body, action: "enviar respuestas"}, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[models.Answer](raw)
	if err != nil {
		return nil, &Error{Message: "Error al enviar respuestas", Status: http.StatusOK, Err: err}
	}
	return out, nil
}

func (c *Client) GradeAnswer(ctx context.Context, answerID int, req models.GradeRequest) (*models.Answer, error) {
	return c.Answers.Patch(ctx, answerID, req)
}

func (c *Client) ApproveExam(ctx context.Context, examID int, comment *string) (*models.ApprovedExam, error) {
	body := map[string]any{"exam_id": examID}
	if comment != nil {
		body["comment"] = *comment
	}
	return c.ApprovedExams.Create(ctx, body)
}

// Report fetches /reports/{kind} with the given filters.
func (c *Client) Report(ctx context.Context, kind string, query url.Values) (*models.Report, error) {
	var report models.Report
	path := "/reports/" + url.PathEscape(kind)
	if _, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query, action: "obtener el reporte"}, &report); err != nil {
		return nil, err
	}
	if report.Kind == "" {
		report.Kind = kind
	}
	return &report, nil
}
