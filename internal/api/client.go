// Package api is the typed client for the exam backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

const maxErrorBody = 4 << 10

type ctxKey int

const (
	cookiesKey ctxKey = iota
	requestIDKey
)

// WithCookies attaches the caller's browser cookies so they are forwarded to
// the backend, which keys its own session on them.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey, cookies)
}

// WithRequestID propagates the gateway request ID to the backend.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func cookiesFrom(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey).([]*http.Cookie)
	return cookies
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	Subjects      *Resource[models.Subject]
	Topics        *Resource[models.Topic]
	Subtopics     *Resource[models.Subtopic]
	Questions     *Resource[models.Question]
	Exams         *Resource[models.Exam]
	Students      *Resource[models.Student]
	Teachers      *Resource[models.Teacher]
	Users         *Resource[models.User]
	Answers       *Resource[models.Answer]
	ApprovedExams *Resource[models.ApprovedExam]
	Reevaluations *Resource[models.Reevaluation]
	Parameters    *Resource[models.Parameter]
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}

	c.Subjects = newResource[models.Subject](c, "/subjects", "materia", "materias")
	c.Topics = newResource[models.Topic](c, "/topics", "tema", "temas")
	c.Subtopics = newResource[models.Subtopic](c, "/subtopics", "subtema", "subtemas")
	c.Questions = newResource[models.Question](c, "/questions", "pregunta", "preguntas")
	c.Exams = newResource[models.Exam](c, "/exams", "examen", "exámenes")
	c.Students = newResource[models.Student](c, "/student", "estudiante", "estudiantes")
	c.Teachers = newResource[models.Teacher](c, "/teacher", "docente", "docentes")
	c.Users = newResource[models.User](c, "/users", "usuario", "usuarios")
	c.Answers = newResource[models.Answer](c, "/answer", "respuesta", "respuestas")
	c.ApprovedExams = newResource[models.ApprovedExam](c, "/approved-exam", "aprobación", "aprobaciones")
	c.Reevaluations = newResource[models.Reevaluation](c, "/reevaluation", "reevaluación", "reevaluaciones")
	c.Parameters = newResource[models.Parameter](c, "/parameters", "parámetro", "parámetros")

	return c
}

// Error is returned for every failed backend call. Message is meant for the
// end user; Detail carries whatever the backend said.
type Error struct {
	Message string
	Status  int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode reports the backend status of err, or 0 when err did not come
// from a backend response.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	action string // Spanish verb phrase, e.g. "obtener materias"
}

// do performs the call and decodes a 2xx JSON body into out when out is not
// nil. The response headers are returned so callers can relay cookies.
func (c *Client) do(ctx context.Context, r request, out any) (http.Header, error) {
	message := "Error al " + r.action

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return nil, &Error{Message: message, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, &Error{Message: message, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	for _, ck := range cookiesFrom(ctx) {
		req.AddCookie(ck)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Backend request failed",
			"method", r.method, "path", r.path, "error", err)
		return nil, &Error{Message: message, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorDetail(resp.Body)
		c.logger.ErrorContext(ctx, "Backend returned error status",
			"method", r.method, "path", r.path, "status", resp.StatusCode, "detail", detail)
		return resp.Header, &Error{Message: message, Status: resp.StatusCode, Detail: detail}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		c.logger.ErrorContext(ctx, "Backend response could not be decoded",
			"method", r.method, "path", r.path, "error", err)
		return resp.Header, &Error{Message: message, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.Header, nil
}

// readErrorDetail extracts "message" or "error" from a JSON error body and
// falls back to the trimmed raw text.
func readErrorDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// Ping checks that the backend answers at all. Any status below 500 counts.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Message: "Error al conectar con el servidor", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return resp.StatusCode, &Error{Message: "Error al conectar con el servidor", Status: resp.StatusCode}
	}
	return resp.StatusCode, nil
}
