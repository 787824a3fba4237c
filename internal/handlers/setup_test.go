package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/auth"
	"github.com/SAP-F-2025/exam-portal/internal/cache"
	"github.com/SAP-F-2025/exam-portal/internal/config"
	"github.com/SAP-F-2025/exam-portal/internal/events"
	"github.com/SAP-F-2025/exam-portal/internal/models"
	"github.com/SAP-F-2025/exam-portal/internal/services"
	"github.com/SAP-F-2025/exam-portal/internal/session"
	"github.com/SAP-F-2025/exam-portal/internal/utils"
	"github.com/SAP-F-2025/exam-portal/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const backendSession = "sid"

// fakeBackend stands in for the exam REST API.
type fakeBackend struct {
	mu            sync.Mutex
	cookieHeaders []string
	calls         []string
}

func (b *fakeBackend) called(method, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Contains(b.calls, method+" "+path)
}

func (b *fakeBackend) seen(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookieHeaders = append(b.cookieHeaders, r.Header.Get("Cookie"))
}

func (b *fakeBackend) lastCookieHeader() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.cookieHeaders) == 0 {
		return ""
	}
	return b.cookieHeaders[len(b.cookieHeaders)-1]
}

var loginUsers = map[string]models.User{
	"admin@colegio.edu":  {ID: 1, Role: models.RoleAdmin, FullName: "Ada"},
	"jefa@colegio.edu":   {ID: 2, Role: models.RoleTeacher, IsHeadTeacher: true, FullName: "Marta"},
	"profe@colegio.edu":  {ID: 3, Role: models.RoleTeacher, FullName: "Jorge"},
	"alumno@colegio.edu": {ID: 4, Role: models.RoleStudent, FullName: "Lucía"},
	"nadie@colegio.edu":  {ID: 5},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) handler() http.Handler {
	mux := b.routes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		user, ok := loginUsers[body.Email]
		if !ok || body.Password != "secreto" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "credenciales inválidas"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: backendSession, Value: "abc", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /subjects", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		writeJSON(w, http.StatusOK, []models.Subject{{ID: 1, Name: "Matemática"}})
	})
	mux.HandleFunc("GET /subjects/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "materia no encontrada"})
			return
		}
		writeJSON(w, http.StatusOK, models.Subject{ID: 1, Name: "Matemática"})
	})
	mux.HandleFunc("POST /subjects", func(w http.ResponseWriter, r *http.Request) {
		var req models.SubjectRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, models.Subject{ID: 2, Name: req.Name})
	})
	mux.HandleFunc("PUT /subjects/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req models.SubjectRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, models.Subject{ID: 1, Name: req.Name})
	})
	mux.HandleFunc("DELETE /subjects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /topics/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Topic{ID: 10, SubjectID: 1, Name: "Álgebra"})
	})
	mux.HandleFunc("PUT /topics/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req models.TopicRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, models.Topic{ID: 10, SubjectID: req.SubjectID, Name: req.Name})
	})
	mux.HandleFunc("DELETE /topics/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: 4, Role: models.RoleStudent, FullName: "Lucía"})
	})
	mux.HandleFunc("PATCH /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req models.UserUpdateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user := models.User{ID: 3, Role: models.RoleTeacher, FullName: "Jorge"}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("PATCH /answer/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req models.GradeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, models.Answer{ID: 3, Score: &req.Score})
	})
	mux.HandleFunc("PATCH /reevaluation/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req models.ReevaluationResolveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, models.Reevaluation{ID: 9, AnswerID: 3, Status: req.Status})
	})
	mux.HandleFunc("GET /questions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Question{{ID: 100, TopicID: 10, Text: "x + 1 = 2"}})
	})
	mux.HandleFunc("GET /exams", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		writeJSON(w, http.StatusOK, []models.Exam{{ID: 5, Title: "Parcial", Status: models.ExamPublished}})
	})
	mux.HandleFunc("POST /approved-exam", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, models.ApprovedExam{ID: 77, ExamID: int(body["exam_id"].(float64))})
	})
	mux.HandleFunc("POST /reevaluation", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, models.Reevaluation{ID: 9, AnswerID: 3, Status: models.ReevaluationPending})
	})
	mux.HandleFunc("GET /reports/{kind}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Report{
			Columns: []string{"materia", "promedio"},
			Rows:    []models.ReportRow{{"materia": "Matemática", "promedio": 7.5}},
		})
	})
	return mux
}

type testEnv struct {
	router    *gin.Engine
	backend   *fakeBackend
	publisher *events.MockEventPublisher
}

type envConfig struct {
	redis   *redis.Client
	casdoor *auth.CasdoorAuthenticator
}

type envOption func(*envConfig)

// withNameCache backs the name cache with client.
func withNameCache(client *redis.Client) envOption {
	return func(c *envConfig) { c.redis = client }
}

// withCasdoor enables SSO login against an unreachable Casdoor endpoint.
func withCasdoor() envOption {
	return func(c *envConfig) {
		c.casdoor = auth.NewCasdoorAuthenticator(config.CasdoorConfig{
			Endpoint:     "https://sso.colegio.edu",
			ClientID:     "portal",
			ClientSecret: "secret",
			Organization: "colegio",
			Application:  "portal-app",
			RedirectURL:  "http://portal.colegio.edu/auth/login/callback",
		}, false)
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(srv.URL, 5*time.Second, slogger)
	sm := services.NewServiceManager(client, cache.NewCacheManager(cfg.redis, 0), slogger)
	require.NoError(t, sm.Initialize(context.Background()))

	publisher := events.NewMockEventPublisher(slogger)
	hm := NewHandlerManager(Dependencies{
		Client:         client,
		Services:       sm,
		Validator:      validator.New(),
		Logger:         utils.Discard(),
		Publisher:      publisher,
		Password:       auth.NewPasswordAuthenticator(client),
		Casdoor:        cfg.casdoor,
		Cookies:        session.DefaultOptions(),
		GuardSkipPaths: []string{"/health", "/static/"},
	})

	return &testEnv{router: hm.NewRouter(), backend: backend, publisher: publisher}
}

func (e *testEnv) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func roleCookies(role, head string) []*http.Cookie {
	cookies := []*http.Cookie{{Name: session.RoleCookie, Value: role}}
	if head != "" {
		cookies = append(cookies, &http.Cookie{Name: session.HeadCookie, Value: head})
	}
	return cookies
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func eventTypes(p *events.MockEventPublisher) []string {
	var out []string
	for _, e := range p.GetPublishedEvents() {
		out = append(out, e.Type)
	}
	return out
}
