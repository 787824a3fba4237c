package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/models"
)

func intPtr(v int) *int { return &v }

func TestOverview_Admin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.User{{ID: 1}, {ID: 2}, {ID: 3}})
	})
	mux.HandleFunc("GET /teacher", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Teacher{{ID: 1}})
	})
	mux.HandleFunc("GET /student", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []models.Student{{ID: 1}, {ID: 2}}})
	})
	mux.HandleFunc("GET /subjects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Subject{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}})
	})
	mux.HandleFunc("GET /exams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Exam{})
	})

	got, err := NewOverviewService(newBackend(t, mux), discardLogger()).Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.AdminOverview{Users: 3, Teachers: 1, Students: 2, Subjects: 4, Exams: 0}, got)
}

func TestOverview_AdminFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/teacher" {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "prohibido"})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := NewOverviewService(newBackend(t, mux), discardLogger()).Admin(context.Background())
	require.Error(t, err)
}

func TestOverview_Teacher(t *testing.T) {
	tests := []struct {
		name        string
		isHead      bool
		wantPending *int
	}{
		{name: "teacher", isHead: false},
		{name: "head teacher", isHead: true, wantPending: intPtr(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, models.User{ID: 50, Role: models.RoleTeacher, TeacherID: intPtr(5)})
			})
			mux.HandleFunc("GET /teacher/5/subjects", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, []models.Subject{{ID: 1, Name: "Química"}})
			})
			mux.HandleFunc("GET /exams", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("is_approved") == "false" {
					writeJSON(w, http.StatusOK, []models.Exam{{ID: 8}, {ID: 9}})
					return
				}
				assert.Equal(t, "5", r.URL.Query().Get("teacher_id"))
				writeJSON(w, http.StatusOK, []models.Exam{{ID: 1}})
			})
			mux.HandleFunc("GET /reevaluation", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "PENDING", r.URL.Query().Get("status"))
				writeJSON(w, http.StatusOK, []models.Reevaluation{{ID: 1}, {ID: 2}, {ID: 3}})
			})

			got, err := NewOverviewService(newBackend(t, mux), discardLogger()).Teacher(context.Background(), tt.isHead)
			require.NoError(t, err)
			assert.Equal(t, 50, got.User.ID)
			assert.Len(t, got.Subjects, 1)
			assert.Len(t, got.Exams, 1)
			assert.Equal(t, 3, got.PendingReevaluations)
			assert.Equal(t, tt.wantPending, got.PendingApprovals)
		})
	}
}

func TestOverview_Student(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: 70, Role: models.RoleStudent, StudentID: intPtr(7)})
	})
	mux.HandleFunc("GET /student/7/exams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Exam{{ID: 1}, {ID: 2}})
	})

	got, err := NewOverviewService(newBackend(t, mux), discardLogger()).Student(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Exams, 2)
}

func TestOverview_StudentWithoutRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: 70, Role: models.RoleStudent})
	})

	_, err := NewOverviewService(newBackend(t, mux), discardLogger()).Student(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "El usuario no tiene un registro de estudiante", apiErr.Message)
}
