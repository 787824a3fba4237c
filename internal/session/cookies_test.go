package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSet(t *testing.T) {
	tests := []struct {
		name     string
		role     models.UserRole
		isHead   bool
		wantHead string
	}{
		{name: "head teacher", role: models.RoleTeacher, isHead: true, wantHead: "1"},
		{name: "teacher", role: models.RoleTeacher, wantHead: "0"},
		{name: "admin", role: models.RoleAdmin, wantHead: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Set(rec, DefaultOptions(), tt.role, tt.isHead)

			got := cookiesByName(rec)
			require.Contains(t, got, RoleCookie)
			require.Contains(t, got, HeadCookie)

			assert.Equal(t, string(tt.role), got[RoleCookie].Value)
			assert.Equal(t, tt.wantHead, got[HeadCookie].Value)
			for _, c := range got {
				assert.Equal(t, "/", c.Path)
				assert.Equal(t, int(DefaultMaxAge.Seconds()), c.MaxAge)
			}
		})
	}
}

func TestClear(t *testing.T) {
	rec := httptest.NewRecorder()
	Clear(rec, Options{Secure: true})

	raw := rec.Header().Values("Set-Cookie")
	require.Len(t, raw, 2)
	for _, line := range raw {
		assert.Contains(t, line, "Max-Age=0")
		assert.Contains(t, line, "Path=/")
		assert.Contains(t, line, "Secure")
	}
}

func TestRead(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard/teacher", nil)
	req.AddCookie(&http.Cookie{Name: RoleCookie, Value: "TEACHER"})
	req.AddCookie(&http.Cookie{Name: HeadCookie, Value: "1"})

	v := Read(req)
	assert.Equal(t, Values{Role: "TEACHER", Head: "1"}, v)
	assert.True(t, v.Authenticated())

	empty := Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, empty.Authenticated())
}
