package guard

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRoot(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		head   string
		want   string
		wantOK bool
	}{
		{name: "admin", role: "ADMIN", want: AdminRoot, wantOK: true},
		{name: "admin ignores head flag", role: "ADMIN", head: "1", want: AdminRoot, wantOK: true},
		{name: "teacher", role: "TEACHER", head: "0", want: TeacherRoot, wantOK: true},
		{name: "teacher without head cookie", role: "TEACHER", want: TeacherRoot, wantOK: true},
		{name: "head teacher", role: "TEACHER", head: "1", want: HeadTeacherRoot, wantOK: true},
		{name: "student", role: "STUDENT", want: StudentRoot, wantOK: true},
		{name: "unknown role falls back to student", role: "GUEST", want: StudentRoot, wantOK: true},
		{name: "lowercase role is not admin", role: "admin", want: StudentRoot, wantOK: true},
		{name: "anonymous", role: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AllowedRoot(tt.role, tt.head)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		query    string
		role     string
		head     string
		action   Action
		location string
		reason   Reason
	}{
		{
			name:   "anonymous on login passes",
			path:   "/auth/login",
			action: Pass,
			reason: ReasonPublic,
		},
		{
			name:   "anonymous on login sub-path passes",
			path:   "/auth/login/callback",
			query:  "code=abc",
			action: Pass,
			reason: ReasonPublic,
		},
		{
			name:     "anonymous on dashboard goes to login with next",
			path:     "/dashboard/admin/users",
			action:   Redirect,
			location: "/auth/login?next=%2Fdashboard%2Fadmin%2Fusers",
			reason:   ReasonUnauthenticated,
		},
		{
			name:     "anonymous keeps query in next",
			path:     "/dashboard/student/exams",
			query:    "page=2&sort=date",
			action:   Redirect,
			location: "/auth/login?next=%2Fdashboard%2Fstudent%2Fexams%3Fpage%3D2%26sort%3Ddate",
			reason:   ReasonUnauthenticated,
		},
		{
			name:     "anonymous on root goes to login",
			path:     "/",
			action:   Redirect,
			location: "/auth/login?next=%2F",
			reason:   ReasonUnauthenticated,
		},
		{
			name:     "anonymous on logout goes to login",
			path:     "/auth/logout",
			action:   Redirect,
			location: "/auth/login?next=%2Fauth%2Flogout",
			reason:   ReasonUnauthenticated,
		},
		{
			name:     "login look-alike is not public",
			path:     "/auth/loginx",
			action:   Redirect,
			location: "/auth/login?next=%2Fauth%2Floginx",
			reason:   ReasonUnauthenticated,
		},
		{
			name:     "admin on teacher area",
			path:     "/dashboard/teacher",
			role:     "ADMIN",
			action:   Redirect,
			location: AdminRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:     "admin deep in teacher area",
			path:     "/dashboard/teacher/questions/12",
			role:     "ADMIN",
			action:   Redirect,
			location: AdminRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:     "head teacher on teacher area",
			path:     "/dashboard/teacher/x",
			role:     "TEACHER",
			head:     "1",
			action:   Redirect,
			location: HeadTeacherRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:     "plain teacher on head teacher area",
			path:     "/dashboard/head_teacher/approvals",
			role:     "TEACHER",
			head:     "0",
			action:   Redirect,
			location: TeacherRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:     "student on admin area",
			path:     "/dashboard/admin",
			role:     "STUDENT",
			action:   Redirect,
			location: StudentRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:     "admin on look-alike root",
			path:     "/dashboard/adminx",
			role:     "ADMIN",
			action:   Redirect,
			location: AdminRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:   "look-alike of the dashboard prefix",
			path:   "/dashboardX",
			role:   "STUDENT",
			action: Pass,
			reason: ReasonAllowed,
		},
		{
			name:     "bare dashboard sends to own root",
			path:     "/dashboard",
			role:     "TEACHER",
			action:   Redirect,
			location: TeacherRoot,
			reason:   ReasonCrossRole,
		},
		{
			name:     "student on login",
			path:     "/auth/login",
			role:     "STUDENT",
			action:   Redirect,
			location: StudentRoot,
			reason:   ReasonAlreadySignedIn,
		},
		{
			name:     "head teacher on login",
			path:     "/auth/login",
			query:    "next=%2Fdashboard",
			role:     "TEACHER",
			head:     "1",
			action:   Redirect,
			location: HeadTeacherRoot,
			reason:   ReasonAlreadySignedIn,
		},
		{
			name:   "admin inside own root",
			path:   "/dashboard/admin/users",
			role:   "ADMIN",
			action: Pass,
			reason: ReasonAllowed,
		},
		{
			name:   "head teacher inside own root",
			path:   "/dashboard/head_teacher",
			role:   "TEACHER",
			head:   "1",
			action: Pass,
			reason: ReasonAllowed,
		},
		{
			name:   "unknown role inside student root",
			path:   "/dashboard/student/results",
			role:   "GUEST",
			action: Pass,
			reason: ReasonAllowed,
		},
		{
			name:   "authenticated outside dashboard passes",
			path:   "/auth/logout",
			role:   "STUDENT",
			action: Pass,
			reason: ReasonAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.path, tt.query, tt.role, tt.head)
			assert.Equal(t, tt.action, got.Action)
			assert.Equal(t, tt.location, got.Location)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestEvaluate_AllRolesPassInsideOwnRoot(t *testing.T) {
	cookies := [][2]string{{"ADMIN", ""}, {"TEACHER", "0"}, {"TEACHER", "1"}, {"STUDENT", ""}}
	suffixes := []string{"", "/", "/exams", "/exams/3/answers"}
	for _, c := range cookies {
		root, _ := AllowedRoot(c[0], c[1])
		for _, s := range suffixes {
			got := Evaluate(root+s, "a=b", c[0], c[1])
			assert.Equal(t, Pass, got.Action, "role=%s head=%s path=%s", c[0], c[1], root+s)
		}
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{next: "", want: "/fallback"},
		{next: "/dashboard/admin/users?page=2", want: "/dashboard/admin/users?page=2"},
		{next: "https://evil.example", want: "/fallback"},
		{next: "//evil.example/x", want: "/fallback"},
		{next: "/\\evil.example", want: "/fallback"},
		{next: "/auth/login?next=%2F", want: "/fallback"},
		{next: "dashboard", want: "/fallback"},
		{next: "/\t/evil.example", want: "/fallback"},
		{next: "/\n/evil.example", want: "/fallback"},
		{next: "/\r/evil.example/x", want: "/fallback"},
		{next: "/dashboard/student\x7f", want: "/fallback"},
		{next: "/auth/login/callback?code=1", want: "/fallback"},
		{next: "/dashboard/student/results#top", want: "/dashboard/student/results#top"},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.next), func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNext(tt.next, "/fallback"))
		})
	}
}
