// Package guard decides whether a browser navigation may proceed based on the
// two session cookies issued at login.
package guard

import (
	"net/url"
	"strings"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

const (
	LoginPath       = "/auth/login"
	DashboardPrefix = "/dashboard"

	AdminRoot       = "/dashboard/admin"
	TeacherRoot     = "/dashboard/teacher"
	HeadTeacherRoot = "/dashboard/head_teacher"
	StudentRoot     = "/dashboard/student"

	// MarkerHeader is set on every response that passed through the guard.
	MarkerHeader      = "X-Aeg-Guard"
	MarkerHeaderValue = "1"

	headFlagOn = "1"
)

type Action int

const (
	Pass Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "pass"
}

// Reason explains a Decision. It has no behavioral meaning.
type Reason string

const (
	ReasonPublic          Reason = "public"
	ReasonAlreadySignedIn Reason = "already_signed_in"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonCrossRole       Reason = "cross_role"
	ReasonAllowed         Reason = "allowed"
)

type Decision struct {
	Action   Action
	Location string // set when Action is Redirect
	Root     string // allowed root, empty when unauthenticated
	Reason   Reason
}

// AllowedRoot maps the cookie values to the dashboard subtree the caller may
// visit. ok is false when there is no role, i.e. the caller is anonymous.
func AllowedRoot(role, head string) (root string, ok bool) {
	switch models.UserRole(role) {
	case "":
		return "", false
	case models.RoleAdmin:
		return AdminRoot, true
	case models.RoleTeacher:
		if head == headFlagOn {
			return HeadTeacherRoot, true
		}
		return TeacherRoot, true
	default:
		return StudentRoot, true
	}
}

// Evaluate is a pure function of the request path, its raw query and the two
// cookie values.
func Evaluate(path, rawQuery, role, head string) Decision {
	root, authenticated := AllowedRoot(role, head)

	if IsPublic(path) {
		if !authenticated {
			return Decision{Action: Pass, Reason: ReasonPublic}
		}
		return Decision{Action: Redirect, Location: root, Root: root, Reason: ReasonAlreadySignedIn}
	}

	if !authenticated {
		return Decision{Action: Redirect, Location: LoginRedirect(path, rawQuery), Reason: ReasonUnauthenticated}
	}

	if underPrefix(path, DashboardPrefix) && !underPrefix(path, root) {
		return Decision{Action: Redirect, Location: root, Root: root, Reason: ReasonCrossRole}
	}

	return Decision{Action: Pass, Root: root, Reason: ReasonAllowed}
}

// IsPublic reports whether path is the login page or one of its sub-paths.
func IsPublic(path string) bool {
	return underPrefix(path, LoginPath)
}

// LoginRedirect builds the login URL carrying the originally requested
// location in the next parameter.
func LoginRedirect(path, rawQuery string) string {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return LoginPath + "?next=" + url.QueryEscape(target)
}

// SafeNext returns next when it is a local absolute path, fallback otherwise.
// Control characters are refused since browsers drop them while parsing, which
// turns "/\t/host" into the scheme-relative "//host".
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return fallback
		}
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	if IsPublic(u.Path) {
		return fallback
	}
	return next
}

// underPrefix matches whole path segments. A root names a permitted subtree,
// so /dashboard/adminx is a sibling of /dashboard/admin, not part of it, and
// /dashboardX is not under /dashboard at all.
func underPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
