package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// IsValid reports whether r is one of the roles the backend issues.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID            int      `json:"id"`
	FullName      string   `json:"full_name"`
	Email         string   `json:"email"`
	Role          UserRole `json:"role"`
	IsHeadTeacher bool     `json:"is_head_teacher"`

	TeacherID *int `json:"teacher_id,omitempty"`
	StudentID *int `json:"student_id,omitempty"`

	AvatarURL *string `json:"avatar_url,omitempty"`
	Active    bool    `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Teacher struct {
	ID            int    `json:"id"`
	UserID        int    `json:"user_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	IsHeadTeacher bool   `json:"is_head_teacher"`
	SubjectIDs    []int  `json:"subject_ids,omitempty"`
}

type Student struct {
	ID         int     `json:"id"`
	UserID     int     `json:"user_id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Enrollment *string `json:"enrollment,omitempty"`
}

// Session is the identity established at login; only Role and IsHeadTeacher
// survive into the browser cookies.
type Session struct {
	User   User
	Role   UserRole
	IsHead bool

	// Cookies issued by the backend that must be relayed to the browser.
	BackendCookies []string
}
