// Package auth establishes a portal session from a login attempt.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/models"
)

const (
	MethodPassword = "password"
	MethodCasdoor  = "casdoor"
)

// ErrUnknownRole refuses a login whose role is not ADMIN, TEACHER or STUDENT.
// The guard would file such a role under the student dashboard; login stops
// it earlier so a malformed backend account never receives portal cookies.
var ErrUnknownRole = errors.New("user has no recognised role")

type Credentials struct {
	Email    string
	Password string
}

// Authenticator turns credentials into a session.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*models.Session, error)
}

// PasswordAuthenticator logs in against the backend /auth/login endpoint.
type PasswordAuthenticator struct {
	client *api.Client
}

func NewPasswordAuthenticator(client *api.Client) *PasswordAuthenticator {
	return &PasswordAuthenticator{client: client}
}

func (a *PasswordAuthenticator) Login(ctx context.Context, creds Credentials) (*models.Session, error) {
	user, cookies, err := a.client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(*user)
	if err != nil {
		return nil, err
	}
	session.BackendCookies = cookies
	return session, nil
}

// NewSession derives the cookie-level identity of user. Only teachers can be
// head teachers.
func NewSession(user models.User) (*models.Session, error) {
	if !user.Role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}
	return &models.Session{
		User:   user,
		Role:   user.Role,
		IsHead: user.Role == models.RoleTeacher && user.IsHeadTeacher,
	}, nil
}
