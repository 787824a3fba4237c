// Package session owns the two browser cookies the route guard reads.
package session

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

const (
	RoleCookie = "aeg_role"
	HeadCookie = "aeg_head"

	DefaultMaxAge = 7 * 24 * time.Hour
)

// Options controls the attributes of the issued cookies.
type Options struct {
	MaxAge time.Duration
	Secure bool
	Domain string
}

func DefaultOptions() Options {
	return Options{MaxAge: DefaultMaxAge}
}

// Values are the raw cookie strings, empty when a cookie is absent.
type Values struct {
	Role string
	Head string
}

func (v Values) Authenticated() bool {
	return v.Role != ""
}

// Set issues both cookies for the signed-in user.
func Set(w http.ResponseWriter, opts Options, role models.UserRole, isHead bool) {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	head := "0"
	if isHead {
		head = "1"
	}
	http.SetCookie(w, newCookie(opts, RoleCookie, string(role), int(maxAge.Seconds())))
	http.SetCookie(w, newCookie(opts, HeadCookie, head, int(maxAge.Seconds())))
}

// Clear expires both cookies.
func Clear(w http.ResponseWriter, opts Options) {
	http.SetCookie(w, newCookie(opts, RoleCookie, "", -1))
	http.SetCookie(w, newCookie(opts, HeadCookie, "", -1))
}

// Read returns the cookie values carried by r.
func Read(r *http.Request) Values {
	return Values{
		Role: cookieValue(r, RoleCookie),
		Head: cookieValue(r, HeadCookie),
	}
}

// IsOwn reports whether name is one of the cookies managed here. Such cookies
// are never forwarded to the backend.
func IsOwn(name string) bool {
	return name == RoleCookie || name == HeadCookie
}

func newCookie(opts Options, name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   maxAge,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.Expires = time.Now().Add(time.Duration(maxAge) * time.Second).UTC()
	} else {
		c.Expires = time.Unix(0, 0).UTC()
	}
	return c
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
