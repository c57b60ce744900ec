package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookie names the cookie holding the auth session ID
const SessionCookie = "educross_session"

// GenerateSessionID creates a new random session identifier
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or through a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// NewCookie builds an HttpOnly cookie. Secure follows the request scheme.
func NewCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that deletes name on the client
func ExpiredCookie(r *http.Request, name string) *http.Cookie {
	c := NewCookie(r, name, "", time.Unix(0, 0))
	c.MaxAge = -1
	return c
}
