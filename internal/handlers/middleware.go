package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"educross/internal/models"
	"educross/internal/security"
	"educross/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService    *service.AuthService
	profileService *service.ProfileService
	csrf           *security.CSRF
	logger         *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, profileService *service.ProfileService, csrf *security.CSRF, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService:    authService,
		profileService: profileService,
		csrf:           csrf,
		logger:         logger,
	}
}

// RequireAuth is middleware that requires a valid session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookie)
		if err != nil || cookie.Value == "" {
			respondWithError(w, m.logger, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		user, err := m.authService.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			http.SetCookie(w, security.ExpiredCookie(r, security.SessionCookie))
			respondServiceError(w, m.logger, "session validation failed", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireTeacher requires an authenticated user with the teacher role
func (m *Middleware) RequireTeacher(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		ok, err := m.profileService.IsTeacher(r.Context(), user.ID)
		if err != nil {
			respondWithError(w, m.logger, http.StatusInternalServerError, ErrInternalServerError, "failed to load profile", err)
			return
		}
		if !ok {
			respondWithError(w, m.logger, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	})
}

// RequireAdmin requires an authenticated admin user
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if user := GetUserFromContext(r.Context()); !user.IsAdmin {
			respondWithError(w, m.logger, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	})
}

// CSRFProtect rejects state-changing requests from a session whose
// X-CSRF-Token header does not match. Requests without a session are passed
// through so login and register keep working.
func (m *Middleware) CSRFProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(security.SessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !m.csrf.Valid(cookie.Value, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, m.logger, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit allows limiter's rate of requests per client IP
func (m *Middleware) RateLimit(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(security.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, m.logger, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests
func Logging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
