package handlers

import (
	"net/http"

	"educross/internal/security"
)

// Handlers bundles every handler the API router serves
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Content    *ContentHandler
	WordSearch *WordSearchHandler
	Profile    *ProfileHandler
	Admin      *AdminHandler
}

// NewRouter registers the API routes. State-changing requests from a
// signed-in session must carry the CSRF header.
func NewRouter(h Handlers, limiter *security.RateLimiter) http.Handler {
	m := h.Middleware
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(limiter, h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(limiter, h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(h.Auth.Me))
	mux.HandleFunc("GET /api/auth/providers", h.Auth.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.OAuthCallback)

	// Content and game routes
	mux.HandleFunc("GET /api/subjects", h.Content.ListSubjects)
	mux.HandleFunc("GET /api/subjects/{subjectId}", h.Content.GetSubject)
	mux.HandleFunc("GET /api/subjects/{subjectId}/units/{unitId}", h.Content.GetUnit)
	mux.HandleFunc("GET /api/subjects/{subjectId}/units/{unitId}/questions", h.Content.Questions)
	mux.HandleFunc("GET /api/games", h.Content.ListGames)
	mux.HandleFunc("GET /api/games/{gameId}/{subjectId}/{unitId}", h.Content.GamePayload)

	// Word search routes
	mux.HandleFunc("POST /api/wordsearch/{subjectId}/{unitId}", m.RequireAuth(h.WordSearch.Start))
	mux.HandleFunc("GET /api/wordsearch/{id}", m.RequireAuth(h.WordSearch.Get))
	mux.HandleFunc("POST /api/wordsearch/{id}/select", m.RequireAuth(h.WordSearch.Select))

	// Profile, section and score routes
	mux.HandleFunc("PUT /api/profile", m.RequireAuth(h.Profile.UpdateProfile))
	mux.HandleFunc("POST /api/scores", m.RequireAuth(h.Profile.SaveScore))
	mux.HandleFunc("GET /api/scores/me", m.RequireAuth(h.Profile.MyScores))
	mux.HandleFunc("GET /api/leaderboard", m.RequireAuth(h.Profile.Leaderboard))
	mux.HandleFunc("GET /api/sections", m.RequireAuth(h.Profile.ListSections))
	mux.HandleFunc("POST /api/sections", m.RequireTeacher(h.Profile.CreateSection))
	mux.HandleFunc("POST /api/sections/join", m.RequireAuth(h.Profile.JoinSection))
	mux.HandleFunc("POST /api/sections/leave", m.RequireAuth(h.Profile.LeaveSection))
	mux.HandleFunc("DELETE /api/sections/{id}", m.RequireTeacher(h.Profile.DeleteSection))
	mux.HandleFunc("GET /api/sections/{id}/leaderboard", m.RequireTeacher(h.Profile.SectionLeaderboard))

	// Admin routes
	mux.HandleFunc("GET /api/admin/overrides", m.RequireAdmin(h.Admin.ListOverrides))
	mux.HandleFunc("GET /api/admin/overrides/{subjectId}/{unitId}", m.RequireAdmin(h.Admin.GetOverride))
	mux.HandleFunc("PUT /api/admin/overrides/{subjectId}/{unitId}", m.RequireAdmin(h.Admin.PutOverride))
	mux.HandleFunc("DELETE /api/admin/overrides/{subjectId}/{unitId}", m.RequireAdmin(h.Admin.DeleteOverride))
	mux.HandleFunc("GET /api/admin/users", m.RequireAdmin(h.Admin.ListUsers))
	mux.HandleFunc("PUT /api/admin/users/{id}", m.RequireAdmin(h.Admin.UpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", m.RequireAdmin(h.Admin.DeleteUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}/scores", m.RequireAdmin(h.Admin.ResetScores))
	mux.HandleFunc("GET /api/admin/database", m.RequireAdmin(h.Admin.Database))
	mux.HandleFunc("GET /api/admin/database/export", m.RequireAdmin(h.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/database/import", m.RequireAdmin(h.Admin.ImportDatabase))

	return m.CSRFProtect(mux)
}
