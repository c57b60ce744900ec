package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"educross/internal/models"
	"educross/internal/security"
	"educross/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	profileService       *service.ProfileService
	csrf                 *security.CSRF
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	logger               *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, profileService *service.ProfileService, csrf *security.CSRF, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		profileService:       profileService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		logger:               logger,
	}
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	if _, err := h.authService.Register(r.Context(), in); err != nil {
		respondServiceError(w, h.logger, "registration failed", err)
		return
	}

	session, user, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondServiceError(w, h.logger, "login after registration failed", err)
		return
	}

	http.SetCookie(w, security.NewCookie(r, security.SessionCookie, session.ID, session.ExpiresAt))
	h.writeMe(w, r, http.StatusCreated, user, session.ID)
}

// Login signs in by email or nickname
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	session, user, err := h.authService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, "login failed", err)
		return
	}

	http.SetCookie(w, security.NewCookie(r, security.SessionCookie, session.ID, session.ExpiresAt))
	h.writeMe(w, r, http.StatusOK, user, session.ID)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookie); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, security.ExpiredCookie(r, security.SessionCookie))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user, their profile and a CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	cookie, _ := r.Cookie(security.SessionCookie)
	h.writeMe(w, r, http.StatusOK, user, cookie.Value)
}

// Providers lists the configured OAuth providers
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.oauthProviderViews())
}

func (h *AuthHandler) writeMe(w http.ResponseWriter, r *http.Request, status int, user *models.User, sessionID string) {
	resp := MeResponse{User: user, CSRFToken: h.csrf.Token(sessionID)}

	profile, err := h.profileService.GetProfile(r.Context(), user.ID)
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
	case err != nil:
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "failed to load profile", err)
		return
	default:
		resp.Profile = profile
		if profile.SectionID != nil {
			if section, err := h.profileService.GetSection(r.Context(), *profile.SectionID); err == nil {
				resp.Section = section
			}
		}
	}
	respondJSON(w, status, resp)
}
