package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"educross/internal/models"
	"educross/internal/service"
)

// ProfileHandler serves profiles, sections, scores and leaderboards
type ProfileHandler struct {
	profileService *service.ProfileService
	scoreService   *service.ScoreService
	logger         *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, scoreService *service.ScoreService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, scoreService: scoreService, logger: logger}
}

// UpdateProfile changes the signed-in user's name and nickname
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	user := GetUserFromContext(r.Context())
	profile, err := h.profileService.UpdateProfile(r.Context(), user.ID, req.FullName, req.Nickname)
	if err != nil {
		respondServiceError(w, h.logger, "failed to update profile", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// SaveScore records a finished game for the signed-in user
func (h *ProfileHandler) SaveScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	user := GetUserFromContext(r.Context())
	score, err := h.scoreService.Save(r.Context(), user.ID, req)
	if err != nil {
		respondServiceError(w, h.logger, "failed to save score", err)
		return
	}
	respondJSON(w, http.StatusCreated, score)
}

// MyScores returns the signed-in user's history
func (h *ProfileHandler) MyScores(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	scores, err := h.scoreService.ForUser(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, "failed to load scores", err)
		return
	}
	if scores == nil {
		scores = []models.GameScore{}
	}
	respondJSON(w, http.StatusOK, scores)
}

// Leaderboard ranks players overall or within ?section=
func (h *ProfileHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	if section == "" {
		section = service.AllSections
	}
	entries, err := h.scoreService.Leaderboard(r.Context(), section)
	if err != nil {
		respondServiceError(w, h.logger, "failed to build leaderboard", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListSections returns a teacher's own sections, or every section without
// its join code for everyone else
func (h *ProfileHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	teacher, err := h.profileService.IsTeacher(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, "failed to load profile", err)
		return
	}

	var sections []models.Section
	if teacher {
		sections, err = h.profileService.SectionsForTeacher(r.Context(), user.ID)
	} else {
		sections, err = h.profileService.ListSections(r.Context())
		for i := range sections {
			sections[i].JoinCode = ""
		}
	}
	if err != nil {
		respondServiceError(w, h.logger, "failed to list sections", err)
		return
	}
	if sections == nil {
		sections = []models.Section{}
	}
	respondJSON(w, http.StatusOK, sections)
}

// CreateSection creates a section for the signed-in teacher
func (h *ProfileHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	user := GetUserFromContext(r.Context())
	section, err := h.profileService.CreateSection(r.Context(), user.ID, req.Name)
	if err != nil {
		respondServiceError(w, h.logger, "failed to create section", err)
		return
	}
	respondJSON(w, http.StatusCreated, section)
}

// JoinSection places the signed-in student into a section by join code
func (h *ProfileHandler) JoinSection(w http.ResponseWriter, r *http.Request) {
	var req JoinSectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	user := GetUserFromContext(r.Context())
	section, err := h.profileService.JoinSection(r.Context(), user.ID, req.JoinCode)
	if err != nil {
		respondServiceError(w, h.logger, "failed to join section", err)
		return
	}
	section.JoinCode = ""
	respondJSON(w, http.StatusOK, section)
}

// LeaveSection removes the signed-in student from their section
func (h *ProfileHandler) LeaveSection(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := h.profileService.LeaveSection(r.Context(), user.ID); err != nil {
		respondServiceError(w, h.logger, "failed to leave section", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SectionLeaderboard returns the teacher dashboard for one owned section
func (h *ProfileHandler) SectionLeaderboard(w http.ResponseWriter, r *http.Request) {
	sectionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid section ID", "", nil)
		return
	}

	user := GetUserFromContext(r.Context())
	summary, err := h.scoreService.SectionSummary(r.Context(), user.ID, sectionID)
	if err != nil {
		respondServiceError(w, h.logger, "failed to build section summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// DeleteSection removes an owned section. Its students are left unassigned.
func (h *ProfileHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid section ID", "", nil)
		return
	}

	user := GetUserFromContext(r.Context())
	if err := h.profileService.DeleteSection(r.Context(), user.ID, sectionID); err != nil {
		respondServiceError(w, h.logger, "failed to delete section", err)
		return
	}
	h.logger.Info("section deleted", zap.Int64("section_id", sectionID), zap.Int64("teacher_id", user.ID))
	w.WriteHeader(http.StatusNoContent)
}
