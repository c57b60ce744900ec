package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"educross/internal/content"
	"educross/internal/questions"
	"educross/internal/repository"
	"educross/internal/service"
)

// maxImportBytes bounds uploaded backup files
const maxImportBytes = 10 << 20

// AdminHandler handles admin-specific routes
type AdminHandler struct {
	catalog       *content.Catalog
	bank          *questions.Bank
	overrideRepo  *repository.OverrideRepository
	userRepo      *repository.UserRepository
	profileRepo   *repository.ProfileRepository
	scoreRepo     *repository.ScoreRepository
	backupService *service.BackupService
	logger        *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalog *content.Catalog, bank *questions.Bank, overrideRepo *repository.OverrideRepository, userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, scoreRepo *repository.ScoreRepository, backupService *service.BackupService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:       catalog,
		bank:          bank,
		overrideRepo:  overrideRepo,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		scoreRepo:     scoreRepo,
		backupService: backupService,
		logger:        logger,
	}
}

// OverrideView shows a unit's generated set next to its override
type OverrideView struct {
	SubjectID string         `json:"subject_id"`
	UnitID    string         `json:"unit_id"`
	Generated questions.Set  `json:"generated"`
	Override  *questions.Set `json:"override"`
	Merged    questions.Set  `json:"merged"`
}

func (h *AdminHandler) overrideView(r *http.Request, subjectID, unitID string) (*OverrideView, error) {
	override, err := h.overrideRepo.Override(r.Context(), subjectID, unitID)
	if err != nil {
		return nil, err
	}
	return &OverrideView{
		SubjectID: subjectID,
		UnitID:    unitID,
		Generated: h.bank.Generated(subjectID, unitID),
		Override:  override,
		Merged:    h.bank.Questions(r.Context(), subjectID, unitID),
	}, nil
}

// ListOverrides returns every stored override
func (h *AdminHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.overrideRepo.ListOverrides(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load overrides", "error listing overrides", err)
		return
	}
	if overrides == nil {
		overrides = []repository.Override{}
	}
	respondJSON(w, http.StatusOK, overrides)
}

// GetOverride returns the generated, manual and merged sets for a unit
func (h *AdminHandler) GetOverride(w http.ResponseWriter, r *http.Request) {
	subjectID, unitID := r.PathValue("subjectId"), r.PathValue("unitId")
	if _, err := h.catalog.Unit(subjectID, unitID); err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}

	view, err := h.overrideView(r, subjectID, unitID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load override", "error loading override", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// PutOverride stores a manual question set for a unit
func (h *AdminHandler) PutOverride(w http.ResponseWriter, r *http.Request) {
	subjectID, unitID := r.PathValue("subjectId"), r.PathValue("unitId")
	if _, err := h.catalog.Unit(subjectID, unitID); err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}

	var set questions.Set
	if err := decodeJSON(w, r, &set); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}

	user := GetUserFromContext(r.Context())
	if err := h.overrideRepo.UpsertOverride(r.Context(), subjectID, unitID, set, user.ID); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to save override", "error saving override", err)
		return
	}
	h.bank.Invalidate(subjectID, unitID)
	h.logger.Info("question override saved",
		zap.String("subject_id", subjectID),
		zap.String("unit_id", unitID),
		zap.Int64("admin_id", user.ID))

	view, err := h.overrideView(r, subjectID, unitID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load override", "error loading override", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// DeleteOverride restores a unit to its generated questions
func (h *AdminHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	subjectID, unitID := r.PathValue("subjectId"), r.PathValue("unitId")
	if err := h.overrideRepo.DeleteOverride(r.Context(), subjectID, unitID); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to delete override", "error deleting override", err)
		return
	}
	h.bank.Invalidate(subjectID, unitID)
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns every account with its profile
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.GetAllUsers(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load users", "error fetching users", err)
		return
	}

	views := make([]AdminUserView, 0, len(users))
	for _, u := range users {
		view := AdminUserView{User: u}
		profile, err := h.profileRepo.GetProfile(r.Context(), u.ID)
		if err != nil {
			h.logger.Warn("failed to load profile", zap.Int64("user_id", u.ID), zap.Error(err))
		}
		view.Profile = profile
		views = append(views, view)
	}
	respondJSON(w, http.StatusOK, views)
}

// UpdateUser changes a user's admin flag and, when given, their role
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req AdminUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		respondServiceError(w, h.logger, "", service.ErrInvalidRole)
		return
	}

	if user := GetUserFromContext(r.Context()); userID == user.ID && !req.IsAdmin {
		respondWithError(w, h.logger, http.StatusBadRequest, "Cannot remove your own admin access", "", nil)
		return
	}
	if err := h.userRepo.SetAdmin(r.Context(), userID, req.IsAdmin); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to update user", "error updating user", err)
		return
	}
	if req.Role != "" {
		if err := h.profileRepo.SetRole(r.Context(), userID, req.Role); err != nil {
			respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to update user", "error updating role", err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser deletes an account and everything it owns
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if user := GetUserFromContext(r.Context()); userID == user.ID {
		respondWithError(w, h.logger, http.StatusBadRequest, "Cannot delete your own account", "", nil)
		return
	}

	if err := h.userRepo.DeleteUser(r.Context(), userID); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to delete user", "error deleting user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetScores deletes a user's score history
func (h *AdminHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.scoreRepo.DeleteScoresForUser(r.Context(), userID); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to reset scores", "error deleting scores", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Database returns row counts and stored overrides
func (h *AdminHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backupService.Stats(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load database stats", "error getting database stats", err)
		return
	}
	overrides, err := h.overrideRepo.ListOverrides(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load overrides", "error listing overrides", err)
		return
	}
	if overrides == nil {
		overrides = []repository.Override{}
	}
	respondJSON(w, http.StatusOK, AdminDatabaseView{Stats: stats, Overrides: overrides})
}

// ExportDatabase streams a JSON backup as a download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("educross_backup_%s.json", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(r.Context(), w); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to export database", "error exporting database", err)
		return
	}
	h.logger.Info("database exported", zap.Int64("admin_id", GetUserFromContext(r.Context()).ID))
}

// ImportDatabase restores an uploaded backup_file. With clear_data=true the
// database is emptied first.
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Failed to parse form", "", err)
		return
	}

	file, _, err := r.FormFile("backup_file")
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Please select a backup file", "", err)
		return
	}
	defer file.Close()

	admin := GetUserFromContext(r.Context())
	clearData := r.FormValue("clear_data") == "true"
	if clearData {
		h.logger.Warn("database clear requested before import", zap.Int64("admin_id", admin.ID))
		if err := h.backupService.Clear(r.Context()); err != nil {
			respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to clear database", "error clearing database", err)
			return
		}
	}

	if err := h.backupService.ImportFromReader(r.Context(), file); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Failed to import database: "+err.Error(), "error importing database", err)
		return
	}
	h.logger.Info("database imported", zap.Int64("admin_id", admin.ID), zap.Bool("clear_data", clearData))

	stats, err := h.backupService.Stats(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load database stats", "error getting database stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid user ID", "", nil)
		return 0, false
	}
	return id, true
}
