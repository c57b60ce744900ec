package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"educross/internal/content"
	"educross/internal/games"
	"educross/internal/questions"
)

// RandSource returns a fresh generator for one request
type RandSource func() *rand.Rand

// TimeSeeded seeds each generator from the clock
func TimeSeeded() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ContentHandler serves lesson content, generated questions and game payloads
type ContentHandler struct {
	catalog *content.Catalog
	bank    *questions.Bank
	newRand RandSource
	logger  *zap.Logger
}

// NewContentHandler creates a content handler. A nil newRand uses TimeSeeded.
func NewContentHandler(catalog *content.Catalog, bank *questions.Bank, newRand RandSource, logger *zap.Logger) *ContentHandler {
	if newRand == nil {
		newRand = TimeSeeded
	}
	return &ContentHandler{catalog: catalog, bank: bank, newRand: newRand, logger: logger}
}

// ListSubjects returns every subject with its unit outline
func (h *ContentHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := h.catalog.Subjects()
	views := make([]SubjectView, 0, len(subjects))
	for _, s := range subjects {
		views = append(views, newSubjectView(s))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetSubject returns one subject's outline
func (h *ContentHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.catalog.Subject(r.PathValue("subjectId"))
	if err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}
	respondJSON(w, http.StatusOK, newSubjectView(*subject))
}

// GetUnit returns a unit with its slides
func (h *ContentHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := h.catalog.Unit(r.PathValue("subjectId"), r.PathValue("unitId"))
	if err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}
	respondJSON(w, http.StatusOK, unit)
}

// Questions returns a unit's question set with overrides applied
func (h *ContentHandler) Questions(w http.ResponseWriter, r *http.Request) {
	subjectID, unitID := r.PathValue("subjectId"), r.PathValue("unitId")
	if _, err := h.catalog.Unit(subjectID, unitID); err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}

	set := h.bank.Questions(r.Context(), subjectID, unitID)
	respondJSON(w, http.StatusOK, QuestionsResponse{
		SubjectID: subjectID,
		UnitID:    unitID,
		Set:       set,
		Items:     set.Items(),
	})
}

// ListGames returns the game catalogue
func (h *ContentHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, games.All())
}

// GamePayload lays out one game for a unit
func (h *ContentHandler) GamePayload(w http.ResponseWriter, r *http.Request) {
	subjectID, unitID := r.PathValue("subjectId"), r.PathValue("unitId")
	if _, err := h.catalog.Unit(subjectID, unitID); err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}

	set := h.bank.Questions(r.Context(), subjectID, unitID)
	payload, err := games.Build(r.PathValue("gameId"), set, h.newRand())
	if err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}
