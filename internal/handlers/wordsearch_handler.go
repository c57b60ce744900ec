package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"educross/internal/content"
	"educross/internal/games"
	"educross/internal/models"
	"educross/internal/questions"
	"educross/internal/service"
	"educross/internal/wordsearch"
)

// WordSearchHandler runs server-side word-search games
type WordSearchHandler struct {
	catalog      *content.Catalog
	bank         *questions.Bank
	store        *wordsearch.SessionStore
	scoreService *service.ScoreService
	newRand      RandSource
	logger       *zap.Logger
}

// NewWordSearchHandler creates a word-search handler. A nil newRand uses TimeSeeded.
func NewWordSearchHandler(catalog *content.Catalog, bank *questions.Bank, store *wordsearch.SessionStore, scoreService *service.ScoreService, newRand RandSource, logger *zap.Logger) *WordSearchHandler {
	if newRand == nil {
		newRand = TimeSeeded
	}
	return &WordSearchHandler{
		catalog:      catalog,
		bank:         bank,
		store:        store,
		scoreService: scoreService,
		newRand:      newRand,
		logger:       logger,
	}
}

// Start builds a grid from the unit's key terms
func (h *WordSearchHandler) Start(w http.ResponseWriter, r *http.Request) {
	subjectID, unitID := r.PathValue("subjectId"), r.PathValue("unitId")
	if _, err := h.catalog.Unit(subjectID, unitID); err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}

	entries := games.WordSearchEntries(h.bank.Questions(r.Context(), subjectID, unitID))
	session := wordsearch.NewSession(entries, h.newRand())
	session.SubjectID = subjectID
	session.UnitID = unitID
	h.store.Save(session)

	if dropped := session.Dropped(); len(dropped) > 0 {
		h.logger.Debug("word search words not placed",
			zap.String("session_id", session.ID),
			zap.Strings("words", dropped))
	}
	respondJSON(w, http.StatusCreated, session.Snapshot())
}

// Get returns the current state of a game
func (h *WordSearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.store.View(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Select checks the straight line between two cells. The score is saved
// once the last word is found.
func (h *WordSearchHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBody, "", err)
		return
	}
	if !req.Start.InBounds() || !req.End.InBounds() {
		respondWithError(w, h.logger, http.StatusBadRequest, "Selection is outside the grid", "", nil)
		return
	}

	var (
		resp      SelectResponse
		completed bool
		found     int
		total     int
	)
	err := h.store.Update(r.PathValue("id"), func(s *wordsearch.Session) error {
		resp.Path = s.Select(req.Start, req.End)
		if match, ok := s.Check(resp.Path); ok {
			resp.Matched = true
			resp.Match = &match
			completed = s.Complete()
		}
		found, total = s.Score()
		resp.Game = s.Snapshot()
		return nil
	})
	if err != nil {
		respondServiceError(w, h.logger, "", err)
		return
	}

	if completed {
		resp.Score = h.saveScore(r, resp.Game, found, total)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *WordSearchHandler) saveScore(r *http.Request, game wordsearch.View, found, total int) *models.GameScore {
	user := GetUserFromContext(r.Context())
	if user == nil {
		return nil
	}
	score, err := h.scoreService.Save(r.Context(), user.ID, service.ScoreInput{
		Subject:  game.SubjectID,
		Topic:    game.UnitID,
		GameType: games.WordSearch,
		Score:    found,
		MaxScore: total,
	})
	if err != nil {
		h.logger.Warn("failed to save word search score", zap.String("session_id", game.ID), zap.Error(err))
		return nil
	}
	return score
}
