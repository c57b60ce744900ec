package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"educross/internal/content"
	"educross/internal/games"
	"educross/internal/service"
	"educross/internal/validation"
	"educross/internal/wordsearch"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// respondWithError logs err, when present, and writes userMsg as a JSON error
func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			logger.Error(logMsg, zap.Error(err))
		} else {
			logger.Debug(logMsg, zap.Error(err))
		}
	}
	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondServiceError maps domain errors to HTTP statuses. Anything unknown
// is an internal error.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, logMsg string, err error) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired):
		respondWithError(w, logger, http.StatusUnauthorized, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrNotTeacher),
		errors.Is(err, service.ErrNotStudent):
		respondWithError(w, logger, http.StatusForbidden, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrNicknameTaken):
		respondWithError(w, logger, http.StatusConflict, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrNicknameRejected),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, games.ErrUnknownGame):
		respondWithError(w, logger, http.StatusBadRequest, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, content.ErrSubjectNotFound),
		errors.Is(err, content.ErrUnitNotFound),
		errors.Is(err, wordsearch.ErrGameNotFound):
		respondWithError(w, logger, http.StatusNotFound, err.Error(), logMsg, err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a JSON body into v, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
