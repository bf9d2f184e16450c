package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"menu-admin/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse is the single error envelope every failure collapses into.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Too late to change the status; nothing useful to do.
		return
	}
}

// writeError writes an error envelope with the given status, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service failure onto a status code and the error
// envelope. Wrapped causes stay in the logs and out of the response body.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeValidation:
		status = http.StatusBadRequest
	case model.ErrCodeCategoryExists:
		status = http.StatusConflict
	case model.ErrCodeCategoryNotFound, model.ErrCodeProductNotFound:
		status = http.StatusNotFound
	case model.ErrCodeUpload:
		status = http.StatusBadGateway
	}

	logger.Error().Err(err).Str("code", domainErr.Code).Msg("operation failed")
	writeJSON(w, status, ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
}
