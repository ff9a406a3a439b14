package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"catalog-sync-shopify-layer/internal/domain"
)

type errorResponse struct {
	Message string             `json:"message"`
	Report  *domain.SyncReport `json:"report,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
// ErrNoArticles is a ValidationError too, so it is matched first.
func statusFor(err error) int {
	var stageErr *domain.StageError
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoArticles):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCredentialsNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &stageErr), domain.IsUpstream(err):
		return http.StatusBadGateway
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeSyncError answers a failed sync, attaching the report when the pass started
func writeSyncError(w http.ResponseWriter, err error, report *domain.SyncReport) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Failed to sync"
	}
	writeJSON(w, status, errorResponse{Message: message, Report: report})
}
