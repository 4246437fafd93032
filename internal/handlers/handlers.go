package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"taskrewards/internal/models"
	"taskrewards/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the engine's sentinel errors onto HTTP statuses.
// Validation failures are 400s, state conflicts 409s, everything
// unexpected a 500 without leaking internals.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidDirection),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrUnknownNetwork),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrAboveMaximum),
		errors.Is(err, services.ErrMissingReason),
		errors.Is(err, services.ErrMissingProof),
		errors.Is(err, services.ErrMissingRef),
		errors.Is(err, services.ErrNotAnUpgrade),
		errors.Is(err, services.ErrUnknownPlan),
		errors.Is(err, models.ErrUnknownKind),
		errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, models.ErrUnknownReason):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrLimitExceeded):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrWrongState),
		errors.Is(err, services.ErrPendingUpgrade):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrOfferNotFound),
		errors.Is(err, services.ErrUnknownPostback):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrBadSignature):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func parsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := atoiPositive(raw); err == nil && parsed <= 200 {
			limit = parsed
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := atoiPositive(raw); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
