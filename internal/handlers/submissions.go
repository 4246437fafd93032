package handlers

import (
	"encoding/json"
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/models"

	"github.com/go-chi/chi/v5"
)

type createSubmissionRequest struct {
	TaskID string `json:"task_id"`
}

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	submission, err := h.submissionSvc.Submit(r.Context(), userID, req.TaskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, submission)
}

func (h *Handler) ListOwnSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	rows, err := h.submissions.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"submissions": rows})
}

func (h *Handler) AdminListSubmissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.SubmissionPending
	}
	limit, offset := parsePagination(r)
	rows, err := h.submissions.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"submissions": rows})
}

type reviewRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (h *Handler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	submissionID := chi.URLParam(r, "id")
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	submission, err := h.submissionSvc.Review(r.Context(), actorID, submissionID, req.Action, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, submission)
}

type bulkReviewRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
	Reason string   `json:"reason"`
}

func (h *Handler) BulkReviewSubmissions(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req bulkReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	results := h.submissionSvc.BulkReview(r.Context(), actorID, req.IDs, req.Action, req.Reason)
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}
