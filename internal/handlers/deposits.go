package handlers

import (
	"encoding/json"
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/models"
	"taskrewards/internal/services"

	"github.com/go-chi/chi/v5"
)

type depositRequest struct {
	Amount      string `json:"amount"`
	Network     string `json:"network"`
	TxReference string `json:"tx_reference"`
}

func (h *Handler) RequestDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	txn, err := h.depositSvc.Request(r.Context(), services.DepositRequest{
		UserID:      userID,
		AmountMinor: amount,
		Network:     req.Network,
		TxReference: req.TxReference,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, txn)
}

func (h *Handler) AdminListDeposits(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.TxPending
	}
	if err := models.ValidTxStatus(status); err != nil {
		respondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	limit, offset := parsePagination(r)
	rows, err := h.transactions.ListByStatus(r.Context(), models.KindDeposit, status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deposits": rows})
}

func (h *Handler) ProcessDeposit(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	transactionID := chi.URLParam(r, "id")
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	txn, err := h.depositSvc.Process(r.Context(), actorID, transactionID, req.Action, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}
