package handlers

import (
	"encoding/json"
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/models"
	"taskrewards/internal/services"

	"github.com/go-chi/chi/v5"
)

type withdrawalRequest struct {
	Amount      string `json:"amount"`
	Network     string `json:"network"`
	Destination string `json:"destination"`
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	txn, err := h.withdrawalSvc.Request(r.Context(), services.WithdrawalRequest{
		UserID:      userID,
		AmountMinor: amount,
		Network:     req.Network,
		Destination: req.Destination,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, txn)
}

func (h *Handler) AdminListWithdrawals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.TxPending
	}
	if err := models.ValidTxStatus(status); err != nil {
		respondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	limit, offset := parsePagination(r)
	rows, err := h.transactions.ListByStatus(r.Context(), models.KindWithdrawal, status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"withdrawals": rows})
}

type processRequest struct {
	Action string `json:"action"`
	Proof  string `json:"proof"`
	Reason string `json:"reason"`
}

func (p processRequest) proofOrReason() string {
	if p.Action == services.ActionReject {
		return p.Reason
	}
	return p.Proof
}

func (h *Handler) ProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	transactionID := chi.URLParam(r, "id")
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	txn, err := h.withdrawalSvc.Process(r.Context(), actorID, transactionID, req.Action, req.proofOrReason())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

type bulkProcessRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
	Proof  string   `json:"proof"`
	Reason string   `json:"reason"`
}

func (h *Handler) BulkProcessWithdrawals(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req bulkProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	pr := processRequest{Action: req.Action, Proof: req.Proof, Reason: req.Reason}
	results := h.withdrawalSvc.BulkProcess(r.Context(), actorID, req.IDs, req.Action, pr.proofOrReason())
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}
