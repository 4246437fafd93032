package handlers

import (
	"encoding/json"
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/models"
	"taskrewards/internal/money"
	"taskrewards/internal/services"

	"github.com/jmoiron/sqlx"
)

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

type adjustBalanceRequest struct {
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	Direction string `json:"direction"`
	Note      string `json:"note"`
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	newBalance, err := h.walletSvc.Adjust(r.Context(), services.AdjustRequest{
		ActorID:     actorID,
		UserID:      req.UserID,
		AmountMinor: amount,
		Direction:   req.Direction,
		Kind:        models.KindAdjustment,
		Category:    "admin",
		Note:        req.Note,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":           req.UserID,
		"available_balance": money.FormatMinor(newBalance),
	})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	entries, err := h.auditLog.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type promoteRequest struct {
	UserID string `json:"user_id"`
	Super  bool   `json:"super"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := h.users.GetByID(r.Context(), req.UserID); err != nil {
		respondServiceError(w, err)
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.admin.CreateAdmin(r.Context(), tx, req.UserID, req.Super, &actorID)
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.audit.Record(actorID, "admin.promote", "user", req.UserID, nil)
	respondJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}
