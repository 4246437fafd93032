package handlers

import (
	"encoding/json"
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/models"
	"taskrewards/internal/money"

	"github.com/go-chi/chi/v5"
)

type upgradeRequest struct {
	ToLevel        int    `json:"to_level"`
	PaymentProof   string `json:"payment_proof"`
	PaymentAddress string `json:"payment_address"`
}

func (h *Handler) RequestUpgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	upgrade, err := h.upgradeSvc.Request(r.Context(), userID, req.ToLevel, req.PaymentProof, req.PaymentAddress)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, upgrade)
}

func (h *Handler) AdminListUpgrades(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.UpgradePending
	}
	limit, offset := parsePagination(r)
	rows, err := h.upgrades.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"upgrades": rows})
}

type approveUpgradeRequest struct {
	TxReference string `json:"tx_reference"`
}

func (h *Handler) ApproveUpgrade(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	requestID := chi.URLParam(r, "id")
	var req approveUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	upgrade, err := h.upgradeSvc.Approve(r.Context(), actorID, requestID, req.TxReference)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upgrade)
}

type rejectUpgradeRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) RejectUpgrade(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	requestID := chi.URLParam(r, "id")
	var req rejectUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	upgrade, err := h.upgradeSvc.Reject(r.Context(), actorID, requestID, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upgrade)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(plans))
	for _, p := range plans {
		out = append(out, map[string]any{
			"level": p.Level,
			"name":  p.Name,
			"price": money.FormatMinor(p.Price),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": out})
}
