package handlers

import (
	"encoding/json"
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/money"
	"taskrewards/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ListOffers renders offers through the obfuscation layer: the response
// carries the tier-derived display reward and never the real value.
func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	limit, offset := parsePagination(r)
	offers, err := h.offers.ListActive(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(offers))
	for _, offer := range offers {
		out = append(out, map[string]any{
			"id":             offer.ID,
			"task_id":        offer.TaskID,
			"title":          offer.Title,
			"display_reward": money.FormatMinor(services.DisplayReward(offer.RealValue, user.Tier)),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"offers": out})
}

type createOfferRequest struct {
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	RealValue string `json:"real_value"`
}

func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	realValue, err := parseAmountMinor(req.RealValue)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid real value")
		return
	}
	offerID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.offers.Create(r.Context(), tx, offerID, req.TaskID, req.Title, realValue)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create offer")
		return
	}
	h.audit.Record(actorID, "create_offer", "offer", offerID, map[string]string{
		"task_id":    req.TaskID,
		"real_value": money.FormatMinor(realValue),
	})
	offer, err := h.offers.GetByID(r.Context(), offerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// admins are the one audience allowed to see the real value
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":         offer.ID,
		"task_id":    offer.TaskID,
		"title":      offer.Title,
		"real_value": money.FormatMinor(offer.RealValue),
	})
}

func (h *Handler) DeactivateOffer(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	offerID := chi.URLParam(r, "id")
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.offers.Deactivate(r.Context(), tx, offerID)
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.audit.Record(actorID, "deactivate_offer", "offer", offerID, nil)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
