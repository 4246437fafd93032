package handlers

import (
	"net/http"

	"taskrewards/internal/services"

	"github.com/go-chi/chi/v5"
)

// HandlePostback accepts partner conversion callbacks as form or query
// parameters. The response status is intentionally coarse so partners
// retry on 5xx and stop on 2xx.
func (h *Handler) HandlePostback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	payload := services.PostbackPayload{
		Partner:     chi.URLParam(r, "partner"),
		ReferenceID: r.Form.Get("ref"),
		UserID:      r.Form.Get("user_id"),
		OfferID:     r.Form.Get("offer_id"),
		Signature:   r.Form.Get("sig"),
	}
	outcome, err := h.postbackSvc.Handle(r.Context(), payload)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": outcome})
}
