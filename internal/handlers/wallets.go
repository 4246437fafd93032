package handlers

import (
	"net/http"

	"taskrewards/internal/middleware"
	"taskrewards/internal/models"
	"taskrewards/internal/money"
	"taskrewards/internal/websocket"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallets.GetByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":           wallet.UserID,
		"available_balance": money.FormatMinor(wallet.AvailableBalance),
		"pending_balance":   money.FormatMinor(wallet.PendingBalance),
		"lifetime_earned":   money.FormatMinor(wallet.LifetimeEarned),
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind != "" {
		if err := models.ValidKind(kind); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	limit, offset := parsePagination(r)
	rows, err := h.transactions.ListByUser(r.Context(), userID, kind, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": rows})
}

func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	// token rides the query string because browsers cannot set headers
	// on websocket dials
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	userID, err := h.userIDFromToken(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, userID)
}
