package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"taskrewards/internal/models"
)

func TestListOffersShowsDisplayRewardOnly(t *testing.T) {
	handler := newTestHandler(Deps{
		Users: stubUserStore{
			getByIDFn: func(_ context.Context, userID string) (models.User, error) {
				return models.User{ID: userID, Tier: 0}, nil
			},
		},
		Offers: stubOfferStore{
			listActiveFn: func(context.Context, int, int) ([]models.Offer, error) {
				return []models.Offer{
					{ID: "offer-1", TaskID: "task-1", Title: "Install app", RealValue: 250, Active: true},
				}, nil
			},
		},
	})
	rr := serveAuthed(t, handler.ListOffers, http.MethodGet, "/offers", "user-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"display_reward":"0.25"`) {
		t.Fatalf("tier 0 sees 10%% of 2.50: %s", body)
	}
	if strings.Contains(body, "real_value") || strings.Contains(body, "2.50") {
		t.Fatalf("real value leaked: %s", body)
	}
}

func TestListOffersScalesWithTier(t *testing.T) {
	handler := newTestHandler(Deps{
		Users: stubUserStore{
			getByIDFn: func(_ context.Context, userID string) (models.User, error) {
				return models.User{ID: userID, Tier: 5}, nil
			},
		},
		Offers: stubOfferStore{
			listActiveFn: func(context.Context, int, int) ([]models.Offer, error) {
				return []models.Offer{
					{ID: "offer-1", TaskID: "task-1", Title: "Install app", RealValue: 250, Active: true},
				}, nil
			},
		},
	})
	rr := serveAuthed(t, handler.ListOffers, http.MethodGet, "/offers", "user-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"display_reward":"2.13"`) {
		t.Fatalf("tier 5 sees 85%% of 2.50: %s", rr.Body.String())
	}
}
