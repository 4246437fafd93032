package services

import (
	"context"
	"testing"

	"taskrewards/internal/models"
	"taskrewards/internal/store"
)

func signedPayload(secret string) PostbackPayload {
	payload := PostbackPayload{
		Partner:     "offerwall",
		ReferenceID: "conv-1",
		UserID:      "user-1",
		OfferID:     "offer-1",
	}
	payload.Signature = SignPostback(secret, payload)
	return payload
}

func newPostbackService(secret string, offers stubOfferStore, txStore stubTransactionStore, wallets stubWalletStore) *PostbackService {
	walletSvc := NewWalletService(fakeTxRunner{}, wallets, txStore, &recordingAudit{}, &stubHub{})
	referralSvc := NewReferralService(stubReferralStore{}, txStore, walletSvc, 3, nil)
	return NewPostbackService(fakeTxRunner{}, secret, offers, stubUserStore{}, walletSvc, txStore, referralSvc, &recordingAudit{})
}

func TestPostbackMissingReference(t *testing.T) {
	service := newPostbackService("secret", stubOfferStore{}, stubTransactionStore{}, stubWalletStore{})
	_, err := service.Handle(context.Background(), PostbackPayload{Partner: "offerwall"})
	if err != ErrMissingRef {
		t.Fatalf("expected ErrMissingRef, got %v", err)
	}
}

func TestPostbackBadSignature(t *testing.T) {
	service := newPostbackService("secret", stubOfferStore{}, stubTransactionStore{}, stubWalletStore{})
	payload := signedPayload("wrong-secret")
	_, err := service.Handle(context.Background(), payload)
	if err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestPostbackInactiveOffer(t *testing.T) {
	service := newPostbackService("secret", stubOfferStore{
		getByIDFn: func(_ context.Context, id string) (models.Offer, error) {
			return models.Offer{ID: id, Active: false}, nil
		},
	}, stubTransactionStore{}, stubWalletStore{})
	_, err := service.Handle(context.Background(), signedPayload("secret"))
	if err != ErrInactiveOffer {
		t.Fatalf("expected ErrInactiveOffer, got %v", err)
	}
}

func TestPostbackCreditsOfferRealValue(t *testing.T) {
	var created store.TransactionInput
	service := newPostbackService("secret", stubOfferStore{
		getByIDFn: func(_ context.Context, id string) (models.Offer, error) {
			return models.Offer{ID: id, RealValue: 250, Active: true}, nil
		},
	}, stubTransactionStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			created = input
			return nil
		},
	}, stubWalletStore{})

	outcome, err := service.Handle(context.Background(), signedPayload("secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != PostbackCredited {
		t.Fatalf("expected credited, got %s", outcome)
	}
	if created.Amount != 250 || created.Kind != models.KindEarning {
		t.Fatalf("unexpected credit: %#v", created)
	}
	if created.ReferenceID == nil || *created.ReferenceID != "offerwall:conv-1" {
		t.Fatalf("unexpected reference: %#v", created.ReferenceID)
	}
}

func TestPostbackReplayIsSkipped(t *testing.T) {
	service := newPostbackService("secret", stubOfferStore{}, stubTransactionStore{
		existsByReferenceFn: func(_ context.Context, referenceType, referenceID string) (bool, error) {
			if referenceType != "postback" || referenceID != "offerwall:conv-1" {
				t.Fatalf("unexpected reference %s/%s", referenceType, referenceID)
			}
			return true, nil
		},
		createFn: func(context.Context, store.Execer, store.TransactionInput) error {
			t.Fatalf("replay must not credit")
			return nil
		},
	}, stubWalletStore{})

	outcome, err := service.Handle(context.Background(), signedPayload("secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != PostbackSkipped {
		t.Fatalf("expected skipped, got %s", outcome)
	}
}

func TestSignPostbackRoundTrip(t *testing.T) {
	payload := PostbackPayload{Partner: "p", ReferenceID: "r", UserID: "u", OfferID: "o"}
	payload.Signature = SignPostback("secret", payload)
	service := newPostbackService("secret", stubOfferStore{}, stubTransactionStore{}, stubWalletStore{})
	if !service.verifySignature(payload) {
		t.Fatalf("signature should verify against the same secret")
	}
}
