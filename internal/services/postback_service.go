package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"taskrewards/internal/db"
	"taskrewards/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrBadSignature    = errors.New("postback signature mismatch")
	ErrMissingRef      = errors.New("postback reference id is required")
	ErrInactiveOffer   = errors.New("offer is not active")
	ErrUnknownPostback = errors.New("postback user or offer not found")
)

const (
	PostbackCredited = "credited"
	PostbackSkipped  = "skipped"
)

// PostbackService handles asynchronous completion callbacks from partner
// offer networks. A postback is idempotent on its partner reference: the
// first one credits, every replay is skipped without touching the wallet.
type PostbackService struct {
	txRunner  db.TxRunner
	secret    string
	offers    OfferStore
	users     UserStore
	wallets   *WalletService
	txStore   TransactionStore
	referrals *ReferralService
	audit     AuditLogger
}

func NewPostbackService(txRunner db.TxRunner, secret string, offers OfferStore, users UserStore, wallets *WalletService, txStore TransactionStore, referrals *ReferralService, audit AuditLogger) *PostbackService {
	return &PostbackService{
		txRunner:  txRunner,
		secret:    secret,
		offers:    offers,
		users:     users,
		wallets:   wallets,
		txStore:   txStore,
		referrals: referrals,
		audit:     audit,
	}
}

type PostbackPayload struct {
	Partner     string
	ReferenceID string
	UserID      string
	OfferID     string
	Signature   string
}

const postbackReference = "postback"

// Handle verifies and settles one partner callback. The amount credited is
// the offer's stored real value; partner-supplied amounts are ignored.
func (s *PostbackService) Handle(ctx context.Context, payload PostbackPayload) (string, error) {
	if payload.ReferenceID == "" {
		return "", ErrMissingRef
	}
	if !s.verifySignature(payload) {
		return "", ErrBadSignature
	}
	offer, err := s.offers.GetByID(ctx, payload.OfferID)
	if err != nil {
		return "", ErrUnknownPostback
	}
	if !offer.Active {
		return "", ErrInactiveOffer
	}
	if _, err := s.users.GetByID(ctx, payload.UserID); err != nil {
		return "", ErrUnknownPostback
	}

	reference := payload.Partner + ":" + payload.ReferenceID
	exists, err := s.txStore.ExistsByReference(ctx, postbackReference, reference)
	if err != nil {
		return "", err
	}
	if exists {
		return PostbackSkipped, nil
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, transactionID, err := s.wallets.adjustInTx(ctx, tx, AdjustRequest{
			ActorID:       "partner:" + payload.Partner,
			UserID:        payload.UserID,
			AmountMinor:   offer.RealValue,
			Direction:     DirectionAdd,
			Kind:          models.KindEarning,
			Category:      "offers",
			Note:          "offer completion postback",
			ReferenceType: stringPtr(postbackReference),
			ReferenceID:   stringPtr(reference),
		})
		if err != nil {
			return err
		}
		return s.referrals.PropagateInTx(ctx, tx, transactionID, payload.UserID, offer.RealValue, models.KindEarning, models.TxCompleted)
	})
	if err != nil {
		// unique reference index catches the race between two replays
		if isUniqueViolation(err) {
			return PostbackSkipped, nil
		}
		return "", err
	}
	s.audit.Record("partner:"+payload.Partner, "postback_credited", "offer", payload.OfferID, map[string]string{
		"user_id":   payload.UserID,
		"reference": reference,
	})
	s.wallets.broadcast(ctx, payload.UserID)
	return PostbackCredited, nil
}

// verifySignature checks the HMAC the partner computed over the canonical
// pipe-joined fields.
func (s *PostbackService) verifySignature(payload PostbackPayload) bool {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(strings.Join([]string{payload.Partner, payload.ReferenceID, payload.UserID, payload.OfferID}, "|")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(payload.Signature)))
}

// SignPostback is exported for partners' integration tests.
func SignPostback(secret string, payload PostbackPayload) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join([]string{payload.Partner, payload.ReferenceID, payload.UserID, payload.OfferID}, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
