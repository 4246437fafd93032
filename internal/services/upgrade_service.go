package services

import (
	"context"
	"errors"

	"taskrewards/internal/db"
	"taskrewards/internal/models"
	"taskrewards/internal/money"
	"taskrewards/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUnknownPlan    = errors.New("no plan for requested level")
	ErrNotAnUpgrade   = errors.New("target level must be above current tier")
	ErrPendingUpgrade = errors.New("an upgrade request is already pending")
)

type UpgradeStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UpgradeInput) error
	GetByID(ctx context.Context, requestID string) (models.LevelUpgradeRequest, error)
	Review(ctx context.Context, tx store.Execer, requestID, status, reviewerID, notes string) (int64, error)
	HasPending(ctx context.Context, userID string) (bool, error)
}

type PlanStore interface {
	GetByLevel(ctx context.Context, level int) (models.LevelPlan, error)
}

type TierWriter interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	UpdateTier(ctx context.Context, tx store.Execer, userID string, tier int) error
}

// UpgradeService verifies off-platform payments for tier changes. The plan
// price is captured at request time and honored even if the plan is
// repriced while the request sits in review.
type UpgradeService struct {
	txRunner db.TxRunner
	upgrades UpgradeStore
	plans    PlanStore
	users    TierWriter
	txStore  TransactionStore
	audit    AuditLogger
	notifier Notifier
}

func NewUpgradeService(txRunner db.TxRunner, upgrades UpgradeStore, plans PlanStore, users TierWriter, txStore TransactionStore, audit AuditLogger, notifier Notifier) *UpgradeService {
	return &UpgradeService{
		txRunner: txRunner,
		upgrades: upgrades,
		plans:    plans,
		users:    users,
		txStore:  txStore,
		audit:    audit,
		notifier: notifier,
	}
}

func (s *UpgradeService) Request(ctx context.Context, userID string, toLevel int, paymentProof, paymentAddress string) (models.LevelUpgradeRequest, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	if toLevel <= user.Tier {
		return models.LevelUpgradeRequest{}, ErrNotAnUpgrade
	}
	plan, err := s.plans.GetByLevel(ctx, toLevel)
	if err != nil {
		return models.LevelUpgradeRequest{}, ErrUnknownPlan
	}
	pending, err := s.upgrades.HasPending(ctx, userID)
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	if pending {
		return models.LevelUpgradeRequest{}, ErrPendingUpgrade
	}
	requestID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.upgrades.Create(ctx, tx, store.UpgradeInput{
			ID:             requestID,
			UserID:         userID,
			FromLevel:      user.Tier,
			ToLevel:        toLevel,
			Price:          plan.Price,
			PaymentProof:   paymentProof,
			PaymentAddress: paymentAddress,
		})
	})
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	s.audit.Record(userID, "request_upgrade", "level_upgrade_request", requestID, map[string]string{
		"to_level": plan.Name,
		"price":    money.FormatMinor(plan.Price),
	})
	return s.upgrades.GetByID(ctx, requestID)
}

// Approve verifies the upgrade: the tier flips and a record-only ledger row
// is written for audit visibility. The price was paid off-platform, so the
// row never touches the wallet balance.
func (s *UpgradeService) Approve(ctx context.Context, actorID, requestID, txRef string) (models.LevelUpgradeRequest, error) {
	if txRef == "" {
		return models.LevelUpgradeRequest{}, ErrMissingProof
	}
	request, err := s.upgrades.GetByID(ctx, requestID)
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	if request.Status != models.UpgradePending {
		return models.LevelUpgradeRequest{}, ErrAlreadyReviewed
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.upgrades.Review(ctx, tx, requestID, models.UpgradeVerified, actorID, txRef)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyReviewed
		}
		if err := s.users.UpdateTier(ctx, tx, request.UserID, request.ToLevel); err != nil {
			return err
		}
		actor := actorID
		return s.txStore.Create(ctx, tx, store.TransactionInput{
			ID:            uuid.NewString(),
			UserID:        request.UserID,
			Kind:          models.KindLevelUpgrade,
			Amount:        -request.Price,
			Status:        models.TxCompleted,
			Category:      "upgrade",
			ReferenceType: stringPtr("level_upgrade_request"),
			ReferenceID:   stringPtr(requestID),
			Metadata:      metadataJSON(map[string]string{"record_only": "true", "payment_ref": txRef}),
			ProcessedBy:   &actor,
		})
	})
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	s.audit.Record(actorID, "approve_upgrade", "level_upgrade_request", requestID, map[string]string{
		"user_id":  request.UserID,
		"to_level": itoa(request.ToLevel),
	})
	notify(s.notifier, ctx, request.UserID, "upgrade_verified", map[string]string{
		"request_id": requestID,
	})
	return s.upgrades.GetByID(ctx, requestID)
}

func (s *UpgradeService) Reject(ctx context.Context, actorID, requestID, reason string) (models.LevelUpgradeRequest, error) {
	if reason == "" {
		return models.LevelUpgradeRequest{}, ErrMissingReason
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.upgrades.Review(ctx, tx, requestID, models.UpgradeRejected, actorID, reason)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyReviewed
		}
		return nil
	})
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	request, err := s.upgrades.GetByID(ctx, requestID)
	if err != nil {
		return models.LevelUpgradeRequest{}, err
	}
	s.audit.Record(actorID, "reject_upgrade", "level_upgrade_request", requestID, map[string]string{
		"reason": reason,
	})
	notify(s.notifier, ctx, request.UserID, "upgrade_rejected", map[string]string{
		"request_id": requestID,
		"reason":     reason,
	})
	return request, nil
}
