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
	ErrAlreadyReviewed = errors.New("submission already reviewed")
	ErrMissingReason   = errors.New("rejection reason is required")
	ErrInvalidAction   = errors.New("invalid action")
	ErrOfferNotFound   = errors.New("offer not found")
)

type SubmissionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.SubmissionInput) error
	GetByID(ctx context.Context, submissionID string) (models.TaskSubmission, error)
	Review(ctx context.Context, tx store.Execer, submissionID, status, reviewerID, notes string) (int64, error)
}

type OfferStore interface {
	GetByID(ctx context.Context, offerID string) (models.Offer, error)
	GetByTaskID(ctx context.Context, taskID string) (models.Offer, error)
}

// SubmissionService handles task-proof review: pending submissions move to
// approved or rejected exactly once, and approval is the moment the earning
// is credited.
type SubmissionService struct {
	txRunner    db.TxRunner
	submissions SubmissionStore
	offers      OfferStore
	wallets     *WalletService
	referrals   *ReferralService
	audit       AuditLogger
	notifier    Notifier
}

func NewSubmissionService(txRunner db.TxRunner, submissions SubmissionStore, offers OfferStore, wallets *WalletService, referrals *ReferralService, audit AuditLogger, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		txRunner:    txRunner,
		submissions: submissions,
		offers:      offers,
		wallets:     wallets,
		referrals:   referrals,
		audit:       audit,
		notifier:    notifier,
	}
}

// Submit snapshots the offer's real value onto the submission so a later
// offer edit cannot change what an approval pays out.
func (s *SubmissionService) Submit(ctx context.Context, userID, taskID string) (models.TaskSubmission, error) {
	offer, err := s.offers.GetByTaskID(ctx, taskID)
	if err != nil {
		return models.TaskSubmission{}, ErrOfferNotFound
	}
	if !offer.Active {
		return models.TaskSubmission{}, ErrOfferNotFound
	}
	submissionID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.submissions.Create(ctx, tx, store.SubmissionInput{
			ID:           submissionID,
			TaskID:       taskID,
			UserID:       userID,
			RewardAmount: offer.RealValue,
		})
	})
	if err != nil {
		return models.TaskSubmission{}, err
	}
	return s.submissions.GetByID(ctx, submissionID)
}

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Review moves one pending submission to a terminal state. Two concurrent
// approvals resolve to one success and one ErrAlreadyReviewed; the wallet
// is credited exactly once.
func (s *SubmissionService) Review(ctx context.Context, actorID, submissionID, action, reason string) (models.TaskSubmission, error) {
	switch action {
	case ActionApprove:
	case ActionReject:
		if reason == "" {
			return models.TaskSubmission{}, ErrMissingReason
		}
	default:
		return models.TaskSubmission{}, ErrInvalidAction
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return models.TaskSubmission{}, err
	}
	if submission.Status != models.SubmissionPending {
		return models.TaskSubmission{}, ErrAlreadyReviewed
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		status := models.SubmissionApproved
		if action == ActionReject {
			status = models.SubmissionRejected
		}
		rows, err := s.submissions.Review(ctx, tx, submissionID, status, actorID, reason)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyReviewed
		}
		if action == ActionReject {
			return nil
		}
		// The credit is the captured real value, never a display reward.
		_, transactionID, err := s.wallets.adjustInTx(ctx, tx, AdjustRequest{
			ActorID:       actorID,
			UserID:        submission.UserID,
			AmountMinor:   submission.RewardAmount,
			Direction:     DirectionAdd,
			Kind:          models.KindEarning,
			Category:      "tasks",
			Note:          "task submission approved",
			ReferenceType: stringPtr("task_submission"),
			ReferenceID:   stringPtr(submissionID),
		})
		if err != nil {
			return err
		}
		return s.referrals.PropagateInTx(ctx, tx, transactionID, submission.UserID, submission.RewardAmount, models.KindEarning, models.TxCompleted)
	})
	if err != nil {
		return models.TaskSubmission{}, err
	}

	s.audit.Record(actorID, "review_submission", "task_submission", submissionID, map[string]string{
		"action": action,
		"reason": reason,
		"amount": money.FormatMinor(submission.RewardAmount),
	})
	if action == ActionApprove {
		s.wallets.broadcast(ctx, submission.UserID)
		notify(s.notifier, ctx, submission.UserID, "submission_approved", map[string]string{
			"submission_id": submissionID,
		})
	} else {
		notify(s.notifier, ctx, submission.UserID, "submission_rejected", map[string]string{
			"submission_id": submissionID,
			"reason":        reason,
		})
	}
	return s.submissions.GetByID(ctx, submissionID)
}

type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkReview applies independent single-item transitions; one item failing
// neither blocks nor rolls back the others.
func (s *SubmissionService) BulkReview(ctx context.Context, actorID string, submissionIDs []string, action, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(submissionIDs))
	for _, id := range submissionIDs {
		_, err := s.Review(ctx, actorID, id, action, reason)
		if err != nil {
			results = append(results, BulkResult{ID: id, OK: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true})
	}
	return results
}
