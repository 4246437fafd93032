package services

import (
	"context"
	"time"

	"taskrewards/internal/models"
	"taskrewards/internal/store"
	"taskrewards/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubWalletStore struct {
	getByUserFn      func(ctx context.Context, userID string) (models.Wallet, error)
	getForUpdateFn   func(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	updateBalancesFn func(ctx context.Context, tx store.Execer, userID string, available, pending, lifetime int64) error
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getByUserFn == nil {
		return models.Wallet{UserID: userID}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubWalletStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error) {
	if s.getForUpdateFn == nil {
		return models.Wallet{UserID: userID}, nil
	}
	return s.getForUpdateFn(ctx, tx, userID)
}

func (s stubWalletStore) UpdateBalances(ctx context.Context, tx store.Execer, userID string, available, pending, lifetime int64) error {
	if s.updateBalancesFn == nil {
		return nil
	}
	return s.updateBalancesFn(ctx, tx, userID, available, pending, lifetime)
}

type stubTransactionStore struct {
	createFn            func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	getByIDFn           func(ctx context.Context, transactionID string) (models.Transaction, error)
	transitionFn        func(ctx context.Context, tx store.Execer, transactionID, fromStatus, toStatus, actorID string) (int64, error)
	updateMetadataFn    func(ctx context.Context, tx store.Execer, transactionID, metadata string) error
	existsByReferenceFn func(ctx context.Context, referenceType, referenceID string) (bool, error)
	sumWithdrawalsFn    func(ctx context.Context, userID string, since time.Time) (int64, error)
	pendingTotalFn      func(ctx context.Context, tx store.Getter, userID string) (int64, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{ID: transactionID}, nil
	}
	return s.getByIDFn(ctx, transactionID)
}

func (s stubTransactionStore) Transition(ctx context.Context, tx store.Execer, transactionID, fromStatus, toStatus, actorID string) (int64, error) {
	if s.transitionFn == nil {
		return 1, nil
	}
	return s.transitionFn(ctx, tx, transactionID, fromStatus, toStatus, actorID)
}

func (s stubTransactionStore) UpdateMetadata(ctx context.Context, tx store.Execer, transactionID, metadata string) error {
	if s.updateMetadataFn == nil {
		return nil
	}
	return s.updateMetadataFn(ctx, tx, transactionID, metadata)
}

func (s stubTransactionStore) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	if s.existsByReferenceFn == nil {
		return false, nil
	}
	return s.existsByReferenceFn(ctx, referenceType, referenceID)
}

func (s stubTransactionStore) SumWithdrawalsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	if s.sumWithdrawalsFn == nil {
		return 0, nil
	}
	return s.sumWithdrawalsFn(ctx, userID, since)
}

func (s stubTransactionStore) PendingWithdrawalTotal(ctx context.Context, tx store.Getter, userID string) (int64, error) {
	if s.pendingTotalFn == nil {
		return 0, nil
	}
	return s.pendingTotalFn(ctx, tx, userID)
}

type stubSubmissionStore struct {
	createFn  func(ctx context.Context, tx store.Execer, input store.SubmissionInput) error
	getByIDFn func(ctx context.Context, submissionID string) (models.TaskSubmission, error)
	reviewFn  func(ctx context.Context, tx store.Execer, submissionID, status, reviewerID, notes string) (int64, error)
}

func (s stubSubmissionStore) Create(ctx context.Context, tx store.Execer, input store.SubmissionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubSubmissionStore) GetByID(ctx context.Context, submissionID string) (models.TaskSubmission, error) {
	if s.getByIDFn == nil {
		return models.TaskSubmission{ID: submissionID, Status: models.SubmissionPending}, nil
	}
	return s.getByIDFn(ctx, submissionID)
}

func (s stubSubmissionStore) Review(ctx context.Context, tx store.Execer, submissionID, status, reviewerID, notes string) (int64, error) {
	if s.reviewFn == nil {
		return 1, nil
	}
	return s.reviewFn(ctx, tx, submissionID, status, reviewerID, notes)
}

type stubOfferStore struct {
	getByIDFn     func(ctx context.Context, offerID string) (models.Offer, error)
	getByTaskIDFn func(ctx context.Context, taskID string) (models.Offer, error)
}

func (s stubOfferStore) GetByID(ctx context.Context, offerID string) (models.Offer, error) {
	if s.getByIDFn == nil {
		return models.Offer{ID: offerID, Active: true}, nil
	}
	return s.getByIDFn(ctx, offerID)
}

func (s stubOfferStore) GetByTaskID(ctx context.Context, taskID string) (models.Offer, error) {
	if s.getByTaskIDFn == nil {
		return models.Offer{TaskID: taskID, Active: true}, nil
	}
	return s.getByTaskIDFn(ctx, taskID)
}

type stubReferralStore struct {
	insertEdgeFn func(ctx context.Context, tx store.Execer, referrerID, referredID string, depth int) error
	ancestorsFn  func(ctx context.Context, userID string, maxDepth int) ([]models.ReferralEdge, error)
}

func (s stubReferralStore) InsertEdge(ctx context.Context, tx store.Execer, referrerID, referredID string, depth int) error {
	if s.insertEdgeFn == nil {
		return nil
	}
	return s.insertEdgeFn(ctx, tx, referrerID, referredID, depth)
}

func (s stubReferralStore) Ancestors(ctx context.Context, userID string, maxDepth int) ([]models.ReferralEdge, error) {
	if s.ancestorsFn == nil {
		return nil, nil
	}
	return s.ancestorsFn(ctx, userID, maxDepth)
}

type stubUserStore struct {
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
	updateTierFn func(ctx context.Context, tx store.Execer, userID string, tier int) error
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID, Status: models.UserActive}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) UpdateTier(ctx context.Context, tx store.Execer, userID string, tier int) error {
	if s.updateTierFn == nil {
		return nil
	}
	return s.updateTierFn(ctx, tx, userID, tier)
}

type stubUpgradeStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.UpgradeInput) error
	getByIDFn    func(ctx context.Context, requestID string) (models.LevelUpgradeRequest, error)
	reviewFn     func(ctx context.Context, tx store.Execer, requestID, status, reviewerID, notes string) (int64, error)
	hasPendingFn func(ctx context.Context, userID string) (bool, error)
}

func (s stubUpgradeStore) Create(ctx context.Context, tx store.Execer, input store.UpgradeInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUpgradeStore) GetByID(ctx context.Context, requestID string) (models.LevelUpgradeRequest, error) {
	if s.getByIDFn == nil {
		return models.LevelUpgradeRequest{ID: requestID, Status: models.UpgradePending}, nil
	}
	return s.getByIDFn(ctx, requestID)
}

func (s stubUpgradeStore) Review(ctx context.Context, tx store.Execer, requestID, status, reviewerID, notes string) (int64, error) {
	if s.reviewFn == nil {
		return 1, nil
	}
	return s.reviewFn(ctx, tx, requestID, status, reviewerID, notes)
}

func (s stubUpgradeStore) HasPending(ctx context.Context, userID string) (bool, error) {
	if s.hasPendingFn == nil {
		return false, nil
	}
	return s.hasPendingFn(ctx, userID)
}

type stubPlanStore struct {
	getByLevelFn func(ctx context.Context, level int) (models.LevelPlan, error)
}

func (s stubPlanStore) GetByLevel(ctx context.Context, level int) (models.LevelPlan, error) {
	if s.getByLevelFn == nil {
		return models.LevelPlan{Level: level}, nil
	}
	return s.getByLevelFn(ctx, level)
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(actorID, action, entityType, entityID string, data map[string]string) {
	r.actions = append(r.actions, action)
}

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}

type stubNotifier struct {
	events []string
}

func (s *stubNotifier) Notify(_ context.Context, _, event string, _ map[string]string) error {
	s.events = append(s.events, event)
	return nil
}
