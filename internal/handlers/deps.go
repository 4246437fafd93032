package handlers

import (
	"context"

	"taskrewards/internal/models"
	"taskrewards/internal/services"
	"taskrewards/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByReferralCode(ctx context.Context, code string) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, userID string) error
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
}

type TransactionStore interface {
	GetByID(ctx context.Context, transactionID string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID, kind string, limit, offset int) ([]models.Transaction, error)
	ListByStatus(ctx context.Context, kind, status string, limit, offset int) ([]models.Transaction, error)
}

type OfferStore interface {
	Create(ctx context.Context, tx store.Execer, id, taskID, title string, realValue int64) error
	GetByID(ctx context.Context, offerID string) (models.Offer, error)
	ListActive(ctx context.Context, limit, offset int) ([]models.Offer, error)
	Deactivate(ctx context.Context, tx store.Execer, offerID string) error
}

type SubmissionStore interface {
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.TaskSubmission, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.TaskSubmission, error)
}

type UpgradeStore interface {
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.LevelUpgradeRequest, error)
}

type PlanStore interface {
	List(ctx context.Context) ([]models.LevelPlan, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	HasAnyAdmin(ctx context.Context) (bool, error)
}

type AuditStore interface {
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

type WalletService interface {
	Adjust(ctx context.Context, req services.AdjustRequest) (int64, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, userID, taskID string) (models.TaskSubmission, error)
	Review(ctx context.Context, actorID, submissionID, action, reason string) (models.TaskSubmission, error)
	BulkReview(ctx context.Context, actorID string, submissionIDs []string, action, reason string) []services.BulkResult
}

type WithdrawalService interface {
	Request(ctx context.Context, req services.WithdrawalRequest) (models.Transaction, error)
	Process(ctx context.Context, actorID, transactionID, action, proofOrReason string) (models.Transaction, error)
	BulkProcess(ctx context.Context, actorID string, transactionIDs []string, action, proofOrReason string) []services.BulkResult
}

type DepositService interface {
	Request(ctx context.Context, req services.DepositRequest) (models.Transaction, error)
	Process(ctx context.Context, actorID, transactionID, action, reason string) (models.Transaction, error)
}

type UpgradeService interface {
	Request(ctx context.Context, userID string, toLevel int, paymentProof, paymentAddress string) (models.LevelUpgradeRequest, error)
	Approve(ctx context.Context, actorID, requestID, txRef string) (models.LevelUpgradeRequest, error)
	Reject(ctx context.Context, actorID, requestID, reason string) (models.LevelUpgradeRequest, error)
}

type PostbackService interface {
	Handle(ctx context.Context, payload services.PostbackPayload) (string, error)
}

type ReferralLinker interface {
	LinkReferralChain(ctx context.Context, tx store.Tx, newUserID, inviterID string) error
}
