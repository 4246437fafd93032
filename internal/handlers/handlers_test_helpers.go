package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskrewards/internal/auth"
	"taskrewards/internal/config"
	"taskrewards/internal/middleware"
	"taskrewards/internal/models"
	"taskrewards/internal/services"
	"taskrewards/internal/store"
	"taskrewards/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn            func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByIDFn           func(ctx context.Context, userID string) (models.User, error)
	getByEmailFn        func(ctx context.Context, email string) (models.User, error)
	getByReferralCodeFn func(ctx context.Context, code string) (models.User, error)
	listFn              func(ctx context.Context, limit, offset int) ([]models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	if s.getByReferralCodeFn == nil {
		return models.User{}, nil
	}
	return s.getByReferralCodeFn(ctx, code)
}

func (s stubUserStore) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubWalletStore struct {
	createFn    func(ctx context.Context, tx store.Execer, userID string) error
	getByUserFn func(ctx context.Context, userID string) (models.Wallet, error)
}

func (s stubWalletStore) Create(ctx context.Context, tx store.Execer, userID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, userID)
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getByUserFn == nil {
		return models.Wallet{UserID: userID}, nil
	}
	return s.getByUserFn(ctx, userID)
}

type stubTransactionStore struct {
	getByIDFn      func(ctx context.Context, transactionID string) (models.Transaction, error)
	listByUserFn   func(ctx context.Context, userID, kind string, limit, offset int) ([]models.Transaction, error)
	listByStatusFn func(ctx context.Context, kind, status string, limit, offset int) ([]models.Transaction, error)
}

func (s stubTransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{ID: transactionID}, nil
	}
	return s.getByIDFn(ctx, transactionID)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID, kind string, limit, offset int) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, kind, limit, offset)
}

func (s stubTransactionStore) ListByStatus(ctx context.Context, kind, status string, limit, offset int) ([]models.Transaction, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, kind, status, limit, offset)
}

type stubOfferStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, taskID, title string, realValue int64) error
	getByIDFn    func(ctx context.Context, offerID string) (models.Offer, error)
	listActiveFn func(ctx context.Context, limit, offset int) ([]models.Offer, error)
	deactivateFn func(ctx context.Context, tx store.Execer, offerID string) error
}

func (s stubOfferStore) Create(ctx context.Context, tx store.Execer, id, taskID, title string, realValue int64) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, taskID, title, realValue)
}

func (s stubOfferStore) GetByID(ctx context.Context, offerID string) (models.Offer, error) {
	if s.getByIDFn == nil {
		return models.Offer{ID: offerID}, nil
	}
	return s.getByIDFn(ctx, offerID)
}

func (s stubOfferStore) ListActive(ctx context.Context, limit, offset int) ([]models.Offer, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx, limit, offset)
}

func (s stubOfferStore) Deactivate(ctx context.Context, tx store.Execer, offerID string) error {
	if s.deactivateFn == nil {
		return nil
	}
	return s.deactivateFn(ctx, tx, offerID)
}

type stubSubmissionStore struct {
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.TaskSubmission, error)
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]models.TaskSubmission, error)
}

func (s stubSubmissionStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.TaskSubmission, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

func (s stubSubmissionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.TaskSubmission, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

type stubUpgradeStore struct {
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.LevelUpgradeRequest, error)
}

func (s stubUpgradeStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.LevelUpgradeRequest, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubPlanStore struct {
	listFn func(ctx context.Context) ([]models.LevelPlan, error)
}

func (s stubPlanStore) List(ctx context.Context) ([]models.LevelPlan, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	hasAnyAdminFn func(ctx context.Context) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx)
}

type stubAuditStore struct {
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(actorID, action, entityType, entityID string, data map[string]string) {
	r.actions = append(r.actions, action)
}

type stubWalletService struct {
	adjustFn func(ctx context.Context, req services.AdjustRequest) (int64, error)
}

func (s stubWalletService) Adjust(ctx context.Context, req services.AdjustRequest) (int64, error) {
	if s.adjustFn == nil {
		return 0, nil
	}
	return s.adjustFn(ctx, req)
}

type stubSubmissionService struct {
	submitFn     func(ctx context.Context, userID, taskID string) (models.TaskSubmission, error)
	reviewFn     func(ctx context.Context, actorID, submissionID, action, reason string) (models.TaskSubmission, error)
	bulkReviewFn func(ctx context.Context, actorID string, submissionIDs []string, action, reason string) []services.BulkResult
}

func (s stubSubmissionService) Submit(ctx context.Context, userID, taskID string) (models.TaskSubmission, error) {
	if s.submitFn == nil {
		return models.TaskSubmission{}, nil
	}
	return s.submitFn(ctx, userID, taskID)
}

func (s stubSubmissionService) Review(ctx context.Context, actorID, submissionID, action, reason string) (models.TaskSubmission, error) {
	if s.reviewFn == nil {
		return models.TaskSubmission{}, nil
	}
	return s.reviewFn(ctx, actorID, submissionID, action, reason)
}

func (s stubSubmissionService) BulkReview(ctx context.Context, actorID string, submissionIDs []string, action, reason string) []services.BulkResult {
	if s.bulkReviewFn == nil {
		return nil
	}
	return s.bulkReviewFn(ctx, actorID, submissionIDs, action, reason)
}

type stubWithdrawalService struct {
	requestFn     func(ctx context.Context, req services.WithdrawalRequest) (models.Transaction, error)
	processFn     func(ctx context.Context, actorID, transactionID, action, proofOrReason string) (models.Transaction, error)
	bulkProcessFn func(ctx context.Context, actorID string, transactionIDs []string, action, proofOrReason string) []services.BulkResult
}

func (s stubWithdrawalService) Request(ctx context.Context, req services.WithdrawalRequest) (models.Transaction, error) {
	if s.requestFn == nil {
		return models.Transaction{}, nil
	}
	return s.requestFn(ctx, req)
}

func (s stubWithdrawalService) Process(ctx context.Context, actorID, transactionID, action, proofOrReason string) (models.Transaction, error) {
	if s.processFn == nil {
		return models.Transaction{}, nil
	}
	return s.processFn(ctx, actorID, transactionID, action, proofOrReason)
}

func (s stubWithdrawalService) BulkProcess(ctx context.Context, actorID string, transactionIDs []string, action, proofOrReason string) []services.BulkResult {
	if s.bulkProcessFn == nil {
		return nil
	}
	return s.bulkProcessFn(ctx, actorID, transactionIDs, action, proofOrReason)
}

type stubDepositService struct {
	requestFn func(ctx context.Context, req services.DepositRequest) (models.Transaction, error)
	processFn func(ctx context.Context, actorID, transactionID, action, reason string) (models.Transaction, error)
}

func (s stubDepositService) Request(ctx context.Context, req services.DepositRequest) (models.Transaction, error) {
	if s.requestFn == nil {
		return models.Transaction{}, nil
	}
	return s.requestFn(ctx, req)
}

func (s stubDepositService) Process(ctx context.Context, actorID, transactionID, action, reason string) (models.Transaction, error) {
	if s.processFn == nil {
		return models.Transaction{}, nil
	}
	return s.processFn(ctx, actorID, transactionID, action, reason)
}

type stubUpgradeService struct {
	requestFn func(ctx context.Context, userID string, toLevel int, paymentProof, paymentAddress string) (models.LevelUpgradeRequest, error)
	approveFn func(ctx context.Context, actorID, requestID, txRef string) (models.LevelUpgradeRequest, error)
	rejectFn  func(ctx context.Context, actorID, requestID, reason string) (models.LevelUpgradeRequest, error)
}

func (s stubUpgradeService) Request(ctx context.Context, userID string, toLevel int, paymentProof, paymentAddress string) (models.LevelUpgradeRequest, error) {
	if s.requestFn == nil {
		return models.LevelUpgradeRequest{}, nil
	}
	return s.requestFn(ctx, userID, toLevel, paymentProof, paymentAddress)
}

func (s stubUpgradeService) Approve(ctx context.Context, actorID, requestID, txRef string) (models.LevelUpgradeRequest, error) {
	if s.approveFn == nil {
		return models.LevelUpgradeRequest{}, nil
	}
	return s.approveFn(ctx, actorID, requestID, txRef)
}

func (s stubUpgradeService) Reject(ctx context.Context, actorID, requestID, reason string) (models.LevelUpgradeRequest, error) {
	if s.rejectFn == nil {
		return models.LevelUpgradeRequest{}, nil
	}
	return s.rejectFn(ctx, actorID, requestID, reason)
}

type stubPostbackService struct {
	handleFn func(ctx context.Context, payload services.PostbackPayload) (string, error)
}

func (s stubPostbackService) Handle(ctx context.Context, payload services.PostbackPayload) (string, error) {
	if s.handleFn == nil {
		return services.PostbackCredited, nil
	}
	return s.handleFn(ctx, payload)
}

type stubReferralLinker struct {
	linkFn func(ctx context.Context, tx store.Tx, newUserID, inviterID string) error
}

func (s stubReferralLinker) LinkReferralChain(ctx context.Context, tx store.Tx, newUserID, inviterID string) error {
	if s.linkFn == nil {
		return nil
	}
	return s.linkFn(ctx, tx, newUserID, inviterID)
}

func newTestHandler(deps Deps) *Handler {
	if deps.Cfg.JWTSecret == "" {
		deps.Cfg = config.Config{
			AppEnv:         "test",
			JWTSecret:      "secret",
			TokenTTL:       time.Minute,
			AllowedOrigins: "*",
		}
	}
	if deps.TxRunner == nil {
		deps.TxRunner = fakeTxRunner{}
	}
	if deps.Users == nil {
		deps.Users = stubUserStore{}
	}
	if deps.Wallets == nil {
		deps.Wallets = stubWalletStore{}
	}
	if deps.Transactions == nil {
		deps.Transactions = stubTransactionStore{}
	}
	if deps.Offers == nil {
		deps.Offers = stubOfferStore{}
	}
	if deps.Submissions == nil {
		deps.Submissions = stubSubmissionStore{}
	}
	if deps.Upgrades == nil {
		deps.Upgrades = stubUpgradeStore{}
	}
	if deps.Plans == nil {
		deps.Plans = stubPlanStore{}
	}
	if deps.Admin == nil {
		deps.Admin = stubAdminStore{}
	}
	if deps.AuditLog == nil {
		deps.AuditLog = stubAuditStore{}
	}
	if deps.Audit == nil {
		deps.Audit = &recordingAudit{}
	}
	if deps.Referrals == nil {
		deps.Referrals = stubReferralLinker{}
	}
	if deps.WalletSvc == nil {
		deps.WalletSvc = stubWalletService{}
	}
	if deps.SubmissionSvc == nil {
		deps.SubmissionSvc = stubSubmissionService{}
	}
	if deps.WithdrawalSvc == nil {
		deps.WithdrawalSvc = stubWithdrawalService{}
	}
	if deps.DepositSvc == nil {
		deps.DepositSvc = stubDepositService{}
	}
	if deps.UpgradeSvc == nil {
		deps.UpgradeSvc = stubUpgradeService{}
	}
	if deps.PostbackSvc == nil {
		deps.PostbackSvc = stubPostbackService{}
	}
	if deps.Hub == nil {
		deps.Hub = websocket.NewHub()
	}
	return New(deps)
}

func serveAuthed(t *testing.T, handler http.HandlerFunc, method, target, userID string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
