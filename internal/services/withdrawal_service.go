package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"taskrewards/internal/config"
	"taskrewards/internal/db"
	"taskrewards/internal/models"
	"taskrewards/internal/money"
	"taskrewards/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUnknownNetwork   = errors.New("unknown withdrawal network")
	ErrInvalidAddress   = errors.New("destination address does not match network format")
	ErrBelowMinimum     = errors.New("amount below tier minimum")
	ErrAboveMaximum     = errors.New("amount above tier maximum")
	ErrLimitExceeded    = errors.New("withdrawal cap exceeded")
	ErrMissingProof     = errors.New("proof of payment is required")
	ErrNotWithdrawal    = errors.New("transaction is not a withdrawal")
	ErrAlreadyProcessed = errors.New("request already in a terminal state")
	ErrWrongState       = errors.New("transition not allowed from current state")
)

// Network is one of the three supported stablecoin rails. Fees are fixed
// per network and the address grammars are mutually exclusive.
type Network struct {
	Code    string
	Fee     int64
	Rate    string // USD to token conversion captured on the request
	pattern *regexp.Regexp
}

var networks = map[string]Network{
	"TRC20": {Code: "TRC20", Fee: 100, Rate: "1.000000", pattern: regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)},
	"ERC20": {Code: "ERC20", Fee: 500, Rate: "1.000000", pattern: regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)},
	"SOL":   {Code: "SOL", Fee: 50, Rate: "1.000000", pattern: regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)},
}

func LookupNetwork(code string) (Network, bool) {
	network, ok := networks[code]
	return network, ok
}

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
}

// WithdrawalService runs the debit-side workflow. Requests validate
// everything up front but freeze nothing; the balance debit happens only
// at approval.
type WithdrawalService struct {
	txRunner db.TxRunner
	cfg      config.Config
	users    UserStore
	wallets  *WalletService
	txStore  TransactionStore
	audit    AuditLogger
	notifier Notifier
}

func NewWithdrawalService(txRunner db.TxRunner, cfg config.Config, users UserStore, wallets *WalletService, txStore TransactionStore, audit AuditLogger, notifier Notifier) *WithdrawalService {
	return &WithdrawalService{
		txRunner: txRunner,
		cfg:      cfg,
		users:    users,
		wallets:  wallets,
		txStore:  txStore,
		audit:    audit,
		notifier: notifier,
	}
}

type WithdrawalRequest struct {
	UserID      string
	AmountMinor int64
	Network     string
	Destination string
}

// Request validates and records a pending withdrawal. No funds move here;
// pending_balance mirrors the open request total for display only.
func (s *WithdrawalService) Request(ctx context.Context, req WithdrawalRequest) (models.Transaction, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	network, ok := LookupNetwork(req.Network)
	if !ok {
		return models.Transaction{}, ErrUnknownNetwork
	}
	if !network.pattern.MatchString(req.Destination) {
		return models.Transaction{}, ErrInvalidAddress
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return models.Transaction{}, err
	}
	limit := s.cfg.LimitForTier(user.Tier)
	if req.AmountMinor < limit.MinWithdrawal {
		return models.Transaction{}, ErrBelowMinimum
	}
	if req.AmountMinor > limit.MaxWithdrawal {
		return models.Transaction{}, ErrAboveMaximum
	}
	if err := s.checkRollingCaps(ctx, req.UserID, req.AmountMinor, limit); err != nil {
		return models.Transaction{}, err
	}

	transactionID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		wallet, err := s.wallets.wallets.GetForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if wallet.AvailableBalance < req.AmountMinor {
			return ErrInsufficientFunds
		}
		risk := assessRisk(wallet, req.AmountMinor, user.CreatedAt)
		if err := s.txStore.Create(ctx, tx, store.TransactionInput{
			ID:             transactionID,
			UserID:         req.UserID,
			Kind:           models.KindWithdrawal,
			Amount:         -req.AmountMinor,
			Status:         models.TxPending,
			Category:       "withdrawal",
			Network:        stringPtr(network.Code),
			Destination:    stringPtr(req.Destination),
			Fee:            network.Fee,
			ConversionRate: stringPtr(network.Rate),
			RiskFlagged:    risk,
		}); err != nil {
			return err
		}
		pending, err := s.txStore.PendingWithdrawalTotal(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		return s.wallets.wallets.UpdateBalances(ctx, tx, req.UserID, wallet.AvailableBalance, pending, wallet.LifetimeEarned)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.audit.Record(req.UserID, "request_withdrawal", "transaction", transactionID, map[string]string{
		"network": network.Code,
		"amount":  money.FormatMinor(req.AmountMinor),
	})
	return s.txStore.GetByID(ctx, transactionID)
}

func (s *WithdrawalService) checkRollingCaps(ctx context.Context, userID string, amount int64, limit config.TierLimit) error {
	now := time.Now()
	windows := []struct {
		since time.Time
		cap   int64
	}{
		{now.Add(-24 * time.Hour), limit.DailyCap},
		{now.AddDate(0, -1, 0), limit.MonthlyCap},
		{now.AddDate(-1, 0, 0), limit.AnnualCap},
	}
	for _, window := range windows {
		if window.cap <= 0 {
			continue
		}
		used, err := s.txStore.SumWithdrawalsSince(ctx, userID, window.since)
		if err != nil {
			return err
		}
		if used+amount > window.cap {
			return ErrLimitExceeded
		}
	}
	return nil
}

func assessRisk(wallet models.Wallet, amount int64, accountCreated time.Time) bool {
	if time.Since(accountCreated) < 7*24*time.Hour {
		return true
	}
	// draining most of what the account ever earned is worth a second look
	return wallet.LifetimeEarned > 0 && amount*5 >= wallet.LifetimeEarned*4
}

const (
	ActionProcess = "process"
	ActionHold    = "hold"
	ActionRelease = "release"
)

// Process drives one withdrawal through its state machine. Approval
// requires an externally obtained payment reference and is the only point
// the wallet is debited; rejection needs a reason from the closed set.
func (s *WithdrawalService) Process(ctx context.Context, actorID, transactionID, action, proofOrReason string) (models.Transaction, error) {
	txn, err := s.txStore.GetByID(ctx, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	if txn.Kind != models.KindWithdrawal {
		return models.Transaction{}, ErrNotWithdrawal
	}
	if models.TerminalTxStatus(txn.Status) {
		return models.Transaction{}, ErrAlreadyProcessed
	}

	switch action {
	case ActionProcess:
		err = s.transition(ctx, actorID, transactionID, models.TxPending, models.TxProcessing)
	case ActionHold:
		err = s.transition(ctx, actorID, transactionID, models.TxPending, models.TxHold)
	case ActionRelease:
		err = s.transition(ctx, actorID, transactionID, models.TxHold, models.TxPending)
	case ActionApprove:
		err = s.approve(ctx, actorID, txn, proofOrReason)
	case ActionReject:
		err = s.reject(ctx, actorID, txn, proofOrReason)
	default:
		return models.Transaction{}, ErrInvalidAction
	}
	if err != nil {
		return models.Transaction{}, err
	}
	s.audit.Record(actorID, "process_withdrawal", "transaction", transactionID, map[string]string{
		"action": action,
	})
	return s.txStore.GetByID(ctx, transactionID)
}

func (s *WithdrawalService) transition(ctx context.Context, actorID, transactionID, from, to string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.txStore.Transition(ctx, tx, transactionID, from, to, actorID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrWrongState
		}
		return nil
	})
}

func (s *WithdrawalService) approve(ctx context.Context, actorID string, txn models.Transaction, proof string) error {
	if proof == "" {
		return ErrMissingProof
	}
	amount := -txn.Amount
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.txStore.Transition(ctx, tx, txn.ID, models.TxProcessing, models.TxCompleted, actorID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrWrongState
		}
		wallet, err := s.wallets.wallets.GetForUpdate(ctx, tx, txn.UserID)
		if err != nil {
			return err
		}
		if wallet.AvailableBalance < amount {
			// rolls the status flip back with the rest of the transaction
			return ErrInsufficientFunds
		}
		newAvailable := wallet.AvailableBalance - amount
		pending := wallet.PendingBalance - amount
		if pending < 0 {
			pending = 0
		}
		if err := s.wallets.wallets.UpdateBalances(ctx, tx, txn.UserID, newAvailable, pending, wallet.LifetimeEarned); err != nil {
			return err
		}
		payout := amount - txn.Fee
		return s.txStore.UpdateMetadata(ctx, tx, txn.ID, metadataJSON(map[string]string{
			"proof":  proof,
			"payout": money.FormatMinor(payout),
		}))
	})
	if err != nil {
		return err
	}
	s.wallets.broadcast(ctx, txn.UserID)
	notify(s.notifier, ctx, txn.UserID, "withdrawal_paid", map[string]string{
		"transaction_id": txn.ID,
		"payout":         money.FormatMinor(amount - txn.Fee),
	})
	return nil
}

func (s *WithdrawalService) reject(ctx context.Context, actorID string, txn models.Transaction, reason string) error {
	if reason == "" {
		return ErrMissingReason
	}
	if err := models.ValidRejectReason(reason); err != nil {
		return err
	}
	if txn.Status != models.TxPending && txn.Status != models.TxProcessing {
		return ErrWrongState
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.txStore.Transition(ctx, tx, txn.ID, txn.Status, models.TxFailed, actorID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrWrongState
		}
		wallet, err := s.wallets.wallets.GetForUpdate(ctx, tx, txn.UserID)
		if err != nil {
			return err
		}
		pending := wallet.PendingBalance + txn.Amount // txn.Amount is negative
		if pending < 0 {
			pending = 0
		}
		if err := s.wallets.wallets.UpdateBalances(ctx, tx, txn.UserID, wallet.AvailableBalance, pending, wallet.LifetimeEarned); err != nil {
			return err
		}
		return s.txStore.UpdateMetadata(ctx, tx, txn.ID, metadataJSON(map[string]string{"reason": reason}))
	})
	if err != nil {
		return err
	}
	notify(s.notifier, ctx, txn.UserID, "withdrawal_rejected", map[string]string{
		"transaction_id": txn.ID,
		"reason":         reason,
	})
	return nil
}

// BulkProcess fans the action across items independently; a failed item is
// reported, not rolled into the others.
func (s *WithdrawalService) BulkProcess(ctx context.Context, actorID string, transactionIDs []string, action, proofOrReason string) []BulkResult {
	results := make([]BulkResult, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		_, err := s.Process(ctx, actorID, id, action, proofOrReason)
		if err != nil {
			results = append(results, BulkResult{ID: id, OK: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true})
	}
	return results
}
