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

var ErrNotDeposit = errors.New("transaction is not a deposit")

// DepositService is the credit-side mirror of withdrawals: a user declares
// an incoming transfer, an admin confirms it, and only the confirmation
// moves the balance.
type DepositService struct {
	txRunner db.TxRunner
	wallets  *WalletService
	txStore  TransactionStore
	audit    AuditLogger
	notifier Notifier
}

func NewDepositService(txRunner db.TxRunner, wallets *WalletService, txStore TransactionStore, audit AuditLogger, notifier Notifier) *DepositService {
	return &DepositService{
		txRunner: txRunner,
		wallets:  wallets,
		txStore:  txStore,
		audit:    audit,
		notifier: notifier,
	}
}

type DepositRequest struct {
	UserID      string
	AmountMinor int64
	Network     string
	TxReference string
}

func (s *DepositService) Request(ctx context.Context, req DepositRequest) (models.Transaction, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	network, ok := LookupNetwork(req.Network)
	if !ok {
		return models.Transaction{}, ErrUnknownNetwork
	}
	transactionID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.txStore.Create(ctx, tx, store.TransactionInput{
			ID:       transactionID,
			UserID:   req.UserID,
			Kind:     models.KindDeposit,
			Amount:   req.AmountMinor,
			Status:   models.TxPending,
			Category: "deposit",
			Network:  stringPtr(network.Code),
			Metadata: metadataJSON(map[string]string{"tx_reference": req.TxReference}),
		})
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.audit.Record(req.UserID, "request_deposit", "transaction", transactionID, map[string]string{
		"network": network.Code,
		"amount":  money.FormatMinor(req.AmountMinor),
	})
	return s.txStore.GetByID(ctx, transactionID)
}

// Process approves or rejects one pending deposit. Approval credits the
// wallet; rejection has no balance effect.
func (s *DepositService) Process(ctx context.Context, actorID, transactionID, action, reason string) (models.Transaction, error) {
	txn, err := s.txStore.GetByID(ctx, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	if txn.Kind != models.KindDeposit {
		return models.Transaction{}, ErrNotDeposit
	}
	if models.TerminalTxStatus(txn.Status) {
		return models.Transaction{}, ErrAlreadyProcessed
	}

	switch action {
	case ActionApprove:
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			rows, err := s.txStore.Transition(ctx, tx, transactionID, models.TxPending, models.TxCompleted, actorID)
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
			return s.wallets.wallets.UpdateBalances(ctx, tx, txn.UserID,
				wallet.AvailableBalance+txn.Amount, wallet.PendingBalance, wallet.LifetimeEarned)
		})
	case ActionReject:
		if reason == "" {
			return models.Transaction{}, ErrMissingReason
		}
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			rows, err := s.txStore.Transition(ctx, tx, transactionID, models.TxPending, models.TxFailed, actorID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrWrongState
			}
			return s.txStore.UpdateMetadata(ctx, tx, transactionID, metadataJSON(map[string]string{"reason": reason}))
		})
	default:
		return models.Transaction{}, ErrInvalidAction
	}
	if err != nil {
		return models.Transaction{}, err
	}

	s.audit.Record(actorID, "process_deposit", "transaction", transactionID, map[string]string{
		"action": action,
		"reason": reason,
	})
	if action == ActionApprove {
		s.wallets.broadcast(ctx, txn.UserID)
		notify(s.notifier, ctx, txn.UserID, "deposit_credited", map[string]string{
			"transaction_id": transactionID,
			"amount":         money.FormatMinor(txn.Amount),
		})
	}
	return s.txStore.GetByID(ctx, transactionID)
}
