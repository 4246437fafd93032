package services

import (
	"context"
	"errors"
	"time"

	"taskrewards/internal/db"
	"taskrewards/internal/models"
	"taskrewards/internal/money"
	"taskrewards/internal/store"
	"taskrewards/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

const (
	DirectionAdd      = "add"
	DirectionSubtract = "subtract"
)

type WalletStore interface {
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	UpdateBalances(ctx context.Context, tx store.Execer, userID string, available, pending, lifetime int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetByID(ctx context.Context, transactionID string) (models.Transaction, error)
	Transition(ctx context.Context, tx store.Execer, transactionID, fromStatus, toStatus, actorID string) (int64, error)
	UpdateMetadata(ctx context.Context, tx store.Execer, transactionID, metadata string) error
	ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error)
	SumWithdrawalsSince(ctx context.Context, userID string, since time.Time) (int64, error)
	PendingWithdrawalTotal(ctx context.Context, tx store.Getter, userID string) (int64, error)
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// WalletService is the balance mutator: the only code path that changes a
// wallet, and every change is paired with exactly one transaction record
// inside the same database transaction.
type WalletService struct {
	txRunner db.TxRunner
	wallets  WalletStore
	txStore  TransactionStore
	audit    AuditLogger
	hub      BalanceHub
}

func NewWalletService(txRunner db.TxRunner, wallets WalletStore, txStore TransactionStore, audit AuditLogger, hub BalanceHub) *WalletService {
	return &WalletService{
		txRunner: txRunner,
		wallets:  wallets,
		txStore:  txStore,
		audit:    audit,
		hub:      hub,
	}
}

type AdjustRequest struct {
	ActorID       string
	UserID        string
	AmountMinor   int64 // always positive; Direction picks the sign
	Direction     string
	Kind          string
	Category      string
	Note          string
	ReferenceType *string
	ReferenceID   *string
}

// Adjust runs a standalone balance mutation. State machines that need the
// mutation inside their own transaction use adjustInTx instead.
func (s *WalletService) Adjust(ctx context.Context, req AdjustRequest) (int64, error) {
	var newBalance int64
	var transactionID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		newBalance, transactionID, err = s.adjustInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.audit.Record(req.ActorID, "adjust_balance", "transaction", transactionID, map[string]string{
		"user_id":   req.UserID,
		"direction": req.Direction,
		"amount":    money.FormatMinor(req.AmountMinor),
		"category":  req.Category,
		"note":      req.Note,
	})
	s.broadcast(ctx, req.UserID)
	return newBalance, nil
}

// adjustInTx locks the wallet row, moves the balance and writes the paired
// transaction record. Returns the new available balance.
func (s *WalletService) adjustInTx(ctx context.Context, tx store.Tx, req AdjustRequest) (int64, string, error) {
	if req.AmountMinor <= 0 {
		return 0, "", ErrInvalidAmount
	}
	if req.Direction != DirectionAdd && req.Direction != DirectionSubtract {
		return 0, "", ErrInvalidDirection
	}
	if err := models.ValidKind(req.Kind); err != nil {
		return 0, "", err
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, req.UserID)
	if err != nil {
		return 0, "", err
	}
	signed := req.AmountMinor
	if req.Direction == DirectionSubtract {
		if wallet.AvailableBalance < req.AmountMinor {
			return 0, "", ErrInsufficientFunds
		}
		signed = -req.AmountMinor
	}
	newAvailable := wallet.AvailableBalance + signed
	lifetime := wallet.LifetimeEarned
	if signed > 0 && (req.Kind == models.KindEarning || req.Kind == models.KindBonus) {
		lifetime += signed
	}
	if err := s.wallets.UpdateBalances(ctx, tx, req.UserID, newAvailable, wallet.PendingBalance, lifetime); err != nil {
		return 0, "", err
	}
	transactionID := uuid.NewString()
	processedBy := req.ActorID
	if err := s.txStore.Create(ctx, tx, store.TransactionInput{
		ID:            transactionID,
		UserID:        req.UserID,
		Kind:          req.Kind,
		Amount:        signed,
		Status:        models.TxCompleted,
		Category:      req.Category,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Metadata:      metadataJSON(map[string]string{"note": req.Note}),
		ProcessedBy:   &processedBy,
	}); err != nil {
		return 0, "", err
	}
	return newAvailable, transactionID, nil
}

func (s *WalletService) broadcast(ctx context.Context, userID string) {
	if s.hub == nil {
		return
	}
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		return
	}
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Available: money.FormatMinor(wallet.AvailableBalance),
		Pending:   money.FormatMinor(wallet.PendingBalance),
	})
}
