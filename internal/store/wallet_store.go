package store

import (
	"context"

	"taskrewards/internal/models"
)

type WalletStore struct {
	db DB
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

func (s *WalletStore) Create(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, available_balance, pending_balance, lifetime_earned)
		VALUES ($1, 0, 0, 0)
	`, userID)
	return err
}

func (s *WalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, available_balance, pending_balance, lifetime_earned, updated_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
	return row, err
}

// GetForUpdate takes the per-user row lock that serializes all balance
// mutations for one wallet.
func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, available_balance, pending_balance, lifetime_earned, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	return row, err
}

func (s *WalletStore) UpdateBalances(ctx context.Context, tx Execer, userID string, available, pending, lifetime int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET available_balance = $1, pending_balance = $2, lifetime_earned = $3, updated_at = NOW()
		WHERE user_id = $4
	`, available, pending, lifetime, userID)
	return err
}
