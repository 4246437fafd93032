package store

import (
	"context"

	"taskrewards/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ReferralCode string
	ReferredBy   *string
}

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, tier, status, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, 0, 'active', $5, $6)
	`, input.ID, input.Username, input.Email, input.PasswordHash, input.ReferralCode, input.ReferredBy)
	return err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, tier, status, referral_code, referred_by, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return row, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, tier, status, referral_code, referred_by, created_at
		FROM users
		WHERE email = $1
	`, email)
	return row, err
}

func (s *UserStore) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, tier, status, referral_code, referred_by, created_at
		FROM users
		WHERE referral_code = $1
	`, code)
	return row, err
}

// UpdateTier is reserved for the level-upgrade workflow; nothing else may
// touch the tier column.
func (s *UserStore) UpdateTier(ctx context.Context, tx Execer, userID string, tier int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET tier = $1 WHERE id = $2
	`, tier, userID)
	return err
}

func (s *UserStore) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var rows []models.User
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, username, email, password_hash, tier, status, referral_code, referred_by, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}
