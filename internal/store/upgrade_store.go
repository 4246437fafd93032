package store

import (
	"context"

	"taskrewards/internal/models"
)

type UpgradeStore struct {
	db DB
}

func NewUpgradeStore(db DB) *UpgradeStore {
	return &UpgradeStore{db: db}
}

type UpgradeInput struct {
	ID             string
	UserID         string
	FromLevel      int
	ToLevel        int
	Price          int64
	PaymentProof   string
	PaymentAddress string
}

// Price is snapshotted here and never rewritten, even if the plan's price
// changes later.
func (s *UpgradeStore) Create(ctx context.Context, tx Execer, input UpgradeInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO level_upgrade_requests (id, user_id, from_level, to_level, price, payment_proof, payment_address, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', '')
	`, input.ID, input.UserID, input.FromLevel, input.ToLevel, input.Price, input.PaymentProof, input.PaymentAddress)
	return err
}

func (s *UpgradeStore) GetByID(ctx context.Context, requestID string) (models.LevelUpgradeRequest, error) {
	var row models.LevelUpgradeRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, from_level, to_level, price, payment_proof, payment_address,
		       status, reviewed_by, reviewed_at, notes, created_at
		FROM level_upgrade_requests
		WHERE id = $1
	`, requestID)
	return row, err
}

func (s *UpgradeStore) Review(ctx context.Context, tx Execer, requestID, status, reviewerID, notes string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE level_upgrade_requests
		SET status = $1, reviewed_by = $2, reviewed_at = NOW(), notes = $3
		WHERE id = $4 AND status = 'pending'
	`, status, reviewerID, notes, requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *UpgradeStore) HasPending(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM level_upgrade_requests
			WHERE user_id = $1 AND status = 'pending'
		)
	`, userID)
	return exists, err
}

func (s *UpgradeStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.LevelUpgradeRequest, error) {
	var rows []models.LevelUpgradeRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, from_level, to_level, price, payment_proof, payment_address,
		       status, reviewed_by, reviewed_at, notes, created_at
		FROM level_upgrade_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return rows, err
}
