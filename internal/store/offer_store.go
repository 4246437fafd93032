package store

import (
	"context"

	"taskrewards/internal/models"
)

type OfferStore struct {
	db DB
}

func NewOfferStore(db DB) *OfferStore {
	return &OfferStore{db: db}
}

func (s *OfferStore) Create(ctx context.Context, tx Execer, id, taskID, title string, realValue int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO offers (id, task_id, title, real_value, active)
		VALUES ($1, $2, $3, $4, TRUE)
	`, id, taskID, title, realValue)
	return err
}

func (s *OfferStore) GetByID(ctx context.Context, offerID string) (models.Offer, error) {
	var row models.Offer
	err := s.db.GetContext(ctx, &row, `
		SELECT id, task_id, title, real_value, active, created_at
		FROM offers
		WHERE id = $1
	`, offerID)
	return row, err
}

func (s *OfferStore) GetByTaskID(ctx context.Context, taskID string) (models.Offer, error) {
	var row models.Offer
	err := s.db.GetContext(ctx, &row, `
		SELECT id, task_id, title, real_value, active, created_at
		FROM offers
		WHERE task_id = $1
	`, taskID)
	return row, err
}

func (s *OfferStore) ListActive(ctx context.Context, limit, offset int) ([]models.Offer, error) {
	var rows []models.Offer
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, task_id, title, real_value, active, created_at
		FROM offers
		WHERE active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

func (s *OfferStore) Deactivate(ctx context.Context, tx Execer, offerID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE offers SET active = FALSE WHERE id = $1
	`, offerID)
	return err
}
