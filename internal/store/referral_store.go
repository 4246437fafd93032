package store

import (
	"context"

	"taskrewards/internal/models"
)

type ReferralStore struct {
	db DB
}

func NewReferralStore(db DB) *ReferralStore {
	return &ReferralStore{db: db}
}

func (s *ReferralStore) InsertEdge(ctx context.Context, tx Execer, referrerID, referredID string, depth int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO referral_edges (referrer_id, referred_id, depth)
		VALUES ($1, $2, $3)
	`, referrerID, referredID, depth)
	return err
}

// Ancestors returns the referral chain above a user, nearest first.
func (s *ReferralStore) Ancestors(ctx context.Context, userID string, maxDepth int) ([]models.ReferralEdge, error) {
	var rows []models.ReferralEdge
	err := s.db.SelectContext(ctx, &rows, `
		SELECT referrer_id, referred_id, depth, created_at
		FROM referral_edges
		WHERE referred_id = $1 AND depth <= $2
		ORDER BY depth ASC
	`, userID, maxDepth)
	return rows, err
}

func (s *ReferralStore) CountByReferrer(ctx context.Context, referrerID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM referral_edges
		WHERE referrer_id = $1 AND depth = 1
	`, referrerID)
	return count, err
}
