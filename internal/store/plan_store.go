package store

import (
	"context"

	"taskrewards/internal/models"
)

type PlanStore struct {
	db DB
}

func NewPlanStore(db DB) *PlanStore {
	return &PlanStore{db: db}
}

func (s *PlanStore) GetByLevel(ctx context.Context, level int) (models.LevelPlan, error) {
	var row models.LevelPlan
	err := s.db.GetContext(ctx, &row, `
		SELECT level, name, price
		FROM level_plans
		WHERE level = $1
	`, level)
	return row, err
}

func (s *PlanStore) List(ctx context.Context) ([]models.LevelPlan, error) {
	var rows []models.LevelPlan
	err := s.db.SelectContext(ctx, &rows, `
		SELECT level, name, price
		FROM level_plans
		ORDER BY level ASC
	`)
	return rows, err
}

func (s *PlanStore) SetPrice(ctx context.Context, tx Execer, level int, price int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE level_plans SET price = $1 WHERE level = $2
	`, price, level)
	return err
}
