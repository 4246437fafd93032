package store

import (
	"context"

	"taskrewards/internal/models"
)

type SubmissionStore struct {
	db DB
}

func NewSubmissionStore(db DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

type SubmissionInput struct {
	ID           string
	TaskID       string
	UserID       string
	RewardAmount int64
}

func (s *SubmissionStore) Create(ctx context.Context, tx Execer, input SubmissionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO task_submissions (id, task_id, user_id, reward_amount, status, notes)
		VALUES ($1, $2, $3, $4, 'pending', '')
	`, input.ID, input.TaskID, input.UserID, input.RewardAmount)
	return err
}

func (s *SubmissionStore) GetByID(ctx context.Context, submissionID string) (models.TaskSubmission, error) {
	var row models.TaskSubmission
	err := s.db.GetContext(ctx, &row, `
		SELECT id, task_id, user_id, reward_amount, status, reviewed_by, reviewed_at, notes, created_at
		FROM task_submissions
		WHERE id = $1
	`, submissionID)
	return row, err
}

// Review is the only write path out of pending. Zero rows affected means
// the submission was already reviewed.
func (s *SubmissionStore) Review(ctx context.Context, tx Execer, submissionID, status, reviewerID, notes string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE task_submissions
		SET status = $1, reviewed_by = $2, reviewed_at = NOW(), notes = $3
		WHERE id = $4 AND status = 'pending'
	`, status, reviewerID, notes, submissionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SubmissionStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.TaskSubmission, error) {
	var rows []models.TaskSubmission
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, task_id, user_id, reward_amount, status, reviewed_by, reviewed_at, notes, created_at
		FROM task_submissions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return rows, err
}

func (s *SubmissionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.TaskSubmission, error) {
	var rows []models.TaskSubmission
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, task_id, user_id, reward_amount, status, reviewed_by, reviewed_at, notes, created_at
		FROM task_submissions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}
