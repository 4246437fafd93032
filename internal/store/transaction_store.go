package store

import (
	"context"
	"time"

	"taskrewards/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID             string
	UserID         string
	Kind           string
	Amount         int64
	Status         string
	Category       string
	ReferenceType  *string
	ReferenceID    *string
	Network        *string
	Destination    *string
	Fee            int64
	ConversionRate *string
	RiskFlagged    bool
	Metadata       string
	ProcessedBy    *string
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	metadata := input.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, kind, amount, status, category, reference_type, reference_id,
		                          network, destination, fee, conversion_rate, risk_flagged, metadata, processed_by, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        CASE WHEN $15::text IS NULL THEN NULL ELSE NOW() END)
	`, input.ID, input.UserID, input.Kind, input.Amount, input.Status, input.Category,
		input.ReferenceType, input.ReferenceID, input.Network, input.Destination,
		input.Fee, input.ConversionRate, input.RiskFlagged, metadata, input.ProcessedBy)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, kind, amount, status, category, reference_type, reference_id,
		       network, destination, fee, conversion_rate, risk_flagged, metadata,
		       processed_by, processed_at, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	return row, err
}

// Transition flips status only when the row still holds the expected
// pre-state. A zero row count means another actor won the race or the row
// is already terminal; completed and failed rows never change again.
func (s *TransactionStore) Transition(ctx context.Context, tx Execer, transactionID, fromStatus, toStatus, actorID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, processed_by = $2, processed_at = NOW()
		WHERE id = $3 AND status = $4
	`, toStatus, actorID, transactionID, fromStatus)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) UpdateMetadata(ctx context.Context, tx Execer, transactionID, metadata string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions SET metadata = $1 WHERE id = $2
	`, metadata, transactionID)
	return err
}

// ExistsByReference backs postback and referral idempotency.
func (s *TransactionStore) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE reference_type = $1 AND reference_id = $2
		)
	`, referenceType, referenceID)
	return exists, err
}

// SumWithdrawalsSince totals withdrawal requests made after the cutoff,
// counting everything not already failed so open requests consume the caps.
func (s *TransactionStore) SumWithdrawalsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(-amount), 0)
		FROM transactions
		WHERE user_id = $1 AND kind = 'withdrawal' AND status <> 'failed' AND created_at >= $2
	`, userID, since)
	return sum, err
}

func (s *TransactionStore) PendingWithdrawalTotal(ctx context.Context, tx Getter, userID string) (int64, error) {
	var sum int64
	err := tx.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(-amount), 0)
		FROM transactions
		WHERE user_id = $1 AND kind = 'withdrawal' AND status IN ('pending', 'processing', 'hold')
	`, userID)
	return sum, err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID, kind string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	query := `
		SELECT id, user_id, kind, amount, status, category, reference_type, reference_id,
		       network, destination, fee, conversion_rate, risk_flagged, metadata,
		       processed_by, processed_at, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if kind != "" {
		query += ` AND kind = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, kind, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (s *TransactionStore) ListByStatus(ctx context.Context, kind, status string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, kind, amount, status, category, reference_type, reference_id,
		       network, destination, fee, conversion_rate, risk_flagged, metadata,
		       processed_by, processed_at, created_at
		FROM transactions
		WHERE kind = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`, kind, status, limit, offset)
	return rows, err
}
