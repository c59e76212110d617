package repository

import (
	"context"
	"errors"
	"fmt"

	"banked/database"
	"banked/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create inserts a withdrawal request, generating an ID when none is set
func (r *WithdrawalRepository) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.Status == "" {
		request.Status = models.WithdrawalStatusPending
	}

	query := `
		INSERT INTO withdrawal_requests (id, account_id, amount, payout_key, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.ID,
		request.AccountID,
		request.Amount,
		request.PayoutKey,
		request.Status,
	).Scan(&request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request for account %d: %w", request.AccountID, err)
	}

	return nil
}

// GetByID retrieves a withdrawal request by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	query := `
		SELECT id, account_id, amount, payout_key, status, created_at
		FROM withdrawal_requests
		WHERE id = $1
	`

	var request models.WithdrawalRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.AccountID,
		&request.Amount,
		&request.PayoutKey,
		&request.Status,
		&request.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request %s: %w", id, err)
	}

	return &request, nil
}

// GetByAccount returns the withdrawal requests of an account, newest first
func (r *WithdrawalRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.WithdrawalRequest, error) {
	query := `
		SELECT id, account_id, amount, payout_key, status, created_at
		FROM withdrawal_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal requests for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var requests []*models.WithdrawalRequest
	for rows.Next() {
		var request models.WithdrawalRequest
		err := rows.Scan(
			&request.ID,
			&request.AccountID,
			&request.Amount,
			&request.PayoutKey,
			&request.Status,
			&request.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawal requests: %w", err)
	}

	return requests, nil
}
