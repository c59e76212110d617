package repository

import (
	"context"
	"errors"
	"fmt"

	"banked/database"
	"banked/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// errPrizePoolMissing means the seeded singleton row is gone
var errPrizePoolMissing = errors.New("prize pool row is missing")

// PrizePoolRepository implements the PrizePoolRepository interface
type PrizePoolRepository struct {
	q queryable
}

// NewPrizePoolRepository creates a new prize pool repository
func NewPrizePoolRepository(db *database.DB) *PrizePoolRepository {
	return &PrizePoolRepository{q: db.Pool}
}

func newPrizePoolRepositoryWithTx(tx queryable) *PrizePoolRepository {
	return &PrizePoolRepository{q: tx}
}

func scanPrizePool(row pgx.Row, action string) (*models.PrizePool, error) {
	var pool models.PrizePool
	err := row.Scan(&pool.Total, &pool.Participants, &pool.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to %s: %w", action, errPrizePoolMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return &pool, nil
}

// Get returns the current prize pool
func (r *PrizePoolRepository) Get(ctx context.Context) (*models.PrizePool, error) {
	query := `SELECT total, participants, updated_at FROM prize_pool WHERE id`
	return scanPrizePool(r.q.QueryRow(ctx, query), "get prize pool")
}

// Increment adds amount and one participant in a single update on the singleton row
func (r *PrizePoolRepository) Increment(ctx context.Context, amount decimal.Decimal) (*models.PrizePool, error) {
	query := `
		UPDATE prize_pool
		SET total = total + $1, participants = participants + 1, updated_at = NOW()
		WHERE id
		RETURNING total, participants, updated_at
	`
	return scanPrizePool(r.q.QueryRow(ctx, query, amount), "increment prize pool")
}

// RecordEntry appends a prize pool contribution
func (r *PrizePoolRepository) RecordEntry(ctx context.Context, entry *models.PrizePoolEntry) error {
	query := `
		INSERT INTO prize_pool_entries (account_id, amount)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, entry.AccountID, entry.Amount).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record prize pool entry for account %d: %w", entry.AccountID, err)
	}

	return nil
}
