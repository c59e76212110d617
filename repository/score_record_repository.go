package repository

import (
	"context"
	"fmt"

	"banked/database"
	"banked/models"
)

// ScoreRecordRepository implements the ScoreRecordRepository interface
type ScoreRecordRepository struct {
	q queryable
}

// NewScoreRecordRepository creates a new score record repository
func NewScoreRecordRepository(db *database.DB) *ScoreRecordRepository {
	return &ScoreRecordRepository{q: db.Pool}
}

func newScoreRecordRepositoryWithTx(tx queryable) *ScoreRecordRepository {
	return &ScoreRecordRepository{q: tx}
}

// Create appends a score record
func (r *ScoreRecordRepository) Create(ctx context.Context, record *models.ScoreRecord) error {
	query := `
		INSERT INTO score_records (account_id, game_id, points)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, record.AccountID, record.GameID, record.Points).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score record for account %d: %w", record.AccountID, err)
	}

	return nil
}

// GetByAccount returns recent score records for an account, newest first
func (r *ScoreRecordRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.ScoreRecord, error) {
	query := `
		SELECT id, account_id, game_id, points, created_at
		FROM score_records
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get score records for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var records []*models.ScoreRecord
	for rows.Next() {
		var record models.ScoreRecord
		if err := rows.Scan(&record.ID, &record.AccountID, &record.GameID, &record.Points, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score records: %w", err)
	}

	return records, nil
}
