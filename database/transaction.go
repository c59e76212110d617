package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithTransaction runs fn inside a transaction that commits only when fn returns nil
func (db *DB) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, db.Pool, fn); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}
