package repository

import (
	"context"
	"errors"
	"fmt"

	"banked/database"
	"banked/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, display_name, balance, diamonds, lives, max_lives, xp, level, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.DisplayName,
		&account.Balance,
		&account.Diamonds,
		&account.Lives,
		&account.MaxLives,
		&account.XP,
		&account.Level,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// scanOptionalAccount maps pgx.ErrNoRows to a nil account
func scanOptionalAccount(row pgx.Row, action string, id int64) (*models.Account, error) {
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s for account %d: %w", action, id, err)
	}
	return account, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanOptionalAccount(r.q.QueryRow(ctx, query, id), "get account", id)
}

// Create inserts a new account and fills in its generated fields
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (display_name, balance, diamonds, lives, max_lives, xp, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	created, err := scanAccount(r.q.QueryRow(ctx, query,
		account.DisplayName,
		account.Balance,
		account.Diamonds,
		account.Lives,
		account.MaxLives,
		account.XP,
		account.Level,
	))
	if err != nil {
		return fmt.Errorf("failed to create account %q: %w", account.DisplayName, err)
	}

	*account = *created
	return nil
}

// AdjustBalances applies all deltas in a single conditional update.
// The row lock taken by the update serializes concurrent adjustments of one account,
// and the WHERE clause is re-evaluated against the committed row once the lock is granted.
func (r *AccountRepository) AdjustBalances(ctx context.Context, id int64, delta models.BalanceDelta, xpPerLevel int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    diamonds = diamonds + $3,
		    xp = xp + $4,
		    level = CASE
		        WHEN $5::bigint > 0 THEN GREATEST(level, LEAST(1 + (xp + $4) / $5::bigint, 2147483647)::integer)
		        ELSE level
		    END,
		    updated_at = NOW()
		WHERE id = $1
		  AND balance + $2 >= 0
		  AND diamonds + $3 >= 0
		  AND xp + $4 >= 0
		RETURNING ` + accountColumns

	row := r.q.QueryRow(ctx, query, id, delta.Currency, delta.Diamonds, delta.XP, xpPerLevel)
	return scanOptionalAccount(row, "adjust balances", id)
}

// DecrementLife removes one life when at least one remains
func (r *AccountRepository) DecrementLife(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET lives = lives - 1, updated_at = NOW()
		WHERE id = $1 AND lives > 0
		RETURNING ` + accountColumns

	return scanOptionalAccount(r.q.QueryRow(ctx, query, id), "decrement life", id)
}

// SpendDiamonds debits diamonds when the balance covers the amount
func (r *AccountRepository) SpendDiamonds(ctx context.Context, id int64, amount int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET diamonds = diamonds - $2, updated_at = NOW()
		WHERE id = $1 AND diamonds >= $2
		RETURNING ` + accountColumns

	return scanOptionalAccount(r.q.QueryRow(ctx, query, id, amount), "spend diamonds", id)
}

// GetTopByXP returns the highest xp accounts, ties broken by age
func (r *AccountRepository) GetTopByXP(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT id, display_name, xp, level
		FROM accounts
		ORDER BY xp DESC, id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry := &models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.AccountID, &entry.DisplayName, &entry.XP, &entry.Level); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}
