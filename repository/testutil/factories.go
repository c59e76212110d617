package testutil

import (
	"context"
	"fmt"
	"testing"

	"banked/database"
	"banked/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// AccountSeed describes the balances of an account created directly in the database
type AccountSeed struct {
	DisplayName string
	Balance     decimal.Decimal
	Diamonds    int64
	Lives       int
	MaxLives    int
	XP          int64
	Level       int
}

// DefaultAccountSeed returns the balances a freshly registered account starts with
func DefaultAccountSeed(displayName string) AccountSeed {
	return AccountSeed{
		DisplayName: displayName,
		Balance:     decimal.Zero,
		Lives:       5,
		MaxLives:    5,
		Level:       1,
	}
}

// CreateAccount inserts an account with the given balances
func CreateAccount(t *testing.T, db *database.DB, seed AccountSeed) *models.Account {
	t.Helper()

	if seed.MaxLives == 0 {
		seed.MaxLives = 5
	}
	if seed.Level == 0 {
		seed.Level = 1
	}

	account := &models.Account{}
	err := db.QueryRow(context.Background(), `
		INSERT INTO accounts (display_name, balance, diamonds, lives, max_lives, xp, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, display_name, balance, diamonds, lives, max_lives, xp, level, created_at, updated_at
	`, seed.DisplayName, seed.Balance, seed.Diamonds, seed.Lives, seed.MaxLives, seed.XP, seed.Level).Scan(
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
	require.NoError(t, err)
	return account
}

// CreateQuestions inserts count questions into category in one transaction
func CreateQuestions(t *testing.T, db *database.DB, category string, count int) []*models.Question {
	t.Helper()

	questions := make([]*models.Question, 0, count)
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		for i := 0; i < count; i++ {
			question := &models.Question{
				Category:           category,
				Text:               fmt.Sprintf("%s question %d", category, i+1),
				Options:            [4]string{"a", "b", "c", "d"},
				CorrectAnswerIndex: i % 4,
			}
			err := tx.QueryRow(context.Background(), `
				INSERT INTO questions (category, text, option_a, option_b, option_c, option_d, correct_answer_index)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, created_at
			`, question.Category, question.Text,
				question.Options[0], question.Options[1], question.Options[2], question.Options[3],
				int16(question.CorrectAnswerIndex),
			).Scan(&question.ID, &question.CreatedAt)
			if err != nil {
				return err
			}
			questions = append(questions, question)
		}
		return nil
	})
	require.NoError(t, err)
	return questions
}

// MarkAnswered records an answer directly
func MarkAnswered(t *testing.T, db *database.DB, accountID, questionID int64) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO answered_questions (account_id, question_id, was_correct)
		VALUES ($1, $2, TRUE)
	`, accountID, questionID)
	require.NoError(t, err)
}

// CountRows returns the number of rows in table matching the account
func CountRows(t *testing.T, db *database.DB, table string, accountID int64) int {
	t.Helper()

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE account_id = $1", pgx.Identifier{table}.Sanitize())
	require.NoError(t, db.QueryRow(context.Background(), query, accountID).Scan(&count))
	return count
}
