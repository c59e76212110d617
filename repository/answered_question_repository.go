package repository

import (
	"context"
	"errors"
	"fmt"

	"banked/database"
	"banked/models"

	"github.com/jackc/pgx/v5"
)

// AnsweredQuestionRepository implements the AnsweredQuestionRepository interface
type AnsweredQuestionRepository struct {
	q queryable
}

// NewAnsweredQuestionRepository creates a new answered question repository
func NewAnsweredQuestionRepository(db *database.DB) *AnsweredQuestionRepository {
	return &AnsweredQuestionRepository{q: db.Pool}
}

func newAnsweredQuestionRepositoryWithTx(tx queryable) *AnsweredQuestionRepository {
	return &AnsweredQuestionRepository{q: tx}
}

// Record inserts an answer, leaving an existing answer for the same question untouched
func (r *AnsweredQuestionRepository) Record(ctx context.Context, answer *models.AnsweredQuestion) (bool, error) {
	query := `
		INSERT INTO answered_questions (account_id, question_id, was_correct)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, question_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, answer.AccountID, answer.QuestionID, answer.WasCorrect).
		Scan(&answer.ID, &answer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to record answer of account %d to question %d: %w", answer.AccountID, answer.QuestionID, err)
	}

	return true, nil
}

// Get returns the recorded answer for an account and question
func (r *AnsweredQuestionRepository) Get(ctx context.Context, accountID, questionID int64) (*models.AnsweredQuestion, error) {
	query := `
		SELECT id, account_id, question_id, was_correct, created_at
		FROM answered_questions
		WHERE account_id = $1 AND question_id = $2
	`

	var answer models.AnsweredQuestion
	err := r.q.QueryRow(ctx, query, accountID, questionID).Scan(
		&answer.ID,
		&answer.AccountID,
		&answer.QuestionID,
		&answer.WasCorrect,
		&answer.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer of account %d to question %d: %w", accountID, questionID, err)
	}

	return &answer, nil
}
