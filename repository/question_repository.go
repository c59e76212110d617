package repository

import (
	"context"
	"errors"
	"fmt"

	"banked/database"
	"banked/models"

	"github.com/jackc/pgx/v5"
)

const questionColumns = `q.id, q.category, q.text, q.option_a, q.option_b, q.option_c, q.option_d, q.correct_answer_index, q.created_at`

// QuestionRepository implements the QuestionRepository interface
type QuestionRepository struct {
	q queryable
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{q: db.Pool}
}

func newQuestionRepositoryWithTx(tx queryable) *QuestionRepository {
	return &QuestionRepository{q: tx}
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var question models.Question
	var correct int16
	err := row.Scan(
		&question.ID,
		&question.Category,
		&question.Text,
		&question.Options[0],
		&question.Options[1],
		&question.Options[2],
		&question.Options[3],
		&correct,
		&question.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	question.CorrectAnswerIndex = int(correct)
	return &question, nil
}

func collectQuestions(rows pgx.Rows) ([]*models.Question, error) {
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

// Create stores a new question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (category, text, option_a, option_b, option_c, option_d, correct_answer_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		question.Category,
		question.Text,
		question.Options[0],
		question.Options[1],
		question.Options[2],
		question.Options[3],
		int16(question.CorrectAnswerIndex),
	).Scan(&question.ID, &question.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question in category %q: %w", question.Category, err)
	}

	return nil
}

// GetByID retrieves a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q WHERE q.id = $1`

	question, err := scanQuestion(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return question, nil
}

// GetRandomUnanswered samples questions without replacement, skipping any the account has answered
func (r *QuestionRepository) GetRandomUnanswered(ctx context.Context, accountID int64, category string, limit int) ([]*models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		WHERE q.category = $2
		  AND NOT EXISTS (
		      SELECT 1 FROM answered_questions aq
		      WHERE aq.account_id = $1 AND aq.question_id = q.id
		  )
		ORDER BY random()
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, accountID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select questions for account %d in category %q: %w", accountID, category, err)
	}
	return collectQuestions(rows)
}

// GetRandom samples one question from a category regardless of answers
func (r *QuestionRepository) GetRandom(ctx context.Context, category string) (*models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		WHERE q.category = $1
		ORDER BY random()
		LIMIT 1
	`

	question, err := scanQuestion(r.q.QueryRow(ctx, query, category))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select random question in category %q: %w", category, err)
	}
	return question, nil
}
