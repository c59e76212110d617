package models

import (
	"time"
)

// Question is a multiple choice quiz question
type Question struct {
	ID                 int64     `db:"id"`
	Category           string    `db:"category"`
	Text               string    `db:"text"`
	Options            [4]string `db:"-"`
	CorrectAnswerIndex int       `db:"correct_answer_index"`
	CreatedAt          time.Time `db:"created_at"`
}

// AnsweredQuestion marks a question as delivered and answered by an account
type AnsweredQuestion struct {
	ID         int64     `db:"id"`
	AccountID  int64     `db:"account_id"`
	QuestionID int64     `db:"question_id"`
	WasCorrect bool      `db:"was_correct"`
	CreatedAt  time.Time `db:"created_at"`
}

// AnswerResult reports how an answer registration was applied
type AnswerResult struct {
	Answer *AnsweredQuestion
	// Duplicate is true when the account had already answered the question.
	// Answer then holds the first recorded answer.
	Duplicate bool
}
