package models

import (
	"time"
)

// ScoreRecord is an immutable game result
type ScoreRecord struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	GameID    string    `db:"game_id"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

// ScoreResult is what a score submission produced
type ScoreResult struct {
	ScoreRecordID   int64
	DiamondsAwarded int64
	NewXP           int64
	NewLevel        int
}
