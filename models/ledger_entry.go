package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resource names the account balance a ledger entry refers to
type Resource string

const (
	ResourceBalance  Resource = "balance"
	ResourceDiamonds Resource = "diamonds"
	ResourceLives    Resource = "lives"
	ResourceXP       Resource = "xp"
)

// TransactionType represents the reason for a ledger change
type TransactionType string

const (
	TransactionTypeInitial            TransactionType = "initial"
	TransactionTypeScoreReward        TransactionType = "score_reward"
	TransactionTypeSessionStart       TransactionType = "session_start"
	TransactionTypeRetrySpend         TransactionType = "retry_spend"
	TransactionTypeExtraQuestionSpend TransactionType = "extra_question_spend"
	TransactionTypeWithdrawal         TransactionType = "withdrawal"
	TransactionTypeAdjustment         TransactionType = "adjustment"
)

// LedgerEntry is an append-only record of one resource change
type LedgerEntry struct {
	ID                  int64           `db:"id"`
	AccountID           int64           `db:"account_id"`
	Resource            Resource        `db:"resource"`
	BalanceBefore       decimal.Decimal `db:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
