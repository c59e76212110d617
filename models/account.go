package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a player's resource balances
type Account struct {
	ID          int64           `db:"id"`
	DisplayName string          `db:"display_name"`
	Balance     decimal.Decimal `db:"balance"`
	Diamonds    int64           `db:"diamonds"`
	Lives       int             `db:"lives"`
	MaxLives    int             `db:"max_lives"`
	XP          int64           `db:"xp"`
	Level       int             `db:"level"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// BalanceDelta is a signed change applied to an account in one step.
// Zero fields leave the matching resource untouched.
type BalanceDelta struct {
	Currency decimal.Decimal
	Diamonds int64
	XP       int64
}

// IsZero reports whether the delta changes nothing
func (d BalanceDelta) IsZero() bool {
	return d.Currency.IsZero() && d.Diamonds == 0 && d.XP == 0
}
