package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrizePool is the shared pot
type PrizePool struct {
	Total        decimal.Decimal `db:"total"`
	Participants int64           `db:"participants"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// PrizePoolEntry records one contribution to the pot
type PrizePoolEntry struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}
