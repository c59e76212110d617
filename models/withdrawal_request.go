package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents where a withdrawal is in the approval process
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// WithdrawalRequest is a request to pay out currency balance
type WithdrawalRequest struct {
	ID        uuid.UUID        `db:"id"`
	AccountID int64            `db:"account_id"`
	Amount    decimal.Decimal  `db:"amount"`
	PayoutKey string           `db:"payout_key"`
	Status    WithdrawalStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
}
