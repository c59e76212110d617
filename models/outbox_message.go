package models

import (
	"time"
)

// OutboxStatus represents the delivery state of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// OutboxMessage is a message written alongside a ledger change and published later
type OutboxMessage struct {
	ID         int64        `db:"id"`
	Key        string       `db:"message_key"`
	Topic      string       `db:"topic"`
	Payload    []byte       `db:"payload"`
	Status     OutboxStatus `db:"status"`
	RetryCount int          `db:"retry_count"`
	LastError  *string      `db:"last_error"`
	CreatedAt  time.Time    `db:"created_at"`
	SentAt     *time.Time   `db:"sent_at"`

	// ClaimedUntil is set while a relay is publishing the message
	ClaimedUntil *time.Time `db:"claimed_until"`
}

// WithdrawalRequestedPayload is the message body published for a new withdrawal
type WithdrawalRequestedPayload struct {
	WithdrawalID string    `json:"withdrawal_id"`
	AccountID    int64     `json:"account_id"`
	Amount       string    `json:"amount"`
	PayoutKey    string    `json:"payout_key"`
	RequestedAt  time.Time `json:"requested_at"`
}
