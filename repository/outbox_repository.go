package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"banked/database"
	"banked/models"
)

// OutboxRepository implements the OutboxRepository interface
type OutboxRepository struct {
	q queryable
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *database.DB) *OutboxRepository {
	return &OutboxRepository{q: db.Pool}
}

// newOutboxRepositoryWithTx creates a new outbox repository with a transaction
func newOutboxRepositoryWithTx(tx queryable) *OutboxRepository {
	return &OutboxRepository{q: tx}
}

// Create stores a pending message
func (r *OutboxRepository) Create(ctx context.Context, message *models.OutboxMessage) error {
	if message.Status == "" {
		message.Status = models.OutboxStatusPending
	}

	query := `
		INSERT INTO outbox_messages (message_key, topic, payload, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, retry_count, created_at
	`

	err := r.q.QueryRow(ctx, query, message.Key, message.Topic, message.Payload, message.Status).
		Scan(&message.ID, &message.RetryCount, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create outbox message for key %s: %w", message.Key, err)
	}

	return nil
}

// ClaimPending leases up to limit pending messages to the caller, oldest first.
// Claimed rows are skipped by other relays until the lease expires or an outcome is recorded.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.OutboxMessage, error) {
	query := `
		UPDATE outbox_messages
		SET claimed_until = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id
			FROM outbox_messages
			WHERE status = 'PENDING' AND (claimed_until IS NULL OR claimed_until < NOW())
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, message_key, topic, payload, status, retry_count, last_error, created_at, sent_at, claimed_until
	`

	rows, err := r.q.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.OutboxMessage
	for rows.Next() {
		var message models.OutboxMessage
		err := rows.Scan(
			&message.ID,
			&message.Key,
			&message.Topic,
			&message.Payload,
			&message.Status,
			&message.RetryCount,
			&message.LastError,
			&message.CreatedAt,
			&message.SentAt,
			&message.ClaimedUntil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox messages: %w", err)
	}

	// RETURNING does not follow the subquery order
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })

	return messages, nil
}

// MarkAsSent flags a message as published
func (r *OutboxRepository) MarkAsSent(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_messages
		SET status = 'SENT', sent_at = NOW(), last_error = NULL, claimed_until = NULL
		WHERE id = $1
	`
	return r.exec(ctx, query, "mark outbox message as sent", id)
}

// IncrementRetryCount records a failed publish attempt
func (r *OutboxRepository) IncrementRetryCount(ctx context.Context, id int64, lastError string) error {
	query := `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = $2, claimed_until = NULL
		WHERE id = $1
	`
	return r.exec(ctx, query, "increment outbox retry count", id, lastError)
}

// MarkAsFailed stops further publish attempts
func (r *OutboxRepository) MarkAsFailed(ctx context.Context, id int64, lastError string) error {
	query := `
		UPDATE outbox_messages
		SET status = 'FAILED', retry_count = retry_count + 1, last_error = $2, claimed_until = NULL
		WHERE id = $1
	`
	return r.exec(ctx, query, "mark outbox message as failed", id, lastError)
}

func (r *OutboxRepository) exec(ctx context.Context, query, action string, id int64, args ...any) error {
	result, err := r.q.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to %s %d: %w", action, id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to %s %d: message not found", action, id)
	}
	return nil
}
