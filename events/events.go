package events

import (
	"context"
	"sync"

	"banked/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountCreated      EventType = "account_created"
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeSessionStarted      EventType = "session_started"
	EventTypeScoreRecorded       EventType = "score_recorded"
	EventTypePrizePoolEntered    EventType = "prize_pool_entered"
	EventTypeWithdrawalRequested EventType = "withdrawal_requested"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountCreatedEvent is emitted after registration commits
type AccountCreatedEvent struct {
	AccountID   int64
	DisplayName string
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BalanceChangeEvent is emitted for every journaled resource change
type BalanceChangeEvent struct {
	AccountID       int64
	Resource        models.Resource
	OldValue        decimal.Decimal
	NewValue        decimal.Decimal
	ChangeAmount    decimal.Decimal
	TransactionType models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// SessionStartedEvent is emitted when a life is consumed for a game session
type SessionStartedEvent struct {
	AccountID      int64
	LivesRemaining int
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// ScoreRecordedEvent is emitted after a score and its rewards commit
type ScoreRecordedEvent struct {
	AccountID       int64
	ScoreRecordID   int64
	GameID          string
	Points          int64
	DiamondsAwarded int64
	NewXP           int64
}

func (e ScoreRecordedEvent) Type() EventType {
	return EventTypeScoreRecorded
}

// PrizePoolEnteredEvent is emitted when an account joins the prize pool
type PrizePoolEnteredEvent struct {
	AccountID    int64
	Amount       decimal.Decimal
	Total        decimal.Decimal
	Participants int64
}

func (e PrizePoolEnteredEvent) Type() EventType {
	return EventTypePrizePoolEntered
}

// WithdrawalRequestedEvent is emitted once a withdrawal request is stored
type WithdrawalRequestedEvent struct {
	WithdrawalID uuid.UUID
	AccountID    int64
	Amount       decimal.Decimal
}

func (e WithdrawalRequestedEvent) Type() EventType {
	return EventTypeWithdrawalRequested
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus dispatches events to subscribers, each handler in its own goroutine
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inFlight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler")
}

// Emit publishes an event to all registered handlers without waiting for them
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		b.inFlight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inFlight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started by Emit has returned
func (b *Bus) Wait() {
	b.inFlight.Wait()
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits pending events in publish order. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing transactional bus")

	// handlers outlive the request, so they get a detached context
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
