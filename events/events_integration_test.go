package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"banked/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToSubscribers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		balanceEvent, ok := event.(BalanceChangeEvent)
		if !ok {
			t.Errorf("expected BalanceChangeEvent, got %T", event)
			return
		}
		received <- balanceEvent
	})

	testEvent := BalanceChangeEvent{
		AccountID:       42,
		Resource:        models.ResourceDiamonds,
		OldValue:        decimal.NewFromInt(3),
		NewValue:        decimal.NewFromInt(5),
		ChangeAmount:    decimal.NewFromInt(2),
		TransactionType: models.TransactionTypeScoreReward,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	calls := 0
	mainBus.Subscribe(EventTypeWithdrawalRequested, func(ctx context.Context, event Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	transactionalBus.Publish(WithdrawalRequestedEvent{AccountID: 1, Amount: decimal.NewFromInt(10)})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestBus_MultipleEventsAndTypes(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	scores := 0
	sessions := 0
	mainBus.Subscribe(EventTypeScoreRecorded, func(ctx context.Context, event Event) {
		mu.Lock()
		scores++
		mu.Unlock()
	})
	mainBus.Subscribe(EventTypeSessionStarted, func(ctx context.Context, event Event) {
		mu.Lock()
		sessions++
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		transactionalBus.Publish(ScoreRecordedEvent{AccountID: int64(i), Points: 100})
	}
	transactionalBus.Publish(SessionStartedEvent{AccountID: 1, LivesRemaining: 4})

	require.NoError(t, transactionalBus.Flush(context.Background()))
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, scores)
	assert.Equal(t, 1, sessions)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	mainBus := NewBus()

	var mu sync.Mutex
	delivered := false
	mainBus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	mainBus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		mu.Lock()
		delivered = true
		mu.Unlock()
	})

	mainBus.Emit(context.Background(), AccountCreatedEvent{AccountID: 7, DisplayName: "ana"})
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, delivered)
}

func TestTransactionalBus_FlushContextOutlivesCaller(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	errCh := make(chan error, 1)
	mainBus.Subscribe(EventTypePrizePoolEntered, func(ctx context.Context, event Event) {
		errCh <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	transactionalBus.Publish(PrizePoolEnteredEvent{AccountID: 1})
	require.NoError(t, transactionalBus.Flush(ctx))
	cancel()
	mainBus.Wait()

	assert.NoError(t, <-errCh)
}
