package service

import (
	"context"
	"testing"

	"banked/events"
	"banked/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifeGate_StartSession(t *testing.T) {
	ctx := context.Background()
	factory, uow := setupUnitOfWork(t)
	uow.On("Commit").Return(nil)

	after := testAccount(1)
	after.Lives = 0
	uow.Accounts.On("DecrementLife", ctx, int64(1)).Return(after, nil)
	uow.LedgerEntries.On("Record", ctx, ledgerEntryMatching(1, models.ResourceLives, 1, 0, models.TransactionTypeSessionStart)).Return(nil)

	result, err := NewLifeGate(factory).StartSession(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.LivesRemaining)

	started := uow.Publisher.OfType(events.EventTypeSessionStarted)
	require.Len(t, started, 1)
	assert.Equal(t, events.SessionStartedEvent{AccountID: 1, LivesRemaining: 0}, started[0])
	assertRepositoryExpectations(t, uow)
}

func TestLifeGate_StartSession_NoLivesRemaining(t *testing.T) {
	ctx := context.Background()
	factory, uow := setupUnitOfWork(t)

	empty := testAccount(1)
	empty.Lives = 0
	uow.Accounts.On("DecrementLife", ctx, int64(1)).Return(nil, nil)
	uow.Accounts.On("GetByID", ctx, int64(1)).Return(empty, nil)

	result, err := NewLifeGate(factory).StartSession(ctx, 1)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoLivesRemaining)
	assert.Equal(t, CodeNoLivesRemaining, CodeOf(err))
	uow.AssertNotCalled(t, "Commit")
	assert.Empty(t, uow.Publisher.Events)
}

func TestLifeGate_StartSession_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	factory, uow := setupUnitOfWork(t)

	uow.Accounts.On("DecrementLife", ctx, int64(404)).Return(nil, nil)
	uow.Accounts.On("GetByID", ctx, int64(404)).Return(nil, nil)

	_, err := NewLifeGate(factory).StartSession(ctx, 404)

	assert.ErrorIs(t, err, ErrNotFound)
}
