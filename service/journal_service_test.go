package service

import (
	"context"
	"testing"

	"banked/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerJournal_History(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{name: "explicit limit", limit: 5, expectedLimit: 5},
		{name: "default limit", limit: 0, expectedLimit: defaultHistoryLimit},
		{name: "clamped limit", limit: 10000, expectedLimit: maxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, uow := setupUnitOfWork(t)
			uow.On("Commit").Return(nil)
			entries := []*models.LedgerEntry{{ID: 1, AccountID: 1, Resource: models.ResourceXP}}
			uow.Accounts.On("GetByID", ctx, int64(1)).Return(testAccount(1), nil)
			uow.LedgerEntries.On("GetByAccount", ctx, int64(1), tt.expectedLimit).Return(entries, nil)

			got, err := NewLedgerJournal(factory).History(ctx, 1, tt.limit)

			require.NoError(t, err)
			assert.Equal(t, entries, got)
			assertRepositoryExpectations(t, uow)
		})
	}
}

func TestLedgerJournal_History_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	factory, uow := setupUnitOfWork(t)
	uow.Accounts.On("GetByID", ctx, int64(5)).Return(nil, nil)

	_, err := NewLedgerJournal(factory).History(ctx, 5, 10)

	assert.ErrorIs(t, err, ErrNotFound)
	uow.LedgerEntries.AssertNotCalled(t, "GetByAccount", mock.Anything, mock.Anything, mock.Anything)
}
