package service

import (
	"context"
	"strings"
	"testing"

	"banked/events"
	"banked/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountRegistry_Register_DefaultSeeds(t *testing.T) {
	ctx := context.Background()
	factory, uow := setupUnitOfWork(t)
	uow.On("Commit").Return(nil)

	uow.Accounts.On("Create", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.DisplayName == "ana" &&
			a.Balance.IsZero() &&
			a.Diamonds == 0 &&
			a.Lives == 5 &&
			a.MaxLives == 5 &&
			a.XP == 0 &&
			a.Level == 1
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 11
	}).Return(nil)
	uow.LedgerEntries.On("Record", ctx, ledgerEntryMatching(11, models.ResourceLives, 0, 5, models.TransactionTypeInitial)).Return(nil)

	account, err := NewAccountRegistry(factory, testConfig()).Register(ctx, "  ana ")

	require.NoError(t, err)
	assert.Equal(t, int64(11), account.ID)
	assert.Equal(t, "ana", account.DisplayName)

	created := uow.Publisher.OfType(events.EventTypeAccountCreated)
	require.Len(t, created, 1)
	assert.Equal(t, events.AccountCreatedEvent{AccountID: 11, DisplayName: "ana"}, created[0])
	assertRepositoryExpectations(t, uow)
}

func TestAccountRegistry_Register_JournalsEveryGrant(t *testing.T) {
	ctx := context.Background()
	factory, uow := setupUnitOfWork(t)
	uow.On("Commit").Return(nil)

	cfg := testConfig()
	cfg.StartingBalance = decimal.NewFromInt(50)
	cfg.StartingDiamonds = 30

	uow.Accounts.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 12
	}).Return(nil)
	uow.LedgerEntries.On("Record", ctx, ledgerEntryMatching(12, models.ResourceBalance, 0, 50, models.TransactionTypeInitial)).Return(nil)
	uow.LedgerEntries.On("Record", ctx, ledgerEntryMatching(12, models.ResourceDiamonds, 0, 30, models.TransactionTypeInitial)).Return(nil)
	uow.LedgerEntries.On("Record", ctx, ledgerEntryMatching(12, models.ResourceLives, 0, 5, models.TransactionTypeInitial)).Return(nil)

	account, err := NewAccountRegistry(factory, cfg).Register(ctx, "bruno")

	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(30), account.Diamonds)
	assert.Len(t, uow.Publisher.OfType(events.EventTypeBalanceChange), 3)
	assertRepositoryExpectations(t, uow)
}

func TestAccountRegistry_Register_Validation(t *testing.T) {
	factory := new(MockUnitOfWorkFactory)
	registry := NewAccountRegistry(factory, testConfig())

	_, err := registry.Register(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = registry.Register(context.Background(), strings.Repeat("x", 256))
	assert.ErrorIs(t, err, ErrValidation)

	factory.AssertNotCalled(t, "Create")
}
