package service

import (
	"testing"

	"banked/config"
	"banked/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// setupUnitOfWork wires a factory returning one mock unit of work that begins and rolls back.
// Commit expectations are left to each test.
func setupUnitOfWork(t *testing.T) (*MockUnitOfWorkFactory, *MockUnitOfWork) {
	t.Helper()

	uow := NewMockUnitOfWork()
	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)

	return factory, uow
}

func assertRepositoryExpectations(t *testing.T, uow *MockUnitOfWork) {
	t.Helper()
	uow.AssertExpectations(t)
	uow.Accounts.AssertExpectations(t)
	uow.LedgerEntries.AssertExpectations(t)
	uow.ScoreRecords.AssertExpectations(t)
	uow.Questions.AssertExpectations(t)
	uow.AnsweredQuestions.AssertExpectations(t)
	uow.PrizePool.AssertExpectations(t)
	uow.Withdrawals.AssertExpectations(t)
	uow.Outbox.AssertExpectations(t)
}

func testConfig() *config.Config {
	return config.NewTestConfig()
}

func testAccount(id int64) *models.Account {
	return &models.Account{
		ID:          id,
		DisplayName: "player",
		Balance:     decimal.NewFromInt(100),
		Diamonds:    20,
		Lives:       5,
		MaxLives:    5,
		XP:          0,
		Level:       1,
	}
}

func deltaMatching(currency string, diamonds, xp int64) any {
	want := decimal.RequireFromString(currency)
	return mock.MatchedBy(func(d models.BalanceDelta) bool {
		return d.Currency.Equal(want) && d.Diamonds == diamonds && d.XP == xp
	})
}

func ledgerEntryMatching(accountID int64, resource models.Resource, before, after int64, txType models.TransactionType) any {
	return mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.AccountID == accountID &&
			e.Resource == resource &&
			e.BalanceBefore.Equal(decimal.NewFromInt(before)) &&
			e.BalanceAfter.Equal(decimal.NewFromInt(after)) &&
			e.ChangeAmount.Equal(decimal.NewFromInt(after-before)) &&
			e.TransactionType == txType
	})
}
