package repository

import (
	"context"
	"testing"

	"banked/models"
	"banked/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		account := &models.Account{
			DisplayName: "ana",
			Balance:     decimal.RequireFromString("12.34"),
			Diamonds:    3,
			Lives:       5,
			MaxLives:    5,
			Level:       1,
		}
		require.NoError(t, repo.Create(ctx, account))
		assert.NotZero(t, account.ID)
		assert.False(t, account.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "ana", got.DisplayName)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("12.34")))
		assert.Equal(t, int64(3), got.Diamonds)
	})

	t.Run("get missing account", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("adjust balances applies every delta", func(t *testing.T) {
		seed := testutil.DefaultAccountSeed("bruno")
		seed.Balance = decimal.NewFromInt(50)
		seed.Diamonds = 10
		account := testutil.CreateAccount(t, testDB.DB, seed)

		got, err := repo.AdjustBalances(ctx, account.ID, models.BalanceDelta{
			Currency: decimal.RequireFromString("-20.50"),
			Diamonds: 4,
			XP:       2500,
		}, 1000)
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.True(t, got.Balance.Equal(decimal.RequireFromString("29.50")))
		assert.Equal(t, int64(14), got.Diamonds)
		assert.Equal(t, int64(2500), got.XP)
		assert.Equal(t, 3, got.Level)
	})

	t.Run("adjust balances refuses a negative result", func(t *testing.T) {
		seed := testutil.DefaultAccountSeed("carla")
		seed.Balance = decimal.NewFromInt(5)
		seed.Diamonds = 2
		account := testutil.CreateAccount(t, testDB.DB, seed)

		got, err := repo.AdjustBalances(ctx, account.ID, models.BalanceDelta{
			Currency: decimal.NewFromInt(10),
			Diamonds: -3,
		}, 1000)
		require.NoError(t, err)
		assert.Nil(t, got)

		unchanged, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, unchanged.Balance.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, int64(2), unchanged.Diamonds)
	})

	t.Run("level never decreases and can be disabled", func(t *testing.T) {
		seed := testutil.DefaultAccountSeed("dora")
		seed.XP = 100
		seed.Level = 7
		account := testutil.CreateAccount(t, testDB.DB, seed)

		got, err := repo.AdjustBalances(ctx, account.ID, models.BalanceDelta{XP: 50}, 1000)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Level)

		got, err = repo.AdjustBalances(ctx, account.ID, models.BalanceDelta{XP: 100000}, 0)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Level)
		assert.Equal(t, int64(100150), got.XP)
	})

	t.Run("decrement life stops at zero", func(t *testing.T) {
		seed := testutil.DefaultAccountSeed("edu")
		seed.Lives = 1
		account := testutil.CreateAccount(t, testDB.DB, seed)

		got, err := repo.DecrementLife(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 0, got.Lives)

		got, err = repo.DecrementLife(ctx, account.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("spend diamonds requires enough", func(t *testing.T) {
		seed := testutil.DefaultAccountSeed("fabi")
		seed.Diamonds = 10
		account := testutil.CreateAccount(t, testDB.DB, seed)

		got, err := repo.SpendDiamonds(ctx, account.ID, 11)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.SpendDiamonds(ctx, account.ID, 10)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(0), got.Diamonds)
	})

	t.Run("schema rejects negative balances", func(t *testing.T) {
		account := testutil.CreateAccount(t, testDB.DB, testutil.DefaultAccountSeed("gil"))
		_, err := testDB.DB.Exec(ctx, `UPDATE accounts SET diamonds = -1 WHERE id = $1`, account.ID)
		assert.Error(t, err)
	})
}

func TestAccountRepository_GetTopByXP(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	for name, xp := range map[string]int64{"low": 10, "high": 900, "mid": 300} {
		seed := testutil.DefaultAccountSeed(name)
		seed.XP = xp
		testutil.CreateAccount(t, testDB.DB, seed)
	}

	entries, err := repo.GetTopByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "high", entries[0].DisplayName)
	assert.Equal(t, int64(900), entries[0].XP)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "mid", entries[1].DisplayName)
}
