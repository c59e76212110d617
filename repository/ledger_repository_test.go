package repository

import (
	"context"
	"testing"
	"time"

	"banked/models"
	"banked/repository/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEntryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerEntryRepository(testDB.DB)
	ctx := context.Background()
	account := testutil.CreateAccount(t, testDB.DB, testutil.DefaultAccountSeed("journal"))

	first := &models.LedgerEntry{
		AccountID:       account.ID,
		Resource:        models.ResourceDiamonds,
		BalanceBefore:   decimal.NewFromInt(0),
		BalanceAfter:    decimal.NewFromInt(2),
		ChangeAmount:    decimal.NewFromInt(2),
		TransactionType: models.TransactionTypeScoreReward,
		TransactionMetadata: map[string]any{
			"game_id": "snake",
		},
	}
	second := &models.LedgerEntry{
		AccountID:       account.ID,
		Resource:        models.ResourceBalance,
		BalanceBefore:   decimal.RequireFromString("10.00"),
		BalanceAfter:    decimal.RequireFromString("7.25"),
		ChangeAmount:    decimal.RequireFromString("-2.75"),
		TransactionType: models.TransactionTypeWithdrawal,
	}
	require.NoError(t, repo.Record(ctx, first))
	require.NoError(t, repo.Record(ctx, second))
	assert.NotZero(t, first.ID)

	entries, err := repo.GetByAccount(ctx, account.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, second.ID, entries[0].ID)
	assert.True(t, entries[0].ChangeAmount.Equal(decimal.RequireFromString("-2.75")))
	assert.Nil(t, entries[0].TransactionMetadata)
	assert.Equal(t, "snake", entries[1].TransactionMetadata["game_id"])

	limited, err := repo.GetByAccount(ctx, account.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPrizePoolRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPrizePoolRepository(testDB.DB)
	ctx := context.Background()
	account := testutil.CreateAccount(t, testDB.DB, testutil.DefaultAccountSeed("pool"))

	pool, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, pool.Total.IsZero())
	assert.Equal(t, int64(0), pool.Participants)

	pool, err = repo.Increment(ctx, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, pool.Total.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, int64(1), pool.Participants)

	entry := &models.PrizePoolEntry{AccountID: account.ID, Amount: decimal.NewFromInt(5)}
	require.NoError(t, repo.RecordEntry(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.Equal(t, 1, testutil.CountRows(t, testDB.DB, "prize_pool_entries", account.ID))

	_, err = testDB.DB.Exec(ctx, `INSERT INTO prize_pool (id) VALUES (FALSE)`)
	assert.Error(t, err, "prize pool must stay a single row")
}

func TestWithdrawalRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()
	account := testutil.CreateAccount(t, testDB.DB, testutil.DefaultAccountSeed("payout"))

	request := &models.WithdrawalRequest{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("19.90"),
		PayoutKey: "pix-123",
	}
	require.NoError(t, repo.Create(ctx, request))
	assert.NotEqual(t, uuid.Nil, request.ID)
	assert.Equal(t, models.WithdrawalStatusPending, request.Status)

	got, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("19.90")))
	assert.Equal(t, "pix-123", got.PayoutKey)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.GetByAccount(ctx, account.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bad := &models.WithdrawalRequest{AccountID: account.ID, Amount: decimal.Zero, PayoutKey: "pix"}
	assert.Error(t, repo.Create(ctx, bad))
}

func TestOutboxRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewOutboxRepository(testDB.DB)
	ctx := context.Background()

	newMessage := func(key string) *models.OutboxMessage {
		message := &models.OutboxMessage{
			Key:     key,
			Topic:   "withdrawal.requested",
			Payload: []byte(`{"withdrawal_id":"` + key + `"}`),
		}
		require.NoError(t, repo.Create(ctx, message))
		return message
	}

	sent := newMessage("a")
	retried := newMessage("b")
	failed := newMessage("c")

	pending, err := repo.ClaimPending(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, sent.ID, pending[0].ID)
	assert.JSONEq(t, `{"withdrawal_id":"a"}`, string(pending[0].Payload))
	require.NotNil(t, pending[0].ClaimedUntil)

	// leased rows are not handed to a second relay
	again, err := repo.ClaimPending(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, repo.MarkAsSent(ctx, sent.ID))
	require.NoError(t, repo.IncrementRetryCount(ctx, retried.ID, "broker unavailable"))
	require.NoError(t, repo.MarkAsFailed(ctx, failed.ID, "gave up"))

	pending, err = repo.ClaimPending(ctx, 10, 200*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, retried.ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "broker unavailable", *pending[0].LastError)

	// an expired lease makes the row claimable again
	require.Eventually(t, func() bool {
		reclaimed, err := repo.ClaimPending(ctx, 10, time.Minute)
		return err == nil && len(reclaimed) == 1 && reclaimed[0].ID == retried.ID
	}, 5*time.Second, 50*time.Millisecond)

	assert.Error(t, repo.MarkAsSent(ctx, 999999))
}
