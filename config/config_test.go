package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := load()
	require.NoError(t, err)

	assert.True(t, cfg.StartingBalance.IsZero())
	assert.Equal(t, 5, cfg.StartingLives)
	assert.Equal(t, 5, cfg.MaxLives)
	assert.Equal(t, int64(100), cfg.DiamondConversionRate)
	assert.Equal(t, int64(10), cfg.RetryCost)
	assert.Equal(t, 10, cfg.QuestionBatchSize)
	assert.True(t, cfg.PrizePoolEntryAmount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 50, cfg.LeaderboardSize)
	assert.Equal(t, "withdrawal.requested", cfg.KafkaWithdrawalTopic)
	assert.Equal(t, 30*time.Second, cfg.LeaderboardCacheTTL)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STARTING_BALANCE", "12.50")
	t.Setenv("DIAMOND_CONVERSION_RATE", "50")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LEADERBOARD_CACHE_TTL", "1m")

	cfg, err := load()
	require.NoError(t, err)

	assert.True(t, cfg.StartingBalance.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, int64(50), cfg.DiamondConversionRate)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, time.Minute, cfg.LeaderboardCacheTTL)
}

func TestLoad_RequiresDatabaseURLOutsideTests(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "")

	_, err := load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "starting lives above max",
			mutate:  func(c *Config) { c.StartingLives = 6 },
			wantErr: "STARTING_LIVES",
		},
		{
			name:    "zero conversion rate",
			mutate:  func(c *Config) { c.DiamondConversionRate = 0 },
			wantErr: "DIAMOND_CONVERSION_RATE",
		},
		{
			name:    "negative starting balance",
			mutate:  func(c *Config) { c.StartingBalance = decimal.NewFromInt(-1) },
			wantErr: "STARTING_BALANCE",
		},
		{
			name:    "zero outbox claim timeout",
			mutate:  func(c *Config) { c.OutboxClaimTimeout = 0 },
			wantErr: "OUTBOX_CLAIM_TIMEOUT",
		},
		{
			name:    "zero prize pool entry",
			mutate:  func(c *Config) { c.PrizePoolEntryAmount = decimal.Zero },
			wantErr: "PRIZE_POOL_ENTRY_AMOUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetTestConfigAndReset(t *testing.T) {
	cfg := NewTestConfig()
	cfg.RetryCost = 42
	SetTestConfig(cfg)
	t.Cleanup(ResetConfig)

	assert.Equal(t, int64(42), Get().RetryCost)

	ResetConfig()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("RETRY_COST", "7")
	assert.Equal(t, int64(7), Get().RetryCost)
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := NewTestConfig()
	cfg.DatabaseURL = "postgres://u:p@localhost:5432"
	cfg.DatabaseName = "banked"

	assert.Equal(t, "postgres://u:p@localhost:5432/banked?sslmode=disable", cfg.GetDatabaseURL())
}
