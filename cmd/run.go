package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banked/cache"
	"banked/config"
	"banked/database"
	"banked/events"
	"banked/observability"
	"banked/outbox"
	"banked/repository"
	"banked/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Services is the ledger's public surface, ready to be mounted by a host transport
type Services struct {
	Registry     service.AccountRegistry
	Ledger       service.AccountLedger
	Journal      service.LedgerJournal
	LifeGate     service.LifeGate
	DiamondSpend service.DiamondSpend
	Scores       service.ScoreProcessor
	Questions    service.QuestionSelector
	PrizePool    service.PrizePoolAccumulator
	Withdrawals  service.WithdrawalProcessor
	Leaderboard  service.Leaderboard
}

// NewServices wires every service to one unit of work factory. leaderboardCache may be nil.
func NewServices(uowFactory service.UnitOfWorkFactory, leaderboardCache service.LeaderboardCache, cfg *config.Config) *Services {
	return &Services{
		Registry:     service.NewAccountRegistry(uowFactory, cfg),
		Ledger:       service.NewAccountLedger(uowFactory, cfg),
		Journal:      service.NewLedgerJournal(uowFactory),
		LifeGate:     service.NewLifeGate(uowFactory),
		DiamondSpend: service.NewDiamondSpend(uowFactory, cfg),
		Scores:       service.NewScoreProcessor(uowFactory, cfg),
		Questions:    service.NewQuestionSelector(uowFactory, cfg),
		PrizePool:    service.NewPrizePoolAccumulator(uowFactory, cfg),
		Withdrawals:  service.NewWithdrawalProcessor(uowFactory, cfg),
		Leaderboard:  service.NewLeaderboard(uowFactory, leaderboardCache, cfg),
	}
}

// ConfigureLogging applies the configured level and formatter to the standard logger
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: expected json or text", cfg.LogFormat)
	}
	return nil
}

// Run initializes the ledger and runs its background workers until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := ConfigureLogging(cfg); err != nil {
		return err
	}

	log.WithField("environment", cfg.Environment).Info("Starting banked...")

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.Subscribe(eventBus)

	var leaderboardCache service.LeaderboardCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		lc := cache.NewLeaderboardCache(redisClient, cfg.LeaderboardCacheTTL)
		service.SubscribeLeaderboardInvalidation(eventBus, lc)
		leaderboardCache = lc
	} else {
		log.Info("REDIS_ADDR not set, leaderboard cache disabled")
	}

	services := NewServices(uowFactory, leaderboardCache, cfg)
	if top, err := services.Leaderboard.Top(ctx, 0); err != nil {
		log.WithError(err).Warn("Failed to warm leaderboard")
	} else {
		log.WithField("accounts", len(top)).Info("Leaderboard warmed")
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.KafkaEnabled() {
		producer, err := outbox.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer producer.Close()

		relay := outbox.NewRelay(uowFactory, producer, cfg.OutboxBatchSize, cfg.OutboxMaxRetries, cfg.OutboxClaimTimeout, metrics)
		scheduler, err := outbox.NewScheduler(relay, cfg.OutboxSchedule)
		if err != nil {
			return err
		}

		g.Go(func() error {
			scheduler.Start()
			<-gctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return scheduler.Stop(stopCtx)
		})
	} else {
		log.Warn("KAFKA_BROKERS not set, withdrawal messages stay in the outbox")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down banked...")
		return nil
	})

	err = g.Wait()

	eventBus.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := metrics.Shutdown(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Warn("Failed to flush metrics")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("Shutdown completed")
	return nil
}
