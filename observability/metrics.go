package observability

import (
	"context"
	"fmt"
	"sync"

	"banked/config"
	"banked/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider owns the OpenTelemetry meter provider and the ledger's instruments
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	ledgerChangesCounter    metric.Int64Counter
	sessionsStartedCounter  metric.Int64Counter
	scoresRecordedCounter   metric.Int64Counter
	diamondsAwardedCounter  metric.Int64Counter
	accountsCreatedCounter  metric.Int64Counter
	prizePoolEntriesCounter metric.Int64Counter
	withdrawalsCounter      metric.Int64Counter
	outboxPublishedCounter  metric.Int64Counter
	outboxFailuresCounter   metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up a periodic stdout exporter when OTEL_ENABLED is set
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		mp.mu.Lock()
		mp.initialized = true
		mp.mu.Unlock()
		log.Info("OpenTelemetry metrics disabled")
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.config.OTelExportInterval))
	return mp.InitializeWithReader(ctx, reader)
}

// InitializeWithReader builds the meter provider around reader
func (mp *MetricsProvider) InitializeWithReader(ctx context.Context, reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("banked")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.WithField("service", mp.config.OTelServiceName).Info("Metrics provider initialized")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.ledgerChangesCounter, LedgerChangesTotal, "Total number of journaled resource changes"},
		{&mp.sessionsStartedCounter, SessionsStartedTotal, "Total number of game sessions started"},
		{&mp.scoresRecordedCounter, ScoresRecordedTotal, "Total number of scores recorded"},
		{&mp.diamondsAwardedCounter, DiamondsAwardedTotal, "Total diamonds awarded for scores"},
		{&mp.accountsCreatedCounter, AccountsCreatedTotal, "Total number of accounts registered"},
		{&mp.prizePoolEntriesCounter, PrizePoolEntriesTotal, "Total number of prize pool entries"},
		{&mp.withdrawalsCounter, WithdrawalsRequestedTotal, "Total number of withdrawal requests"},
		{&mp.outboxPublishedCounter, OutboxPublishedTotal, "Total number of outbox messages published"},
		{&mp.outboxFailuresCounter, OutboxFailuresTotal, "Total number of failed outbox publish attempts"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}
	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

// Subscribe counts committed ledger events
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			mp.add(ctx, mp.ledgerChangesCounter, 1,
				attribute.String(LabelResource, string(e.Resource)),
				attribute.String(LabelTransactionType, string(e.TransactionType)),
			)
		}
	})
	bus.Subscribe(events.EventTypeSessionStarted, func(ctx context.Context, event events.Event) {
		mp.add(ctx, mp.sessionsStartedCounter, 1)
	})
	bus.Subscribe(events.EventTypeScoreRecorded, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ScoreRecordedEvent); ok {
			// game ids are client supplied, so they stay out of the label set
			mp.add(ctx, mp.scoresRecordedCounter, 1)
			mp.add(ctx, mp.diamondsAwardedCounter, e.DiamondsAwarded)
		}
	})
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, event events.Event) {
		mp.add(ctx, mp.accountsCreatedCounter, 1)
	})
	bus.Subscribe(events.EventTypePrizePoolEntered, func(ctx context.Context, event events.Event) {
		mp.add(ctx, mp.prizePoolEntriesCounter, 1)
	})
	bus.Subscribe(events.EventTypeWithdrawalRequested, func(ctx context.Context, event events.Event) {
		mp.add(ctx, mp.withdrawalsCounter, 1)
	})
}

// RecordOutboxPublished counts a delivered outbox message
func (mp *MetricsProvider) RecordOutboxPublished(topic string) {
	mp.add(context.Background(), mp.outboxPublishedCounter, 1, attribute.String(LabelTopic, topic))
}

// RecordOutboxFailure counts a failed publish attempt
func (mp *MetricsProvider) RecordOutboxFailure(topic string, final bool) {
	mp.add(context.Background(), mp.outboxFailuresCounter, 1,
		attribute.String(LabelTopic, topic),
		attribute.Bool(LabelFinal, final),
	)
}

func (mp *MetricsProvider) add(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if !mp.isEnabled() || value == 0 {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
