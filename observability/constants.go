package observability

// Metric name prefixes
const (
	MetricPrefix = "banked"
)

// Metric names
const (
	// Ledger metrics
	LedgerChangesTotal = MetricPrefix + ".ledger.changes_total"

	// Gameplay metrics
	SessionsStartedTotal  = MetricPrefix + ".sessions.started_total"
	ScoresRecordedTotal   = MetricPrefix + ".scores.recorded_total"
	DiamondsAwardedTotal  = MetricPrefix + ".scores.diamonds_awarded_total"
	AccountsCreatedTotal  = MetricPrefix + ".accounts.created_total"
	PrizePoolEntriesTotal = MetricPrefix + ".prize_pool.entries_total"

	// Withdrawal metrics
	WithdrawalsRequestedTotal = MetricPrefix + ".withdrawals.requested_total"

	// Outbox metrics
	OutboxPublishedTotal = MetricPrefix + ".outbox.published_total"
	OutboxFailuresTotal  = MetricPrefix + ".outbox.failures_total"
)

// Label keys
const (
	LabelResource        = "resource"
	LabelTransactionType = "transaction_type"
	LabelTopic           = "topic"
	LabelFinal           = "final"
)
