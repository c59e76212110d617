package service

import (
	"context"
	"time"

	"banked/events"
	"banked/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access.
// Conditional mutations return a nil account when no row satisfied the condition.
type AccountRepository interface {
	// GetByID retrieves an account, returning nil when it does not exist
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// Create creates a new account seeded with the given balances
	Create(ctx context.Context, account *models.Account) error

	// AdjustBalances applies delta in one conditional update, refusing any negative result.
	// Level is raised to 1 + xp/xpPerLevel when that is higher; xpPerLevel <= 0 leaves level alone.
	AdjustBalances(ctx context.Context, id int64, delta models.BalanceDelta, xpPerLevel int64) (*models.Account, error)

	// DecrementLife removes one life if the account has any left
	DecrementLife(ctx context.Context, id int64) (*models.Account, error)

	// SpendDiamonds debits amount diamonds if the account holds at least that many
	SpendDiamonds(ctx context.Context, id int64, amount int64) (*models.Account, error)

	// GetTopByXP returns accounts ranked by xp, highest first
	GetTopByXP(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// LedgerEntryRepository defines the interface for the resource journal
type LedgerEntryRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByAccount returns the most recent entries for an account, newest first
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.LedgerEntry, error)
}

// ScoreRecordRepository defines the interface for score history
type ScoreRecordRepository interface {
	// Create appends a score record
	Create(ctx context.Context, record *models.ScoreRecord) error

	// GetByAccount returns the most recent score records for an account
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.ScoreRecord, error)
}

// QuestionRepository defines the interface for quiz content
type QuestionRepository interface {
	// Create stores a new question
	Create(ctx context.Context, question *models.Question) error

	// GetByID retrieves a question, returning nil when it does not exist
	GetByID(ctx context.Context, id int64) (*models.Question, error)

	// GetRandomUnanswered samples up to limit questions from category that the account has not answered
	GetRandomUnanswered(ctx context.Context, accountID int64, category string, limit int) ([]*models.Question, error)

	// GetRandom samples one question from category, returning nil when the category is empty
	GetRandom(ctx context.Context, category string) (*models.Question, error)
}

// AnsweredQuestionRepository defines the interface for answer tracking
type AnsweredQuestionRepository interface {
	// Record inserts the answer unless the account already answered the question.
	// It reports whether a row was inserted.
	Record(ctx context.Context, answer *models.AnsweredQuestion) (bool, error)

	// Get returns the recorded answer, or nil
	Get(ctx context.Context, accountID, questionID int64) (*models.AnsweredQuestion, error)
}

// PrizePoolRepository defines the interface for the shared prize pool
type PrizePoolRepository interface {
	// Get returns the current pool
	Get(ctx context.Context) (*models.PrizePool, error)

	// Increment adds amount to the pool total and one participant
	Increment(ctx context.Context, amount decimal.Decimal) (*models.PrizePool, error)

	// RecordEntry appends a contribution
	RecordEntry(ctx context.Context, entry *models.PrizePoolEntry) error
}

// WithdrawalRepository defines the interface for withdrawal requests
type WithdrawalRepository interface {
	// Create inserts a new withdrawal request
	Create(ctx context.Context, request *models.WithdrawalRequest) error

	// GetByID retrieves a withdrawal request, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)

	// GetByAccount returns the withdrawal requests of an account, newest first
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.WithdrawalRequest, error)
}

// OutboxRepository defines the interface for messages awaiting publication
type OutboxRepository interface {
	// Create stores a pending message
	Create(ctx context.Context, message *models.OutboxMessage) error

	// ClaimPending leases up to limit pending messages for lease, oldest first
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.OutboxMessage, error)

	// MarkAsSent flags a message as published
	MarkAsSent(ctx context.Context, id int64) error

	// IncrementRetryCount records a failed publish attempt
	IncrementRetryCount(ctx context.Context, id int64, lastError string) error

	// MarkAsFailed stops further publish attempts
	MarkAsFailed(ctx context.Context, id int64, lastError string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// AccountLedger owns balance reads and atomic balance mutations
type AccountLedger interface {
	// GetBalances returns the current balances of an account
	GetBalances(ctx context.Context, accountID int64) (*models.Account, error)

	// AdjustBalances applies a signed delta atomically and returns the new balances
	AdjustBalances(ctx context.Context, accountID int64, delta models.BalanceDelta) (*models.Account, error)

	// DecrementLife removes one life
	DecrementLife(ctx context.Context, accountID int64) (*models.Account, error)

	// SpendDiamonds debits diamonds
	SpendDiamonds(ctx context.Context, accountID int64, amount int64) (*models.Account, error)
}

// LedgerJournal exposes the resource change history
type LedgerJournal interface {
	// History returns the most recent ledger entries for an account
	History(ctx context.Context, accountID int64, limit int) ([]*models.LedgerEntry, error)
}

// AccountRegistry creates accounts
type AccountRegistry interface {
	// Register creates an account with the configured starting balances
	Register(ctx context.Context, displayName string) (*models.Account, error)
}

// LifeGate gates game sessions on available lives
type LifeGate interface {
	// StartSession consumes one life
	StartSession(ctx context.Context, accountID int64) (*SessionResult, error)
}

// DiamondSpend handles paid actions
type DiamondSpend interface {
	// SpendForRetry debits the retry cost, using the configured default when cost <= 0
	SpendForRetry(ctx context.Context, accountID int64, cost int64) (*SpendResult, error)
}

// ScoreProcessor converts game scores into rewards
type ScoreProcessor interface {
	// RecordScore stores the score and credits diamonds and xp in one transaction
	RecordScore(ctx context.Context, accountID int64, gameID string, rawPoints int64) (*models.ScoreResult, error)

	// ScoreHistory returns the most recent score records for an account
	ScoreHistory(ctx context.Context, accountID int64, limit int) ([]*models.ScoreRecord, error)
}

// QuestionSelector delivers quiz questions
type QuestionSelector interface {
	// FetchBatch returns random questions the account has not answered yet
	FetchBatch(ctx context.Context, accountID int64, category string, batchSize int) ([]*models.Question, error)

	// ExtraQuestion charges diamonds for one random question from the whole category
	ExtraQuestion(ctx context.Context, accountID int64, category string, cost int64) (*ExtraQuestionResult, error)

	// RegisterAnswer records an answer; the first answer to a question wins
	RegisterAnswer(ctx context.Context, accountID, questionID int64, wasCorrect bool) (*models.AnswerResult, error)
}

// PrizePoolAccumulator manages the shared pot
type PrizePoolAccumulator interface {
	// Enter adds the entry amount and one participant to the pool
	Enter(ctx context.Context, accountID int64) (*models.PrizePool, error)

	// GetPool returns the current pool
	GetPool(ctx context.Context) (*models.PrizePool, error)
}

// WithdrawalProcessor creates and reads withdrawal requests
type WithdrawalProcessor interface {
	// RequestWithdrawal debits amount and creates a pending withdrawal
	RequestWithdrawal(ctx context.Context, accountID int64, amount decimal.Decimal, payoutKey string) (*models.WithdrawalRequest, error)

	// GetWithdrawal returns a withdrawal request owned by the account
	GetWithdrawal(ctx context.Context, accountID int64, id uuid.UUID) (*models.WithdrawalRequest, error)

	// ListWithdrawals returns the most recent withdrawal requests of an account
	ListWithdrawals(ctx context.Context, accountID int64, limit int) ([]*models.WithdrawalRequest, error)
}

// Leaderboard ranks accounts by xp
type Leaderboard interface {
	// Top returns the highest ranked accounts, using the configured size when limit <= 0
	Top(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// LeaderboardCache stores rendered leaderboards
type LeaderboardCache interface {
	// Get returns the cached leaderboard for limit, the cache generation it was
	// looked up under, and whether it was present
	Get(ctx context.Context, limit int) ([]*models.LeaderboardEntry, int64, bool, error)

	// Set stores a leaderboard for limit under a generation returned by Get
	Set(ctx context.Context, generation int64, limit int, entries []*models.LeaderboardEntry) error

	// Invalidate drops every cached leaderboard
	Invalidate(ctx context.Context) error
}

// SessionResult is returned when a session starts
type SessionResult struct {
	LivesRemaining int
}

// SpendResult is returned after a paid action
type SpendResult struct {
	DiamondsSpent     int64
	DiamondsRemaining int64
}

// ExtraQuestionResult is a purchased question
type ExtraQuestionResult struct {
	Question          *models.Question
	DiamondsRemaining int64
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	LedgerEntryRepository() LedgerEntryRepository
	ScoreRecordRepository() ScoreRecordRepository
	QuestionRepository() QuestionRepository
	AnsweredQuestionRepository() AnsweredQuestionRepository
	PrizePoolRepository() PrizePoolRepository
	WithdrawalRepository() WithdrawalRepository
	OutboxRepository() OutboxRepository

	// EventBus returns the transactional event publisher
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
