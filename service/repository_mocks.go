package service

import (
	"context"
	"sync"
	"time"

	"banked/events"
	"banked/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) AdjustBalances(ctx context.Context, id int64, delta models.BalanceDelta, xpPerLevel int64) (*models.Account, error) {
	args := m.Called(ctx, id, delta, xpPerLevel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) DecrementLife(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) SpendDiamonds(ctx context.Context, id int64, amount int64) (*models.Account, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetTopByXP(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockScoreRecordRepository is a mock implementation of ScoreRecordRepository
type MockScoreRecordRepository struct {
	mock.Mock
}

func (m *MockScoreRecordRepository) Create(ctx context.Context, record *models.ScoreRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockScoreRecordRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.ScoreRecord, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScoreRecord), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetRandomUnanswered(ctx context.Context, accountID int64, category string, limit int) ([]*models.Question, error) {
	args := m.Called(ctx, accountID, category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetRandom(ctx context.Context, category string) (*models.Question, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

// MockAnsweredQuestionRepository is a mock implementation of AnsweredQuestionRepository
type MockAnsweredQuestionRepository struct {
	mock.Mock
}

func (m *MockAnsweredQuestionRepository) Record(ctx context.Context, answer *models.AnsweredQuestion) (bool, error) {
	args := m.Called(ctx, answer)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnsweredQuestionRepository) Get(ctx context.Context, accountID, questionID int64) (*models.AnsweredQuestion, error) {
	args := m.Called(ctx, accountID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnsweredQuestion), args.Error(1)
}

// MockPrizePoolRepository is a mock implementation of PrizePoolRepository
type MockPrizePoolRepository struct {
	mock.Mock
}

func (m *MockPrizePoolRepository) Get(ctx context.Context) (*models.PrizePool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrizePool), args.Error(1)
}

func (m *MockPrizePoolRepository) Increment(ctx context.Context, amount decimal.Decimal) (*models.PrizePool, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrizePool), args.Error(1)
}

func (m *MockPrizePoolRepository) RecordEntry(ctx context.Context, entry *models.PrizePoolEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.WithdrawalRequest, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawalRequest), args.Error(1)
}

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *models.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.OutboxMessage, error) {
	args := m.Called(ctx, limit, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkAsSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementRetryCount(ctx context.Context, id int64, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkAsFailed(ctx context.Context, id int64, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

// MockLeaderboardCache is a mock implementation of LeaderboardCache
type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) Get(ctx context.Context, limit int) ([]*models.LeaderboardEntry, int64, bool, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2), args.Error(3)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *MockLeaderboardCache) Set(ctx context.Context, generation int64, limit int, entries []*models.LeaderboardEntry) error {
	args := m.Called(ctx, generation, limit, entries)
	return args.Error(0)
}

func (m *MockLeaderboardCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// RecordingEventPublisher collects published events
type RecordingEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
}

// OfType returns the recorded events of one type
func (p *RecordingEventPublisher) OfType(eventType events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []events.Event
	for _, event := range p.Events {
		if event.Type() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repository getters return the mocks assigned to its fields.
type MockUnitOfWork struct {
	mock.Mock

	Accounts          *MockAccountRepository
	LedgerEntries     *MockLedgerEntryRepository
	ScoreRecords      *MockScoreRecordRepository
	Questions         *MockQuestionRepository
	AnsweredQuestions *MockAnsweredQuestionRepository
	PrizePool         *MockPrizePoolRepository
	Withdrawals       *MockWithdrawalRepository
	Outbox            *MockOutboxRepository
	Publisher         *RecordingEventPublisher
}

// NewMockUnitOfWork returns a unit of work wired to fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Accounts:          new(MockAccountRepository),
		LedgerEntries:     new(MockLedgerEntryRepository),
		ScoreRecords:      new(MockScoreRecordRepository),
		Questions:         new(MockQuestionRepository),
		AnsweredQuestions: new(MockAnsweredQuestionRepository),
		PrizePool:         new(MockPrizePoolRepository),
		Withdrawals:       new(MockWithdrawalRepository),
		Outbox:            new(MockOutboxRepository),
		Publisher:         new(RecordingEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.Accounts
}

func (m *MockUnitOfWork) LedgerEntryRepository() LedgerEntryRepository {
	return m.LedgerEntries
}

func (m *MockUnitOfWork) ScoreRecordRepository() ScoreRecordRepository {
	return m.ScoreRecords
}

func (m *MockUnitOfWork) QuestionRepository() QuestionRepository {
	return m.Questions
}

func (m *MockUnitOfWork) AnsweredQuestionRepository() AnsweredQuestionRepository {
	return m.AnsweredQuestions
}

func (m *MockUnitOfWork) PrizePoolRepository() PrizePoolRepository {
	return m.PrizePool
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.Withdrawals
}

func (m *MockUnitOfWork) OutboxRepository() OutboxRepository {
	return m.Outbox
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.Publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
