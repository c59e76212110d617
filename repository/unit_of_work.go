package repository

import (
	"context"
	"errors"
	"fmt"

	"banked/database"
	"banked/events"
	"banked/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	accountRepo          *AccountRepository
	ledgerEntryRepo      *LedgerEntryRepository
	scoreRecordRepo      *ScoreRecordRepository
	questionRepo         *QuestionRepository
	answeredQuestionRepo *AnsweredQuestionRepository
	prizePoolRepo        *PrizePoolRepository
	withdrawalRepo       *WithdrawalRepository
	outboxRepo           *OutboxRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.ledgerEntryRepo = newLedgerEntryRepositoryWithTx(tx)
	u.scoreRecordRepo = newScoreRecordRepositoryWithTx(tx)
	u.questionRepo = newQuestionRepositoryWithTx(tx)
	u.answeredQuestionRepo = newAnsweredQuestionRepositoryWithTx(tx)
	u.prizePoolRepo = newPrizePoolRepositoryWithTx(tx)
	u.withdrawalRepo = newWithdrawalRepositoryWithTx(tx)
	u.outboxRepo = newOutboxRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and releases the events raised inside it
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if err := u.transactionalBus.Flush(u.ctx); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}

	return nil
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

func (u *unitOfWork) mustBeStarted() {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	u.mustBeStarted()
	return u.accountRepo
}

// LedgerEntryRepository returns the ledger entry repository for this unit of work
func (u *unitOfWork) LedgerEntryRepository() service.LedgerEntryRepository {
	u.mustBeStarted()
	return u.ledgerEntryRepo
}

// ScoreRecordRepository returns the score record repository for this unit of work
func (u *unitOfWork) ScoreRecordRepository() service.ScoreRecordRepository {
	u.mustBeStarted()
	return u.scoreRecordRepo
}

// QuestionRepository returns the question repository for this unit of work
func (u *unitOfWork) QuestionRepository() service.QuestionRepository {
	u.mustBeStarted()
	return u.questionRepo
}

// AnsweredQuestionRepository returns the answered question repository for this unit of work
func (u *unitOfWork) AnsweredQuestionRepository() service.AnsweredQuestionRepository {
	u.mustBeStarted()
	return u.answeredQuestionRepo
}

// PrizePoolRepository returns the prize pool repository for this unit of work
func (u *unitOfWork) PrizePoolRepository() service.PrizePoolRepository {
	u.mustBeStarted()
	return u.prizePoolRepo
}

// WithdrawalRepository returns the withdrawal repository for this unit of work
func (u *unitOfWork) WithdrawalRepository() service.WithdrawalRepository {
	u.mustBeStarted()
	return u.withdrawalRepo
}

// OutboxRepository returns the outbox repository for this unit of work
func (u *unitOfWork) OutboxRepository() service.OutboxRepository {
	u.mustBeStarted()
	return u.outboxRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
