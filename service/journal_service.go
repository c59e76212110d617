package service

import (
	"context"

	"banked/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type journalService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerJournal creates a new ledger journal reader
func NewLedgerJournal(uowFactory UnitOfWorkFactory) LedgerJournal {
	return &journalService{uowFactory: uowFactory}
}

// historyLimit applies the default and upper bound shared by history reads
func historyLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

// History returns up to limit recent entries, newest first
func (s *journalService) History(ctx context.Context, accountID int64, limit int) ([]*models.LedgerEntry, error) {
	limit = historyLimit(limit)

	var entries []*models.LedgerEntry
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		var err error
		entries, err = uow.LedgerEntryRepository().GetByAccount(ctx, accountID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
