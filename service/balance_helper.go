package service

import (
	"context"
	"fmt"

	"banked/events"
	"banked/models"

	"github.com/shopspring/decimal"
)

// RecordLedgerChange journals a resource change and publishes a BalanceChangeEvent.
// Every balance mutation goes through here so the journal and the event stream stay in step.
func RecordLedgerChange(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       entry.AccountID,
		Resource:        entry.Resource,
		OldValue:        entry.BalanceBefore,
		NewValue:        entry.BalanceAfter,
		ChangeAmount:    entry.ChangeAmount,
		TransactionType: entry.TransactionType,
	})

	return nil
}

// recordResourceChange journals the move of one resource from before to after
func recordResourceChange(ctx context.Context, uow UnitOfWork, accountID int64, resource models.Resource, before, after decimal.Decimal, txType models.TransactionType, metadata map[string]any) error {
	return RecordLedgerChange(ctx, uow, &models.LedgerEntry{
		AccountID:           accountID,
		Resource:            resource,
		BalanceBefore:       before,
		BalanceAfter:        after,
		ChangeAmount:        after.Sub(before),
		TransactionType:     txType,
		TransactionMetadata: metadata,
	})
}
