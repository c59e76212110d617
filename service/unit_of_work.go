package service

import (
	"context"
	"errors"
)

// withUnitOfWork runs fn inside one transaction.
// Errors that are not already service errors are reported as TRANSACTION_FAILURE.
// The deferred rollback is a no-op once Commit has succeeded.
func withUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return txFailure("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		var serviceErr *Error
		if errors.As(err, &serviceErr) {
			return err
		}
		return txFailure("ledger operation failed", err)
	}

	if err := uow.Commit(); err != nil {
		return txFailure("failed to commit transaction", err)
	}

	return nil
}
