package service

import (
	"context"

	"banked/config"
	"banked/models"
)

type diamondSpend struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewDiamondSpend creates a new diamond spend service
func NewDiamondSpend(uowFactory UnitOfWorkFactory, cfg *config.Config) DiamondSpend {
	return &diamondSpend{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// SpendForRetry debits the retry cost
func (s *diamondSpend) SpendForRetry(ctx context.Context, accountID int64, cost int64) (*SpendResult, error) {
	if cost <= 0 {
		cost = s.config.RetryCost
	}

	var result *SpendResult
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		account, err := spendDiamonds(ctx, uow, accountID, cost, models.TransactionTypeRetrySpend, nil)
		if err != nil {
			return err
		}
		result = &SpendResult{
			DiamondsSpent:     cost,
			DiamondsRemaining: account.Diamonds,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
