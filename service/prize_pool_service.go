package service

import (
	"context"

	"banked/config"
	"banked/events"
	"banked/models"

	log "github.com/sirupsen/logrus"
)

type prizePoolService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewPrizePoolAccumulator creates a new prize pool service
func NewPrizePoolAccumulator(uowFactory UnitOfWorkFactory, cfg *config.Config) PrizePoolAccumulator {
	return &prizePoolService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// Enter adds the configured entry amount and one participant to the pool
func (s *prizePoolService) Enter(ctx context.Context, accountID int64) (*models.PrizePool, error) {
	amount := s.config.PrizePoolEntryAmount

	var pool *models.PrizePool
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		var err error
		pool, err = uow.PrizePoolRepository().Increment(ctx, amount)
		if err != nil {
			return err
		}

		entry := &models.PrizePoolEntry{AccountID: accountID, Amount: amount}
		if err := uow.PrizePoolRepository().RecordEntry(ctx, entry); err != nil {
			return err
		}

		uow.EventBus().Publish(events.PrizePoolEnteredEvent{
			AccountID:    accountID,
			Amount:       amount,
			Total:        pool.Total,
			Participants: pool.Participants,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":    accountID,
		"total":        pool.Total.String(),
		"participants": pool.Participants,
	}).Info("Prize pool entered")

	return pool, nil
}

// GetPool returns the current prize pool
func (s *prizePoolService) GetPool(ctx context.Context) (*models.PrizePool, error) {
	var pool *models.PrizePool
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		pool, err = uow.PrizePoolRepository().Get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
