package service

import (
	"context"

	"banked/events"
	"banked/models"

	log "github.com/sirupsen/logrus"
)

type lifeGate struct {
	uowFactory UnitOfWorkFactory
}

// NewLifeGate creates a new life gate
func NewLifeGate(uowFactory UnitOfWorkFactory) LifeGate {
	return &lifeGate{uowFactory: uowFactory}
}

// StartSession consumes one life. Two concurrent calls against the last life never both succeed.
func (g *lifeGate) StartSession(ctx context.Context, accountID int64) (*SessionResult, error) {
	var result *SessionResult
	err := withUnitOfWork(ctx, g.uowFactory, func(uow UnitOfWork) error {
		account, err := decrementLife(ctx, uow, accountID, models.TransactionTypeSessionStart)
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.SessionStartedEvent{
			AccountID:      accountID,
			LivesRemaining: account.Lives,
		})

		result = &SessionResult{LivesRemaining: account.Lives}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":      accountID,
		"livesRemaining": result.LivesRemaining,
	}).Info("Game session started")

	return result, nil
}
