package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"banked/config"
	"banked/events"
	"banked/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const maxDisplayNameLength = 255

type accountService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewAccountRegistry creates a new account registry
func NewAccountRegistry(uowFactory UnitOfWorkFactory, cfg *config.Config) AccountRegistry {
	return &accountService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// Register creates an account holding the configured starting balances and journals each grant
func (s *accountService) Register(ctx context.Context, displayName string) (*models.Account, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, validation("display name is required")
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
		return nil, validation("display name must be at most %d characters", maxDisplayNameLength)
	}

	account := &models.Account{
		DisplayName: displayName,
		Balance:     s.config.StartingBalance,
		Diamonds:    s.config.StartingDiamonds,
		Lives:       s.config.StartingLives,
		MaxLives:    s.config.MaxLives,
		XP:          0,
		Level:       1,
	}

	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if err := uow.AccountRepository().Create(ctx, account); err != nil {
			return err
		}

		grants := []struct {
			resource models.Resource
			amount   decimal.Decimal
		}{
			{models.ResourceBalance, account.Balance},
			{models.ResourceDiamonds, decimal.NewFromInt(account.Diamonds)},
			{models.ResourceLives, decimal.NewFromInt(int64(account.Lives))},
		}
		metadata := map[string]any{"display_name": displayName}
		for _, grant := range grants {
			if grant.amount.IsZero() {
				continue
			}
			if err := recordResourceChange(ctx, uow, account.ID, grant.resource, decimal.Zero, grant.amount, models.TransactionTypeInitial, metadata); err != nil {
				return err
			}
		}

		uow.EventBus().Publish(events.AccountCreatedEvent{
			AccountID:   account.ID,
			DisplayName: displayName,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":   account.ID,
		"displayName": displayName,
	}).Info("Account registered")

	return account, nil
}
