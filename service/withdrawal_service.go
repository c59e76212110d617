package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"banked/config"
	"banked/events"
	"banked/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const maxPayoutKeyLength = 255

type withdrawalService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewWithdrawalProcessor creates a new withdrawal processor
func NewWithdrawalProcessor(uowFactory UnitOfWorkFactory, cfg *config.Config) WithdrawalProcessor {
	return &withdrawalService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// RequestWithdrawal debits amount, stores a pending request and queues the back-office message,
// all in one transaction
func (s *withdrawalService) RequestWithdrawal(ctx context.Context, accountID int64, amount decimal.Decimal, payoutKey string) (*models.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, validation("withdrawal amount must be positive, got %s", amount)
	}
	if !amount.Equal(amount.Truncate(currencyPlaces)) {
		return nil, validation("withdrawal amount %s has more than %d decimal places", amount, currencyPlaces)
	}
	payoutKey = strings.TrimSpace(payoutKey)
	if payoutKey == "" {
		return nil, validation("payout key is required")
	}
	if len(payoutKey) > maxPayoutKeyLength {
		return nil, validation("payout key must be at most %d characters", maxPayoutKeyLength)
	}

	request := &models.WithdrawalRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		PayoutKey: payoutKey,
		Status:    models.WithdrawalStatusPending,
	}

	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		metadata := map[string]any{"withdrawal_id": request.ID.String()}
		delta := models.BalanceDelta{Currency: amount.Neg()}
		if _, err := applyBalanceDelta(ctx, uow, accountID, delta, s.config.XPPerLevel, models.TransactionTypeWithdrawal, metadata); err != nil {
			return err
		}

		if err := uow.WithdrawalRepository().Create(ctx, request); err != nil {
			return err
		}

		message, err := withdrawalOutboxMessage(request, s.config.KafkaWithdrawalTopic)
		if err != nil {
			return err
		}
		if err := uow.OutboxRepository().Create(ctx, message); err != nil {
			return err
		}

		uow.EventBus().Publish(events.WithdrawalRequestedEvent{
			WithdrawalID: request.ID,
			AccountID:    accountID,
			Amount:       amount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":    accountID,
		"withdrawalID": request.ID,
		"amount":       amount.String(),
	}).Info("Withdrawal requested")

	return request, nil
}

// GetWithdrawal returns one withdrawal request of the account. Requests owned by
// another account are reported as not found.
func (s *withdrawalService) GetWithdrawal(ctx context.Context, accountID int64, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		request, err = uow.WithdrawalRepository().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if request == nil || request.AccountID != accountID {
			return notFound("withdrawal %s not found for account %d", id, accountID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ListWithdrawals returns up to limit recent withdrawal requests, newest first
func (s *withdrawalService) ListWithdrawals(ctx context.Context, accountID int64, limit int) ([]*models.WithdrawalRequest, error) {
	limit = historyLimit(limit)

	var requests []*models.WithdrawalRequest
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		var err error
		requests, err = uow.WithdrawalRepository().GetByAccount(ctx, accountID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func withdrawalOutboxMessage(request *models.WithdrawalRequest, topic string) (*models.OutboxMessage, error) {
	payload, err := json.Marshal(models.WithdrawalRequestedPayload{
		WithdrawalID: request.ID.String(),
		AccountID:    request.AccountID,
		Amount:       request.Amount.StringFixed(2),
		PayoutKey:    request.PayoutKey,
		RequestedAt:  request.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal withdrawal payload: %w", err)
	}

	return &models.OutboxMessage{
		Key:     request.ID.String(),
		Topic:   topic,
		Payload: payload,
		Status:  models.OutboxStatusPending,
	}, nil
}
