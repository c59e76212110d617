package service

import (
	"context"

	"banked/config"
	"banked/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// currencyPlaces matches the scale of the balance columns
const currencyPlaces = 2

// ledgerService implements the AccountLedger interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewAccountLedger creates a new account ledger
func NewAccountLedger(uowFactory UnitOfWorkFactory, cfg *config.Config) AccountLedger {
	return &ledgerService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetBalances returns the current balances of an account
func (s *ledgerService) GetBalances(ctx context.Context, accountID int64) (*models.Account, error) {
	var account *models.Account
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		account, err = getAccount(ctx, uow, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// AdjustBalances applies a signed delta atomically
func (s *ledgerService) AdjustBalances(ctx context.Context, accountID int64, delta models.BalanceDelta) (*models.Account, error) {
	var account *models.Account
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		account, err = applyBalanceDelta(ctx, uow, accountID, delta, s.config.XPPerLevel, models.TransactionTypeAdjustment, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DecrementLife removes one life
func (s *ledgerService) DecrementLife(ctx context.Context, accountID int64) (*models.Account, error) {
	var account *models.Account
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		account, err = decrementLife(ctx, uow, accountID, models.TransactionTypeAdjustment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SpendDiamonds debits diamonds
func (s *ledgerService) SpendDiamonds(ctx context.Context, accountID int64, amount int64) (*models.Account, error) {
	var account *models.Account
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		account, err = spendDiamonds(ctx, uow, accountID, amount, models.TransactionTypeAdjustment, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// getAccount loads an account or reports NOT_FOUND
func getAccount(ctx context.Context, uow UnitOfWork, accountID int64) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, notFound("account %d not found", accountID)
	}
	return account, nil
}

// applyBalanceDelta is the single conditional write behind every multi-resource adjustment.
// It journals one ledger entry per non-zero component of delta.
func applyBalanceDelta(ctx context.Context, uow UnitOfWork, accountID int64, delta models.BalanceDelta, xpPerLevel int64, txType models.TransactionType, metadata map[string]any) (*models.Account, error) {
	if !delta.Currency.Equal(delta.Currency.Truncate(currencyPlaces)) {
		return nil, validation("currency delta %s has more than %d decimal places", delta.Currency, currencyPlaces)
	}
	if delta.IsZero() {
		return getAccount(ctx, uow, accountID)
	}

	after, err := uow.AccountRepository().AdjustBalances(ctx, accountID, delta, xpPerLevel)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return nil, explainRejectedDelta(ctx, uow, accountID, delta)
	}

	if !delta.Currency.IsZero() {
		before := after.Balance.Sub(delta.Currency)
		if err := recordResourceChange(ctx, uow, accountID, models.ResourceBalance, before, after.Balance, txType, metadata); err != nil {
			return nil, err
		}
	}
	if delta.Diamonds != 0 {
		before := decimal.NewFromInt(after.Diamonds - delta.Diamonds)
		if err := recordResourceChange(ctx, uow, accountID, models.ResourceDiamonds, before, decimal.NewFromInt(after.Diamonds), txType, metadata); err != nil {
			return nil, err
		}
	}
	if delta.XP != 0 {
		xpMetadata := map[string]any{"level": after.Level}
		for k, v := range metadata {
			xpMetadata[k] = v
		}
		before := decimal.NewFromInt(after.XP - delta.XP)
		if err := recordResourceChange(ctx, uow, accountID, models.ResourceXP, before, decimal.NewFromInt(after.XP), txType, xpMetadata); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"accountID":       accountID,
		"currencyDelta":   delta.Currency.String(),
		"diamondsDelta":   delta.Diamonds,
		"xpDelta":         delta.XP,
		"transactionType": txType,
	}).Debug("Applied balance delta")

	return after, nil
}

// explainRejectedDelta turns an unmatched conditional update into NOT_FOUND or INSUFFICIENT_FUNDS
func explainRejectedDelta(ctx context.Context, uow UnitOfWork, accountID int64, delta models.BalanceDelta) error {
	account, err := getAccount(ctx, uow, accountID)
	if err != nil {
		return err
	}

	switch {
	case account.Balance.Add(delta.Currency).IsNegative():
		return newError(CodeInsufficientFunds, "account %d balance %s cannot cover %s", accountID, account.Balance, delta.Currency.Neg())
	case account.Diamonds+delta.Diamonds < 0:
		return newError(CodeInsufficientFunds, "account %d has %d diamonds, cannot remove %d", accountID, account.Diamonds, -delta.Diamonds)
	case account.XP+delta.XP < 0:
		return newError(CodeInsufficientFunds, "account %d has %d xp, cannot remove %d", accountID, account.XP, -delta.XP)
	default:
		// a concurrent credit landed between the rejected update and this read
		return newError(CodeInsufficientFunds, "account %d could not cover the adjustment", accountID)
	}
}

// decrementLife consumes one life or reports NO_LIVES_REMAINING
func decrementLife(ctx context.Context, uow UnitOfWork, accountID int64, txType models.TransactionType) (*models.Account, error) {
	after, err := uow.AccountRepository().DecrementLife(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if after == nil {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return nil, err
		}
		return nil, newError(CodeNoLivesRemaining, "account %d has no lives remaining", accountID)
	}

	before := decimal.NewFromInt(int64(after.Lives + 1))
	if err := recordResourceChange(ctx, uow, accountID, models.ResourceLives, before, decimal.NewFromInt(int64(after.Lives)), txType, nil); err != nil {
		return nil, err
	}

	return after, nil
}

// spendDiamonds debits a positive amount or reports INSUFFICIENT_DIAMONDS
func spendDiamonds(ctx context.Context, uow UnitOfWork, accountID int64, amount int64, txType models.TransactionType, metadata map[string]any) (*models.Account, error) {
	if amount <= 0 {
		return nil, validation("diamond amount must be positive, got %d", amount)
	}

	after, err := uow.AccountRepository().SpendDiamonds(ctx, accountID, amount)
	if err != nil {
		return nil, err
	}
	if after == nil {
		account, err := getAccount(ctx, uow, accountID)
		if err != nil {
			return nil, err
		}
		return nil, newError(CodeInsufficientDiamonds, "account %d has %d diamonds, needs %d", accountID, account.Diamonds, amount)
	}

	before := decimal.NewFromInt(after.Diamonds + amount)
	if err := recordResourceChange(ctx, uow, accountID, models.ResourceDiamonds, before, decimal.NewFromInt(after.Diamonds), txType, metadata); err != nil {
		return nil, err
	}

	return after, nil
}
