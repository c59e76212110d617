package service

import (
	"context"
	"strings"

	"banked/config"
	"banked/events"
	"banked/models"

	log "github.com/sirupsen/logrus"
)

const maxGameIDLength = 100

type scoreService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewScoreProcessor creates a new score submission processor
func NewScoreProcessor(uowFactory UnitOfWorkFactory, cfg *config.Config) ScoreProcessor {
	return &scoreService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// DiamondsForScore converts raw points into diamonds, rounding down
func DiamondsForScore(points, conversionRate int64) int64 {
	if points <= 0 || conversionRate <= 0 {
		return 0
	}
	return points / conversionRate
}

// RecordScore appends the score record and credits its rewards in one transaction
func (s *scoreService) RecordScore(ctx context.Context, accountID int64, gameID string, rawPoints int64) (*models.ScoreResult, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, validation("game id is required")
	}
	if len(gameID) > maxGameIDLength {
		return nil, validation("game id must be at most %d characters", maxGameIDLength)
	}

	points := rawPoints
	if points < 0 {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"gameID":    gameID,
			"rawPoints": rawPoints,
		}).Warn("Negative score clamped to zero")
		points = 0
	}

	diamonds := DiamondsForScore(points, s.config.DiamondConversionRate)

	var result *models.ScoreResult
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		record := &models.ScoreRecord{
			AccountID: accountID,
			GameID:    gameID,
			Points:    points,
		}
		if err := uow.ScoreRecordRepository().Create(ctx, record); err != nil {
			return err
		}

		metadata := map[string]any{
			"game_id":         gameID,
			"score_record_id": record.ID,
			"points":          points,
		}
		delta := models.BalanceDelta{Diamonds: diamonds, XP: points}
		account, err := applyBalanceDelta(ctx, uow, accountID, delta, s.config.XPPerLevel, models.TransactionTypeScoreReward, metadata)
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.ScoreRecordedEvent{
			AccountID:       accountID,
			ScoreRecordID:   record.ID,
			GameID:          gameID,
			Points:          points,
			DiamondsAwarded: diamonds,
			NewXP:           account.XP,
		})

		result = &models.ScoreResult{
			ScoreRecordID:   record.ID,
			DiamondsAwarded: diamonds,
			NewXP:           account.XP,
			NewLevel:        account.Level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":       accountID,
		"gameID":          gameID,
		"points":          points,
		"diamondsAwarded": result.DiamondsAwarded,
		"newXP":           result.NewXP,
	}).Info("Score recorded")

	return result, nil
}

// ScoreHistory returns up to limit recent score records, newest first
func (s *scoreService) ScoreHistory(ctx context.Context, accountID int64, limit int) ([]*models.ScoreRecord, error) {
	limit = historyLimit(limit)

	var records []*models.ScoreRecord
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		var err error
		records, err = uow.ScoreRecordRepository().GetByAccount(ctx, accountID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
