package service

import (
	"context"
	"strings"

	"banked/config"
	"banked/models"

	log "github.com/sirupsen/logrus"
)

type questionSelector struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewQuestionSelector creates a new question selector
func NewQuestionSelector(uowFactory UnitOfWorkFactory, cfg *config.Config) QuestionSelector {
	return &questionSelector{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// FetchBatch draws up to batchSize questions uniformly at random without replacement,
// skipping every question the account has already answered
func (s *questionSelector) FetchBatch(ctx context.Context, accountID int64, category string, batchSize int) ([]*models.Question, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, validation("category is required")
	}
	if batchSize <= 0 {
		batchSize = s.config.QuestionBatchSize
	}

	var questions []*models.Question
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		var err error
		questions, err = uow.QuestionRepository().GetRandomUnanswered(ctx, accountID, category, batchSize)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return newError(CodeEmptyPool, "no unanswered questions left in category %q for account %d", category, accountID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"category":  category,
		"requested": batchSize,
		"returned":  len(questions),
	}).Debug("Fetched question batch")

	return questions, nil
}

// ExtraQuestion charges cost diamonds, then picks one question from the whole category.
// Already answered questions may come back on this path.
// An empty category rolls the charge back.
func (s *questionSelector) ExtraQuestion(ctx context.Context, accountID int64, category string, cost int64) (*ExtraQuestionResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, validation("category is required")
	}
	if cost <= 0 {
		cost = s.config.ExtraQuestionCost
	}

	var result *ExtraQuestionResult
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		metadata := map[string]any{"category": category}
		account, err := spendDiamonds(ctx, uow, accountID, cost, models.TransactionTypeExtraQuestionSpend, metadata)
		if err != nil {
			return err
		}

		question, err := uow.QuestionRepository().GetRandom(ctx, category)
		if err != nil {
			return err
		}
		if question == nil {
			return newError(CodeEmptyPool, "category %q has no questions", category)
		}

		result = &ExtraQuestionResult{
			Question:          question,
			DiamondsRemaining: account.Diamonds,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":  accountID,
		"category":   category,
		"questionID": result.Question.ID,
		"cost":       cost,
	}).Info("Extra question purchased")

	return result, nil
}

// RegisterAnswer records the account's answer. A repeated answer leaves the first one in place
// and is reported through AnswerResult.Duplicate.
func (s *questionSelector) RegisterAnswer(ctx context.Context, accountID, questionID int64, wasCorrect bool) (*models.AnswerResult, error) {
	var result *models.AnswerResult
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if _, err := getAccount(ctx, uow, accountID); err != nil {
			return err
		}

		question, err := uow.QuestionRepository().GetByID(ctx, questionID)
		if err != nil {
			return err
		}
		if question == nil {
			return notFound("question %d not found", questionID)
		}

		answer := &models.AnsweredQuestion{
			AccountID:  accountID,
			QuestionID: questionID,
			WasCorrect: wasCorrect,
		}
		inserted, err := uow.AnsweredQuestionRepository().Record(ctx, answer)
		if err != nil {
			return err
		}
		if inserted {
			result = &models.AnswerResult{Answer: answer}
			return nil
		}

		existing, err := uow.AnsweredQuestionRepository().Get(ctx, accountID, questionID)
		if err != nil {
			return err
		}
		result = &models.AnswerResult{Answer: existing, Duplicate: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		log.WithFields(log.Fields{
			"accountID":  accountID,
			"questionID": questionID,
		}).Debug("Duplicate answer ignored")
	}

	return result, nil
}
