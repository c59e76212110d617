package outbox

import (
	"context"
	"fmt"
	"time"

	"banked/models"
	"banked/service"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const relayTimeout = time.Minute

// Recorder observes publish outcomes
type Recorder interface {
	RecordOutboxPublished(topic string)
	RecordOutboxFailure(topic string, final bool)
}

// Relay moves pending outbox messages to Kafka.
// A batch is leased in one short transaction, sent with no transaction open,
// and its outcomes are written in a second transaction. Leased rows are skipped
// by other relays until the lease lapses, so a crash between send and record
// leads to a redelivery rather than a lost message.
type Relay struct {
	uowFactory   service.UnitOfWorkFactory
	producer     sarama.SyncProducer
	batchSize    int
	maxRetries   int
	claimTimeout time.Duration
	recorder     Recorder
}

// NewRelay creates a relay. recorder may be nil.
func NewRelay(uowFactory service.UnitOfWorkFactory, producer sarama.SyncProducer, batchSize, maxRetries int, claimTimeout time.Duration, recorder Recorder) *Relay {
	return &Relay{
		uowFactory:   uowFactory,
		producer:     producer,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
		claimTimeout: claimTimeout,
		recorder:     recorder,
	}
}

// Run publishes one batch. It satisfies cron.Job.
func (r *Relay) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	sent, err := r.PublishPending(ctx)
	if err != nil {
		log.WithError(err).Error("Outbox relay run failed")
		return
	}
	if sent > 0 {
		log.WithField("sent", sent).Debug("Outbox relay run completed")
	}
}

type delivery struct {
	message   *models.OutboxMessage
	partition int32
	offset    int64
	err       error
}

// PublishPending sends up to one batch of pending messages and records each outcome.
// It returns the number of messages delivered.
func (r *Relay) PublishPending(ctx context.Context) (int, error) {
	messages, err := r.claim(ctx)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	deliveries := make([]delivery, 0, len(messages))
	for _, message := range messages {
		partition, offset, sendErr := r.producer.SendMessage(&sarama.ProducerMessage{
			Topic: message.Topic,
			Key:   sarama.StringEncoder(message.Key),
			Value: sarama.ByteEncoder(message.Payload),
		})
		deliveries = append(deliveries, delivery{message: message, partition: partition, offset: offset, err: sendErr})
	}

	return r.record(ctx, deliveries)
}

func (r *Relay) claim(ctx context.Context) ([]*models.OutboxMessage, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin outbox claim: %w", err)
	}
	defer uow.Rollback()

	messages, err := uow.OutboxRepository().ClaimPending(ctx, r.batchSize, r.claimTimeout)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit outbox claim: %w", err)
	}
	return messages, nil
}

func (r *Relay) record(ctx context.Context, deliveries []delivery) (int, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin outbox update: %w", err)
	}
	defer uow.Rollback()

	repo := uow.OutboxRepository()
	sent := 0
	for _, d := range deliveries {
		if err := r.apply(ctx, repo, d); err != nil {
			return 0, err
		}
		if d.err == nil {
			sent++
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit outbox update: %w", err)
	}

	if r.recorder != nil {
		for _, d := range deliveries {
			if d.err == nil {
				r.recorder.RecordOutboxPublished(d.message.Topic)
			} else {
				r.recorder.RecordOutboxFailure(d.message.Topic, r.isFinal(d.message))
			}
		}
	}
	return sent, nil
}

func (r *Relay) isFinal(message *models.OutboxMessage) bool {
	return message.RetryCount+1 >= r.maxRetries
}

func (r *Relay) apply(ctx context.Context, repo service.OutboxRepository, d delivery) error {
	logger := log.WithFields(log.Fields{
		"messageID": d.message.ID,
		"topic":     d.message.Topic,
		"key":       d.message.Key,
	})

	if d.err == nil {
		if err := repo.MarkAsSent(ctx, d.message.ID); err != nil {
			return err
		}
		logger.WithFields(log.Fields{
			"partition": d.partition,
			"offset":    d.offset,
		}).Info("Outbox message published")
		return nil
	}

	if r.isFinal(d.message) {
		if err := repo.MarkAsFailed(ctx, d.message.ID, d.err.Error()); err != nil {
			return err
		}
		logger.WithError(d.err).Error("Outbox message failed permanently")
		return nil
	}

	if err := repo.IncrementRetryCount(ctx, d.message.ID, d.err.Error()); err != nil {
		return err
	}
	logger.WithError(d.err).WithField("retryCount", d.message.RetryCount+1).Warn("Outbox message publish failed, will retry")
	return nil
}
