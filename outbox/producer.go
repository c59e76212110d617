package outbox

import (
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// NewProducer creates a synchronous Kafka producer that waits for every in-sync replica
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_1_0_0

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", brokers).Info("Kafka producer created")
	return producer, nil
}
