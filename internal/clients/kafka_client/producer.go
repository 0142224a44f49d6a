package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/mindnest/internal/clients/kafka_client/utils"
	"github.com/spacesedan/mindnest/internal/models"
)

// Producer publishes each message in its own transaction. Transactions are
// per producer, so Publish calls are serialized.
type Producer struct {
	producer *kafka.Producer
	mu       sync.Mutex
}

func NewProducer(cfg KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(producerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(context.Background()); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p}, nil
}

// producerConfig builds the librdkafka settings. Delivery is confirmed by
// CommitTransaction, so per-message reports are turned off.
func producerConfig(cfg KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
		"go.delivery.reports":                   false,
	}
}

func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

func (p *Producer) abort(ctx context.Context, cause error) error {
	if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
		return errors.Join(cause, fmt.Errorf("[KafkaClient] failed to abort transaction: %w", abortErr))
	}
	return cause
}

// Publish writes value to topic under key inside a single transaction.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	if p == nil || p.producer == nil {
		return errors.New("[KafkaClient] producer has not been initialized")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}

	var err error
	for i := 0; i < 3; i++ {
		if err = p.producer.Produce(msg, nil); err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return p.abort(ctx, fmt.Errorf("[KafkaClient] failed to produce message: %w", err))
	}

	for i := 0; i < 3; i++ {
		if err = p.producer.CommitTransaction(ctx); err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return p.abort(ctx, fmt.Errorf("[KafkaClient] failed to commit transaction after 3 retries: %w", err))
	}

	slog.Debug("[KafkaClient] Published message transactionally",
		slog.String("topic", topic),
		slog.String("key", key))
	return nil
}

// JournalPublisher routes journal payloads to their topics.
type JournalPublisher struct {
	producer *Producer
}

func NewJournalPublisher(p *Producer) *JournalPublisher {
	return &JournalPublisher{producer: p}
}

func (jp *JournalPublisher) PublishRequest(ctx context.Context, req models.JournalRequest) error {
	data, err := utils.SerializeToJSON(req)
	if err != nil {
		return err
	}
	return jp.producer.Publish(ctx, KAFKA_TOPIC_JOURNAL_REQUESTS, req.UserID, data)
}

func (jp *JournalPublisher) PublishAnalyzed(ctx context.Context, event models.JournalAnalyzedEvent) error {
	data, err := utils.SerializeToJSON(event)
	if err != nil {
		return err
	}
	return jp.producer.Publish(ctx, KAFKA_TOPIC_JOURNAL_ANALYZED, event.UserID, data)
}
