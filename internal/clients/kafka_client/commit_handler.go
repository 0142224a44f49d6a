package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type KafkaCommitHandler struct {
	consumer *kafka.Consumer
	ctx      context.Context
}

func NewCommitHandler(ctx context.Context, consumer *kafka.Consumer) *KafkaCommitHandler {
	return &KafkaCommitHandler{
		consumer: consumer,
		ctx:      ctx,
	}
}

// CommitOffsets commits positions that already point past the last stored
// message of each partition.
func (ch *KafkaCommitHandler) CommitOffsets(offsets []kafka.TopicPartition) error {
	if ch.consumer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}
	if len(offsets) == 0 {
		return nil
	}

	for i := 0; i < MAX_RETRIES; i++ {
		if err := ch.ctx.Err(); err != nil {
			slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit")
			return err
		}

		_, err := ch.consumer.CommitOffsets(offsets)
		if err == nil {
			slog.Info("[KafkaCommitHandler] Successfully committed offsets",
				slog.Int("partitions", len(offsets)))
			return nil
		}

		slog.Warn("[KafkaCommitHandler] Failed to commit offsets, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) && kafkaErr.Code() == kafka.ErrAllBrokersDown {
			slog.Error("[KafkaCommitHandler] All Kafka brokers are down. Aborting commit")
			return err
		}

		time.Sleep(RETRY_DELAY)
	}

	return fmt.Errorf("[KafkaCommitHandler] Failed to commit offsets after %d retries", MAX_RETRIES)
}
