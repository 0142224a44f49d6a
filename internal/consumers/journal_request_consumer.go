package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/mindnest/internal/clients/kafka_client"
	kafkautils "github.com/spacesedan/mindnest/internal/clients/kafka_client/utils"
	"github.com/spacesedan/mindnest/internal/journal"
	"github.com/spacesedan/mindnest/internal/models"
	"github.com/spacesedan/mindnest/internal/utils"
)

const (
	storeAttempts   = 3
	shutdownTimeout = 10 * time.Second
)

type MessageSource interface {
	Next() (*kafka.Message, error)
}

type OffsetCommitter interface {
	CommitOffsets(offsets []kafka.TopicPartition) error
}

type EntryWriter interface {
	BatchPutEntries(ctx context.Context, entries []models.JournalEntry) error
}

type RequestProcessor interface {
	ProcessRequest(ctx context.Context, req models.JournalRequest) (models.JournalEntry, bool, error)
	CompleteBatch(ctx context.Context, entries []models.JournalEntry, crisis map[string]bool)
}

type pendingEntry struct {
	entry  models.JournalEntry
	crisis bool
}

// JournalRequestConsumer analyzes queued journal requests and stores them in
// batches. Offsets are committed only after the batch holding them is stored.
type JournalRequestConsumer struct {
	source     MessageSource
	committer  OffsetCommitter
	store      EntryWriter
	processor  RequestProcessor
	buffer     *utils.BatchBuffer[pendingEntry]
	offsets    *kafkautils.OffsetTracker
	batchSize  int
	flushEvery time.Duration
	retryDelay time.Duration
	pollDelay  time.Duration
}

type ConsumerOption func(*JournalRequestConsumer)

func WithBatchSize(n int) ConsumerOption {
	return func(c *JournalRequestConsumer) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) ConsumerOption {
	return func(c *JournalRequestConsumer) {
		if d > 0 {
			c.flushEvery = d
		}
	}
}

func WithStoreRetryDelay(d time.Duration) ConsumerOption {
	return func(c *JournalRequestConsumer) { c.retryDelay = d }
}

// WithPollErrorDelay sets how long Run waits after the source fails before
// polling again.
func WithPollErrorDelay(d time.Duration) ConsumerOption {
	return func(c *JournalRequestConsumer) { c.pollDelay = d }
}

func NewJournalRequestConsumer(source MessageSource, committer OffsetCommitter, store EntryWriter, processor RequestProcessor, opts ...ConsumerOption) *JournalRequestConsumer {
	c := &JournalRequestConsumer{
		source:     source,
		committer:  committer,
		store:      store,
		processor:  processor,
		offsets:    kafkautils.NewOffsetTracker(),
		batchSize:  kafka_client.BATCH_SIZE,
		flushEvery: kafka_client.BATCH_TIMEOUT,
		retryDelay: kafka_client.RETRY_DELAY,
		pollDelay:  kafka_client.RETRY_DELAY,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.buffer = utils.NewBatchBuffer[pendingEntry](c.batchSize)
	return c
}

// StartJournalRequestConsumer adapts the consumer to the Kafka consumer factory.
func StartJournalRequestConsumer(store EntryWriter, processor RequestProcessor, opts ...ConsumerOption) kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) error {
		iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
		// commits must still succeed during the shutdown flush
		committer := kafka_client.NewCommitHandler(context.WithoutCancel(ctx), consumer)
		return NewJournalRequestConsumer(iterator, committer, store, processor, opts...).Run(ctx)
	}
}

// Run consumes until ctx is cancelled, then flushes what is buffered. It
// returns early if a batch cannot be stored so the uncommitted messages are
// redelivered on restart.
func (c *JournalRequestConsumer) Run(ctx context.Context) error {
	slog.Info("[JournalRequestConsumer] Listening for messages...",
		slog.Int("batch_size", c.batchSize),
		slog.Duration("flush_interval", c.flushEvery))

	ticker := time.NewTicker(c.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[JournalRequestConsumer] Stopping consumer...")
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return c.flush(flushCtx)
		case <-ticker.C:
			if err := c.flush(ctx); err != nil {
				return err
			}
			continue
		default:
		}

		msg, err := c.source.Next()
		if err != nil {
			if ctx.Err() == nil {
				kafkautils.HandleConsumerError(err)
				select {
				case <-ctx.Done():
				case <-time.After(c.pollDelay):
				}
			}
			continue
		}
		if msg == nil {
			continue
		}

		if c.handle(ctx, msg) >= c.batchSize {
			if err := c.flush(ctx); err != nil {
				return err
			}
		}
	}
}

// handle buffers the analyzed entry and returns the buffered count. Messages
// that cannot be processed are still tracked so their offsets get committed.
func (c *JournalRequestConsumer) handle(ctx context.Context, msg *kafka.Message) int {
	defer c.offsets.Track(msg)

	req, err := kafkautils.DecodeJSON[models.JournalRequest](msg.Value)
	if err != nil {
		kafkautils.HandleConsumerError(err)
		return c.buffer.Size()
	}

	entry, crisis, err := c.processor.ProcessRequest(ctx, req)
	switch {
	case errors.Is(err, journal.ErrAlreadyProcessed):
		slog.Info("[JournalRequestConsumer] Skipping processed request",
			slog.String("request_id", req.RequestID))
		return c.buffer.Size()
	case err != nil:
		slog.Warn("[JournalRequestConsumer] Dropping invalid request",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
		return c.buffer.Size()
	}

	return c.buffer.Add(pendingEntry{entry: entry, crisis: crisis})
}

func (c *JournalRequestConsumer) flush(ctx context.Context) error {
	batch := c.buffer.GetAndClear()

	if len(batch) > 0 {
		entries := make([]models.JournalEntry, 0, len(batch))
		crisis := make(map[string]bool)
		for _, p := range batch {
			entries = append(entries, p.entry)
			if p.crisis {
				crisis[p.entry.EntryID] = true
			}
		}

		if err := c.storeBatch(ctx, entries); err != nil {
			return err
		}
		c.processor.CompleteBatch(ctx, entries, crisis)

		slog.Info("[JournalRequestConsumer] Stored batch",
			slog.Int("entries", len(entries)),
			slog.Int("crisis_alerts", len(crisis)))
	}

	if err := c.committer.CommitOffsets(c.offsets.Commitable()); err != nil {
		slog.Warn("[JournalRequestConsumer] Failed to commit offsets",
			slog.String("error", err.Error()))
	}
	return nil
}

func (c *JournalRequestConsumer) storeBatch(ctx context.Context, entries []models.JournalEntry) error {
	var err error
	for i := 0; i < storeAttempts; i++ {
		if err = c.store.BatchPutEntries(ctx, entries); err == nil {
			return nil
		}
		slog.Error("[JournalRequestConsumer] Failed to write batch to DB",
			slog.String("error", err.Error()),
			slog.Int("attempt", i+1))

		select {
		case <-ctx.Done():
			return fmt.Errorf("[JournalRequestConsumer] store batch: %w", ctx.Err())
		case <-time.After(c.retryDelay):
		}
	}
	return fmt.Errorf("[JournalRequestConsumer] store batch after %d attempts: %w", storeAttempts, err)
}
