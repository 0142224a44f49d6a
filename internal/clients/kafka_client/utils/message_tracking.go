package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type partitionKey struct {
	topic     string
	partition int32
}

// OffsetTracker remembers the highest offset seen per partition since the
// last Reset.
type OffsetTracker struct {
	mu      sync.Mutex
	offsets map[partitionKey]kafka.Offset
}

func NewOffsetTracker() *OffsetTracker {
	return &OffsetTracker{offsets: make(map[partitionKey]kafka.Offset)}
}

func (t *OffsetTracker) Track(msg *kafka.Message) {
	if msg == nil || msg.TopicPartition.Topic == nil {
		return
	}
	key := partitionKey{topic: *msg.TopicPartition.Topic, partition: msg.TopicPartition.Partition}

	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.offsets[key]; !ok || msg.TopicPartition.Offset > cur {
		t.offsets[key] = msg.TopicPartition.Offset
	}
}

// Commitable returns the next offset to consume for every tracked partition
// and clears the tracker.
func (t *OffsetTracker) Commitable() []kafka.TopicPartition {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.offsets) == 0 {
		return nil
	}

	out := make([]kafka.TopicPartition, 0, len(t.offsets))
	for key, off := range t.offsets {
		topic := key.topic
		out = append(out, kafka.TopicPartition{
			Topic:     &topic,
			Partition: key.partition,
			Offset:    off + 1,
		})
	}
	t.offsets = make(map[partitionKey]kafka.Offset)
	return out
}

func (t *OffsetTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.offsets)
}
