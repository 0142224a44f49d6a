package utils

import (
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(topic string, partition int32, offset kafka.Offset) *kafka.Message {
	return &kafka.Message{TopicPartition: kafka.TopicPartition{
		Topic:     &topic,
		Partition: partition,
		Offset:    offset,
	}}
}

func TestOffsetTracker_KeepsHighestPerPartition(t *testing.T) {
	tracker := NewOffsetTracker()
	tracker.Track(message("journal-requests", 0, 4))
	tracker.Track(message("journal-requests", 0, 9))
	tracker.Track(message("journal-requests", 0, 7))
	tracker.Track(message("journal-requests", 1, 2))
	tracker.Track(nil)

	require.Equal(t, 2, tracker.Len())

	got := map[int32]kafka.Offset{}
	for _, tp := range tracker.Commitable() {
		assert.Equal(t, "journal-requests", *tp.Topic)
		got[tp.Partition] = tp.Offset
	}
	assert.Equal(t, map[int32]kafka.Offset{0: 10, 1: 3}, got)

	assert.Zero(t, tracker.Len())
	assert.Nil(t, tracker.Commitable())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Text string `json:"text"`
	}

	v, err := DecodeJSON[payload]([]byte(`{"text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", v.Text)

	_, err = DecodeJSON[payload]([]byte(`{`))
	assert.Error(t, err)
}
