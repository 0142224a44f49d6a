package kafka_client

import "time"

const (
	KAFKA_TOPIC_JOURNAL_REQUESTS = "journal-requests" // entries submitted with async=true
	KAFKA_TOPIC_JOURNAL_ANALYZED = "journal-analyzed" // one event per stored entry
)

const (
	BATCH_SIZE    = 25
	BATCH_TIMEOUT = 5 * time.Second
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
	POLL_TIMEOUT  = 500 * time.Millisecond
)
