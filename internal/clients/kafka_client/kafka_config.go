package kafka_client

import (
	"os"
	"strings"
)

const (
	CLIENT_SERVER   = "server"
	CLIENT_CONSUMER = "consumer"
)

type KafkaConfig struct {
	Broker          string
	GroupID         string
	Topic           string
	TransactionalID string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetKafkaConfig reads the broker settings for the named client. Each
// client gets its own transactional id, derived from the prefix, the client
// name and the host, so the server and consumer never fence each other.
func GetKafkaConfig(client string) KafkaConfig {
	host, _ := os.Hostname()
	return KafkaConfig{
		Broker:          getEnv("KAFKA_BROKER", "localhost:29092"),
		GroupID:         getEnv("KAFKA_CONSUMER_GROUP_ID", "mindnest-consumer-group"),
		Topic:           getEnv("KAFKA_CONSUMER_TOPIC", KAFKA_TOPIC_JOURNAL_REQUESTS),
		TransactionalID: TransactionalID(getEnv("KAFKA_TRANSACTIONAL_ID_PREFIX", "mindnest"), client, host),
	}
}

// TransactionalID joins the non-empty parts with dashes.
func TransactionalID(prefix, client, host string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, client, host} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
