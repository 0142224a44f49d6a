package clients

import "time"

const (
	MAX_RETRIES     = 3
	RETRY_DELAY     = 250 * time.Millisecond
	HTTP_TIMEOUT    = 60 * time.Second
	USER_AGENT      = "mindnest-server/1.0 (+https://github.com/spacesedan/mindnest)"
	VALKEY_DIAL_TTL = 3 * time.Second
)
