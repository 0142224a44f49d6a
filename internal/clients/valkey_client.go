package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PROCESSED_KEY   = "journal:processed_requests"
	VALKEY_MOOD_KEY_PREFIX = "mood:"
	MOOD_CACHE_TTL         = 5 * time.Minute
	PROCESSED_TTL_SECONDS  = 86400
)

var (
	valkeyInstance *ValkeyClient
	valkeyErr      error
	valkeyOnce     sync.Once
)

// ValkeyClient caches mood series and remembers which queued requests were
// already stored. valkey-go redials dropped connections itself, so the
// underlying client is never swapped and is safe for concurrent use.
type ValkeyClient struct {
	client valkey.Client
}

// NewValkeyClient wraps an already connected client.
func NewValkeyClient(client valkey.Client) *ValkeyClient {
	return &ValkeyClient{client: client}
}

func valkeyOptions(settings config.Settings) valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress:      []string{settings.ValkeyAddress},
		Password:         settings.ValkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if settings.ValkeyTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

func dialValkey(opts valkey.ClientOption) (valkey.Client, error) {
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), VALKEY_DIAL_TTL)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

// InitValkey connects once. Callers treat an error as "run without cache".
func InitValkey(settings config.Settings) (*ValkeyClient, error) {
	valkeyOnce.Do(func() {
		client, err := dialValkey(valkeyOptions(settings))
		if err != nil {
			valkeyErr = err
			return
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey",
			slog.String("address", settings.ValkeyAddress))
		valkeyInstance = NewValkeyClient(client)
	})
	return valkeyInstance, valkeyErr
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Close()
	}
}

func (vc *ValkeyClient) Close() {
	vc.client.Close()
}

func MoodKey(userID string) string {
	return VALKEY_MOOD_KEY_PREFIX + userID
}

// GetMoodData returns the cached series for userID. The bool is false on a
// cache miss.
func (vc *ValkeyClient) GetMoodData(ctx context.Context, userID string) ([]models.MoodPoint, bool, error) {
	res := vc.DoWithRetry(ctx, vc.client.B().Get().Key(MoodKey(userID)).Build(), MAX_RETRIES)
	raw, err := res.ToString()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] failed to read mood data: %w", err)
	}

	var points []models.MoodPoint
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] failed to decode mood data: %w", err)
	}
	return points, true, nil
}

func (vc *ValkeyClient) SetMoodData(ctx context.Context, userID string, points []models.MoodPoint) error {
	payload, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to encode mood data: %w", err)
	}

	cmd := vc.client.B().Set().Key(MoodKey(userID)).Value(string(payload)).ExSeconds(int64(MOOD_CACHE_TTL/time.Second)).Build()
	return vc.DoWithRetry(ctx, cmd, MAX_RETRIES).Error()
}

func (vc *ValkeyClient) InvalidateMoodData(ctx context.Context, userID string) error {
	return vc.DoWithRetry(ctx, vc.client.B().Del().Key(MoodKey(userID)).Build(), MAX_RETRIES).Error()
}

func (vc *ValkeyClient) MarkProcessed(ctx context.Context, requestID string) error {
	completed := []valkey.Completed{
		vc.client.B().Sadd().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(),
		vc.client.B().Expire().Key(VALKEY_PROCESSED_KEY).Seconds(PROCESSED_TTL_SECONDS).Build(),
	}

	for _, res := range vc.DoMultiWithRetry(ctx, completed, MAX_RETRIES) {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Marked request processed",
		slog.String("request_id", requestID))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, requestID string) (bool, error) {
	res := vc.DoWithRetry(ctx, vc.client.B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(), MAX_RETRIES)
	return res.AsBool()
}

// DoMultiWithRetry sends the commands as one pipeline, resending it when the
// connection fails. Commands are pinned so they survive the resend.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	pinned := make([]valkey.Completed, len(completed))
	for i, cmd := range completed {
		pinned[i] = cmd.Pin()
	}

	var results []valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		results = vc.client.DoMulti(ctx, pinned...)
		var failed error
		for _, r := range results {
			if err := r.Error(); err != nil && !valkey.IsValkeyNil(err) {
				failed = err
				break
			}
		}
		if !shouldRetry(ctx, failed) {
			break
		}

		slog.Warn("[ValkeyClient] Do Multi failed",
			slog.Int("attempt", i+1),
			slog.String("error", failed.Error()))
		if !sleepCtx(ctx, RETRY_DELAY) {
			break
		}
	}

	return results
}

// DoWithRetry sends one pinned command, resending it when the connection
// fails. Replies from the server, errors included, are returned as is.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	cmd := completed.Pin()

	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.client.Do(ctx, cmd)
		err := result.Error()
		if valkey.IsValkeyNil(err) || !shouldRetry(ctx, err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if !sleepCtx(ctx, RETRY_DELAY) {
			break
		}
	}

	return result
}

func shouldRetry(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	_, serverReply := valkey.IsValkeyErr(err)
	return !serverReply
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
