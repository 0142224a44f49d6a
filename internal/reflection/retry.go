package reflection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

const (
	MaxAttempts    = 4
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 8 * time.Second
	MaxJitter      = 500 * time.Millisecond
)

// StatusError carries the HTTP status of a failed provider call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

var statusPattern = regexp.MustCompile(`\b(429|5\d\d)\b`)

// IsTransient reports whether a provider error is worth retrying: rate
// limiting and server-side failures. Context errors never are.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == 429 || (statusErr.StatusCode >= 500 && statusErr.StatusCode < 600)
	}

	msg := strings.ToLower(err.Error())
	return statusPattern.MatchString(msg) ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "server error") ||
		strings.Contains(msg, "unavailable")
}

// Backoff returns the wait before retry number attempt (0-based).
func Backoff(attempt int, jitter time.Duration) time.Duration {
	return min(InitialBackoff<<attempt+jitter, MaxBackoff)
}

type retryingReflector struct {
	next     Reflector
	attempts int
	jitter   func() time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps r so transient failures are retried with exponential
// backoff. Non-transient failures return immediately.
func WithRetry(r Reflector) Reflector {
	return &retryingReflector{
		next:     r,
		attempts: MaxAttempts,
		jitter:   func() time.Duration { return rand.N(MaxJitter) },
		sleep:    sleepContext,
	}
}

func (r *retryingReflector) Name() string {
	return r.next.Name()
}

func (r *retryingReflector) Ping(ctx context.Context) error {
	if hc, ok := r.next.(HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

func (r *retryingReflector) Reflect(ctx context.Context, req Request) (Result, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		res, err := r.next.Reflect(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == r.attempts-1 {
			break
		}

		wait := Backoff(attempt, r.jitter())
		slog.Warn("[Reflection] Transient provider error, will retry",
			slog.String("provider", r.next.Name()),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()))

		if err := r.sleep(ctx, wait); err != nil {
			return Result{}, err
		}
	}

	return Result{}, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
