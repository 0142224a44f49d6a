package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/mindnest/internal/reflection"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_TIMEOUT  = 5 * time.Second
)

// MonitorReflectorHealth probes checker every interval and stores the outcome
// in healthy. It checks once immediately and only logs transitions.
func MonitorReflectorHealth(ctx context.Context, name string, checker reflection.HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}

	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
		defer cancel()

		err := checker.Ping(pctx)
		if ctx.Err() != nil {
			return
		}

		isHealthy := err == nil
		if was := healthy.Swap(isHealthy); was != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Reflector recovered", slog.String("provider", name))
			} else {
				slog.Warn("[HealthCheck] Reflector is unhealthy",
					slog.String("provider", name),
					slog.String("error", err.Error()))
			}
		}
	}

	probe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
