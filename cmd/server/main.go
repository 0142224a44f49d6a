package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/api"
	"github.com/spacesedan/mindnest/internal/clients"
	"github.com/spacesedan/mindnest/internal/clients/kafka_client"
	"github.com/spacesedan/mindnest/internal/crisis"
	"github.com/spacesedan/mindnest/internal/db"
	"github.com/spacesedan/mindnest/internal/journal"
	"github.com/spacesedan/mindnest/internal/logging"
	"github.com/spacesedan/mindnest/internal/monitoring"
	"github.com/spacesedan/mindnest/internal/reflection"
	"github.com/spacesedan/mindnest/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadEnv(config.AppEnv())
	settings := config.Get()
	logging.InitLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings); err != nil {
		slog.Error("[Main] Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("[Main] Server stopped")
}

func run(ctx context.Context, settings config.Settings) error {
	store, err := newStore(ctx, settings)
	if err != nil {
		return err
	}

	opts := []journal.Option{
		journal.WithIntensityScorer(sentiment.NewVaderScorer()),
		journal.WithReflectionTimeout(settings.ReflectionTimeout),
	}

	if settings.ValkeyAddress != "" {
		vc, err := clients.InitValkey(settings)
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, running without mood cache",
				slog.String("error", err.Error()))
		} else {
			defer clients.CloseValkey()
			opts = append(opts, journal.WithMoodCache(vc), journal.WithRequestTracker(vc))
		}
	}

	if settings.KafkaEnabled {
		producer, err := kafka_client.NewProducer(kafka_client.GetKafkaConfig(kafka_client.CLIENT_SERVER))
		if err != nil {
			return err
		}
		defer producer.Close()
		opts = append(opts, journal.WithPublisher(kafka_client.NewJournalPublisher(producer)))
	}

	g, gctx := errgroup.WithContext(ctx)

	reflector, err := clients.NewReflector(ctx, settings)
	if err != nil {
		slog.Warn("[Main] Reflection provider unavailable, using heuristic only",
			slog.String("provider", settings.ReflectionProvider),
			slog.String("error", err.Error()))
	}

	var healthy *atomic.Bool
	if reflector != nil {
		healthy = &atomic.Bool{}
		healthy.Store(true)
		reflector = reflection.WithRetry(reflector)
		opts = append(opts, journal.WithReflector(reflector, healthy))

		if checker, ok := reflector.(reflection.HealthChecker); ok {
			g.Go(func() error {
				monitoring.MonitorReflectorHealth(gctx, reflector.Name(), checker, healthy, monitoring.HEALTHCHECK_INTERVAL)
				return nil
			})
		}
	}

	catalog, err := crisis.Load()
	if err != nil {
		return err
	}

	service := journal.NewService(store, opts...)
	srv := &http.Server{
		Addr: settings.HTTPAddr,
		Handler: api.NewRouter(api.Dependencies{
			Journal:          service,
			Crisis:           catalog,
			Google:           settings.Google,
			ReflectorHealthy: healthy,
			ProxySecret:      settings.ProxySecret,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("[Main] HTTP server listening",
			slog.String("addr", settings.HTTPAddr),
			slog.String("reflector", service.ReflectorName()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("[Main] http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("[Main] Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newStore(ctx context.Context, settings config.Settings) (journal.Store, error) {
	switch settings.JournalStore {
	case config.StoreMemory:
		slog.Warn("[Main] Using in-memory journal store; entries are lost on restart")
		return db.NewMemoryJournalStore(), nil
	case config.StoreDynamoDB:
		client, err := clients.GetDynamoDBClient(ctx, settings)
		if err != nil {
			return nil, err
		}
		return db.NewJournalStore(client), nil
	default:
		return nil, fmt.Errorf("[Main] unknown JOURNAL_STORE %q", settings.JournalStore)
	}
}
