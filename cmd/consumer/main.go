package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/clients"
	"github.com/spacesedan/mindnest/internal/clients/kafka_client"
	"github.com/spacesedan/mindnest/internal/consumers"
	"github.com/spacesedan/mindnest/internal/db"
	"github.com/spacesedan/mindnest/internal/journal"
	"github.com/spacesedan/mindnest/internal/logging"
	"github.com/spacesedan/mindnest/internal/reflection"
	"github.com/spacesedan/mindnest/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.LoadEnv(config.AppEnv())
	settings := config.Get()
	logging.InitLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dynamo, err := clients.GetDynamoDBClient(ctx, settings)
	if err != nil {
		slog.Error("[Main] DynamoDB unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store := db.NewJournalStore(dynamo)

	cfg := kafka_client.GetKafkaConfig(kafka_client.CLIENT_CONSUMER)
	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(cfg)
		if err == nil {
			break
		}
		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	opts := []journal.Option{
		journal.WithPublisher(kafka_client.NewJournalPublisher(producer)),
		journal.WithIntensityScorer(sentiment.NewVaderScorer()),
		journal.WithReflectionTimeout(settings.ReflectionTimeout),
	}

	if settings.ValkeyAddress != "" {
		if vc, err := clients.InitValkey(settings); err == nil {
			defer clients.CloseValkey()
			opts = append(opts, journal.WithMoodCache(vc), journal.WithRequestTracker(vc))
		} else {
			slog.Warn("[Main] Valkey unavailable, duplicate requests will not be detected",
				slog.String("error", err.Error()))
		}
	}

	reflector, err := clients.NewReflector(ctx, settings)
	if err != nil {
		slog.Warn("[Main] Reflection provider unavailable, using heuristic only",
			slog.String("error", err.Error()))
	} else if reflector != nil {
		opts = append(opts, journal.WithReflector(reflection.WithRetry(reflector), nil))
	}

	service := journal.NewService(store, opts...)
	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_JOURNAL_REQUESTS,
		consumers.StartJournalRequestConsumer(store, service))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return kafka_client.StartConsumer(gctx, cfg)
	})

	if err := g.Wait(); err != nil {
		slog.Error("[Main] Consumer stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("[Main] Consumer stopped")
}
