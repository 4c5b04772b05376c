package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/forecast-summary-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-summary-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-summary-service/internal/config"
	"github.com/couchcryptid/forecast-summary-service/internal/domain"
	"github.com/couchcryptid/forecast-summary-service/internal/forecast"
	"github.com/couchcryptid/forecast-summary-service/internal/observability"
	"github.com/couchcryptid/forecast-summary-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	opts := forecast.Options{
		Strategy: cfg.SampleStrategy,
		Metrics:  metrics,
		Logger:   logger,
	}

	// Sample event publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		queue     *pipeline.Queue
		publisher *pipeline.Pipeline
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		queue = pipeline.NewQueue(cfg.PublishQueueSize, cfg.BatchFlushInterval, metrics)
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = pipeline.New(queue, pipeline.NewTransformer(), writer, logger, metrics, cfg.BatchSize)

		opts.Publisher = queue
		opts.Dependencies = append(opts.Dependencies, publisher)
		logger.Info("sample event publishing enabled", "topic", cfg.KafkaTopic, "queue_size", cfg.PublishQueueSize)
	} else {
		logger.Info("sample event publishing disabled")
	}

	svc := forecast.New(domain.DefaultSummaries, opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	publisherDone := make(chan struct{})
	if publisher != nil {
		go func() {
			defer close(publisherDone)
			if err := publisher.Run(ctx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	} else {
		close(publisherDone)
	}

	logger.Info("forecast service ready", "strategy", cfg.SampleStrategy, "catalog_size", svc.DefaultCount())

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	<-publisherDone
	if publisher != nil {
		logger.Info("flushing sample events", "queued", queue.Len())
		if err := publisher.Flush(shutdownCtx); err != nil {
			logger.Error("publisher flush error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
