// Command etl performs one extract run: fetch the case and testing
// feeds, reconcile them, derive day-over-day deltas, and write the
// dashboard CSV extracts. Exits non-zero on any failure; the external
// scheduler owns retries.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/couchcryptid/covid-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-data-etl/internal/config"
	"github.com/couchcryptid/covid-data-etl/internal/extract"
	"github.com/couchcryptid/covid-data-etl/internal/feed"
	"github.com/couchcryptid/covid-data-etl/internal/observability"
	"github.com/couchcryptid/covid-data-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("extract run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	client := feed.NewClient(cfg.HTTPTimeout, logger)
	source := feed.NewSource(client, feed.URLs{
		NationalCases:   cfg.NationalCasesURL,
		StateCases:      cfg.StateCasesURL,
		CountyCases:     cfg.CountyCasesURL,
		NationalTesting: cfg.NationalTestingURL,
		StateTesting:    cfg.StateTestingURL,
	})
	writer := extract.NewWriter(cfg.OutputDir, logger)

	// Run notification is feature-flagged via KAFKA_NOTIFY_TOPIC.
	var notifier pipeline.RunNotifier
	if cfg.NotifyEnabled {
		n := kafkaadapter.NewNotifier(cfg, logger)
		defer func() {
			if err := n.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = n
		logger.Info("run notification enabled", "topic", cfg.KafkaNotifyTopic)
	}

	p := pipeline.New(source, writer, notifier, logger, metrics, clockwork.NewRealClock(), cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		return err
	}

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cfg.PushgatewayURL); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}
	return nil
}
