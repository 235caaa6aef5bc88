// Package kafka publishes run-completion events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/covid-data-etl/internal/config"
	"github.com/couchcryptid/covid-data-etl/internal/domain"
)

// Notifier produces run summaries to the notification topic.
// It implements pipeline.RunNotifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaNotifyTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// NotifyRunComplete serializes and publishes one run summary.
func (n *Notifier) NotifyRunComplete(ctx context.Context, summary domain.RunSummary) error {
	msg, err := serializeSummary(summary)
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	n.logger.Info("published run summary", "topic", n.writer.Topic, "latest_date", summary.LatestDate)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeSummary marshals a RunSummary into a Kafka message. The key
// is the latest feed date, so compacted topics retain one event per
// data day.
func serializeSummary(summary domain.RunSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.LatestDate),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "latest_date", Value: []byte(summary.LatestDate)},
			{Key: "completed_at", Value: []byte(summary.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
