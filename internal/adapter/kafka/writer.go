package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/config"
	"github.com/couchcryptid/water-balance-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes balance records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	timeout time.Duration
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.KafkaTimeout,
	}
	return &Writer{writer: w, logger: logger, timeout: cfg.KafkaTimeout}
}

// LoadBatch serializes and publishes balance records in a single
// WriteMessages call. Records are keyed by catchment and period so that a
// catchment's records land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.BalanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d records to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("published balance records", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a BalanceRecord into a Kafka message.
func serializeToMessage(record domain.BalanceRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize balance record %s: %w", record.Key(), err)
	}
	return kafkago.Message{
		Key:   []byte(record.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "catchment_id", Value: []byte(record.CatchmentID)},
			{Key: "period_kind", Value: []byte(record.Period.Kind)},
			{Key: "run_id", Value: []byte(record.RunID)},
			{Key: "processed_at", Value: []byte(record.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
