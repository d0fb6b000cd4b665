package publish

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"camtrap/internal/config"
	"camtrap/internal/model"
)

// Kafka emits one JSON message per event summary, keyed by event ID so
// re-published events land in the same partition.
type Kafka struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafka(cfg config.PublishConfig, logger *slog.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &Kafka{writer: w, logger: logger}
}

func (k *Kafka) PublishSummaries(ctx context.Context, summaries []model.EventSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(summaries))
	for _, s := range summaries {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(s.EventID), Value: data})
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		if k.logger != nil {
			k.logger.Warn("kafka publish failed", "topic", k.writer.Topic, "err", err)
		}
		return err
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
