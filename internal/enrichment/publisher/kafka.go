// Package publisher streams enrichment audit logs to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"mutafriches/internal/enrichment/audit"
)

// Producer is satisfied by *kgo.Client.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka is an audit.Repository writing one record per log, keyed by parcel
// identifier so the logs of a parcel stay ordered within a partition.
type Kafka struct {
	producer Producer
	topic    string
}

func NewKafka(producer Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Save(ctx context.Context, l audit.Log) error {
	value, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode enrichment log: %w", err)
	}
	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(l.Identifier),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "log_id", Value: []byte(l.ID.String())},
			{Key: "status", Value: []byte(l.Status)},
		},
	}
	if err := k.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce enrichment log: %w", err)
	}
	return nil
}
