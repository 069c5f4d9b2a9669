//go:build integration

package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"mutafriches/internal/enrichment/audit"
	"mutafriches/internal/enrichment/publisher"
	"mutafriches/internal/platform/config"
	"mutafriches/internal/platform/kafka"
	"mutafriches/pkg/testutil/containers"
)

type KafkaIntegrationSuite struct {
	suite.Suite
	cfg      config.KafkaConfig
	producer *kgo.Client
}

func TestKafkaIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaIntegrationSuite))
}

func (s *KafkaIntegrationSuite) SetupSuite() {
	broker := containers.GetManager().GetRedpanda(s.T())
	s.cfg = config.KafkaConfig{
		Brokers:           []string{broker.Broker},
		AuditTopic:        "mutafriches.enrichment-logs.it",
		Partitions:        1,
		ReplicationFactor: 1,
	}

	client, err := kafka.NewClient(s.cfg)
	s.Require().NoError(err)
	s.producer = client

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(kafka.EnsureTopic(ctx, client, s.cfg.AuditTopic, s.cfg.Partitions, s.cfg.ReplicationFactor))
	// A second call must tolerate the existing topic.
	s.Require().NoError(kafka.EnsureTopic(ctx, client, s.cfg.AuditTopic, s.cfg.Partitions, s.cfg.ReplicationFactor))
}

func (s *KafkaIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaIntegrationSuite) TestPublishedLogIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := audit.Log{
		ID:          uuid.New(),
		Identifier:  "25056000HZ0346",
		Status:      "PARTIAL",
		SourcesUsed: []string{"cadastre", "bdnb"},
		DurationMs:  87,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(publisher.NewKafka(s.producer, s.cfg.AuditTopic).Save(ctx, log))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.cfg.Brokers...),
		kgo.ConsumeTopics(s.cfg.AuditTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var got *kgo.Record
	for got == nil {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "no record consumed before timeout")
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == log.Identifier {
				got = r
			}
		})
	}

	var decoded audit.Log
	s.Require().NoError(json.Unmarshal(got.Value, &decoded))
	s.Equal(log.ID, decoded.ID)
	s.Equal(log.SourcesUsed, decoded.SourcesUsed)
	s.Equal(log.CreatedAt, decoded.CreatedAt.UTC())

	headers := map[string]string{}
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal(log.ID.String(), headers["log_id"])
	s.Equal("PARTIAL", headers["status"])
}
