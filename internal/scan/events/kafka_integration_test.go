//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"twigascan/internal/platform/config"
	"twigascan/internal/platform/kafka"
	"twigascan/internal/scan/events"
	"twigascan/internal/scan/payload"
	"twigascan/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	brokers []string
	client  *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	rp := containers.GetManager().GetRedpanda(s.T())
	s.brokers = rp.Brokers

	client, err := kafka.NewClient(config.KafkaConfig{Brokers: s.brokers})
	s.Require().NoError(err)
	s.client = client
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "scans-" + uuid.NewString()[:8]
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, topic, 1, 1))
	// second call tolerates an existing topic
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, topic, 1, 1))

	pub := events.NewKafkaPublisher(s.client, topic)
	sent := events.ScanRecorded{
		ScanID:               uuid.New(),
		Timestamp:            time.Now().UTC().Truncate(time.Millisecond),
		ContentType:          payload.ContentTypeBIP21,
		AuthStatus:           payload.AuthStatusSuspicious,
		NormalizedIdentifier: "1a1zp1ep5qgefi2dmptftl5slmv7divfna",
		IsDuplicate:          true,
		UsageCount:           2,
		Warnings:             []string{"Known provider: Strike"},
	}
	s.Require().NoError(pub.PublishScan(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)

	var got events.ScanRecorded
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(sent.ScanID, got.ScanID)
	s.Equal(sent.NormalizedIdentifier, string(records[0].Key))
	s.True(got.IsDuplicate)
}
