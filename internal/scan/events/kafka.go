package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"twigascan/internal/scan/metrics"
	"twigascan/pkg/platform/circuit"
	"twigascan/pkg/platform/sentinel"
)

// ErrBrokerUnavailable is returned while the breaker is open.
var ErrBrokerUnavailable = fmt.Errorf("event broker: %w", sentinel.ErrUnavailable)

// Producer is the franz-go client surface the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher writes scan events to one topic, keyed by identifier.
type KafkaPublisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type KafkaOption func(*KafkaPublisher)

func WithBreaker(b *circuit.Breaker) KafkaOption {
	return func(p *KafkaPublisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

func WithMetrics(m *metrics.Metrics) KafkaOption {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func WithLogger(l *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewKafkaPublisher(producer Producer, topic string, opts ...KafkaOption) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("kafka-" + topic),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *KafkaPublisher) PublishScan(ctx context.Context, e ScanRecorded) error {
	if !p.breaker.Allow() {
		p.metrics.IncrementEvent("skipped")
		return ErrBrokerUnavailable
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", TypeScanRecorded, err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.Key()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(TypeScanRecorded)},
			{Key: "scan_id", Value: []byte(e.ScanID.String())},
		},
	}

	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.metrics.IncrementEvent("failed")
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "event publishing suspended",
				"topic", p.topic,
				"error", err,
			)
		}
		return fmt.Errorf("publish %s event: %w", TypeScanRecorded, err)
	}

	p.metrics.IncrementEvent("published")
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "event publishing resumed", "topic", p.topic)
	}
	return nil
}
