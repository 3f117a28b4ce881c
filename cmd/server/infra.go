package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"twigascan/internal/platform/config"
	"twigascan/internal/platform/kafka"
	"twigascan/internal/platform/postgres"
	"twigascan/internal/platform/redis"
	"twigascan/internal/scan/events"
	"twigascan/internal/scan/history"
	scanmetrics "twigascan/internal/scan/metrics"
	"twigascan/internal/scan/providers"
	"twigascan/internal/scan/service"
	"twigascan/internal/scan/verify"
)

const (
	scanTopicPartitions  = 3
	scanTopicReplication = 1

	// lockLeaseMargin covers the store append and release after the scan
	// deadline fires.
	lockLeaseMargin = 10 * time.Second
)

// infra holds the backends selected by configuration. Every backend is
// optional; missing ones fall back to in-process implementations.
type infra struct {
	registry  *providers.Registry
	verifier  *verify.Orchestrator
	store     service.Store
	locker    service.Locker
	publisher service.Publisher

	storeKind     string
	lockerKind    string
	publisherKind string

	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger, m *scanmetrics.Metrics) (*infra, error) {
	in := &infra{}

	registry, err := loadRegistry(cfg.ProviderRegistry)
	if err != nil {
		return nil, err
	}
	in.registry = registry

	if in.db, err = postgres.Open(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if in.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		in.Close()
		return nil, err
	}
	if in.kafka, err = kafka.NewClient(cfg.Kafka); err != nil {
		in.Close()
		return nil, err
	}

	if err := in.wireHistory(ctx, cfg.ScanTimeout, log); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.wireEvents(ctx, cfg.Kafka, log, m); err != nil {
		in.Close()
		return nil, err
	}

	var domains verify.DomainChecker = verify.NewNetDomainChecker(
		verify.WithCheckTimeout(cfg.DomainCheckTimeout),
		verify.WithCheckerMetrics(m),
	)
	if in.redis != nil {
		domains = verify.NewCachedDomainChecker(domains, in.redis.Client,
			verify.WithCacheTTL(cfg.DomainCacheTTL),
			verify.WithCacheMetrics(m),
			verify.WithCacheLogger(log),
		)
	}
	in.verifier = verify.NewOrchestrator(registry, domains,
		verify.WithMetrics(m),
		verify.WithLogger(log),
	)
	return in, nil
}

func loadRegistry(path string) (*providers.Registry, error) {
	registry, err := providers.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load provider registry: %w", err)
	}
	return registry, nil
}

func (in *infra) wireHistory(ctx context.Context, scanTimeout time.Duration, log *slog.Logger) error {
	switch {
	case in.db != nil:
		store := history.NewPostgres(in.db)
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate scan history: %w", err)
		}
		in.store, in.storeKind = store, "postgres"
	default:
		in.store, in.storeKind = history.NewInMemoryStore(), "memory"
	}

	switch {
	case in.redis != nil:
		in.locker = history.NewRedisLocker(in.redis.Client,
			history.WithLockTTL(lockLease(scanTimeout)),
			history.WithLockLogger(log),
		)
		in.lockerKind = "redis"
	case in.db != nil:
		in.locker, in.lockerKind = history.NewPostgresLocker(in.db, log), "postgres"
	default:
		in.locker, in.lockerKind = history.NewMemoryLocker(), "memory"
	}
	return nil
}

// lockLease outlives any scan holding the lock. Domain checks run inside the
// scan deadline, so the scan timeout bounds the hold time.
func lockLease(scanTimeout time.Duration) time.Duration {
	return scanTimeout + lockLeaseMargin
}

func (in *infra) wireEvents(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger, m *scanmetrics.Metrics) error {
	if in.kafka == nil {
		in.publisher, in.publisherKind = events.NoopPublisher{}, "disabled"
		return nil
	}
	if err := kafka.EnsureTopic(ctx, in.kafka, cfg.ScanTopic, scanTopicPartitions, scanTopicReplication); err != nil {
		return err
	}
	in.publisher = events.NewKafkaPublisher(in.kafka, cfg.ScanTopic,
		events.WithMetrics(m),
		events.WithLogger(log),
	)
	in.publisherKind = "kafka"
	return nil
}

// Health reports each configured backend as "ok" or its error text.
func (in *infra) Health(ctx context.Context) map[string]string {
	checks := map[string]string{}
	record := func(name string, err error) {
		if err != nil {
			checks[name] = err.Error()
			return
		}
		checks[name] = "ok"
	}
	if in.db != nil {
		record("postgres", in.db.PingContext(ctx))
	}
	if in.redis != nil {
		record("redis", in.redis.Health(ctx))
	}
	if in.kafka != nil {
		record("kafka", kafka.Health(ctx, in.kafka))
	}
	return checks
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
