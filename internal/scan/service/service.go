// Package service runs a scan end to end: parse, verify, detect duplicates,
// record and publish.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"twigascan/internal/scan/duplicate"
	"twigascan/internal/scan/events"
	"twigascan/internal/scan/history"
	"twigascan/internal/scan/metrics"
	"twigascan/internal/scan/parser"
	"twigascan/internal/scan/payload"
	"twigascan/internal/scan/providers"
)

var tracer = otel.Tracer("twigascan/scan")

const (
	DefaultScanTimeout  = 30 * time.Second
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// Verifier produces the verification verdict for a parsed payload.
type Verifier interface {
	Verify(ctx context.Context, p payload.Payload) payload.VerificationResult
}

// Store persists scans and answers duplicate lookups.
type Store interface {
	FindEarliest(ctx context.Context, identifier string) (*history.Entry, error)
	Count(ctx context.Context, identifier string) (int, error)
	Append(ctx context.Context, r *history.Record) error
	Get(ctx context.Context, scanID uuid.UUID) (*history.Record, error)
	List(ctx context.Context, limit, offset int) ([]*history.Record, int, error)
	UpdateAction(ctx context.Context, scanID uuid.UUID, action history.UserAction, outcome string) (*history.Record, error)
}

// Locker serialises scans of one identifier.
type Locker interface {
	Lock(ctx context.Context, identifier string) (func(), error)
}

// Publisher delivers scan events.
type Publisher interface {
	PublishScan(ctx context.Context, e events.ScanRecorded) error
}

// ProviderCatalog lists the known providers.
type ProviderCatalog interface {
	All() []providers.ProviderRecord
}

// Service orchestrates scans over its collaborators.
type Service struct {
	router      *parser.Router
	verifier    Verifier
	store       Store
	detector    *duplicate.Detector
	locker      Locker
	publisher   Publisher
	catalog     ProviderCatalog
	logger      *slog.Logger
	metrics     *metrics.Metrics
	scanTimeout time.Duration
}

type Option func(*Service)

func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithProviderCatalog(c ProviderCatalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithScanTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.scanTimeout = d
		}
	}
}

// WithRouter replaces the default parser router.
func WithRouter(r *parser.Router) Option {
	return func(s *Service) {
		if r != nil {
			s.router = r
		}
	}
}

// New constructs a Service. Without WithLocker, identifiers are serialised
// in process only.
func New(verifier Verifier, store Store, opts ...Option) *Service {
	s := &Service{
		router:      parser.NewRouter(),
		verifier:    verifier,
		store:       store,
		detector:    duplicate.NewDetector(store),
		locker:      history.NewMemoryLocker(),
		publisher:   events.NoopPublisher{},
		logger:      slog.Default(),
		scanTimeout: DefaultScanTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Providers returns the provider registry contents.
func (s *Service) Providers() []providers.ProviderRecord {
	if s.catalog == nil {
		return []providers.ProviderRecord{}
	}
	return s.catalog.All()
}
