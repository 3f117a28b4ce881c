package verify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"twigascan/internal/scan/metrics"
)

// DefaultCheckTimeout bounds one domain check when no timeout is configured.
const DefaultCheckTimeout = 10 * time.Second

const defaultTLSPort = "443"

// DomainVerdict is the outcome of checking one URL's host.
type DomainVerdict struct {
	Host  string `json:"host"`
	Valid bool   `json:"valid"`
	// Reason describes the failure; empty when Valid.
	Reason string `json:"reason,omitempty"`
}

// DomainChecker checks that a URL's host resolves and, for https, completes
// a TLS handshake. Failures are verdicts, never errors.
type DomainChecker interface {
	Check(ctx context.Context, rawURL string) DomainVerdict
}

// NetDomainChecker checks domains against live DNS and TLS.
type NetDomainChecker struct {
	resolver  *net.Resolver
	timeout   time.Duration
	port      string
	tlsConfig *tls.Config
	metrics   *metrics.Metrics
}

// NetDomainCheckerOption configures a NetDomainChecker.
type NetDomainCheckerOption func(*NetDomainChecker)

// WithResolver overrides the DNS resolver.
func WithResolver(r *net.Resolver) NetDomainCheckerOption {
	return func(c *NetDomainChecker) {
		c.resolver = r
	}
}

// WithCheckTimeout bounds DNS and TLS together for one check.
func WithCheckTimeout(d time.Duration) NetDomainCheckerOption {
	return func(c *NetDomainChecker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTLSPort overrides the handshake port.
func WithTLSPort(port string) NetDomainCheckerOption {
	return func(c *NetDomainChecker) {
		c.port = port
	}
}

// WithTLSConfig sets the base TLS config. ServerName is always set per host.
func WithTLSConfig(cfg *tls.Config) NetDomainCheckerOption {
	return func(c *NetDomainChecker) {
		c.tlsConfig = cfg
	}
}

// WithCheckerMetrics records check latency.
func WithCheckerMetrics(m *metrics.Metrics) NetDomainCheckerOption {
	return func(c *NetDomainChecker) {
		c.metrics = m
	}
}

// NewNetDomainChecker creates a checker with a 10s timeout on port 443.
func NewNetDomainChecker(opts ...NetDomainCheckerOption) *NetDomainChecker {
	c := &NetDomainChecker{
		resolver: net.DefaultResolver,
		timeout:  DefaultCheckTimeout,
		port:     defaultTLSPort,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Check resolves the host then, for https URLs, performs a TLS handshake.
// It returns early when ctx is cancelled.
func (c *NetDomainChecker) Check(ctx context.Context, rawURL string) (v DomainVerdict) {
	ctx, span := tracer.Start(ctx, "verify.domain_check", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	defer func() {
		c.metrics.ObserveDomainCheck(v.Valid, time.Since(start))
		span.SetAttributes(
			attribute.String("domain.host", v.Host),
			attribute.Bool("domain.valid", v.Valid),
		)
	}()

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return DomainVerdict{Reason: "missing host"}
	}
	host := strings.ToLower(u.Hostname())
	v.Host = host

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.resolver.LookupHost(ctx, host); err != nil {
		v.Reason = fmt.Sprintf("dns: %v", err)
		return v
	}

	if strings.EqualFold(u.Scheme, "https") {
		if err := c.handshake(ctx, host); err != nil {
			v.Reason = fmt.Sprintf("tls: %v", err)
			return v
		}
	}

	v.Valid = true
	return v
}

func (c *NetDomainChecker) handshake(ctx context.Context, host string) error {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.tlsConfig != nil {
		cfg = c.tlsConfig.Clone()
	}
	cfg.ServerName = host

	dialer := &tls.Dialer{Config: cfg}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, c.port))
	if err != nil {
		return err
	}
	return conn.Close()
}

// StaticDomainChecker returns the same validity for every URL. It backs
// offline operation and tests.
type StaticDomainChecker struct {
	Valid bool
}

func (s StaticDomainChecker) Check(_ context.Context, rawURL string) DomainVerdict {
	v := DomainVerdict{Valid: s.Valid}
	if u, err := url.Parse(rawURL); err == nil {
		v.Host = strings.ToLower(u.Hostname())
	}
	if !s.Valid {
		v.Reason = "offline"
	}
	return v
}
