package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scan module.
//
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	// Scans by content type and resulting auth status
	ScansTotal *prometheus.CounterVec

	// Duplicate sightings by content type and whether the high-frequency threshold was hit
	DuplicateScans *prometheus.CounterVec

	// Individual verification check results
	CheckOutcome *prometheus.CounterVec

	// DNS + TLS domain check latency by result
	DomainCheckLatency *prometheus.HistogramVec

	// Domain check cache lookups by result: "hit", "miss", "error"
	DomainCacheLookups *prometheus.CounterVec

	// Time spent waiting for the per-identifier lock
	LockWaitLatency prometheus.Histogram

	// Scan events handed to the publisher by result
	EventsPublished *prometheus.CounterVec

	// Full parse-and-verify latency
	ScanLatency prometheus.Histogram

	// API request latency by method
	HTTPLatency *prometheus.HistogramVec
}

// New registers the scan metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "twigascan_scans_total",
			Help: "Total scans by content type and auth status",
		}, []string{"content_type", "auth_status"}),

		DuplicateScans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "twigascan_duplicate_scans_total",
			Help: "Scans whose normalized identifier had been seen before",
		}, []string{"content_type", "high_frequency"}),

		CheckOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "twigascan_verification_checks_total",
			Help: "Verification check results by check name",
		}, []string{"check", "result"}), // check: "format", "crypto", "domain", "provider"

		DomainCheckLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twigascan_domain_check_duration_seconds",
			Help:    "Duration of DNS resolution and TLS handshake checks",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),

		DomainCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "twigascan_domain_check_cache_total",
			Help: "Domain check cache lookups by result",
		}, []string{"result"}),

		LockWaitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "twigascan_identifier_lock_wait_seconds",
			Help:    "Time spent acquiring the per-identifier duplicate detection lock",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "twigascan_scan_events_total",
			Help: "Scan events handed to the publisher by result",
		}, []string{"result"}),

		ScanLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "twigascan_scan_duration_seconds",
			Help:    "Duration of a full parse, verify and duplicate check",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twigascan_http_request_duration_seconds",
			Help:    "Latency of scan API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// IncrementScan records a completed scan.
func (m *Metrics) IncrementScan(contentType, authStatus string) {
	if m != nil {
		m.ScansTotal.WithLabelValues(contentType, authStatus).Inc()
	}
}

// IncrementDuplicate records a repeat sighting.
func (m *Metrics) IncrementDuplicate(contentType string, highFrequency bool) {
	if m != nil {
		m.DuplicateScans.WithLabelValues(contentType, boolLabel(highFrequency)).Inc()
	}
}

// RecordCheck records the result of one verification check.
func (m *Metrics) RecordCheck(check string, ok bool) {
	if m != nil {
		m.CheckOutcome.WithLabelValues(check, boolLabel(ok)).Inc()
	}
}

// ObserveDomainCheck records a domain check duration.
func (m *Metrics) ObserveDomainCheck(ok bool, d time.Duration) {
	if m != nil {
		m.DomainCheckLatency.WithLabelValues(boolLabel(ok)).Observe(d.Seconds())
	}
}

// IncrementDomainCache records a cache lookup result.
func (m *Metrics) IncrementDomainCache(result string) {
	if m != nil {
		m.DomainCacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveLockWait records how long a scan waited for its identifier lock.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m != nil {
		m.LockWaitLatency.Observe(d.Seconds())
	}
}

// IncrementEvent records a publish attempt.
func (m *Metrics) IncrementEvent(result string) {
	if m != nil {
		m.EventsPublished.WithLabelValues(result).Inc()
	}
}

// ObserveScanLatency records the total scan duration.
func (m *Metrics) ObserveScanLatency(d time.Duration) {
	if m != nil {
		m.ScanLatency.Observe(d.Seconds())
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ObserveHTTPLatency records one API request.
func (m *Metrics) ObserveHTTPLatency(method string, d time.Duration) {
	if m != nil {
		m.HTTPLatency.WithLabelValues(method).Observe(d.Seconds())
	}
}
