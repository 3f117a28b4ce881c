// Package events publishes a record of every processed scan for downstream
// consumers such as fraud analytics.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"twigascan/internal/scan/payload"
)

// TypeScanRecorded is the event_type header value for ScanRecorded.
const TypeScanRecorded = "scan.recorded"

// ScanRecorded is emitted after a scan has been stored.
type ScanRecorded struct {
	ScanID               uuid.UUID           `json:"scan_id"`
	Timestamp            time.Time           `json:"timestamp"`
	ContentType          payload.ContentType `json:"content_type"`
	AuthStatus           payload.AuthStatus  `json:"auth_status"`
	Provider             string              `json:"provider,omitempty"`
	NormalizedIdentifier string              `json:"normalized_identifier,omitempty"`
	IsDuplicate          bool                `json:"is_duplicate"`
	UsageCount           int                 `json:"usage_count"`
	Warnings             []string            `json:"warnings"`
	DeviceID             string              `json:"device_id,omitempty"`
}

// Key partitions events so scans of one identifier stay ordered.
func (e ScanRecorded) Key() string {
	if e.NormalizedIdentifier != "" {
		return e.NormalizedIdentifier
	}
	return e.ScanID.String()
}

// Publisher delivers scan events. Publishing is best effort; callers log
// failures and never fail a scan because of them.
type Publisher interface {
	PublishScan(ctx context.Context, e ScanRecorded) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishScan(context.Context, ScanRecorded) error { return nil }

// RecordingPublisher keeps events in memory.
type RecordingPublisher struct {
	ch chan ScanRecorded
}

// NewRecordingPublisher buffers up to size events; further events are dropped.
func NewRecordingPublisher(size int) *RecordingPublisher {
	return &RecordingPublisher{ch: make(chan ScanRecorded, size)}
}

func (p *RecordingPublisher) PublishScan(_ context.Context, e ScanRecorded) error {
	select {
	case p.ch <- e:
	default:
	}
	return nil
}

// Events exposes recorded events in publish order.
func (p *RecordingPublisher) Events() <-chan ScanRecorded {
	return p.ch
}
