// Package history stores recorded scans and serialises duplicate detection
// per normalized identifier.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"twigascan/internal/scan/payload"
)

// Entry is the slice of a recorded scan duplicate detection needs.
type Entry struct {
	ScanID    uuid.UUID
	Timestamp time.Time
	FirstSeen time.Time
}

// UserAction is what the user did after seeing a scan result.
type UserAction string

const (
	UserActionApproved UserAction = "approved"
	UserActionAborted  UserAction = "aborted"
	UserActionReported UserAction = "reported"
)

// Valid reports whether a is one of the accepted actions.
func (a UserAction) Valid() bool {
	switch a {
	case UserActionApproved, UserActionAborted, UserActionReported:
		return true
	}
	return false
}

// Device describes the client that submitted a scan.
type Device struct {
	DeviceID  string `json:"device_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Mobile    bool   `json:"mobile"`
}

// NewDevice derives browser, OS and mobile flag from the User-Agent header.
func NewDevice(deviceID, ipAddress, userAgent string) Device {
	d := Device{
		DeviceID:  deviceID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if userAgent == "" {
		return d
	}
	ua := useragent.New(userAgent)
	d.Browser, _ = ua.Browser()
	d.OS = ua.OS()
	d.Mobile = ua.Mobile()
	return d
}

// Record is one persisted scan.
type Record struct {
	ScanID               uuid.UUID                  `json:"scan_id"`
	Timestamp            time.Time                  `json:"timestamp"`
	RawContent           string                     `json:"raw_content"`
	ContentType          payload.ContentType        `json:"content_type"`
	ParsedData           json.RawMessage            `json:"parsed_data"`
	Provider             string                     `json:"provider,omitempty"`
	AuthStatus           payload.AuthStatus         `json:"auth_status"`
	Verification         payload.VerificationResult `json:"verification_results"`
	Warnings             []string                   `json:"warnings"`
	NormalizedIdentifier string                     `json:"normalized_identifier,omitempty"`
	FirstSeen            time.Time                  `json:"first_seen"`
	UsageCount           int                        `json:"usage_count"`
	Device               Device                     `json:"device"`
	UserAction           UserAction                 `json:"user_action,omitempty"`
	Outcome              string                     `json:"outcome,omitempty"`
}

// Entry projects r onto the fields duplicate detection reads.
func (r *Record) Entry() *Entry {
	return &Entry{ScanID: r.ScanID, Timestamp: r.Timestamp, FirstSeen: r.FirstSeen}
}

// Store persists scan records. Lookups by identifier match exactly; callers
// pass normalized identifiers.
type Store interface {
	// FindEarliest returns the oldest record for identifier, or sentinel.ErrNotFound.
	FindEarliest(ctx context.Context, identifier string) (*Entry, error)
	Count(ctx context.Context, identifier string) (int, error)
	// Append stores a new record; sentinel.ErrConflict if the scan ID exists.
	Append(ctx context.Context, r *Record) error
	// Get returns a record by scan ID, or sentinel.ErrNotFound.
	Get(ctx context.Context, scanID uuid.UUID) (*Record, error)
	// List returns records newest first with the total record count.
	List(ctx context.Context, limit, offset int) ([]*Record, int, error)
	// UpdateAction sets the user action and outcome on an existing record.
	UpdateAction(ctx context.Context, scanID uuid.UUID, action UserAction, outcome string) (*Record, error)
}

// Locker serialises work on one identifier across concurrent scans. The
// returned release func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, identifier string) (release func(), err error)
}
