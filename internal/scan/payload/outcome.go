package payload

import (
	"time"

	"github.com/google/uuid"
)

// AuthStatus summarises the verification signals for a scan.
type AuthStatus string

const (
	AuthStatusVerified   AuthStatus = "Verified"
	AuthStatusSuspicious AuthStatus = "Suspicious"
	AuthStatusInvalid    AuthStatus = "Invalid"
)

// Checks are the four verification signals auth status is derived from.
type Checks struct {
	FormatValid   bool `json:"format_valid"`
	CryptoValid   bool `json:"crypto_valid"`
	DomainValid   bool `json:"domain_valid"`
	ProviderKnown bool `json:"provider_known"`
}

// VerificationResult is the orchestrator's verdict for one payload.
type VerificationResult struct {
	Checks
	// Provider names the matched registry entry when ProviderKnown is set.
	Provider   string     `json:"provider,omitempty"`
	Warnings   []string   `json:"warnings"`
	AuthStatus AuthStatus `json:"auth_status"`
}

// ScanOutcome is what a single parse-and-verify call returns to its caller.
type ScanOutcome struct {
	ScanID               uuid.UUID          `json:"scan_id"`
	Timestamp            time.Time          `json:"timestamp"`
	ContentType          ContentType        `json:"content_type"`
	ParsedData           Payload            `json:"parsed_data"`
	AuthStatus           AuthStatus         `json:"auth_status"`
	Verification         VerificationResult `json:"verification_results"`
	Warnings             []string           `json:"warnings"`
	IsDuplicate          bool               `json:"is_duplicate"`
	UsageCount           int                `json:"usage_count"`
	FirstSeen            time.Time          `json:"first_seen"`
	NormalizedIdentifier string             `json:"normalized_identifier,omitempty"`
}
