package duplicate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twigascan/internal/scan/history"
	"twigascan/pkg/platform/sentinel"
)

// History is the read side of the scan history the detector consults.
type History interface {
	// FindEarliest returns the oldest entry for identifier or sentinel.ErrNotFound.
	FindEarliest(ctx context.Context, identifier string) (*history.Entry, error)
	Count(ctx context.Context, identifier string) (int, error)
}

// Result is the duplicate metadata for the scan about to be recorded.
type Result struct {
	Identifier  string
	IsDuplicate bool
	// UsageCount includes the current scan.
	UsageCount int
	FirstSeen  time.Time
	// PriorCount is how many scans were recorded before this one.
	PriorCount int
}

// FirstSighting is the result for an identifier never seen before, or for
// content that has no identifier.
func FirstSighting(identifier string, now time.Time) Result {
	return Result{
		Identifier: identifier,
		UsageCount: 1,
		FirstSeen:  now,
	}
}

// Detector computes duplicate metadata from the scan history.
type Detector struct {
	history History
}

func NewDetector(h History) *Detector {
	return &Detector{history: h}
}

// Detect looks up identifier. Callers that need an accurate count under
// concurrency must hold the identifier lock from before Detect until the new
// row is appended.
func (d *Detector) Detect(ctx context.Context, identifier string, now time.Time) (Result, error) {
	if identifier == "" {
		return FirstSighting("", now), nil
	}

	earliest, err := d.history.FindEarliest(ctx, identifier)
	if errors.Is(err, sentinel.ErrNotFound) {
		return FirstSighting(identifier, now), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("find earliest scan: %w", err)
	}

	count, err := d.history.Count(ctx, identifier)
	if err != nil {
		return Result{}, fmt.Errorf("count scans: %w", err)
	}
	if count == 0 {
		return FirstSighting(identifier, now), nil
	}

	firstSeen := earliest.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = earliest.Timestamp
	}
	return Result{
		Identifier:  identifier,
		IsDuplicate: true,
		UsageCount:  count + 1,
		FirstSeen:   firstSeen,
		PriorCount:  count,
	}, nil
}
