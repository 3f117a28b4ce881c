package duplicate

import (
	"fmt"
	"time"
)

// HighFrequencyThreshold is the prior scan count from which a scan is
// flagged as high frequency, i.e. the fourth sighting onwards.
const HighFrequencyThreshold = 3

// HighFrequency reports whether r crosses the high-frequency threshold.
func (r Result) HighFrequency() bool {
	return r.IsDuplicate && r.PriorCount >= HighFrequencyThreshold
}

// Warnings returns the duplicate warnings for r, most severe first.
func (r Result) Warnings() []string {
	if !r.IsDuplicate {
		return nil
	}
	seen := fmt.Sprintf("⚠️ This address has been scanned %d time(s) before. First seen: %s",
		r.PriorCount, r.FirstSeen.UTC().Format(time.RFC3339))
	if !r.HighFrequency() {
		return []string{seen}
	}
	high := fmt.Sprintf("🚨 HIGH FREQUENCY: This address has been scanned %d times. Confirm the recipient before paying.",
		r.UsageCount)
	return []string{high, seen}
}

// PrependWarnings places the duplicate warnings ahead of the verification
// warnings. Neither input is modified.
func PrependWarnings(r Result, rest []string) []string {
	dup := r.Warnings()
	out := make([]string, 0, len(dup)+len(rest))
	out = append(out, dup...)
	return append(out, rest...)
}
