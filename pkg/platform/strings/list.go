// Package strings provides string list utilities for configuration parsing.
package strings

import (
	"strings"
)

// SplitList splits a comma separated value, trimming each element and
// dropping empties and repeats. Order is preserved. An input with no
// elements yields nil.
//
// Example:
//
//	SplitList(" broker-1:9092, broker-2:9092,,broker-1:9092 ")
//	// Returns: []string{"broker-1:9092", "broker-2:9092"}
func SplitList(v string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
