// Package sentinel holds infrastructure-fact errors. History stores and
// event transports return these, optionally wrapped; the scan service
// translates them into domain errors. Input validation uses
// pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no scan row with the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a scan id was appended twice.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: a backend is temporarily refusing work, for example
	// while a circuit breaker is open.
	ErrUnavailable = errors.New("unavailable")
)
