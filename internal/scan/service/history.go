package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"twigascan/internal/scan/history"
	dErrors "twigascan/pkg/domain-errors"
	"twigascan/pkg/platform/sentinel"
)

// HistoryPage is one page of recorded scans, newest first.
type HistoryPage struct {
	Scans  []*history.Record `json:"scans"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// Get returns a recorded scan.
func (s *Service) Get(ctx context.Context, scanID uuid.UUID) (*history.Record, error) {
	r, err := s.store.Get(ctx, scanID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "scan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scan")
	}
	return r, nil
}

// History lists recorded scans. A zero limit uses the default; limits above
// the maximum and negative offsets are rejected.
func (s *Service) History(ctx context.Context, limit, offset int) (*HistoryPage, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100")
	}
	if offset < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "offset must not be negative")
	}

	scans, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list scans")
	}
	if scans == nil {
		scans = []*history.Record{}
	}
	return &HistoryPage{Scans: scans, Total: total, Limit: limit, Offset: offset}, nil
}

// RecordAction stores what the user did after seeing a scan.
func (s *Service) RecordAction(ctx context.Context, scanID uuid.UUID, action history.UserAction, outcome string) (*history.Record, error) {
	action = history.UserAction(strings.ToLower(strings.TrimSpace(string(action))))
	if !action.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "action must be one of approved, aborted, reported")
	}
	outcome = strings.TrimSpace(outcome)
	if len(outcome) > 500 {
		return nil, dErrors.New(dErrors.CodeValidation, "outcome must be at most 500 characters")
	}

	r, err := s.store.UpdateAction(ctx, scanID, action, outcome)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "scan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record action")
	}

	s.logger.InfoContext(ctx, "scan action recorded",
		"scan_id", scanID,
		"action", action,
	)
	return r, nil
}
