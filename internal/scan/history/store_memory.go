package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"twigascan/pkg/platform/sentinel"
)

// InMemoryStore keeps records in process. It suits the CLI, tests and
// single-instance deployments without a database.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	// scan IDs per identifier in insertion order
	byIdentifier map[string][]uuid.UUID
	// scan IDs in insertion order
	order []uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:      make(map[uuid.UUID]*Record),
		byIdentifier: make(map[string][]uuid.UUID),
	}
}

func (s *InMemoryStore) FindEarliest(_ context.Context, identifier string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earliest *Record
	for _, id := range s.byIdentifier[identifier] {
		r := s.records[id]
		if earliest == nil || r.Timestamp.Before(earliest.Timestamp) {
			earliest = r
		}
	}
	if earliest == nil {
		return nil, fmt.Errorf("identifier %q: %w", identifier, sentinel.ErrNotFound)
	}
	return earliest.Entry(), nil
}

func (s *InMemoryStore) Count(_ context.Context, identifier string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byIdentifier[identifier]), nil
}

func (s *InMemoryStore) Append(_ context.Context, r *Record) error {
	if r == nil {
		return fmt.Errorf("scan record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ScanID]; exists {
		return fmt.Errorf("scan %s: %w", r.ScanID, sentinel.ErrConflict)
	}
	stored := cloneRecord(r)
	s.records[r.ScanID] = stored
	s.order = append(s.order, r.ScanID)
	if r.NormalizedIdentifier != "" {
		s.byIdentifier[r.NormalizedIdentifier] = append(s.byIdentifier[r.NormalizedIdentifier], r.ScanID)
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, scanID uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[scanID]
	if !ok {
		return nil, fmt.Errorf("scan %s: %w", scanID, sentinel.ErrNotFound)
	}
	return cloneRecord(r), nil
}

func (s *InMemoryStore) List(_ context.Context, limit, offset int) ([]*Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// newest first; later insertion wins ties
	all := make([]*Record, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		all = append(all, s.records[s.order[i]])
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	total := len(all)
	if offset >= total {
		return []*Record{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	out := make([]*Record, 0, end-offset)
	for _, r := range all[offset:end] {
		out = append(out, cloneRecord(r))
	}
	return out, total, nil
}

func (s *InMemoryStore) UpdateAction(_ context.Context, scanID uuid.UUID, action UserAction, outcome string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[scanID]
	if !ok {
		return nil, fmt.Errorf("scan %s: %w", scanID, sentinel.ErrNotFound)
	}
	r.UserAction = action
	r.Outcome = outcome
	return cloneRecord(r), nil
}

func cloneRecord(r *Record) *Record {
	c := *r
	c.Warnings = cloneStrings(r.Warnings)
	c.Verification.Warnings = cloneStrings(r.Verification.Warnings)
	if r.ParsedData != nil {
		c.ParsedData = append([]byte(nil), r.ParsedData...)
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
