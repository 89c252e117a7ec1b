package testkit

import (
	"context"
	"slices"
	"sync"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
)

// InMemoryRecordLedger implements ports.RecordRepository with in-memory storage
type InMemoryRecordLedger struct {
	entries   map[core.RecordID]validation.LedgerEntry
	byMeasure map[string][]core.RecordID
	clock     core.Clock
	mu        sync.RWMutex
}

func NewInMemoryRecordLedger(clock core.Clock) *InMemoryRecordLedger {
	if clock == nil {
		clock = core.SystemClock
	}
	return &InMemoryRecordLedger{
		entries:   make(map[core.RecordID]validation.LedgerEntry),
		byMeasure: make(map[string][]core.RecordID),
		clock:     clock,
	}
}

func (s *InMemoryRecordLedger) Append(ctx context.Context, r validation.Record) (*validation.LedgerEntry, error) {
	entry, err := validation.NewLedgerEntry(r, s.clock())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	s.byMeasure[r.Name] = append(s.byMeasure[r.Name], entry.ID)

	out := entry
	out.Record = entry.Record.Clone()
	return &out, nil
}

func (s *InMemoryRecordLedger) Get(ctx context.Context, id core.RecordID) (*validation.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, core.NewNotFoundError("validation record", id.String())
	}
	entry.Record = entry.Record.Clone()
	return &entry, nil
}

func (s *InMemoryRecordLedger) ListByMeasure(ctx context.Context, measure string, limit int) ([]validation.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byMeasure[measure]
	results := make([]validation.LedgerEntry, 0, len(ids))
	for _, id := range ids {
		entry := s.entries[id]
		entry.Record = entry.Record.Clone()
		results = append(results, entry)
	}
	slices.SortFunc(results, validation.Newer)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *InMemoryRecordLedger) Latest(ctx context.Context, measure string) (*validation.LedgerEntry, error) {
	entries, err := s.ListByMeasure(ctx, measure, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, core.NewNotFoundError("validation record for measure", measure)
	}
	return &entries[0], nil
}

// Len returns the number of stored entries.
func (s *InMemoryRecordLedger) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
