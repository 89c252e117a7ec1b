package validation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"gomeasure/domain/core"
)

// Record is the persisted document of a successful validation. Consumers
// treat it as an append-only audit entry.
type Record struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	GroundTruthSource string   `json:"ground_truth_source"`
	ValidationMetrics Metrics  `json:"validation_metrics"`
	Limitations       []string `json:"limitations"`
	IsValidated       bool     `json:"is_validated"`
}

// Encode renders the record as indented JSON. A nil limitation list is
// written as an empty array.
func (r Record) Encode() ([]byte, error) {
	if r.Limitations == nil {
		r.Limitations = []string{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode validation record for %s: %w", r.Name, err)
	}
	return append(data, '\n'), nil
}

// DecodeRecord parses a document produced by Encode.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode validation record: %w", err)
	}
	if r.Limitations == nil {
		r.Limitations = []string{}
	}
	return r, nil
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.ValidationMetrics = *r.ValidationMetrics.Clone()
	out.Limitations = slices.Clone(r.Limitations)
	return out
}

// LedgerEntry is a record as stored in an append-only ledger.
type LedgerEntry struct {
	ID         core.RecordID `json:"id"`
	RecordedAt time.Time     `json:"recorded_at"`
	Record     Record        `json:"record"`
}

// NewLedgerEntry assigns a fresh ID to a validated record.
func NewLedgerEntry(r Record, at time.Time) (LedgerEntry, error) {
	if !r.IsValidated {
		return LedgerEntry{}, core.NewNotValidatedError(r.Name)
	}
	if r.Name == "" {
		return LedgerEntry{}, fmt.Errorf("validation record has no measure name")
	}
	return LedgerEntry{ID: core.NewRecordID(), RecordedAt: at.UTC(), Record: r.Clone()}, nil
}

// Newer orders entries newest first, breaking ties by ID.
func Newer(a, b LedgerEntry) int {
	if c := b.RecordedAt.Compare(a.RecordedAt); c != 0 {
		return c
	}
	return strings.Compare(string(b.ID), string(a.ID))
}
