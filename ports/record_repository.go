package ports

import (
	"context"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
)

// RecordWriter appends validation records. Records are never updated or
// deleted once written.
type RecordWriter interface {
	Append(ctx context.Context, r validation.Record) (*validation.LedgerEntry, error)
}

// RecordReader queries the validation ledger.
type RecordReader interface {
	Get(ctx context.Context, id core.RecordID) (*validation.LedgerEntry, error)
	// ListByMeasure returns entries newest first; limit <= 0 means all.
	ListByMeasure(ctx context.Context, measure string, limit int) ([]validation.LedgerEntry, error)
	Latest(ctx context.Context, measure string) (*validation.LedgerEntry, error)
}

// RecordRepository combines read and write access to the ledger.
type RecordRepository interface {
	RecordWriter
	RecordReader
}

// RecordImporter copies entries from another ledger, keeping their IDs and
// timestamps. It reports false when the entry was already present.
type RecordImporter interface {
	Import(ctx context.Context, entry validation.LedgerEntry) (bool, error)
}
