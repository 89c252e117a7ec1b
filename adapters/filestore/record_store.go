// Package filestore keeps the validation ledger as one JSON file per entry in
// a directory. Files are created exclusively and never rewritten.
package filestore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
	"gomeasure/internal/errors"
	"gomeasure/ports"
)

const entryExt = ".json"

// RecordStore implements ports.RecordRepository on a directory.
type RecordStore struct {
	dir    string
	clock  core.Clock
	logger *slog.Logger
}

var _ ports.RecordRepository = (*RecordStore)(nil)

// NewRecordStore creates dir if needed.
func NewRecordStore(dir string, clock core.Clock, logger *slog.Logger) (*RecordStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOError(dir, err)
	}
	if clock == nil {
		clock = core.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{dir: dir, clock: clock, logger: logger}, nil
}

// Dir returns the ledger directory.
func (s *RecordStore) Dir() string { return s.dir }

func (s *RecordStore) path(id core.RecordID) string {
	return filepath.Join(s.dir, id.String()+entryExt)
}

// Append writes a new entry file.
func (s *RecordStore) Append(ctx context.Context, r validation.Record) (*validation.LedgerEntry, error) {
	entry, err := validation.NewLedgerEntry(r, s.clock())
	if err != nil {
		return nil, err
	}
	if entry.Record.Limitations == nil {
		entry.Record.Limitations = []string{}
	}
	if err := s.write(entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RecordStore) write(entry validation.LedgerEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}
	path := s.path(entry.ID)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		return errors.IOError(path, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return errors.IOError(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

// Get reads one entry.
func (s *RecordStore) Get(ctx context.Context, id core.RecordID) (*validation.LedgerEntry, error) {
	if _, err := core.ParseRecordID(id.String()); err != nil {
		return nil, core.NewNotFoundError("validation record", id.String())
	}
	entry, err := s.read(s.path(id))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, core.NewNotFoundError("validation record", id.String())
		}
		return nil, err
	}
	return entry, nil
}

func (s *RecordStore) read(path string) (*validation.LedgerEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	var entry validation.LedgerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%s: %w", path, err))
	}
	if entry.Record.Limitations == nil {
		entry.Record.Limitations = []string{}
	}
	return &entry, nil
}

// All returns every entry, newest first. Unreadable files are logged and
// skipped.
func (s *RecordStore) All(ctx context.Context) ([]validation.LedgerEntry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.IOError(s.dir, err)
	}

	var entries []validation.LedgerEntry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entryExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := s.read(filepath.Join(s.dir, de.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable ledger entry", "component", "filestore", "file", de.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}
	slices.SortFunc(entries, validation.Newer)
	return entries, nil
}

// ListByMeasure returns a measure's entries newest first.
func (s *RecordStore) ListByMeasure(ctx context.Context, measure string, limit int) ([]validation.LedgerEntry, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]validation.LedgerEntry, 0)
	for _, e := range all {
		if e.Record.Name != measure {
			continue
		}
		results = append(results, e)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

// Latest returns the newest entry of a measure.
func (s *RecordStore) Latest(ctx context.Context, measure string) (*validation.LedgerEntry, error) {
	entries, err := s.ListByMeasure(ctx, measure, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, core.NewNotFoundError("validation record for measure", measure)
	}
	return &entries[0], nil
}
