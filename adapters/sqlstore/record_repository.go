package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
	"gomeasure/internal/errors"
	"gomeasure/ports"

	"github.com/jmoiron/sqlx"
)

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type recordRow struct {
	ID                string  `db:"id"`
	MeasureName       string  `db:"measure_name"`
	GroundTruthSource string  `db:"ground_truth_source"`
	F1                float64 `db:"f1"`
	CohensKappa       float64 `db:"cohens_kappa"`
	SampleSize        int     `db:"sample_size"`
	Document          string  `db:"document"`
	RecordedAt        string  `db:"recorded_at"`
}

func (row recordRow) entry() (*validation.LedgerEntry, error) {
	rec, err := validation.DecodeRecord([]byte(row.Document))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", row.ID, err)
	}
	at, err := time.Parse(timeLayout, row.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("record %s has malformed recorded_at %q: %w", row.ID, row.RecordedAt, err)
	}
	return &validation.LedgerEntry{
		ID:         core.RecordID(row.ID),
		RecordedAt: at,
		Record:     rec,
	}, nil
}

const selectColumns = `id, measure_name, ground_truth_source, f1, cohens_kappa, sample_size, document, recorded_at`

// recordRepository implements ports.RecordRepository and ports.RecordImporter
type recordRepository struct {
	db    *sqlx.DB
	clock core.Clock
}

var _ ports.RecordImporter = (*recordRepository)(nil)

// NewRecordRepository creates a ledger on a migrated database
func NewRecordRepository(db *sqlx.DB, clock core.Clock) ports.RecordRepository {
	if clock == nil {
		clock = core.SystemClock
	}
	return &recordRepository{db: db, clock: clock}
}

// NewRecordImporter writes entries from another ledger into the same table.
func NewRecordImporter(db *sqlx.DB) ports.RecordImporter {
	return &recordRepository{db: db, clock: core.SystemClock}
}

// Append inserts a validated record under a fresh ID
func (r *recordRepository) Append(ctx context.Context, rec validation.Record) (*validation.LedgerEntry, error) {
	entry, err := validation.NewLedgerEntry(rec, r.clock())
	if err != nil {
		return nil, err
	}
	if entry.Record.Limitations == nil {
		entry.Record.Limitations = []string{}
	}
	doc, err := json.Marshal(entry.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation record: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO validation_records (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	m := entry.Record.ValidationMetrics
	_, err = r.db.ExecContext(ctx, query,
		entry.ID.String(), entry.Record.Name, entry.Record.GroundTruthSource,
		m.F1, m.CohensKappa, m.SampleSize, string(doc), entry.RecordedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, errors.DatabaseError("failed to append validation record", err)
	}
	return &entry, nil
}

// Import stores an entry under its existing ID. Entries already present are
// left untouched, so imports can be repeated.
func (r *recordRepository) Import(ctx context.Context, entry validation.LedgerEntry) (bool, error) {
	if !entry.Record.IsValidated {
		return false, core.NewNotValidatedError(entry.Record.Name)
	}
	if _, err := core.ParseRecordID(entry.ID.String()); err != nil {
		return false, errors.InvalidInput(err.Error())
	}
	if entry.Record.Limitations == nil {
		entry.Record.Limitations = []string{}
	}
	doc, err := json.Marshal(entry.Record)
	if err != nil {
		return false, fmt.Errorf("failed to marshal validation record: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO validation_records (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	m := entry.Record.ValidationMetrics
	res, err := r.db.ExecContext(ctx, query,
		entry.ID.String(), entry.Record.Name, entry.Record.GroundTruthSource,
		m.F1, m.CohensKappa, m.SampleSize, string(doc), entry.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, errors.DatabaseError("failed to import validation record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("failed to import validation record", err)
	}
	return n == 1, nil
}

// Get retrieves one record by ID
func (r *recordRepository) Get(ctx context.Context, id core.RecordID) (*validation.LedgerEntry, error) {
	query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM validation_records WHERE id = ?`)

	var row recordRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("validation record", id.String())
		}
		return nil, errors.DatabaseError("failed to get validation record", err)
	}
	return row.entry()
}

// ListByMeasure returns a measure's records newest first
func (r *recordRepository) ListByMeasure(ctx context.Context, measure string, limit int) ([]validation.LedgerEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM validation_records
		WHERE measure_name = ?
		ORDER BY recorded_at DESC, id DESC`
	args := []any{measure}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list validation records", err)
	}

	entries := make([]validation.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Latest returns the newest record of a measure
func (r *recordRepository) Latest(ctx context.Context, measure string) (*validation.LedgerEntry, error) {
	entries, err := r.ListByMeasure(ctx, measure, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, core.NewNotFoundError("validation record for measure", measure)
	}
	return &entries[0], nil
}
