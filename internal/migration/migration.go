package migration

import (
	"context"
	"log/slog"

	"gomeasure/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner creates the validation ledger schema. Every step is
// idempotent.
type MigrationRunner struct {
	version string
	logger  *slog.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *slog.Logger) *MigrationRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &MigrationRunner{
		version: "1.0.0",
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createValidationRecordsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create validation_records table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	if err := r.guardAppendOnly(ctx, db); err != nil {
		return errors.DatabaseError("failed to install append-only triggers", err)
	}

	r.logger.Info("migrations applied", "component", "migration", "driver", db.DriverName(), "version", r.version)
	return nil
}

// validation_records keeps timestamps as fixed-width UTC text so the same
// schema works on postgres and sqlite and text order matches time order.
func (r *MigrationRunner) createValidationRecordsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_records (
			id TEXT PRIMARY KEY,
			measure_name TEXT NOT NULL,
			ground_truth_source TEXT NOT NULL,
			f1 DOUBLE PRECISION NOT NULL,
			cohens_kappa DOUBLE PRECISION NOT NULL,
			sample_size INTEGER NOT NULL,
			document TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_validation_records_measure ON validation_records(measure_name, recorded_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_validation_records_source ON validation_records(ground_truth_source)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) guardAppendOnly(ctx context.Context, db *sqlx.DB) error {
	var statements []string
	switch db.DriverName() {
	case "postgres":
		statements = []string{
			`CREATE OR REPLACE FUNCTION reject_validation_record_change() RETURNS trigger AS $$
			BEGIN
				RAISE EXCEPTION 'validation records are append-only';
			END;
			$$ LANGUAGE plpgsql`,
			`DROP TRIGGER IF EXISTS validation_records_append_only ON validation_records`,
			`CREATE TRIGGER validation_records_append_only
				BEFORE UPDATE OR DELETE ON validation_records
				FOR EACH ROW EXECUTE FUNCTION reject_validation_record_change()`,
		}
	case "sqlite":
		statements = []string{
			`CREATE TRIGGER IF NOT EXISTS validation_records_no_update
				BEFORE UPDATE ON validation_records
				BEGIN SELECT RAISE(ABORT, 'validation records are append-only'); END`,
			`CREATE TRIGGER IF NOT EXISTS validation_records_no_delete
				BEFORE DELETE ON validation_records
				BEGIN SELECT RAISE(ABORT, 'validation records are append-only'); END`,
		}
	default:
		r.logger.Warn("no append-only guard for driver", "component", "migration", "driver", db.DriverName())
		return nil
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
