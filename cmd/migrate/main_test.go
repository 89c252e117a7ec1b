package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"gomeasure/adapters/filestore"
	"gomeasure/adapters/sqlstore"
	"gomeasure/domain/core"
	"gomeasure/domain/validation"
	"gomeasure/internal/config"
	"gomeasure/internal/migration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRecords(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	source, err := filestore.NewRecordStore(t.TempDir(), core.FixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), logger)
	require.NoError(t, err)
	for _, name := range []string{"a", "b"} {
		_, err := source.Append(ctx, validation.Record{Name: name, IsValidated: true})
		require.NoError(t, err)
	}

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner(logger).Run(ctx, db))

	migrated, skipped, err := importRecords(ctx, source, sqlstore.NewRecordImporter(db), logger)
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)
	assert.Equal(t, 0, skipped)

	migrated, skipped, err = importRecords(ctx, source, sqlstore.NewRecordImporter(db), logger)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
	assert.Equal(t, 2, skipped)

	latest, err := sqlstore.NewRecordRepository(db, nil).Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", latest.Record.Name)
}

func TestRunRejectsFileStorage(t *testing.T) {
	err := run(context.Background(), config.StorageConfig{Driver: config.DriverFile, RecordDir: t.TempDir()},
		"", slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "migrations need postgres or sqlite")
}

func TestRunMigratesAndImports(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	source, err := filestore.NewRecordStore(filepath.Join(dir, "records"), nil, logger)
	require.NoError(t, err)
	_, err = source.Append(ctx, validation.Record{Name: "m", IsValidated: true})
	require.NoError(t, err)

	storage := config.StorageConfig{Driver: config.DriverSQLite, DatabaseURL: filepath.Join(dir, "ledger.db")}
	require.NoError(t, run(ctx, storage, source.Dir(), logger))
	// repeated runs stay idempotent
	require.NoError(t, run(ctx, storage, source.Dir(), logger))
}
