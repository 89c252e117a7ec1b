package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gomeasure/adapters/filestore"
	"gomeasure/adapters/sqlstore"
	"gomeasure/internal/config"
	"gomeasure/internal/logging"
	"gomeasure/internal/migration"
	"gomeasure/ports"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [record_dir_to_import]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.Init(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	importDir := ""
	if len(os.Args) == 2 {
		importDir = os.Args[1]
	}
	if err := run(context.Background(), cfg.Storage, importDir, logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, storage config.StorageConfig, importDir string, logger *slog.Logger) error {
	if storage.Driver == config.DriverFile {
		return fmt.Errorf("STORAGE_DRIVER is %q; migrations need postgres or sqlite", storage.Driver)
	}

	logger.Info("starting migration", "driver", storage.Driver)
	db, err := sqlstore.Open(ctx, storage.Driver, storage.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.NewRunner(logger).Run(ctx, db); err != nil {
		return err
	}
	if importDir == "" {
		return nil
	}

	source, err := filestore.NewRecordStore(importDir, nil, logger)
	if err != nil {
		return err
	}
	migrated, skipped, err := importRecords(ctx, source, sqlstore.NewRecordImporter(db), logger)
	if err != nil {
		return err
	}
	logger.Info("import complete", "dir", importDir, "migrated", migrated, "skipped", skipped)
	return nil
}

// importRecords copies every entry of source. Entries the target already
// holds, or rejects, are counted as skipped.
func importRecords(ctx context.Context, source *filestore.RecordStore, target ports.RecordImporter, logger *slog.Logger) (migrated, skipped int, err error) {
	entries, err := source.All(ctx)
	if err != nil {
		return 0, 0, err
	}
	logger.Info("found ledger entries to import", "count", len(entries))

	for _, entry := range entries {
		inserted, err := target.Import(ctx, entry)
		if err != nil {
			logger.Warn("failed to import entry", "id", entry.ID, "measure", entry.Record.Name, "error", err)
			skipped++
			continue
		}
		if !inserted {
			logger.Debug("entry already present", "id", entry.ID)
			skipped++
			continue
		}
		migrated++
	}
	return migrated, skipped, nil
}
