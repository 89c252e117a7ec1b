package container

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gomeasure/adapters/excel"
	"gomeasure/adapters/filestore"
	"gomeasure/adapters/manifest"
	"gomeasure/adapters/sqlstore"
	"gomeasure/app"
	"gomeasure/domain/core"
	"gomeasure/internal/circularity"
	"gomeasure/internal/config"
	"gomeasure/internal/errors"
	"gomeasure/internal/measure"
	"gomeasure/internal/migration"
	"gomeasure/internal/telemetry"
	"gomeasure/ports"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Recorder *telemetry.Recorder

	// Ledger
	Records ports.RecordRepository

	// Validation components
	Detector   *circularity.Detector
	Validation *app.ValidationService
}

// New creates a container and opens the configured record ledger. SQL
// ledgers are migrated on open.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Detector: circularity.NewDetector(circularity.WithLogger(logger)),
	}

	if cfg.Metrics.Enabled {
		c.Registry = prometheus.NewRegistry()
		c.Recorder = telemetry.NewRecorder(c.Registry, cfg.Metrics.Namespace)
	}

	if err := c.initRecords(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize record ledger: %w", err)
	}

	var observer app.PreflightObserver
	if c.Recorder != nil {
		observer = c.Recorder
	}
	c.Validation = app.NewValidationService(c.Detector, c.Records, observer, logger)

	logger.Info("container initialized", "component", "container", "storage", cfg.Storage.Driver, "metrics", cfg.Metrics.Enabled)
	return c, nil
}

// initRecords opens the ledger selected by Storage.Driver
func (c *Container) initRecords(ctx context.Context) error {
	storage := c.Config.Storage
	switch storage.Driver {
	case config.DriverFile:
		store, err := filestore.NewRecordStore(storage.RecordDir, core.SystemClock, c.Logger)
		if err != nil {
			return err
		}
		c.Records = store
		return nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := sqlstore.Open(ctx, storage.Driver, storage.DatabaseURL)
		if err != nil {
			return err
		}
		if err := migration.NewRunner(c.Logger).Run(ctx, db); err != nil {
			db.Close()
			return err
		}
		c.DB = db
		c.Records = sqlstore.NewRecordRepository(db, core.SystemClock)
		return nil
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown storage driver %q", storage.Driver))
	}
}

// GateOptions configures a validation gate from the container's settings.
func (c *Container) GateOptions() []measure.Option {
	opts := []measure.Option{
		measure.WithLogger(c.Logger),
		measure.WithBootstrap(c.Config.BootstrapSettings()),
	}
	if c.Recorder != nil {
		opts = append(opts, measure.WithObserver(c.Recorder))
	}
	return opts
}

// GroundTruthLoader picks a loader by file extension: YAML and JSON files are
// manifests, everything else a spreadsheet or CSV.
func (c *Container) GroundTruthLoader(path string) ports.GroundTruthLoader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return manifest.NewLoader(path, c.Logger)
	default:
		pf := c.Config.Preflight
		return excel.NewGroundTruthLoader(excel.Config{
			FilePath:      path,
			Sheet:         pf.Sheet,
			MetadataSheet: pf.MetadataSheet,
			SampleColumn:  pf.SampleColumn,
			LabelColumn:   pf.LabelColumn,
		}, c.Logger)
	}
}

// Shutdown writes the metrics textfile if configured and closes the database.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.Registry != nil && c.Config.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(c.Config.Metrics.Textfile, c.Registry); err != nil {
			firstErr = errors.IOError(c.Config.Metrics.Textfile, err)
		} else {
			c.Logger.Debug("metrics written", "component", "container", "file", c.Config.Metrics.Textfile)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = errors.DatabaseError("failed to close database", err)
		}
	}
	return firstErr
}
