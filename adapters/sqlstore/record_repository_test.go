package sqlstore

import (
	"context"
	"testing"
	"time"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
	"gomeasure/internal/migration"
	"gomeasure/ports"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (*sqlx.DB, func() time.Time) {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner(nil).Run(ctx, db))

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	return db, func() time.Time {
		tick++
		// sub-second offsets exercise ordering of fractional timestamps
		return base.Add(time.Duration(tick) * 500 * time.Millisecond)
	}
}

func record(name string, f1 float64) validation.Record {
	return validation.Record{
		Name:              name,
		Description:       "test measure",
		GroundTruthSource: "panel-2024",
		ValidationMetrics: validation.Metrics{
			Accuracy:            f1,
			Precision:           f1,
			Recall:              f1,
			F1:                  f1,
			CohensKappa:         f1 - 0.1,
			ConfusionMatrix:     [][]int{{10, 2}, {1, 17}},
			Classes:             []string{"0", "1"},
			ConfidenceIntervals: map[string]validation.Interval{validation.MetricF1: {Lower: f1 - 0.05, Upper: f1 + 0.02}},
			ConfidenceLevel:     0.95,
			SampleSize:          30,
			Timestamp:           time.Date(2024, 6, 1, 8, 0, 0, 123, time.UTC),
		},
		Limitations: []string{"English only"},
		IsValidated: true,
	}
}

func TestAppendAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, clock := newLedger(t)
	repo := NewRecordRepository(db, clock)

	want := record("sentiment", 0.91)
	entry, err := repo.Append(ctx, want)
	require.NoError(t, err)
	_, err = core.ParseRecordID(entry.ID.String())
	require.NoError(t, err)

	got, err := repo.Get(ctx, entry.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(*entry, *got); diff != "" {
		t.Fatalf("stored entry differs (-appended +loaded):\n%s", diff)
	}
	if diff := cmp.Diff(want, got.Record); diff != "" {
		t.Fatalf("record differs (-want +got):\n%s", diff)
	}
}

func TestAppendRejectsUnvalidated(t *testing.T) {
	db, clock := newLedger(t)
	repo := NewRecordRepository(db, clock)

	rec := record("draft", 0.5)
	rec.IsValidated = false
	_, err := repo.Append(context.Background(), rec)
	assert.ErrorIs(t, err, core.ErrNotValidated)
}

func TestListByMeasureNewestFirst(t *testing.T) {
	ctx := context.Background()
	db, clock := newLedger(t)
	repo := NewRecordRepository(db, clock)

	var ids []core.RecordID
	for _, f1 := range []float64{0.8, 0.85, 0.9} {
		e, err := repo.Append(ctx, record("sentiment", f1))
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	_, err := repo.Append(ctx, record("toxicity", 0.75))
	require.NoError(t, err)

	all, err := repo.ListByMeasure(ctx, "sentiment", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []core.RecordID{ids[2], ids[1], ids[0]}, []core.RecordID{all[0].ID, all[1].ID, all[2].ID})

	limited, err := repo.ListByMeasure(ctx, "sentiment", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	latest, err := repo.Latest(ctx, "sentiment")
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)
	assert.Equal(t, 0.9, latest.Record.ValidationMetrics.F1)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	db, clock := newLedger(t)
	repo := NewRecordRepository(db, clock)

	_, err := repo.Get(ctx, core.NewRecordID())
	assert.True(t, core.IsNotFoundError(err))

	_, err = repo.Latest(ctx, "unknown")
	assert.True(t, core.IsNotFoundError(err))

	empty, err := repo.ListByMeasure(ctx, "unknown", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, clock := newLedger(t)
	repo := NewRecordRepository(db, clock)
	importer, ok := repo.(ports.RecordImporter)
	require.True(t, ok)

	entry := validation.LedgerEntry{
		ID:         core.NewRecordID(),
		RecordedAt: time.Date(2023, 1, 2, 3, 4, 5, 6, time.UTC),
		Record:     record("legacy", 0.88),
	}

	inserted, err := importer.Import(ctx, entry)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = importer.Import(ctx, entry)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := repo.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, entry.RecordedAt.Equal(got.RecordedAt))
	assert.Equal(t, entry.Record.Name, got.Record.Name)
}
