package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitemaster/dpr/internal/testutil"
)

func TestHistoryRepo_AppendAndListOrdered(t *testing.T) {
	database := testutil.NewTestDB(t)
	records := NewSQLiteRecordRepo(database)
	history := NewSQLiteHistoryRepo(database)
	ctx := context.Background()
	require.NoError(t, records.Create(ctx, storedRecord("r1", "Slab pour", "in progress")))

	day := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, history.Append(ctx, "r1", testutil.NewTestEntry(5, day.AddDate(0, 0, 2), testutil.WithEntryID("h2"), testutil.WithRemarks("second"))))
	require.NoError(t, history.Append(ctx, "r1", testutil.NewTestEntry(10, day, testutil.WithEntryID("h1"), testutil.WithEntryStatus("in_progress"))))

	entries, err := history.ListByRecord(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h1", entries[0].ID)
	assert.Equal(t, 10.0, entries[0].Quantity)
	assert.Equal(t, "in progress", entries[0].RawStatus)
	assert.True(t, day.Equal(entries[0].At))
	assert.Equal(t, "h2", entries[1].ID)
	assert.Equal(t, "second", entries[1].Remarks)
}

func TestHistoryRepo_ListByRecordsGroups(t *testing.T) {
	database := testutil.NewTestDB(t)
	records := NewSQLiteRecordRepo(database)
	history := NewSQLiteHistoryRepo(database)
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, records.Create(ctx, storedRecord(id, id, "idle")))
	}
	now := time.Now()
	require.NoError(t, history.Append(ctx, "r1", testutil.NewTestEntry(1, now)))
	require.NoError(t, history.Append(ctx, "r2", testutil.NewTestEntry(2, now)))
	require.NoError(t, history.Append(ctx, "r2", testutil.NewTestEntry(3, now)))

	grouped, err := history.ListByRecords(ctx, []string{"r1", "r2", "r3"})
	require.NoError(t, err)
	assert.Len(t, grouped["r1"], 1)
	assert.Len(t, grouped["r2"], 2)
	assert.Empty(t, grouped["r3"])

	empty, err := history.ListByRecords(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHistoryRepo_RejectsUnknownRecordAndNegativeProgress(t *testing.T) {
	database := testutil.NewTestDB(t)
	records := NewSQLiteRecordRepo(database)
	history := NewSQLiteHistoryRepo(database)
	ctx := context.Background()
	require.NoError(t, records.Create(ctx, storedRecord("r1", "Slab", "idle")))

	assert.Error(t, history.Append(ctx, "ghost", testutil.NewTestEntry(1, time.Now())))
	assert.Error(t, history.Append(ctx, "r1", testutil.NewTestEntry(-1, time.Now())))
}
