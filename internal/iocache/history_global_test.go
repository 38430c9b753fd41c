package iocache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/healthmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClearHistory_SQLite(t *testing.T) {
	store, dbPath := newSQLiteStore(t)
	require.NoError(t, store.Close())

	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
}

func TestClearHistory_Validation(t *testing.T) {
	assert.Error(t, ClearHistory(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	assert.Error(t, ClearHistory("redis", "", ""))
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{Backend: "none"})
	assert.Equal(t, "History Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:        "sqlite",
		Connected:      true,
		TotalRuns:      2,
		LastRunID:      2,
		LastRunTime:    time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
		OldestRunTime:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		TotalSummaries: 4,
		TableSizes:     map[string]int64{mergeRunsTable: 2, dailySummariesTable: 4, rejectionsTable: 0},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 2")
	assert.Contains(t, out, "Oldest Run: 2024-06-01 09:00:00")
	assert.Contains(t, out, "Total Daily Summaries: 4")
	assert.Contains(t, out, "  record_rejections: 0 rows")
}

func TestExecuteHistoryExport(t *testing.T) {
	ctx := context.Background()
	avg := 400.0
	runs := []schema.MergeRunRecord{{RunID: 1, StartTime: time.Now(), AverageCalories: &avg}}
	summaries := []schema.DailySummaryRecord{{RunID: 1, UserID: "u1", Day: "2024-06-01", SleepEventCount: 1}}

	store := &MockHistoryStore{}
	store.On("GetStatus", mock.Anything).Return(schema.HistoryStatus{Backend: "sqlite", Connected: true, TotalRuns: 1, TotalSummaries: 1}, nil)
	store.On("GetAllRuns", mock.Anything).Return(runs, nil)
	store.On("GetAllSummaries", mock.Anything).Return(summaries, nil)
	mgr := &MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	base := filepath.Join(t.TempDir(), "history")
	var buf bytes.Buffer
	require.NoError(t, ExecuteHistoryExport(ctx, &buf, mgr, base))

	for _, suffix := range []string{".merge_runs.parquet", ".daily_summaries.parquet"} {
		_, err := os.Stat(base + suffix)
		assert.NoError(t, err, suffix)
	}
	assert.Contains(t, buf.String(), "Exported 1 merge runs")
	store.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestExecuteHistoryExport_Errors(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	t.Run("missing output file", func(t *testing.T) {
		err := ExecuteHistoryExport(ctx, &buf, &MockHistoryManager{}, "")
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("no store", func(t *testing.T) {
		mgr := &MockHistoryManager{}
		mgr.On("GetHistoryStore").Return(nil)
		err := ExecuteHistoryExport(ctx, &buf, mgr, "out")
		assert.ErrorContains(t, err, "not initialized")
	})

	t.Run("empty history", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus", mock.Anything).Return(schema.HistoryStatus{Connected: true}, nil)
		mgr := &MockHistoryManager{}
		mgr.On("GetHistoryStore").Return(store)
		err := ExecuteHistoryExport(ctx, &buf, mgr, "out")
		assert.ErrorContains(t, err, "no merge history found")
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus", mock.Anything).Return(schema.HistoryStatus{}, errors.New("boom"))
		mgr := &MockHistoryManager{}
		mgr.On("GetHistoryStore").Return(store)
		err := ExecuteHistoryExport(ctx, &buf, mgr, "out")
		assert.ErrorContains(t, err, "boom")
	})
}
