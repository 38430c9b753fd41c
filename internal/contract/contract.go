// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// HistoryManager defines the interface for reaching the run history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for recording merge runs and their summaries.
type HistoryStore interface {
	// BeginRun creates a new merge run and returns its unique ID
	BeginRun(ctx context.Context, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordResult stores the summaries, metric and rejections of a run
	RecordResult(ctx context.Context, runID int64, result schema.MergeResult) error

	// EndRun updates the run with completion data
	EndRun(ctx context.Context, runID int64, endTime time.Time, result schema.MergeResult) error

	// GetStatus returns status information about the history store
	GetStatus(ctx context.Context) (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns(ctx context.Context) ([]schema.MergeRunRecord, error)

	// GetAllSummaries returns every recorded daily summary
	GetAllSummaries(ctx context.Context) ([]schema.DailySummaryRecord, error)

	// Close closes the underlying connection
	Close() error
}
