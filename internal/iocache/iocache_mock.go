package iocache

import (
	"context"
	"time"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(ctx context.Context, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(ctx, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordResult implements the HistoryStore interface.
func (m *MockHistoryStore) RecordResult(ctx context.Context, runID int64, result schema.MergeResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(ctx context.Context, runID int64, endTime time.Time, result schema.MergeResult) error {
	args := m.Called(ctx, runID, endTime, result)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns(ctx context.Context) ([]schema.MergeRunRecord, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.MergeRunRecord)
	return runs, args.Error(1)
}

// GetAllSummaries implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllSummaries(ctx context.Context) ([]schema.DailySummaryRecord, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]schema.DailySummaryRecord)
	return summaries, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
