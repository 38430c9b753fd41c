package schema

import "time"

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      int64            `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalSummaries int              `json:"total_summaries"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// MergeRunRecord represents a row from the merge_runs table.
type MergeRunRecord struct {
	RunID              int64
	StartTime          time.Time
	EndTime            *time.Time
	RunDurationMs      *int32
	SleepRecords       int32
	WorkoutRecords     int32
	RejectedRecords    int32
	SummaryCount       int32
	AverageCalories    *float64
	QualifyingDayCount int32
	ConfigParams       *string
}

// DailySummaryRecord represents a row from the daily_summaries table.
type DailySummaryRecord struct {
	RunID               int64
	UserID              string
	Day                 string
	TotalSleepMinutes   *float64
	TotalCalories       *float64
	TotalWorkoutMinutes *float64
	AverageSleepQuality *float64
	SleepEventCount     int32
	WorkoutEventCount   int32
}

// RejectionRecord represents a row from the record_rejections table.
type RejectionRecord struct {
	RunID    int64
	Source   string
	RecordID string
	Index    int32
	Reason   string
	Detail   string
}

// SummaryRecord converts a flat summary row into its stored form.
func (r SummaryRow) SummaryRecord(runID int64) DailySummaryRecord {
	return DailySummaryRecord{
		RunID:               runID,
		UserID:              r.User,
		Day:                 r.Day,
		TotalSleepMinutes:   r.TotalSleepMinutes.Ptr(),
		TotalCalories:       r.TotalCalories.Ptr(),
		TotalWorkoutMinutes: r.TotalWorkoutMinutes.Ptr(),
		AverageSleepQuality: r.AverageSleepQuality.Ptr(),
		SleepEventCount:     int32(r.SleepEventCount),
		WorkoutEventCount:   int32(r.WorkoutEventCount),
	}
}
