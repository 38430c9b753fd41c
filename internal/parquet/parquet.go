// Package parquet writes merge summaries and run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/healthmerge/schema"
	"github.com/parquet-go/parquet-go"
)

// MergeRun represents one recorded merge run.
// This struct maps to the merge_runs database table.
type MergeRun struct {
	RunID              int64      `parquet:"run_id,snappy"`
	StartTime          time.Time  `parquet:"start_time,snappy"`
	EndTime            *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs      *int32     `parquet:"run_duration_ms,optional,snappy"`
	SleepRecords       int32      `parquet:"sleep_records,snappy"`
	WorkoutRecords     int32      `parquet:"workout_records,snappy"`
	RejectedRecords    int32      `parquet:"rejected_records,snappy"`
	SummaryCount       int32      `parquet:"summary_count,snappy"`
	AverageCalories    *float64   `parquet:"average_calories,optional,snappy"`
	QualifyingDayCount int32      `parquet:"qualifying_day_count,snappy"`

	// ConfigParams contains the JSON-encoded merge settings (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DailySummary represents a stored per-user, per-day summary.
// This struct maps to the daily_summaries database table.
type DailySummary struct {
	RunID               int64    `parquet:"run_id,snappy"`
	Day                 string   `parquet:"day,snappy,dict"`
	User                string   `parquet:"user_id,snappy,dict"`
	TotalSleepMinutes   *float64 `parquet:"total_sleep_minutes,optional,snappy"`
	TotalCalories       *float64 `parquet:"total_calories,optional,snappy"`
	TotalWorkoutMinutes *float64 `parquet:"total_workout_minutes,optional,snappy"`
	AverageSleepQuality *float64 `parquet:"average_sleep_quality,optional,snappy"`
	SleepEventCount     int32    `parquet:"sleep_event_count,snappy"`
	WorkoutEventCount   int32    `parquet:"workout_event_count,snappy"`
}

// SummaryRow is one merged day for one user. Absent totals stay null.
type SummaryRow struct {
	Day                 string   `parquet:"day,snappy,dict"`
	User                string   `parquet:"user,snappy,dict"`
	TotalSleepMinutes   *float64 `parquet:"total_sleep_minutes,optional,snappy"`
	TotalCalories       *float64 `parquet:"total_calories,optional,snappy"`
	TotalWorkoutMinutes *float64 `parquet:"total_workout_minutes,optional,snappy"`
	AverageSleepQuality *float64 `parquet:"average_sleep_quality,optional,snappy"`
	SleepEventCount     int32    `parquet:"sleep_event_count,snappy"`
	WorkoutEventCount   int32    `parquet:"workout_event_count,snappy"`
}

// Write encodes rows to w using the schema inferred from T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteMergeRunsParquet writes merge runs to a Parquet file.
func WriteMergeRunsParquet(data []MergeRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteDailySummariesParquet writes stored daily summaries to a Parquet file.
func WriteDailySummariesParquet(data []DailySummary, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertMergeRunRecords converts schema.MergeRunRecord to MergeRun for Parquet export.
func ConvertMergeRunRecords(records []schema.MergeRunRecord) []MergeRun {
	result := make([]MergeRun, len(records))
	for i, record := range records {
		result[i] = MergeRun{
			RunID:              record.RunID,
			StartTime:          record.StartTime,
			EndTime:            record.EndTime,
			RunDurationMs:      record.RunDurationMs,
			SleepRecords:       record.SleepRecords,
			WorkoutRecords:     record.WorkoutRecords,
			RejectedRecords:    record.RejectedRecords,
			SummaryCount:       record.SummaryCount,
			AverageCalories:    record.AverageCalories,
			QualifyingDayCount: record.QualifyingDayCount,
			ConfigParams:       record.ConfigParams,
		}
	}
	return result
}

// ConvertDailySummaryRecords converts schema.DailySummaryRecord to DailySummary for Parquet export.
func ConvertDailySummaryRecords(records []schema.DailySummaryRecord) []DailySummary {
	result := make([]DailySummary, len(records))
	for i, record := range records {
		result[i] = DailySummary{
			RunID:               record.RunID,
			Day:                 record.Day,
			User:                record.UserID,
			TotalSleepMinutes:   record.TotalSleepMinutes,
			TotalCalories:       record.TotalCalories,
			TotalWorkoutMinutes: record.TotalWorkoutMinutes,
			AverageSleepQuality: record.AverageSleepQuality,
			SleepEventCount:     record.SleepEventCount,
			WorkoutEventCount:   record.WorkoutEventCount,
		}
	}
	return result
}

// ConvertSummaryRows converts merge output rows for Parquet output.
func ConvertSummaryRows(rows []schema.SummaryRow) []SummaryRow {
	result := make([]SummaryRow, len(rows))
	for i, row := range rows {
		result[i] = SummaryRow{
			Day:                 row.Day,
			User:                row.User,
			TotalSleepMinutes:   row.TotalSleepMinutes.Ptr(),
			TotalCalories:       row.TotalCalories.Ptr(),
			TotalWorkoutMinutes: row.TotalWorkoutMinutes.Ptr(),
			AverageSleepQuality: row.AverageSleepQuality.Ptr(),
			SleepEventCount:     int32(row.SleepEventCount),
			WorkoutEventCount:   int32(row.WorkoutEventCount),
		}
	}
	return result
}
