package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/internal/parquet"
	"github.com/huangsam/healthmerge/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// absentText marks a quantity with no contributing records in the table.
const absentText = "-"

// summaryCSVHeader is shared by the CSV writer and its tests.
var summaryCSVHeader = []string{
	"day",
	"user",
	"total_sleep_minutes",
	"total_calories",
	"total_workout_minutes",
	"average_sleep_quality",
	"sleep_event_count",
	"workout_event_count",
}

// WriteMergeResults outputs the merge results, dispatching based on the output format configured.
func WriteMergeResults(result schema.MergeResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMergeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMergeCSV(w, result, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for %s output", schema.ParquetOut)
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertSummaryRows(result.Rows()))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMergeTable(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeMergeJSON writes the full report: metadata, summaries, metric and rejections.
func writeMergeJSON(w io.Writer, result schema.MergeResult) error {
	return writeJSON(w, result.Report())
}

// writeMergeCSV writes one row per summary. Absent quantities are empty cells.
func writeMergeCSV(w io.Writer, result schema.MergeResult, precision int) error {
	_, fmtOptional := createFormatters(precision, "")
	return writeCSVWithHeader(w, summaryCSVHeader, func(cw *csv.Writer) error {
		for _, row := range result.Rows() {
			rec := []string{
				row.Day,
				row.User,
				fmtOptional(row.TotalSleepMinutes),
				fmtOptional(row.TotalCalories),
				fmtOptional(row.TotalWorkoutMinutes),
				fmtOptional(row.AverageSleepQuality),
				strconv.Itoa(row.SleepEventCount),
				strconv.Itoa(row.WorkoutEventCount),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeMergeTable generates and writes the human-readable table followed by
// the metric and any rejected records.
func writeMergeTable(w io.Writer, result schema.MergeResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision, absentText)
	cell := func(v schema.Optional[float64]) string {
		text := fmtOptional(v)
		if !v.Valid && cfg.UseColors {
			return contract.AbsentColor.Sprint(text)
		}
		return text
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "User", "Sleep (min)", "Calories", "Workout (min)", "Quality", "Sleeps", "Workouts"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	userWidth := GetMaxTableUserWidth(cfg)
	var data [][]string
	for _, row := range result.Rows() {
		data = append(data, []string{
			row.Day,
			contract.TruncateText(row.User, userWidth),
			cell(row.TotalSleepMinutes),
			cell(row.TotalCalories),
			cell(row.TotalWorkoutMinutes),
			cell(row.AverageSleepQuality),
			strconv.Itoa(row.SleepEventCount),
			strconv.Itoa(row.WorkoutEventCount),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if err := writeMetricText(w, result.Metric, cfg, fmtFloat); err != nil {
		return err
	}
	if err := writeRejectionsText(w, result.Rejections, cfg.UseColors); err != nil {
		return err
	}

	stats := result.Stats
	if _, err := fmt.Fprintf(w, "Merged %d of %d sleep and %d of %d workout records into %d daily summaries\n",
		stats.SleepRecordsAccepted, stats.SleepRecordsRead, stats.WorkoutRecordsAccepted, stats.WorkoutRecordsRead,
		len(result.Summaries)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Merge completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend)
	return err
}

// writeMetricText prints the low-sleep calorie metric.
func writeMetricText(w io.Writer, m schema.Metric, cfg *contract.Config, fmtFloat func(float64) string) error {
	status := contract.GetStatusLabel(m.Status, cfg.UseColors)
	threshold := fmtFloat(m.Threshold.Minutes())

	avg, ok := m.AverageCalories.Get()
	if !ok {
		_, err := fmt.Fprintf(w, "Average calories on days with under %s min of sleep: n/a (%d low-sleep days) [%s]\n",
			threshold, m.LowSleepDayCount, status)
		return err
	}
	_, err := fmt.Fprintf(w, "Average calories on days with under %s min of sleep: %s over %d of %d low-sleep days [%s]\n",
		threshold, fmtFloat(avg), m.QualifyingDayCount(), m.LowSleepDayCount, status)
	return err
}

// writeRejectionsText lists records that failed normalization.
func writeRejectionsText(w io.Writer, rejections []schema.Rejection, useColors bool) error {
	if len(rejections) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Rejected %d records:\n", len(rejections)); err != nil {
		return err
	}
	for _, r := range rejections {
		id := r.RecordID
		if id == "" {
			id = "(no id)"
		}
		field := ""
		if r.Field != "" {
			field = r.Field + ": "
		}
		if _, err := fmt.Fprintf(w, "  %s %s #%d %s %s%s\n",
			r.Source, id, r.Index, contract.GetReasonLabel(r.Reason, useColors), field, r.Detail); err != nil {
			return err
		}
	}
	return nil
}
