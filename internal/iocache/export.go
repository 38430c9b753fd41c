package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/internal/parquet"
)

// ExecuteHistoryExport exports recorded runs and summaries to Parquet files
// named after outputFile.
func ExecuteHistoryExport(ctx context.Context, w io.Writer, mgr contract.HistoryManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetHistoryStore()
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no merge history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total merge runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total daily summaries: %d\n", status.TotalSummaries)

	runs, err := store.GetAllRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve merge runs: %w", err)
	}
	summaries, err := store.GetAllSummaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve daily summaries: %w", err)
	}

	runsFile := outputFile + ".merge_runs.parquet"
	if err := parquet.WriteMergeRunsParquet(parquet.ConvertMergeRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write merge runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d merge runs to: %s\n", len(runs), runsFile)

	summariesFile := outputFile + ".daily_summaries.parquet"
	if err := parquet.WriteDailySummariesParquet(parquet.ConvertDailySummaryRecords(summaries), summariesFile); err != nil {
		return fmt.Errorf("failed to write daily summaries: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d daily summaries to: %s\n", len(summaries), summariesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
