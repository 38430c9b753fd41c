package iocache

import (
	"fmt"
	"io"

	"github.com/huangsam/healthmerge/schema"
)

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Total Daily Summaries: %d\n", status.TotalSummaries)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range historyTables {
		if size, ok := status.TableSizes[table]; ok {
			_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, size)
		}
	}
}
