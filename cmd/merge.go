package cmd

import (
	"github.com/huangsam/healthmerge/core"
	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/spf13/cobra"
)

// mergeCmd merges the two exports into daily summaries.
var mergeCmd = &cobra.Command{
	Use:   "merge <sleep.json> <workouts.json>",
	Short: "Merge sleep and workout exports into per-user daily summaries.",
	Long: `Normalize every timestamp, attribute each event to a calendar day in the
reference zone and aggregate sleep, calories and workout time per user and day.

Sleep sessions count toward the day on which they end. Workouts count toward
the day on which they start. Records that cannot be normalized are reported
and skipped while the rest still merge.

The report ends with the average calories burned on days whose total sleep is
strictly below --sleep-threshold.

Examples:
  # Merge with days attributed in UTC
  healthmerge merge sleep.json workouts.json

  # Attribute days in New York time and treat under 7 hours as low sleep
  healthmerge merge sleep.json workouts.json --reference-zone America/New_York --sleep-threshold 7h

  # Export one user's summaries to CSV
  healthmerge merge sleep.json workouts.json --user u1 --output csv -o u1.csv`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMerge(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot merge health data", err)
		}
	},
}
