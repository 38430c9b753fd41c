package cmd

import (
	"github.com/huangsam/healthmerge/core"
	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// normalizeCmd explains how one timestamp is interpreted.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <timestamp>",
	Short: "Show the UTC instant and calendar day of a single timestamp.",
	Long: `Debug helper that runs one timestamp through the same normalizer used by merge.

Without --zone the value is read as an absolute instant (ISO 8601 with an
offset, or epoch seconds). With --zone it is read as a wall-clock time in that
zone. The result shows the instant and the day it lands on in --reference-zone.

Examples:
  healthmerge normalize 2024-06-01T23:30:00Z --reference-zone Asia/Tokyo
  healthmerge normalize "2024-11-03 01:30:00" --zone America/New_York
  healthmerge normalize 1717290000 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteNormalize(rootCtx, cfg, args[0], viper.GetString("zone")); err != nil {
			contract.LogFatal("Cannot normalize timestamp", err)
		}
	},
}
