// Command healthmerge merges sleep and workout exports into daily summaries.
package main

import (
	"os"

	"github.com/huangsam/healthmerge/cmd"
	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/internal/iocache"
)

func main() {
	cmd.SetHistoryManager(iocache.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("failed to stop profiling", perr)
	}
	iocache.CloseHistory()

	if err != nil {
		contract.LogWarn("command failed", err)
		os.Exit(1)
	}
}
