package outwriter

import (
	"os"

	"github.com/huangsam/healthmerge/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableUserWidth calculates the maximum width for user ids in table output
// based on terminal width and table configuration.
func GetMaxTableUserWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Day + six numeric columns, plus borders and padding
	baseWidth := 12 + 6*11 + 20

	available := termWidth - baseWidth
	if available < 8 {
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}
