package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/schema"
)

// WriteNormalizedTimestamp prints how a timestamp was interpreted.
// Only JSON and text are meaningful for a single value; other formats fall back to text.
func WriteNormalizedTimestamp(result schema.NormalizedTimestamp, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeNormalizedText(w, result)
	}, "Wrote text")
}

func writeNormalizedText(w io.Writer, result schema.NormalizedTimestamp) error {
	source := string(result.Representation)
	if result.Zone != "" {
		source += " in " + result.Zone
	}
	lines := [][2]string{
		{"Input", fmt.Sprintf("%s (%s)", result.Input, source)},
		{"Instant (UTC)", result.Instant},
		{"Reference zone", result.ReferenceZone},
		{"Wall clock", result.WallClock},
		{"Day", result.Day.String()},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%-15s %s\n", line[0]+":", line[1]); err != nil {
			return err
		}
	}
	return nil
}
