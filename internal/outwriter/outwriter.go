// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMerge prints merge results using the configured output format.
func (ow *OutWriter) WriteMerge(result schema.MergeResult, cfg *contract.Config, duration time.Duration) error {
	return WriteMergeResults(result, cfg, duration)
}

// WriteNormalized prints a timestamp explanation using the configured output format.
func (ow *OutWriter) WriteNormalized(result schema.NormalizedTimestamp, cfg *contract.Config) error {
	return WriteNormalizedTimestamp(result, cfg)
}
