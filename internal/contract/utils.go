package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/healthmerge/schema"
)

// historyDBFile is the default SQLite file for run history.
const historyDBFile = ".healthmerge_history.db"

// Color variables for console output.
var (
	OKColor      = color.New(color.FgGreen, color.Bold) // metric produced a value
	EmptyColor   = color.New(color.FgYellow)            // metric had nothing to average
	RejectColor  = color.New(color.FgRed, color.Bold)   // record failed normalization
	AbsentColor  = color.New(color.FgHiBlack)           // value not recorded
	ReasonColors = map[schema.RejectReason]*color.Color{
		schema.MalformedTimestampReason: color.New(color.FgRed),
		schema.UnknownTimezoneReason:    color.New(color.FgMagenta),
		schema.InvalidLocalTimeReason:   color.New(color.FgYellow),
		schema.UnsupportedUnitReason:    color.New(color.FgCyan),
		schema.InvalidValueReason:       color.New(color.FgRed, color.Bold),
	}
)

// GetStatusLabel returns the metric status, colored for console output when useColors is set.
func GetStatusLabel(status schema.MetricStatus, useColors bool) string {
	text := string(status)
	if !useColors {
		return text
	}
	if status == schema.MetricOK {
		return OKColor.Sprint(text)
	}
	return EmptyColor.Sprint(text)
}

// GetReasonLabel returns the rejection reason, colored for console output when useColors is set.
func GetReasonLabel(reason schema.RejectReason, useColors bool) string {
	text := string(reason)
	if !useColors {
		return text
	}
	if c, ok := ReasonColors[reason]; ok {
		return c.Sprint(text)
	}
	return RejectColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// LogRejection logs a skipped record to stderr.
func LogRejection(r schema.Rejection) {
	id := r.RecordID
	if id == "" {
		id = fmt.Sprintf("#%d", r.Index)
	}
	LogWarn(fmt.Sprintf("skipping %s record %s", r.Source, id), fmt.Errorf("%s: %s", r.Reason, r.Detail))
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return historyDBFile
	}
	return filepath.Join(homeDir, historyDBFile)
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
