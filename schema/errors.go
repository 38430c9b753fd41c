package schema

import (
	"errors"
	"fmt"
)

// Per-record failure taxonomy. Wrap these with %w so callers can use errors.Is.
var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrUnknownTimezone    = errors.New("unknown timezone")
	ErrInvalidLocalTime   = errors.New("invalid local time")
	ErrUnsupportedUnit    = errors.New("unsupported unit")
	ErrInvalidValue       = errors.New("invalid value")
)

// RecordError ties a per-record failure to the record that caused it.
type RecordError struct {
	Source   Source
	RecordID string
	Index    int    // position in the input collection
	Field    string // offending field, if known
	Err      error
}

// Error implements error.
func (e *RecordError) Error() string {
	id := e.RecordID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s record %s: %s: %v", e.Source, id, e.Field, e.Err)
	}
	return fmt.Sprintf("%s record %s: %v", e.Source, id, e.Err)
}

// Unwrap returns the underlying failure.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Reason classifies the failure against the taxonomy.
func (e *RecordError) Reason() RejectReason {
	return ReasonFor(e.Err)
}

// Rejection converts the error into its reportable form.
func (e *RecordError) Rejection() Rejection {
	return Rejection{
		Source:   e.Source,
		RecordID: e.RecordID,
		Index:    e.Index,
		Field:    e.Field,
		Reason:   e.Reason(),
		Detail:   e.Err.Error(),
	}
}

// ReasonFor maps an error onto the rejection taxonomy.
// Errors outside the taxonomy are reported as InvalidValue.
func ReasonFor(err error) RejectReason {
	switch {
	case errors.Is(err, ErrMalformedTimestamp):
		return MalformedTimestampReason
	case errors.Is(err, ErrUnknownTimezone):
		return UnknownTimezoneReason
	case errors.Is(err, ErrInvalidLocalTime):
		return InvalidLocalTimeReason
	case errors.Is(err, ErrUnsupportedUnit):
		return UnsupportedUnitReason
	default:
		return InvalidValueReason
	}
}
