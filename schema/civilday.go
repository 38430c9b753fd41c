package schema

import (
	"fmt"
	"time"
)

// CivilDateFormat is the text form of a CivilDay.
const CivilDateFormat = "2006-01-02"

// CivilDay is a calendar date with no time or zone attached.
type CivilDay struct {
	Year  int
	Month time.Month
	Day   int
}

// CivilDayOf returns the calendar date of t in t's own location.
func CivilDayOf(t time.Time) CivilDay {
	y, m, d := t.Date()
	return CivilDay{Year: y, Month: m, Day: d}
}

// ParseCivilDay parses a YYYY-MM-DD string.
func ParseCivilDay(s string) (CivilDay, error) {
	t, err := time.Parse(CivilDateFormat, s)
	if err != nil {
		return CivilDay{}, fmt.Errorf("invalid civil day %q: %w", s, err)
	}
	return CivilDayOf(t), nil
}

// String returns the YYYY-MM-DD form.
func (d CivilDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero value.
func (d CivilDay) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d falls strictly before other.
func (d CivilDay) Before(other CivilDay) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Compare returns -1, 0 or +1 ordering d against other.
func (d CivilDay) Compare(other CivilDay) int {
	switch {
	case d.Before(other):
		return -1
	case other.Before(d):
		return 1
	default:
		return 0
	}
}

// Start returns midnight of d in UTC, for storage columns that need a time value.
func (d CivilDay) Start() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// MarshalText implements encoding.TextMarshaler.
func (d CivilDay) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *CivilDay) UnmarshalText(data []byte) error {
	parsed, err := ParseCivilDay(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
