package tz

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// FuzzNormalizeUTC checks that accepted instants are canonical and stable.
func FuzzNormalizeUTC(f *testing.F) {
	seeds := []string{
		"2024-06-01T07:00:00Z",
		"2024-06-01 07:00:00.5+05:30",
		"1717225200",
		"-1.25",
		"2024-02-30T00:00:00Z",
		"",
		"9999-12-31T23:59:59Z",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		got, err := Normalize(raw, UTC())
		if err != nil {
			if !errors.Is(err, schema.ErrMalformedTimestamp) {
				t.Fatalf("unexpected error class for %q: %v", raw, err)
			}
			return
		}
		if got.Location() != time.UTC {
			t.Fatalf("instant for %q is not UTC: %v", raw, got.Location())
		}
		again, err := Normalize(got.Format(time.RFC3339Nano), UTC())
		if err != nil || !again.Equal(got) {
			t.Fatalf("re-normalizing %q changed %v to %v (%v)", raw, got, again, err)
		}
	})
}

// FuzzNormalizeLocal checks that local parsing only fails with taxonomy errors.
func FuzzNormalizeLocal(f *testing.F) {
	f.Add("2024-03-10T02:30:00", "America/New_York")
	f.Add("2024-11-03 01:30", "EST")
	f.Add("2024-06-01T07:00", "Local")

	f.Fuzz(func(t *testing.T, raw, zone string) {
		got, err := Normalize(raw, Local(zone))
		if err != nil {
			switch {
			case errors.Is(err, schema.ErrMalformedTimestamp),
				errors.Is(err, schema.ErrUnknownTimezone),
				errors.Is(err, schema.ErrInvalidLocalTime):
				return
			default:
				t.Fatalf("unexpected error for %q in %q: %v", raw, zone, err)
			}
		}
		loc, lerr := LoadZone(zone)
		if lerr != nil {
			t.Fatalf("zone %q resolved during normalize but not after: %v", zone, lerr)
		}
		// The instant shows a wall reading that parses back to itself.
		back, err := NewParser(nil, schema.EarlierPolicy).Normalize(WallClock(got, loc), Local(zone))
		if err != nil {
			t.Fatalf("wall clock of %v did not parse back: %v", got, err)
		}
		later, _ := NewParser(nil, schema.LaterPolicy).Normalize(WallClock(got, loc), Local(zone))
		if !back.Equal(got) && !later.Equal(got) {
			t.Fatalf("round trip of %q in %q: %v vs %v", raw, zone, got, back)
		}
	})
}
