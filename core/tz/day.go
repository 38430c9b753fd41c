package tz

import (
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// AttributeDay returns the civil date of instant in loc.
// It is the only place civil days are derived from instants.
func AttributeDay(instant time.Time, loc *time.Location) schema.CivilDay {
	return schema.CivilDayOf(instant.In(loc))
}

// AttributeDayIn is AttributeDay with the zone given by name.
func (r *ZoneResolver) AttributeDayIn(instant time.Time, zone string) (schema.CivilDay, error) {
	loc, err := r.Resolve(zone)
	if err != nil {
		return schema.CivilDay{}, err
	}
	return AttributeDay(instant, loc), nil
}

// WallClock formats instant as a wall-clock reading in loc, the inverse of
// parsing with the local representation.
func WallClock(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format("2006-01-02T15:04:05.999999999")
}
