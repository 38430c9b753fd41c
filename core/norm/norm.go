// Package norm converts raw sleep and workout records into attributed events
// in canonical units.
package norm

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/healthmerge/core/tz"
	"github.com/huangsam/healthmerge/schema"
)

// Options configures a Normalizer.
type Options struct {
	ReferenceZone string            // zone for day attribution, default UTC
	UserZones     map[string]string // per-user override of ReferenceZone
	DefaultUser   string            // owner for records without a user id
	Ambiguity     schema.AmbiguityPolicy
	Zones         *tz.ZoneResolver // nil uses the shared resolver
}

// Normalizer turns RawEvents into AttributedEvents. It is safe for concurrent use.
type Normalizer struct {
	parser      *tz.Parser
	reference   *time.Location
	refName     string
	userZones   map[string]*time.Location
	userNames   map[string]string
	defaultUser string
}

// New validates opts and builds a Normalizer.
func New(opts Options) (*Normalizer, error) {
	parser := tz.NewParser(opts.Zones, opts.Ambiguity)
	zones := parser.Zones()

	refName := opts.ReferenceZone
	if strings.TrimSpace(refName) == "" {
		refName = schema.DefaultReferenceZone
	}
	reference, err := zones.Resolve(refName)
	if err != nil {
		return nil, fmt.Errorf("invalid reference zone: %w", err)
	}

	n := &Normalizer{
		parser:      parser,
		reference:   reference,
		refName:     tz.CanonicalZoneName(refName),
		userZones:   make(map[string]*time.Location, len(opts.UserZones)),
		userNames:   make(map[string]string, len(opts.UserZones)),
		defaultUser: strings.TrimSpace(opts.DefaultUser),
	}
	for user, zone := range opts.UserZones {
		loc, err := zones.Resolve(zone)
		if err != nil {
			return nil, fmt.Errorf("invalid zone for user %q: %w", user, err)
		}
		n.userZones[user] = loc
		n.userNames[user] = tz.CanonicalZoneName(zone)
	}
	return n, nil
}

// ReferenceZone returns the zone name used to attribute days for user.
func (n *Normalizer) ReferenceZone(user string) string {
	if name, ok := n.userNames[user]; ok {
		return name
	}
	return n.refName
}

func (n *Normalizer) referenceLocation(user string) *time.Location {
	if loc, ok := n.userZones[user]; ok {
		return loc
	}
	return n.reference
}

// Normalize converts one raw event. Failures are returned as *schema.RecordError.
func (n *Normalizer) Normalize(raw schema.RawEvent) (schema.AttributedEvent, error) {
	switch {
	case raw.Source == schema.SleepSource && raw.Sleep != nil:
		return n.normalizeSleep(raw.Index, *raw.Sleep)
	case raw.Source == schema.WorkoutSource && raw.Workout != nil:
		return n.normalizeWorkout(raw.Index, *raw.Workout)
	default:
		return schema.AttributedEvent{}, &schema.RecordError{
			Source:   raw.Source,
			RecordID: raw.RecordID(),
			Index:    raw.Index,
			Err:      fmt.Errorf("%w: record payload does not match source %q", schema.ErrInvalidValue, raw.Source),
		}
	}
}

// NormalizeAll converts events in order, collecting a rejection for every
// record that fails.
func (n *Normalizer) NormalizeAll(events []schema.RawEvent) ([]schema.AttributedEvent, []schema.Rejection) {
	accepted := make([]schema.AttributedEvent, 0, len(events))
	var rejected []schema.Rejection
	for _, raw := range events {
		event, err := n.Normalize(raw)
		if err != nil {
			rejected = append(rejected, asRejection(raw, err))
			continue
		}
		accepted = append(accepted, event)
	}
	return accepted, rejected
}

func asRejection(raw schema.RawEvent, err error) schema.Rejection {
	if recErr, ok := err.(*schema.RecordError); ok {
		return recErr.Rejection()
	}
	return (&schema.RecordError{Source: raw.Source, RecordID: raw.RecordID(), Index: raw.Index, Err: err}).Rejection()
}

func (n *Normalizer) user(id string) string {
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		return trimmed
	}
	return n.defaultUser
}

// timeRepresentation builds the tz representation for a record, falling back
// to kind when the record leaves it blank.
func timeRepresentation(declared schema.Representation, zone string, fallback schema.Representation) tz.Representation {
	kind := schema.Representation(strings.ToLower(strings.TrimSpace(string(declared))))
	if kind == "" {
		kind = fallback
	}
	return tz.Representation{Kind: kind, Zone: zone}
}

func (n *Normalizer) normalizeSleep(index int, rec schema.SleepRecord) (schema.AttributedEvent, error) {
	fail := func(field string, err error) (schema.AttributedEvent, error) {
		return schema.AttributedEvent{}, &schema.RecordError{
			Source: schema.SleepSource, RecordID: rec.ID, Index: index, Field: field, Err: err,
		}
	}
	if rec.DecodeErr != nil {
		return fail("", fmt.Errorf("%w: %v", schema.ErrInvalidValue, rec.DecodeErr))
	}

	user := n.user(rec.UserID)
	if user == "" {
		return fail("user_id", fmt.Errorf("%w: missing user id", schema.ErrInvalidValue))
	}
	rep := timeRepresentation(rec.Representation, rec.Zone, schema.UTCRepresentation)

	var start, end time.Time
	var hasStart, hasEnd bool
	if strings.TrimSpace(rec.Start) != "" {
		t, err := n.parser.Normalize(rec.Start, rep)
		if err != nil {
			return fail("start_time", err)
		}
		start, hasStart = t, true
	}
	if strings.TrimSpace(rec.End) != "" {
		t, err := n.parser.Normalize(rec.End, rep)
		if err != nil {
			return fail("end_time", err)
		}
		end, hasEnd = t, true
	}

	duration := schema.None[time.Duration]()
	if value, ok := rec.Duration.Get(); ok {
		unit := rec.DurationUnit
		if strings.TrimSpace(unit) == "" {
			unit = DefaultSleepDurationUnit
		}
		d, err := ToDuration(value, unit)
		if err != nil {
			return fail("duration", err)
		}
		duration = schema.Some(d)
	}

	switch {
	case hasStart && hasEnd:
		if end.Before(start) {
			return fail("end_time", fmt.Errorf("%w: end %s is before start %s",
				schema.ErrInvalidValue, end.Format(time.RFC3339), start.Format(time.RFC3339)))
		}
		if !duration.Valid {
			duration = schema.Some(end.Sub(start))
		}
	case hasStart && duration.Valid:
		end = start.Add(duration.Value)
	case !hasEnd:
		return fail("end_time", fmt.Errorf("%w: needs an end time, or a start time and duration", schema.ErrInvalidValue))
	}
	if d, ok := duration.Get(); ok && d > MaxSessionDuration {
		return fail("duration", fmt.Errorf("%w: sleep of %v exceeds %v", schema.ErrInvalidValue, d, MaxSessionDuration))
	}

	quality := schema.None[float64]()
	if q, ok := rec.Quality.Get(); ok {
		if err := checkQuantity(q); err != nil {
			return fail("quality_score", err)
		}
		quality = schema.Some(q)
	}

	loc := n.referenceLocation(user)
	return schema.AttributedEvent{
		Source:        schema.SleepSource,
		RecordID:      rec.ID,
		Index:         index,
		User:          user,
		Instant:       end,
		Zone:          n.ReferenceZone(user),
		Day:           tz.AttributeDay(end, loc),
		SleepDuration: duration,
		SleepQuality:  quality,
	}, nil
}

func (n *Normalizer) normalizeWorkout(index int, rec schema.WorkoutRecord) (schema.AttributedEvent, error) {
	fail := func(field string, err error) (schema.AttributedEvent, error) {
		return schema.AttributedEvent{}, &schema.RecordError{
			Source: schema.WorkoutSource, RecordID: rec.ID, Index: index, Field: field, Err: err,
		}
	}
	if rec.DecodeErr != nil {
		return fail("", fmt.Errorf("%w: %v", schema.ErrInvalidValue, rec.DecodeErr))
	}

	user := n.user(rec.UserID)
	if user == "" {
		return fail("user_id", fmt.Errorf("%w: missing user id", schema.ErrInvalidValue))
	}
	rep := timeRepresentation(rec.Representation, rec.Zone, schema.LocalRepresentation)

	start, err := n.parser.Normalize(rec.Start, rep)
	if err != nil {
		field := "timestamp"
		if rep.Kind == schema.LocalRepresentation && schema.ReasonFor(err) == schema.UnknownTimezoneReason {
			field = "timezone"
		}
		return fail(field, err)
	}

	duration := schema.None[time.Duration]()
	if value, ok := rec.Duration.Get(); ok {
		unit := rec.DurationUnit
		if strings.TrimSpace(unit) == "" {
			unit = DefaultWorkoutDurationUnit
		}
		d, err := ToDuration(value, unit)
		if err != nil {
			return fail("duration", err)
		}
		if d > MaxSessionDuration {
			return fail("duration", fmt.Errorf("%w: workout of %v exceeds %v", schema.ErrInvalidValue, d, MaxSessionDuration))
		}
		duration = schema.Some(d)
	}

	energy := schema.None[schema.Energy]()
	if value, ok := rec.Calories.Get(); ok {
		unit := rec.EnergyUnit
		if strings.TrimSpace(unit) == "" {
			unit = DefaultEnergyUnit
		}
		e, err := ToEnergy(value, unit)
		if err != nil {
			return fail("calories_burned", err)
		}
		if e > MaxWorkoutEnergy {
			return fail("calories_burned", fmt.Errorf("%w: %v kcal exceeds %v kcal", schema.ErrInvalidValue, e.Kcal(), MaxWorkoutEnergy.Kcal()))
		}
		energy = schema.Some(e)
	}

	loc := n.referenceLocation(user)
	return schema.AttributedEvent{
		Source:          schema.WorkoutSource,
		RecordID:        rec.ID,
		Index:           index,
		User:            user,
		Instant:         start,
		Zone:            n.ReferenceZone(user),
		Day:             tz.AttributeDay(start, loc),
		WorkoutDuration: duration,
		Energy:          energy,
	}, nil
}
