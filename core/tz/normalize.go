package tz

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// Timestamps outside this window are rejected as malformed.
var (
	minInstant = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxInstant = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

var epochRe = regexp.MustCompile(`^(-?\d+)(?:\.(\d{1,9}))?$`)

// instantLayouts are tried in order for the utc representation.
var instantLayouts = []string{
	time.RFC3339, // fractional seconds are accepted when parsing
	"2006-01-02T15:04Z07:00",
}

// wallLayouts are tried in order for the local representation.
var wallLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Representation declares how a raw timestamp should be read.
type Representation struct {
	Kind schema.Representation
	Zone string // only used by the local kind
}

// UTC is the representation for absolute instants.
func UTC() Representation {
	return Representation{Kind: schema.UTCRepresentation}
}

// Local is the representation for wall-clock readings in zone.
func Local(zone string) Representation {
	return Representation{Kind: schema.LocalRepresentation, Zone: zone}
}

// Parser converts raw timestamps to canonical instants.
type Parser struct {
	zones  *ZoneResolver
	policy schema.AmbiguityPolicy
}

// NewParser creates a parser. A nil resolver uses the shared one and an empty
// policy means earlier.
func NewParser(zones *ZoneResolver, policy schema.AmbiguityPolicy) *Parser {
	if zones == nil {
		zones = defaultZones
	}
	if policy == "" {
		policy = schema.EarlierPolicy
	}
	return &Parser{zones: zones, policy: policy}
}

// Zones returns the resolver used by the parser.
func (p *Parser) Zones() *ZoneResolver {
	return p.zones
}

var defaultParser = NewParser(nil, schema.EarlierPolicy)

// Normalize converts raw to a UTC instant using the default parser.
func Normalize(raw string, rep Representation) (time.Time, error) {
	return defaultParser.Normalize(raw, rep)
}

// Normalize converts raw to a UTC instant according to rep.
func (p *Parser) Normalize(raw string, rep Representation) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", schema.ErrMalformedTimestamp)
	}

	switch rep.Kind {
	case schema.UTCRepresentation, "":
		return parseInstant(raw)
	case schema.LocalRepresentation:
		loc, err := p.zones.Resolve(rep.Zone)
		if err != nil {
			return time.Time{}, err
		}
		wall, err := parseWall(raw)
		if err != nil {
			return time.Time{}, err
		}
		instant, err := resolveWall(wall, loc, p.policy)
		if err != nil {
			return time.Time{}, err
		}
		return inRange(instant, raw)
	default:
		return time.Time{}, fmt.Errorf("%w: unknown representation %q", schema.ErrMalformedTimestamp, rep.Kind)
	}
}

// parseInstant handles RFC 3339 strings and Unix epoch seconds.
func parseInstant(raw string) (time.Time, error) {
	if m := epochRe.FindStringSubmatch(raw); m != nil {
		return parseEpoch(m[1], m[2], raw)
	}

	s := withTSeparator(raw)
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return inRange(t.UTC(), raw)
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not RFC 3339 or epoch seconds", schema.ErrMalformedTimestamp, raw)
}

func parseEpoch(secPart, fracPart, raw string) (time.Time, error) {
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", schema.ErrMalformedTimestamp, raw, err)
	}
	var nsec int64
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", 9-len(fracPart))
		nsec, _ = strconv.ParseInt(padded, 10, 64)
		if strings.HasPrefix(secPart, "-") {
			nsec = -nsec
		}
	}
	if sec < minInstant.Unix() || sec > maxInstant.Unix() {
		return time.Time{}, fmt.Errorf("%w: %q is out of range", schema.ErrMalformedTimestamp, raw)
	}
	return inRange(time.Unix(sec, nsec).UTC(), raw)
}

// parseWall reads a wall-clock reading without offset. The returned time
// carries the wall fields in UTC and must not be treated as an instant.
func parseWall(raw string) (time.Time, error) {
	s := withTSeparator(raw)
	for _, layout := range wallLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a local wall-clock time", schema.ErrMalformedTimestamp, raw)
}

// resolveWall finds the instants at which loc shows the wall reading.
// A gap yields none, an overlap yields two and policy picks one.
func resolveWall(wall time.Time, loc *time.Location, policy schema.AmbiguityPolicy) (time.Time, error) {
	var offsets []int
	for _, probe := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, off := wall.Add(probe).In(loc).Zone()
		if !slices.Contains(offsets, off) {
			offsets = append(offsets, off)
		}
	}

	var candidates []time.Time
	for _, off := range offsets {
		instant := wall.Add(-time.Duration(off) * time.Second)
		if _, actual := instant.In(loc).Zone(); actual != off {
			continue
		}
		if !slices.ContainsFunc(candidates, instant.Equal) {
			candidates = append(candidates, instant)
		}
	}

	if len(candidates) == 0 {
		return time.Time{}, fmt.Errorf("%w: %s does not exist in %s",
			schema.ErrInvalidLocalTime, wall.Format("2006-01-02T15:04:05"), loc)
	}
	slices.SortFunc(candidates, time.Time.Compare)
	if policy == schema.LaterPolicy {
		return candidates[len(candidates)-1].UTC(), nil
	}
	return candidates[0].UTC(), nil
}

// withTSeparator accepts a space between date and time.
func withTSeparator(s string) string {
	if len(s) > 10 && s[10] == ' ' {
		return s[:10] + "T" + s[11:]
	}
	return s
}

func inRange(t time.Time, raw string) (time.Time, error) {
	if t.Before(minInstant) || t.After(maxInstant) {
		return time.Time{}, fmt.Errorf("%w: %q is out of range", schema.ErrMalformedTimestamp, raw)
	}
	return t, nil
}
