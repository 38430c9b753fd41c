// Package tz turns raw timestamps into canonical UTC instants and attributes
// instants to civil days in a reference zone.
package tz

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone rules travel with the binary

	"github.com/huangsam/healthmerge/schema"
	"github.com/maypok86/otter/v2"
)

const defaultZoneCacheSize = 512

// legacyZones maps the abbreviations found in older exports to IANA zones.
var legacyZones = map[string]string{
	"UTC": "UTC",
	"GMT": "UTC",
	"Z":   "UTC",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"EST": "America/New_York",
	"EDT": "America/New_York",
}

// ZoneResolver loads IANA zones by name and memoizes the result.
// It is safe for concurrent use.
type ZoneResolver struct {
	cache *otter.Cache[string, *time.Location]
}

// NewZoneResolver creates a resolver that keeps at most size zones in memory.
func NewZoneResolver(size int) *ZoneResolver {
	if size <= 0 {
		size = defaultZoneCacheSize
	}
	return &ZoneResolver{
		cache: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize:     size,
			InitialCapacity: min(size, 64),
		}),
	}
}

// defaultZones backs the package-level helpers.
var defaultZones = NewZoneResolver(defaultZoneCacheSize)

// CanonicalZoneName returns the IANA name a zone identifier resolves to,
// translating legacy abbreviations.
func CanonicalZoneName(name string) string {
	trimmed := strings.TrimSpace(name)
	if alias, ok := legacyZones[strings.ToUpper(trimmed)]; ok {
		return alias
	}
	return trimmed
}

// Resolve returns the location for name. Empty names and "Local" are rejected
// so that results never depend on the host machine.
func (r *ZoneResolver) Resolve(name string) (*time.Location, error) {
	canonical := CanonicalZoneName(name)
	if canonical == "" || canonical == "Local" {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownTimezone, name)
	}
	if loc, ok := r.cache.GetIfPresent(canonical); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownTimezone, name)
	}
	r.cache.Set(canonical, loc)
	return loc, nil
}

// LoadZone resolves name with the shared resolver.
func LoadZone(name string) (*time.Location, error) {
	return defaultZones.Resolve(name)
}
