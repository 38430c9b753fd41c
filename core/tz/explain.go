package tz

import (
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// Explain normalizes raw and reports its instant together with the civil day
// and wall clock it has in referenceZone.
func (p *Parser) Explain(raw string, rep Representation, referenceZone string) (schema.NormalizedTimestamp, error) {
	ref, err := p.zones.Resolve(referenceZone)
	if err != nil {
		return schema.NormalizedTimestamp{}, err
	}
	instant, err := p.Normalize(raw, rep)
	if err != nil {
		return schema.NormalizedTimestamp{}, err
	}

	out := schema.NormalizedTimestamp{
		Input:          raw,
		Representation: rep.Kind,
		Instant:        instant.UTC().Format(time.RFC3339Nano),
		ReferenceZone:  CanonicalZoneName(referenceZone),
		WallClock:      WallClock(instant, ref),
		Day:            AttributeDay(instant, ref),
	}
	if rep.Kind == schema.LocalRepresentation {
		out.Zone = CanonicalZoneName(rep.Zone)
	}
	return out, nil
}
