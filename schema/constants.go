package schema

// Custom string types for type safety.
type (
	// Source identifies which input stream a record came from.
	Source string

	// Representation is the declared time representation of a raw timestamp.
	Representation string

	// RejectReason classifies why a record was rejected.
	RejectReason string

	// AmbiguityPolicy selects an instant for a wall-clock time that occurs twice.
	AmbiguityPolicy string

	// MetricStatus reports whether the metric produced a value.
	MetricStatus string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All sources supported.
const (
	SleepSource   Source = "sleep"
	WorkoutSource Source = "workout"
)

// All time representations supported.
const (
	UTCRepresentation   Representation = "utc"   // absolute instant, RFC 3339 or epoch seconds
	LocalRepresentation Representation = "local" // wall clock interpreted in a named zone
)

// All rejection reasons.
const (
	MalformedTimestampReason RejectReason = "MalformedTimestamp"
	UnknownTimezoneReason    RejectReason = "UnknownTimezone"
	InvalidLocalTimeReason   RejectReason = "InvalidLocalTime"
	UnsupportedUnitReason    RejectReason = "UnsupportedUnit"
	InvalidValueReason       RejectReason = "InvalidValue"
)

// All ambiguity policies supported.
const (
	EarlierPolicy AmbiguityPolicy = "earlier" // default
	LaterPolicy   AmbiguityPolicy = "later"
)

// All metric statuses.
const (
	MetricOK         MetricStatus = "ok"
	NoQualifyingDays MetricStatus = "no_qualifying_days"
)

// DefaultReferenceZone is the zone used for day attribution when none is configured.
const DefaultReferenceZone = "UTC"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidAmbiguityPolicies lists all valid ambiguity policies.
var ValidAmbiguityPolicies = map[AmbiguityPolicy]struct{}{
	EarlierPolicy: {},
	LaterPolicy:   {},
}

// AllRejectReasons returns the rejection reasons in reporting order.
var AllRejectReasons = []RejectReason{
	MalformedTimestampReason,
	UnknownTimezoneReason,
	InvalidLocalTimeReason,
	UnsupportedUnitReason,
	InvalidValueReason,
}
