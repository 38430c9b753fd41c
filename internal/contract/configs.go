package contract

import (
	"fmt"
	"maps"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/healthmerge/core/norm"
	"github.com/huangsam/healthmerge/core/tz"
	"github.com/huangsam/healthmerge/schema"
)

// Default values for configuration.
const (
	DefaultPrecision      = 1
	DefaultSleepThreshold = "6h"
	DefaultUser           = "default"
	MaxWorkers            = 256
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a merge run.
// This struct remains the "final, validated" config.
type Config struct {
	SleepPath   string
	WorkoutPath string

	ReferenceZone  string
	UserZones      map[string]string
	SleepThreshold time.Duration
	Ambiguity      schema.AmbiguityPolicy
	DefaultUser    string
	UserFilter     string

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	SleepPathStr   string
	WorkoutPathStr string

	ReferenceZone    string            `mapstructure:"reference-zone"`
	UserZones        map[string]string `mapstructure:"user-zones"`
	SleepThreshold   string            `mapstructure:"sleep-threshold"`
	Ambiguity        string            `mapstructure:"ambiguity"`
	DefaultUser      string            `mapstructure:"default-user"`
	User             string            `mapstructure:"user"`
	Workers          int               `mapstructure:"workers"`
	Precision        int               `mapstructure:"precision"`
	Output           string            `mapstructure:"output"`
	OutputFile       string            `mapstructure:"output-file"`
	Width            int               `mapstructure:"width"`
	HistoryBackend   string            `mapstructure:"history-backend"`
	HistoryDBConnect string            `mapstructure:"history-db-connect"`
	Emoji            string            `mapstructure:"emoji"`
	Color            string            `mapstructure:"color"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.UserZones != nil {
		clone.UserZones = make(map[string]string, len(c.UserZones))
		maps.Copy(clone.UserZones, c.UserZones)
	}
	return &clone
}

// NormalizerOptions returns the options the event normalizer needs.
func (c *Config) NormalizerOptions() norm.Options {
	return norm.Options{
		ReferenceZone: c.ReferenceZone,
		UserZones:     c.UserZones,
		DefaultUser:   c.DefaultUser,
		Ambiguity:     c.Ambiguity,
	}
}

// Params returns the settings recorded alongside a merge run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"sleep_path":      c.SleepPath,
		"workout_path":    c.WorkoutPath,
		"reference_zone":  c.ReferenceZone,
		"user_zones":      c.UserZones,
		"sleep_threshold": c.SleepThreshold.String(),
		"ambiguity":       string(c.Ambiguity),
		"default_user":    c.DefaultUser,
		"user_filter":     c.UserFilter,
		"workers":         c.Workers,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processZones(cfg, input); err != nil {
		return err
	}
	if err := processThreshold(cfg, input); err != nil {
		return err
	}
	return validateHistoryConfig(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateHistoryConfig validates the run history backend configuration.
func validateHistoryConfig(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.HistoryBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.HistoryBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateSimpleInputs processes and validates all non-zone related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.SleepPath = strings.TrimSpace(input.SleepPathStr)
	cfg.WorkoutPath = strings.TrimSpace(input.WorkoutPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.UserFilter = strings.TrimSpace(input.User)

	cfg.DefaultUser = strings.TrimSpace(input.DefaultUser)
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = DefaultUser
	}

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 3. Ambiguity Policy Validation ---
	policy := strings.ToLower(strings.TrimSpace(input.Ambiguity))
	if policy == "" {
		policy = string(schema.EarlierPolicy)
	}
	cfg.Ambiguity = schema.AmbiguityPolicy(policy)
	if _, ok := schema.ValidAmbiguityPolicies[cfg.Ambiguity]; !ok {
		return fmt.Errorf("invalid ambiguity policy '%s'. must be earlier or later", input.Ambiguity)
	}

	return nil
}

// processZones validates the reference zone and every per-user zone.
func processZones(cfg *Config, input *ConfigRawInput) error {
	ref := strings.TrimSpace(input.ReferenceZone)
	if ref == "" {
		ref = schema.DefaultReferenceZone
	}
	if _, err := tz.LoadZone(ref); err != nil {
		return fmt.Errorf("invalid reference zone %q: %w", input.ReferenceZone, err)
	}
	cfg.ReferenceZone = tz.CanonicalZoneName(ref)

	cfg.UserZones = make(map[string]string, len(input.UserZones))
	for user, zone := range input.UserZones {
		if _, err := tz.LoadZone(zone); err != nil {
			return fmt.Errorf("invalid zone %q for user %q: %w", zone, user, err)
		}
		cfg.UserZones[user] = tz.CanonicalZoneName(zone)
	}
	return nil
}

// processThreshold parses the sleep threshold.
func processThreshold(cfg *Config, input *ConfigRawInput) error {
	raw := input.SleepThreshold
	if strings.TrimSpace(raw) == "" {
		raw = DefaultSleepThreshold
	}
	threshold, err := ParseSleepThreshold(raw)
	if err != nil {
		return err
	}
	cfg.SleepThreshold = threshold
	return nil
}

var quantityRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]+)$`)

// ParseSleepThreshold accepts a Go duration ("6h30m"), a number with a unit
// tag ("360 minutes", "6 hours") or a bare number of hours ("6").
func ParseSleepThreshold(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	d, err := time.ParseDuration(s)
	if err != nil {
		if m := quantityRe.FindStringSubmatch(s); m != nil {
			value, _ := strconv.ParseFloat(m[1], 64)
			d, err = norm.ToDuration(value, m[2])
		} else if hours, perr := strconv.ParseFloat(s, 64); perr == nil {
			d, err = norm.ToDuration(hours, "hours")
		}
	}
	if err != nil {
		return 0, fmt.Errorf("invalid sleep threshold %q: expected a duration like 6h or 360 minutes", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sleep threshold must be positive (received %q)", s)
	}
	return d, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
