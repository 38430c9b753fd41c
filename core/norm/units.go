package norm

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// Default unit tags applied when a record leaves its unit blank.
const (
	DefaultSleepDurationUnit   = "hours"
	DefaultWorkoutDurationUnit = "minutes"
	DefaultEnergyUnit          = "kcal"
)

const kilojoulesPerKcal = 4.184

// Plausibility limits for a single session. Larger values are rejected
// rather than summed.
const (
	MaxSessionDuration = 24 * time.Hour
	MaxWorkoutEnergy   = schema.Energy(50_000 * 1000) // 50,000 kcal
)

var durationUnits = map[string]time.Duration{
	"s":       time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"m":       time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"h":       time.Hour,
	"hr":      time.Hour,
	"hrs":     time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
}

// energyUnits maps a unit tag to its size in kilocalories.
var energyUnits = map[string]float64{
	"kcal":         1,
	"calorie":      1,
	"calories":     1,
	"kilocalorie":  1,
	"kilocalories": 1,
	"kj":           1 / kilojoulesPerKcal,
	"kilojoule":    1 / kilojoulesPerKcal,
	"kilojoules":   1 / kilojoulesPerKcal,
}

// calorieUnits are matched case-sensitively: "Cal" is the food Calorie and
// "cal" the small calorie. Other spellings of "cal" are unsupported.
var calorieUnits = map[string]float64{
	"Cal": 1,
	"cal": 0.001,
}

func unitKey(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

func energyScale(unit string) (float64, bool) {
	trimmed := strings.TrimSpace(unit)
	if scale, ok := calorieUnits[trimmed]; ok {
		return scale, true
	}
	scale, ok := energyUnits[unitKey(trimmed)]
	return scale, ok
}

// checkQuantity rejects values that cannot be a physical amount.
func checkQuantity(value float64) error {
	switch {
	case math.IsNaN(value), math.IsInf(value, 0):
		return fmt.Errorf("%w: %v is not a finite number", schema.ErrInvalidValue, value)
	case value < 0:
		return fmt.Errorf("%w: %v is negative", schema.ErrInvalidValue, value)
	}
	return nil
}

// ToDuration converts value expressed in unit to a duration.
func ToDuration(value float64, unit string) (time.Duration, error) {
	scale, ok := durationUnits[unitKey(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: duration unit %q", schema.ErrUnsupportedUnit, unit)
	}
	if err := checkQuantity(value); err != nil {
		return 0, err
	}
	ns := math.Round(value * float64(scale))
	if ns >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: duration %v %s overflows", schema.ErrInvalidValue, value, unit)
	}
	return time.Duration(ns), nil
}

// ToEnergy converts value expressed in unit to Energy.
func ToEnergy(value float64, unit string) (schema.Energy, error) {
	scale, ok := energyScale(unit)
	if !ok {
		return 0, fmt.Errorf("%w: energy unit %q", schema.ErrUnsupportedUnit, unit)
	}
	if err := checkQuantity(value); err != nil {
		return 0, err
	}
	kcal := value * scale
	if kcal*1000 >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: energy %v %s overflows", schema.ErrInvalidValue, value, unit)
	}
	return schema.EnergyFromKcal(kcal), nil
}

// SupportedDurationUnit reports whether unit is a known duration unit.
func SupportedDurationUnit(unit string) bool {
	_, ok := durationUnits[unitKey(unit)]
	return ok
}

// SupportedEnergyUnit reports whether unit is a known energy unit.
func SupportedEnergyUnit(unit string) bool {
	_, ok := energyScale(unit)
	return ok
}
