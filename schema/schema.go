// Package schema has the data model shared by every stage of healthmerge.
package schema

import (
	"math"
	"time"
)

// SleepRecord is a sleep session as recorded by the sleep tracker.
// Its timestamps default to the UTC representation.
type SleepRecord struct {
	ID             string            // Record identifier from the source file
	UserID         string            // Owner of the session
	Start          string            // Raw start timestamp (may be empty)
	End            string            // Raw end (wake) timestamp (may be empty)
	Representation Representation    // How Start and End are expressed
	Zone           string            // Zone name for the local representation
	Duration       Optional[float64] // Recorded sleep duration in DurationUnit
	DurationUnit   string            // Unit tag for Duration
	Quality        Optional[float64] // Tracker quality score
	Device         string            // Recording device
	DecodeErr      error             // set when the source element could not be decoded
}

// WorkoutRecord is a workout session as recorded by the fitness app.
// Its timestamp defaults to the local representation.
type WorkoutRecord struct {
	ID             string            // Record identifier from the source file
	UserID         string            // Owner of the session
	Start          string            // Raw start timestamp
	Representation Representation    // How Start is expressed
	Zone           string            // Zone name for the local representation
	Duration       Optional[float64] // Recorded workout duration in DurationUnit
	DurationUnit   string            // Unit tag for Duration
	Calories       Optional[float64] // Energy burned in EnergyUnit
	EnergyUnit     string            // Unit tag for Calories
	ExerciseType   string            // Free-form activity name
	App            string            // Recording application
	DecodeErr      error             // set when the source element could not be decoded
}

// RawEvent is the union of the two record kinds. Exactly one of Sleep or
// Workout is set, matching Source.
type RawEvent struct {
	Source  Source
	Index   int // position within its source collection
	Sleep   *SleepRecord
	Workout *WorkoutRecord
}

// SleepEvent wraps a sleep record as a RawEvent.
func SleepEvent(index int, r SleepRecord) RawEvent {
	return RawEvent{Source: SleepSource, Index: index, Sleep: &r}
}

// WorkoutEvent wraps a workout record as a RawEvent.
func WorkoutEvent(index int, r WorkoutRecord) RawEvent {
	return RawEvent{Source: WorkoutSource, Index: index, Workout: &r}
}

// RecordID returns the identifier of the wrapped record.
func (e RawEvent) RecordID() string {
	switch {
	case e.Sleep != nil:
		return e.Sleep.ID
	case e.Workout != nil:
		return e.Workout.ID
	default:
		return ""
	}
}

// UserID returns the owner of the wrapped record.
func (e RawEvent) UserID() string {
	switch {
	case e.Sleep != nil:
		return e.Sleep.UserID
	case e.Workout != nil:
		return e.Workout.UserID
	default:
		return ""
	}
}

// Energy is an amount of energy in thousandths of a kilocalorie.
// Integer storage keeps daily sums exact regardless of summation order.
type Energy int64

// EnergyFromKcal converts kilocalories to Energy, rounding to the nearest thousandth.
func EnergyFromKcal(kcal float64) Energy {
	return Energy(math.Round(kcal * 1000))
}

// Kcal returns e in kilocalories.
func (e Energy) Kcal() float64 {
	return float64(e) / 1000
}

// DayKey identifies one user's civil day.
type DayKey struct {
	User string   `json:"user"`
	Day  CivilDay `json:"day"`
}

// Less orders keys by day, then user.
func (k DayKey) Less(other DayKey) bool {
	if c := k.Day.Compare(other.Day); c != 0 {
		return c < 0
	}
	return k.User < other.User
}

// AttributedEvent is a normalized record bound to its canonical instant and civil day.
type AttributedEvent struct {
	Source   Source
	RecordID string
	Index    int
	User     string
	Instant  time.Time // boundary instant in UTC: sleep end or workout start
	Zone     string    // reference zone the Day was computed in
	Day      CivilDay

	SleepDuration   Optional[time.Duration]
	SleepQuality    Optional[float64]
	WorkoutDuration Optional[time.Duration]
	Energy          Optional[Energy]
}

// Key returns the aggregation key of the event.
func (e AttributedEvent) Key() DayKey {
	return DayKey{User: e.User, Day: e.Day}
}

// DailySummary holds the merged totals for one user's civil day.
type DailySummary struct {
	User                string
	Day                 CivilDay
	TotalSleep          Optional[time.Duration]
	TotalCalories       Optional[Energy]
	TotalWorkout        Optional[time.Duration]
	AverageSleepQuality Optional[float64]
	SleepEventCount     int
	WorkoutEventCount   int
}

// Key returns the aggregation key of the summary.
func (s DailySummary) Key() DayKey {
	return DayKey{User: s.User, Day: s.Day}
}

// Metric is the average calories burned on low-sleep days.
type Metric struct {
	Threshold        time.Duration     // sleep strictly below this qualifies
	AverageCalories  Optional[float64] // kcal; absent when nothing qualified
	QualifyingDays   []DayKey          // low-sleep days that carried calorie data
	LowSleepDayCount int               // low-sleep days, with or without calories
	Status           MetricStatus
}

// QualifyingDayCount returns the number of days that contributed to the average.
func (m Metric) QualifyingDayCount() int {
	return len(m.QualifyingDays)
}

// Rejection records one input record that failed normalization.
type Rejection struct {
	Source   Source       `json:"source"`
	RecordID string       `json:"record_id"`
	Index    int          `json:"index"`
	Field    string       `json:"field,omitempty"`
	Reason   RejectReason `json:"reason"`
	Detail   string       `json:"detail"`
}

// MergeStats summarizes one pipeline run.
type MergeStats struct {
	SleepRecordsRead       int                `json:"sleep_records_read"`
	WorkoutRecordsRead     int                `json:"workout_records_read"`
	SleepRecordsAccepted   int                `json:"sleep_records_processed"`
	WorkoutRecordsAccepted int                `json:"workout_records_processed"`
	RejectedRecords        int                `json:"rejected_records"`
	DaysCovered            int                `json:"dates_covered"`
	FirstDay               Optional[CivilDay] `json:"date_range_start"`
	LastDay                Optional[CivilDay] `json:"date_range_end"`
}

// MergeResult is the complete output of one pipeline run.
type MergeResult struct {
	Summaries  []DailySummary // sorted by day, then user
	Metric     Metric
	Rejections []Rejection // in input order, sleep before workout
	Stats      MergeStats
}
