package schema

import "time"

// SummaryRow is the flat, serializable form of a DailySummary.
type SummaryRow struct {
	Day                 string            `json:"day"`
	User                string            `json:"user"`
	TotalSleepMinutes   Optional[float64] `json:"total_sleep_minutes"`
	TotalCalories       Optional[float64] `json:"total_calories"`
	TotalWorkoutMinutes Optional[float64] `json:"total_workout_minutes"`
	AverageSleepQuality Optional[float64] `json:"average_sleep_quality"`
	SleepEventCount     int               `json:"sleep_event_count"`
	WorkoutEventCount   int               `json:"workout_event_count"`
}

// MetricRecord is the flat, serializable form of a Metric.
type MetricRecord struct {
	AverageCaloriesOnLowSleepDays Optional[float64] `json:"average_calories_on_low_sleep_days"`
	QualifyingDayCount            int               `json:"qualifying_day_count"`
	SleepThresholdMinutes         float64           `json:"sleep_threshold_minutes"`
	LowSleepDayCount              int               `json:"low_sleep_day_count"`
	Status                        MetricStatus      `json:"status"`
	QualifyingDays                []DayKey          `json:"qualifying_days"`
}

// MergeReport is the document emitted by the JSON writer and the MCP tools.
type MergeReport struct {
	Metadata   MergeStats   `json:"metadata"`
	Summaries  []SummaryRow `json:"summaries"`
	Metric     MetricRecord `json:"metric"`
	Rejections []Rejection  `json:"rejections"`
}

func minutes(d time.Duration) float64 {
	return d.Minutes()
}

// Row flattens the summary into canonical reporting units.
func (s DailySummary) Row() SummaryRow {
	return SummaryRow{
		Day:                 s.Day.String(),
		User:                s.User,
		TotalSleepMinutes:   MapOptional(s.TotalSleep, minutes),
		TotalCalories:       MapOptional(s.TotalCalories, Energy.Kcal),
		TotalWorkoutMinutes: MapOptional(s.TotalWorkout, minutes),
		AverageSleepQuality: s.AverageSleepQuality,
		SleepEventCount:     s.SleepEventCount,
		WorkoutEventCount:   s.WorkoutEventCount,
	}
}

// Record flattens the metric into its reporting form.
func (m Metric) Record() MetricRecord {
	days := m.QualifyingDays
	if days == nil {
		days = []DayKey{}
	}
	return MetricRecord{
		AverageCaloriesOnLowSleepDays: m.AverageCalories,
		QualifyingDayCount:            m.QualifyingDayCount(),
		SleepThresholdMinutes:         m.Threshold.Minutes(),
		LowSleepDayCount:              m.LowSleepDayCount,
		Status:                        m.Status,
		QualifyingDays:                days,
	}
}

// Rows flattens every summary of the result.
func (r MergeResult) Rows() []SummaryRow {
	rows := make([]SummaryRow, len(r.Summaries))
	for i, s := range r.Summaries {
		rows[i] = s.Row()
	}
	return rows
}

// Report builds the serializable document for the result.
func (r MergeResult) Report() MergeReport {
	rejections := r.Rejections
	if rejections == nil {
		rejections = []Rejection{}
	}
	return MergeReport{
		Metadata:   r.Stats,
		Summaries:  r.Rows(),
		Metric:     r.Metric.Record(),
		Rejections: rejections,
	}
}

// NormalizedTimestamp explains how one raw timestamp was interpreted.
type NormalizedTimestamp struct {
	Input          string         `json:"input"`
	Representation Representation `json:"representation"`
	Zone           string         `json:"zone,omitempty"`
	Instant        string         `json:"instant_utc"`
	ReferenceZone  string         `json:"reference_zone"`
	WallClock      string         `json:"reference_wall_clock"`
	Day            CivilDay       `json:"day"`
}
