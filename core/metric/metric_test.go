package metric

import (
	"testing"
	"time"

	"github.com/huangsam/healthmerge/schema"
	"github.com/stretchr/testify/assert"
)

func day(d int) schema.CivilDay {
	return schema.CivilDay{Year: 2024, Month: time.June, Day: d}
}

func TestLowSleepCalories(t *testing.T) {
	summaries := []schema.DailySummary{
		{User: "u1", Day: day(1), TotalSleep: schema.Some(300 * time.Minute), TotalCalories: schema.Some(schema.EnergyFromKcal(400))},
		{User: "u1", Day: day(2), TotalSleep: schema.Some(480 * time.Minute), TotalCalories: schema.Some(schema.EnergyFromKcal(900))},
		{User: "u1", Day: day(3), TotalCalories: schema.Some(schema.EnergyFromKcal(250))},
	}

	m := LowSleepCalories(summaries, 360*time.Minute)
	assert.Equal(t, schema.MetricOK, m.Status)
	assert.Equal(t, schema.Some(400.0), m.AverageCalories)
	assert.Equal(t, 1, m.QualifyingDayCount())
	assert.Equal(t, []schema.DayKey{{User: "u1", Day: day(1)}}, m.QualifyingDays)
	assert.Equal(t, 1, m.LowSleepDayCount)
}

func TestLowSleepCaloriesEdges(t *testing.T) {
	tests := []struct {
		name       string
		summaries  []schema.DailySummary
		threshold  time.Duration
		status     schema.MetricStatus
		average    schema.Optional[float64]
		lowSleep   int
		qualifying int
	}{
		{
			name:      "empty input",
			threshold: DefaultSleepThreshold,
			status:    schema.NoQualifyingDays,
		},
		{
			name: "threshold is strict",
			summaries: []schema.DailySummary{
				{User: "u1", Day: day(1), TotalSleep: schema.Some(6 * time.Hour), TotalCalories: schema.Some(schema.EnergyFromKcal(100))},
			},
			threshold: 6 * time.Hour,
			status:    schema.NoQualifyingDays,
		},
		{
			name: "low sleep without calories",
			summaries: []schema.DailySummary{
				{User: "u1", Day: day(1), TotalSleep: schema.Some(2 * time.Hour)},
			},
			threshold: 6 * time.Hour,
			status:    schema.NoQualifyingDays,
			lowSleep:  1,
		},
		{
			name: "average across users",
			summaries: []schema.DailySummary{
				{User: "u1", Day: day(1), TotalSleep: schema.Some(4 * time.Hour), TotalCalories: schema.Some(schema.EnergyFromKcal(300))},
				{User: "u2", Day: day(1), TotalSleep: schema.Some(5 * time.Hour), TotalCalories: schema.Some(schema.EnergyFromKcal(501))},
				{User: "u2", Day: day(2), TotalSleep: schema.Some(5 * time.Hour)},
			},
			threshold:  6 * time.Hour,
			status:     schema.MetricOK,
			average:    schema.Some(400.5),
			lowSleep:   3,
			qualifying: 2,
		},
		{
			name: "zero calories still qualify",
			summaries: []schema.DailySummary{
				{User: "u1", Day: day(1), TotalSleep: schema.Some(time.Hour), TotalCalories: schema.Some(schema.Energy(0))},
			},
			threshold:  6 * time.Hour,
			status:     schema.MetricOK,
			average:    schema.Some(0.0),
			lowSleep:   1,
			qualifying: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := LowSleepCalories(tt.summaries, tt.threshold)
			assert.Equal(t, tt.status, m.Status)
			assert.Equal(t, tt.average, m.AverageCalories)
			assert.Equal(t, tt.lowSleep, m.LowSleepDayCount)
			assert.Equal(t, tt.qualifying, m.QualifyingDayCount())
			assert.NotNil(t, m.QualifyingDays)
			assert.Equal(t, tt.threshold, m.Threshold)
		})
	}
}
