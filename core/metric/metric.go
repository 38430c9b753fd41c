// Package metric derives threshold metrics from daily summaries.
package metric

import (
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// DefaultSleepThreshold is the sleep duration below which a day counts as low-sleep.
const DefaultSleepThreshold = 6 * time.Hour

// LowSleepCalories averages the calories burned on days whose total sleep is
// strictly below threshold. Days without sleep data are never low-sleep, and
// low-sleep days without calorie data are left out of the average.
func LowSleepCalories(summaries []schema.DailySummary, threshold time.Duration) schema.Metric {
	m := schema.Metric{
		Threshold:      threshold,
		QualifyingDays: []schema.DayKey{},
		Status:         schema.NoQualifyingDays,
	}

	var total schema.Energy
	for _, s := range summaries {
		sleep, ok := s.TotalSleep.Get()
		if !ok || sleep >= threshold {
			continue
		}
		m.LowSleepDayCount++

		kcal, ok := s.TotalCalories.Get()
		if !ok {
			continue
		}
		total += kcal
		m.QualifyingDays = append(m.QualifyingDays, s.Key())
	}

	if n := len(m.QualifyingDays); n > 0 {
		m.AverageCalories = schema.Some(total.Kcal() / float64(n))
		m.Status = schema.MetricOK
	}
	return m
}
