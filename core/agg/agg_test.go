package agg

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/healthmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june1 = schema.CivilDay{Year: 2024, Month: time.June, Day: 1}

func sleepEvent(user string, day schema.CivilDay, d time.Duration) schema.AttributedEvent {
	return schema.AttributedEvent{
		Source:        schema.SleepSource,
		User:          user,
		Day:           day,
		SleepDuration: schema.Some(d),
	}
}

func workoutEvent(user string, day schema.CivilDay, kcal float64) schema.AttributedEvent {
	return schema.AttributedEvent{
		Source: schema.WorkoutSource,
		User:   user,
		Day:    day,
		Energy: schema.Some(schema.EnergyFromKcal(kcal)),
	}
}

// TestAggregateMergesSources covers the one-sleep, one-workout day.
func TestAggregateMergesSources(t *testing.T) {
	summaries := Aggregate([]schema.AttributedEvent{
		sleepEvent("u1", june1, 300*time.Minute),
		workoutEvent("u1", june1, 400),
	})

	require.Len(t, summaries, 1)
	row := summaries[0].Row()
	assert.Equal(t, "u1", row.User)
	assert.Equal(t, "2024-06-01", row.Day)
	assert.Equal(t, schema.Some(300.0), row.TotalSleepMinutes)
	assert.Equal(t, schema.Some(400.0), row.TotalCalories)
	assert.Equal(t, 1, row.SleepEventCount)
	assert.Equal(t, 1, row.WorkoutEventCount)
}

func TestAggregateAbsentValues(t *testing.T) {
	june2 := schema.CivilDay{Year: 2024, Month: time.June, Day: 2}
	summaries := Aggregate([]schema.AttributedEvent{
		{Source: schema.WorkoutSource, User: "u1", Day: june1}, // no calories recorded
		sleepEvent("u1", june2, 7*time.Hour),
	})

	require.Len(t, summaries, 2)

	assert.Equal(t, june1, summaries[0].Day)
	assert.False(t, summaries[0].TotalCalories.Valid, "missing calories are absent, not zero")
	assert.False(t, summaries[0].TotalSleep.Valid, "no sleep source that day")
	assert.Equal(t, 1, summaries[0].WorkoutEventCount)

	assert.Equal(t, june2, summaries[1].Day)
	assert.False(t, summaries[1].TotalCalories.Valid)
	assert.Equal(t, schema.Some(7*time.Hour), summaries[1].TotalSleep)
}

func TestAggregateQualityAverage(t *testing.T) {
	a := sleepEvent("u1", june1, time.Hour)
	a.SleepQuality = schema.Some(80.0)
	b := sleepEvent("u1", june1, 2*time.Hour)
	b.SleepQuality = schema.Some(91.5)
	c := sleepEvent("u1", june1, 30*time.Minute) // no quality

	summaries := Aggregate([]schema.AttributedEvent{a, b, c})
	require.Len(t, summaries, 1)
	assert.InDelta(t, 85.75, summaries[0].AverageSleepQuality.Value, 1e-9)
	assert.Equal(t, schema.Some(210*time.Minute), summaries[0].TotalSleep)
	assert.Equal(t, 3, summaries[0].SleepEventCount)
}

func TestAggregateOrdering(t *testing.T) {
	june2 := schema.CivilDay{Year: 2024, Month: time.June, Day: 2}
	summaries := Aggregate([]schema.AttributedEvent{
		workoutEvent("u2", june2, 1),
		workoutEvent("u2", june1, 1),
		workoutEvent("u1", june2, 1),
		workoutEvent("u1", june1, 1),
	})

	var keys []string
	for _, s := range summaries {
		keys = append(keys, s.Day.String()+"/"+s.User)
	}
	assert.Equal(t, []string{"2024-06-01/u1", "2024-06-01/u2", "2024-06-02/u1", "2024-06-02/u2"}, keys)
	assert.Empty(t, Aggregate(nil))
}

func randomEvents(r *rand.Rand, n int) []schema.AttributedEvent {
	users := []string{"u1", "u2", "u3"}
	events := make([]schema.AttributedEvent, 0, n)
	for i := range n {
		user := users[r.IntN(len(users))]
		day := schema.CivilDay{Year: 2024, Month: time.June, Day: 1 + r.IntN(10)}
		var e schema.AttributedEvent
		if r.IntN(2) == 0 {
			e = sleepEvent(user, day, time.Duration(r.Int64N(int64(10*time.Hour))))
			if r.IntN(3) > 0 {
				e.SleepQuality = schema.Some(r.Float64() * 100)
			}
		} else {
			e = workoutEvent(user, day, r.Float64()*1000)
			if r.IntN(4) == 0 {
				e.Energy = schema.None[schema.Energy]()
			}
			e.WorkoutDuration = schema.Some(time.Duration(r.IntN(120)) * time.Minute)
		}
		e.RecordID = fmt.Sprintf("r%d", i)
		events = append(events, e)
	}
	return events
}

// TestAggregateOrderInvariance checks that shuffles and worker counts never
// change the output.
func TestAggregateOrderInvariance(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	events := randomEvents(r, 500)
	expected := Aggregate(events)

	for trial := range 20 {
		shuffled := make([]schema.AttributedEvent, len(events))
		copy(shuffled, events)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, expected, Aggregate(shuffled), "shuffle %d", trial)
		workers := 1 + trial%8
		assert.Equal(t, expected, AggregateParallel(shuffled, workers), "shuffle %d with %d workers", trial, workers)
	}
}

func TestAggregateParallelSmallInput(t *testing.T) {
	events := []schema.AttributedEvent{sleepEvent("u1", june1, time.Hour)}
	assert.Equal(t, Aggregate(events), AggregateParallel(events, 16))
	assert.Equal(t, Aggregate(events), AggregateParallel(events, 0))
}

func TestAggregateSaturates(t *testing.T) {
	huge := time.Duration(math.MaxInt64/2 + 1)
	events := []schema.AttributedEvent{
		sleepEvent("u1", june1, huge),
		sleepEvent("u1", june1, huge),
		{Source: schema.WorkoutSource, User: "u1", Day: june1, Energy: schema.Some(schema.Energy(math.MaxInt64))},
		workoutEvent("u1", june1, 1),
	}

	for _, workers := range []int{1, 4} {
		summaries := AggregateParallel(events, workers)
		require.Len(t, summaries, 1)
		assert.Equal(t, schema.Some(time.Duration(math.MaxInt64)), summaries[0].TotalSleep, "workers=%d", workers)
		assert.Equal(t, schema.Some(schema.Energy(math.MaxInt64)), summaries[0].TotalCalories, "workers=%d", workers)
	}
}

func TestAddSat(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{1, 2, 3},
		{math.MaxInt64, 0, math.MaxInt64},
		{math.MaxInt64 - 1, 5, math.MaxInt64},
		{math.MaxInt64, math.MaxInt64, math.MaxInt64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, addSat(tt.a, tt.b), "%d + %d", tt.a, tt.b)
	}
}
