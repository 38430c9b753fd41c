// Package agg folds attributed events into per-user daily summaries.
package agg

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/healthmerge/schema"
)

// qualityScale is the fixed-point resolution used to sum quality scores.
const qualityScale = 1_000_000

// accumulator holds integer running totals for one DayKey, so merging
// partial results in any order gives identical sums.
type accumulator struct {
	sleep         time.Duration
	sleepSeen     bool
	workout       time.Duration
	workoutSeen   bool
	energy        schema.Energy
	energySeen    bool
	quality       int64
	qualityCount  int64
	sleepEvents   int
	workoutEvents int
}

// addSat adds non-negative totals, clamping at the int64 maximum instead of
// wrapping to a negative sum.
func addSat[T ~int64](a, b T) T {
	if b > 0 && a > T(math.MaxInt64)-b {
		return T(math.MaxInt64)
	}
	return a + b
}

func (a *accumulator) add(e schema.AttributedEvent) {
	switch e.Source {
	case schema.SleepSource:
		a.sleepEvents++
		if d, ok := e.SleepDuration.Get(); ok {
			a.sleep = addSat(a.sleep, d)
			a.sleepSeen = true
		}
		if q, ok := e.SleepQuality.Get(); ok {
			a.quality = addSat(a.quality, int64(math.Round(q*qualityScale)))
			a.qualityCount++
		}
	case schema.WorkoutSource:
		a.workoutEvents++
		if d, ok := e.WorkoutDuration.Get(); ok {
			a.workout = addSat(a.workout, d)
			a.workoutSeen = true
		}
		if kcal, ok := e.Energy.Get(); ok {
			a.energy = addSat(a.energy, kcal)
			a.energySeen = true
		}
	}
}

func (a *accumulator) merge(b *accumulator) {
	a.sleep = addSat(a.sleep, b.sleep)
	a.sleepSeen = a.sleepSeen || b.sleepSeen
	a.workout = addSat(a.workout, b.workout)
	a.workoutSeen = a.workoutSeen || b.workoutSeen
	a.energy = addSat(a.energy, b.energy)
	a.energySeen = a.energySeen || b.energySeen
	a.quality = addSat(a.quality, b.quality)
	a.qualityCount += b.qualityCount
	a.sleepEvents += b.sleepEvents
	a.workoutEvents += b.workoutEvents
}

func (a *accumulator) summary(key schema.DayKey) schema.DailySummary {
	s := schema.DailySummary{
		User:              key.User,
		Day:               key.Day,
		SleepEventCount:   a.sleepEvents,
		WorkoutEventCount: a.workoutEvents,
	}
	if a.sleepSeen {
		s.TotalSleep = schema.Some(a.sleep)
	}
	if a.workoutSeen {
		s.TotalWorkout = schema.Some(a.workout)
	}
	if a.energySeen {
		s.TotalCalories = schema.Some(a.energy)
	}
	if a.qualityCount > 0 {
		s.AverageSleepQuality = schema.Some(float64(a.quality) / float64(a.qualityCount) / qualityScale)
	}
	return s
}

type partial map[schema.DayKey]*accumulator

func (p partial) add(e schema.AttributedEvent) {
	key := e.Key()
	acc, ok := p[key]
	if !ok {
		acc = &accumulator{}
		p[key] = acc
	}
	acc.add(e)
}

func (p partial) merge(other partial) {
	for key, acc := range other {
		if existing, ok := p[key]; ok {
			existing.merge(acc)
			continue
		}
		p[key] = acc
	}
}

func (p partial) summaries() []schema.DailySummary {
	keys := make([]schema.DayKey, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b schema.DayKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})

	out := make([]schema.DailySummary, len(keys))
	for i, key := range keys {
		out[i] = p[key].summary(key)
	}
	return out
}

// Aggregate groups events by (user, day) and returns one summary per key,
// sorted by day then user. The result does not depend on input order.
func Aggregate(events []schema.AttributedEvent) []schema.DailySummary {
	p := make(partial)
	for _, e := range events {
		p.add(e)
	}
	return p.summaries()
}

// AggregateParallel is Aggregate spread over a pool of workers. Each worker
// folds a contiguous shard and the partial results are merged at the end.
func AggregateParallel(events []schema.AttributedEvent, workers int) []schema.DailySummary {
	if workers <= 1 || len(events) < 2*workers {
		return Aggregate(events)
	}

	shardSize := (len(events) + workers - 1) / workers
	shardCh := make(chan []schema.AttributedEvent, workers)
	partialCh := make(chan partial, workers)
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			p := make(partial)
			for shard := range shardCh {
				for _, e := range shard {
					p.add(e)
				}
			}
			partialCh <- p
		})
	}

	for start := 0; start < len(events); start += shardSize {
		shardCh <- events[start:min(start+shardSize, len(events))]
	}
	close(shardCh)

	wg.Wait()
	close(partialCh)

	merged := make(partial)
	for p := range partialCh {
		merged.merge(p)
	}
	return merged.summaries()
}
