package schema_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/healthmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalJSON(t *testing.T) {
	t.Run("absent marshals to null", func(t *testing.T) {
		data, err := json.Marshal(schema.None[float64]())
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("present zero is not null", func(t *testing.T) {
		data, err := json.Marshal(schema.Some(0.0))
		require.NoError(t, err)
		assert.Equal(t, "0", string(data))
	})

	t.Run("unmarshal null and value", func(t *testing.T) {
		var holder struct {
			A schema.Optional[float64] `json:"a"`
			B schema.Optional[float64] `json:"b"`
			C schema.Optional[float64] `json:"c"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": 7.5}`), &holder))
		assert.False(t, holder.A.Valid)
		assert.Equal(t, schema.Some(7.5), holder.B)
		assert.False(t, holder.C.Valid)
	})
}

func TestOptionalHelpers(t *testing.T) {
	v := 3
	assert.Equal(t, schema.Some(3), schema.FromPtr(&v))
	assert.False(t, schema.FromPtr[int](nil).Valid)
	assert.Nil(t, schema.None[int]().Ptr())
	assert.Equal(t, 3, *schema.Some(3).Ptr())
	assert.Equal(t, 9, schema.None[int]().OrElse(9))

	doubled := schema.MapOptional(schema.Some(2), func(x int) int { return x * 2 })
	assert.Equal(t, schema.Some(4), doubled)
	assert.False(t, schema.MapOptional(schema.None[int](), func(x int) int { return x }).Valid)
}

func TestCivilDay(t *testing.T) {
	d, err := schema.ParseCivilDay("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, schema.CivilDay{Year: 2024, Month: time.June, Day: 1}, d)
	assert.Equal(t, "2024-06-01", d.String())

	_, err = schema.ParseCivilDay("2024-02-30")
	assert.Error(t, err)

	next := schema.CivilDay{Year: 2024, Month: time.June, Day: 2}
	assert.True(t, d.Before(next))
	assert.Equal(t, -1, d.Compare(next))
	assert.Equal(t, 1, next.Compare(d))
	assert.Equal(t, 0, d.Compare(d))
	assert.True(t, schema.CivilDay{}.IsZero())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01"`, string(data))

	var back schema.CivilDay
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}

func TestDayKeyLess(t *testing.T) {
	a := schema.DayKey{User: "u2", Day: schema.CivilDay{Year: 2024, Month: 6, Day: 1}}
	b := schema.DayKey{User: "u1", Day: schema.CivilDay{Year: 2024, Month: 6, Day: 2}}
	c := schema.DayKey{User: "u1", Day: schema.CivilDay{Year: 2024, Month: 6, Day: 1}}

	assert.True(t, a.Less(b), "earlier day sorts first")
	assert.True(t, c.Less(a), "same day sorts by user")
	assert.False(t, a.Less(a))
}

func TestEnergy(t *testing.T) {
	assert.Equal(t, schema.Energy(400000), schema.EnergyFromKcal(400))
	assert.Equal(t, schema.Energy(1), schema.EnergyFromKcal(0.0006))
	assert.InDelta(t, 123.456, schema.Energy(123456).Kcal(), 1e-9)
}

func TestReasonFor(t *testing.T) {
	tests := []struct {
		err      error
		expected schema.RejectReason
	}{
		{schema.ErrMalformedTimestamp, schema.MalformedTimestampReason},
		{fmt.Errorf("field: %w", schema.ErrUnknownTimezone), schema.UnknownTimezoneReason},
		{fmt.Errorf("gap: %w", schema.ErrInvalidLocalTime), schema.InvalidLocalTimeReason},
		{fmt.Errorf("unit %q: %w", "kcalx", schema.ErrUnsupportedUnit), schema.UnsupportedUnitReason},
		{schema.ErrInvalidValue, schema.InvalidValueReason},
		{errors.New("something else"), schema.InvalidValueReason},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.ReasonFor(tt.err))
		})
	}
}

func TestRecordError(t *testing.T) {
	recErr := &schema.RecordError{
		Source:   schema.WorkoutSource,
		RecordID: "w9",
		Index:    3,
		Field:    "energy_unit",
		Err:      fmt.Errorf("%q: %w", "kcalx", schema.ErrUnsupportedUnit),
	}

	assert.ErrorIs(t, recErr, schema.ErrUnsupportedUnit)
	assert.Equal(t, `workout record w9: energy_unit: "kcalx": unsupported unit`, recErr.Error())

	rej := recErr.Rejection()
	assert.Equal(t, schema.WorkoutSource, rej.Source)
	assert.Equal(t, "w9", rej.RecordID)
	assert.Equal(t, 3, rej.Index)
	assert.Equal(t, schema.UnsupportedUnitReason, rej.Reason)

	anon := &schema.RecordError{Source: schema.SleepSource, Index: 4, Err: schema.ErrInvalidValue}
	assert.Equal(t, "sleep record #4: invalid value", anon.Error())
}

func TestRawEventAccessors(t *testing.T) {
	sleep := schema.SleepEvent(0, schema.SleepRecord{ID: "s1", UserID: "u1"})
	workout := schema.WorkoutEvent(1, schema.WorkoutRecord{ID: "w1", UserID: "u2"})

	assert.Equal(t, schema.SleepSource, sleep.Source)
	assert.Equal(t, "s1", sleep.RecordID())
	assert.Equal(t, "u1", sleep.UserID())
	assert.Equal(t, schema.WorkoutSource, workout.Source)
	assert.Equal(t, "w1", workout.RecordID())
	assert.Equal(t, "u2", workout.UserID())
	assert.Empty(t, schema.RawEvent{}.RecordID())
}
