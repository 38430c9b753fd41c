// Package ingest loads the sleep and workout JSON exports into raw records.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/healthmerge/schema"
)

// ErrLoad marks failures to read or decode an input file.
var ErrLoad = errors.New("failed to load input")

// flexString accepts a JSON string, number or null. Numbers keep their
// decimal text so epoch timestamps and numeric ids survive unchanged.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	text := n.String()
	if strings.ContainsAny(text, "eE") {
		v, err := n.Float64()
		if err != nil {
			return err
		}
		text = strconv.FormatFloat(v, 'f', -1, 64)
	}
	*f = flexString(text)
	return nil
}

type sleepJSON struct {
	ID             flexString               `json:"id"`
	UserID         flexString               `json:"user_id"`
	StartTime      flexString               `json:"start_time"`
	EndTime        flexString               `json:"end_time"`
	Duration       schema.Optional[float64] `json:"duration"`
	DurationUnit   string                   `json:"duration_unit"`
	DurationHours  schema.Optional[float64] `json:"duration_hours"`
	QualityScore   schema.Optional[float64] `json:"quality_score"`
	Representation string                   `json:"representation"`
	Timezone       string                   `json:"timezone"`
	Device         string                   `json:"device"`
}

func (s sleepJSON) record() schema.SleepRecord {
	rec := schema.SleepRecord{
		ID:             string(s.ID),
		UserID:         string(s.UserID),
		Start:          string(s.StartTime),
		End:            string(s.EndTime),
		Representation: schema.Representation(s.Representation),
		Zone:           s.Timezone,
		Duration:       s.Duration,
		DurationUnit:   s.DurationUnit,
		Quality:        s.QualityScore,
		Device:         s.Device,
	}
	if !rec.Duration.Valid && s.DurationHours.Valid {
		rec.Duration = s.DurationHours
		rec.DurationUnit = "hours"
	}
	if rec.Representation == "" {
		rec.Representation = schema.UTCRepresentation
	}
	return rec
}

type workoutJSON struct {
	WorkoutID       flexString               `json:"workout_id"`
	UserID          flexString               `json:"user_id"`
	Timestamp       flexString               `json:"timestamp"`
	Timezone        string                   `json:"timezone"`
	Representation  string                   `json:"representation"`
	Duration        schema.Optional[float64] `json:"duration"`
	DurationUnit    string                   `json:"duration_unit"`
	DurationMinutes schema.Optional[float64] `json:"duration_minutes"`
	CaloriesBurned  schema.Optional[float64] `json:"calories_burned"`
	EnergyUnit      string                   `json:"energy_unit"`
	ExerciseType    string                   `json:"exercise_type"`
	App             string                   `json:"app"`
}

func (w workoutJSON) record() schema.WorkoutRecord {
	rec := schema.WorkoutRecord{
		ID:             string(w.WorkoutID),
		UserID:         string(w.UserID),
		Start:          string(w.Timestamp),
		Representation: schema.Representation(w.Representation),
		Zone:           w.Timezone,
		Duration:       w.Duration,
		DurationUnit:   w.DurationUnit,
		Calories:       w.CaloriesBurned,
		EnergyUnit:     w.EnergyUnit,
		ExerciseType:   w.ExerciseType,
		App:            w.App,
	}
	if !rec.Duration.Valid && w.DurationMinutes.Valid {
		rec.Duration = w.DurationMinutes
		rec.DurationUnit = "minutes"
	}
	if rec.Representation == "" {
		rec.Representation = schema.LocalRepresentation
	}
	return rec
}

func decodeArray(r io.Reader, name string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %s: %v", ErrLoad, name, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: invalid JSON in %s: trailing data after array", ErrLoad, name)
	}
	return items, nil
}

// identity recovers the id and owner of an element that failed to decode.
// Fields that are themselves malformed stay empty.
func identity(raw json.RawMessage, idField string) (id, user string) {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return "", ""
	}
	var f flexString
	if v, ok := fields[idField]; ok && json.Unmarshal(v, &f) == nil {
		id = string(f)
	}
	f = ""
	if v, ok := fields["user_id"]; ok && json.Unmarshal(v, &f) == nil {
		user = string(f)
	}
	return id, user
}

// DecodeSleep reads a JSON array of sleep sessions. An element that does not
// decode is kept with DecodeErr set so it is rejected on its own.
func DecodeSleep(r io.Reader, name string) ([]schema.SleepRecord, error) {
	items, err := decodeArray(r, name)
	if err != nil {
		return nil, err
	}
	records := make([]schema.SleepRecord, len(items))
	for i, raw := range items {
		var item sleepJSON
		if err := json.Unmarshal(raw, &item); err != nil {
			id, user := identity(raw, "id")
			records[i] = schema.SleepRecord{ID: id, UserID: user, DecodeErr: err}
			continue
		}
		records[i] = item.record()
	}
	return records, nil
}

// DecodeWorkouts reads a JSON array of workout sessions. An element that does
// not decode is kept with DecodeErr set so it is rejected on its own.
func DecodeWorkouts(r io.Reader, name string) ([]schema.WorkoutRecord, error) {
	items, err := decodeArray(r, name)
	if err != nil {
		return nil, err
	}
	records := make([]schema.WorkoutRecord, len(items))
	for i, raw := range items {
		var item workoutJSON
		if err := json.Unmarshal(raw, &item); err != nil {
			id, user := identity(raw, "workout_id")
			records[i] = schema.WorkoutRecord{ID: id, UserID: user, DecodeErr: err}
			continue
		}
		records[i] = item.record()
	}
	return records, nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: file not found: %s", ErrLoad, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return f, nil
}

// LoadSleep reads the sleep export at path.
func LoadSleep(path string) ([]schema.SleepRecord, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeSleep(f, path)
}

// LoadWorkouts reads the workout export at path.
func LoadWorkouts(path string) ([]schema.WorkoutRecord, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeWorkouts(f, path)
}

// Events wraps both collections as RawEvents, sleep first, each indexed by
// its position in its own file.
func Events(sleep []schema.SleepRecord, workouts []schema.WorkoutRecord) []schema.RawEvent {
	events := make([]schema.RawEvent, 0, len(sleep)+len(workouts))
	for i, rec := range sleep {
		events = append(events, schema.SleepEvent(i, rec))
	}
	for i, rec := range workouts {
		events = append(events, schema.WorkoutEvent(i, rec))
	}
	return events
}

// Load reads both exports and returns them as RawEvents.
func Load(sleepPath, workoutPath string) ([]schema.RawEvent, error) {
	sleep, err := LoadSleep(sleepPath)
	if err != nil {
		return nil, err
	}
	workouts, err := LoadWorkouts(workoutPath)
	if err != nil {
		return nil, err
	}
	return Events(sleep, workouts), nil
}
