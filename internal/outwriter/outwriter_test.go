package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/internal/parquet"
	"github.com/huangsam/healthmerge/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() schema.MergeResult {
	day1 := schema.CivilDay{Year: 2024, Month: time.June, Day: 1}
	day2 := schema.CivilDay{Year: 2024, Month: time.June, Day: 2}
	return schema.MergeResult{
		Summaries: []schema.DailySummary{
			{
				User:                "u1",
				Day:                 day1,
				TotalSleep:          schema.Some(5 * time.Hour),
				TotalCalories:       schema.Some(schema.EnergyFromKcal(400)),
				TotalWorkout:        schema.Some(45 * time.Minute),
				AverageSleepQuality: schema.Some(82.5),
				SleepEventCount:     1,
				WorkoutEventCount:   1,
			},
			{
				User:              "u1",
				Day:               day2,
				TotalCalories:     schema.Some(schema.EnergyFromKcal(250)),
				TotalWorkout:      schema.Some(30 * time.Minute),
				WorkoutEventCount: 1,
			},
		},
		Metric: schema.Metric{
			Threshold:        6 * time.Hour,
			AverageCalories:  schema.Some(400.0),
			QualifyingDays:   []schema.DayKey{{User: "u1", Day: day1}},
			LowSleepDayCount: 1,
			Status:           schema.MetricOK,
		},
		Rejections: []schema.Rejection{
			{Source: schema.WorkoutSource, RecordID: "w9", Index: 2, Field: "energy_unit",
				Reason: schema.UnsupportedUnitReason, Detail: `unsupported unit: "kcalx"`},
		},
		Stats: schema.MergeStats{
			SleepRecordsRead: 1, WorkoutRecordsRead: 3, SleepRecordsAccepted: 1, WorkoutRecordsAccepted: 2,
			RejectedRecords: 1, DaysCovered: 2,
			FirstDay: schema.Some(day1), LastDay: schema.Some(day2),
		},
	}
}

func plainConfig() *contract.Config {
	return &contract.Config{Precision: 1, Width: 120, Workers: 2, HistoryBackend: schema.NoneBackend}
}

func TestWriteMergeTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMergeTable(&buf, sampleResult(), plainConfig(), 1500*time.Millisecond))
	out := buf.String()

	for _, want := range []string{
		"DAY", "USER", "2024-06-01", "300.0", "400.0", "82.5",
		"Average calories on days with under 360.0 min of sleep: 400.0 over 1 of 1 low-sleep days [ok]",
		"Rejected 1 records:",
		`workout w9 #2 UnsupportedUnit energy_unit: unsupported unit: "kcalx"`,
		"Merged 1 of 1 sleep and 2 of 3 workout records into 2 daily summaries",
		"Merge completed in 1.5s with 2 workers. History backend: none",
	} {
		assert.Contains(t, out, want)
	}

	// The second day has no sleep records, shown as a dash rather than zero.
	for line := range strings.SplitSeq(out, "\n") {
		if strings.Contains(line, "2024-06-02") {
			assert.Contains(t, line, absentText)
			assert.NotContains(t, line, "82.5")
		}
	}
}

func TestWriteMergeTableNoQualifyingDays(t *testing.T) {
	result := sampleResult()
	result.Metric = schema.Metric{Threshold: 4 * time.Hour, QualifyingDays: []schema.DayKey{}, Status: schema.NoQualifyingDays}
	result.Rejections = nil

	var buf bytes.Buffer
	require.NoError(t, writeMergeTable(&buf, result, plainConfig(), time.Second))
	out := buf.String()
	assert.Contains(t, out, "under 240.0 min of sleep: n/a (0 low-sleep days) [no_qualifying_days]")
	assert.NotContains(t, out, "Rejected")
}

func TestWriteMergeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMergeCSV(&buf, sampleResult(), 2))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, summaryCSVHeader, records[0])
	assert.Equal(t, []string{"2024-06-01", "u1", "300.00", "400.00", "45.00", "82.50", "1", "1"}, records[1])
	assert.Equal(t, []string{"2024-06-02", "u1", "", "250.00", "30.00", "", "0", "1"}, records[2])
}

func TestWriteMergeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMergeJSON(&buf, sampleResult()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	summaries := doc["summaries"].([]any)
	require.Len(t, summaries, 2)
	second := summaries[1].(map[string]any)
	assert.Nil(t, second["total_sleep_minutes"], "absent sleep is null, not zero")
	assert.InDelta(t, 250.0, second["total_calories"], 0.001)

	metric := doc["metric"].(map[string]any)
	assert.InDelta(t, 400.0, metric["average_calories_on_low_sleep_days"], 0.001)
	assert.InDelta(t, 1.0, metric["qualifying_day_count"], 0.001)

	meta := doc["metadata"].(map[string]any)
	assert.Equal(t, "2024-06-01", meta["date_range_start"])
	assert.Len(t, doc["rejections"], 1)
}

func TestWriteMergeResultsToFiles(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []schema.OutputMode{schema.TextOut, schema.CSVOut, schema.JSONOut, schema.ParquetOut} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := plainConfig()
			cfg.Output = mode
			cfg.OutputFile = filepath.Join(dir, "out."+string(mode))
			require.NoError(t, NewOutWriter().WriteMerge(sampleResult(), cfg, time.Second))

			info, err := os.Stat(cfg.OutputFile)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	file, err := os.Open(filepath.Join(dir, "out.parquet"))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	reader := pq.NewGenericReader[parquet.SummaryRow](file)
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(2), reader.NumRows())
}

func TestWriteMergeParquetNeedsFile(t *testing.T) {
	cfg := plainConfig()
	cfg.Output = schema.ParquetOut
	err := WriteMergeResults(sampleResult(), cfg, time.Second)
	assert.ErrorContains(t, err, "--output-file is required")
}

func TestWriteNormalizedTimestamp(t *testing.T) {
	result := schema.NormalizedTimestamp{
		Input:          "2024-06-01 18:00:00",
		Representation: schema.LocalRepresentation,
		Zone:           "America/New_York",
		Instant:        "2024-06-01T22:00:00Z",
		ReferenceZone:  "Asia/Tokyo",
		WallClock:      "2024-06-02T07:00:00",
		Day:            schema.CivilDay{Year: 2024, Month: time.June, Day: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, writeNormalizedText(&buf, result))
	out := buf.String()
	assert.Contains(t, out, "Input:          2024-06-01 18:00:00 (local in America/New_York)")
	assert.Contains(t, out, "Instant (UTC):  2024-06-01T22:00:00Z")
	assert.Contains(t, out, "Day:            2024-06-02")

	cfg := plainConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "ts.json")
	require.NoError(t, NewOutWriter().WriteNormalized(result, cfg))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"day": "2024-06-02"`)
}

func TestGetMaxTableUserWidth(t *testing.T) {
	assert.Equal(t, 8, GetMaxTableUserWidth(&contract.Config{Width: 60}))
	assert.Equal(t, 40, GetMaxTableUserWidth(&contract.Config{Width: 400}))
	assert.Equal(t, 14, GetMaxTableUserWidth(&contract.Config{Width: 112}))
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(2, "n/a")
	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "1.50", fmtOptional(schema.Some(1.5)))
	assert.Equal(t, "n/a", fmtOptional(schema.None[float64]()))
}
