// Package main provides a performance benchmarking tool for the healthmerge CLI.
// It generates synthetic sleep and workout exports of increasing size, merges
// each one several times per configuration, treats the first successful run
// as cold and averages the rest as warm, and writes the timings to CSV.
//
// Prerequisites:
// - healthmerge binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic exports are written
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Scenario string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	Runs      int
	Users     int
	Datasets  map[string]int // name -> days of data per user
	Scenarios map[string][]string
}

// scenarioOrder keeps output stable.
var scenarioOrder = []string{"single-worker", "parallel", "parallel-tokyo", "sqlite-history"}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir: workDir,
		Timeout: 5 * time.Minute,
		Runs:    4,
		Users:   25,
		Datasets: map[string]int{
			"small":  30,
			"medium": 365,
			"large":  3650,
		},
		Scenarios: map[string][]string{
			"single-worker":  {"--workers", "1"},
			"parallel":       {"--workers", "14"},
			"parallel-tokyo": {"--workers", "14", "--reference-zone", "Asia/Tokyo"},
			"sqlite-history": {"--workers", "14", "--history-backend", "sqlite", "--history-db-connect", filepath.Join(workDir, "bench_history.db")},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary exists and the work dir is writable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("healthmerge"); err != nil {
		return fmt.Errorf("healthmerge binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

type sleepRecord struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	QualityScore float64 `json:"quality_score"`
}

type workoutRecord struct {
	WorkoutID      string  `json:"workout_id"`
	UserID         string  `json:"user_id"`
	Timestamp      string  `json:"timestamp"`
	Timezone       string  `json:"timezone"`
	Duration       float64 `json:"duration"`
	CaloriesBurned float64 `json:"calories_burned"`
}

var zones = []string{"America/New_York", "Europe/Berlin", "Asia/Tokyo", "Australia/Sydney", "UTC"}

// generateDataset writes one night of sleep and up to two workouts per user per day.
func generateDataset(config BenchmarkConfig, name string, days int) (string, string, error) {
	rng := rand.New(rand.NewPCG(uint64(days), uint64(config.Users)))
	origin := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	var sleep []sleepRecord
	var workouts []workoutRecord
	for u := range config.Users {
		user := fmt.Sprintf("u%03d", u)
		for d := range days {
			bed := origin.AddDate(0, 0, d).Add(time.Duration(21+rng.IntN(5)) * time.Hour)
			length := time.Duration(240+rng.IntN(300)) * time.Minute
			sleep = append(sleep, sleepRecord{
				ID:           fmt.Sprintf("s-%s-%d", user, d),
				UserID:       user,
				StartTime:    bed.Format(time.RFC3339),
				EndTime:      bed.Add(length).Format(time.RFC3339),
				QualityScore: float64(50 + rng.IntN(50)),
			})
			for w := range rng.IntN(3) {
				start := origin.AddDate(0, 0, d).Add(time.Duration(6+rng.IntN(14)) * time.Hour)
				workouts = append(workouts, workoutRecord{
					WorkoutID:      fmt.Sprintf("w-%s-%d-%d", user, d, w),
					UserID:         user,
					Timestamp:      start.Format("2006-01-02 15:04:05"),
					Timezone:       zones[u%len(zones)],
					Duration:       float64(20 + rng.IntN(70)),
					CaloriesBurned: float64(150 + rng.IntN(700)),
				})
			}
		}
	}

	sleepPath := filepath.Join(config.WorkDir, name+"_sleep.json")
	workoutPath := filepath.Join(config.WorkDir, name+"_workouts.json")
	if err := writeJSONFile(sleepPath, sleep); err != nil {
		return "", "", err
	}
	if err := writeJSONFile(workoutPath, workouts); err != nil {
		return "", "", err
	}
	return sleepPath, workoutPath, nil
}

func writeJSONFile(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return json.NewEncoder(file).Encode(v)
}

// runBenchmarks executes every scenario against every dataset
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %d users, %v timeout, %d runs per scenario\n",
		len(config.Datasets), config.Users, config.Timeout, config.Runs)

	for _, name := range []string{"small", "medium", "large"} {
		days := config.Datasets[name]
		fmt.Printf("Generating %s dataset (%d days x %d users)\n", name, days, config.Users)
		sleepPath, workoutPath, err := generateDataset(config, name, days)
		if err != nil {
			fmt.Printf("  Skipping %s: %v\n", name, err)
			continue
		}

		for _, scenario := range scenarioOrder {
			results = append(results, runBenchmarkSuite(config, name, scenario, sleepPath, workoutPath))
		}
	}

	return results
}

// runBenchmarkSuite runs one scenario and summarizes its timings
func runBenchmarkSuite(config BenchmarkConfig, dataset, scenario, sleepPath, workoutPath string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", scenario, dataset)

	args := append([]string{"merge", sleepPath, workoutPath, "--output", "csv", "--emoji", "no"}, config.Scenarios[scenario]...)
	cold, times := runBenchmark(config, args)

	warmAvg := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}
	coldTime := "TIMEOUT"
	if cold > 0 {
		coldTime = fmt.Sprintf("%.3fs", cold)
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTime, warmAvg)
	return BenchmarkResult{Dataset: dataset, Scenario: scenario, ColdTime: coldTime, WarmTime: warmAvg}
}

// runBenchmark executes a merge several times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("healthmerge", args...)
		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output looks like a merged CSV
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "day,user,total_sleep_minutes")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/healthmerge_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "scenario", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Scenario, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, scenario := range scenarioOrder {
		fmt.Printf("%s:\n", scenario)
		for _, result := range results {
			if result.Scenario == scenario {
				fmt.Printf("  %-8s: Cold: %s, Warm: %s\n", result.Dataset, result.ColdTime, result.WarmTime)
			}
		}
	}
}
