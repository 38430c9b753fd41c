// Package core runs the merge pipeline: normalize, aggregate and measure.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/healthmerge/core/agg"
	"github.com/huangsam/healthmerge/core/metric"
	"github.com/huangsam/healthmerge/core/norm"
	"github.com/huangsam/healthmerge/core/tz"
	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/huangsam/healthmerge/internal/ingest"
	"github.com/huangsam/healthmerge/internal/outwriter"
	"github.com/huangsam/healthmerge/schema"
)

// Merge normalizes events, aggregates the accepted ones into daily summaries
// and computes the low-sleep calorie metric. Record failures become
// rejections; only an invalid configuration returns an error.
func Merge(events []schema.RawEvent, cfg *contract.Config) (schema.MergeResult, error) {
	normalizer, err := norm.New(cfg.NormalizerOptions())
	if err != nil {
		return schema.MergeResult{}, err
	}

	events = filterUser(events, cfg.UserFilter, cfg.DefaultUser)
	accepted, rejected := normalizer.NormalizeAll(events)
	summaries := agg.AggregateParallel(accepted, cfg.Workers)

	return schema.MergeResult{
		Summaries:  summaries,
		Metric:     metric.LowSleepCalories(summaries, cfg.SleepThreshold),
		Rejections: rejected,
		Stats:      mergeStats(events, accepted, rejected, summaries),
	}, nil
}

// filterUser keeps events owned by user. Records without a user id belong to
// defaultUser. An empty filter keeps everything.
func filterUser(events []schema.RawEvent, user, defaultUser string) []schema.RawEvent {
	if user == "" {
		return events
	}
	kept := make([]schema.RawEvent, 0, len(events))
	for _, e := range events {
		owner := strings.TrimSpace(e.UserID())
		if owner == "" {
			owner = strings.TrimSpace(defaultUser)
		}
		if owner == user {
			kept = append(kept, e)
		}
	}
	return kept
}

func mergeStats(events []schema.RawEvent, accepted []schema.AttributedEvent, rejected []schema.Rejection, summaries []schema.DailySummary) schema.MergeStats {
	var stats schema.MergeStats
	for _, e := range events {
		switch e.Source {
		case schema.SleepSource:
			stats.SleepRecordsRead++
		case schema.WorkoutSource:
			stats.WorkoutRecordsRead++
		}
	}
	for _, e := range accepted {
		switch e.Source {
		case schema.SleepSource:
			stats.SleepRecordsAccepted++
		case schema.WorkoutSource:
			stats.WorkoutRecordsAccepted++
		}
	}
	stats.RejectedRecords = len(rejected)

	days := make(map[schema.CivilDay]struct{}, len(summaries))
	for _, s := range summaries {
		days[s.Day] = struct{}{}
	}
	stats.DaysCovered = len(days)
	if len(summaries) > 0 {
		// summaries are sorted by day first
		stats.FirstDay = schema.Some(summaries[0].Day)
		stats.LastDay = schema.Some(summaries[len(summaries)-1].Day)
	}
	return stats
}

// MergeFiles loads both exports, merges them and records the run in the
// history store when one is configured.
func MergeFiles(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (schema.MergeResult, error) {
	if !shouldSuppressHeader(ctx) {
		logMergeHeader(cfg)
	}
	start := time.Now()

	events, err := ingest.Load(cfg.SleepPath, cfg.WorkoutPath)
	if err != nil {
		return schema.MergeResult{}, err
	}
	result, err := Merge(events, cfg)
	if err != nil {
		return schema.MergeResult{}, err
	}
	if !shouldSuppressHeader(ctx) {
		for _, r := range result.Rejections {
			contract.LogRejection(r)
		}
	}

	recordRun(ctx, cfg, mgr, start, result)
	return result, nil
}

// recordRun persists the run. Tracking failures are logged and never fail the merge.
func recordRun(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, start time.Time, result schema.MergeResult) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	runID, err := store.BeginRun(ctx, start, cfg.Params())
	if err != nil {
		contract.LogWarn("failed to begin history run", err)
		return
	}
	if err := store.RecordResult(ctx, runID, result); err != nil {
		contract.LogWarn("failed to record merge results", err)
	}
	if err := store.EndRun(ctx, runID, time.Now(), result); err != nil {
		contract.LogWarn("failed to end history run", err)
	}
}

func logMergeHeader(cfg *contract.Config) {
	prefix := ""
	if cfg.UseEmojis {
		prefix = "🩺 "
	}
	contract.LogInfo("%sMerging %s and %s (reference zone %s, sleep threshold %v)",
		prefix, filepath.Base(cfg.SleepPath), filepath.Base(cfg.WorkoutPath), referenceZone(cfg), cfg.SleepThreshold)
	if cfg.UserFilter != "" {
		contract.LogInfo("%sFiltering to user %s", prefix, cfg.UserFilter)
	}
}

func referenceZone(cfg *contract.Config) string {
	if cfg.ReferenceZone == "" {
		return schema.DefaultReferenceZone
	}
	return tz.CanonicalZoneName(cfg.ReferenceZone)
}

// ExecuteMerge runs the merge and writes the results.
// It serves as the main entry point for the 'merge' command.
func ExecuteMerge(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	result, err := MergeFiles(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteMerge(result, cfg, duration)
}

// NormalizeTimestamp interprets raw as a UTC instant, or as a wall clock in
// zone when zone is set, and reports where it lands in the reference zone.
func NormalizeTimestamp(cfg *contract.Config, raw, zone string) (schema.NormalizedTimestamp, error) {
	rep := tz.UTC()
	if strings.TrimSpace(zone) != "" {
		rep = tz.Local(zone)
	}
	parser := tz.NewParser(nil, cfg.Ambiguity)
	out, err := parser.Explain(raw, rep, referenceZone(cfg))
	if err != nil {
		return schema.NormalizedTimestamp{}, fmt.Errorf("cannot normalize %q: %w", raw, err)
	}
	return out, nil
}

// ExecuteNormalize explains a single timestamp and writes the result.
// It serves as the main entry point for the 'normalize' command.
func ExecuteNormalize(_ context.Context, cfg *contract.Config, raw, zone string) error {
	out, err := NormalizeTimestamp(cfg, raw, zone)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteNormalized(out, cfg)
}
