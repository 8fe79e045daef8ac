// Package profiler - Lightweight per-stage timing for the frame pipeline.
package profiler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// StageStats summarizes the recorded durations for one pipeline stage.
type StageStats struct {
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Mean returns the average duration, or zero before any samples.
func (s StageStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// StageTimer aggregates wall-clock durations per named pipeline stage
// (history, counting, heatmap, speed, render). It is thread-safe, though the
// frame pipeline itself is single-threaded; the lock only matters when a
// host polls Report from another goroutine.
type StageTimer struct {
	mu     sync.Mutex
	stages map[string]*StageStats
}

// NewStageTimer creates an empty timer.
func NewStageTimer() *StageTimer {
	return &StageTimer{stages: make(map[string]*StageStats)}
}

// Start begins timing a stage and returns the function that records the
// elapsed duration.
//
// @example
// done := timer.Start("heatmap")
// accumulator.Step(w, h, dets)
// done()
func (t *StageTimer) Start(name string) func() {
	begin := time.Now()
	return func() { t.Record(name, time.Since(begin)) }
}

// Record adds one duration sample for a stage.
func (t *StageTimer) Record(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stages[name]
	if !ok {
		s = &StageStats{Min: d, Max: d}
		t.stages[name] = s
	}
	s.Count++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
}

// Stats returns a copy of the aggregated stats for one stage.
func (t *StageTimer) Stats(name string) (StageStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.stages[name]
	if !ok {
		return StageStats{}, false
	}
	return *s, true
}

// Report renders a one-line-per-stage summary sorted by stage name.
func (t *StageTimer) Report() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.stages))
	for name := range t.stages {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		s := t.stages[name]
		fmt.Fprintf(&b, "%-10s n=%-6d mean=%-12s min=%-12s max=%s\n",
			name, s.Count, s.Mean(), s.Min, s.Max)
	}
	return b.String()
}
