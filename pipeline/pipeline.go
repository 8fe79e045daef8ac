// Package pipeline - Per-frame orchestration of track histories, crossing
// counting, heatmap accumulation and speed estimation for one video session.
package pipeline

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-trajectory/common"
	"github.com/nvr-ai/go-trajectory/counting"
	"github.com/nvr-ai/go-trajectory/heatmap"
	"github.com/nvr-ai/go-trajectory/profiler"
	"github.com/nvr-ai/go-trajectory/regions"
	"github.com/nvr-ai/go-trajectory/tracking"
)

// Config is the construction-time configuration for one session. None of it
// is re-configurable mid-session.
type Config struct {
	// Classes maps class IDs to display labels. Unknown IDs fall back to a
	// numeric label.
	Classes map[int]string
	// RegionPoints configures the counting region: 2 points for a line,
	// >= 3 for a polygon, empty to disable counting. Exactly one point is an
	// invalid configuration; it is reported once and counting is disabled
	// rather than guessed at.
	RegionPoints []common.Point
	// HistoryCapacity bounds per-track position trails.
	HistoryCapacity int
	// Heatmap holds the accumulation and overlay parameters.
	Heatmap heatmap.Config
	// Speed holds the reference band for speed estimation. Leave EnableSpeed
	// false to skip the speed path entirely.
	Speed       tracking.SpeedConfig
	EnableSpeed bool
	// LineThickness is the annotation stroke width.
	LineThickness int
	// Profile enables per-stage timing via the profiler package.
	Profile bool
}

// DefaultConfig returns a session configuration with stock parameters and
// counting disabled (no region points).
func DefaultConfig() Config {
	return Config{
		HistoryCapacity: tracking.DefaultHistoryCapacity,
		Heatmap:         heatmap.DefaultConfig(),
		Speed:           tracking.DefaultSpeedConfig(),
		LineThickness:   2,
	}
}

// Result is the per-frame snapshot returned to the caller. Maps are copies;
// the caller may retain them.
type Result struct {
	FrameIndex int64
	InTotal    int
	OutTotal   int
	PerClass   map[string]counting.Counts
	Speeds     map[int]float64
}

// Processor is the per-session frame engine. It owns all mutable per-track
// state and must be confined to a single goroutine; independent streams get
// independent Processors.
type Processor struct {
	id  string
	cfg Config
	log *slog.Logger

	history *tracking.History
	counter *counting.Counter // nil when counting is disabled
	heat    *heatmap.Accumulator
	speed   *tracking.Estimator // nil when the speed path is disabled
	timer   *profiler.StageTimer

	frameW int
	frameH int
	frames int64
}

// NewProcessor builds a session from the given configuration.
//
// An invalid counting region (a single point) is logged and disables
// counting for the session; the heatmap and speed paths are unaffected.
//
// Arguments:
//   - cfg: Session configuration.
//   - logger: Destination for configuration warnings; nil uses slog.Default.
//
// Returns:
//   - *Processor: The session engine.
//   - error: Only on programmer errors such as a broken heatmap palette.
func NewProcessor(cfg Config, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = tracking.DefaultHistoryCapacity
	}
	if cfg.LineThickness <= 0 {
		cfg.LineThickness = 2
	}
	if _, err := heatmap.PaletteLUT(firstNonEmpty(cfg.Heatmap.Palette, heatmap.PaletteJet)); err != nil {
		return nil, errors.Wrap(err, "pipeline: heatmap palette")
	}

	p := &Processor{
		id:      uuid.NewString(),
		cfg:     cfg,
		log:     logger,
		history: tracking.NewHistory(cfg.HistoryCapacity),
		heat:    heatmap.NewAccumulator(cfg.Heatmap),
	}

	switch n := len(cfg.RegionPoints); {
	case n == 0:
		// No region configured; counting stays off.
	case n < 2:
		p.log.Warn("invalid counting region, counting disabled for this session",
			"session", p.id, "points", n)
	default:
		region, err := regions.NewRegion(cfg.RegionPoints)
		if err != nil {
			p.log.Warn("invalid counting region, counting disabled for this session",
				"session", p.id, "error", err)
		} else {
			p.counter = counting.NewCounter(region)
			p.log.Info("counting region initiated", "session", p.id, "kind", region.Kind().String())
		}
	}

	if cfg.EnableSpeed {
		p.speed = tracking.NewEstimator(cfg.Speed)
	}
	if cfg.Profile {
		p.timer = profiler.NewStageTimer()
	}
	return p, nil
}

// ID returns the session identifier used in log records.
func (p *Processor) ID() string { return p.id }

// CountingEnabled reports whether a usable counting region is configured.
func (p *Processor) CountingEnabled() bool { return p.counter != nil }

// Timer returns the stage timer, or nil when profiling is off.
func (p *Processor) Timer() *profiler.StageTimer { return p.timer }

// Step runs one frame of analytics without touching any image data: history
// updates, crossing counting, speed sampling and heatmap accumulation.
//
// The heatmap decays every frame even when dets is empty. Detections without
// a track ID contribute to the heatmap only. The frame size is pinned by the
// first call; a later change is an error.
func (p *Processor) Step(width, height int, dets []common.Detection) (Result, error) {
	if p.frames == 0 {
		p.frameW, p.frameH = width, height
	} else if width != p.frameW || height != p.frameH {
		return Result{}, errors.Errorf(
			"pipeline: frame size changed from %dx%d to %dx%d mid-session",
			p.frameW, p.frameH, width, height)
	}
	p.frames++

	stop := p.stage("heatmap")
	err := p.heat.Step(width, height, dets)
	stop()
	if err != nil {
		return Result{}, err
	}

	for _, det := range dets {
		if !det.Tracked() {
			continue
		}

		stop = p.stage("history")
		trail := p.history.Update(det.TrackID, det.Box.Center())
		stop()

		if p.counter != nil {
			stop = p.stage("counting")
			p.counter.Observe(det.TrackID, p.className(det.ClassID), det.Box, trail)
			stop()
		}
		if p.speed != nil {
			stop = p.stage("speed")
			p.speed.Observe(det.TrackID, trail)
			stop()
		}
	}

	return p.snapshot(), nil
}

// snapshot assembles the caller-facing result for the current frame.
func (p *Processor) snapshot() Result {
	res := Result{FrameIndex: p.frames}
	if p.counter != nil {
		res.InTotal, res.OutTotal = p.counter.Totals()
		res.PerClass = p.counter.PerClass()
	}
	if p.speed != nil {
		res.Speeds = p.speed.Speeds()
	}
	return res
}

// className resolves a class ID to its display label.
func (p *Processor) className(id int) string {
	if name, ok := p.cfg.Classes[id]; ok {
		return name
	}
	return "class-" + strconv.Itoa(id)
}

// stage returns the stop function for a timed stage, or a no-op when
// profiling is disabled.
func (p *Processor) stage(name string) func() {
	if p.timer == nil {
		return func() {}
	}
	return p.timer.Start(name)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
