package tracking

import (
	"math"
	"time"

	"github.com/nvr-ai/go-trajectory/common"
)

// DefaultBandWidth is the default half-width, in pixels, of the sampling
// band around each reference line endpoint's y-coordinate.
const DefaultBandWidth = 10

// SpeedConfig configures the speed estimation reference band.
type SpeedConfig struct {
	// Line is the two-point reference line. Samples are only taken while a
	// track's x-position lies strictly between Line[0].X and Line[1].X.
	Line [2]common.Point
	// BandWidth is the half-width around each endpoint's y-coordinate within
	// which a track is eligible for a speed estimate. Bounds are inclusive.
	BandWidth float64
}

// DefaultSpeedConfig returns the stock reference band: a horizontal line at
// y=400 spanning most of a 1280-wide frame.
func DefaultSpeedConfig() SpeedConfig {
	return SpeedConfig{
		Line:      [2]common.Point{{X: 20, Y: 400}, {X: 1260, Y: 400}},
		BandWidth: DefaultBandWidth,
	}
}

// Estimator derives a per-track speed from the vertical displacement between
// the last two position samples taken inside the reference band.
//
// The estimate is computed at most once per track: the first qualifying
// crossing freezes the value and later band visits never update it. Speeds
// are reported in pixels per second of wall-clock time; real-world unit
// conversion is out of scope.
type Estimator struct {
	cfg SpeedConfig

	lastTime map[int]time.Time
	lastPos  map[int]common.Point
	speeds   map[int]float64
	done     map[int]struct{}

	// now is swappable for tests; it must be monotonic between consecutive
	// calls for the same track.
	now func() time.Time
}

// NewEstimator creates a speed estimator for one session.
func NewEstimator(cfg SpeedConfig) *Estimator {
	if cfg.BandWidth <= 0 {
		cfg.BandWidth = DefaultBandWidth
	}
	return &Estimator{
		cfg:      cfg,
		lastTime: make(map[int]time.Time),
		lastPos:  make(map[int]common.Point),
		speeds:   make(map[int]float64),
		done:     make(map[int]struct{}),
		now:      time.Now,
	}
}

// Observe feeds the estimator the track's current trail. The last trail
// entry is the current position. Calls outside the reference x-interval are
// no-ops; calls inside it always prime the next delta, and the first call
// that lands inside the band with a primed sample freezes the estimate.
func (e *Estimator) Observe(trackID int, trail []common.Point) {
	if len(trail) == 0 {
		return
	}
	cur := trail[len(trail)-1]

	// Outside the reference span nothing is sampled at all.
	if !(e.cfg.Line[0].X < cur.X && cur.X < e.cfg.Line[1].X) {
		return
	}

	inBand := e.nearLine(cur.Y)

	lastT, sampled := e.lastTime[trackID]
	if sampled && inBand {
		if _, frozen := e.done[trackID]; !frozen {
			// A degenerate delta is skipped, not frozen: the next frame
			// gets another chance at a usable sample.
			if dt := e.now().Sub(lastT).Seconds(); dt > 0 {
				e.done[trackID] = struct{}{}
				e.speeds[trackID] = math.Abs(cur.Y-e.lastPos[trackID].Y) / dt
			}
		}
	}

	e.lastTime[trackID] = e.now()
	e.lastPos[trackID] = cur
}

// nearLine reports whether y falls within the band around either reference
// endpoint. Bounds are inclusive so a sample landing exactly on the band
// edge still qualifies.
func (e *Estimator) nearLine(y float64) bool {
	for _, p := range e.cfg.Line {
		if p.Y-e.cfg.BandWidth <= y && y <= p.Y+e.cfg.BandWidth {
			return true
		}
	}
	return false
}

// Speed returns the frozen estimate for a track, if one has been computed.
func (e *Estimator) Speed(trackID int) (float64, bool) {
	s, ok := e.speeds[trackID]
	return s, ok
}

// Speeds returns a copy of all frozen estimates keyed by track ID.
func (e *Estimator) Speeds() map[int]float64 {
	out := make(map[int]float64, len(e.speeds))
	for id, s := range e.speeds {
		out[id] = s
	}
	return out
}

// SetClock overrides the wall-clock source. Intended for tests.
func (e *Estimator) SetClock(now func() time.Time) { e.now = now }
