// Package heatmap - Decaying 2D presence density accumulation and overlay
// rendering.
package heatmap

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-trajectory/common"
)

// Config contains the accumulation and rendering parameters.
type Config struct {
	// DecayFactor multiplies the whole buffer every frame before new
	// contributions are added. 0.99 fades stale presence to ~37% over 100
	// frames and ~5% over 300.
	DecayFactor float64
	// Alpha is the overlay blend weight: out = frame*(1-Alpha) + color*Alpha.
	Alpha float64
	// Palette selects the colormap ("jet", "hot" or "bone").
	Palette string
	// Downscale accumulates the buffer at 1/Downscale of the frame
	// resolution. 1 (or 0) keeps full resolution.
	Downscale int
}

// DefaultConfig returns the stock heatmap parameters.
func DefaultConfig() Config {
	return Config{
		DecayFactor: 0.99,
		Alpha:       0.5,
		Palette:     PaletteJet,
		Downscale:   1,
	}
}

// Accumulator maintains the decaying density buffer for one session.
//
// The buffer has a two-phase lifecycle: uninitialized until the first Step
// call supplies the frame dimensions, then fixed to that shape. A frame-size
// change mid-session is an error, not something to paper over.
type Accumulator struct {
	cfg Config

	buf         *tensor.Dense
	frameW      int
	frameH      int
	bufW        int
	bufH        int
	initialized bool
}

// NewAccumulator creates an accumulator. Zero-valued config fields fall back
// to the defaults.
func NewAccumulator(cfg Config) *Accumulator {
	def := DefaultConfig()
	if cfg.DecayFactor <= 0 || cfg.DecayFactor > 1 {
		cfg.DecayFactor = def.DecayFactor
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = def.Alpha
	}
	if cfg.Palette == "" {
		cfg.Palette = def.Palette
	}
	if cfg.Downscale < 1 {
		cfg.Downscale = 1
	}
	return &Accumulator{cfg: cfg}
}

// Config returns the effective configuration after default substitution.
func (a *Accumulator) Config() Config { return a.cfg }

// Initialized reports whether the buffer has been allocated yet.
func (a *Accumulator) Initialized() bool { return a.initialized }

// BufferSize returns the allocated buffer dimensions, or zeros before the
// first Step.
func (a *Accumulator) BufferSize() (w, h int) { return a.bufW, a.bufH }

// Step runs one frame of accumulation: decay the whole buffer, then add a
// disk contribution for every detection. Decay runs even when dets is empty;
// an idle scene must still fade.
//
// Arguments:
//   - width, height: The frame dimensions. Must match the session's first
//     frame thereafter.
//   - dets: This frame's detections. Track IDs are irrelevant here; every
//     box contributes.
//
// Returns:
//   - error: On a frame-size change or an internal tensor failure.
func (a *Accumulator) Step(width, height int, dets []common.Detection) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("heatmap: invalid frame size %dx%d", width, height)
	}
	if !a.initialized {
		a.frameW, a.frameH = width, height
		a.bufW = (width + a.cfg.Downscale - 1) / a.cfg.Downscale
		a.bufH = (height + a.cfg.Downscale - 1) / a.cfg.Downscale
		a.buf = tensor.New(tensor.WithShape(a.bufH, a.bufW), tensor.Of(tensor.Float32))
		a.initialized = true
	} else if width != a.frameW || height != a.frameH {
		return errors.Errorf("heatmap: frame size changed from %dx%d to %dx%d mid-session",
			a.frameW, a.frameH, width, height)
	}

	if _, err := a.buf.MulScalar(float32(a.cfg.DecayFactor), true, tensor.UseUnsafe()); err != nil {
		return errors.Wrap(err, "heatmap: decay")
	}

	data := a.buf.Data().([]float32)
	for _, det := range dets {
		a.splat(data, det.Box)
	}
	return nil
}

// splat adds +2 to every cell within the box's inscribed disk: radius is
// half the smaller box dimension around the integer box center, clipped to
// the box rectangle. The disk is never extended outside the box even where
// it would poke past a corner.
func (a *Accumulator) splat(data []float32, b common.BoundingBox) {
	s := a.cfg.Downscale
	x1 := int(b.X1) / s
	y1 := int(b.Y1) / s
	x2 := int(b.X2) / s
	y2 := int(b.Y2) / s

	cx := int((b.X1 + b.X2) / 2 / float32(s))
	cy := int((b.Y1 + b.Y2) / 2 / float32(s))
	radius := min(x2-x1, y2-y1) / 2
	r2 := radius * radius

	x1 = max(x1, 0)
	y1 = max(y1, 0)
	x2 = min(x2, a.bufW)
	y2 = min(y2, a.bufH)

	for y := y1; y < y2; y++ {
		row := y * a.bufW
		dy := y - cy
		for x := x1; x < x2; x++ {
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				data[row+x] += 2
			}
		}
	}
}

// At returns the buffer value at buffer coordinates (x, y). Zero before
// initialization or out of bounds.
func (a *Accumulator) At(x, y int) float32 {
	if !a.initialized || x < 0 || y < 0 || x >= a.bufW || y >= a.bufH {
		return 0
	}
	return a.buf.Data().([]float32)[y*a.bufW+x]
}

// Data exposes the raw buffer in row-major order. It is owned by the
// accumulator; callers must not retain it across Step calls.
func (a *Accumulator) Data() []float32 {
	if !a.initialized {
		return nil
	}
	return a.buf.Data().([]float32)
}

// normalized maps the buffer onto 0..255 with min-max scaling. A flat buffer
// normalizes to all zeros.
func (a *Accumulator) normalized() []uint8 {
	data := a.buf.Data().([]float32)
	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]uint8, len(data))
	if hi <= lo {
		return out
	}
	scale := 255 / (hi - lo)
	for i, v := range data {
		out[i] = uint8((v - lo) * scale)
	}
	return out
}
