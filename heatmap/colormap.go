package heatmap

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Palette names accepted by Config.Palette.
const (
	PaletteJet  = "jet"
	PaletteHot  = "hot"
	PaletteBone = "bone"
)

// LUT is a 256-entry RGB lookup table mapping normalized intensity to color.
type LUT [256][3]uint8

var palettes = map[string]struct {
	lut LUT
	cv  gocv.ColormapTypes
}{
	PaletteJet:  {lut: buildLUT(jetChannel), cv: gocv.ColormapJet},
	PaletteHot:  {lut: buildLUT(hotChannel), cv: gocv.ColormapHot},
	PaletteBone: {lut: buildLUT(boneChannel), cv: gocv.ColormapBone},
}

// PaletteLUT returns the pure-Go lookup table for a named palette.
func PaletteLUT(name string) (LUT, error) {
	p, ok := palettes[name]
	if !ok {
		return LUT{}, errors.Errorf("heatmap: unknown palette %q", name)
	}
	return p.lut, nil
}

// PaletteColormap returns the OpenCV colormap constant for a named palette,
// used by the Mat-based render path.
func PaletteColormap(name string) (gocv.ColormapTypes, error) {
	p, ok := palettes[name]
	if !ok {
		return 0, errors.Errorf("heatmap: unknown palette %q", name)
	}
	return p.cv, nil
}

func buildLUT(channel func(v float32) (r, g, b float32)) LUT {
	var lut LUT
	for i := 0; i < 256; i++ {
		r, g, b := channel(float32(i) / 255)
		lut[i] = [3]uint8{
			uint8(clamp01(r) * 255),
			uint8(clamp01(g) * 255),
			uint8(clamp01(b) * 255),
		}
	}
	return lut
}

// jetChannel is the piecewise-linear jet ramp: blue through cyan, green and
// yellow to red.
func jetChannel(v float32) (r, g, b float32) {
	r = 1.5 - math32.Abs(4*v-3)
	g = 1.5 - math32.Abs(4*v-2)
	b = 1.5 - math32.Abs(4*v-1)
	return r, g, b
}

// hotChannel ramps black -> red -> yellow -> white.
func hotChannel(v float32) (r, g, b float32) {
	return 3 * v, 3*v - 1, 3*v - 2
}

// boneChannel is a grayscale ramp with a slight blue cast.
func boneChannel(v float32) (r, g, b float32) {
	return 0.89 * v, 0.89*v - 0.015*math32.Sin(v*math32.Pi), 0.89*v + 0.11*v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
