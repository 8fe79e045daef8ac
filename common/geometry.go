// Package common - Shared geometry and detection primitives for the trajectory pipeline.
package common

import (
	"fmt"
	"image"
)

// Point is a 2D position in frame coordinates.
//
// Positions that come out of a tracker are sub-pixel (box midpoints), so the
// components are float64. Conversion to the integer pixel grid happens only
// where a buffer index is needed, via plain truncation.
type Point struct {
	X, Y float64
}

// Midpoint returns the point halfway between p and o.
func (p Point) Midpoint(o Point) Point {
	return Point{X: (p.X + o.X) / 2, Y: (p.Y + o.Y) / 2}
}

// ToPixel truncates the point onto the integer pixel grid.
func (p Point) ToPixel() image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}
