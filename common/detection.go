// Package common - Shared geometry and detection primitives for the trajectory pipeline.
package common

import (
	"fmt"
	"image"
)

// UntrackedID marks a detection that carries no track identifier this frame.
// Such detections still contribute to the heatmap but are skipped by the
// counting and speed paths.
const UntrackedID = -1

// BoundingBox represents an axis-aligned detection box in xyxy order.
//
// Coordinates are float32 as delivered by upstream detectors; callers must
// guarantee X1 <= X2 and Y1 <= Y2.
type BoundingBox struct {
	X1, Y1, X2, Y2 float32
}

// Center returns the float midpoint of the box. This is the position sample
// used for track histories and containment tests.
func (b BoundingBox) Center() Point {
	return Point{
		X: float64(b.X1+b.X2) / 2,
		Y: float64(b.Y1+b.Y2) / 2,
	}
}

// TopLeft returns the (X1, Y1) corner of the box. Line-crossing tests use
// this anchor for the current frame's end of the movement segment.
func (b BoundingBox) TopLeft() Point {
	return Point{X: float64(b.X1), Y: float64(b.Y1)}
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float32 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float32 { return b.Y2 - b.Y1 }

// ToRect converts the bounding box to an image.Rectangle.
//
// This method converts floating-point coordinates to integer coordinates
// suitable for buffer indexing and drawing.
//
// Returns:
// - An image.Rectangle with canonicalized coordinates.
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

// Intersection calculates the overlap area between two bounding boxes in
// pixels. Non-overlapping boxes yield 0.
func (b BoundingBox) Intersection(other BoundingBox) float32 {
	r1 := b.ToRect()
	r2 := other.ToRect()
	sz := r1.Intersect(r2).Canon().Size()
	return float32(sz.X * sz.Y)
}

// Union calculates the union area between two bounding boxes using
// inclusion-exclusion: Area(A) + Area(B) - Area(A ∩ B).
func (b BoundingBox) Union(other BoundingBox) float32 {
	s1 := b.ToRect().Size()
	s2 := other.ToRect().Size()
	return float32(s1.X*s1.Y+s2.X*s2.Y) - b.Intersection(other)
}

// IoU calculates the Intersection over Union between two bounding boxes.
//
// External track assigners use this to match detections across frames; the
// core pipeline itself only consumes the already-assigned track IDs.
//
// Arguments:
// - other: The other bounding box to calculate IoU with.
//
// Returns:
// - The IoU value between 0 and 1, or 0 for degenerate boxes.
func (b BoundingBox) IoU(other BoundingBox) float32 {
	union := b.Union(other)
	if union <= 0 {
		return 0
	}
	return b.Intersection(other) / union
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.1f, %.1f)-(%.1f, %.1f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Detection is one tracked object observation for a single frame.
type Detection struct {
	Box     BoundingBox
	ClassID int
	TrackID int
}

// Tracked reports whether the detection carries a usable track identifier.
func (d Detection) Tracked() bool { return d.TrackID >= 0 }
