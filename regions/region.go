// Package regions - Counting region geometry: line segments, simple polygons,
// containment and crossing tests.
package regions

import (
	"fmt"

	"github.com/nvr-ai/go-trajectory/common"
)

// Kind discriminates the two region shapes a counter can be configured with.
type Kind int

const (
	// KindLine is a two-point counting line.
	KindLine Kind = iota
	// KindPolygon is a simple polygon with at least three vertices.
	KindPolygon
)

func (k Kind) String() string {
	if k == KindLine {
		return "line"
	}
	return "polygon"
}

// Region is an immutable counting region. Two configuration points make a
// line, three or more make a polygon. The centroid is precomputed at
// construction and used as the reference point for direction classification.
type Region struct {
	kind     Kind
	points   []common.Point
	centroid common.Point
}

// NewRegion builds a Region from configuration points.
//
// Arguments:
//   - points: 2 points for a counting line, >= 3 for a polygon.
//
// Returns:
//   - *Region: The constructed region.
//   - error: If fewer than 2 points are supplied. Callers are expected to
//     disable counting for the session rather than abort.
func NewRegion(points []common.Point) (*Region, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("regions: need 2 points for a line or >= 3 for a polygon, got %d", len(points))
	}

	r := &Region{points: append([]common.Point(nil), points...)}
	if len(points) == 2 {
		r.kind = KindLine
		r.centroid = points[0].Midpoint(points[1])
	} else {
		r.kind = KindPolygon
		r.centroid = polygonCentroid(r.points)
	}
	return r, nil
}

// Kind returns whether the region is a line or a polygon.
func (r *Region) Kind() Kind { return r.kind }

// Points returns the configured vertices. The slice must not be mutated.
func (r *Region) Points() []common.Point { return r.points }

// Centroid returns the region's reference point for direction
// disambiguation. For a polygon this is the geometric (area-weighted)
// centroid; for a line it is the segment midpoint, matching the behavior of
// a degenerate two-point polygon centroid.
func (r *Region) Centroid() common.Point { return r.centroid }

// Contains reports whether p lies inside a polygon region using the even-odd
// ray-casting rule. Line regions always report false.
//
// Boundary policy: points exactly on the bottom or left edges test inside,
// points on the top or right edges test outside. Crossing tests do not rely
// on boundary hits, so one consistent half-open rule is sufficient.
func (r *Region) Contains(p common.Point) bool {
	if r.kind != KindPolygon {
		return false
	}
	inside := false
	n := len(r.points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := r.points[i], r.points[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// SegmentIntersects reports whether the movement segment a->b crosses the
// region. For a line region this is the classic two-segment intersection
// test; touching at an endpoint and collinear overlap both count as a
// crossing. For a polygon region it reports whether the segment crosses any
// edge, which callers can use to catch fast movers that skip past
// containment sampling.
func (r *Region) SegmentIntersects(a, b common.Point) bool {
	if r.kind == KindLine {
		return segmentsIntersect(a, b, r.points[0], r.points[1])
	}
	n := len(r.points)
	for i := 0; i < n; i++ {
		if segmentsIntersect(a, b, r.points[i], r.points[(i+1)%n]) {
			return true
		}
	}
	return false
}

// cross is the z-component of (b-a) x (c-a). Sign gives the orientation of
// the triple, zero means collinear.
func cross(a, b, c common.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment assumes c is collinear with a-b and reports whether it lies
// within the segment's bounding box.
func onSegment(a, b, c common.Point) bool {
	return min(a.X, b.X) <= c.X && c.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= c.Y && c.Y <= max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 common.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear or endpoint-touching cases.
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// polygonCentroid computes the area-weighted centroid via the shoelace
// formula. A degenerate polygon with zero signed area falls back to the
// vertex mean.
func polygonCentroid(pts []common.Point) common.Point {
	var area, cx, cy float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		w := pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
		area += w
		cx += (pts[i].X + pts[j].X) * w
		cy += (pts[i].Y + pts[j].Y) * w
	}
	if area == 0 {
		var sx, sy float64
		for _, p := range pts {
			sx += p.X
			sy += p.Y
		}
		return common.Point{X: sx / float64(n), Y: sy / float64(n)}
	}
	area /= 2
	return common.Point{X: cx / (6 * area), Y: cy / (6 * area)}
}
