package regions

import (
	"math"
	"testing"

	"github.com/nvr-ai/go-trajectory/common"
)

func pts(xy ...float64) []common.Point {
	out := make([]common.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, common.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestNewRegionKinds(t *testing.T) {
	tests := []struct {
		name    string
		points  []common.Point
		kind    Kind
		wantErr bool
	}{
		{name: "empty", points: nil, wantErr: true},
		{name: "single point", points: pts(5, 5), wantErr: true},
		{name: "two points make a line", points: pts(0, 100, 200, 100), kind: KindLine},
		{name: "three points make a polygon", points: pts(0, 0, 10, 0, 5, 10), kind: KindPolygon},
		{name: "quad polygon", points: pts(0, 0, 10, 0, 10, 10, 0, 10), kind: KindPolygon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegion(tt.points)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for invalid point count")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRegion: %v", err)
			}
			if r.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", r.Kind(), tt.kind)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name   string
		points []common.Point
		want   common.Point
	}{
		{
			// A line's reference point is the segment midpoint, matching the
			// degenerate two-point centroid of the reference tool.
			name:   "line midpoint",
			points: pts(0, 100, 200, 100),
			want:   common.Point{X: 100, Y: 100},
		},
		{
			name:   "unit square",
			points: pts(0, 0, 10, 0, 10, 10, 0, 10),
			want:   common.Point{X: 5, Y: 5},
		},
		{
			name:   "right triangle",
			points: pts(0, 0, 6, 0, 0, 6),
			want:   common.Point{X: 2, Y: 2},
		},
		{
			// All vertices collinear: zero area, falls back to vertex mean.
			name:   "degenerate polygon",
			points: pts(0, 0, 5, 0, 10, 0),
			want:   common.Point{X: 5, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegion(tt.points)
			if err != nil {
				t.Fatalf("NewRegion: %v", err)
			}
			got := r.Centroid()
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Centroid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	square, err := NewRegion(pts(0, 0, 10, 0, 10, 10, 0, 10))
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}

	tests := []struct {
		name  string
		point common.Point
		want  bool
	}{
		{"interior", common.Point{X: 5, Y: 5}, true},
		{"exterior above", common.Point{X: 5, Y: -5}, false},
		{"exterior right", common.Point{X: 15, Y: 5}, false},
		{"near left edge inside", common.Point{X: 0.001, Y: 5}, true},
		// Boundary policy: the right edge is outside under the half-open
		// even-odd rule.
		{"right edge", common.Point{X: 10, Y: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := square.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}

	line, err := NewRegion(pts(0, 100, 200, 100))
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	if line.Contains(common.Point{X: 100, Y: 100}) {
		t.Error("line regions never contain points")
	}
}

func TestSegmentIntersects(t *testing.T) {
	line, err := NewRegion(pts(0, 100, 200, 100))
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}

	tests := []struct {
		name string
		a, b common.Point
		want bool
	}{
		{"crosses the line", common.Point{X: 50, Y: 90}, common.Point{X: 50, Y: 110}, true},
		{"stays above", common.Point{X: 50, Y: 90}, common.Point{X: 60, Y: 95}, false},
		{"stays below", common.Point{X: 50, Y: 110}, common.Point{X: 60, Y: 105}, false},
		{"beyond the span", common.Point{X: 250, Y: 90}, common.Point{X: 250, Y: 110}, false},
		// Touching at an endpoint counts as intersecting.
		{"touches endpoint", common.Point{X: 0, Y: 100}, common.Point{X: -10, Y: 50}, true},
		{"ends exactly on the line", common.Point{X: 50, Y: 90}, common.Point{X: 50, Y: 100}, true},
		// Collinear overlap counts as intersecting.
		{"collinear overlap", common.Point{X: 50, Y: 100}, common.Point{X: 80, Y: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := line.SegmentIntersects(tt.a, tt.b); got != tt.want {
				t.Errorf("SegmentIntersects(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSegmentIntersectsPolygonEdges(t *testing.T) {
	square, err := NewRegion(pts(0, 0, 10, 0, 10, 10, 0, 10))
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	if !square.SegmentIntersects(common.Point{X: 5, Y: -5}, common.Point{X: 5, Y: 5}) {
		t.Error("segment entering the square should cross an edge")
	}
	if square.SegmentIntersects(common.Point{X: 20, Y: 20}, common.Point{X: 30, Y: 30}) {
		t.Error("segment far outside should not cross")
	}
}
