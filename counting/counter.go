// Package counting - Region crossing detection with per-class IN/OUT totals.
package counting

import (
	"github.com/nvr-ai/go-trajectory/common"
	"github.com/nvr-ai/go-trajectory/regions"
)

// Counts holds the IN/OUT totals for one object class.
type Counts struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// Counter consumes per-track position updates and maintains crossing totals
// for a single counting region.
//
// Each track is counted at most once for the lifetime of the counter; after
// a qualifying crossing its ID goes into the counted set and later crossings
// never change the totals again.
type Counter struct {
	region *regions.Region

	inTotal  int
	outTotal int
	perClass map[string]Counts
	counted  map[int]struct{}
}

// NewCounter creates a counter bound to a validated region. The region is
// required; sessions without a usable region simply run without a Counter.
func NewCounter(region *regions.Region) *Counter {
	return &Counter{
		region:   region,
		perClass: make(map[string]Counts),
		counted:  make(map[int]struct{}),
	}
}

// Observe evaluates one track's movement for a crossing.
//
// Arguments:
//   - trackID: The track identifier supplied by the external tracker.
//   - class: The class label, used to bucket per-class totals. The bucket is
//     created on first sighting even if the track never crosses.
//   - box: The current frame's bounding box.
//   - trail: The track's position history; the last entry is the current
//     centroid. Trails shorter than 2 are a warm-up state and are skipped.
//
// Returns:
//   - bool: Whether this call recorded a crossing.
func (c *Counter) Observe(trackID int, class string, box common.BoundingBox, trail []common.Point) bool {
	if _, ok := c.perClass[class]; !ok {
		c.perClass[class] = Counts{}
	}

	if len(trail) < 2 {
		return false
	}
	if _, ok := c.counted[trackID]; ok {
		return false
	}

	prev := trail[len(trail)-2]
	cur := trail[len(trail)-1]

	crossed := false
	switch c.region.Kind() {
	case regions.KindPolygon:
		crossed = c.region.Contains(cur)
	case regions.KindLine:
		// The movement sample for the intersection test runs from the
		// previous centroid to the current box's top-left corner, not the
		// current centroid. This is a deliberate quirk carried over from the
		// reference tool; keep the two anchors distinct.
		crossed = c.region.SegmentIntersects(prev, box.TopLeft())
	}
	if !crossed {
		return false
	}

	c.counted[trackID] = struct{}{}

	// Direction is an x-axis-only heuristic: does the horizontal step move
	// the object toward the region's reference x relative to where it was?
	// It ignores vertical displacement entirely and misclassifies vertical
	// or diagonal crossings; that limitation is intentional and covered by
	// tests rather than silently corrected.
	sign := (float64(box.X1) - prev.X) * (c.region.Centroid().X - prev.X)
	bucket := c.perClass[class]
	if sign > 0 {
		c.inTotal++
		bucket.In++
	} else {
		c.outTotal++
		bucket.Out++
	}
	c.perClass[class] = bucket
	return true
}

// Totals returns the global IN and OUT counts.
func (c *Counter) Totals() (in, out int) { return c.inTotal, c.outTotal }

// PerClass returns a copy of the per-class totals.
func (c *Counter) PerClass() map[string]Counts {
	out := make(map[string]Counts, len(c.perClass))
	for k, v := range c.perClass {
		out[k] = v
	}
	return out
}

// Counted reports whether a track has already contributed to the totals.
func (c *Counter) Counted(trackID int) bool {
	_, ok := c.counted[trackID]
	return ok
}

// Region exposes the bound counting region, mainly for annotation.
func (c *Counter) Region() *regions.Region { return c.region }
