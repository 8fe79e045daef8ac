// Package tracking - Per-track state: bounded position histories and speed
// estimation against a reference band.
package tracking

import "github.com/nvr-ai/go-trajectory/common"

// DefaultHistoryCapacity bounds the number of retained positions per track.
const DefaultHistoryCapacity = 30

// History keeps a bounded FIFO of recent centroid positions per track ID.
//
// Tracks are created on first observation and never explicitly destroyed;
// memory grows with the number of unique IDs seen, which is acceptable for
// bounded-duration streams.
type History struct {
	capacity int
	tracks   map[int][]common.Point
}

// NewHistory creates a History retaining at most capacity positions per
// track. A non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		tracks:   make(map[int][]common.Point),
	}
}

// Update appends p to the track's trail, evicting the oldest position once
// the capacity is exceeded, and returns the current trail. The returned
// slice is owned by the History and is only valid until the next Update for
// the same track.
func (h *History) Update(trackID int, p common.Point) []common.Point {
	trail := append(h.tracks[trackID], p)
	if len(trail) > h.capacity {
		trail = trail[1:]
	}
	h.tracks[trackID] = trail
	return trail
}

// Trail returns the current trail for a track, or nil if the track has never
// been observed.
func (h *History) Trail(trackID int) []common.Point {
	return h.tracks[trackID]
}

// Tracks returns the number of distinct track IDs observed so far.
func (h *History) Tracks() int { return len(h.tracks) }
