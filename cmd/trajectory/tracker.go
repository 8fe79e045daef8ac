package main

import (
	"image"

	"github.com/nvr-ai/go-trajectory/common"
)

// assigner is a minimal greedy IoU matcher that turns raw detector boxes
// into detections with persistent track IDs. It stands in for the external
// tracker the engine normally sits behind; the pipeline itself never
// assigns IDs.
type assigner struct {
	nextID  int
	last    map[int]common.BoundingBox
	missing map[int]int
	maxMiss int
	minIoU  float32
}

func newAssigner() *assigner {
	return &assigner{
		last:    make(map[int]common.BoundingBox),
		missing: make(map[int]int),
		maxMiss: 15,
		minIoU:  0.3,
	}
}

// assign matches boxes to known tracks by best IoU, creating new tracks for
// unmatched boxes and dropping tracks unseen for maxMiss frames.
func (a *assigner) assign(rects []image.Rectangle, classID int) []common.Detection {
	for id := range a.missing {
		a.missing[id]++
	}

	dets := make([]common.Detection, 0, len(rects))
	claimed := make(map[int]bool)
	for _, r := range rects {
		box := common.BoundingBox{
			X1: float32(r.Min.X), Y1: float32(r.Min.Y),
			X2: float32(r.Max.X), Y2: float32(r.Max.Y),
		}

		bestID := -1
		bestIoU := a.minIoU
		for id, prev := range a.last {
			if claimed[id] {
				continue
			}
			if iou := box.IoU(prev); iou > bestIoU {
				bestIoU = iou
				bestID = id
			}
		}
		if bestID < 0 {
			bestID = a.nextID
			a.nextID++
		}

		claimed[bestID] = true
		a.last[bestID] = box
		a.missing[bestID] = 0
		dets = append(dets, common.Detection{Box: box, ClassID: classID, TrackID: bestID})
	}

	for id, miss := range a.missing {
		if miss > a.maxMiss {
			delete(a.last, id)
			delete(a.missing, id)
		}
	}
	return dets
}
