package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-trajectory/common"
)

var (
	regionColor = color.RGBA{R: 255, B: 255, A: 255} // magenta
	trailColor  = color.RGBA{G: 255, A: 255}
	boxColor    = color.RGBA{R: 255, B: 255, A: 255}
	speedColor  = color.RGBA{R: 255, G: 128, A: 255}
	textColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Process runs one full frame through the engine and composes the output
// onto the Mat in place: heatmap overlay, counting region, boxes, track
// trails and class-or-speed labels.
//
// Arguments:
//   - frame: An 8-bit 3-channel Mat; mutated in place.
//   - dets: This frame's detections from the external tracker.
//
// Returns:
//   - Result: The running counters and speed estimates after this frame.
//   - error: On frame-size changes or render failures.
func (p *Processor) Process(frame *gocv.Mat, dets []common.Detection) (Result, error) {
	res, err := p.Step(frame.Cols(), frame.Rows(), dets)
	if err != nil {
		return Result{}, err
	}

	stop := p.stage("render")
	defer stop()

	if err := p.heat.Blend(frame); err != nil {
		return Result{}, err
	}
	p.drawRegion(frame)
	for _, det := range dets {
		p.drawDetection(frame, det)
	}
	return res, nil
}

// drawRegion outlines the counting region at double stroke width, matching
// the reference tool's display.
func (p *Processor) drawRegion(frame *gocv.Mat) {
	if p.counter == nil {
		return
	}
	pts := p.counter.Region().Points()
	poly := make([]image.Point, len(pts))
	for i, pt := range pts {
		poly[i] = pt.ToPixel()
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pv.Close()
	gocv.Polylines(frame, pv, len(poly) > 2, regionColor, p.cfg.LineThickness*2)
}

// drawDetection renders one box with its trail and label. Once a track's
// speed is frozen the label switches from the class name to the estimate and
// stays that way for the track's lifetime.
func (p *Processor) drawDetection(frame *gocv.Mat, det common.Detection) {
	rect := det.Box.ToRect()

	label := p.className(det.ClassID)
	boxCol := boxColor
	if det.Tracked() && p.speed != nil {
		if spd, ok := p.speed.Speed(det.TrackID); ok {
			label = fmt.Sprintf("%.0f px/s", spd)
			boxCol = speedColor
		}
	}

	gocv.Rectangle(frame, rect, boxCol, p.cfg.LineThickness)
	gocv.PutText(frame, label, rect.Min.Add(image.Pt(0, -5)),
		gocv.FontHersheySimplex, 0.6, textColor, p.cfg.LineThickness)

	if !det.Tracked() {
		return
	}
	trail := p.history.Trail(det.TrackID)
	if len(trail) < 2 {
		return
	}
	line := make([]image.Point, len(trail))
	for i, pt := range trail {
		line[i] = pt.ToPixel()
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{line})
	defer pv.Close()
	gocv.Polylines(frame, pv, false, trailColor, p.cfg.LineThickness)
	gocv.Circle(frame, line[len(line)-1], p.cfg.LineThickness*2, boxCol, -1)
}
