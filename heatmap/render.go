package heatmap

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// RenderImage composes the color-mapped heatmap over a frame using only
// pure-Go image operations. Downscaled buffers are upsampled back to frame
// size before blending.
//
// Arguments:
//   - frame: The source frame; it is not mutated.
//
// Returns:
//   - image.Image: A new RGBA image, frame*(1-alpha) + color*alpha.
//   - error: If the accumulator is uninitialized or the palette is unknown.
func (a *Accumulator) RenderImage(frame image.Image) (image.Image, error) {
	if !a.initialized {
		return nil, errors.New("heatmap: render before first Step")
	}
	if b := frame.Bounds(); b.Dx() != a.frameW || b.Dy() != a.frameH {
		return nil, errors.Errorf("heatmap: frame is %dx%d, session is %dx%d",
			b.Dx(), b.Dy(), a.frameW, a.frameH)
	}
	lut, err := PaletteLUT(a.cfg.Palette)
	if err != nil {
		return nil, err
	}

	norm := a.normalized()
	colored := image.NewRGBA(image.Rect(0, 0, a.bufW, a.bufH))
	for y := 0; y < a.bufH; y++ {
		for x := 0; x < a.bufW; x++ {
			c := lut[norm[y*a.bufW+x]]
			colored.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}

	var overlay image.Image = colored
	if a.bufW != a.frameW || a.bufH != a.frameH {
		overlay = resize.Resize(uint(a.frameW), uint(a.frameH), colored, resize.Bilinear)
	}

	out := image.NewRGBA(image.Rect(0, 0, a.frameW, a.frameH))
	alpha := a.cfg.Alpha
	org := frame.Bounds().Min
	for y := 0; y < a.frameH; y++ {
		for x := 0; x < a.frameW; x++ {
			fr, fg, fb, _ := frame.At(org.X+x, org.Y+y).RGBA()
			or, og, ob, _ := overlay.At(x, y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: blend8(fr, or, alpha),
				G: blend8(fg, og, alpha),
				B: blend8(fb, ob, alpha),
				A: 255,
			})
		}
	}
	return out, nil
}

// blend8 mixes two 16-bit color samples into an 8-bit channel.
func blend8(frame, overlay uint32, alpha float64) uint8 {
	v := float64(frame>>8)*(1-alpha) + float64(overlay>>8)*alpha
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Blend composes the color-mapped heatmap onto a BGR Mat in place. This is
// the fast path for gocv-based pipelines.
//
// Arguments:
//   - frame: An 8-bit 3-channel Mat matching the session frame size.
//
// Returns:
//   - error: If the accumulator is uninitialized, the palette is unknown, or
//     the Mat dimensions disagree with the session.
func (a *Accumulator) Blend(frame *gocv.Mat) error {
	if !a.initialized {
		return errors.New("heatmap: blend before first Step")
	}
	if frame.Cols() != a.frameW || frame.Rows() != a.frameH {
		return errors.Errorf("heatmap: frame mat is %dx%d, session is %dx%d",
			frame.Cols(), frame.Rows(), a.frameW, a.frameH)
	}
	cmap, err := PaletteColormap(a.cfg.Palette)
	if err != nil {
		return err
	}

	gray, err := gocv.NewMatFromBytes(a.bufH, a.bufW, gocv.MatTypeCV8U, a.normalized())
	if err != nil {
		return errors.Wrap(err, "heatmap: buffer to mat")
	}
	defer gray.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(gray, &colored, cmap)

	if a.bufW != a.frameW || a.bufH != a.frameH {
		gocv.Resize(colored, &colored, image.Pt(a.frameW, a.frameH), 0, 0, gocv.InterpolationLinear)
	}

	gocv.AddWeighted(*frame, 1-a.cfg.Alpha, colored, a.cfg.Alpha, 0, frame)
	return nil
}
