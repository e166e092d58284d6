// Package images - Box geometry and pixel buffers shared by the detection pipeline.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Rect is a corner-form bounding box.
//
// Coordinates are continuous: the box covers [X1, X2) x [Y1, Y2) and its area is
// (X2-X1)*(Y2-Y1). There is no "+1" inclusive-pixel adjustment anywhere in this
// package. The same type carries model-space boxes (normalized or model pixels)
// and image-space boxes; which one a value holds is decided by the stage that
// produced it.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// CenterBox is a center-form bounding box as emitted by YOLO detection heads.
type CenterBox struct {
	CX, CY, W, H float32
}

// Rect converts the center-form box to corner form.
//
// Returns:
//   - The corner-form box covering the same region.
func (c CenterBox) Rect() Rect {
	halfW := c.W / 2
	halfH := c.H / 2
	return Rect{
		X1: c.CX - halfW,
		Y1: c.CY - halfH,
		X2: c.CX + halfW,
		Y2: c.CY + halfH,
	}
}

// Center converts the corner-form box to center form.
func (r Rect) Center() CenterBox {
	return CenterBox{
		CX: (r.X1 + r.X2) / 2,
		CY: (r.Y1 + r.Y2) / 2,
		W:  r.X2 - r.X1,
		H:  r.Y2 - r.Y1,
	}
}

// Width returns X2-X1. It is negative for inverted boxes.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns Y2-Y1. It is negative for inverted boxes.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the box area, or 0 for degenerate boxes.
func (r Rect) Area() float32 {
	if !r.Valid() {
		return 0
	}
	return r.Width() * r.Height()
}

// Valid reports whether the box has strictly positive width and height and no
// NaN or infinite coordinate.
func (r Rect) Valid() bool {
	for _, v := range [4]float32{r.X1, r.Y1, r.X2, r.Y2} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return r.X2 > r.X1 && r.Y2 > r.Y1
}

// Scale multiplies the x coordinates by sx and the y coordinates by sy.
func (r Rect) Scale(sx, sy float32) Rect {
	return Rect{X1: r.X1 * sx, Y1: r.Y1 * sy, X2: r.X2 * sx, Y2: r.Y2 * sy}
}

// Clamp limits every coordinate into [minX, maxX] x [minY, maxY].
func (r Rect) Clamp(minX, minY, maxX, maxY float32) Rect {
	return Rect{
		X1: clamp(r.X1, minX, maxX),
		Y1: clamp(r.Y1, minY, maxY),
		X2: clamp(r.X2, minX, maxX),
		Y2: clamp(r.Y2, minY, maxY),
	}
}

// Pixels converts the box into inclusive integer pixel corners.
//
// The returned image.Rectangle uses Min as the first painted pixel and Max as
// the last painted pixel (inclusive on both ends), which is what the renderer
// expects after the box has been clamped into [0, w-1] x [0, h-1].
func (r Rect) Pixels() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(math32.Floor(r.X1)), int(math32.Floor(r.Y1))),
		Max: image.Pt(int(math32.Floor(r.X2)), int(math32.Floor(r.Y2))),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f, %.2f), (%.2f, %.2f)", r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU returns the Intersection over Union of two corner-form boxes.
//
// IoU = intersection / (area(r) + area(o) - intersection). Degenerate boxes have
// zero area, and a non-positive denominator yields 0 instead of dividing by zero.
// The function is symmetric and CalculateIoU(b, b) == 1 for every valid b.
//
// Arguments:
//   - r: The first box.
//   - o: The other box.
//
// Returns:
//   - A value in [0, 1].
func CalculateIoU(r, o Rect) float32 {
	if !r.Valid() || !o.Valid() {
		return 0
	}

	interW := math32.Min(r.X2, o.X2) - math32.Max(r.X1, o.X1)
	interH := math32.Min(r.Y2, o.Y2) - math32.Max(r.Y1, o.Y1)
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH

	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}

func clamp(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return lo
	}
	return math32.Max(lo, math32.Min(v, hi))
}
