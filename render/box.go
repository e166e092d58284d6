// Package render draws detection outlines onto packed RGB frames.
package render

import (
	"image/color"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Style controls how outlines are painted.
type Style struct {
	// Color is the outline color. Alpha is ignored.
	Color color.RGBA
	// Thickness is the stroke width in pixels, drawn inward from the box edge.
	Thickness int
	// ClassColors, when set, overrides Color per class (class modulo length).
	ClassColors []color.RGBA
}

// DefaultStyle is a 2 pixel green outline.
func DefaultStyle() Style {
	return Style{Color: color.RGBA{G: 255, A: 255}, Thickness: 2}
}

// PaletteStyle is DefaultStyle with one distinct color per class.
func PaletteStyle() Style {
	s := DefaultStyle()
	s.ClassColors = classColors
	return s
}

func (s Style) colorFor(class int) color.RGBA {
	if len(s.ClassColors) == 0 || class < 0 {
		return s.Color
	}
	return s.ClassColors[class%len(s.ClassColors)]
}

// Boxes paints the outline of every box in order. Later boxes overwrite earlier
// ones where they overlap. Boxes may extend past the frame: every stroke is
// clamped to the buffer and boxes entirely outside it are skipped.
func Boxes(img *images.Image, boxes []images.Rect, style Style) {
	for _, b := range boxes {
		outline(img, b, style.Color, style.Thickness)
	}
}

// Detections paints the outline of every detection in order.
func Detections(img *images.Image, dets []postprocess.Detection, style Style) {
	for _, d := range dets {
		outline(img, d.Box, style.colorFor(d.Class), style.Thickness)
	}
}

func outline(img *images.Image, b images.Rect, clr color.RGBA, thickness int) {
	if img == nil || thickness <= 0 || img.Width <= 0 || img.Height <= 0 {
		return
	}

	maxX, maxY := float32(img.Width-1), float32(img.Height-1)
	if b.X2 < 0 || b.Y2 < 0 || b.X1 > maxX || b.Y1 > maxY {
		return
	}

	p := b.Clamp(0, 0, maxX, maxY).Pixels()
	x0, y0, x1, y1 := p.Min.X, p.Min.Y, p.Max.X, p.Max.Y
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}

	t := thickness - 1
	fill(img, x0, y0, x1, y0+t, clr) // top
	fill(img, x0, y1-t, x1, y1, clr) // bottom
	fill(img, x0, y0, x0+t, y1, clr) // left
	fill(img, x1-t, y0, x1, y1, clr) // right
}

// fill paints the inclusive pixel rectangle (x0, y0)-(x1, y1) after clamping it
// to the frame.
func fill(img *images.Image, x0, y0, x1, y1 int, clr color.RGBA) {
	x0, x1 = max(x0, 0), min(x1, img.Width-1)
	y0, y1 = max(y0, 0), min(y1, img.Height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := (y*img.Width + x) * images.Channels
			if i < 0 || i+2 >= len(img.Data) {
				continue
			}
			img.Data[i] = clr.R
			img.Data[i+1] = clr.G
			img.Data[i+2] = clr.B
		}
	}
}
