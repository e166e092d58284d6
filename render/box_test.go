package render

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

var red = color.RGBA{R: 255, A: 255}

func blank(t *testing.T, w, h int) *images.Image {
	t.Helper()
	img, err := images.NewImage(w, h)
	require.NoError(t, err)
	return img
}

// painted returns the set of painted pixel coordinates.
func painted(img *images.Image) map[[2]int]bool {
	out := map[[2]int]bool{}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if img.RGBAt(x, y) != (color.RGBA{A: 255}) {
				out[[2]int{x, y}] = true
			}
		}
	}
	return out
}

func TestBoxesOutline(t *testing.T) {
	img := blank(t, 10, 10)
	Boxes(img, []images.Rect{{X1: 2, Y1: 2, X2: 6, Y2: 7}}, Style{Color: red, Thickness: 1})

	got := painted(img)
	for y := 2; y <= 7; y++ {
		for x := 2; x <= 6; x++ {
			edge := x == 2 || x == 6 || y == 2 || y == 7
			assert.Equal(t, edge, got[[2]int{x, y}], "pixel %d,%d", x, y)
		}
	}
	assert.Len(t, got, 2*5+2*4)
	assert.Equal(t, red, img.RGBAt(2, 2))
}

func TestBoxesThicknessDrawsInward(t *testing.T) {
	img := blank(t, 12, 12)
	Boxes(img, []images.Rect{{X1: 1, Y1: 1, X2: 10, Y2: 10}}, DefaultStyle())

	green := color.RGBA{G: 255, A: 255}
	assert.Equal(t, green, img.RGBAt(1, 1))
	assert.Equal(t, green, img.RGBAt(2, 5))
	assert.Equal(t, green, img.RGBAt(9, 5))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAt(3, 5), "inside the stroke")
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAt(0, 0), "outside the box")
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAt(11, 11), "outside the box")
}

func TestBoxesZeroThicknessDrawsNothing(t *testing.T) {
	img := blank(t, 8, 8)
	before := images.Checksum(img)
	Boxes(img, []images.Rect{{X1: 1, Y1: 1, X2: 5, Y2: 5}}, Style{Color: red})
	assert.Equal(t, before, images.Checksum(img))
}

func TestBoxesOffImage(t *testing.T) {
	tests := []struct {
		name    string
		box     images.Rect
		wantAny bool
	}{
		{"entirely right", images.Rect{X1: 20, Y1: 0, X2: 30, Y2: 5}, false},
		{"entirely above", images.Rect{X1: 0, Y1: -30, X2: 5, Y2: -1}, false},
		{"straddles corner", images.Rect{X1: -5, Y1: -5, X2: 3, Y2: 3}, true},
		{"covers frame", images.Rect{X1: -100, Y1: -100, X2: 100, Y2: 100}, true},
		{"nan", images.Rect{X1: math32.NaN(), Y1: 0, X2: 5, Y2: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := blank(t, 10, 10)
			require.NotPanics(t, func() {
				Boxes(img, []images.Rect{tt.box}, Style{Color: red, Thickness: 3})
			})
			assert.Equal(t, tt.wantAny, len(painted(img)) > 0)
			assert.Len(t, img.Data, 10*10*3)
		})
	}
}

func TestBoxesNeverWritesOutOfBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 300; i++ {
		w, h := 1+rng.Intn(40), 1+rng.Intn(40)

		// The frame lives inside a larger allocation so stray writes past its
		// end land on the guard bytes instead of panicking.
		n := w * h * images.Channels
		backing := make([]byte, n+64)
		for j := n; j < len(backing); j++ {
			backing[j] = 0xAB
		}
		img := &images.Image{Data: backing[:n], Width: w, Height: h}

		boxes := make([]images.Rect, 5)
		for j := range boxes {
			x, y := rng.Float32()*200-100, rng.Float32()*200-100
			boxes[j] = images.Rect{X1: x, Y1: y, X2: x + rng.Float32()*150, Y2: y + rng.Float32()*150}
		}

		require.NotPanics(t, func() {
			Boxes(img, boxes, Style{Color: red, Thickness: rng.Intn(12)})
		})
		for j := n; j < len(backing); j++ {
			require.Equal(t, byte(0xAB), backing[j], "guard byte %d overwritten", j-n)
		}
	}
}

func TestDetectionsUsesClassColors(t *testing.T) {
	img := blank(t, 20, 10)
	dets := []postprocess.Detection{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 4, Y2: 4}, Class: 0},
		{Box: images.Rect{X1: 10, Y1: 0, X2: 14, Y2: 4}, Class: 21},
	}

	Detections(img, dets, PaletteStyle())
	assert.Equal(t, classColors[0], img.RGBAt(0, 0))
	assert.Equal(t, classColors[1], img.RGBAt(10, 0))

	img = blank(t, 20, 10)
	Detections(img, dets, DefaultStyle())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAt(10, 0))
}

func TestDrawOrderLaterWins(t *testing.T) {
	img := blank(t, 10, 10)
	blue := color.RGBA{B: 255, A: 255}

	Boxes(img, []images.Rect{{X1: 0, Y1: 0, X2: 5, Y2: 5}}, Style{Color: red, Thickness: 1})
	Boxes(img, []images.Rect{{X1: 0, Y1: 0, X2: 8, Y2: 8}}, Style{Color: blue, Thickness: 1})
	assert.Equal(t, blue, img.RGBAt(0, 0))
	assert.Equal(t, red, img.RGBAt(5, 5))
}
