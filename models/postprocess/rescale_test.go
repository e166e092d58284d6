package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"

	"github.com/nvr-ai/go-yolo/images"
)

func TestRescalerRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		rescaler   Rescaler
		box        images.Rect
		normalized bool
	}{
		{
			name:     "model pixels to landscape frame",
			rescaler: NewRescaler(1920, 1080, 640, 640, false),
			box:      images.Rect{X1: 100, Y1: 50, X2: 300, Y2: 200},
		},
		{
			name:     "model pixels to small frame",
			rescaler: NewRescaler(320, 240, 640, 640, false),
			box:      images.Rect{X1: 13.5, Y1: 7.25, X2: 600, Y2: 400},
		},
		{
			name:     "normalized to portrait frame",
			rescaler: NewRescaler(720, 1280, 640, 640, true),
			box:      images.Rect{X1: 0.1, Y1: 0.2, X2: 0.6, Y2: 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := tt.rescaler.ToModel(tt.rescaler.ToImage(tt.box))
			assert.True(t, floats.EqualApprox(rectSlice(tt.box), rectSlice(back), 1e-4),
				"%v round tripped to %v", tt.box, back)
		})
	}
}

func TestRescalerScales(t *testing.T) {
	r := NewRescaler(1280, 720, 640, 640, false)
	got := r.ToImage(images.Rect{X1: 64, Y1: 64, X2: 320, Y2: 320})
	assert.True(t, floats.EqualApprox([]float64{128, 72, 640, 360}, rectSlice(got), 1e-4), "got %v", got)
}

func TestRescalerClamps(t *testing.T) {
	tests := []struct {
		name string
		box  images.Rect
		want images.Rect
	}{
		{"exceeds right and bottom", images.Rect{X1: 0.5, Y1: 0.5, X2: 1.5, Y2: 1.2}, images.Rect{X1: 320, Y1: 240, X2: 639, Y2: 479}},
		{"negative origin", images.Rect{X1: -0.5, Y1: -0.1, X2: 0.25, Y2: 0.25}, images.Rect{X1: 0, Y1: 0, X2: 160, Y2: 120}},
		{"fully outside", images.Rect{X1: 2, Y1: 2, X2: 3, Y2: 3}, images.Rect{X1: 639, Y1: 479, X2: 639, Y2: 479}},
	}

	r := NewRescaler(640, 480, 640, 640, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ToImage(tt.box))
		})
	}
}

func rectSlice(r images.Rect) []float64 {
	return []float64{float64(r.X1), float64(r.Y1), float64(r.X2), float64(r.Y2)}
}
