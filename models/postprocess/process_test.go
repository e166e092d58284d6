package postprocess

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, float32(0.25), cfg.ScoreThreshold)
	assert.Equal(t, float32(0.45), cfg.IoUThreshold)
	assert.False(t, cfg.ClassAware)
	assert.Equal(t, 300, cfg.MaxDetections)
	assert.Equal(t, 640, cfg.InputWidth)
	assert.Equal(t, 640, cfg.InputHeight)
}

func TestProcessYOLOv8Style(t *testing.T) {
	// Two overlapping people and one separate car, channels first like
	// YOLOv8's [1, 84, 8400] head, here with 3 classes.
	in := channelsFirst(
		row(320, 320, 128, 256, 0.90, 0.00, 0.00),
		row(324, 318, 128, 256, 0.70, 0.00, 0.00),
		row(100, 100, 64, 64, 0.00, 0.00, 0.60),
		row(500, 500, 64, 64, 0.10, 0.10, 0.10),
	)

	cfg := DefaultConfig()
	cfg.Labels = []string{"person", "bicycle"}

	dets, err := Process(in, Layout{NumClasses: 3, ChannelsFirst: true}, cfg, FrameSize{Width: 1280, Height: 720})
	require.NoError(t, err)
	require.Len(t, dets, 2)

	assert.Equal(t, "person", dets[0].Label)
	assert.Equal(t, float32(0.9), dets[0].Score)
	assert.InDelta(t, 512, dets[0].Box.X1, 1e-3)
	assert.InDelta(t, 216, dets[0].Box.Y1, 1e-3)
	assert.InDelta(t, 768, dets[0].Box.X2, 1e-3)
	assert.InDelta(t, 504, dets[0].Box.Y2, 1e-3)

	assert.Equal(t, 2, dets[1].Class)
	assert.Equal(t, "class_2", dets[1].Label)
}

func TestProcessNoDetections(t *testing.T) {
	dets, err := Process(Tensor{Shape: []int64{1, 0, 85}}, Layout{NumClasses: 80, Objectness: true},
		DefaultConfig(), FrameSize{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.NotNil(t, dets)
	assert.Empty(t, dets)
}

func TestProcessInvalidInput(t *testing.T) {
	_, err := Process(rowsFirst(row(1, 1, 1, 1, 1)), Layout{NumClasses: 1}, DefaultConfig(), FrameSize{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = Process(rowsFirst(row(1, 1, 1, 1, 1)), Layout{NumClasses: 3}, DefaultConfig(), FrameSize{Width: 1, Height: 1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConfigLabel(t *testing.T) {
	cfg := Config{Labels: []string{"person", ""}}
	assert.Equal(t, "person", cfg.Label(0))
	assert.Equal(t, "class_1", cfg.Label(1))
	assert.Equal(t, "class_-1", cfg.Label(-1))
}
