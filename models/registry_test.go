package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

func TestNewModel(t *testing.T) {
	tests := []struct {
		name        string
		args        model.NewModelArgs
		wantErr     bool
		wantShape   []int64
		wantInputs  []string
		wantLayout  postprocess.Layout
		wantInputWH [2]int
	}{
		{
			name:        "yolov8 defaults",
			args:        model.NewModelArgs{Name: model.ModelNameYOLOv8, Path: "yolov8n.onnx"},
			wantShape:   []int64{1, 84, 8400},
			wantInputs:  []string{"images"},
			wantLayout:  postprocess.Layout{NumClasses: 80, ChannelsFirst: true},
			wantInputWH: [2]int{640, 640},
		},
		{
			name: "yolov8 smaller input",
			args: model.NewModelArgs{
				Name:   model.ModelNameYOLOv8,
				Path:   "yolov8n-320.onnx",
				Config: &postprocess.Config{InputWidth: 320, InputHeight: 320, IoUThreshold: 0.5},
			},
			wantShape:   []int64{1, 84, 2100},
			wantInputs:  []string{"images"},
			wantLayout:  postprocess.Layout{NumClasses: 80, ChannelsFirst: true},
			wantInputWH: [2]int{320, 320},
		},
		{
			name: "yolov4 with tensor names",
			args: model.NewModelArgs{
				Name:    model.ModelNameYOLOv4,
				Path:    "yolov4.onnx",
				Inputs:  []string{"input_1:0"},
				Outputs: []string{"Identity:0"},
			},
			wantShape:   []int64{1, 10647, 85},
			wantInputs:  []string{"input_1:0"},
			wantLayout:  postprocess.Layout{NumClasses: 80, Objectness: true},
			wantInputWH: [2]int{416, 416},
		},
		{
			name:    "yolov4 without tensor names",
			args:    model.NewModelArgs{Name: model.ModelNameYOLOv4, Path: "yolov4.onnx"},
			wantErr: true,
		},
		{
			name:    "missing path",
			args:    model.NewModelArgs{Name: model.ModelNameYOLOv8},
			wantErr: true,
		},
		{
			name:    "unsupported",
			args:    model.NewModelArgs{Name: "rfdetr", Path: "x.onnx"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModel(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			opts := m.Options()
			assert.Equal(t, tt.args.Name, opts.Name)
			assert.Equal(t, tt.wantShape, opts.OutputShape)
			assert.Equal(t, tt.wantInputs, opts.Inputs)
			assert.Equal(t, tt.wantLayout, opts.Layout)
			assert.Equal(t, tt.wantInputWH, [2]int{opts.Config.InputWidth, opts.Config.InputHeight})
			assert.Equal(t, []int64{1, 3, int64(tt.wantInputWH[1]), int64(tt.wantInputWH[0])}, opts.InputShape())
			assert.Equal(t, "person", opts.Config.Label(0))
		})
	}
}

func TestModelPostProcess(t *testing.T) {
	m, err := NewModel(model.NewModelArgs{Name: model.ModelNameYOLOv8, Path: "yolov8n.onnx"})
	require.NoError(t, err)

	// A single anchor in an otherwise empty [1, 84, 2] head: class 2 (car).
	const anchors = 2
	data := make([]float32, 84*anchors)
	set := func(col, anchor int, v float32) { data[col*anchors+anchor] = v }
	set(0, 0, 320)
	set(1, 0, 320)
	set(2, 0, 64)
	set(3, 0, 64)
	set(4+2, 0, 0.8)

	dets, err := m.PostProcess(postprocess.Tensor{Data: data, Shape: []int64{1, 84, anchors}},
		postprocess.FrameSize{Width: 1280, Height: 1280})
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "car", dets[0].Label)
	assert.InDelta(t, 576, dets[0].Box.X1, 1e-3)
	assert.InDelta(t, 704, dets[0].Box.X2, 1e-3)
}
