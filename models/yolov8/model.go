// Package yolov8 - YOLOv8 model.
package yolov8

import (
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

const (
	// NumClasses is the number of COCO classes predicted by the stock weights.
	NumClasses = 80
	// NumAnchors is the number of candidates emitted for a 640x640 input.
	NumAnchors = 8400
)

// Layout is the YOLOv8 output layout: [1, 84, 8400], channels first, no
// objectness, geometry in model input pixels.
var Layout = postprocess.Layout{
	NumClasses:    NumClasses,
	ChannelsFirst: true,
}

// YOLOv8 is the instance of the YOLOv8 model.
type YOLOv8 struct {
	*model.Base
}

// NewModel creates a new YOLOv8 model with the Ultralytics export defaults:
// input "images", output "output0", 640x640.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
func NewModel(args model.NewModelArgs) (*YOLOv8, error) {
	options := args.Apply(model.Options{
		Name:    model.ModelNameYOLOv8,
		Family:  model.ModelFamilyYOLO,
		Inputs:  []string{"images"},
		Outputs: []string{"output0"},
		Layout:  Layout,
		Config:  postprocess.DefaultConfig(),
	})
	options.OutputShape = []int64{1, int64(Layout.Cols()), anchors(options.Config.InputWidth, options.Config.InputHeight)}

	base, err := model.NewBase(options)
	if err != nil {
		return nil, err
	}
	return &YOLOv8{Base: base}, nil
}

// anchors returns the candidate count of the three detection strides 8, 16, 32.
func anchors(width, height int) int64 {
	var n int
	for _, stride := range []int{8, 16, 32} {
		n += (width / stride) * (height / stride)
	}
	return int64(n)
}
