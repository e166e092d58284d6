// Package yolov4 - YOLOv4 model.
//
// YOLOv4 exports emit one row per anchor: [cx, cy, w, h, objectness, 80 class
// scores], in model input pixels.
package yolov4

import (
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// NumClasses is the number of COCO classes predicted by the stock weights.
const NumClasses = 80

// Layout is the YOLOv4 output row layout.
var Layout = postprocess.Layout{
	NumClasses: NumClasses,
	Objectness: true,
}

// YOLOv4 is the instance of the YOLOv4 model.
type YOLOv4 struct {
	*model.Base
}

// NewModel creates a new model.
//
// YOLOv4 exports do not agree on tensor names, so Inputs and Outputs are
// required.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
func NewModel(args model.NewModelArgs) (*YOLOv4, error) {
	cfg := postprocess.DefaultConfig()
	cfg.InputWidth, cfg.InputHeight = 416, 416

	options := args.Apply(model.Options{
		Name:   model.ModelNameYOLOv4,
		Family: model.ModelFamilyYOLO,
		Layout: Layout,
		Config: cfg,
	})
	options.OutputShape = []int64{1, anchors(options.Config.InputWidth, options.Config.InputHeight), int64(Layout.Cols())}

	base, err := model.NewBase(options)
	if err != nil {
		return nil, err
	}
	return &YOLOv4{Base: base}, nil
}

// anchors returns the row count: three anchors per cell over strides 8, 16, 32.
func anchors(width, height int) int64 {
	var n int
	for _, stride := range []int{8, 16, 32} {
		n += 3 * (width / stride) * (height / stride)
	}
	return int64(n)
}
