// Package models - registry for models.
package models

import (
	"fmt"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/yolov4"
	"github.com/nvr-ai/go-yolo/models/yolov8"
)

// NewModel creates a new detection model instance based on the specified model type.
//
// When args.Labels is empty the YOLO class names are used.
//
// Arguments:
//   - args: Configuration parameters specifying the model type and location.
//
// Returns:
//   - model.Model: A fully configured model instance implementing the Model interface.
//   - error: An error if the model type is unsupported or validation fails.
//
// Example:
//
//	m, err := NewModel(model.NewModelArgs{
//	    Name: model.ModelNameYOLOv8,
//	    Path: "/models/yolov8n.onnx",
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
func NewModel(args model.NewModelArgs) (model.Model, error) {
	if len(args.Labels) == 0 {
		args.Labels = YOLOClasses.Names()
	}

	switch args.Name {
	case model.ModelNameYOLOv8:
		m, err := yolov8.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	case model.ModelNameYOLOv4:
		m, err := yolov4.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported model name: %s", args.Name)
	}
}

// Names returns every registered model name.
func Names() []model.Name {
	return []model.Name{model.ModelNameYOLOv8, model.ModelNameYOLOv4}
}
