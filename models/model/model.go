// Package model - Definitions shared by every detection model.
package model

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyCOCO is the COCO model family.
	ModelFamilyCOCO Family = "coco"
	// ModelFamilyYOLO is the YOLO model family.
	ModelFamilyYOLO Family = "yolo"
	// ModelFamilyVOC is the Pascal VOC model family.
	ModelFamilyVOC Family = "voc"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv8 is the name of the anchor-free YOLOv8 model.
	ModelNameYOLOv8 Name = "yolov8"
	// ModelNameYOLOv4 is the name of the YOLOv4 model.
	ModelNameYOLOv4 Name = "yolov4"
)

// Options describes a loaded model: where it lives, how it is wired into
// onnxruntime and how its output is post-processed.
type Options struct {
	Name        Name               `json:"name" yaml:"name"`
	Family      Family             `json:"family" yaml:"family"`
	Path        string             `json:"path" yaml:"path"`
	Inputs      []string           `json:"inputs" yaml:"inputs"`
	Outputs     []string           `json:"outputs" yaml:"outputs"`
	OutputShape []int64            `json:"output_shape" yaml:"output_shape"`
	Layout      postprocess.Layout `json:"layout" yaml:"layout"`
	Config      postprocess.Config `json:"config" yaml:"config"`
}

// InputShape returns the NCHW shape of the model input.
func (o Options) InputShape() []int64 {
	return []int64{1, 3, int64(o.Config.InputHeight), int64(o.Config.InputWidth)}
}

// Model is a detection model with a fixed output layout.
type Model interface {
	// Options returns the model description.
	Options() Options
	// PostProcess turns a raw output tensor into detections for a frame.
	PostProcess(output postprocess.Tensor, frame postprocess.FrameSize) ([]postprocess.Detection, error)
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name    Name                `json:"name" yaml:"name"`
	Path    string              `json:"path" yaml:"path"`
	Family  Family              `json:"family" yaml:"family"`
	Inputs  []string            `json:"inputs" yaml:"inputs"`
	Outputs []string            `json:"outputs" yaml:"outputs"`
	Config  *postprocess.Config `json:"config" yaml:"config"`
	Labels  []string            `json:"-" yaml:"-"`
}

// Base implements Model for any head whose output is described by a Layout.
type Base struct {
	options Options
}

// NewBase validates the options and returns a Base.
//
// Arguments:
//   - options: The fully populated model options.
//
// Returns:
//   - *Base: The model.
//   - error: An error if a required option is missing.
func NewBase(options Options) (*Base, error) {
	if options.Path == "" {
		return nil, errors.Errorf("model %s requires a path", options.Name)
	}
	if len(options.Inputs) == 0 {
		return nil, errors.Errorf("model %s requires inputs to be set", options.Name)
	}
	if len(options.Outputs) == 0 {
		return nil, errors.Errorf("model %s requires outputs to be set", options.Name)
	}
	if options.Config.InputWidth <= 0 || options.Config.InputHeight <= 0 {
		return nil, errors.Errorf("model %s has invalid input size %dx%d",
			options.Name, options.Config.InputWidth, options.Config.InputHeight)
	}
	if err := options.Layout.Validate(); err != nil {
		return nil, errors.Wrapf(err, "model %s", options.Name)
	}
	return &Base{options: options}, nil
}

// Options returns the model description.
func (b *Base) Options() Options {
	return b.options
}

// PostProcess runs extraction, suppression and rescaling on one output tensor.
func (b *Base) PostProcess(output postprocess.Tensor, frame postprocess.FrameSize) ([]postprocess.Detection, error) {
	return postprocess.Process(output, b.options.Layout, b.options.Config, frame)
}

// Apply fills the zero-valued fields of options from args.
func (args NewModelArgs) Apply(options Options) Options {
	if args.Path != "" {
		options.Path = args.Path
	}
	if args.Family != "" {
		options.Family = args.Family
	}
	if len(args.Inputs) > 0 {
		options.Inputs = args.Inputs
	}
	if len(args.Outputs) > 0 {
		options.Outputs = args.Outputs
	}
	if args.Config != nil {
		options.Config = *args.Config
	}
	if len(args.Labels) > 0 {
		options.Config.Labels = args.Labels
	}
	return options
}
