// Package postprocess - Postprocessing utilities for models.
package postprocess

import "github.com/nvr-ai/go-yolo/images"

// Result represents a single detection candidate.
//
// Results are value types: the extractor creates them and later stages only
// read them.
type Result struct {
	// The bounding box of the result, corner-form, in model space.
	Box images.Rect
	// The confidence score of the result.
	Score float32
	// The predicted class index of the result.
	Class int
}

// Detection is a suppressed, rescaled result in original image pixel space.
type Detection struct {
	// Box is the corner-form box, clamped into the image.
	Box images.Rect `json:"box" yaml:"box"`
	// Score is the confidence of the detection.
	Score float32 `json:"score" yaml:"score"`
	// Class is the class index of the detection.
	Class int `json:"class" yaml:"class"`
	// Label is the class name, when labels were configured.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}
