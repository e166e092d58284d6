package postprocess

import "fmt"

// FrameSize is the size of the original image the tensor was computed from.
type FrameSize struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Config groups the post-processing parameters of one model.
type Config struct {
	// ScoreThreshold is the minimum candidate score.
	ScoreThreshold float32 `json:"score_threshold" yaml:"score_threshold"`
	// IoUThreshold is the suppression overlap threshold.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// ClassAware restricts suppression to boxes of the same class.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
	// MaxDetections caps the number of detections per frame. Zero means no cap.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
	// InputWidth is the model input width.
	InputWidth int `json:"input_width" yaml:"input_width"`
	// InputHeight is the model input height.
	InputHeight int `json:"input_height" yaml:"input_height"`
	// Classes, when not empty, keeps only these class indices.
	Classes []int `json:"classes,omitempty" yaml:"classes,omitempty"`
	// Labels maps class indices to names.
	Labels []string `json:"-" yaml:"-"`
}

// DefaultConfig returns the default post-processing configuration for a
// 640x640 model.
func DefaultConfig() Config {
	nms := DefaultNMSConfig()
	return Config{
		ScoreThreshold: nms.ScoreThreshold,
		IoUThreshold:   nms.IoUThreshold,
		ClassAware:     nms.ClassAware,
		MaxDetections:  nms.MaxDetections,
		InputWidth:     640,
		InputHeight:    640,
	}
}

// NMS returns the suppression part of the configuration.
func (c Config) NMS() NMSConfig {
	return NMSConfig{
		ScoreThreshold: c.ScoreThreshold,
		IoUThreshold:   c.IoUThreshold,
		ClassAware:     c.ClassAware,
		MaxDetections:  c.MaxDetections,
	}
}

// Label returns the name of a class, or "class_<n>" when no label is known.
func (c Config) Label(class int) string {
	if class >= 0 && class < len(c.Labels) && c.Labels[class] != "" {
		return c.Labels[class]
	}
	return fmt.Sprintf("class_%d", class)
}

// Process runs extraction, suppression and rescaling for one frame.
//
// Arguments:
//   - t: The raw tensor.
//   - layout: The declared row layout.
//   - cfg: The post-processing configuration.
//   - frame: The size of the original image.
//
// Returns:
//   - []Detection: The kept detections in image pixel space, highest score
//     first. Empty, not nil, when nothing qualifies.
//   - error: An *InputError for malformed tensors or an impossible frame size.
func Process(t Tensor, layout Layout, cfg Config, frame FrameSize) ([]Detection, error) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, invalidInput(nil, "frame size %dx%d", frame.Width, frame.Height)
	}

	candidates, err := Extract(t, layout, ExtractOptions{
		ScoreThreshold: cfg.ScoreThreshold,
		Format:         FormatNormalized,
		ModelWidth:     cfg.InputWidth,
		ModelHeight:    cfg.InputHeight,
		Classes:        cfg.Classes,
	})
	if err != nil {
		return nil, err
	}

	kept := Suppress(candidates, cfg.NMS())
	rescaler := NewRescaler(frame.Width, frame.Height, cfg.InputWidth, cfg.InputHeight, true)

	detections := make([]Detection, 0, len(kept))
	for _, k := range kept {
		c := candidates[k]
		detections = append(detections, Detection{
			Box:   rescaler.ToImage(c.Box),
			Score: c.Score,
			Class: c.Class,
			Label: cfg.Label(c.Class),
		})
	}

	return detections, nil
}
