package postprocess

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-yolo/images"
)

// BoxFormat selects the coordinate space of extracted boxes.
type BoxFormat int

const (
	// FormatAbsolute yields boxes in model input pixels.
	FormatAbsolute BoxFormat = iota
	// FormatNormalized yields boxes in [0, 1] relative to the model input.
	FormatNormalized
)

func (f BoxFormat) String() string {
	switch f {
	case FormatAbsolute:
		return "absolute"
	case FormatNormalized:
		return "normalized"
	default:
		return "unknown"
	}
}

// ExtractOptions controls candidate extraction.
type ExtractOptions struct {
	// ScoreThreshold drops rows whose final score is below it.
	ScoreThreshold float32 `json:"score_threshold" yaml:"score_threshold"`
	// Format is the coordinate space of the produced boxes.
	Format BoxFormat `json:"format" yaml:"format"`
	// ModelWidth is the model input width, used when converting between formats.
	ModelWidth int `json:"model_width" yaml:"model_width"`
	// ModelHeight is the model input height, used when converting between formats.
	ModelHeight int `json:"model_height" yaml:"model_height"`
	// Classes, when not empty, restricts extraction to these class indices.
	Classes []int `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// Extract decodes every row of a raw tensor into a scored candidate.
//
// The class is the argmax of the class scores, the first maximum winning on
// ties. The score is that maximum, multiplied by the objectness column when the
// layout has one. Rows scoring below opts.ScoreThreshold, scoring NaN, or whose
// class is not in opts.Classes are dropped. Candidates keep their row order.
//
// Arguments:
//   - t: The raw tensor.
//   - layout: The declared row layout.
//   - opts: Extraction options.
//
// Returns:
//   - []Result: The candidates, possibly empty.
//   - error: An *InputError when the tensor does not match the layout.
func Extract(t Tensor, layout Layout, opts ExtractOptions) ([]Result, error) {
	view, err := Rows(t, layout)
	if err != nil {
		return nil, err
	}

	sx, sy, err := formatScale(layout, opts)
	if err != nil {
		return nil, err
	}

	var allowed map[int]struct{}
	if len(opts.Classes) > 0 {
		allowed = make(map[int]struct{}, len(opts.Classes))
		for _, c := range opts.Classes {
			allowed[c] = struct{}{}
		}
	}

	offset := layout.ClassOffset()
	results := make([]Result, 0, view.Rows)

	for i := 0; i < view.Rows; i++ {
		row := view.Row(i)

		class, score := argmax(row[offset : offset+layout.NumClasses])
		if layout.Objectness {
			score *= row[4]
		}
		if math32.IsNaN(score) || score < opts.ScoreThreshold {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[class]; !ok {
				continue
			}
		}

		box := images.CenterBox{CX: row[0], CY: row[1], W: row[2], H: row[3]}.Rect()
		if sx != 1 || sy != 1 {
			box = box.Scale(sx, sy)
		}

		results = append(results, Result{Box: box, Score: score, Class: class})
	}

	return results, nil
}

// formatScale returns the factors converting raw geometry into opts.Format.
func formatScale(layout Layout, opts ExtractOptions) (float32, float32, error) {
	wantNormalized := opts.Format == FormatNormalized
	if layout.Normalized == wantNormalized {
		return 1, 1, nil
	}
	if opts.ModelWidth <= 0 || opts.ModelHeight <= 0 {
		return 0, 0, invalidInput(nil, "model input size %dx%d required to convert boxes to %s",
			opts.ModelWidth, opts.ModelHeight, opts.Format)
	}

	w, h := float32(opts.ModelWidth), float32(opts.ModelHeight)
	if wantNormalized {
		return 1 / w, 1 / h, nil
	}
	return w, h, nil
}

// argmax returns the index and value of the first maximum.
func argmax(scores []float32) (int, float32) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}
