package postprocess

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Tensor is a raw, read-only float32 output of a detection head.
//
// Shape is either [rows, cols], [1, rows, cols] or, for channels-first heads,
// [cols, rows] and [1, cols, rows]. The element type matches ort.Shape so an
// onnxruntime output can be passed through without conversion.
type Tensor struct {
	Data  []float32 `json:"data" yaml:"data"`
	Shape []int64   `json:"shape" yaml:"shape"`
}

// RowView is a row-major [Rows, Cols] view over a candidate matrix.
type RowView struct {
	Data []float32
	Rows int
	Cols int
}

// Row returns the i-th candidate row. The returned slice aliases the view.
func (v RowView) Row(i int) []float32 {
	return v.Data[i*v.Cols : (i+1)*v.Cols]
}

// Rows normalizes a raw tensor into a row-major candidate view.
//
// Arguments:
//   - t: The raw tensor.
//   - layout: The declared row layout.
//
// Returns:
//   - RowView: One row per candidate. A tensor with zero candidates yields an
//     empty view.
//   - error: An *InputError when the tensor does not match the layout.
func Rows(t Tensor, layout Layout) (RowView, error) {
	if err := layout.Validate(); err != nil {
		return RowView{}, err
	}

	shape := t.Shape
	switch len(shape) {
	case 2:
	case 3:
		if shape[0] != 1 {
			return RowView{}, invalidInput(t.Shape, "batch size %d, expected 1", shape[0])
		}
		shape = shape[1:]
	default:
		return RowView{}, invalidInput(t.Shape, "rank %d, expected 2 or 3", len(shape))
	}
	if shape[0] < 0 || shape[1] < 0 {
		return RowView{}, invalidInput(t.Shape, "negative dimension")
	}

	rows, cols := int(shape[0]), int(shape[1])
	if layout.ChannelsFirst {
		rows, cols = cols, rows
	}

	if cols != layout.Cols() {
		return RowView{}, invalidInput(t.Shape,
			"row length %d does not match layout (%d classes, objectness %t)",
			cols, layout.NumClasses, layout.Objectness)
	}
	if len(t.Data) != rows*cols {
		return RowView{}, invalidInput(t.Shape, "data holds %d values, shape needs %d", len(t.Data), rows*cols)
	}

	if rows == 0 {
		return RowView{Rows: 0, Cols: cols}, nil
	}
	if !layout.ChannelsFirst || rows == 1 {
		return RowView{Data: t.Data, Rows: rows, Cols: cols}, nil
	}

	data, err := transpose(t.Data, cols, rows)
	if err != nil {
		return RowView{}, err
	}
	return RowView{Data: data, Rows: rows, Cols: cols}, nil
}

// transpose returns a row-major copy of the [r, c] matrix as [c, r].
func transpose(data []float32, r, c int) ([]float32, error) {
	backing := make([]float32, len(data))
	copy(backing, data)

	d := tensor.New(tensor.WithShape(r, c), tensor.WithBacking(backing))
	if err := d.T(); err != nil {
		return nil, errors.Wrap(err, "failed to transpose candidate matrix")
	}
	if err := d.Transpose(); err != nil {
		return nil, errors.Wrap(err, "failed to materialize transposed candidate matrix")
	}

	out, ok := d.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("unexpected tensor backing %T", d.Data())
	}
	return out, nil
}
