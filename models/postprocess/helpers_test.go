package postprocess

// rowsFirst packs rows into a [1, R, C] tensor.
func rowsFirst(rows ...[]float32) Tensor {
	if len(rows) == 0 {
		return Tensor{Shape: []int64{1, 0, 0}}
	}
	cols := len(rows[0])
	data := make([]float32, 0, len(rows)*cols)
	for _, r := range rows {
		data = append(data, r...)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(len(rows)), int64(cols)}}
}

// channelsFirst packs rows into a [1, C, R] tensor, the way YOLOv8 emits them.
func channelsFirst(rows ...[]float32) Tensor {
	cols := len(rows[0])
	data := make([]float32, len(rows)*cols)
	for r, row := range rows {
		for c, v := range row {
			data[c*len(rows)+r] = v
		}
	}
	return Tensor{Data: data, Shape: []int64{1, int64(cols), int64(len(rows))}}
}

// row builds a row without objectness: geometry followed by class scores.
func row(cx, cy, w, h float32, scores ...float32) []float32 {
	return append([]float32{cx, cy, w, h}, scores...)
}
