package postprocess

// Layout describes how a raw detection head lays out one candidate.
//
// A row is [cx, cy, w, h, (objectness), class_0 ... class_N-1]. The layout is
// always declared by the caller: guessing it from the tensor shape silently
// misreads the geometry columns when the guess is wrong.
type Layout struct {
	// NumClasses is the number of per-class score columns.
	NumClasses int `json:"num_classes" yaml:"num_classes"`
	// Objectness is true when an objectness column follows the geometry.
	Objectness bool `json:"objectness" yaml:"objectness"`
	// ChannelsFirst is true for [cols, rows] tensors such as YOLOv8 [1, 84, 8400].
	ChannelsFirst bool `json:"channels_first" yaml:"channels_first"`
	// Normalized is true when the raw geometry is already in [0, 1].
	Normalized bool `json:"normalized" yaml:"normalized"`
}

// Cols returns the row length implied by the layout.
func (l Layout) Cols() int {
	return l.ClassOffset() + l.NumClasses
}

// ClassOffset returns the index of the first class score within a row.
func (l Layout) ClassOffset() int {
	if l.Objectness {
		return 5
	}
	return 4
}

// Validate checks the layout itself, independent of any tensor.
func (l Layout) Validate() error {
	if l.NumClasses < 1 {
		return invalidInput(nil, "layout declares %d classes", l.NumClasses)
	}
	return nil
}
