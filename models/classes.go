package models

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/models/model"
)

// OutputClassSet ties a model family to its ordered list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Style model.Family
	// Labels indexed by the class id the model emits.
	Labels []string
}

// Names returns a copy of the labels.
func (s OutputClassSet) Names() []string {
	return append([]string(nil), s.Labels...)
}

// Name returns the label of idx, or an empty string when idx is out of range.
func (s OutputClassSet) Name(idx int) string {
	if idx < 0 || idx >= len(s.Labels) {
		return ""
	}
	return s.Labels[idx]
}

// Index returns the class id of a label. Matching ignores case.
func (s OutputClassSet) Index(name string) (int, error) {
	for i, label := range s.Labels {
		if strings.EqualFold(label, name) {
			return i, nil
		}
	}
	return -1, errors.Errorf("name %q not found in style %q", name, s.Style)
}

// Indices resolves a list of labels into class ids.
//
// Arguments:
//   - names: Labels such as "person" or "car".
//
// Returns:
//   - []int: The class ids, in the order given.
//   - error: An error naming the first unknown label.
func (s OutputClassSet) Indices(names []string) ([]int, error) {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		idx, err := s.Index(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, idx)
	}
	return ids, nil
}

// COCOClasses is the full 80 COCO classes plus "__background__" at index 0.
var COCOClasses = OutputClassSet{
	Style: model.ModelFamilyCOCO,
	Labels: []string{
		"__background__", "person", "bicycle", "car", "motorcycle", "airplane",
		"bus", "train", "truck", "boat", "traffic light", "fire hydrant",
		"stop sign", "parking meter", "bench", "bird", "cat", "dog",
		"horse", "sheep", "cow", "elephant", "bear", "zebra",
		"giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase",
		"frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat",
		"baseball glove", "skateboard", "surfboard", "tennis racket", "bottle", "wine glass",
		"cup", "fork", "knife", "spoon", "bowl", "banana",
		"apple", "sandwich", "orange", "broccoli", "carrot", "hot dog",
		"pizza", "donut", "cake", "chair", "couch", "potted plant",
		"bed", "dining table", "toilet", "tv", "laptop", "mouse",
		"remote", "keyboard", "cell phone", "microwave", "oven", "toaster",
		"sink", "refrigerator", "book", "clock", "vase", "scissors",
		"teddy bear", "hair drier", "toothbrush",
	},
}

// YOLOClasses is the 80 COCO classes (no background).
// YOLO models index directly into this zero-based list.
var YOLOClasses = OutputClassSet{
	Style:  model.ModelFamilyYOLO,
	Labels: COCOClasses.Labels[1:],
}

// PascalVOCClasses is the 20 Pascal VOC classes + "__background__" at index 0.
var PascalVOCClasses = OutputClassSet{
	Style: model.ModelFamilyVOC,
	Labels: []string{
		"__background__", "aeroplane", "bicycle", "bird", "boat", "bottle",
		"bus", "car", "cat", "chair", "cow", "diningtable",
		"dog", "horse", "motorbike", "person", "pottedplant", "sheep",
		"sofa", "train", "tvmonitor",
	},
}

// ClassSet returns the label set of a family.
func ClassSet(family model.Family) (OutputClassSet, error) {
	switch family {
	case model.ModelFamilyCOCO:
		return COCOClasses, nil
	case model.ModelFamilyYOLO:
		return YOLOClasses, nil
	case model.ModelFamilyVOC:
		return PascalVOCClasses, nil
	default:
		return OutputClassSet{}, errors.Errorf("style %q not registered", family)
	}
}
