package postprocess

import "github.com/nvr-ai/go-yolo/images"

// Rescaler maps boxes between model space and original image pixel space.
//
// The mapping is a plain per-axis stretch: the model input is assumed to be the
// whole frame resized to the model dimensions, without letterbox padding.
type Rescaler struct {
	imageWidth  int
	imageHeight int
	sx, sy      float32
}

// NewRescaler creates a rescaler for one frame.
//
// Arguments:
//   - imageWidth: The original frame width.
//   - imageHeight: The original frame height.
//   - modelWidth: The model input width. Ignored when normalized is true.
//   - modelHeight: The model input height. Ignored when normalized is true.
//   - normalized: Whether model-space boxes are in [0, 1].
//
// Returns:
//   - The rescaler. A non-positive model dimension leaves that axis unscaled.
func NewRescaler(imageWidth, imageHeight, modelWidth, modelHeight int, normalized bool) Rescaler {
	r := Rescaler{imageWidth: imageWidth, imageHeight: imageHeight, sx: 1, sy: 1}
	switch {
	case normalized:
		r.sx, r.sy = float32(imageWidth), float32(imageHeight)
	default:
		if modelWidth > 0 {
			r.sx = float32(imageWidth) / float32(modelWidth)
		}
		if modelHeight > 0 {
			r.sy = float32(imageHeight) / float32(modelHeight)
		}
	}
	return r
}

// ToImage scales a model-space box to image pixels and clamps it into
// [0, width-1] x [0, height-1].
func (r Rescaler) ToImage(b images.Rect) images.Rect {
	return b.Scale(r.sx, r.sy).Clamp(0, 0, float32(r.imageWidth-1), float32(r.imageHeight-1))
}

// ToModel maps an image-space box back to model space. It is the inverse of
// ToImage for boxes that were not clamped.
func (r Rescaler) ToModel(b images.Rect) images.Rect {
	sx, sy := r.sx, r.sy
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return b.Scale(1/sx, 1/sy)
}
