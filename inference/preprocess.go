package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/images"
)

// NormalizationType defines how pixel values are normalized.
type NormalizationType int

const (
	// NormalizeZeroToOne scales pixel values to [0, 1].
	NormalizeZeroToOne NormalizationType = iota
	// NormalizeNone keeps pixel values as 0-255.
	NormalizeNone
)

// ColorMode defines the channel order written into the tensor.
type ColorMode int

const (
	// ColorModeRGB is standard RGB color mode.
	ColorModeRGB ColorMode = iota
	// ColorModeBGR is BGR color mode (common for OpenCV models).
	ColorModeBGR
)

// InputConfig describes the NCHW float tensor a model expects.
type InputConfig struct {
	// Width is the model input width.
	Width int `json:"width" yaml:"width"`
	// Height is the model input height.
	Height int `json:"height" yaml:"height"`
	// ColorMode is the channel order.
	ColorMode ColorMode `json:"color_mode" yaml:"color_mode"`
	// Normalization is the pixel value scaling.
	Normalization NormalizationType `json:"normalization" yaml:"normalization"`
	// Interpolation is the resize filter. The zero value is nearest neighbor.
	Interpolation resize.InterpolationFunction `json:"interpolation" yaml:"interpolation"`
}

// DefaultInputConfig returns the input of a 640x640 YOLO export: RGB scaled to
// [0, 1], resized with Lanczos3.
func DefaultInputConfig() InputConfig {
	return InputConfig{
		Width:         640,
		Height:        640,
		ColorMode:     ColorModeRGB,
		Normalization: NormalizeZeroToOne,
		Interpolation: resize.Lanczos3,
	}
}

// Len returns the number of floats of one input tensor.
func (c InputConfig) Len() int {
	return 3 * c.Width * c.Height
}

// PrepareInput stretches the image to the model input size and writes it into
// dst as planar [3, H, W] floats.
//
// Arguments:
//   - img: The image to prepare.
//   - cfg: The model input description.
//   - dst: The destination tensor data, at least cfg.Len() floats.
//
// Returns:
//   - error: An error if the image is invalid or dst is too small.
func PrepareInput(img *images.Image, cfg InputConfig, dst []float32) error {
	if err := img.Validate(); err != nil {
		return errors.Wrap(err, "input validation failed")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Errorf("invalid model input size %dx%d", cfg.Width, cfg.Height)
	}

	channelSize := cfg.Width * cfg.Height
	if len(dst) < cfg.Len() {
		return errors.Errorf("destination tensor only holds %d floats, needs %d", len(dst), cfg.Len())
	}

	var src image.Image = img.ToNRGBA()
	if img.Width != cfg.Width || img.Height != cfg.Height {
		src = resize.Resize(uint(cfg.Width), uint(cfg.Height), src, cfg.Interpolation)
	}

	c0 := dst[0:channelSize]
	c1 := dst[channelSize : channelSize*2]
	c2 := dst[channelSize*2 : channelSize*3]
	if cfg.ColorMode == ColorModeBGR {
		c0, c2 = c2, c0
	}

	scale := float32(1)
	if cfg.Normalization == NormalizeZeroToOne {
		scale = 1.0 / 255.0
	}

	b := src.Bounds()
	i := 0
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			c0[i] = float32(r>>8) * scale
			c1[i] = float32(g>>8) * scale
			c2[i] = float32(bl>>8) * scale
			i++
		}
	}
	return nil
}
