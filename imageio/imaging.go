package imageio

import (
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/images"
)

type imagingCodec struct{}

// Load decodes an image file into a packed RGB frame, applying any EXIF
// orientation.
func Load(path string) (*images.Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image %s", path)
	}
	img, err := images.FromImage(src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert image %s", path)
	}
	img.Format = images.FormatFromPath(path)
	return img, nil
}

// Decode reads an encoded image from r.
func Decode(r io.Reader) (*images.Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return images.FromImage(src)
}

// Save encodes the frame to path. The format follows the extension.
//
// Arguments:
//   - path: The destination. Its extension selects JPEG, PNG or BMP.
//   - img: The frame.
//   - quality: JPEG quality in [1, 100]. Ignored for other formats.
//
// Returns:
//   - error: An error if the frame is invalid or the write fails.
func Save(path string, img *images.Image, quality int) error {
	if err := checkSave(path, img, quality); err != nil {
		return err
	}
	if err := imaging.Save(img.ToNRGBA(), path, imaging.JPEGQuality(quality)); err != nil {
		return errors.Wrapf(err, "failed to save image %s", path)
	}
	return nil
}

func (imagingCodec) Load(path string) (*images.Image, error) {
	return Load(path)
}

func (imagingCodec) Save(path string, img *images.Image, quality int) error {
	return Save(path, img, quality)
}
