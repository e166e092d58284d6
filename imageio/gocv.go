package imageio

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-yolo/images"
)

type gocvCodec struct{}

// LoadMat reads an image with OpenCV and converts it from BGR to a packed RGB
// frame.
func LoadMat(path string) (*images.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("failed to read image %s", path)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	img := &images.Image{
		Format: images.FormatFromPath(path),
		Data:   rgb.ToBytes(),
		Width:  rgb.Cols(),
		Height: rgb.Rows(),
	}
	if err := img.Validate(); err != nil {
		return nil, errors.Wrapf(err, "unexpected mat layout for %s", path)
	}
	return img, nil
}

// SaveMat writes the frame with OpenCV.
func SaveMat(path string, img *images.Image, quality int) error {
	if err := checkSave(path, img, quality); err != nil {
		return err
	}

	rgb, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Data)
	if err != nil {
		return errors.Wrap(err, "failed to wrap frame")
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	var params []int
	if images.FormatFromPath(path) == images.FormatJPEG {
		params = []int{gocv.IMWriteJpegQuality, quality}
	}
	if !gocv.IMWriteWithParams(path, bgr, params) {
		return errors.Errorf("failed to write image %s", path)
	}
	return nil
}

func (gocvCodec) Load(path string) (*images.Image, error) {
	return LoadMat(path)
}

func (gocvCodec) Save(path string, img *images.Image, quality int) error {
	return SaveMat(path, img, quality)
}
