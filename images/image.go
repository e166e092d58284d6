// Package images - Image definition for processing utilities.
package images

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Channels is the number of bytes per pixel in an Image buffer (packed RGB).
const Channels = 3

// Image is an owned, packed, row-major RGB pixel buffer.
//
// Pixel (x, y) occupies Data[(y*Width+x)*3 : (y*Width+x)*3+3] as R, G, B. The
// buffer is released by the garbage collector once the last reference is gone,
// so no caller ever frees it explicitly.
type Image struct {
	// The format the image was decoded from, if known.
	Format ImageFormat `json:"format" yaml:"format"`
	// The packed RGB data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// NewImage allocates a black width x height RGB buffer.
//
// Arguments:
//   - width: The width in pixels.
//   - height: The height in pixels.
//
// Returns:
//   - *Image: The allocated image.
//   - error: An error if either dimension is not positive.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	return &Image{
		Data:   make([]byte, width*height*Channels),
		Width:  width,
		Height: height,
	}, nil
}

// FromImage copies any image.Image into a packed RGB buffer. Alpha is dropped.
//
// Arguments:
//   - src: The decoded image.
//
// Returns:
//   - *Image: The packed copy.
//   - error: An error if the source has an empty bounds rectangle.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	dst, err := NewImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	// Normalize to NRGBA once so the copy loop reads bytes directly.
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	for y := 0; y < dst.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		out := dst.Data[y*dst.Width*Channels:]
		for x := 0; x < dst.Width; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}

	return dst, nil
}

// ToNRGBA converts the buffer into an opaque *image.NRGBA for encoding.
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, j := 0, 0; i+2 < len(m.Data) && j+3 < len(out.Pix); i, j = i+3, j+4 {
		out.Pix[j+0] = m.Data[i+0]
		out.Pix[j+1] = m.Data[i+1]
		out.Pix[j+2] = m.Data[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// Validate checks that the buffer length matches the declared dimensions.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("nil image")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", m.Width, m.Height)
	}
	if want := m.Width * m.Height * Channels; len(m.Data) != want {
		return fmt.Errorf("image buffer holds %d bytes, %dx%d RGB needs %d",
			len(m.Data), m.Width, m.Height, want)
	}
	return nil
}

// RGBAt returns the color of pixel (x, y). Out-of-range coordinates return black.
func (m *Image) RGBAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.RGBA{A: 0xff}
	}
	i := (y*m.Width + x) * Channels
	if i+2 >= len(m.Data) {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: m.Data[i], G: m.Data[i+1], B: m.Data[i+2], A: 0xff}
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	return &Image{Format: m.Format, Data: data, Width: m.Width, Height: m.Height}
}
