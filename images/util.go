package images

import (
	"crypto/md5"
	"fmt"
)

// Checksum generates a deterministic checksum of the pixel buffer.
//
// It is used to confirm that a frame without detections leaves the renderer
// untouched.
//
// Arguments:
//   - img: The image to checksum.
//
// Returns:
//   - A hex-encoded MD5 checksum string, or "empty" for an empty buffer.
func Checksum(img *Image) string {
	if img == nil || len(img.Data) == 0 {
		return "empty"
	}

	hash := md5.New()
	hash.Write(img.Data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
