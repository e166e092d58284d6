// Package imageio loads and saves packed RGB frames.
//
// Two backends are provided: a pure-Go one built on disintegration/imaging and
// an OpenCV one built on gocv. Both read any format their library supports and
// pick the output format from the file extension.
package imageio

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/images"
)

// DefaultQuality is the JPEG quality used for annotated output.
const DefaultQuality = 100

// Backend selects the image library.
type Backend string

const (
	// BackendImaging uses disintegration/imaging (no cgo).
	BackendImaging Backend = "imaging"
	// BackendGoCV uses OpenCV through gocv.
	BackendGoCV Backend = "gocv"
)

// Codec loads and saves frames.
type Codec interface {
	Load(path string) (*images.Image, error)
	Save(path string, img *images.Image, quality int) error
}

// NewCodec returns the codec of a backend.
func NewCodec(backend Backend) (Codec, error) {
	switch backend {
	case "", BackendImaging:
		return imagingCodec{}, nil
	case BackendGoCV:
		return gocvCodec{}, nil
	default:
		return nil, errors.Errorf("unknown image backend %q", backend)
	}
}

// ImageFile is an image found by ListImages.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the frame number parsed from a "frame-<n>" name, or -1.
	Frame int
}

// ListImages returns the images of a directory. Files named "frame-<n>" come
// first in frame order, then every other image by name.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: The image files.
//   - error: Error if the directory cannot be read.
func ListImages(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if images.FormatFromPath(name) == images.FormatUnknown {
			continue
		}

		frame := -1
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if n, err := strconv.Atoi(strings.TrimPrefix(stem, "frame-")); err == nil && strings.HasPrefix(stem, "frame-") {
			frame = n
		}

		files = append(files, ImageFile{Path: filepath.Join(dir, name), Frame: frame})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		switch {
		case a.Frame >= 0 && b.Frame >= 0:
			return a.Frame < b.Frame
		case a.Frame >= 0 || b.Frame >= 0:
			return a.Frame >= 0
		default:
			return a.Path < b.Path
		}
	})

	return files, nil
}

func checkSave(path string, img *images.Image, quality int) error {
	if err := img.Validate(); err != nil {
		return errors.Wrapf(err, "cannot save %s", path)
	}
	if images.FormatFromPath(path) == images.FormatUnknown {
		return errors.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if quality < 1 || quality > 100 {
		return errors.Errorf("jpeg quality %d out of range [1, 100]", quality)
	}
	return nil
}
