// Package imageload decodes overlay images from disk.
package imageload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotFound means the path is empty or does not exist.
	ErrNotFound = errors.New("image not found")
	// ErrUnreadable means the file exists but cannot be read or decoded.
	ErrUnreadable = errors.New("image unreadable")
)

// Loader turns a path into a decoded image.
type Loader interface {
	Load(path string) (image.Image, error)
}

// FileLoader reads images from the local file system.
type FileLoader struct{}

func (FileLoader) Load(path string) (image.Image, error) {
	return Load(path)
}

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return Decode(data)
}

// Decode sniffs data and decodes it when it is a supported image format.
func Decode(data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: not an image", ErrUnreadable)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnreadable, kind.Extension, err)
	}
	return img, nil
}
