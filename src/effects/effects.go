// Package effects holds the bitmap effects applied to watermark overlays.
package effects

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

// ReflectionOptions control the mirrored copy drawn under an overlay.
// Percentage is the share of the source height that is reflected; the alpha
// fades from MaxAlpha on the first row to MinAlpha on the last.
type ReflectionOptions struct {
	Percentage int
	MaxAlpha   uint8
	MinAlpha   uint8
}

// DefaultReflection is the falloff used for watermarks.
var DefaultReflection = ReflectionOptions{Percentage: 50, MaxAlpha: 150, MinAlpha: 10}

// Reflection returns a vertically mirrored, fading copy of the lower part of
// src. The result has its origin at (0, 0). It returns nil when there is
// nothing to reflect.
func Reflection(src image.Image, opts ReflectionOptions) *image.RGBA {
	b := src.Bounds()
	h := b.Dy() * opts.Percentage / 100
	if h <= 0 || b.Dx() <= 0 {
		return nil
	}
	if h > b.Dy() {
		h = b.Dy()
	}

	flipped := transform.FlipV(src)
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), h))
	fb := flipped.Bounds()
	for y := 0; y < h; y++ {
		alpha := fadeAlpha(y, h, opts)
		srcRow := flipped.Pix[(y)*flipped.Stride : (y)*flipped.Stride+4*fb.Dx()]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+4*b.Dx()]
		for i := range srcRow {
			// Premultiplied: scaling all four channels keeps the color intact.
			dstRow[i] = uint8(uint32(srcRow[i]) * uint32(alpha) / 0xff)
		}
	}
	return out
}

func fadeAlpha(row, rows int, opts ReflectionOptions) uint8 {
	if rows <= 1 {
		return opts.MaxAlpha
	}
	span := int(opts.MaxAlpha) - int(opts.MinAlpha)
	return uint8(int(opts.MaxAlpha) - span*row/(rows-1))
}

// Resize scales src to w x h. The result has its origin at (0, 0).
func Resize(src image.Image, w, h int) *image.RGBA {
	if w == src.Bounds().Dx() && h == src.Bounds().Dy() {
		return clone.AsRGBA(src)
	}
	return transform.Resize(src, w, h, transform.Linear)
}
