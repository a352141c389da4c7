package canvas

import (
	"image"
	"sync"
)

var (
	rgbaPool  sync.Pool
	alphaPool sync.Pool
)

// acquireRGBA returns a cleared RGBA image with bounds b, reusing pooled
// storage when it is large enough.
func acquireRGBA(b image.Rectangle) *image.RGBA {
	need := 4 * b.Dx() * b.Dy()
	if img, ok := rgbaPool.Get().(*image.RGBA); ok && cap(img.Pix) >= need {
		img.Pix = img.Pix[:need]
		clear(img.Pix)
		img.Stride = 4 * b.Dx()
		img.Rect = b
		return img
	}
	return image.NewRGBA(b)
}

func releaseRGBA(img *image.RGBA) {
	if img != nil {
		rgbaPool.Put(img)
	}
}

func acquireAlpha(b image.Rectangle) *image.Alpha {
	need := b.Dx() * b.Dy()
	if img, ok := alphaPool.Get().(*image.Alpha); ok && cap(img.Pix) >= need {
		img.Pix = img.Pix[:need]
		clear(img.Pix)
		img.Stride = b.Dx()
		img.Rect = b
		return img
	}
	return image.NewAlpha(b)
}

func releaseAlpha(img *image.Alpha) {
	if img != nil {
		alphaPool.Put(img)
	}
}
