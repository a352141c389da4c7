// Package canvas is a small software 2D drawing surface: polygon fills, dashed
// strokes, text and image compositing, and path clipping, all in device pixels.
package canvas

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Canvas is the drawing capability consumed by region tools and the watermark
// renderer.
type Canvas interface {
	Bounds() image.Rectangle
	DrawImage(img image.Image, at image.Point)
	Fill(p *Path, src image.Image)
	FillRect(r image.Rectangle, src image.Image)
	Stroke(p *Path, pen Pen)
	DrawRect(r image.Rectangle, c color.Color)
	DrawText(s string, face font.Face, c color.Color, center image.Point)
	SetClip(p *Path)
	ResetClip()
}

// Pen describes a stroke. Dashes alternates on/off lengths in pixels; nil
// draws a solid line.
type Pen struct {
	Color      color.Color
	Width      float64
	Dashes     []float64
	DashOffset float64
}

// Raster is a Canvas backed by an *image.RGBA.
type Raster struct {
	img    *image.RGBA
	clip   *image.Alpha
	pooled bool
}

var _ Canvas = (*Raster)(nil)

// NewRaster wraps img. The caller keeps ownership of img.
func NewRaster(img *image.RGBA) *Raster {
	return &Raster{img: img}
}

// NewOffscreen returns a transparent surface of the given size with its origin
// at (0, 0). Call Release when done with it.
func NewOffscreen(size image.Point) *Raster {
	return &Raster{
		img:    acquireRGBA(image.Rectangle{Max: size}),
		pooled: true,
	}
}

// Image returns the backing image. It must not be used after Release.
func (r *Raster) Image() *image.RGBA { return r.img }

// Release returns pooled buffers. It is safe to call more than once.
func (r *Raster) Release() {
	r.ResetClip()
	if r.pooled {
		releaseRGBA(r.img)
		r.pooled = false
	}
	r.img = nil
}

func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }

func (r *Raster) DrawImage(img image.Image, at image.Point) {
	sb := img.Bounds()
	dr := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	if r.clip == nil {
		draw.Draw(r.img, dr, img, sb.Min, draw.Over)
		return
	}
	draw.DrawMask(r.img, dr, img, sb.Min, r.clip, dr.Min, draw.Over)
}

func (r *Raster) Fill(p *Path, src image.Image) {
	if p == nil || p.Empty() {
		return
	}
	b := r.img.Bounds()
	mask := r.coverage(p)
	defer releaseAlpha(mask)
	if r.clip != nil {
		for i, a := range r.clip.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(a) / 0xff)
		}
	}
	draw.DrawMask(r.img, b, src, b.Min, mask, b.Min, draw.Over)
}

func (r *Raster) FillRect(rect image.Rectangle, src image.Image) {
	rect = rect.Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	if r.clip == nil {
		draw.Draw(r.img, rect, src, rect.Min, draw.Over)
		return
	}
	draw.DrawMask(r.img, rect, src, rect.Min, r.clip, rect.Min, draw.Over)
}

func (r *Raster) Stroke(p *Path, pen Pen) {
	if p == nil || p.Empty() || pen.Width <= 0 || pen.Color == nil {
		return
	}
	r.layered(func(dst *image.RGBA) {
		b := dst.Bounds()
		scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
		d := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
		d.SetStroke(toFixed(pen.Width), toFixed(4), rasterx.ButtCap, rasterx.ButtCap,
			rasterx.FlatGap, rasterx.MiterClip, pen.Dashes, pen.DashOffset)
		d.SetColor(pen.Color)
		for _, f := range p.figures {
			if len(f.pts) < 2 {
				continue
			}
			d.Start(toFixedPoint(f.pts[0], b.Min))
			for _, pt := range f.pts[1:] {
				d.Line(toFixedPoint(pt, b.Min))
			}
			d.Stop(f.closed)
		}
		d.Draw()
	})
}

// DrawRect outlines r one pixel inside its edges, so the outline covers
// exactly the pixels of r's border.
func (r *Raster) DrawRect(rect image.Rectangle, c color.Color) {
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return
	}
	src := image.NewUniform(c)
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y
	r.FillRect(image.Rect(x0, y0, x1, y0+1), src)
	if y1-1 > y0 {
		r.FillRect(image.Rect(x0, y1-1, x1, y1), src)
	}
	r.FillRect(image.Rect(x0, y0+1, x0+1, y1-1), src)
	if x1-1 > x0 {
		r.FillRect(image.Rect(x1-1, y0+1, x1, y1-1), src)
	}
}

func (r *Raster) DrawText(s string, face font.Face, c color.Color, center image.Point) {
	if s == "" || face == nil {
		return
	}
	r.layered(func(dst *image.RGBA) {
		drawTextCentered(dst, s, face, c, center)
	})
}

// SetClip restricts subsequent drawing to the inside of p.
func (r *Raster) SetClip(p *Path) {
	r.ResetClip()
	if p == nil {
		return
	}
	r.clip = r.coverage(p)
}

func (r *Raster) ResetClip() {
	if r.clip != nil {
		releaseAlpha(r.clip)
		r.clip = nil
	}
}

// coverage rasterizes the closed figures of p into an alpha mask the size of
// the canvas.
func (r *Raster) coverage(p *Path) *image.Alpha {
	b := r.img.Bounds()
	mask := acquireAlpha(b)
	if b.Empty() {
		return mask
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Src
	for _, f := range p.figures {
		if len(f.pts) < 2 {
			continue
		}
		z.MoveTo(float32(f.pts[0].X-float64(b.Min.X)), float32(f.pts[0].Y-float64(b.Min.Y)))
		for _, pt := range f.pts[1:] {
			z.LineTo(float32(pt.X-float64(b.Min.X)), float32(pt.Y-float64(b.Min.Y)))
		}
		z.ClosePath()
	}
	z.Draw(mask, b, image.Opaque, image.Point{})
	return mask
}

// layered runs paint directly on the canvas, or on a scratch layer that is
// then composited through the clip mask.
func (r *Raster) layered(paint func(dst *image.RGBA)) {
	if r.clip == nil {
		paint(r.img)
		return
	}
	b := r.img.Bounds()
	layer := acquireRGBA(b)
	defer releaseRGBA(layer)
	paint(layer)
	draw.DrawMask(r.img, b, layer, b.Min, r.clip, b.Min, draw.Over)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func toFixedPoint(v Vec, origin image.Point) fixed.Point26_6 {
	return fixed.Point26_6{
		X: toFixed(v.X - float64(origin.X)),
		Y: toFixed(v.Y - float64(origin.Y)),
	}
}
