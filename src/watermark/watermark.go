// Package watermark stamps text labels or overlay images onto captured
// bitmaps.
//
// Apply never fails: when the watermark cannot be drawn the caller gets an
// image back anyway. The source image is never modified; a watermarked copy
// is returned, and skipped watermarks return the source itself.
package watermark

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/font"

	"screen-capture-fx/src/canvas"
	"screen-capture-fx/src/effects"
	"screen-capture-fx/src/imageload"
	"screen-capture-fx/src/nameparser"
	"screen-capture-fx/src/placement"
)

// labelMargin is the padding between the text and the label edge.
const labelMargin = 5

// ErrSkipped means there was nothing to draw: invalid settings, a missing
// overlay, or a watermark that does not fit while AutoHide is set.
var ErrSkipped = errors.New("watermark skipped")

// DrawError reports a failure while compositing.
type DrawError struct {
	Stage string
	Err   error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("watermark %s: %v", e.Stage, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }

// NameResolver expands placeholders in the watermark text.
type NameResolver interface {
	Resolve(template string, img image.Image) string
}

// ImageLoader loads overlay images.
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

// FontSource opens font faces. Returned faces are closed by the Manager.
type FontSource interface {
	Face(f canvas.Font) (font.Face, error)
}

// FontSourceFunc adapts a function to FontSource.
type FontSourceFunc func(f canvas.Font) (font.Face, error)

func (fn FontSourceFunc) Face(f canvas.Font) (font.Face, error) { return fn(f) }

// Manager applies one watermark configuration. It is safe for concurrent
// use as long as Config is not modified.
type Manager struct {
	Config Config
	Names  NameResolver
	Images ImageLoader
	Fonts  FontSource
}

// NewManager returns a Manager with the default collaborators.
func NewManager(cfg Config) *Manager {
	return &Manager{
		Config: cfg,
		Names:  nameparser.New(),
		Images: imageload.FileLoader{},
		Fonts:  FontSourceFunc(canvas.LoadFace),
	}
}

// Apply returns img with the watermark composited, or img itself when the
// watermark is skipped. Drawing failures are logged and degrade to the best
// image produced so far.
func (m *Manager) Apply(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	out, err := m.Render(img)
	if err == nil {
		return out
	}
	if errors.Is(err, ErrSkipped) {
		return img
	}
	log.Printf("Watermark: %v", err)
	if out != nil {
		return out
	}
	return img
}

// Render composites the watermark onto a copy of img. It returns ErrSkipped
// (wrapped) when there is nothing to draw and a *DrawError, possibly along
// with a partially drawn image, when compositing fails.
func (m *Manager) Render(img image.Image) (image.Image, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrSkipped)
	}
	switch m.Config.Mode {
	case ModeText:
		text := m.Config.Text
		if m.Names != nil {
			text = m.Names.Resolve(text, img)
		}
		return m.renderText(img, text)
	case ModeImage:
		return m.renderImage(img)
	default:
		return nil, fmt.Errorf("%w: unknown mode %v", ErrSkipped, m.Config.Mode)
	}
}

func (m *Manager) renderText(src image.Image, text string) (out image.Image, err error) {
	defer recoverDraw("text", &err)
	cfg := m.Config

	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrSkipped)
	}
	if cfg.Font.Size < 1 {
		return nil, fmt.Errorf("%w: font size %.1f", ErrSkipped, cfg.Font.Size)
	}
	face, err := m.face(cfg.Font)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	defer face.Close()

	labelSize := canvas.MeasureText(text, face).Add(image.Pt(2*labelMargin, 2*labelMargin))
	if cfg.AutoHide && exceeds(src.Bounds().Size(), labelSize, cfg.Offset) {
		return nil, fmt.Errorf("%w: label %v does not fit", ErrSkipped, labelSize)
	}

	label := canvas.NewOffscreen(labelSize)
	defer label.Release()
	m.drawLabel(label, text, face)

	dst := clone.AsRGBA(src)
	out = dst
	m.composite(dst, label.Image(), labelSize)
	return out, nil
}

func (m *Manager) renderImage(src image.Image) (out image.Image, err error) {
	defer recoverDraw("image", &err)
	cfg := m.Config

	if cfg.ImagePath == "" {
		return nil, fmt.Errorf("%w: no overlay path", ErrSkipped)
	}
	if cfg.ImageScale <= 0 {
		return nil, fmt.Errorf("%w: scale %d%%", ErrSkipped, cfg.ImageScale)
	}
	overlay, err := m.loader().Load(cfg.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSkipped, err)
	}

	ob := overlay.Bounds()
	size := image.Pt(
		int(float64(cfg.ImageScale)/100*float64(ob.Dx())),
		int(float64(cfg.ImageScale)/100*float64(ob.Dy())),
	)
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: overlay scaled to %v", ErrSkipped, size)
	}
	if cfg.AutoHide && exceeds(src.Bounds().Size(), size, cfg.Offset) {
		return nil, fmt.Errorf("%w: overlay %v does not fit", ErrSkipped, size)
	}
	if cfg.ImageScale != 100 {
		overlay = effects.Resize(overlay, size.X, size.Y)
	}

	dst := clone.AsRGBA(src)
	out = dst
	pos := m.composite(dst, overlay, size)
	if cfg.UseBorder {
		canvas.NewRaster(dst).DrawRect(image.Rectangle{Min: pos, Max: pos.Add(size)}, color.Black)
	}
	return out, nil
}

// drawLabel paints the rounded, gradient-filled label box with centered text.
func (m *Manager) drawLabel(label *canvas.Raster, text string, face font.Face) {
	cfg := m.Config
	b := label.Bounds()

	box := canvas.NewPath()
	box.AddRoundedRect(0.5, 0.5, float64(b.Dx())-0.5, float64(b.Dy())-0.5, float64(cfg.CornerRadius))

	label.Fill(box, m.background(b))
	if cfg.BorderColor != nil {
		label.Stroke(box, canvas.Pen{Color: cfg.BorderColor, Width: 1})
	}
	fontColor := cfg.FontColor
	if fontColor == nil {
		fontColor = color.White
	}
	label.DrawText(text, face, fontColor, image.Pt(b.Dx()/2, b.Dy()/2))
}

func (m *Manager) background(rect image.Rectangle) image.Image {
	cfg := m.Config
	if cfg.UseCustomGradient && len(cfg.CustomGradient.Stops) > 0 {
		return canvas.NewLinearGradient(rect, cfg.CustomGradient.Kind, cfg.CustomGradient.Stops...)
	}
	return canvas.NewLinearGradient(rect, cfg.GradientKind,
		canvas.Stop{Color: cfg.Gradient1, Offset: 0},
		canvas.Stop{Color: cfg.Gradient2, Offset: 1},
	)
}

// composite draws overlay at the anchored position, plus its reflection when
// enabled, and returns the overlay's top-left corner.
func (m *Manager) composite(dst *image.RGBA, overlay image.Image, size image.Point) image.Point {
	cfg := m.Config
	b := dst.Bounds()
	pos := b.Min.Add(placement.Position(cfg.Position, cfg.Offset, b.Size(), size))

	c := canvas.NewRaster(dst)
	c.DrawImage(overlay, pos)
	if cfg.AddReflection {
		if r := effects.Reflection(overlay, cfg.Reflection); r != nil {
			c.DrawImage(r, pos.Add(image.Pt(0, size.Y-1)))
		}
	}
	return pos
}

func (m *Manager) face(f canvas.Font) (font.Face, error) {
	if m.Fonts == nil {
		return canvas.LoadFace(f)
	}
	return m.Fonts.Face(f)
}

func (m *Manager) loader() ImageLoader {
	if m.Images == nil {
		return imageload.FileLoader{}
	}
	return m.Images
}

// exceeds reports whether box plus offset overflows img in either dimension.
func exceeds(img, box image.Point, offset int) bool {
	return img.X < box.X+offset || img.Y < box.Y+offset
}

func recoverDraw(stage string, err *error) {
	if r := recover(); r != nil {
		*err = &DrawError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
	}
}
