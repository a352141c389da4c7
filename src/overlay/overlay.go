package overlay

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"log"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"screen-capture-fx/src/canvas"
	"screen-capture-fx/src/surface"
)

// DefaultFrameInterval paces Update/Render at roughly 60 frames per second.
const DefaultFrameInterval = time.Second / 60

// Selector shows a full-screen window over a frozen capture and runs a
// region tool on it.
type Selector struct {
	App           fyne.App
	Config        surface.Config
	FrameInterval time.Duration
}

func NewSelector(app fyne.App, cfg surface.Config) *Selector {
	return &Selector{App: app, Config: cfg, FrameInterval: DefaultFrameInterval}
}

// Select blocks until the user confirms or cancels a selection over
// background. The result is in background pixel coordinates. Select must not
// be called on the fyne main goroutine.
func (s *Selector) Select(ctx context.Context, background *image.RGBA) (surface.Result, error) {
	if background == nil || background.Bounds().Empty() {
		return surface.Result{}, errors.New("empty background")
	}
	tool, err := surface.New(s.Config)
	if err != nil {
		return surface.Result{}, err
	}
	v := newView(tool, background)

	var win fyne.Window
	fyne.DoAndWait(func() {
		win = s.App.NewWindow("Select region")
		win.SetPadded(false)
		win.SetFullScreen(true)
		win.SetContent(v)
		win.Canvas().SetOnTypedKey(v.TypedKey)
		win.SetCloseIntercept(func() { v.input.PressKey(surface.KeyEscape) })
		win.Show()
		win.RequestFocus()
	})
	defer fyne.Do(win.Close)
	log.Printf("Overlay: selecting %v with %v tool", background.Bounds().Size(), s.Config.Shape)

	interval := s.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return surface.Result{Kind: surface.ResultCancelled}, ctx.Err()
		case <-ticker.C:
			var (
				res    surface.Result
				closed bool
			)
			fyne.DoAndWait(func() { res, closed = v.frame() })
			if closed {
				log.Printf("Overlay: selection %v %v", res.Kind, res.Area)
				return res, nil
			}
		}
	}
}

// view is the full-screen widget. Every method runs on the fyne main
// goroutine.
type view struct {
	widget.BaseWidget

	tool   surface.Surface
	input  surface.InputState
	base   *image.RGBA
	buf    *image.RGBA
	raster *fynecanvas.Raster
}

var (
	_ desktop.Mouseable  = (*view)(nil)
	_ desktop.Hoverable  = (*view)(nil)
	_ desktop.Cursorable = (*view)(nil)
	_ fyne.Draggable     = (*view)(nil)
)

func newView(tool surface.Surface, background *image.RGBA) *view {
	b := background.Bounds()
	v := &view{
		tool:  tool,
		base:  image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())),
		buf:   image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())),
	}
	draw.Draw(v.base, v.base.Bounds(), background, b.Min, draw.Src)
	v.raster = fynecanvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

func (v *view) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// frame advances the tool by one frame and reports whether it closed.
func (v *view) frame() (surface.Result, bool) {
	v.input.BeginFrame()
	v.tool.Update(&v.input)
	if res, ok := v.tool.Result(); ok {
		return res, true
	}
	v.raster.Refresh()
	return surface.Result{}, false
}

func (v *view) draw(w, h int) image.Image {
	copy(v.buf.Pix, v.base.Pix)
	v.tool.Render(canvas.NewRaster(v.buf))
	return v.buf
}

// toPixels maps a widget position to background pixels. The raster is
// stretched over the widget, so this also absorbs the display scale.
func (v *view) toPixels(p fyne.Position) image.Point {
	size := v.Size()
	b := v.base.Bounds()
	if size.Width <= 0 || size.Height <= 0 {
		return image.Point{}
	}
	x := int(p.X * float32(b.Dx()) / size.Width)
	y := int(p.Y * float32(b.Dy()) / size.Height)
	return image.Pt(clamp(x, 0, b.Dx()-1), clamp(y, 0, b.Dy()-1))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func mapButton(b desktop.MouseButton) (surface.Button, bool) {
	switch b {
	case desktop.MouseButtonPrimary:
		return surface.ButtonLeft, true
	case desktop.MouseButtonSecondary:
		return surface.ButtonRight, true
	case desktop.MouseButtonTertiary:
		return surface.ButtonMiddle, true
	}
	return 0, false
}

func (v *view) MouseDown(ev *desktop.MouseEvent) {
	v.input.MoveTo(v.toPixels(ev.Position))
	if b, ok := mapButton(ev.Button); ok {
		v.input.SetButton(b, true)
	}
}

func (v *view) MouseUp(ev *desktop.MouseEvent) {
	v.input.MoveTo(v.toPixels(ev.Position))
	if b, ok := mapButton(ev.Button); ok {
		v.input.SetButton(b, false)
	}
}

func (v *view) MouseIn(ev *desktop.MouseEvent)    { v.input.MoveTo(v.toPixels(ev.Position)) }
func (v *view) MouseMoved(ev *desktop.MouseEvent) { v.input.MoveTo(v.toPixels(ev.Position)) }
func (v *view) MouseOut()                         {}

func (v *view) Dragged(ev *fyne.DragEvent) { v.input.MoveTo(v.toPixels(ev.Position)) }
func (v *view) DragEnd()                   {}

func (v *view) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func (v *view) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		v.input.PressKey(surface.KeyEscape)
	case fyne.KeyReturn, fyne.KeyEnter:
		v.input.PressKey(surface.KeyEnter)
	}
}
