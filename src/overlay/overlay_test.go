package overlay

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-capture-fx/src/surface"
)

func newTestView(t *testing.T, cfg surface.Config) *view {
	t.Helper()
	test.NewTempApp(t)

	bg := image.NewRGBA(image.Rect(-100, 0, 0, 50))
	for i := range bg.Pix {
		bg.Pix[i] = 0x80
	}
	tool, err := surface.New(cfg)
	require.NoError(t, err)

	v := newView(tool, bg)
	v.Resize(fyne.NewSize(50, 25))
	return v
}

func mouse(b desktop.MouseButton, x, y float32) *desktop.MouseEvent {
	ev := &desktop.MouseEvent{Button: b}
	ev.Position = fyne.NewPos(x, y)
	return ev
}

func TestViewMapsToBackgroundPixels(t *testing.T) {
	v := newTestView(t, surface.Config{})

	assert.Equal(t, image.Pt(10, 20), v.toPixels(fyne.NewPos(5, 10)))
	assert.Equal(t, image.Pt(99, 49), v.toPixels(fyne.NewPos(80, 80)))
	assert.Equal(t, image.Pt(0, 0), v.toPixels(fyne.NewPos(-3, -3)))
}

func TestViewDrivesRectangleSelection(t *testing.T) {
	v := newTestView(t, surface.Config{Shape: surface.ShapeRectangle, QuickCrop: true})

	v.MouseDown(mouse(desktop.MouseButtonPrimary, 5, 5))
	_, closed := v.frame()
	require.False(t, closed)

	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(25, 20)}})
	_, closed = v.frame()
	require.False(t, closed)

	v.MouseUp(mouse(desktop.MouseButtonPrimary, 25, 20))
	res, closed := v.frame()
	require.True(t, closed)
	assert.Equal(t, surface.ResultRegion, res.Kind)
	assert.Equal(t, image.Rect(10, 10, 51, 41), res.Area)
}

func TestViewEscapeCancels(t *testing.T) {
	v := newTestView(t, surface.Config{Shape: surface.ShapeFreehand})

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	res, closed := v.frame()
	require.True(t, closed)
	assert.Equal(t, surface.ResultCancelled, res.Kind)
}

func TestViewRightClickCancelsWhenIdle(t *testing.T) {
	v := newTestView(t, surface.Config{Shape: surface.ShapeFreehand})

	v.MouseDown(mouse(desktop.MouseButtonSecondary, 1, 1))
	v.MouseUp(mouse(desktop.MouseButtonSecondary, 1, 1))
	res, closed := v.frame()
	require.True(t, closed)
	assert.Equal(t, surface.ResultCancelled, res.Kind)
}

func TestViewDrawsBackgroundAndSelection(t *testing.T) {
	v := newTestView(t, surface.Config{Shape: surface.ShapeRectangle})

	v.MouseDown(mouse(desktop.MouseButtonPrimary, 5, 5))
	v.frame()
	v.MouseMoved(mouse(0, 40, 20))
	v.frame()

	img, ok := v.draw(100, 50).(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())

	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}
	assert.Equal(t, gray, img.RGBAAt(2, 2), "outside the selection")
	assert.NotEqual(t, gray, img.RGBAAt(40, 25), "inside the selection")

	// drawing never touches the frozen capture
	assert.Equal(t, gray, v.base.RGBAAt(40, 25))
}

func TestViewDrawsFreehandTrace(t *testing.T) {
	v := newTestView(t, surface.Config{Shape: surface.ShapeFreehand})

	v.MouseDown(mouse(desktop.MouseButtonPrimary, 5, 5))
	_, closed := v.frame()
	require.False(t, closed)
	for _, p := range []fyne.Position{fyne.NewPos(40, 5), fyne.NewPos(25, 22)} {
		v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: p}})
		_, closed = v.frame()
		require.False(t, closed)
	}

	img, ok := v.draw(100, 50).(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())

	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}
	assert.NotEqual(t, gray, img.RGBAAt(47, 21), "inside the lasso")
	assert.Equal(t, gray, img.RGBAAt(95, 47), "outside the lasso")
	assert.Equal(t, gray, v.base.RGBAAt(47, 21))

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyReturn})
	res, closed := v.frame()
	require.True(t, closed)
	assert.Equal(t, surface.ResultRegion, res.Kind)
	assert.Len(t, res.Polygon, 3)
}
