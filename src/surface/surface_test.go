package surface

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-capture-fx/src/canvas"
)

// driver feeds host events to a surface one frame at a time.
type driver struct {
	in InputState
	s  Surface
}

func (d *driver) frame() {
	d.in.BeginFrame()
	d.s.Update(&d.in)
}

func (d *driver) press(b Button, p image.Point) {
	d.in.MoveTo(p)
	d.in.SetButton(b, true)
	d.frame()
}

func (d *driver) move(p image.Point) {
	d.in.MoveTo(p)
	d.frame()
}

func (d *driver) release(b Button) {
	d.in.SetButton(b, false)
	d.frame()
}

func (d *driver) click(b Button) {
	d.in.SetButton(b, true)
	d.in.SetButton(b, false)
	d.frame()
}

func (d *driver) key(k Key) {
	d.in.PressKey(k)
	d.frame()
}

// trace presses at the first point and drags through the rest.
func (d *driver) trace(pts ...image.Point) {
	d.press(ButtonLeft, pts[0])
	for _, p := range pts[1:] {
		d.move(p)
	}
}

var square = []image.Point{{5, 5}, {30, 5}, {30, 30}, {5, 30}}

func newFreehand(quick bool) (*Freehand, *driver) {
	f := NewFreehand(Config{Shape: ShapeFreehand, QuickCrop: quick})
	return f, &driver{s: f}
}

func TestInputStateLatchesUntilNextFrame(t *testing.T) {
	var in InputState
	in.SetButton(ButtonLeft, true)
	in.SetButton(ButtonLeft, false)
	in.PressKey(KeyEnter)

	assert.False(t, in.IsMousePressed(ButtonLeft))

	in.BeginFrame()
	assert.True(t, in.IsMousePressed(ButtonLeft))
	assert.True(t, in.IsMouseReleased(ButtonLeft))
	assert.False(t, in.IsMouseDown(ButtonLeft))
	assert.True(t, in.IsKeyPressed(KeyEnter))
	assert.False(t, in.IsKeyPressed(KeyEscape))

	in.BeginFrame()
	assert.False(t, in.IsMousePressed(ButtonLeft))
	assert.False(t, in.IsMouseReleased(ButtonLeft))
	assert.False(t, in.IsKeyPressed(KeyEnter))
}

func TestInputStateHeldButton(t *testing.T) {
	var in InputState
	in.SetButton(ButtonRight, true)
	in.BeginFrame()
	assert.True(t, in.IsMousePressed(ButtonRight))
	assert.True(t, in.IsMouseDown(ButtonRight))

	// repeated down events while held are not new presses
	in.SetButton(ButtonRight, true)
	in.BeginFrame()
	assert.False(t, in.IsMousePressed(ButtonRight))
	assert.True(t, in.IsMouseDown(ButtonRight))
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in   string
		want Shape
	}{
		{"rectangle", ShapeRectangle},
		{"", ShapeRectangle},
		{"Ellipse", ShapeEllipse},
		{"freehand", ShapeFreehand},
		{" lasso ", ShapeFreehand},
	}
	for _, tt := range tests {
		got, err := ParseShape(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseShape("triangle")
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestNewSelectsTool(t *testing.T) {
	s, err := New(Config{Shape: ShapeFreehand})
	require.NoError(t, err)
	assert.IsType(t, &Freehand{}, s)

	s, err = New(Config{Shape: ShapeEllipse})
	require.NoError(t, err)
	assert.True(t, s.(*Drag).ellipse)

	_, err = New(Config{Shape: Shape(42)})
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestFreehandStartsOnLeftDown(t *testing.T) {
	f, d := newFreehand(true)
	assert.Equal(t, StateIdle, f.State())

	d.press(ButtonLeft, image.Pt(3, 4))
	assert.Equal(t, StateDrawing, f.State())
	assert.Equal(t, []image.Point{{3, 4}}, f.Points())
	assert.True(t, f.lastNode.Visible)
	assert.Equal(t, image.Pt(3, 4), f.lastNode.Position)
}

func TestFreehandDeduplicatesPoints(t *testing.T) {
	f, d := newFreehand(true)
	d.press(ButtonLeft, image.Pt(5, 5))
	d.move(image.Pt(5, 5))
	d.frame()
	assert.Len(t, f.Points(), 1)

	d.move(image.Pt(6, 5))
	d.move(image.Pt(6, 5))
	assert.Equal(t, []image.Point{{5, 5}, {6, 5}}, f.Points())
	assert.Equal(t, image.Pt(6, 5), f.lastNode.Position)
}

func TestFreehandPathFollowsPoints(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(square...)
	assert.Equal(t, square, f.path.Polygon())
}

func TestFreehandAreaIsInclusive(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(image.Pt(0, 0), image.Pt(10, 0), image.Pt(10, 10), image.Pt(0, 10))
	assert.Equal(t, image.Rect(0, 0, 11, 11), f.Area())
}

func TestFreehandAreaNeedsThreePoints(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(image.Pt(0, 0), image.Pt(10, 10))
	assert.True(t, f.Area().Empty())

	d.move(image.Pt(20, 0))
	assert.Equal(t, image.Rect(0, 0, 21, 11), f.Area())
}

func TestFreehandQuickCropClosesOnRelease(t *testing.T) {
	f, d := newFreehand(true)
	d.trace(image.Pt(0, 0), image.Pt(10, 0), image.Pt(10, 10), image.Pt(0, 10))
	d.release(ButtonLeft)

	require.Equal(t, StateClosed, f.State())
	res, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, ResultRegion, res.Kind)
	assert.Equal(t, image.Rect(0, 0, 11, 11), res.Area)
	assert.Equal(t, []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, res.Polygon)
}

func TestFreehandQuickCropShortStrokeResets(t *testing.T) {
	f, d := newFreehand(true)
	d.trace(image.Pt(0, 0), image.Pt(10, 0))
	d.release(ButtonLeft)

	assert.Equal(t, StateIdle, f.State())
	assert.Empty(t, f.Points())
	_, ok := f.Result()
	assert.False(t, ok)
}

func TestFreehandRightClickResets(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(square...)
	d.release(ButtonLeft)
	require.Equal(t, StateDrawing, f.State())

	d.click(ButtonRight)
	assert.Equal(t, StateIdle, f.State())
	assert.Empty(t, f.Points())
	assert.True(t, f.path.Empty())
	assert.False(t, f.lastNode.Visible)
	assert.True(t, f.Area().Empty())
}

func TestFreehandRightClickWhileIdleCancels(t *testing.T) {
	f, d := newFreehand(true)
	d.click(ButtonRight)

	res, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, ResultCancelled, res.Kind)
	assert.Equal(t, StateClosed, f.State())
}

func TestFreehandEnterConfirmsWithoutQuickCrop(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(square...)
	d.release(ButtonLeft)
	require.Equal(t, StateDrawing, f.State())

	d.key(KeyEnter)
	res, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, ResultRegion, res.Kind)
	assert.Equal(t, image.Rect(5, 5, 31, 31), res.Area)
}

func TestFreehandEnterIgnoredForShortStroke(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(image.Pt(1, 1), image.Pt(2, 2))
	d.key(KeyEnter)
	assert.Equal(t, StateDrawing, f.State())
}

func TestFreehandEscapeCancels(t *testing.T) {
	f, d := newFreehand(true)
	d.trace(square...)
	d.key(KeyEscape)

	res, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, ResultCancelled, res.Kind)
}

func TestFreehandIgnoresInputAfterClose(t *testing.T) {
	f, d := newFreehand(true)
	d.click(ButtonRight)
	d.trace(square...)
	assert.Empty(t, f.Points())

	res, _ := f.Result()
	assert.Equal(t, ResultCancelled, res.Kind)
}

var background = color.RGBA{R: 100, G: 100, B: 100, A: 255}

func newTarget() (*image.RGBA, *canvas.Raster) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	return img, canvas.NewRaster(img)
}

func TestFreehandRenderShortStrokeOnlyMarker(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(image.Pt(10, 10), image.Pt(20, 20))

	img, c := newTarget()
	f.Render(c)

	handle := image.Rect(17, 17, 24, 24)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if image.Pt(x, y).In(handle) {
				continue
			}
			require.Equal(t, background, img.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(17, 17))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(20, 20))
}

func TestFreehandRenderHighlightsInside(t *testing.T) {
	f, d := newFreehand(false)
	d.trace(square...)

	img, c := newTarget()
	f.Render(c)

	inside := img.RGBAAt(17, 17)
	assert.Greater(t, inside.R, background.R)
	assert.Equal(t, background, img.RGBAAt(36, 36))
	// bounding rectangle is drawn last, in solid black
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(30, 17))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(17, 5))
}

func TestFreehandMarchingAntsMove(t *testing.T) {
	now := time.Unix(100, 0)
	f := NewFreehand(Config{Shape: ShapeFreehand, Clock: func() time.Time { return now }})
	d := &driver{s: f}
	d.trace(image.Pt(5, 20), image.Pt(35, 20), image.Pt(35, 21))

	first, c := newTarget()
	f.Render(c)

	now = now.Add(500 * time.Millisecond)
	second, c := newTarget()
	f.Render(c)

	assert.NotEqual(t, first.Pix, second.Pix)
}

func TestRectangleQuickCrop(t *testing.T) {
	r := NewRectangle(Config{QuickCrop: true})
	d := &driver{s: r}
	d.trace(image.Pt(50, 40), image.Pt(30, 20), image.Pt(10, 10))
	assert.Equal(t, StateDrawing, r.State())
	d.release(ButtonLeft)

	res, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, ResultRegion, res.Kind)
	assert.Equal(t, image.Rect(10, 10, 51, 41), res.Area)
	assert.Nil(t, res.Polygon)
}

func TestRectangleTooSmallResets(t *testing.T) {
	r := NewRectangle(Config{QuickCrop: true})
	d := &driver{s: r}
	d.trace(image.Pt(10, 10), image.Pt(12, 30))
	d.release(ButtonLeft)

	assert.Equal(t, StateIdle, r.State())
	_, ok := r.Result()
	assert.False(t, ok)
}

func TestRectangleRedragWithoutQuickCrop(t *testing.T) {
	r := NewRectangle(Config{})
	d := &driver{s: r}
	d.trace(image.Pt(0, 0), image.Pt(20, 20))
	d.release(ButtonLeft)
	assert.Equal(t, image.Rect(0, 0, 21, 21), r.Area())

	d.trace(image.Pt(5, 5), image.Pt(15, 25))
	d.release(ButtonLeft)
	assert.Equal(t, image.Rect(5, 5, 16, 26), r.Area())

	d.key(KeyEnter)
	res, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, image.Rect(5, 5, 16, 26), res.Area)
}

func TestRectangleRightClick(t *testing.T) {
	r := NewRectangle(Config{})
	d := &driver{s: r}
	d.trace(image.Pt(0, 0), image.Pt(20, 20))
	d.click(ButtonRight)
	assert.Equal(t, StateIdle, r.State())

	d.release(ButtonLeft)
	d.click(ButtonRight)
	res, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, ResultCancelled, res.Kind)
}

func TestEllipsePolygonWithinArea(t *testing.T) {
	e := NewEllipse(Config{QuickCrop: true})
	d := &driver{s: e}
	d.trace(image.Pt(10, 10), image.Pt(30, 20))
	d.release(ButtonLeft)

	res, ok := e.Result()
	require.True(t, ok)
	require.NotEmpty(t, res.Polygon)
	for _, p := range res.Polygon {
		assert.True(t, p.In(res.Area), "%v outside %v", p, res.Area)
	}
}

func TestEllipseRenderHighlightsCentre(t *testing.T) {
	e := NewEllipse(Config{})
	d := &driver{s: e}
	d.trace(image.Pt(5, 5), image.Pt(35, 35))

	img, c := newTarget()
	e.Render(c)
	assert.Greater(t, img.RGBAAt(20, 20).R, background.R)
	// corner of the box lies outside the ellipse
	assert.Equal(t, background, img.RGBAAt(8, 8))
}
