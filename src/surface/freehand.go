package surface

import (
	"image"
	"image/color"

	"screen-capture-fx/src/canvas"
)

// Freehand is the lasso tool: the selection is the polygon traced while the
// left button is held.
type Freehand struct {
	session

	points        []image.Point
	path          *canvas.Path
	isAreaCreated bool
	currentArea   image.Rectangle
	lastNode      marker
}

var _ Surface = (*Freehand)(nil)

func NewFreehand(cfg Config) *Freehand {
	return &Freehand{
		session: newSession(cfg),
		points:  make([]image.Point, 0, 128),
		path:    canvas.NewPath(),
	}
}

// State reports where the tool is in its lifecycle.
func (f *Freehand) State() State {
	switch {
	case f.closed:
		return StateClosed
	case f.isAreaCreated:
		return StateDrawing
	}
	return StateIdle
}

// Points returns the traced points. The slice is owned by the tool.
func (f *Freehand) Points() []image.Point { return f.points }

// Area is the bounding rectangle of the stroke, valid once it has at least
// three points.
func (f *Freehand) Area() image.Rectangle { return f.currentArea }

func (f *Freehand) Update(in Input) {
	if f.closed {
		return
	}

	if in.IsKeyPressed(KeyEscape) {
		f.cancel()
		return
	}
	if in.IsKeyPressed(KeyEnter) && f.isAreaCreated && len(f.points) > 2 {
		f.close(f.region())
		return
	}

	if in.IsMousePressed(ButtonRight) {
		if f.isAreaCreated {
			f.reset()
		} else {
			f.cancel()
		}
		return
	}

	if f.isAreaCreated && f.quickCrop && in.IsMouseReleased(ButtonLeft) {
		if len(f.points) > 2 {
			f.close(f.region())
		} else {
			f.reset()
		}
		return
	}

	if !f.isAreaCreated && in.IsMouseDown(ButtonLeft) {
		f.isAreaCreated = true
		f.lastNode.Visible = true
	}

	if f.lastNode.Visible && in.IsMouseDown(ButtonLeft) {
		f.addPoint(in.MousePosition())
	}

	if len(f.points) > 2 {
		f.currentArea = areaOf(f.path)
	}
}

func (f *Freehand) addPoint(pos image.Point) {
	if n := len(f.points); n > 0 {
		last := f.points[n-1]
		if last == pos {
			return
		}
		f.path.AddLine(last, pos)
	}
	f.points = append(f.points, pos)
	f.lastNode.Position = pos
}

func (f *Freehand) reset() {
	f.points = f.points[:0]
	f.path.Reset()
	f.isAreaCreated = false
	f.currentArea = image.Rectangle{}
	f.lastNode.Visible = false
}

func (f *Freehand) region() Result {
	return Result{
		Kind:    ResultRegion,
		Area:    f.currentArea,
		Polygon: append([]image.Point(nil), f.points...),
	}
}

func (f *Freehand) Render(c canvas.Canvas) {
	if len(f.points) > 2 {
		t := f.elapsed()
		highlightInside(c, f.path)
		marchingAnts(c, f.path, t)

		closing := canvas.NewPath()
		closing.AddLine(f.points[len(f.points)-1], f.points[0])
		marchingAnts(c, closing, t)

		c.DrawRect(f.currentArea, color.Black)
	}
	f.lastNode.render(c)
}
