package surface

import (
	"image"

	"screen-capture-fx/src/canvas"
)

// minSelectionSpan is the smallest width and height, in pixels, a dragged
// selection needs before it can be confirmed.
const minSelectionSpan = 5

// Drag is the rectangle and ellipse tool: the selection is the box spanned by
// a left-button drag.
type Drag struct {
	session

	ellipse       bool
	anchor, end   image.Point
	dragging      bool
	isAreaCreated bool
	currentArea   image.Rectangle
}

var _ Surface = (*Drag)(nil)

func NewRectangle(cfg Config) *Drag { return &Drag{session: newSession(cfg)} }

func NewEllipse(cfg Config) *Drag { return &Drag{session: newSession(cfg), ellipse: true} }

func (d *Drag) State() State {
	switch {
	case d.closed:
		return StateClosed
	case d.isAreaCreated:
		return StateDrawing
	}
	return StateIdle
}

func (d *Drag) Area() image.Rectangle { return d.currentArea }

func (d *Drag) Update(in Input) {
	if d.closed {
		return
	}

	if in.IsKeyPressed(KeyEscape) {
		d.cancel()
		return
	}
	if in.IsKeyPressed(KeyEnter) && d.isAreaCreated && d.valid() {
		d.close(d.region())
		return
	}

	if in.IsMousePressed(ButtonRight) {
		if d.isAreaCreated {
			d.reset()
		} else {
			d.cancel()
		}
		return
	}

	if d.dragging && in.IsMouseReleased(ButtonLeft) {
		d.end = in.MousePosition()
		d.currentArea = spanOf(d.anchor, d.end)
		d.dragging = false
		if d.quickCrop {
			if d.valid() {
				d.close(d.region())
			} else {
				d.reset()
			}
		}
		return
	}

	if !d.dragging && in.IsMouseDown(ButtonLeft) {
		d.anchor = in.MousePosition()
		d.dragging = true
		d.isAreaCreated = true
	}
	if d.dragging {
		d.end = in.MousePosition()
		d.currentArea = spanOf(d.anchor, d.end)
	}
}

func (d *Drag) valid() bool {
	return d.currentArea.Dx() > minSelectionSpan && d.currentArea.Dy() > minSelectionSpan
}

func (d *Drag) reset() {
	d.dragging = false
	d.isAreaCreated = false
	d.currentArea = image.Rectangle{}
}

func (d *Drag) outline() *canvas.Path {
	if !d.ellipse {
		return boxPath(d.currentArea)
	}
	r := d.currentArea
	p := canvas.NewPath()
	p.AddEllipse(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X-1), float64(r.Max.Y-1))
	return p
}

func (d *Drag) region() Result {
	res := Result{Kind: ResultRegion, Area: d.currentArea}
	if d.ellipse {
		res.Polygon = d.outline().Polygon()
	}
	return res
}

func (d *Drag) Render(c canvas.Canvas) {
	if !d.isAreaCreated || d.currentArea.Empty() {
		return
	}
	t := d.elapsed()
	p := d.outline()
	highlightInside(c, p)
	marchingAnts(c, p, t)
	if d.ellipse {
		marchingAnts(c, boxPath(d.currentArea), t)
	}
}

func boxPath(r image.Rectangle) *canvas.Path {
	p := canvas.NewPath()
	p.AddRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X-1), float64(r.Max.Y-1))
	return p
}

// spanOf is the inclusive pixel rectangle with corners a and b.
func spanOf(a, b image.Point) image.Rectangle {
	r := image.Rectangle{Min: a, Max: b}.Canon()
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}
