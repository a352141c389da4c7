// Package surface implements the interactive region-selection tools that run
// on top of a captured screen: rectangle, ellipse and freehand (lasso).
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"screen-capture-fx/src/canvas"
)

// ErrUnknownShape is returned for a shape name or value no tool implements.
var ErrUnknownShape = errors.New("unknown region shape")

// Surface is one region-selection session. Hosts call Update then Render once
// per frame until Result reports the session is closed.
type Surface interface {
	Update(in Input)
	Render(c canvas.Canvas)
	Result() (Result, bool)
}

type ResultKind int

const (
	ResultRegion ResultKind = iota
	ResultCancelled
)

func (k ResultKind) String() string {
	if k == ResultCancelled {
		return "cancelled"
	}
	return "region"
}

// Result is the outcome of a closed session. Area is the bounding rectangle
// of the selection. Polygon is the selection outline for non-rectangular
// shapes and nil for rectangles.
type Result struct {
	Kind    ResultKind
	Area    image.Rectangle
	Polygon []image.Point
}

type State int

const (
	StateIdle State = iota
	StateDrawing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StateClosed:
		return "closed"
	default:
		return "idle"
	}
}

type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeEllipse
	ShapeFreehand
)

func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeEllipse:
		return "ellipse"
	case ShapeFreehand:
		return "freehand"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape accepts the names printed by Shape.String plus "lasso" for
// freehand.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rectangle", "rect":
		return ShapeRectangle, nil
	case "ellipse":
		return ShapeEllipse, nil
	case "freehand", "lasso":
		return ShapeFreehand, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Config selects and tunes a region tool.
type Config struct {
	Shape Shape
	// QuickCrop closes the session as soon as the left button is released.
	// Without it the selection stays editable until Enter is pressed.
	QuickCrop bool
	// Clock drives the marching-ants animation. Defaults to time.Now.
	Clock func() time.Time
}

// New returns the tool for cfg.Shape.
func New(cfg Config) (Surface, error) {
	switch cfg.Shape {
	case ShapeRectangle:
		return NewRectangle(cfg), nil
	case ShapeEllipse:
		return NewEllipse(cfg), nil
	case ShapeFreehand:
		return NewFreehand(cfg), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownShape, cfg.Shape)
}

const (
	dashLength = 5
	markerSize = 7
)

var (
	highlight = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 40})
	dashes    = []float64{dashLength, dashLength}
)

// session holds what every tool shares: termination, the result and the
// animation clock.
type session struct {
	quickCrop bool
	clock     func() time.Time
	started   time.Time
	closed    bool
	result    Result
}

func newSession(cfg Config) session {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return session{quickCrop: cfg.QuickCrop, clock: clock, started: clock()}
}

func (s *session) Result() (Result, bool) { return s.result, s.closed }

func (s *session) close(r Result) {
	s.result = r
	s.closed = true
}

func (s *session) cancel() { s.close(Result{Kind: ResultCancelled}) }

// elapsed is the animation time in seconds.
func (s *session) elapsed() float64 { return s.clock().Sub(s.started).Seconds() }

// marchingAnts strokes p with two opposed dash patterns so the outline stays
// visible on any background.
func marchingAnts(c canvas.Canvas, p *canvas.Path, t float64) {
	phase := t * 10
	c.Stroke(p, canvas.Pen{Color: color.Black, Width: 1, Dashes: dashes, DashOffset: phase})
	c.Stroke(p, canvas.Pen{Color: color.White, Width: 1, Dashes: dashes, DashOffset: dashLength + phase})
}

// highlightInside lightens everything inside p.
func highlightInside(c canvas.Canvas, p *canvas.Path) {
	c.SetClip(p)
	c.FillRect(c.Bounds(), highlight)
	c.ResetClip()
}

// marker is the small handle that follows the end of a freehand stroke.
type marker struct {
	Visible  bool
	Position image.Point
}

func (m marker) render(c canvas.Canvas) {
	if !m.Visible {
		return
	}
	r := image.Rect(0, 0, markerSize, markerSize).Add(m.Position.Sub(image.Pt(markerSize/2, markerSize/2)))
	c.FillRect(r, image.White)
	c.DrawRect(r, color.Black)
}

// areaOf converts path bounds to the inclusive pixel rectangle they cover.
func areaOf(p *canvas.Path) image.Rectangle {
	min, max, ok := p.Bounds()
	if !ok {
		return image.Rectangle{}
	}
	x, y := int(min.X), int(min.Y)
	w, h := int(max.X-min.X), int(max.Y-min.Y)
	return image.Rect(x, y, x+w+1, y+h+1)
}
