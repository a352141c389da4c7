package canvas

import (
	"image"
	"math"
)

// Vec is a point in canvas space.
type Vec struct {
	X, Y float64
}

func vec(p image.Point) Vec { return Vec{X: float64(p.X), Y: float64(p.Y)} }

// arcSegments is the number of line segments used per quarter turn.
const arcSegments = 8

type figure struct {
	pts    []Vec
	closed bool
}

// Path is a list of polyline figures. Curves are flattened when added.
// The zero value is an empty path ready to use.
type Path struct {
	figures []figure
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

func (p *Path) current() *figure {
	if len(p.figures) == 0 {
		return nil
	}
	f := &p.figures[len(p.figures)-1]
	if f.closed {
		return nil
	}
	return f
}

// MoveTo starts a new figure at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.figures = append(p.figures, figure{pts: []Vec{{X: x, Y: y}}})
}

// LineTo extends the current figure. Without an open figure it behaves like MoveTo.
func (p *Path) LineTo(x, y float64) {
	f := p.current()
	if f == nil {
		p.MoveTo(x, y)
		return
	}
	f.pts = append(f.pts, Vec{X: x, Y: y})
}

// Close closes the current figure.
func (p *Path) Close() {
	if f := p.current(); f != nil {
		f.closed = true
	}
}

// AddLine appends the segment a-b to the current figure, connecting it to the
// previous end point when they differ.
func (p *Path) AddLine(a, b image.Point) {
	f := p.current()
	if f == nil {
		p.MoveTo(float64(a.X), float64(a.Y))
		p.LineTo(float64(b.X), float64(b.Y))
		return
	}
	if f.pts[len(f.pts)-1] != vec(a) {
		f.pts = append(f.pts, vec(a))
	}
	f.pts = append(f.pts, vec(b))
}

// AddRect adds a closed rectangle figure.
func (p *Path) AddRect(x0, y0, x1, y1 float64) {
	p.MoveTo(x0, y0)
	p.LineTo(x1, y0)
	p.LineTo(x1, y1)
	p.LineTo(x0, y1)
	p.Close()
}

// AddRoundedRect adds a closed rectangle figure with circular corners of the
// given radius, clamped to half the shorter side.
func (p *Path) AddRoundedRect(x0, y0, x1, y1, radius float64) {
	r := math.Min(radius, math.Min(x1-x0, y1-y0)/2)
	if r <= 0 {
		p.AddRect(x0, y0, x1, y1)
		return
	}
	p.MoveTo(x0+r, y0)
	p.LineTo(x1-r, y0)
	p.arc(x1-r, y0+r, r, r, -math.Pi/2, 0)
	p.LineTo(x1, y1-r)
	p.arc(x1-r, y1-r, r, r, 0, math.Pi/2)
	p.LineTo(x0+r, y1)
	p.arc(x0+r, y1-r, r, r, math.Pi/2, math.Pi)
	p.LineTo(x0, y0+r)
	p.arc(x0+r, y0+r, r, r, math.Pi, 3*math.Pi/2)
	p.Close()
}

// AddEllipse adds a closed ellipse figure inscribed in the given box.
func (p *Path) AddEllipse(x0, y0, x1, y1 float64) {
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rx, ry := (x1-x0)/2, (y1-y0)/2
	p.MoveTo(cx+rx, cy)
	p.arc(cx, cy, rx, ry, 0, 2*math.Pi)
	p.Close()
}

func (p *Path) arc(cx, cy, rx, ry, from, to float64) {
	n := int(math.Ceil(math.Abs(to-from) / (math.Pi / 2) * arcSegments))
	for i := 1; i <= n; i++ {
		a := from + (to-from)*float64(i)/float64(n)
		p.LineTo(cx+rx*math.Cos(a), cy+ry*math.Sin(a))
	}
}

// Reset removes all figures, keeping allocated storage.
func (p *Path) Reset() {
	p.figures = p.figures[:0]
}

// Empty reports whether the path has no points.
func (p *Path) Empty() bool {
	return len(p.figures) == 0
}

// Bounds returns the smallest box containing every point of the path.
// ok is false for an empty path.
func (p *Path) Bounds() (min, max Vec, ok bool) {
	for _, f := range p.figures {
		for _, pt := range f.pts {
			if !ok {
				min, max, ok = pt, pt, true
				continue
			}
			min.X = math.Min(min.X, pt.X)
			min.Y = math.Min(min.Y, pt.Y)
			max.X = math.Max(max.X, pt.X)
			max.Y = math.Max(max.Y, pt.Y)
		}
	}
	return min, max, ok
}

// Polygon returns every point of the path rounded to integer coordinates,
// dropping consecutive duplicates.
func (p *Path) Polygon() []image.Point {
	var out []image.Point
	for _, f := range p.figures {
		for _, pt := range f.pts {
			ip := image.Pt(int(math.Round(pt.X)), int(math.Round(pt.Y)))
			if len(out) > 0 && out[len(out)-1] == ip {
				continue
			}
			out = append(out, ip)
		}
	}
	return out
}
