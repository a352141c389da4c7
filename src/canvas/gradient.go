package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"
)

// GradientKind is the direction of a linear gradient across its box.
type GradientKind int

const (
	Horizontal GradientKind = iota
	Vertical
	// ForwardDiagonal runs from the top-left to the bottom-right corner.
	ForwardDiagonal
	// BackwardDiagonal runs from the top-right to the bottom-left corner.
	BackwardDiagonal
)

var gradientKindNames = []string{"horizontal", "vertical", "forward-diagonal", "backward-diagonal"}

func (k GradientKind) String() string {
	if k >= 0 && int(k) < len(gradientKindNames) {
		return gradientKindNames[k]
	}
	return fmt.Sprintf("GradientKind(%d)", int(k))
}

// ParseGradientKind is the inverse of String.
func ParseGradientKind(s string) (GradientKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for i, name := range gradientKindNames {
		if name == norm {
			return GradientKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gradient kind %q", s)
}

// Stop is a gradient color at Offset in [0, 1].
type Stop struct {
	Color  color.Color
	Offset float64
}

type nstop struct {
	c      color.NRGBA
	offset float64
}

// LinearGradient is an unbounded image whose color varies along Kind across
// Rect. Points outside Rect take the nearest end color.
type LinearGradient struct {
	rect  image.Rectangle
	kind  GradientKind
	stops []nstop
}

var _ image.Image = (*LinearGradient)(nil)

// NewLinearGradient builds a gradient over rect. Stops are sorted by offset;
// with no stops the gradient is transparent.
func NewLinearGradient(rect image.Rectangle, kind GradientKind, stops ...Stop) *LinearGradient {
	g := &LinearGradient{rect: rect, kind: kind}
	for _, s := range stops {
		if s.Color == nil {
			continue
		}
		g.stops = append(g.stops, nstop{
			c:      color.NRGBAModel.Convert(s.Color).(color.NRGBA),
			offset: math.Max(0, math.Min(1, s.Offset)),
		})
	}
	sort.SliceStable(g.stops, func(i, j int) bool { return g.stops[i].offset < g.stops[j].offset })
	return g
}

func (g *LinearGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *LinearGradient) Bounds() image.Rectangle {
	return image.Rectangle{Min: image.Point{X: -1e9, Y: -1e9}, Max: image.Point{X: 1e9, Y: 1e9}}
}

func (g *LinearGradient) At(x, y int) color.Color {
	switch len(g.stops) {
	case 0:
		return color.NRGBA{}
	case 1:
		return g.stops[0].c
	}

	t := g.param(float64(x)+0.5, float64(y)+0.5)
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if t <= first.offset {
		return first.c
	}
	if t >= last.offset {
		return last.c
	}
	for i := 1; i < len(g.stops); i++ {
		a, b := g.stops[i-1], g.stops[i]
		if t > b.offset {
			continue
		}
		span := b.offset - a.offset
		if span <= 0 {
			return b.c
		}
		return lerpNRGBA(a.c, b.c, (t-a.offset)/span)
	}
	return last.c
}

// param projects (x, y) onto the gradient axis, 0 at the start and 1 at the end.
func (g *LinearGradient) param(x, y float64) float64 {
	w := float64(g.rect.Dx())
	h := float64(g.rect.Dy())
	dx := x - float64(g.rect.Min.X)
	dy := y - float64(g.rect.Min.Y)

	var t float64
	switch g.kind {
	case Vertical:
		if h > 0 {
			t = dy / h
		}
	case ForwardDiagonal:
		if d := w*w + h*h; d > 0 {
			t = (dx*w + dy*h) / d
		}
	case BackwardDiagonal:
		if d := w*w + h*h; d > 0 {
			t = ((w-dx)*w + dy*h) / d
		}
	default:
		if w > 0 {
			t = dx / w
		}
	}
	return math.Max(0, math.Min(1, t))
}

func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
