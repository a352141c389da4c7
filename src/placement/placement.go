// Package placement resolves where an overlay of a given size lands inside a
// larger image.
package placement

import (
	"fmt"
	"image"
	"strings"
)

// Anchor is one of the nine standard relative positions.
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	Right
	BottomRight
	BottomCenter
	BottomLeft
	Left
	Center
)

var anchorNames = map[Anchor]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	Right:        "right",
	BottomRight:  "bottom-right",
	BottomCenter: "bottom-center",
	BottomLeft:   "bottom-left",
	Left:         "left",
	Center:       "center",
}

func (a Anchor) String() string {
	if name, ok := anchorNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

// ParseAnchor accepts the names produced by String, case-insensitively.
// Underscores and spaces are treated as dashes.
func ParseAnchor(s string) (Anchor, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for a, name := range anchorNames {
		if name == norm {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown anchor %q", s)
}

// Position returns the top-left point of an inner box of size inner placed
// inside an outer box of size outer. offset pushes the box away from the edges
// it is anchored to; centered axes ignore it.
func Position(anchor Anchor, offset int, outer, inner image.Point) image.Point {
	centerX := outer.X/2 - inner.X/2
	centerY := outer.Y/2 - inner.Y/2
	right := outer.X - inner.X - offset
	bottom := outer.Y - inner.Y - offset

	switch anchor {
	case TopLeft:
		return image.Pt(offset, offset)
	case TopCenter:
		return image.Pt(centerX, offset)
	case TopRight:
		return image.Pt(right, offset)
	case Right:
		return image.Pt(right, centerY)
	case BottomRight:
		return image.Pt(right, bottom)
	case BottomCenter:
		return image.Pt(centerX, bottom)
	case BottomLeft:
		return image.Pt(offset, bottom)
	case Left:
		return image.Pt(offset, centerY)
	default:
		return image.Pt(centerX, centerY)
	}
}
