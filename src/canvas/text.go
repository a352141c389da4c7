package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidFont is returned when a font cannot be resolved or is too small to render.
var ErrInvalidFont = errors.New("invalid font")

// Font describes a text face. Path, when set, points at a TrueType or OpenType
// file and wins over Family. Size is in points at 72 DPI, i.e. pixels.
type Font struct {
	Family string
	Path   string
	Size   float64
}

var builtinFonts = map[string][]byte{
	"":          goregular.TTF,
	"go":        goregular.TTF,
	"go-bold":   gobold.TTF,
	"go-italic": goitalic.TTF,
	"go-mono":   gomono.TTF,
}

var parsedFonts sync.Map // key string -> *opentype.Font

// LoadFace opens a face for f. The caller must Close it.
func LoadFace(f Font) (font.Face, error) {
	if f.Size < 1 {
		return nil, fmt.Errorf("%w: size %.1f", ErrInvalidFont, f.Size)
	}
	parsed, err := parseFont(f)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	return face, nil
}

func parseFont(f Font) (*opentype.Font, error) {
	key := "family:" + strings.ToLower(f.Family)
	if f.Path != "" {
		key = "path:" + f.Path
	}
	if cached, ok := parsedFonts.Load(key); ok {
		return cached.(*opentype.Font), nil
	}

	var data []byte
	if f.Path != "" {
		b, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
		}
		data = b
	} else {
		b, ok := builtinFonts[strings.ToLower(f.Family)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown family %q", ErrInvalidFont, f.Family)
		}
		data = b
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	parsedFonts.Store(key, parsed)
	return parsed, nil
}

// MeasureText returns the pixel extent of s. Lines are separated by '\n'.
func MeasureText(s string, face font.Face) image.Point {
	if s == "" || face == nil {
		return image.Point{}
	}
	lines := strings.Split(s, "\n")
	var width fixed.Int26_6
	for _, line := range lines {
		if w := font.MeasureString(face, line); w > width {
			width = w
		}
	}
	return image.Pt(width.Ceil(), textHeight(face, len(lines)))
}

func textHeight(face font.Face, lines int) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil() + (lines-1)*m.Height.Ceil()
}

func drawTextCentered(dst *image.RGBA, s string, face font.Face, c color.Color, center image.Point) {
	lines := strings.Split(s, "\n")
	m := face.Metrics()
	top := center.Y - textHeight(face, len(lines))/2
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		d.Dot = fixed.P(center.X-w/2, top+i*m.Height.Ceil()+m.Ascent.Ceil())
		d.DrawString(line)
	}
}
