package watermark

import (
	"fmt"
	"image/color"
	"strings"

	"screen-capture-fx/src/canvas"
	"screen-capture-fx/src/effects"
	"screen-capture-fx/src/placement"
)

// Mode selects what is stamped onto the image.
type Mode int

const (
	ModeText Mode = iota
	ModeImage
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeImage:
		return "image"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText, nil
	case "image":
		return ModeImage, nil
	default:
		return 0, fmt.Errorf("unknown watermark mode %q", s)
	}
}

// Gradient is a multi-stop linear gradient.
type Gradient struct {
	Kind  canvas.GradientKind
	Stops []canvas.Stop
}

// Config is read-only for the Manager.
type Config struct {
	Mode Mode

	// Text mode.
	Text      string
	Font      canvas.Font
	FontColor color.Color

	// Image mode. ImageScale is a percentage of the overlay's own size.
	ImagePath  string
	ImageScale int
	UseBorder  bool

	Position placement.Anchor
	Offset   int

	// Label background: a two-stop gradient, or CustomGradient when
	// UseCustomGradient is set.
	Gradient1         color.Color
	Gradient2         color.Color
	GradientKind      canvas.GradientKind
	UseCustomGradient bool
	CustomGradient    Gradient

	BorderColor  color.Color
	CornerRadius int

	AutoHide      bool
	AddReflection bool
	Reflection    effects.ReflectionOptions
}

// DefaultConfig returns a small clock label in the bottom-right corner.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeText,
		Text:          "%h:%mi",
		Font:          canvas.Font{Family: "go", Size: 12},
		FontColor:     color.White,
		ImageScale:    100,
		Position:      placement.BottomRight,
		Offset:        5,
		Gradient1:     color.RGBA{R: 68, G: 120, B: 194, A: 255},
		Gradient2:     color.RGBA{R: 13, G: 58, B: 122, A: 255},
		GradientKind:  canvas.Vertical,
		BorderColor:   color.Black,
		CornerRadius:  4,
		AutoHide:      true,
		AddReflection: false,
		Reflection:    effects.DefaultReflection,
	}
}
