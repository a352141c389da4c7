package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"screen-capture-fx/src/canvas"
	"screen-capture-fx/src/placement"
	"screen-capture-fx/src/watermark"
)

var ErrInvalidColor = errors.New("invalid color")

// watermarkFile is the on-disk layout of the watermark settings. Pointer
// fields distinguish "absent" from zero so absent keys keep their defaults.
type watermarkFile struct {
	Mode          string  `toml:"mode"`
	Text          string  `toml:"text"`
	Position      string  `toml:"position"`
	Offset        *int    `toml:"offset"`
	AutoHide      *bool   `toml:"auto_hide"`
	AddReflection *bool   `toml:"add_reflection"`
	Font          fontSec `toml:"font"`
	Image         imgSec  `toml:"image"`
	Label         label   `toml:"label"`
	Reflection    reflSec `toml:"reflection"`
}

type fontSec struct {
	Family string `toml:"family"`
	Path   string `toml:"path"`
	Size   int    `toml:"size"`
	Color  string `toml:"color"`
}

type imgSec struct {
	Path   string `toml:"path"`
	Scale  *int   `toml:"scale"`
	Border *bool  `toml:"border"`
}

type label struct {
	Gradient       []string       `toml:"gradient"`
	GradientKind   string         `toml:"gradient_kind"`
	CustomGradient []gradientStop `toml:"custom_gradient"`
	BorderColor    string         `toml:"border_color"`
	CornerRadius   *int           `toml:"corner_radius"`
}

type gradientStop struct {
	Color  string  `toml:"color"`
	Offset float64 `toml:"offset"`
}

type reflSec struct {
	Percentage *int   `toml:"percentage"`
	MaxAlpha   *uint8 `toml:"max_alpha"`
	MinAlpha   *uint8 `toml:"min_alpha"`
}

// LoadWatermark reads watermark settings from a TOML file, starting from
// watermark.DefaultConfig.
func LoadWatermark(path string) (watermark.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return watermark.Config{}, fmt.Errorf("failed to read watermark config: %w", err)
	}
	cfg, err := ParseWatermark(data)
	if err != nil {
		return watermark.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseWatermark decodes TOML watermark settings. Unknown keys are rejected.
func ParseWatermark(data []byte) (watermark.Config, error) {
	var f watermarkFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return watermark.Config{}, fmt.Errorf("unknown watermark setting:\n%s", missing.String())
		}
		return watermark.Config{}, fmt.Errorf("failed to decode watermark config: %w", err)
	}
	return f.apply(watermark.DefaultConfig())
}

func (f *watermarkFile) apply(cfg watermark.Config) (watermark.Config, error) {
	var err error
	if f.Mode != "" {
		if cfg.Mode, err = watermark.ParseMode(f.Mode); err != nil {
			return cfg, err
		}
	}
	if f.Text != "" {
		cfg.Text = f.Text
	}
	if f.Position != "" {
		if cfg.Position, err = placement.ParseAnchor(f.Position); err != nil {
			return cfg, err
		}
	}
	setInt(&cfg.Offset, f.Offset)
	setBool(&cfg.AutoHide, f.AutoHide)
	setBool(&cfg.AddReflection, f.AddReflection)

	if f.Font.Family != "" || f.Font.Path != "" {
		cfg.Font.Family, cfg.Font.Path = f.Font.Family, f.Font.Path
	}
	if f.Font.Size != 0 {
		cfg.Font.Size = float64(f.Font.Size)
	}
	if err := setColor(&cfg.FontColor, f.Font.Color); err != nil {
		return cfg, fmt.Errorf("font.color: %w", err)
	}

	if f.Image.Path != "" {
		cfg.ImagePath = f.Image.Path
	}
	setInt(&cfg.ImageScale, f.Image.Scale)
	setBool(&cfg.UseBorder, f.Image.Border)

	if err := f.Label.apply(&cfg); err != nil {
		return cfg, err
	}

	setInt(&cfg.Reflection.Percentage, f.Reflection.Percentage)
	if f.Reflection.MaxAlpha != nil {
		cfg.Reflection.MaxAlpha = *f.Reflection.MaxAlpha
	}
	if f.Reflection.MinAlpha != nil {
		cfg.Reflection.MinAlpha = *f.Reflection.MinAlpha
	}
	return cfg, nil
}

func (l *label) apply(cfg *watermark.Config) error {
	switch len(l.Gradient) {
	case 0:
	case 2:
		if err := setColor(&cfg.Gradient1, l.Gradient[0]); err != nil {
			return fmt.Errorf("label.gradient: %w", err)
		}
		if err := setColor(&cfg.Gradient2, l.Gradient[1]); err != nil {
			return fmt.Errorf("label.gradient: %w", err)
		}
	default:
		return fmt.Errorf("label.gradient: want 2 colors, got %d", len(l.Gradient))
	}

	if l.GradientKind != "" {
		kind, err := canvas.ParseGradientKind(l.GradientKind)
		if err != nil {
			return err
		}
		cfg.GradientKind = kind
	}

	if len(l.CustomGradient) > 0 {
		cfg.UseCustomGradient = true
		cfg.CustomGradient = watermark.Gradient{Kind: cfg.GradientKind}
		for i, s := range l.CustomGradient {
			c, err := ParseColor(s.Color)
			if err != nil {
				return fmt.Errorf("label.custom_gradient[%d]: %w", i, err)
			}
			cfg.CustomGradient.Stops = append(cfg.CustomGradient.Stops, canvas.Stop{Color: c, Offset: s.Offset})
		}
	}

	if err := setColor(&cfg.BorderColor, l.BorderColor); err != nil {
		return fmt.Errorf("label.border_color: %w", err)
	}
	setInt(&cfg.CornerRadius, l.CornerRadius)
	return nil
}

// ParseColor parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func setColor(dst *color.Color, s string) error {
	if s == "" {
		return nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return err
	}
	*dst = c
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
