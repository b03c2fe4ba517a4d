// Package cursor draws a synthetic pointer marker onto captured frames.
package cursor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"screen-mirror/src/raster"
)

// Style is the marker shape.
type Style int

const (
	StyleDot Style = iota
	StyleCross
)

func (s Style) String() string {
	switch s {
	case StyleDot:
		return "dot"
	case StyleCross:
		return "cross"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle accepts "dot", "circle" (the dialog's label for dot) and "cross".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dot", "circle":
		return StyleDot, nil
	case "cross":
		return StyleCross, nil
	default:
		return 0, fmt.Errorf("unknown cursor style %q", s)
	}
}

const (
	MinSize      = 1
	MaxSize      = 10000
	MinThickness = 0
	MaxThickness = 20
)

var ErrInvalidSettings = errors.New("invalid cursor settings")

// Settings controls the marker. Thickness 0 draws the thinnest line.
type Settings struct {
	Enabled   bool
	Style     Style
	Size      int
	Thickness int
	Color     color.RGBA
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:   true,
		Style:     StyleDot,
		Size:      5,
		Thickness: 0,
		Color:     color.RGBA{R: 255, A: 255},
	}
}

func (s Settings) Validate() error {
	if s.Style != StyleDot && s.Style != StyleCross {
		return fmt.Errorf("%w: style %v", ErrInvalidSettings, s.Style)
	}
	if s.Size < MinSize || s.Size > MaxSize {
		return fmt.Errorf("%w: size %d not in [%d, %d]", ErrInvalidSettings, s.Size, MinSize, MaxSize)
	}
	if s.Thickness < MinThickness || s.Thickness > MaxThickness {
		return fmt.Errorf("%w: thickness %d not in [%d, %d]", ErrInvalidSettings, s.Thickness, MinThickness, MaxThickness)
	}
	return nil
}

var presets = map[string]func() Settings{
	"default": DefaultSettings,
	"disabled": func() Settings {
		s := DefaultSettings()
		s.Enabled = false
		return s
	},
	"bright cross": func() Settings {
		return Settings{
			Enabled:   true,
			Style:     StyleCross,
			Size:      20,
			Thickness: 3,
			Color:     color.RGBA{R: 255, G: 255, A: 255},
		}
	},
}

// PresetNames lists preset names in menu order.
func PresetNames() []string {
	return []string{"default", "disabled", "bright cross"}
}

// Preset returns a complete Settings value for name. Applying a preset
// replaces every field.
func Preset(name string) (Settings, bool) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Settings{}, false
	}
	return fn(), true
}

// Annotate draws the marker at pointer (desktop coordinates) onto img, whose
// top-left pixel sits at origin on the desktop. It reports whether anything
// was drawn. Nothing is drawn when the marker is disabled or the pointer is
// outside [0,w]x[0,h] in frame coordinates.
func Annotate(img *image.RGBA, origin image.Point, s Settings, pointer image.Point) bool {
	if img == nil || !s.Enabled {
		return false
	}
	b := img.Bounds()
	local := pointer.Sub(origin)
	if local.X < 0 || local.Y < 0 || local.X > b.Dx() || local.Y > b.Dy() {
		return false
	}
	p := local.Add(b.Min)

	switch s.Style {
	case StyleCross:
		w := max(1, s.Thickness)
		raster.Line(img, p.X-s.Size, p.Y, p.X+s.Size, p.Y, s.Color, w)
		raster.Line(img, p.X, p.Y-s.Size, p.X, p.Y+s.Size, s.Color, w)
	default:
		raster.FillCircle(img, p.X, p.Y, s.Size, s.Color)
	}
	return true
}
