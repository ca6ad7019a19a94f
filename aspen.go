package aspen

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when converting for a paint backend.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// ColorScale converts c to an ebiten.ColorScale for tinting draw calls.
func (c Color) ColorScale() ebiten.ColorScale {
	var cs ebiten.ColorScale
	cs.SetR(float32(clamp01(c.R * c.A)))
	cs.SetG(float32(clamp01(c.G * c.A)))
	cs.SetB(float32(clamp01(c.B * c.A)))
	cs.SetA(float32(clamp01(c.A)))
	return cs
}

// ColorFromRGBA converts a non-premultiplied 8-bit color.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// ParseColor accepts "#rgb", "#rrggbb", "#rrggbbaa" or a CSS color name
// such as "cornflowerblue". "transparent" is also recognized.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" {
		return ColorTransparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		named, ok := colornames.Map[s]
		if !ok {
			return Color{}, fmt.Errorf("parse color %q: unknown name", s)
		}
		return ColorFromRGBA(named), nil
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return ColorFromRGBA(color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}), nil
}

// UnmarshalText lets colors appear as strings in YAML and TOML files.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and translations.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// PointerKind identifies a kind of pointer interaction carried by a
// PointerEvent message.
type PointerKind uint8

const (
	PointerDown  PointerKind = iota // fires when a pointer button is pressed
	PointerUp                       // fires when a pointer button is released
	PointerMove                     // fires when the pointer moves
	PointerClick                    // fires on press then release over the same entity
	PointerEnter                    // fires when the pointer enters an entity's bounds
	PointerLeave                    // fires when the pointer leaves an entity's bounds
	PointerDragStart                // fires once the pointer moves past the drag dead zone
	PointerDrag                     // fires on each move while dragging
	PointerDragEnd                  // fires when a drag is released
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	case PointerMove:
		return "move"
	case PointerClick:
		return "click"
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	case PointerDragStart:
		return "drag-start"
	case PointerDrag:
		return "drag"
	case PointerDragEnd:
		return "drag-end"
	default:
		return fmt.Sprintf("PointerKind(%d)", int(k))
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
