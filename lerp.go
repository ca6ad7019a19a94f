package aspen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Lerp interpolates between a and b at progress t in [0, 1]. Implementations
// must return a exactly at t = 0 and b exactly at t = 1.
type Lerp[T any] func(a, b T, t float32) T

// LerpFloat32 linearly interpolates between two float32 values.
func LerpFloat32(a, b float32, t float32) float32 {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return a + (b-a)*t
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float32) float64 {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return a + (b-a)*float64(t)
}

// LerpColor interpolates each channel of two colors.
func LerpColor(a, b Color, t float32) Color {
	return Color{
		R: LerpFloat64(a.R, b.R, t),
		G: LerpFloat64(a.G, b.G, t),
		B: LerpFloat64(a.B, b.B, t),
		A: LerpFloat64(a.A, b.A, t),
	}
}

// LerpVec2 interpolates both components of two vectors.
func LerpVec2(a, b Vec2, t float32) Vec2 {
	return Vec2{X: LerpFloat64(a.X, b.X, t), Y: LerpFloat64(a.Y, b.Y, t)}
}

// Unit is the unit of a Length.
type Unit uint8

const (
	UnitAuto    Unit = iota // size decided by the layout solver
	UnitPixels              // logical pixels
	UnitPercent             // percentage of the parent's size
	UnitStretch             // share of the remaining space
)

func (u Unit) String() string {
	switch u {
	case UnitAuto:
		return "auto"
	case UnitPixels:
		return "px"
	case UnitPercent:
		return "%"
	case UnitStretch:
		return "s"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Length is a box-model length consumed by the layout solver.
type Length struct {
	Value float32
	Unit  Unit
}

// Auto is the automatic length.
var Auto = Length{Unit: UnitAuto}

// Pixels returns a pixel length.
func Pixels(v float32) Length { return Length{Value: v, Unit: UnitPixels} }

// Percent returns a percentage length.
func Percent(v float32) Length { return Length{Value: v, Unit: UnitPercent} }

// Stretch returns a stretch factor length.
func Stretch(v float32) Length { return Length{Value: v, Unit: UnitStretch} }

func (l Length) String() string {
	if l.Unit == UnitAuto {
		return "auto"
	}
	return fmt.Sprintf("%g%s", l.Value, l.Unit)
}

// ParseLength accepts "auto", "12px", "50%", "1s" (stretch) or a bare
// number of pixels.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "auto" {
		return Auto, nil
	}
	unit := UnitPixels
	num := s
	switch {
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "%"):
		num, unit = strings.TrimSuffix(s, "%"), UnitPercent
	case strings.HasSuffix(s, "s"):
		num, unit = strings.TrimSuffix(s, "s"), UnitStretch
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 32)
	if err != nil {
		return Length{}, fmt.Errorf("parse length %q: %w", s, err)
	}
	return Length{Value: float32(v), Unit: unit}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseLength.
func (l *Length) UnmarshalText(text []byte) error {
	v, err := ParseLength(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// LerpLength interpolates lengths of the same unit. Lengths of different
// units cannot be blended, so the start value holds until t reaches 1.
func LerpLength(a, b Length, t float32) Length {
	if a.Unit != b.Unit {
		if t >= 1 {
			return b
		}
		return a
	}
	return Length{Value: LerpFloat32(a.Value, b.Value, t), Unit: a.Unit}
}

// clampPhase limits t to [0, 1].
func clampPhase(t float32) float32 {
	return math32.Max(0, math32.Min(1, t))
}
