package aspen

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Rect.Contains ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"left edge", 10, 40, true},
		{"outside left", 9, 40, false},
		{"outside below", 50, 71, false},
		{"far outside", 999, 999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

// --- Rect.Intersects ---

func TestRectIntersects(t *testing.T) {
	base := Rect{10, 10, 100, 100}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlapping", Rect{50, 50, 100, 100}, true},
		{"fully contained", Rect{20, 20, 10, 10}, true},
		{"adjacent right", Rect{110, 10, 50, 50}, true},
		{"disjoint right", Rect{111, 10, 50, 50}, false},
		{"disjoint above", Rect{10, -100, 50, 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expect {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.expect)
			}
		})
	}
}

// --- Color ---

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 1, A: 1}, c)

	c, err = ParseColor("#0f08")
	assert.Error(t, err, "four digit form is not supported")

	c, err = ParseColor("#00ff0080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, c.A, 1e-9)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, ColorWhite, c)

	c, err = ParseColor(" White ")
	require.NoError(t, err)
	assert.Equal(t, ColorWhite, c)

	c, err = ParseColor("transparent")
	require.NoError(t, err)
	assert.Equal(t, ColorTransparent, c)

	_, err = ParseColor("notacolor")
	assert.Error(t, err)
}

func TestColorRGBAPremultiplied(t *testing.T) {
	got := Color{R: 1, G: 0.5, B: 0, A: 0.5}.RGBA()
	assert.Equal(t, color.RGBA{R: 127, G: 63, B: 0, A: 127}, got)
}

func TestColorUnmarshalText(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("black")))
	assert.Equal(t, Color{A: 1}, c)
	assert.Error(t, c.UnmarshalText([]byte("#12")))
}

func TestPointerKindString(t *testing.T) {
	assert.Equal(t, "click", PointerClick.String())
	assert.Equal(t, "drag-end", PointerDragEnd.String())
	assert.Equal(t, "PointerKind(99)", PointerKind(99).String())
}
