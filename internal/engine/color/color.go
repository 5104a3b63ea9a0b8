// Package color provides the byte RGBA color used by vertex arrays and constant stage colors.
package color

import "fmt"

// Color is an RGBA color with byte components, laid out as GL_UNSIGNED_BYTE x4.
type Color [4]uint8

// Predefined colors.
var (
	Transparent = Color{0, 0, 0, 0}
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Red         = Color{255, 0, 0, 255}
	Green       = Color{0, 255, 0, 255}
	Blue        = Color{0, 0, 255, 255}
)

// RGBA creates a color from float components (0.0 to 1.0).
func RGBA(r, g, b, a float32) Color {
	return Color{toByte(r), toByte(g), toByte(b), toByte(a)}
}

// RGB creates a color from float components with full alpha.
func RGB(r, g, b float32) Color {
	return RGBA(r, g, b, 1)
}

// RGB255 creates an opaque color from byte components.
func RGB255(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// Gray returns an opaque gray color.
func Gray(v uint8) Color {
	return Color{v, v, v, 255}
}

// FromUint32 unpacks a color stored as 0xAABBGGRR (little-endian byte order).
func FromUint32(v uint32) Color {
	return Color{uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)}
}

// Uint32 packs the color as 0xAABBGGRR.
func (c Color) Uint32() uint32 {
	return uint32(c[0]) | uint32(c[1])<<8 | uint32(c[2])<<16 | uint32(c[3])<<24
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a uint8) Color {
	c[3] = a
	return c
}

// WithWhiteRGB returns the color with RGB set to 255 and alpha unchanged.
func (c Color) WithWhiteRGB() Color {
	return Color{255, 255, 255, c[3]}
}

// Floats returns the components scaled to 0.0-1.0.
func (c Color) Floats() [4]float32 {
	return [4]float32{
		float32(c[0]) / 255,
		float32(c[1]) / 255,
		float32(c[2]) / 255,
		float32(c[3]) / 255,
	}
}

func (c Color) String() string {
	return fmt.Sprintf("%08X", c.Uint32())
}

// Normalize255 scales r,g,b down so the largest channel fits in a byte, keeping hue.
func Normalize255(r, g, b int) (int, int, int) {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	if m <= 255 {
		return clampLow(r), clampLow(g), clampLow(b)
	}
	return clampLow(r * 255 / m), clampLow(g * 255 / m), clampLow(b * 255 / m)
}

func clampLow(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func toByte(f float32) uint8 {
	v := int(f*255 + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
