package font

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

// Built-in grid font layout: printable ASCII in 8x16 cells, 16 per row.
const (
	BasicCellWidth  = 8
	BasicCellHeight = 16
	BasicFirstChar  = ' '
	BasicImageSize  = 128

	basicBaseline = 12
)

// BasicImage renders basicfont.Face7x13 into a grid texture for NewBasic.
// Glyph texels are opaque white, everything else is transparent.
func BasicImage() *image.RGBA {
	pix := image.NewRGBA(image.Rect(0, 0, BasicImageSize, BasicImageSize))
	d := &font.Drawer{Dst: pix, Src: image.White, Face: basicfont.Face7x13}
	perLine := BasicImageSize / BasicCellWidth
	for c := int(BasicFirstChar); c < 127; c++ {
		i := c - BasicFirstChar
		x := (i % perLine) * BasicCellWidth
		y := (i/perLine)*BasicCellHeight + basicBaseline
		d.Dot = fixed.P(x, y)
		d.DrawString(string(rune(c)))
	}
	return pix
}

// NewBasic returns a grid font over a shader whose first image is BasicImage.
func NewBasic(sh *material.Shader) *Font {
	return NewGrid(sh, BasicCellWidth, BasicCellHeight, 0, BasicFirstChar)
}
