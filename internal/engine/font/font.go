// Package font describes bitmap fonts drawn by the batcher: fixed-grid fonts laid
// out in a shader's texture and BMFont descriptors.
package font

import (
	"fmt"

	"github.com/fzipp/bmfont"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

// Glyph is one character cell: its texture rectangle and its placement on screen.
type Glyph struct {
	S1, T1, S2, T2 float32

	Width, Height    int
	XOffset, YOffset int
	Advance          int
}

// Font is a bitmap font bound to a shader.
type Font struct {
	Shader *material.Shader

	// Grid layout, used when no glyph table is loaded.
	CharWidth  int
	CharHeight int
	Spacing    int
	FirstChar  byte

	// OutWidth and OutHeight are the on-screen size of a grid cell.
	OutWidth  int
	OutHeight int

	LineHeight int

	glyphs map[rune]Glyph
}

// NewGrid returns a fixed-grid font. Cells are charWidth x charHeight texels
// separated by spacing texels, starting with firstChar at the top left.
func NewGrid(sh *material.Shader, charWidth, charHeight, spacing int, firstChar byte) *Font {
	return &Font{
		Shader:     sh,
		CharWidth:  charWidth,
		CharHeight: charHeight,
		Spacing:    spacing,
		FirstChar:  firstChar,
		OutWidth:   charWidth,
		OutHeight:  charHeight,
		LineHeight: charHeight + spacing,
	}
}

// Glyph returns the cell of c. Grid fonts wrap characters below FirstChar around
// the byte range like the texture layout does.
func (f *Font) Glyph(c rune) (Glyph, bool) {
	if f.glyphs != nil {
		g, ok := f.glyphs[c]
		return g, ok
	}
	if f.Shader == nil || f.Shader.Width == 0 || f.Shader.Height == 0 {
		return Glyph{}, false
	}

	spaceW := f.CharWidth + f.Spacing
	spaceH := f.CharHeight + f.Spacing
	if spaceW <= 0 || spaceH <= 0 {
		return Glyph{}, false
	}
	perLine := f.Shader.Width / spaceW
	if perLine == 0 {
		return Glyph{}, false
	}

	chr := int(byte(c) - f.FirstChar)
	line := chr / perLine
	col := chr % perLine

	w := float32(f.Shader.Width)
	h := float32(f.Shader.Height)
	return Glyph{
		S1:      float32(col*spaceW) / w,
		S2:      float32(col*spaceW+f.CharWidth) / w,
		T1:      float32(line*spaceH) / h,
		T2:      float32(line*spaceH+f.CharHeight) / h,
		Width:   f.OutWidth,
		Height:  f.OutHeight,
		Advance: f.OutWidth,
	}, true
}

// Measure returns the pen advance of text in pixels.
func (f *Font) Measure(text string) int {
	n := 0
	for _, c := range text {
		if g, ok := f.Glyph(c); ok {
			n += g.Advance
		}
	}
	return n
}

// SetGlyphs replaces the grid layout with an explicit glyph table.
func (f *Font) SetGlyphs(glyphs map[rune]Glyph) {
	f.glyphs = glyphs
}

// LoadBMFont reads a BMFont descriptor and its pages. The page texture is expected
// to be the first image of sh.
func LoadBMFont(path string, sh *material.Shader) (*Font, error) {
	bf, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load bmfont %s: %w", path, err)
	}

	d := bf.Descriptor
	scaleW := float32(d.Common.ScaleW)
	scaleH := float32(d.Common.ScaleH)
	if scaleW == 0 || scaleH == 0 {
		return nil, fmt.Errorf("bmfont %s: empty page size", path)
	}

	glyphs := make(map[rune]Glyph, len(d.Chars))
	for _, ch := range d.Chars {
		glyphs[rune(ch.ID)] = Glyph{
			S1:      float32(ch.X) / scaleW,
			T1:      float32(ch.Y) / scaleH,
			S2:      float32(ch.X+ch.Width) / scaleW,
			T2:      float32(ch.Y+ch.Height) / scaleH,
			Width:   int(ch.Width),
			Height:  int(ch.Height),
			XOffset: int(ch.XOffset),
			YOffset: int(ch.YOffset),
			Advance: int(ch.XAdvance),
		}
	}

	f := &Font{
		Shader:     sh,
		LineHeight: int(d.Common.LineHeight),
	}
	f.SetGlyphs(glyphs)
	return f, nil
}
