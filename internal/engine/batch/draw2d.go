package batch

import (
	"unicode/utf8"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/font"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Flip mirrors the texture rectangle of a picture.
type Flip uint8

// Flip modes.
const (
	FlipS Flip = 1 << iota
	FlipT
	// FlipDiagonal swaps the texture coordinates of the top right and bottom left corners.
	FlipDiagonal
)

// DrawPic queues a screen-space rectangle textured with the (s1,t1)-(s2,t2) part of sh.
func (b *Batch) DrawPic(sh *material.Shader, x, y, w, h int, s1, t1, s2, t2 float32, tint color.Color, flip Flip) {
	if sh != b.shader {
		b.SetCurrentShader(sh)
	}
	b.Begin2D()
	b.ReserveVerts(4, 6)

	// Inset by half a texel when magnified so bilinear filtering does not pull in
	// the opposite edge.
	if sh.Width > 0 && w > sh.Width*2 {
		s1 += 0.5 / float32(sh.Width)
		s2 -= 0.5 / float32(sh.Width)
	}
	if sh.Height > 0 && h > sh.Height*2 {
		t1 += 0.5 / float32(sh.Height)
		t2 -= 0.5 / float32(sh.Height)
	}

	if flip&FlipS != 0 {
		s1, s2 = s2, s1
	}
	if flip&FlipT != 0 {
		t1, t2 = t2, t1
	}

	v := b.quad(float32(x), float32(y), float32(x+w), float32(y+h), s1, t1, s2, t2, tint)
	if flip&FlipDiagonal != 0 {
		src := b.buf.Src
		src[v+1].Tex, src[v+3].Tex = src[v+3].Tex, src[v+1].Tex
	}
}

// DrawText queues text with a bitmap font, stopping at the right screen edge.
func (b *Batch) DrawText(f *font.Font, text string, x, y int, tint color.Color) {
	if f == nil || f.Shader == nil || text == "" {
		return
	}
	if f.Shader != b.shader {
		b.SetCurrentShader(f.Shader)
	}
	b.Begin2D()
	n := utf8.RuneCountInString(text)
	b.ReserveVerts(n*4, n*6)

	x1 := x
	for _, c := range text {
		if x1 >= b.View.Width {
			break
		}
		g, ok := f.Glyph(c)
		if !ok {
			continue
		}
		gx := float32(x1 + g.XOffset)
		gy := float32(y + g.YOffset)
		b.quad(gx, gy, gx+float32(g.Width), gy+float32(g.Height), g.S1, g.T1, g.S2, g.T2, tint)
		x1 += g.Advance
	}
}

// quad appends the rectangle (x1,y1)-(x2,y2) as two triangles and returns its first vertex.
func (b *Batch) quad(x1, y1, x2, y2, s1, t1, s2, t2 float32, tint color.Color) int {
	buf := b.buf
	v, idx := buf.Alloc(4, 6)

	buf.Verts[v+0] = math.Vec3{X: x1, Y: y1}
	buf.Verts[v+1] = math.Vec3{X: x2, Y: y1}
	buf.Verts[v+2] = math.Vec3{X: x2, Y: y2}
	buf.Verts[v+3] = math.Vec3{X: x1, Y: y2}

	buf.Src[v+0] = vertexbuf.SrcTexCoord{Tex: math.Vec2{X: s1, Y: t1}}
	buf.Src[v+1] = vertexbuf.SrcTexCoord{Tex: math.Vec2{X: s2, Y: t1}}
	buf.Src[v+2] = vertexbuf.SrcTexCoord{Tex: math.Vec2{X: s2, Y: t2}}
	buf.Src[v+3] = vertexbuf.SrcTexCoord{Tex: math.Vec2{X: s1, Y: t2}}

	for k := 0; k < 4; k++ {
		buf.SrcColor[v+k] = tint
	}

	base := uint32(v)
	copy(buf.Indexes[idx:], []uint32{base, base + 1, base + 2, base, base + 2, base + 3})
	buf.AddExtra(4)
	return v
}
