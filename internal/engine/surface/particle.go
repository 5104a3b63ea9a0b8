package surface

import (
	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// ParticleShaderName is the name of the built-in particle shader.
const ParticleShaderName = "*particle"

// ParticleType selects the color of a particle.
type ParticleType uint8

// Particle types.
const (
	ParticleDefault ParticleType = iota
	// ParticleSparkle fades from orange to white as alpha grows.
	ParticleSparkle
)

// Particle is one point sprite.
type Particle struct {
	Org   math.Vec3
	Alpha float32
	Type  ParticleType
	// Color indexes the palette.
	Color uint8
}

// Palette maps 8-bit particle colors to RGBA.
type Palette [256]color.Color

// GrayPalette returns a palette ramping from black to white.
func GrayPalette() *Palette {
	var p Palette
	for i := range p {
		p[i] = color.Gray(uint8(i))
	}
	return &p
}

// NewParticleShader returns the shader particles are drawn with.
func NewParticleShader(img *texture.Image) *material.Shader {
	sh := &material.Shader{
		Name:           ParticleShaderName,
		Sort:           material.SortSprite,
		Cull:           material.CullNone,
		LightmapNumber: material.LightmapNone,
		Stages: []*material.Stage{{
			Images:   []*texture.Image{img},
			State:    material.BlendAlpha | material.AlphaGT0,
			RGBGen:   material.RGBGen{Kind: material.RGBExactVertex},
			AlphaGen: material.AlphaGen{Kind: material.AlphaVertex},
		}},
	}
	sh.Finish()
	return sh
}

// Particles draws a particle list as view-facing triangles.
type Particles struct {
	List    []Particle
	Palette *Palette
}

var particleST = [3]math.Vec2{{X: 0.0625, Y: 0.0625}, {X: 1.0625, Y: 0.0625}, {X: 0.0625, Y: 1.0625}}

// Tesselate implements Surface.
func (ps *Particles) Tesselate(b *batch.Batch) {
	v := b.View
	up := v.Coord.Axis[1].Scale(1.5)
	right := v.Coord.Axis[2].Scale(1.5)

	for i := range ps.List {
		p := &ps.List[i]
		scale := p.Org.Sub(v.Coord.Origin).Dot(v.Coord.Axis[0]) * v.FovScale
		if scale < 10 {
			continue
		}
		if scale < 20 {
			scale = 1
		} else {
			scale = scale/500 + 1
		}

		c := ps.color(p)
		b.ReserveVerts(3, 3)
		buf := b.Buffer()
		first, idx := buf.Alloc(3, 3)
		buf.AddExtra(3)

		buf.Verts[first] = p.Org
		buf.Verts[first+1] = p.Org.MA(scale, up)
		buf.Verts[first+2] = p.Org.MA(scale, right)
		for k := 0; k < 3; k++ {
			buf.Src[first+k] = vertexbuf.SrcTexCoord{Tex: particleST[k]}
			buf.SrcColor[first+k] = c
			buf.Indexes[idx+k] = uint32(first + k)
		}
	}
}

func (ps *Particles) color(p *Particle) color.Color {
	alpha := int(math.Clamp255(math.Round(p.Alpha * 255)))

	var c color.Color
	switch p.Type {
	case ParticleSparkle:
		if alpha < 64 {
			c = color.Color{255, uint8(135 + alpha*120/64), 144}
		} else {
			c = color.Color{255, 255, uint8((alpha-64)*4/3*111/256 + 144)}
		}
	default:
		pal := ps.Palette
		if pal == nil {
			pal = grayPalette
		}
		c = pal[p.Color]
	}
	c[3] = uint8(alpha)
	return c
}

var grayPalette = GrayPalette()
