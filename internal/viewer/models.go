package viewer

import (
	gomath "math"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/scene"
	"github.com/Faultbox/midgard-gl/internal/engine/surface"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Prop layout, in world units.
const (
	gemRadius    = 12
	gemHover     = 30
	gemStretch   = 1.6
	sparkCount   = 64
	sparkHeight  = 60
	sparkRadius  = 10
	orbitRadius  = 60
	orbitHeight  = 20
	dlightRadius = 120
)

// Props are the animated objects placed on the world: a spinning gem, a spark
// fountain above it and two orbiting dynamic lights.
type Props struct {
	Center math.Vec3

	Gem    *surface.MD3
	Sparks surface.Particles

	gemShader   *material.Shader
	sparkShader *material.Shader
}

// NewProps places the props at center, which is a point on the ground.
func NewProps(center math.Vec3, gemShader, sparkShader *material.Shader) *Props {
	return &Props{
		Center:      center,
		Gem:         newGem(),
		Sparks:      surface.Particles{List: make([]surface.Particle, sparkCount), Palette: sparkPalette()},
		gemShader:   gemShader,
		sparkShader: sparkShader,
	}
}

// Update moves the sparks to time t.
func (p *Props) Update(t float32) {
	origin := p.Center.Add(math.Vec3{Z: gemHover})
	for i := range p.Sparks.List {
		phase := frac(float64(t)*0.4 + float64(i)/sparkCount)
		s, c := gomath.Sincos(float64(i) * 2.399963)
		r := sparkRadius * (0.3 + phase)
		sp := &p.Sparks.List[i]
		sp.Org = origin.Add(math.Vec3{
			X: float32(c * r),
			Y: float32(s * r),
			Z: float32(phase * sparkHeight),
		})
		sp.Alpha = float32(1 - phase)
		sp.Type = surface.ParticleDefault
		if i%2 == 0 {
			sp.Type = surface.ParticleSparkle
		}
		sp.Color = uint8(i * 4)
	}
}

// GemEntity returns the gem spinning around Z and pulsing between its two frames.
func (p *Props) GemEntity(t float32) view.Entity {
	e := view.NewWorldEntity()
	e.WorldMatrix = false
	e.Coord.Origin = p.Center.Add(math.Vec3{Z: gemHover})
	s, c := gomath.Sincos(float64(t))
	e.Coord.Axis = [3]math.Vec3{
		{X: float32(c), Y: float32(s)},
		{X: float32(-s), Y: float32(c)},
		{Z: 1},
	}
	e.Frame, e.OldFrame = 1, 0
	e.BackLerp = float32(0.5 + 0.5*gomath.Sin(float64(t)*2))
	e.Time = t
	return e
}

// Dlights returns the two lights circling the center at time t.
func (p *Props) Dlights(t float32) []view.Dlight {
	lights := []view.Dlight{
		{Color: color.RGB255(255, 150, 60), Intensity: dlightRadius},
		{Color: color.RGB255(80, 140, 255), Intensity: dlightRadius},
	}
	for i := range lights {
		a := float64(t)*0.7 + float64(i)*gomath.Pi
		s, c := gomath.Sincos(a)
		lights[i].Origin = p.Center.Add(math.Vec3{
			X: float32(c * orbitRadius),
			Y: float32(s * orbitRadius),
			Z: orbitHeight,
		})
	}
	return lights
}

// AddToFrame queues the gem as its own entity and the sparks with the world.
func (p *Props) AddToFrame(f *scene.Frame, t float32) {
	if p.gemShader != nil {
		ent := f.AddEntity(p.GemEntity(t))
		f.Add(p.Gem, p.gemShader, ent, 0, false)
	}
	if p.sparkShader != nil {
		f.Add(&p.Sparks, p.sparkShader, view.WorldEntity, 0, false)
	}
}

// newGem builds an octahedron with flat normals. Frame 1 is stretched along Z.
func newGem() *surface.MD3 {
	m := &surface.MD3{Frames: make([][]surface.MD3Vertex, 2)}
	for _, sz := range []float32{1, -1} {
		for _, q := range [4][2]float32{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}} {
			tri := [3]math.Vec3{
				{X: q[0] * gemRadius},
				{Y: q[1] * gemRadius},
				{Z: sz * gemRadius},
			}
			n := math.Vec3{X: q[0], Y: q[1], Z: sz}.Normalize()
			// front faces wind clockwise seen from outside
			if tri[2].Sub(tri[0]).Cross(tri[1].Sub(tri[0])).Dot(n) < 0 {
				tri[1], tri[2] = tri[2], tri[1]
			}
			for frame := range m.Frames {
				stretch := float32(1)
				if frame == 1 {
					stretch = gemStretch
				}
				fn := math.Vec3{X: n.X, Y: n.Y, Z: n.Z / stretch}.Normalize()
				for _, v := range tri {
					m.Frames[frame] = append(m.Frames[frame], surface.MD3Vertex{
						Pos:    md3Pos(math.Vec3{X: v.X, Y: v.Y, Z: v.Z * stretch}),
						Normal: encodeNormal(fn),
					})
				}
			}
			base := uint32(len(m.TexCoords))
			m.TexCoords = append(m.TexCoords,
				math.Vec2{X: 0.5, Y: 0}, math.Vec2{X: 0, Y: 1}, math.Vec2{X: 1, Y: 1})
			m.Indexes = append(m.Indexes, base, base+1, base+2)
		}
	}
	return m
}

func md3Pos(v math.Vec3) [3]int16 {
	const scale = 1 / surface.MD3XYZScale
	return [3]int16{int16(v.X * scale), int16(v.Y * scale), int16(v.Z * scale)}
}

// encodeNormal packs a unit vector the way DecodeNormal expects.
func encodeNormal(n math.Vec3) uint16 {
	const turn = 256 / (2 * gomath.Pi)
	lat := gomath.Acos(gomath.Max(-1, gomath.Min(1, float64(n.Z)))) * turn
	lng := gomath.Atan2(float64(n.Y), float64(n.X)) * turn
	a := int(gomath.Round(lat)) & 255
	b := int(gomath.Round(lng)) & 255
	return uint16(a) | uint16(b)<<8
}

// sparkPalette ramps from deep blue to cyan.
func sparkPalette() *surface.Palette {
	var p surface.Palette
	for i := range p {
		f := float32(i) / 255
		p[i] = color.RGB(0.2*f, 0.4+0.6*f, 1)
	}
	return &p
}

func frac(f float64) float64 {
	return f - gomath.Floor(f)
}
