package attrib

import (
	gomath "math"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Fog texture rows: depth 0 is outside the volume, 31/32 is deep inside.
const (
	fogDepthOutside = 1.0 / 32
	fogDepthInside  = 31.0 / 32
	fogDepthRange   = 30.0 / 32
)

// TexCoords fills buf.TexCoord[unit] for the active vertexes from the stage's
// tcGen, then applies its tcMods. img is the image bound to the unit (nil = white).
func TexCoords(buf *vertexbuf.Buffer, unit int, st *material.Stage, img *texture.Image, ctx *Context) {
	n := buf.NumVerts
	dst := buf.TexCoord[unit][:n]
	src := buf.Src[:n]
	verts := buf.Verts[:n]

	switch st.TCGen.Kind {
	case material.TCTexture, material.TCLightmap:
		lm := st.TCGen.Kind == material.TCLightmap
		scale := math.Vec2{X: 1, Y: 1}
		if img != nil && img.Target == texture.TargetRectangle {
			scale = math.Vec2{X: float32(img.InternalWidth), Y: float32(img.InternalHeight)}
		}
		for i, s := range src {
			uv := s.Tex
			if lm {
				uv = s.LM
			}
			dst[i] = uv.Mul(scale)
		}

	case material.TCLightmapStyle:
		mul := float32(st.TCGen.Index) / material.LightmapSize
		i := 0
		for _, ex := range buf.Extras() {
			shift := float32(ex.LightmapWidth) * mul
			for k := 0; k < ex.NumVerts; k++ {
				dst[i] = math.Vec2{X: src[i].LM.X + shift, Y: src[i].LM.Y}
				i++
			}
		}

	case material.TCEnvironment:
		eye := ctx.Entity.ModelViewOrg
		i := 0
		for _, ex := range buf.Extras() {
			for k := 0; k < ex.NumVerts; k++ {
				v := eye.Sub(verts[i]).Normalize()
				if ex.Axis != nil {
					dst[i] = math.Vec2{
						X: (v.Dot(ex.Axis[0]) - 1) / 2,
						Y: (v.Dot(ex.Axis[1]) - 1) / 2,
					}
				} else {
					norm := ex.Normal
					d := v.Dot(norm) * 2
					dst[i] = math.Vec2{
						X: (d*norm.Y - v.Y + 1) / 2,
						Y: (d*norm.Z - v.Z + 1) / 2,
					}
				}
				i++
			}
		}

	case material.TCVector:
		v0, v1 := st.TCGen.Vectors[0], st.TCGen.Vectors[1]
		for i, v := range verts {
			dst[i] = math.Vec2{X: v.Dot(v0), Y: v.Dot(v1)}
		}

	case material.TCFog:
		fogTexCoords(dst, verts, ctx)

	case material.TCDlight:
		dlightTexCoords(buf, dst, st.TCGen.Index, ctx)
	}

	ApplyTcMods(dst, verts, st.TcMods, ctx.time())
}

func fogTexCoords(dst []math.Vec2, verts []math.Vec3, ctx *Context) {
	fog := ctx.Fog
	if fog == nil {
		for i := range dst {
			dst[i] = math.Vec2{Y: fogDepthOutside}
		}
		return
	}
	vc := ctx.View.Coord
	distVec := vc.Axis[0].Scale(fog.TexCoordScale)
	dist0 := vc.Origin.Dot(vc.Axis[0]) * fog.TexCoordScale

	eyeDepth := float32(1)
	if fog.HasSurface {
		eyeDepth = fog.Surface.Distance(vc.Origin)
	}
	for i, v := range verts {
		s := v.Dot(distVec) - dist0
		// without a bounding surface every vertex is inside the volume
		depth := float32(1)
		if fog.HasSurface {
			depth = fog.Surface.Distance(v)
		}
		var t float32
		switch {
		case eyeDepth < 0:
			if depth < 1 {
				t = fogDepthOutside
			} else {
				t = fogDepthOutside + fogDepthRange*depth/(depth-eyeDepth)
			}
		case depth < 0:
			t = fogDepthOutside
		default:
			t = fogDepthInside
		}
		dst[i] = math.Vec2{X: s, Y: t}
	}
}

func dlightTexCoords(buf *vertexbuf.Buffer, dst []math.Vec2, num int, ctx *Context) {
	axis := ctx.View.Coord.Axis
	i := 0
	for _, ex := range buf.Extras() {
		switch {
		case num < len(ex.PlanarDlights):
			pdl := ex.PlanarDlights[num]
			invRadius := 0.5 / pdl.Radius
			for k := 0; k < ex.NumVerts; k++ {
				v := buf.Verts[i]
				dst[i] = math.Vec2{
					X: (v.Dot(pdl.Axis[0])-pdl.Pos[0])*invRadius + 0.5,
					Y: (v.Dot(pdl.Axis[1])-pdl.Pos[1])*invRadius + 0.5,
				}
				i++
			}
		case num < len(ex.TrisurfDlights):
			tdl := ex.TrisurfDlights[num]
			for k := 0; k < ex.NumVerts; k++ {
				dist := buf.Verts[i].Sub(tdl.Origin)
				x := dist.Dot(axis[1])
				y := dist.Dot(axis[2])
				xy := x*x + y*y
				if xy == 0 {
					dst[i] = math.Vec2{X: 0.5, Y: 0.5}
				} else {
					scale := 0.5 / tdl.Radius * float32(gomath.Sqrt(float64(dist.Dot(dist)/xy)))
					dst[i] = math.Vec2{X: x*scale + 0.5, Y: y*scale + 0.5}
				}
				i++
			}
		default:
			// no projection for this light: point at the black corner of the falloff image
			for k := 0; k < ex.NumVerts; k++ {
				dst[i] = math.Vec2{}
				i++
			}
		}
	}
}

// ApplyTcMods transforms texture coordinates by mods in order at time t.
// verts supplies the positions used by turb.
func ApplyTcMods(dst []math.Vec2, verts []math.Vec3, mods []material.TcMod, t float32) {
	for _, m := range mods {
		switch m.Kind {
		case material.TcModScroll, material.TcModOffset:
			d := math.Vec2{X: m.S, Y: m.T}
			if m.Kind == material.TcModScroll {
				d = math.Vec2{X: math.Frac(m.S * t), Y: math.Frac(m.T * t)}
			}
			for i := range dst {
				dst[i] = dst[i].Add(d)
			}

		case material.TcModTurb:
			f1 := m.Wave.Freq*t + m.Wave.Phase
			for i := range dst {
				f := math.SinPeriod(verts[i].Sum()/math.TableSize+f1) * m.Wave.Amp
				dst[i].X += f
				dst[i].Y += f
			}

		case material.TcModWarp:
			for i, uv := range dst {
				dst[i] = math.Vec2{
					X: uv.X/64 + math.SinPeriod((uv.Y/16+t)/(2*gomath.Pi))/16,
					Y: uv.Y/64 + math.SinPeriod((uv.X/16+t)/(2*gomath.Pi))/16,
				}
			}

		case material.TcModScale:
			s := math.Vec2{X: m.S, Y: m.T}
			for i := range dst {
				dst[i] = dst[i].Mul(s)
			}

		case material.TcModStretch:
			f := m.Wave.Eval(t)
			if f < 0.001 {
				f = 0.001
			}
			f = 1 / f
			off := (1 - f) / 2
			for i := range dst {
				dst[i] = math.Vec2{X: dst[i].X*f + off, Y: dst[i].Y*f + off}
			}

		case material.TcModRotate:
			angle := float64(m.RotateSpeed*t) / 180 * gomath.Pi
			sn, cs := float32(gomath.Sin(angle)), float32(gomath.Cos(angle))
			c1 := 0.5 * (1 - sn - cs)
			c2 := 0.5 * (1 + sn - cs)
			for i, uv := range dst {
				dst[i] = math.Vec2{
					X: uv.Y*sn + uv.X*cs + c1,
					Y: uv.Y*cs - uv.X*sn + c2,
				}
			}

		case material.TcModTransform:
			for i, uv := range dst {
				dst[i] = math.Vec2{
					X: uv.X*m.Matrix[0][0] + uv.Y*m.Matrix[1][0] + m.Translate[0],
					Y: uv.X*m.Matrix[0][1] + uv.Y*m.Matrix[1][1] + m.Translate[1],
				}
			}
		}
	}
}
