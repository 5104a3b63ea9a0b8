package attrib

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// minBoostBright is the brightness floor of rgbGen boostVertex.
const minBoostBright = 48

// specularLightOrigin is the fixed light position used by alphaGen lightingSpecular.
var specularLightOrigin = math.Vec3{X: -960, Y: 1980, Z: 96}

// Colors fills buf.Color for the active vertexes of the stage.
func Colors(buf *vertexbuf.Buffer, st *material.Stage, ctx *Context) {
	n := buf.NumVerts
	src := buf.SrcColor[:n]
	dst := buf.Color[:n]
	shift := ctx.Overbright

	switch st.RGBGen.Kind {
	case material.RGBConst:
		for i := range dst {
			dst[i] = st.Color
		}
	case material.RGBExactVertex:
		copy(dst, src)
	case material.RGBVertex:
		for i, c := range src {
			dst[i][0] = c[0] >> shift
			dst[i][1] = c[1] >> shift
			dst[i][2] = c[2] >> shift
		}
	case material.RGBBoostVertex:
		ka := 256 - minBoostBright
		kb := (minBoostBright * 256) >> shift
		for i, c := range src {
			r, g, b := int(c[0]), int(c[1]), int(c[2])
			oldBr := max(r, g, b)
			if oldBr != 0 {
				scale := (oldBr*ka + kb) / oldBr
				r, g, b = color.Normalize255((r*scale)>>8, (g*scale)>>8, (b*scale)>>8)
			}
			dst[i][0], dst[i][1], dst[i][2] = uint8(r), uint8(g), uint8(b)
		}
	case material.RGBOneMinusVertex:
		for i, c := range src {
			dst[i][0] = (255 - c[0]) >> shift
			dst[i][1] = (255 - c[1]) >> shift
			dst[i][2] = (255 - c[2]) >> shift
		}
	case material.RGBDiffuse:
		diffuse(buf, ctx, 1)
	case material.RGBHalfDiffuse:
		diffuse(buf, ctx, 0.5)
	}

	if st.RGBGen.Kind == material.RGBExactVertex && st.AlphaGen.Kind == material.AlphaVertex {
		return
	}

	switch st.AlphaGen.Kind {
	case material.AlphaConst:
		a := st.Color[3]
		for i := range dst {
			dst[i][3] = a
		}
	case material.AlphaVertex:
		for i, c := range src {
			dst[i][3] = c[3]
		}
	case material.AlphaOneMinusVertex:
		for i, c := range src {
			dst[i][3] = 255 - c[3]
		}
	case material.AlphaDot, material.AlphaOneMinusDot:
		alphaDot(buf, st, ctx)
	case material.AlphaLightingSpecular:
		alphaSpecular(buf, ctx)
	case material.AlphaPortal:
		if st.AlphaGen.PortalRange <= 0 {
			for i := range dst {
				dst[i][3] = 255
			}
			break
		}
		denom := 255 / st.AlphaGen.PortalRange
		eye := ctx.Entity.ModelViewOrg
		for i, v := range buf.Verts[:n] {
			dst[i][3] = math.Clamp255(math.Round(eye.Sub(v).Length() * denom))
		}
	}
}

func diffuse(buf *vertexbuf.Buffer, ctx *Context, weight float32) {
	dst := buf.Color
	if ctx.Lighting == nil {
		for i := 0; i < buf.NumVerts; i++ {
			dst[i] = color.White
		}
		return
	}
	i := 0
	for _, ex := range buf.Extras() {
		for k := 0; k < ex.NumVerts; k++ {
			dst[i] = ctx.Lighting.Diffuse(ex.Normal, weight)
			i++
		}
	}
}

func alphaDot(buf *vertexbuf.Buffer, st *material.Stage, ctx *Context) {
	g := st.AlphaGen
	lo, scale := math.Round(g.Min*255), (g.Max-g.Min)*255
	if g.Kind == material.AlphaOneMinusDot {
		lo, scale = math.Round(g.Max*255), (g.Min-g.Max)*255
	}
	eye := ctx.Entity.ModelViewOrg
	i := 0
	for _, ex := range buf.Extras() {
		for k := 0; k < ex.NumVerts; k++ {
			v := eye.Sub(buf.Verts[i]).Normalize()
			d := v.Dot(ex.Normal)
			buf.Color[i][3] = math.Clamp255(math.Round(d*scale) + lo)
			i++
		}
	}
}

func alphaSpecular(buf *vertexbuf.Buffer, ctx *Context) {
	eye := ctx.Entity.ModelViewOrg
	i := 0
	for _, ex := range buf.Extras() {
		norm := ex.Normal
		for k := 0; k < ex.NumVerts; k++ {
			pos := buf.Verts[i]
			l := specularLightOrigin.Sub(pos).Normalize()
			refl := norm.Scale(l.Dot(norm) * 2).Sub(l)
			f := refl.Dot(eye.Sub(pos).Normalize())
			if f < 0 {
				f = 0
			} else {
				f *= f
				f *= f
			}
			buf.Color[i][3] = math.Clamp255(math.Round(f * 255))
			i++
		}
	}
}
