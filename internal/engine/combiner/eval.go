package combiner

import (
	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

// RGBA is a normalized fragment color.
type RGBA [4]float32

// Fragment supplies the inputs of one pixel to Evaluate.
type Fragment struct {
	// Texel returns the texture sample of a stage; it is not called for stages without an image.
	Texel func(st *RenderStage) RGBA
	// Vertex is the interpolated vertex color used by stages whose color is not constant.
	Vertex RGBA
}

var white = RGBA{1, 1, 1, 1}

// Evaluate runs every pass of the plan over one pixel the way the fixed-function
// pipeline would and returns the resulting framebuffer color. Depth and alpha tests are ignored.
func Evaluate(plan *Plan, frag Fragment, dst RGBA) RGBA {
	for i, pass := range plan.Passes {
		stages := plan.PassStages(i)
		prev := frag.Vertex
		if cs := &stages[0]; cs.IsConst {
			prev = floats(cs)
		}
		for u := range stages {
			st := &stages[u]
			tex := white
			if st.Image != nil && frag.Texel != nil {
				tex = frag.Texel(st)
			}
			prev = applyEnv(st.Env, prev, tex, floats(st))
		}
		dst = blend(pass.State, prev, dst)
	}
	return dst
}

func floats(st *RenderStage) RGBA {
	return RGBA(st.Color.Floats())
}

func applyEnv(env TexEnv, prev, tex, konst RGBA) RGBA {
	var out RGBA
	switch env.Op {
	case EnvModulate:
		for k := range out {
			out[k] = prev[k] * tex[k]
		}
		return out
	case EnvAdd:
		for k := 0; k < 3; k++ {
			out[k] = prev[k] + tex[k]
		}
		out[3] = prev[3] * tex[3]
		return clamp(out)
	}

	arg := func(n int) RGBA {
		return envArg(env.Args[n], prev, tex, konst)
	}
	a0, a1 := arg(0), arg(1)
	switch env.Op {
	case EnvCombineModulate:
		for k := 0; k < 3; k++ {
			out[k] = a0[k] * a1[k]
		}
	case EnvCombineAdd:
		for k := 0; k < 3; k++ {
			out[k] = a0[k] + a1[k]
		}
	case EnvCombineInterp:
		a2 := arg(2)
		for k := 0; k < 3; k++ {
			out[k] = a0[k]*a2[k] + a1[k]*(1-a2[k])
		}
	case EnvCombine4Add:
		a2, a3 := arg(2), arg(3)
		for k := 0; k < 3; k++ {
			out[k] = a0[k]*a1[k] + a2[k]*a3[k]
		}
	case EnvCombine3Add:
		a2 := arg(2)
		for k := 0; k < 3; k++ {
			out[k] = a0[k]*a2[k] + a1[k]
		}
	}
	// alpha combines as previous * texture
	out[3] = prev[3] * tex[3]
	if env.Mul2 {
		for k := 0; k < 3; k++ {
			out[k] *= 2
		}
	}
	return clamp(out)
}

func envArg(a EnvArg, prev, tex, konst RGBA) RGBA {
	switch a {
	case ArgTexture:
		return tex
	case ArgOneMinusTexture:
		return oneMinus(tex)
	case ArgTexAlpha:
		return splat(tex[3])
	case ArgOneMinusTexAlpha:
		return splat(1 - tex[3])
	case ArgPrevious:
		return prev
	case ArgOneMinusPrevious:
		return oneMinus(prev)
	case ArgPrevAlpha:
		return splat(prev[3])
	case ArgOneMinusPrevAlpha:
		return splat(1 - prev[3])
	case ArgConstant:
		return konst
	case ArgOne:
		return white
	}
	return RGBA{}
}

func blend(state material.GLState, src, dst RGBA) RGBA {
	if !state.HasBlend() {
		return src
	}
	s := blendFactor(state.Src(), src, dst)
	d := blendFactor(state.Dst(), src, dst)
	var out RGBA
	for k := range out {
		out[k] = src[k]*s[k] + dst[k]*d[k]
	}
	return clamp(out)
}

func blendFactor(f material.BlendFactor, src, dst RGBA) RGBA {
	switch f {
	case material.FactorOne:
		return white
	case material.FactorSrcColor:
		return src
	case material.FactorOneMinusSrcColor:
		return oneMinus(src)
	case material.FactorSrcAlpha:
		return splat(src[3])
	case material.FactorOneMinusSrcAlpha:
		return splat(1 - src[3])
	case material.FactorDstColor:
		return dst
	case material.FactorOneMinusDstColor:
		return oneMinus(dst)
	case material.FactorDstAlpha:
		return splat(dst[3])
	case material.FactorOneMinusDstAlpha:
		return splat(1 - dst[3])
	case material.FactorSrcAlphaSaturate:
		f := min(src[3], 1-dst[3])
		return RGBA{f, f, f, 1}
	}
	return RGBA{}
}

func splat(f float32) RGBA {
	return RGBA{f, f, f, f}
}

func oneMinus(c RGBA) RGBA {
	return RGBA{1 - c[0], 1 - c[1], 1 - c[2], 1 - c[3]}
}

func clamp(c RGBA) RGBA {
	for k := range c {
		c[k] = min(max(c[k], 0), 1)
	}
	return c
}
