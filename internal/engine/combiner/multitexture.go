package combiner

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
)

// passStyle classifies the blend equation of a pass.
type passStyle uint8

const (
	styleUnknown        passStyle = 0
	styleMultiplicative passStyle = 1
	styleAdditive       passStyle = 2
	styleAny                      = styleMultiplicative | styleAdditive
	styleIncompatible   passStyle = 0x80
)

func classifyBlend(state material.GLState) passStyle {
	switch state.Blend() {
	case 0:
		return styleAny
	case material.BlendAdd:
		return styleAdditive
	case material.BlendModulate2, material.BlendModulate:
		return styleMultiplicative
	}
	return styleIncompatible
}

func firstEnv(st *RenderStage) TexEnv {
	if st.IsDouble {
		return envModulate2
	}
	return envModulate
}

// noMultitexture draws every stage in its own pass.
func (p *Planner) noMultitexture() {
	pl := &p.plan
	for i := range pl.Stages {
		st := &pl.Stages[i]
		st.Env = firstEnv(st)
		pl.addPass(st.State, i, 1)
	}
	p.trace("single texture passes", zap.Int("passes", len(pl.Passes)))
}

// useMultitexture greedily merges consecutive stages into passes.
func (p *Planner) useMultitexture() {
	pl := &p.plan
	n := len(pl.Stages)
	tmuLeft, tmuUsed := 0, 0
	style := styleUnknown
	var pass *RenderPass

	for i := 0; i < n; i++ {
		st := &pl.Stages[i]
		if tmuLeft == 0 {
			tmuLeft = p.Caps.MaxActiveTextures
			tmuUsed = 0
			pass = pl.addPass(st.State, i, 1)
			st.Env = firstEnv(st)
			style = classifyBlend(pass.State)
			p.trace("next pass", zap.Int("stage", i), zap.Stringer("state", pass.State))
		}
		p.trace("unit", zap.Int("stage", i), zap.Int("tmu", tmuUsed),
			zap.String("texture", texture.DisplayName(st.Image)),
			zap.Bool("const", st.IsConst), zap.Bool("identity", st.IsIdentity), zap.Stringer("color", st.Color))

		tmuUsed++
		tmuLeft--
		if tmuUsed > 1 {
			pass.State |= st.State & (material.DepthWrite | material.NoDepthTest)
		}

		if i == n-1 {
			break
		}
		next := &pl.Stages[i+1]
		if !p.canShare(i, st, next, tmuLeft, style) {
			tmuLeft = 0
			continue
		}
		if env, ok := p.fuse(st, next, tmuUsed, style); ok {
			next.Env = env
			pass.Count++
			continue
		}
		p.trace("not combined", zap.Int("stage", i+1))
		tmuLeft = 0
	}
}

// canShare checks whether next may be bound to another unit of the running pass.
func (p *Planner) canShare(i int, st, next *RenderStage, tmuLeft int, style passStyle) bool {
	if tmuLeft < 1 {
		return false
	}
	if style == styleIncompatible {
		p.trace("incompatible blend")
		return false
	}
	// alpha tested texture followed by a depth-equal stage (alpha texture * lightmap)
	if i == 0 && st.State.Alpha() != 0 && next.State.Has(material.DepthEqual) {
		return true
	}
	if st.State.DiffersOutside(next.State, material.CombineMask) {
		p.trace("incompatible state", zap.Stringer("diff", (st.State^next.State)&^material.CombineMask))
		return false
	}
	return true
}

// fuse selects the environment that reproduces next's blend inside the running pass.
func (p *Planner) fuse(st, next *RenderStage, tmuUsed int, style passStyle) (TexEnv, bool) {
	ext := p.Caps.Ext
	blend2 := next.State.Blend()

	if next.IsIdentity {
		if blend2 == material.BlendModulate && style&styleMultiplicative != 0 {
			p.trace("MT(MUL)", zap.String("texture", texture.DisplayName(next.Image)))
			return envModulate, true
		}
		if ext.Any(ExtEnvAdd|ExtCombine) && blend2 == material.BlendAdd && style&styleAdditive != 0 {
			p.trace("MT(ADD)", zap.String("texture", texture.DisplayName(next.Image)))
			if ext.Any(ExtEnvAdd) {
				return TexEnv{Op: EnvAdd}, true
			}
			return TexEnv{Op: EnvCombineAdd, Args: [4]EnvArg{ArgPrevious, ArgTexture}}, true
		}
		if ext.Any(ExtCombine) && blend2 == material.BlendModulate2 && style&styleMultiplicative != 0 {
			p.trace("MT(MUL2)", zap.String("texture", texture.DisplayName(next.Image)))
			return envModulate2, true
		}
	}

	if ext.Any(ExtNVCombine4|ExtATICombine3) && next.IsConst && (tmuUsed == 1 || st.IsConst) &&
		(next.IsIdentity || next.State.Src() == material.FactorOne) {
		if env, ok := p.vendorCombine(next, style); ok {
			return env, true
		}
	}

	if ext.Any(ExtCombineARB) && blend2 == material.BlendAdd && style&styleAdditive != 0 &&
		st.IsConst && next.IsConst && tmuUsed == 1 {
		p.trace("MT(INTERP*2)", zap.String("texture", texture.DisplayName(next.Image)),
			zap.Stringer("old0", st.Color), zap.Stringer("old1", next.Color))
		for k := 0; k < 4; k++ {
			k2 := int(next.Color[k])
			st.Color[k] = uint8(int(st.Color[k]) * 255 / (255*2 - k2))
			next.Color[k] = uint8(255 - k2/2)
		}
		return TexEnv{
			Op:       EnvCombineInterp,
			Args:     [4]EnvArg{ArgPrevious, ArgTexture, ArgConstant},
			Mul2:     true,
			EnvColor: true,
		}, true
	}
	return TexEnv{}, false
}

// vendorCombine maps next's blend equation onto the NV combine4 or ATI combine3 operands.
// The texture of next stands for the blend source and the running pass for the destination,
// so only equations linear in the destination are accepted.
func (p *Planner) vendorCombine(next *RenderStage, style passStyle) (TexEnv, bool) {
	src, dst := next.State.Src(), next.State.Dst()
	switch style {
	case styleAdditive:
		if src != material.FactorOne && src != material.FactorSrcAlpha && src != material.FactorOneMinusSrcAlpha {
			return TexEnv{}, false
		}
		if dst != material.FactorOne {
			return TexEnv{}, false
		}
	case styleMultiplicative:
		switch {
		case src == material.FactorZero && !readsDst(dst):
		case src == material.FactorDstColor && dst == material.FactorZero:
		case next.State.Blend() == material.BlendModulate2:
		default:
			return TexEnv{}, false
		}
	}

	env1, env2 := factorArg(src), factorArg(dst)
	if env1 == ArgNone || env2 == ArgNone {
		return TexEnv{}, false
	}

	var env TexEnv
	if p.Caps.Ext.Any(ExtNVCombine4) {
		// a0*a1 + a2*a3
		env = TexEnv{Op: EnvCombine4Add, Args: [4]EnvArg{env1, ArgTexture, env2, ArgPrevious}}
		if !next.IsIdentity && env1 == ArgOne {
			env.Args[0] = ArgConstant
			env.EnvColor = true
		}
		p.trace("MT(NV)", zap.Stringer("blend", next.State.Blend()), zap.Stringer("env", env))
		return env, true
	}

	// a0*a2 + a1
	switch {
	case env1 == ArgOne && next.IsIdentity:
		env = TexEnv{Op: EnvCombine3Add, Args: [4]EnvArg{ArgPrevious, ArgTexture, env2}}
	case env1 == ArgOne && env2 == ArgOne:
		env = TexEnv{Op: EnvCombine3Add, Args: [4]EnvArg{ArgTexture, ArgPrevious, ArgConstant}, EnvColor: true}
	case env1 == ArgOne:
		return TexEnv{}, false
	case env2 == ArgOne:
		env = TexEnv{Op: EnvCombine3Add, Args: [4]EnvArg{ArgTexture, ArgPrevious, env1}}
	default:
		return TexEnv{}, false
	}
	p.trace("MT(ATI)", zap.Stringer("blend", next.State.Blend()), zap.Stringer("env", env))
	return env, true
}

func readsDst(f material.BlendFactor) bool {
	switch f {
	case material.FactorDstColor, material.FactorOneMinusDstColor,
		material.FactorDstAlpha, material.FactorOneMinusDstAlpha:
		return true
	}
	return false
}
