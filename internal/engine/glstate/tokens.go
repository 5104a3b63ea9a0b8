package glstate

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

// Combine tokens, spelled out because the core names changed between GL versions
// and the vendor tokens are not part of the generated bindings.
const (
	tokCombine      = 0x8570
	tokCombineRGB   = 0x8571
	tokCombineAlpha = 0x8572
	tokRGBScale     = 0x8573
	tokInterpolate  = 0x8575
	tokConstant     = 0x8576
	tokPrevious     = 0x8578

	tokCombine4NV      = 0x8503
	tokModulateAddATI  = 0x8744
	tokTextureRectARB  = 0x84F5
	tokMaxTextureUnits = 0x84E2
)

var (
	tokSourceRGB    = [4]uint32{0x8580, 0x8581, 0x8582, 0x8583}
	tokSourceAlpha  = [4]uint32{0x8588, 0x8589, 0x858A, 0x858B}
	tokOperandRGB   = [4]uint32{0x8590, 0x8591, 0x8592, 0x8593}
	tokOperandAlpha = [4]uint32{0x8598, 0x8599, 0x859A, 0x859B}
)

var blendTokens = [...]uint32{
	material.FactorNone:             gl.ONE,
	material.FactorZero:             gl.ZERO,
	material.FactorOne:              gl.ONE,
	material.FactorSrcColor:         gl.SRC_COLOR,
	material.FactorOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	material.FactorSrcAlpha:         gl.SRC_ALPHA,
	material.FactorOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	material.FactorDstColor:         gl.DST_COLOR,
	material.FactorOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	material.FactorDstAlpha:         gl.DST_ALPHA,
	material.FactorOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
	material.FactorSrcAlphaSaturate: gl.SRC_ALPHA_SATURATE,
}

func blendToken(f material.BlendFactor) uint32 {
	if int(f) < len(blendTokens) {
		return blendTokens[f]
	}
	return gl.ONE
}

// envParam is one glTexEnvi call.
type envParam struct {
	name, value uint32
}

// envProgram is the glTexEnv sequence for one unit.
type envProgram struct {
	params []envParam
	// color is set through GL_TEXTURE_ENV_COLOR when the program reads the constant.
	useColor bool
}

func (p *envProgram) set(name, value uint32) {
	p.params = append(p.params, envParam{name, value})
}

// argTokens returns the source and operand of a combiner argument.
func argTokens(a combiner.EnvArg) (source, operandRGB, operandAlpha uint32) {
	switch a {
	case combiner.ArgTexture:
		return gl.TEXTURE, gl.SRC_COLOR, gl.SRC_ALPHA
	case combiner.ArgOneMinusTexture:
		return gl.TEXTURE, gl.ONE_MINUS_SRC_COLOR, gl.ONE_MINUS_SRC_ALPHA
	case combiner.ArgTexAlpha:
		return gl.TEXTURE, gl.SRC_ALPHA, gl.SRC_ALPHA
	case combiner.ArgOneMinusTexAlpha:
		return gl.TEXTURE, gl.ONE_MINUS_SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA
	case combiner.ArgPrevious:
		return tokPrevious, gl.SRC_COLOR, gl.SRC_ALPHA
	case combiner.ArgOneMinusPrevious:
		return tokPrevious, gl.ONE_MINUS_SRC_COLOR, gl.ONE_MINUS_SRC_ALPHA
	case combiner.ArgPrevAlpha:
		return tokPrevious, gl.SRC_ALPHA, gl.SRC_ALPHA
	case combiner.ArgOneMinusPrevAlpha:
		return tokPrevious, gl.ONE_MINUS_SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA
	case combiner.ArgConstant:
		return tokConstant, gl.SRC_COLOR, gl.SRC_ALPHA
	case combiner.ArgOne:
		// NV combine4 accepts GL_ZERO as a source
		return gl.ZERO, gl.ONE_MINUS_SRC_COLOR, gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ZERO, gl.SRC_COLOR, gl.SRC_ALPHA
	}
}

// compileEnv translates a texture environment into glTexEnv parameters.
// Combine modes compute alpha as previous.a * texture.a.
func compileEnv(env combiner.TexEnv) envProgram {
	var p envProgram
	switch env.Op {
	case combiner.EnvModulate:
		p.set(gl.TEXTURE_ENV_MODE, gl.MODULATE)
		return p
	case combiner.EnvAdd:
		p.set(gl.TEXTURE_ENV_MODE, gl.ADD)
		return p
	}

	nargs := 2
	mode := uint32(tokCombine)
	switch env.Op {
	case combiner.EnvCombineModulate:
		p.set(gl.TEXTURE_ENV_MODE, tokCombine)
		p.set(tokCombineRGB, gl.MODULATE)
	case combiner.EnvCombineAdd:
		p.set(gl.TEXTURE_ENV_MODE, tokCombine)
		p.set(tokCombineRGB, gl.ADD)
	case combiner.EnvCombineInterp:
		p.set(gl.TEXTURE_ENV_MODE, tokCombine)
		p.set(tokCombineRGB, tokInterpolate)
		nargs = 3
	case combiner.EnvCombine4Add:
		mode = tokCombine4NV
		p.set(gl.TEXTURE_ENV_MODE, tokCombine4NV)
		p.set(tokCombineRGB, gl.ADD)
		nargs = 4
	case combiner.EnvCombine3Add:
		p.set(gl.TEXTURE_ENV_MODE, tokCombine)
		p.set(tokCombineRGB, tokModulateAddATI)
		nargs = 3
	}

	for i := 0; i < nargs; i++ {
		a := env.Args[i]
		src, op, _ := argTokens(a)
		p.set(tokSourceRGB[i], src)
		p.set(tokOperandRGB[i], op)
		if a == combiner.ArgConstant {
			p.useColor = true
		}
	}

	if mode == tokCombine4NV {
		// a0*a1 + 0*0
		p.set(tokCombineAlpha, gl.ADD)
		p.set(tokSourceAlpha[0], tokPrevious)
		p.set(tokOperandAlpha[0], gl.SRC_ALPHA)
		p.set(tokSourceAlpha[1], gl.TEXTURE)
		p.set(tokOperandAlpha[1], gl.SRC_ALPHA)
		p.set(tokSourceAlpha[2], gl.ZERO)
		p.set(tokOperandAlpha[2], gl.SRC_ALPHA)
		p.set(tokSourceAlpha[3], gl.ZERO)
		p.set(tokOperandAlpha[3], gl.SRC_ALPHA)
	} else {
		p.set(tokCombineAlpha, gl.MODULATE)
		p.set(tokSourceAlpha[0], tokPrevious)
		p.set(tokOperandAlpha[0], gl.SRC_ALPHA)
		p.set(tokSourceAlpha[1], gl.TEXTURE)
		p.set(tokOperandAlpha[1], gl.SRC_ALPHA)
	}

	if env.EnvColor {
		p.useColor = true
	}
	scale := uint32(1)
	if env.Mul2 {
		scale = 2
	}
	p.set(tokRGBScale, scale)
	return p
}

// stateChange lists what must be reprogrammed to move from one packed state to another.
type stateChange struct {
	blend      bool
	alpha      bool
	depthWrite bool
	depthTest  bool
	depthFunc  bool
	polyMode   bool
}

func diffState(from, to material.GLState, force bool) stateChange {
	d := from ^ to
	if force {
		d = ^material.GLState(0)
	}
	return stateChange{
		blend:      d&material.BlendMask != 0,
		alpha:      d&material.AlphaMask != 0,
		depthWrite: d&material.DepthWrite != 0,
		depthTest:  d&material.NoDepthTest != 0,
		depthFunc:  d&material.DepthEqual != 0,
		polyMode:   d&material.PolygonLine != 0,
	}
}
