package combiner

import (
	"fmt"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

// EnvOp is the texture environment function of one texture unit.
type EnvOp uint8

// Texture environment functions. Combine functions read their operands from TexEnv.Args.
const (
	// EnvModulate is GL_MODULATE: previous * texture.
	EnvModulate EnvOp = iota
	// EnvAdd is GL_ADD from ARB_texture_env_add.
	EnvAdd
	// EnvCombineModulate is a0 * a1.
	EnvCombineModulate
	// EnvCombineAdd is a0 + a1.
	EnvCombineAdd
	// EnvCombineInterp is a0 * a2 + a1 * (1 - a2).
	EnvCombineInterp
	// EnvCombine4Add is the NV combine4 a0 * a1 + a2 * a3.
	EnvCombine4Add
	// EnvCombine3Add is the ATI combine3 MODULATE_ADD a0 * a2 + a1.
	EnvCombine3Add
)

var envOpNames = [...]string{"MODULATE", "ADD", "C_MODULATE", "C_ADD", "C_INTERP", "C4_ADD", "C3_ADD"}

func (op EnvOp) String() string {
	if int(op) < len(envOpNames) {
		return envOpNames[op]
	}
	return "unknown"
}

// IsCombine reports whether the function needs a combine extension.
func (op EnvOp) IsCombine() bool {
	return op >= EnvCombineModulate
}

// EnvArg is a combiner operand.
type EnvArg uint8

// Combiner operands.
const (
	ArgNone EnvArg = iota
	ArgTexture
	ArgOneMinusTexture
	ArgTexAlpha
	ArgOneMinusTexAlpha
	ArgPrevious
	ArgOneMinusPrevious
	ArgPrevAlpha
	ArgOneMinusPrevAlpha
	// ArgConstant is the unit's environment color.
	ArgConstant
	ArgZero
	ArgOne
)

var envArgNames = [...]string{
	"", "T.c", "(1-T.c)", "T.a", "(1-T.a)", "P.c", "(1-P.c)", "P.a", "(1-P.a)", "C", "0", "1",
}

func (a EnvArg) String() string {
	if int(a) < len(envArgNames) {
		return envArgNames[a]
	}
	return "?"
}

// blendToArg maps a blend factor onto the operand that computes it inside a unit,
// with the unit's texture standing for the source and the previous unit for the destination.
var blendToArg = [...]EnvArg{
	material.FactorNone:             ArgNone,
	material.FactorZero:             ArgZero,
	material.FactorOne:              ArgOne,
	material.FactorSrcColor:         ArgTexture,
	material.FactorOneMinusSrcColor: ArgOneMinusTexture,
	material.FactorSrcAlpha:         ArgTexAlpha,
	material.FactorOneMinusSrcAlpha: ArgOneMinusTexAlpha,
	material.FactorDstColor:         ArgPrevious,
	material.FactorOneMinusDstColor: ArgOneMinusPrevious,
	material.FactorDstAlpha:         ArgPrevAlpha,
	material.FactorOneMinusDstAlpha: ArgOneMinusPrevAlpha,
	material.FactorSrcAlphaSaturate: ArgNone,
}

func factorArg(f material.BlendFactor) EnvArg {
	if int(f) < len(blendToArg) {
		return blendToArg[f]
	}
	return ArgNone
}

// TexEnv is the complete environment setup of one texture unit.
type TexEnv struct {
	Op   EnvOp
	Args [4]EnvArg
	// Mul2 doubles the combiner output.
	Mul2 bool
	// EnvColor loads the stage constant color into the unit's environment color.
	EnvColor bool
}

var (
	envModulate  = TexEnv{Op: EnvModulate}
	envModulate2 = TexEnv{Op: EnvCombineModulate, Args: [4]EnvArg{ArgPrevious, ArgTexture}, Mul2: true}
)

func (e TexEnv) String() string {
	var s string
	switch e.Op {
	case EnvModulate, EnvAdd:
		return e.Op.String()
	case EnvCombineModulate:
		s = fmt.Sprintf("%s x %s", e.Args[0], e.Args[1])
	case EnvCombineAdd:
		s = fmt.Sprintf("%s + %s", e.Args[0], e.Args[1])
	case EnvCombineInterp:
		s = fmt.Sprintf("lerp(%s, %s, %s)", e.Args[1], e.Args[0], e.Args[2])
	case EnvCombine4Add:
		s = fmt.Sprintf("%s x %s + %s x %s", e.Args[0], e.Args[1], e.Args[2], e.Args[3])
	case EnvCombine3Add:
		s = fmt.Sprintf("%s x %s + %s", e.Args[0], e.Args[2], e.Args[1])
	default:
		return e.Op.String()
	}
	if e.Mul2 {
		s = "2 x (" + s + ")"
	}
	return e.Op.String() + ": " + s
}
