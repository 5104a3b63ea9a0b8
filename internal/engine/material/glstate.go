package material

import (
	"fmt"
	"strings"
)

// BlendFactor is a blend equation factor. The zero value means "no blending".
type BlendFactor uint8

// Blend factors. The numbering is part of the packed GLState layout.
const (
	FactorNone BlendFactor = iota
	FactorZero
	FactorOne
	FactorSrcColor
	FactorOneMinusSrcColor
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
	FactorDstColor
	FactorOneMinusDstColor
	FactorDstAlpha
	FactorOneMinusDstAlpha
	FactorSrcAlphaSaturate
)

var factorNames = [...]string{
	"", "GL_ZERO", "GL_ONE", "GL_SRC_COLOR", "GL_ONE_MINUS_SRC_COLOR",
	"GL_SRC_ALPHA", "GL_ONE_MINUS_SRC_ALPHA", "GL_DST_COLOR", "GL_ONE_MINUS_DST_COLOR",
	"GL_DST_ALPHA", "GL_ONE_MINUS_DST_ALPHA", "GL_SRC_ALPHA_SATURATE",
}

func (f BlendFactor) String() string {
	if int(f) < len(factorNames) && f != FactorNone {
		return factorNames[f]
	}
	return "none"
}

// ParseBlendFactor parses a GL_* factor name (case-insensitive).
func ParseBlendFactor(name string) (BlendFactor, error) {
	for i := 1; i < len(factorNames); i++ {
		if strings.EqualFold(factorNames[i], name) {
			return BlendFactor(i), nil
		}
	}
	return FactorNone, fmt.Errorf("bad blend factor %q", name)
}

// GLState is the packed fixed-function state of a stage or pass.
//
//	bits 0..3   source blend factor
//	bits 4..7   destination blend factor
//	bits 8..9   alpha test
//	bit  10     depth write
//	bit  11     no depth test
//	bit  12     depth func EQUAL (LEQUAL otherwise)
//	bit  13     polygon mode LINE
type GLState uint32

// GLState fields.
const (
	srcShift = 0
	dstShift = 4

	SrcMask   GLState = 0xF << srcShift
	DstMask   GLState = 0xF << dstShift
	BlendMask         = SrcMask | DstMask

	AlphaGT0  GLState = 1 << 8
	AlphaLT05 GLState = 2 << 8
	AlphaGE05 GLState = 3 << 8
	AlphaMask GLState = 3 << 8

	DepthWrite  GLState = 1 << 10
	NoDepthTest GLState = 1 << 11
	DepthEqual  GLState = 1 << 12
	PolygonLine GLState = 1 << 13
)

// CombineMask covers the fields that may differ between stages sharing one pass.
const CombineMask = BlendMask | DepthWrite | NoDepthTest

// Blend packs a blend equation src*S + dst*D.
func Blend(src, dst BlendFactor) GLState {
	return GLState(src)<<srcShift | GLState(dst)<<dstShift
}

// Common blend equations.
var (
	BlendAdd       = Blend(FactorOne, FactorOne)
	BlendAlpha     = Blend(FactorSrcAlpha, FactorOneMinusSrcAlpha)
	BlendFilter    = Blend(FactorZero, FactorSrcColor)
	BlendModulate  = Blend(FactorDstColor, FactorZero)
	BlendModulate2 = Blend(FactorDstColor, FactorSrcColor)
)

// Src returns the source blend factor.
func (s GLState) Src() BlendFactor {
	return BlendFactor((s & SrcMask) >> srcShift)
}

// Dst returns the destination blend factor.
func (s GLState) Dst() BlendFactor {
	return BlendFactor((s & DstMask) >> dstShift)
}

// Blend returns only the blend bits.
func (s GLState) Blend() GLState {
	return s & BlendMask
}

// HasBlend reports whether blending is enabled.
func (s GLState) HasBlend() bool {
	return s&BlendMask != 0
}

// Alpha returns only the alpha test bits.
func (s GLState) Alpha() GLState {
	return s & AlphaMask
}

// Has reports whether all bits of flag are set.
func (s GLState) Has(flag GLState) bool {
	return s&flag == flag
}

// WithBlend replaces the blend bits.
func (s GLState) WithBlend(blend GLState) GLState {
	return s&^BlendMask | blend&BlendMask
}

// WithAlpha replaces the alpha test bits.
func (s GLState) WithAlpha(alpha GLState) GLState {
	return s&^AlphaMask | alpha&AlphaMask
}

// DiffersOutside reports whether s and other differ in any bit not covered by mask.
func (s GLState) DiffersOutside(other, mask GLState) bool {
	return (s^other)&^mask != 0
}

func (s GLState) String() string {
	var parts []string
	if s.HasBlend() {
		parts = append(parts, fmt.Sprintf("blend(%s,%s)", s.Src(), s.Dst()))
	}
	switch s.Alpha() {
	case AlphaGT0:
		parts = append(parts, "alpha>0")
	case AlphaLT05:
		parts = append(parts, "alpha<0.5")
	case AlphaGE05:
		parts = append(parts, "alpha>=0.5")
	}
	if s.Has(DepthWrite) {
		parts = append(parts, "depthwrite")
	}
	if s.Has(NoDepthTest) {
		parts = append(parts, "nodepthtest")
	}
	if s.Has(DepthEqual) {
		parts = append(parts, "depth=")
	}
	if s.Has(PolygonLine) {
		parts = append(parts, "wire")
	}
	if len(parts) == 0 {
		return "opaque"
	}
	return strings.Join(parts, "|")
}

// ParseBlend parses a blendfunc argument list: "add", "blend", "filter" or two factor names.
func ParseBlend(args []string) (GLState, error) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "add":
			return BlendAdd, nil
		case "blend":
			return BlendAlpha, nil
		case "filter":
			return BlendFilter, nil
		}
		return 0, fmt.Errorf("bad blend mode %q", args[0])
	}
	if len(args) != 2 {
		return 0, fmt.Errorf("blendfunc expects 1 or 2 arguments, got %d", len(args))
	}
	src, err := ParseBlendFactor(args[0])
	if err != nil {
		return 0, err
	}
	dst, err := ParseBlendFactor(args[1])
	if err != nil {
		return 0, err
	}
	return Blend(src, dst), nil
}
