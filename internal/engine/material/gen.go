package material

import (
	gomath "math"

	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Wave is a periodic function parameter set: Func(Freq*t + Phase)*Amp + Base.
type Wave struct {
	Func  math.WaveFunc
	Base  float32
	Amp   float32
	Phase float32
	Freq  float32
}

// Eval evaluates the wave at time t (seconds).
func (w Wave) Eval(t float32) float32 {
	return math.Periodic(w.Func, w.Freq*t+w.Phase)*w.Amp + w.Base
}

// RGBGenKind selects how stage color is produced.
type RGBGenKind uint8

// Color generators.
const (
	RGBNone RGBGenKind = iota
	RGBIdentity
	RGBIdentityLighting
	RGBConst
	RGBEntity
	RGBOneMinusEntity
	RGBVertex
	RGBExactVertex
	RGBBoostVertex
	RGBOneMinusVertex
	RGBWave
	RGBGlobalFog
	RGBDiffuse
	RGBHalfDiffuse
)

var rgbGenNames = [...]string{
	"none", "identity", "identityLighting", "const", "entity", "oneMinusEntity",
	"vertex", "exactVertex", "boostVertex", "oneMinusVertex", "wave", "globalFog",
	"lightingDiffuse", "halfDiffuse",
}

func (k RGBGenKind) String() string {
	if int(k) < len(rgbGenNames) {
		return rgbGenNames[k]
	}
	return "unknown"
}

// RGBGen is the color generator of a stage. Wave is valid for RGBWave only.
type RGBGen struct {
	Kind RGBGenKind
	Wave Wave
}

// AlphaGenKind selects how stage alpha is produced.
type AlphaGenKind uint8

// Alpha generators.
const (
	AlphaIdentity AlphaGenKind = iota
	AlphaConst
	AlphaEntity
	AlphaOneMinusEntity
	AlphaVertex
	AlphaOneMinusVertex
	AlphaWave
	AlphaDot
	AlphaOneMinusDot
	AlphaLightingSpecular
	AlphaPortal
)

var alphaGenNames = [...]string{
	"identity", "const", "entity", "oneMinusEntity", "vertex", "oneMinusVertex",
	"wave", "dot", "oneMinusDot", "lightingSpecular", "portal",
}

func (k AlphaGenKind) String() string {
	if int(k) < len(alphaGenNames) {
		return alphaGenNames[k]
	}
	return "unknown"
}

// AlphaGen is the alpha generator of a stage.
// Wave is valid for AlphaWave, Min/Max for the dot variants, PortalRange for AlphaPortal.
type AlphaGen struct {
	Kind        AlphaGenKind
	Wave        Wave
	Min, Max    float32
	PortalRange float32
}

// TCGenKind selects how texture coordinates are produced.
type TCGenKind uint8

// Texture coordinate generators.
const (
	TCTexture TCGenKind = iota
	TCLightmap
	// TCLightmapStyle addresses the Index-th (1..4) style lightmap packed right of the main one.
	TCLightmapStyle
	TCEnvironment
	TCVector
	TCFog
	// TCDlight projects the Index-th active dynamic light of the surface.
	TCDlight
)

var tcGenNames = [...]string{"texture", "lightmap", "lightmapStyle", "environment", "vector", "fog", "dlight"}

func (k TCGenKind) String() string {
	if int(k) < len(tcGenNames) {
		return tcGenNames[k]
	}
	return "unknown"
}

// TCGen is the texture coordinate generator of a stage.
// Index is valid for TCLightmapStyle and TCDlight, Vectors for TCVector.
type TCGen struct {
	Kind    TCGenKind
	Index   int
	Vectors [2]math.Vec3
}

// IsLightmap reports whether the generator addresses a lightmap page.
func (g TCGen) IsLightmap() bool {
	return g.Kind == TCLightmap || g.Kind == TCLightmapStyle
}

// IsLighting reports whether the generator belongs to a lighting stage (lightmap or dynamic light).
func (g TCGen) IsLighting() bool {
	return g.IsLightmap() || g.Kind == TCDlight
}

// TcModKind selects a texture coordinate modifier.
type TcModKind uint8

// Texture coordinate modifiers.
const (
	TcModScroll TcModKind = iota
	TcModOffset
	TcModScale
	TcModTurb
	TcModWarp
	TcModStretch
	TcModRotate
	TcModTransform
)

var tcModNames = [...]string{"scroll", "offset", "scale", "turb", "warp", "stretch", "rotate", "transform"}

func (k TcModKind) String() string {
	if int(k) < len(tcModNames) {
		return tcModNames[k]
	}
	return "unknown"
}

// TcMod is one texture coordinate modifier.
// S/T hold scroll speed, offset or scale; Wave drives turb and stretch;
// Matrix and Translate describe transform.
type TcMod struct {
	Kind        TcModKind
	S, T        float32
	Wave        Wave
	RotateSpeed float32
	Matrix      [2][2]float32
	Translate   [2]float32
}

// RotatePeriod returns the time of one full turn of a rotate modifier.
func (m TcMod) RotatePeriod() float32 {
	if m.RotateSpeed == 0 {
		return float32(gomath.Inf(1))
	}
	return 360 / m.RotateSpeed
}

// DeformKind selects a vertex deformation.
type DeformKind uint8

// Deformations.
const (
	DeformWave DeformKind = iota
	DeformMove
	DeformBulge
	DeformAutosprite
	DeformAutosprite2
)

var deformNames = [...]string{"wave", "move", "bulge", "autoSprite", "autoSprite2"}

func (k DeformKind) String() string {
	if int(k) < len(deformNames) {
		return deformNames[k]
	}
	return "unknown"
}

// Deform is one shader-level vertex deformation.
// WaveDiv is the inverse of the script divisor.
type Deform struct {
	Kind        DeformKind
	Wave        Wave
	WaveDiv     float32
	Move        math.Vec3
	BulgeWidth  float32
	BulgeHeight float32
	BulgeSpeed  float32
}
