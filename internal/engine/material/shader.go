// Package material holds the parsed shader descriptors consumed by the renderer backend.
package material

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
)

// Limits.
const (
	MaxShaderStages  = 16
	MaxShaderDeforms = 4
	MaxStageTextures = 32
	MaxLightStyles   = 4
	// LightmapSize is the page width of a lightmap block; style lightmaps are packed to its right.
	LightmapSize = 128
)

// Lightmap numbers below zero have special meaning.
const (
	LightmapNone   = -1
	LightmapVertex = -2
)

// Sort orders surfaces; lower values draw first.
type Sort int

// Sort values.
const (
	SortPortal     Sort = 1
	SortSky        Sort = 2
	SortOpaque     Sort = 3
	SortDecal      Sort = 4
	SortSeeThrough Sort = 5
	SortBanner     Sort = 6
	SortUnderwater Sort = 8
	SortSprite     Sort = 9
	SortNearest    Sort = 16
)

// CullMode selects face culling.
type CullMode uint8

// Cull modes.
const (
	CullFront CullMode = iota
	CullBack
	CullNone
)

// Stage is one texture layer of a shader.
// Images holds the animation chain; a nil entry stands for the white image.
type Stage struct {
	Images          []*texture.Image
	AnimFreq        float32
	FrameFromEntity bool
	IsLightmap      bool

	State    GLState
	RGBGen   RGBGen
	AlphaGen AlphaGen
	Color    color.Color
	TCGen    TCGen
	TcMods   []TcMod
}

// Image returns the first image of the chain (nil = white).
func (s *Stage) Image() *texture.Image {
	if len(s.Images) == 0 {
		return nil
	}
	return s.Images[0]
}

// Frame selects the animation frame for time t or, when FrameFromEntity is set and
// useEntity is true, for the entity frame number.
func (s *Stage) Frame(t float32, entityFrame int, useEntity bool) *texture.Image {
	n := len(s.Images)
	if n <= 1 {
		return s.Image()
	}
	var i int
	if useEntity && s.FrameFromEntity {
		i = entityFrame
	} else {
		i = int(floor(t * s.AnimFreq))
	}
	i %= n
	if i < 0 {
		i += n
	}
	return s.Images[i]
}

// Shader is an immutable material descriptor.
type Shader struct {
	Name  string
	Index int

	Sort          Sort
	Cull          CullMode
	PolygonOffset bool
	NoDraw        bool
	Deforms       []Deform
	Stages        []*Stage

	LightmapNumber int
	LightStyles    [MaxLightStyles]uint8
	FastStylesOnly bool
	// PrimaryStage is the stage modulated by dynamic lights when they cannot be pre-applied (-1 = none).
	PrimaryStage int

	// Width and Height come from the first texture; used by 2D drawing.
	Width, Height int
}

// HasLightStyles reports whether any lightstyle is attached.
func (sh *Shader) HasLightStyles() bool {
	return sh.LightStyles[0] != 0
}

// Finish fills derived fields after the stage list is complete.
func (sh *Shader) Finish() {
	sh.PrimaryStage = -1
	for i, st := range sh.Stages {
		if st.RGBGen.Kind == RGBNone {
			st.RGBGen.Kind = RGBIdentity
		}
		if st.AlphaGen.Kind == AlphaIdentity {
			st.AlphaGen.Kind = AlphaConst
			st.Color[3] = 255
		}
		if sh.PrimaryStage < 0 && !st.IsLightmap && st.TCGen.Kind == TCTexture &&
			(i == 0 || st.State.Blend() == BlendModulate || st.State.Blend() == BlendFilter) {
			sh.PrimaryStage = i
		}
		if sh.Width == 0 && sh.Height == 0 {
			if img := st.Image(); img != nil && !st.IsLightmap {
				sh.Width = img.Width
				sh.Height = img.Height
			}
		}
	}
	if len(sh.Stages) > 0 && !sh.Stages[0].State.HasBlend() {
		sh.Stages[0].State |= DepthWrite
	}
}

func floor(f float32) float32 {
	i := float32(int(f))
	if i > f {
		i--
	}
	return i
}
