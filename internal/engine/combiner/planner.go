// Package combiner packs the stages of a shader into as few hardware passes as
// the fixed-function texture units allow.
package combiner

import (
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/logger"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Settings are the renderer switches the planner honours.
type Settings struct {
	// Overbright is the lightmap brightness shift (0..2).
	Overbright     uint8
	DynamicLights  bool
	ForcePostLight bool
	NoFog          bool

	// Debug overrides.
	Fullbright   bool
	LightmapOnly bool
	ShowFillRate bool

	// SpyShader is a path.Match pattern; matching shaders log every packing decision.
	SpyShader string
}

// IdentityLight is the color value of "full brightness" after the overbright shift.
func (s Settings) IdentityLight() uint8 {
	return 255 >> s.Overbright
}

// Input is the per-flush context of one shader.
type Input struct {
	Shader   *material.Shader
	View     *view.View
	Entity   *view.Entity
	Lighting view.Lighting
	// DlightMask selects the entries of View.Dlights touching the batch.
	DlightMask uint32
	// FogNum is the fog volume of the batch (0 = none).
	FogNum int
	Is2D   bool
	// World marks the frame's world entity. A nil Entity is the world too.
	World bool
}

// Planner computes render passes. It owns the scratch plan reused by every flush.
type Planner struct {
	Caps     Caps
	Settings Settings

	DlightImage *texture.Image
	FogImage    *texture.Image

	log  *zap.Logger
	spy  bool
	plan Plan
}

// New returns a planner for the given hardware.
func New(caps Caps, settings Settings, dlightImage, fogImage *texture.Image) *Planner {
	return &Planner{
		Caps:        caps,
		Settings:    settings,
		DlightImage: dlightImage,
		FogImage:    fogImage,
		log:         logger.Named("combiner"),
		plan: Plan{
			Stages: make([]RenderStage, 0, MaxRenderStages),
			Passes: make([]RenderPass, 0, MaxRenderPasses),
		},
	}
}

// Compute builds the passes for one flush. The returned plan is valid until the next call.
// A shader resolving to more than MaxRenderStages stages panics with *StageOverflowError.
func (p *Planner) Compute(in *Input) *Plan {
	sh := in.Shader
	p.plan.reset(sh)
	p.spy = p.matchSpy(sh.Name)
	p.trace("compute combiners", zap.String("shader", sh.Name), zap.Stringer("caps", p.Caps))

	needPostLight, first := p.preLight(in)
	p.addStaticStages(in, first)

	p.showFillRate(sh)
	p.debugLight(in)

	p.computeConstColor(in)

	if n := len(p.plan.Stages); n > 0 {
		if n < 2 || p.Caps.MaxActiveTextures < 2 {
			p.noMultitexture()
		} else {
			p.useMultitexture()
		}
		if needPostLight {
			p.postLight(in)
		}
	}

	if in.FogNum != 0 {
		p.addFogPass(in)
	}
	return &p.plan
}

func (p *Planner) matchSpy(name string) bool {
	mask := p.Settings.SpyShader
	if mask == "*" {
		return true
	}
	if len(mask) < 2 {
		return false
	}
	ok, err := path.Match(mask, name)
	return ok && err == nil
}

func (p *Planner) trace(msg string, fields ...zap.Field) {
	if p.spy {
		p.log.Debug(msg, fields...)
	}
}

func entityOf(in *Input) *view.Entity {
	if in.Entity != nil {
		return in.Entity
	}
	e := view.NewWorldEntity()
	return &e
}

// isWorld compares entity identity, not WorldMatrix: a model placed with the world
// matrix still animates from its own frame.
func (in *Input) isWorld() bool {
	return in.Entity == nil || in.World
}

func (in *Input) dlight(i int) view.Dlight {
	if in.View == nil || i >= len(in.View.Dlights) {
		return view.Dlight{Color: color.White}
	}
	return in.View.Dlights[i]
}

// preLight puts dynamic lights and lightstyles in front of the stage list when the
// shader starts with a plain lightmap stage. It returns whether a post-light pass is
// needed and how many shader stages it consumed.
func (p *Planner) preLight(in *Input) (needPostLight bool, skip int) {
	if !p.Settings.DynamicLights || p.Settings.Fullbright {
		return false, 0
	}
	if p.Settings.ForcePostLight {
		return true, 0
	}
	sh := in.Shader
	if len(sh.Stages) == 0 || !sh.Stages[0].IsLightmap {
		return true, 0
	}
	lm := sh.Stages[0]
	if lm.TCGen.Kind != material.TCLightmap {
		return true, 0
	}

	pl := &p.plan
	num := 0
	for i, mask := 0, in.DlightMask; mask != 0; i, mask = i+1, mask>>1 {
		if mask&1 == 0 {
			continue
		}
		state := material.BlendAdd
		if len(pl.Stages) == 0 {
			state = lm.State
		}
		st := pl.addStage()
		st.Image = p.DlightImage
		st.State = state
		st.RGBGen.Kind = material.RGBConst
		st.AlphaGen.Kind = material.AlphaConst
		st.Color = in.dlight(i).Color.WithAlpha(255)
		st.TCGen = material.TCGen{Kind: material.TCDlight, Index: num}
		num++
	}

	if !sh.HasLightStyles() && in.DlightMask == 0 {
		return false, 0
	}

	// the last round is the main lightmap
	lmImage := lm.Image()
	for i := 0; i <= material.MaxLightStyles; i++ {
		var style uint8
		if i < material.MaxLightStyles {
			style = sh.LightStyles[i]
		}
		if style == 0 && sh.FastStylesOnly {
			break
		}
		state := material.BlendAdd
		if len(pl.Stages) == 0 {
			state = lm.State
		}
		st := pl.addStage()
		st.Image = lmImage
		st.State = state
		st.RGBGen.Kind = material.RGBConst
		st.AlphaGen.Kind = material.AlphaConst
		if style != 0 {
			c := uint8(255)
			if in.View != nil {
				c = in.View.LightStyles[style]
			}
			st.Color = color.RGB255(c, c, c)
			st.TCGen = material.TCGen{Kind: material.TCLightmapStyle, Index: i + 1}
		} else {
			st.Color = color.White
			st.TCGen = material.TCGen{Kind: material.TCLightmap}
		}
		p.trace("prelight stage", zap.Int("style", int(style)), zap.Stringer("color", st.Color))
		if style == 0 {
			break
		}
	}
	return false, 1
}

// addStaticStages copies the shader stages starting at first and resolves animation frames.
func (p *Planner) addStaticStages(in *Input, first int) {
	t := float32(0)
	if in.View != nil {
		t = in.View.Time
	}
	frame := 0
	if in.Entity != nil {
		frame = in.Entity.Frame
	}
	for _, src := range in.Shader.Stages[first:] {
		st := p.plan.addStage()
		st.Stage = *src
		st.Image = src.Frame(t, frame, !in.isWorld())
		st.NoAlpha = texture.NoAlpha(st.Image)
	}
}

// computeConstColor folds color generators that do not vary per vertex into the stage constant.
func (p *Planner) computeConstColor(in *Input) {
	ent := entityOf(in)
	ob := p.Settings.Overbright
	il := p.Settings.IdentityLight()
	t := float32(0)
	if in.View != nil {
		t = in.View.Time
	}
	lightingDone := false

	for i := range p.plan.Stages {
		st := &p.plan.Stages[i]
		switch st.RGBGen.Kind {
		case material.RGBNone, material.RGBIdentity:
			st.Color = st.Color.WithWhiteRGB()
			st.RGBGen.Kind = material.RGBConst
		case material.RGBIdentityLighting:
			st.Color[0], st.Color[1], st.Color[2] = il, il, il
			st.RGBGen.Kind = material.RGBConst
		case material.RGBEntity:
			for k := 0; k < 3; k++ {
				st.Color[k] = ent.ShaderColor[k] >> ob
			}
			st.RGBGen.Kind = material.RGBConst
		case material.RGBOneMinusEntity:
			for k := 0; k < 3; k++ {
				st.Color[k] = (255 - ent.ShaderColor[k]) >> ob
			}
			st.RGBGen.Kind = material.RGBConst
		case material.RGBWave:
			c := math.Round(st.RGBGen.Wave.Eval(t) * 255)
			for k := 0; k < 3; k++ {
				st.Color[k] = math.Clamp255(c * int(st.Color[k]) >> 8)
			}
			st.RGBGen.Kind = material.RGBConst
		case material.RGBGlobalFog:
			var fc [3]float32
			if in.View != nil {
				fc = in.View.FogColor
			}
			for k := 0; k < 3; k++ {
				st.Color[k] = math.Clamp255(math.Floor(fc[k] * float32(il)))
			}
			st.RGBGen.Kind = material.RGBConst
		case material.RGBDiffuse:
			if lightingDone {
				break
			}
			lightingDone = true
			if ent.Has(view.FlagFullbright) {
				st.Color[0], st.Color[1], st.Color[2] = il, il, il
				st.RGBGen.Kind = material.RGBConst
				break
			}
			if in.Lighting != nil {
				in.Lighting.LightEntity(in.View, ent)
			}
			if p.Caps.Ext.Any(ExtCombine) && ob == 0 && i == 0 {
				st.RGBGen.Kind = material.RGBHalfDiffuse
				st.IsDouble = true
			}
		}

		switch st.AlphaGen.Kind {
		case material.AlphaEntity:
			st.Color[3] = ent.ShaderColor[3]
			st.AlphaGen.Kind = material.AlphaConst
		case material.AlphaOneMinusEntity:
			st.Color[3] = 255 - ent.ShaderColor[3]
			st.AlphaGen.Kind = material.AlphaConst
		case material.AlphaWave:
			st.Color[3] = math.Clamp255(math.Round(st.AlphaGen.Wave.Eval(t) * 255))
			st.AlphaGen.Kind = material.AlphaConst
		}

		st.IsConst = st.RGBGen.Kind == material.RGBConst && st.AlphaGen.Kind == material.AlphaConst
		st.IsIdentity = st.IsConst && st.Color == color.White
	}
}

// postLight appends one modulated pass per dynamic light over the primary stage.
func (p *Planner) postLight(in *Input) {
	sh := in.Shader
	pl := &p.plan
	if in.DlightMask == 0 || sh.PrimaryStage < 0 || sh.PrimaryStage >= len(pl.Stages) {
		return
	}
	if p.Caps.MaxActiveTextures < 2 {
		return
	}
	// PostLight runs only when nothing was inserted before the static stages
	prim := pl.Stages[sh.PrimaryStage]

	num := 0
	for i, mask := 0, in.DlightMask; mask != 0; i, mask = i+1, mask>>1 {
		if mask&1 == 0 {
			continue
		}
		first := len(pl.Stages)
		light := pl.addStage()
		light.Env = envModulate
		light.Image = p.DlightImage
		light.RGBGen.Kind = material.RGBConst
		light.AlphaGen.Kind = material.AlphaConst
		light.Color = in.dlight(i).Color.WithAlpha(255)
		light.TCGen = material.TCGen{Kind: material.TCDlight, Index: num}
		light.IsConst = true

		tex := pl.addStage()
		tex.Env = envModulate
		if p.Caps.DoubleModulateLM {
			tex.Env = envModulate2
		}
		tex.Image = prim.Image
		if p.Settings.LightmapOnly {
			tex.Image = nil
		}
		tex.RGBGen.Kind = material.RGBConst
		tex.AlphaGen.Kind = material.AlphaConst
		tex.Color = color.White
		tex.TCGen = material.TCGen{Kind: material.TCTexture}
		tex.TcMods = prim.TcMods
		tex.IsConst, tex.IsIdentity = true, true

		pl.addPass(material.BlendAdd|material.DepthEqual, first, 2)
		p.trace("postlight pass", zap.Int("dlight", i), zap.Stringer("env", tex.Env),
			zap.String("texture", texture.DisplayName(tex.Image)))
		num++
	}
}

// addFogPass appends the fog volume pass.
func (p *Planner) addFogPass(in *Input) {
	if p.Settings.NoFog {
		return
	}
	var fogColor color.Color
	if in.View != nil {
		if f := in.View.Fog(in.FogNum); f != nil {
			fogColor = f.Color
		}
	}
	state := material.BlendAlpha
	if in.Shader.Sort <= material.SortOpaque {
		state |= material.DepthEqual
	}
	pl := &p.plan
	first := len(pl.Stages)
	st := pl.addStage()
	st.Env = envModulate
	st.Image = p.FogImage
	st.RGBGen.Kind = material.RGBConst
	st.AlphaGen.Kind = material.AlphaConst
	st.Color = fogColor
	st.TCGen = material.TCGen{Kind: material.TCFog}
	st.IsConst = true
	pl.addPass(state, first, 1)
	p.trace("fog pass", zap.Int("fog", in.FogNum), zap.Stringer("color", fogColor))
}
