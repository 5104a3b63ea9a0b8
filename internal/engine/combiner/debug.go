package combiner

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

// showFillRate replaces the stages with a red heat layer (16 per shader stage) and a wireframe.
func (p *Planner) showFillRate(sh *material.Shader) {
	if !p.Settings.ShowFillRate {
		return
	}
	pl := &p.plan
	pl.Stages = pl.Stages[:0]
	heat := min(len(sh.Stages)*16, 255)

	st := pl.addStage()
	st.RGBGen.Kind = material.RGBConst
	st.AlphaGen.Kind = material.AlphaConst
	st.Color = color.RGB255(uint8(heat), 0, 0)
	st.State = material.BlendAdd | material.NoDepthTest

	st = pl.addStage()
	st.RGBGen.Kind = material.RGBConst
	st.AlphaGen.Kind = material.AlphaConst
	st.Color = color.RGB255(0, 10, 10)
	st.State = material.BlendAdd | material.NoDepthTest | material.PolygonLine
}

// debugLight applies the fullbright and lightmap-only visualizations.
func (p *Planner) debugLight(in *Input) {
	fullbright, lightmap := p.Settings.Fullbright, p.Settings.LightmapOnly
	sh := in.Shader
	pl := &p.plan

	switch {
	case fullbright && lightmap:
		if in.Is2D {
			return
		}
		for i := range pl.Stages {
			pl.Stages[i].State |= material.PolygonLine
		}

	case fullbright:
		for i := range pl.Stages {
			st := &pl.Stages[i]
			vertexLit := sh.LightmapNumber == material.LightmapVertex &&
				(st.RGBGen.Kind == material.RGBVertex || st.RGBGen.Kind == material.RGBExactVertex)
			switch {
			case sh.LightmapNumber >= 0 && st.TCGen.Kind == material.TCLightmap:
				st.Image = nil
				st.RGBGen.Kind = material.RGBConst
				st.Color = st.Color.WithWhiteRGB()
			case vertexLit || st.RGBGen.Kind == material.RGBDiffuse:
				st.RGBGen.Kind = material.RGBConst
				st.Color = st.Color.WithWhiteRGB()
			}
		}

	case lightmap && sh.LightmapNumber >= 0:
		for i := range pl.Stages {
			st := &pl.Stages[i]
			if i > 0 && st.TCGen.Kind == material.TCLightmap {
				// a lightmap in a later stage must not double the texture below it
				if st.State.Blend() == material.BlendModulate2 {
					st.State = st.State.WithBlend(material.BlendModulate)
				}
				continue
			}
			if st.TCGen.IsLighting() {
				continue
			}
			st.RGBGen.Kind = material.RGBIdentity
			if i > 0 {
				st.State = material.Blend(material.FactorZero, material.FactorOne)
			}
		}

	case lightmap:
		gen := material.RGBNone
		if sh.LightmapNumber == material.LightmapVertex {
			gen = material.RGBVertex
		} else {
			for i := range pl.Stages {
				if pl.Stages[i].RGBGen.Kind == material.RGBDiffuse {
					gen = material.RGBDiffuse
					break
				}
			}
		}
		if gen == material.RGBNone || len(pl.Stages) == 0 {
			return
		}
		pl.Stages = pl.Stages[:1]
		st := &pl.Stages[0]
		st.RGBGen.Kind = gen
		st.TCGen = material.TCGen{Kind: material.TCTexture}
		st.TcMods = nil
		st.Image = nil
	}
}
