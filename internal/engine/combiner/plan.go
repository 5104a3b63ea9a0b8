package combiner

import (
	"fmt"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
)

// Scratch limits. PostLight adds two stages and one pass per dynamic light.
const (
	MaxRenderStages = material.MaxShaderStages + view.MaxDlights*2
	MaxRenderPasses = material.MaxShaderStages + view.MaxDlights
)

// RenderStage is a stage resolved for one flush.
type RenderStage struct {
	material.Stage
	// Image is the bound image for this flush (nil = white).
	Image *texture.Image
	Env   TexEnv

	IsConst    bool
	IsIdentity bool
	IsDouble   bool
	NoAlpha    bool
}

// RenderPass is one draw call: Count stages starting at First, one per texture unit.
// The first stage supplies the vertex color of the pass.
type RenderPass struct {
	State material.GLState
	First int
	Count int
}

// Plan is the output of the planner. It is overwritten by the next Compute.
type Plan struct {
	Shader *material.Shader
	Stages []RenderStage
	Passes []RenderPass
}

// PassStages returns the stages bound by pass i.
func (p *Plan) PassStages(i int) []RenderStage {
	pass := p.Passes[i]
	return p.Stages[pass.First : pass.First+pass.Count]
}

// ColorStage returns the stage whose color generator feeds pass i.
func (p *Plan) ColorStage(i int) *RenderStage {
	return &p.Stages[p.Passes[i].First]
}

func (p *Plan) reset(sh *material.Shader) {
	p.Shader = sh
	clear(p.Stages[:cap(p.Stages)])
	p.Stages = p.Stages[:0]
	p.Passes = p.Passes[:0]
}

// addStage appends a zeroed stage; the stage limit is fatal.
func (p *Plan) addStage() *RenderStage {
	if len(p.Stages) >= MaxRenderStages {
		panic(&StageOverflowError{Shader: p.Shader.Name, Stages: len(p.Stages) + 1})
	}
	p.Stages = append(p.Stages, RenderStage{})
	return &p.Stages[len(p.Stages)-1]
}

func (p *Plan) addPass(state material.GLState, first, count int) *RenderPass {
	if len(p.Passes) >= MaxRenderPasses {
		panic(&StageOverflowError{Shader: p.Shader.Name, Stages: len(p.Stages), Passes: len(p.Passes) + 1})
	}
	p.Passes = append(p.Passes, RenderPass{State: state, First: first, Count: count})
	return &p.Passes[len(p.Passes)-1]
}

// StageOverflowError reports a shader that resolves to more stages or passes than the scratch holds.
type StageOverflowError struct {
	Shader string
	Stages int
	Passes int
}

func (e *StageOverflowError) Error() string {
	if e.Passes > 0 {
		return fmt.Sprintf("combiner: %s: too many render passes (%d > %d)", e.Shader, e.Passes, MaxRenderPasses)
	}
	return fmt.Sprintf("combiner: %s: too many render stages (%d > %d)", e.Shader, e.Stages, MaxRenderStages)
}
