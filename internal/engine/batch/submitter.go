package batch

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Unit is the binding of one texture unit in a pass.
type Unit struct {
	Image     *texture.Image
	Env       combiner.TexEnv
	EnvColor  color.Color
	TexCoords []math.Vec2
}

// Pass is one draw call over the batch geometry. The slices alias the batch
// arena and are only valid until DrawPass returns.
type Pass struct {
	State material.GLState
	Units []Unit
	// Colors holds one color per vertex; nil selects Color for all of them.
	Colors []color.Color
	Color  color.Color
}

// Submitter issues the draw calls of a flush.
type Submitter interface {
	// Begin2D switches to a pixel-aligned orthographic projection.
	Begin2D(width, height int)
	// Begin3D loads the projection and camera of v.
	Begin3D(v *view.View)
	// SetEntity loads the transform of e; nil selects the world.
	SetEntity(v *view.View, e *view.Entity)

	BeginBatch(sh *material.Shader, verts []math.Vec3, indexes []uint32)
	DrawPass(p *Pass)
	EndBatch()
}
