// Package surface copies the native vertex formats of world and model surfaces
// into the batch.
package surface

import (
	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Surface is anything the scene can draw with a shader.
type Surface interface {
	// Tesselate appends the surface to b for b's current shader and entity.
	Tesselate(b *batch.Batch)
}

// Lit is implemented by surfaces that track the dynamic lights touching them.
type Lit interface {
	DlightMask() uint32
}

// Vertex is the stored vertex format of world surfaces.
type Vertex struct {
	Pos   math.Vec3
	Tex   math.Vec2
	LM    math.Vec2
	Color color.Color
	// Normal is read by free-form meshes only.
	Normal math.Vec3
}

func entityOf(b *batch.Batch) view.Entity {
	if e := b.Entity(); e != nil {
		return *e
	}
	return view.NewWorldEntity()
}
