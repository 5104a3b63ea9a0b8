package view

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// EntityFlags modify how an entity is drawn.
type EntityFlags uint32

// Entity flags.
const (
	// FlagFullbright disables diffuse lighting.
	FlagFullbright EntityFlags = 1 << iota
	// FlagDepthHack squeezes the depth range so the entity is drawn over the world.
	FlagDepthHack
)

// Entity is an instance of a model placed in the world.
type Entity struct {
	Coord math.Coords
	// WorldMatrix marks entities already expressed in world coordinates.
	WorldMatrix bool
	Mirror      bool
	Flags       EntityFlags
	ShaderColor color.Color

	Frame    int
	OldFrame int
	BackLerp float32
	// DrawScale multiplies model vertex positions.
	DrawScale float32
	Time      float32

	// ModelViewOrg is the view origin in entity space, set by Prepare.
	ModelViewOrg math.Vec3
}

// NewWorldEntity returns the entity standing for the static world.
func NewWorldEntity() Entity {
	return Entity{
		Coord:       math.IdentityCoords(),
		WorldMatrix: true,
		ShaderColor: color.White,
		DrawScale:   1,
	}
}

// Prepare computes the view-dependent fields for v.
func (e *Entity) Prepare(v *View) {
	if e.WorldMatrix {
		e.ModelViewOrg = v.Coord.Origin
		return
	}
	e.ModelViewOrg = e.Coord.TransformPoint(v.Coord.Origin)
}

// Has reports whether all flags in f are set.
func (e *Entity) Has(f EntityFlags) bool {
	return e.Flags&f == f
}

// ModelMatrix returns the entity transform, or identity for world-aligned entities.
func (e *Entity) ModelMatrix() math.Mat4 {
	if e.WorldMatrix {
		return math.Identity()
	}
	return math.Model(e.Coord)
}
