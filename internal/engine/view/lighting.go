package view

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Lighting evaluates diffuse lighting for rgbGen lightingDiffuse.
// LightEntity is called once per flush before Diffuse is used for its vertices.
type Lighting interface {
	LightEntity(v *View, e *Entity)
	// Diffuse returns the lit color of a vertex with the given entity-space normal,
	// scaled by weight. A zero normal asks for the light at a point.
	Diffuse(normal math.Vec3, weight float32) color.Color
}
