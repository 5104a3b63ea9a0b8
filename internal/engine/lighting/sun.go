// Package lighting evaluates entity lighting and projects dynamic lights onto surfaces.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to a light direction.
// Longitude rotates around the up (Z) axis, latitude is elevation from the horizon.
// The result points towards the sun.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
		Y: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Z: float32(gomath.Sin(latRad)),
	}
}

// Sun is a directional light with an ambient term. Dynamic lights near the
// entity origin are folded into the ambient term by LightEntity.
type Sun struct {
	Dir     math.Vec3
	Color   [3]float32
	Ambient [3]float32

	localDir math.Vec3
	ambient  [3]float32
}

// NewSun creates a white sun at the given angles.
func NewSun(longitude, latitude float32) *Sun {
	return &Sun{
		Dir:     SunDirection(longitude, latitude),
		Color:   [3]float32{0.75, 0.75, 0.75},
		Ambient: [3]float32{0.25, 0.25, 0.25},
	}
}

// LightEntity implements view.Lighting.
func (s *Sun) LightEntity(v *view.View, e *view.Entity) {
	s.localDir = s.Dir
	origin := e.Coord.Origin
	if !e.WorldMatrix {
		s.localDir = e.Coord.TransformVector(s.Dir)
	}
	s.ambient = s.Ambient
	for _, dl := range v.Dlights {
		if dl.Intensity <= 0 {
			continue
		}
		f := 1 - dl.Origin.Distance(origin)/dl.Intensity
		if f <= 0 {
			continue
		}
		c := dl.Color.Floats()
		for i := 0; i < 3; i++ {
			s.ambient[i] += c[i] * f
		}
	}
}

// Diffuse implements view.Lighting.
func (s *Sun) Diffuse(normal math.Vec3, weight float32) color.Color {
	d := float32(0.5)
	if !normal.IsZero() {
		d = normal.Dot(s.localDir)
		if d < 0 {
			d = 0
		}
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		rgb[i] = math.Round((s.ambient[i] + s.Color[i]*d) * weight * 255)
	}
	r, g, b := color.Normalize255(rgb[0], rgb[1], rgb[2])
	return color.Color{uint8(r), uint8(g), uint8(b), 255}
}
