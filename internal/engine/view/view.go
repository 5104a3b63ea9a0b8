// Package view holds the per-frame rendering context read by the backend:
// camera, time, entities, dynamic lights, lightstyles and fog volumes.
package view

import (
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Limits.
const (
	MaxDlights     = 32
	MaxLightStyles = 256
	MaxFogs        = 256
)

// WorldEntity is the entity index of the static world.
const WorldEntity = 0

// Dlight is a dynamic light.
type Dlight struct {
	Origin    math.Vec3
	Color     color.Color
	Intensity float32
}

// Fog is a fog volume. When HasSurface is set the volume is bounded by Surface;
// Surface.Distance is positive inside the volume.
type Fog struct {
	Color         color.Color
	TexCoordScale float32
	HasSurface    bool
	Surface       math.Plane
}

// View is the frame context: camera and world state shared by all surfaces.
type View struct {
	Time     float32
	Coord    math.Coords
	FovScale float32
	// Width and Height are the screen size in pixels.
	Width, Height int

	Dlights     []Dlight
	LightStyles [MaxLightStyles]uint8
	// Fogs is indexed by fog number; entry 0 means "no fog".
	Fogs     []Fog
	FogColor [3]float32
}

// New returns a view at the world origin with all lightstyles at full brightness.
func New(width, height int) *View {
	v := &View{
		Coord:    math.IdentityCoords(),
		FovScale: 1,
		Width:    width,
		Height:   height,
		Fogs:     make([]Fog, 1),
	}
	for i := range v.LightStyles {
		v.LightStyles[i] = 255
	}
	return v
}

// Fog returns the fog volume with the given number, or nil for 0 and unknown numbers.
func (v *View) Fog(num int) *Fog {
	if num <= 0 || num >= len(v.Fogs) {
		return nil
	}
	return &v.Fogs[num]
}

// AddFog appends a fog volume and returns its number.
func (v *View) AddFog(f Fog) int {
	if len(v.Fogs) == 0 {
		v.Fogs = make([]Fog, 1)
	}
	v.Fogs = append(v.Fogs, f)
	return len(v.Fogs) - 1
}

// DlightMask returns the bit mask of all active dynamic lights.
func (v *View) DlightMask() uint32 {
	n := len(v.Dlights)
	if n >= MaxDlights {
		return ^uint32(0)
	}
	return 1<<uint(n) - 1
}
