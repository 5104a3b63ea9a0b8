package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

func TestSunDirection(t *testing.T) {
	up := SunDirection(0, 90)
	assert.InDelta(t, 1, up.Z, 1e-6)

	east := SunDirection(90, 0)
	assert.InDelta(t, 1, east.Y, 1e-6)
	assert.InDelta(t, 0, east.X, 1e-6)
}

func TestSunDiffuse(t *testing.T) {
	s := &Sun{
		Dir:     math.Vec3{Z: 1},
		Color:   [3]float32{0.5, 0.5, 0.5},
		Ambient: [3]float32{0.25, 0.25, 0.25},
	}
	v := view.New(640, 480)
	ent := view.NewWorldEntity()
	s.LightEntity(v, &ent)

	lit := s.Diffuse(math.Vec3{Z: 1}, 1)
	assert.Equal(t, color.Color{191, 191, 191, 255}, lit)

	back := s.Diffuse(math.Vec3{Z: -1}, 1)
	assert.Equal(t, color.Color{64, 64, 64, 255}, back)

	half := s.Diffuse(math.Vec3{Z: 1}, 0.5)
	assert.Equal(t, uint8(96), half[0])
}

func TestSunDlightsBrightenAmbient(t *testing.T) {
	s := &Sun{Dir: math.Vec3{Z: 1}}
	v := view.New(640, 480)
	v.Dlights = []view.Dlight{
		{Origin: math.Vec3{X: 50}, Color: color.Red, Intensity: 100},
		{Origin: math.Vec3{X: 500}, Color: color.Green, Intensity: 100},
	}
	ent := view.NewWorldEntity()
	s.LightEntity(v, &ent)

	c := s.Diffuse(math.Vec3{}, 1)
	assert.Equal(t, uint8(128), c[0])
	assert.Zero(t, c[1])
}

func TestListLimits(t *testing.T) {
	l := NewList()
	assert.False(t, l.Add(view.Dlight{}))
	for i := 0; i < view.MaxDlights; i++ {
		require.True(t, l.Add(view.Dlight{Intensity: 1}))
	}
	assert.False(t, l.Add(view.Dlight{Intensity: 1}))
	assert.Len(t, l.Lights(), view.MaxDlights)
	l.Clear()
	assert.Empty(t, l.Lights())
}

func TestAxesArePerpendicular(t *testing.T) {
	for _, n := range []math.Vec3{{Z: 1}, {X: 1}, {Y: -1}, math.Vec3{X: 1, Y: 1, Z: 0.2}.Normalize()} {
		a := Axes(n)
		assert.InDelta(t, 0, a[0].Dot(n), 1e-5)
		assert.InDelta(t, 0, a[1].Dot(n), 1e-5)
		assert.InDelta(t, 0, a[0].Dot(a[1]), 1e-5)
		assert.InDelta(t, 1, a[0].Length(), 1e-5)
	}
}

func TestProjectPlanar(t *testing.T) {
	floor := math.Plane{Normal: math.Vec3{Z: 1}}
	dlights := []view.Dlight{
		{Origin: math.Vec3{X: 10, Z: 30}, Intensity: 50},
		{Origin: math.Vec3{Z: -10}, Intensity: 50},
		{Origin: math.Vec3{Z: 80}, Intensity: 50},
		{Origin: math.Vec3{Y: 5, Z: 0}, Intensity: 20},
	}
	mask, proj := ProjectPlanar(floor, dlights, 0xF)
	assert.Equal(t, uint32(0b1001), mask)
	require.Len(t, proj, 2)
	assert.InDelta(t, 40, proj[0].Radius, 1e-4)
	assert.InDelta(t, 20, proj[1].Radius, 1e-4)

	p := math.Vec3{X: 10}
	s := (p.Dot(proj[0].Axis[0]) - proj[0].Pos[0]) / (2 * proj[0].Radius)
	assert.InDelta(t, 0, s, 1e-5, "light center projects to the middle of the falloff image")

	mask, _ = ProjectPlanar(floor, dlights, 0x8)
	assert.Equal(t, uint32(0x8), mask)
}

func TestProjectTrisurf(t *testing.T) {
	dlights := []view.Dlight{{Intensity: 1}, {Intensity: 2}, {Intensity: 3}}
	out := ProjectTrisurf(dlights, 0b101)
	require.Len(t, out, 2)
	assert.Equal(t, float32(3), out[1].Radius)
}
