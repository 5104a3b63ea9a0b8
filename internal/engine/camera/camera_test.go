package camera

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/midgard-gl/pkg/math"
)

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestPositionLevel(t *testing.T) {
	c := NewOrbitCamera()
	c.Pitch, c.Yaw, c.Distance = 0, 0, 100
	c.Center = math.Vec3{X: 10, Y: 20, Z: 30}
	assertVec(t, math.Vec3{X: -90, Y: 20, Z: 30}, c.Position())

	c.Yaw = gomath.Pi / 2
	assertVec(t, math.Vec3{X: 10, Y: -80, Z: 30}, c.Position())
}

func TestCoordsOrthonormal(t *testing.T) {
	c := NewOrbitCamera()
	c.Yaw = 0.7
	co := c.Coords()

	for i, a := range co.Axis {
		assert.InDelta(t, 1, a.Length(), 1e-5, "axis %d", i)
	}
	assert.InDelta(t, 0, co.Axis[0].Dot(co.Axis[1]), 1e-5)
	assert.InDelta(t, 0, co.Axis[0].Dot(co.Axis[2]), 1e-5)
	assert.InDelta(t, 0, co.Axis[1].Dot(co.Axis[2]), 1e-5)
	assert.Positive(t, co.Axis[2].Z, "up axis points up")
	assert.Negative(t, co.Axis[0].Z, "camera looks down")

	// forward from the camera hits the center
	toCenter := c.Center.Sub(co.Origin).Normalize()
	assertVec(t, toCenter, co.Axis[0])
}

func TestZoomClamps(t *testing.T) {
	c := NewOrbitCamera()
	c.Zoom(1, 10)
	assert.Equal(t, c.MinDistance, c.Distance)
	c.Zoom(-1, 1000)
	assert.Equal(t, c.MaxDistance, c.Distance)
}

func TestTiltClamps(t *testing.T) {
	c := NewOrbitCamera()
	c.Tilt(10)
	assert.Equal(t, c.MaxPitch, c.Pitch)
	c.Tilt(-10)
	assert.Equal(t, c.MinPitch, c.Pitch)
}

func TestMove(t *testing.T) {
	c := NewOrbitCamera()
	c.Yaw, c.Distance, c.MoveSpeed = 0, 100, 1

	c.Move(1, 0, 0.5)
	assertVec(t, math.Vec3{X: 50}, c.Center)
	c.Move(0, 1, 0.5)
	assertVec(t, math.Vec3{X: 50, Y: -50}, c.Center)
}

func TestTurnWraps(t *testing.T) {
	c := NewOrbitCamera()
	c.TurnSpeed = 1
	c.Turn(1, 4)
	assert.InDelta(t, 4-2*gomath.Pi, c.Yaw, 1e-5)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.Vec3{}, math.Vec3{X: 1000, Y: 400, Z: 50})
	assertVec(t, math.Vec3{X: 500, Y: 200, Z: 25}, c.Center)
	assert.InDelta(t, 600, c.Distance, 1e-4)

	c.FitToBounds(math.Vec3{}, math.Vec3{X: 10, Y: 10})
	assert.Equal(t, c.MinDistance, c.Distance)
}
