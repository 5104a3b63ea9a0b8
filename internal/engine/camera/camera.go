// Package camera provides the viewer camera. The world is Z-up.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-gl/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the ground plane, radians
	Yaw      float32 // Heading around Z, radians; 0 looks along +X

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	TurnSpeed float32 // radians per second
	MoveSpeed float32 // fraction of Distance per second
	ZoomSpeed float32 // fraction of Distance per second
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:    200,
		Pitch:       0.6,
		MinDistance: 50,
		MaxDistance: 5000,
		MinPitch:    0.1,
		MaxPitch:    1.5,
		TurnSpeed:   1.5,
		MoveSpeed:   1,
		ZoomSpeed:   1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Center.MA(c.Distance, c.back())
}

// back is the unit vector from the center toward the camera.
func (c *OrbitCamera) back() math.Vec3 {
	sp, cp := gomath.Sincos(float64(c.Pitch))
	sy, cy := gomath.Sincos(float64(c.Yaw))
	return math.Vec3{X: float32(-cp * cy), Y: float32(-cp * sy), Z: float32(sp)}
}

// Coords returns the camera frame: origin at Position, axes forward, left, up.
func (c *OrbitCamera) Coords() math.Coords {
	fwd := c.back().Negate()
	sy, cy := gomath.Sincos(float64(c.Yaw))
	left := math.Vec3{X: float32(-sy), Y: float32(cy)}
	return math.Coords{
		Origin: c.Position(),
		Axis:   [3]math.Vec3{fwd, left, fwd.Cross(left)},
	}
}

// Turn rotates the heading; positive turns left.
func (c *OrbitCamera) Turn(dir, dt float32) {
	c.Yaw += dir * c.TurnSpeed * dt
	c.Yaw = float32(gomath.Remainder(float64(c.Yaw), 2*gomath.Pi))
}

// Zoom moves toward the center for positive dir.
func (c *OrbitCamera) Zoom(dir, dt float32) {
	c.Distance -= dir * c.Distance * c.ZoomSpeed * dt
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// Tilt changes the pitch within its limits.
func (c *OrbitCamera) Tilt(delta float32) {
	c.Pitch = min(max(c.Pitch+delta, c.MinPitch), c.MaxPitch)
}

// Move pans the center along the ground; speed scales with distance.
func (c *OrbitCamera) Move(forward, right, dt float32) {
	speed := c.Distance * c.MoveSpeed * dt
	sy, cy := gomath.Sincos(float64(c.Yaw))
	c.Center.X += (float32(cy)*forward + float32(sy)*right) * speed
	c.Center.Y += (float32(sy)*forward - float32(cy)*right) * speed
}

// FitToBounds centers the box and backs off far enough to see most of it.
func (c *OrbitCamera) FitToBounds(mins, maxs math.Vec3) {
	c.Center = mins.Add(maxs).Scale(0.5)
	size := max(maxs.X-mins.X, maxs.Y-mins.Y)
	c.Distance = min(max(size*0.6, c.MinDistance), c.MaxDistance)
	c.Pitch = min(max(0.6, c.MinPitch), c.MaxPitch)
	c.Yaw = gomath.Pi / 4
}
