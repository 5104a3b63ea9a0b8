package math

// Coords is an orthonormal coordinate system: an origin and three axes.
// Axis[0] is forward, Axis[1] left, Axis[2] up (the Quake convention).
type Coords struct {
	Origin Vec3
	Axis   [3]Vec3
}

// IdentityCoords returns the world coordinate system.
func IdentityCoords() Coords {
	return Coords{Axis: [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// TransformPoint converts a world point into local coordinates.
func (c Coords) TransformPoint(p Vec3) Vec3 {
	d := p.Sub(c.Origin)
	return Vec3{d.Dot(c.Axis[0]), d.Dot(c.Axis[1]), d.Dot(c.Axis[2])}
}

// UnTransformPoint converts a local point back into world coordinates.
func (c Coords) UnTransformPoint(p Vec3) Vec3 {
	return c.Origin.MA(p.X, c.Axis[0]).MA(p.Y, c.Axis[1]).MA(p.Z, c.Axis[2])
}

// TransformVector rotates a world direction into local coordinates.
func (c Coords) TransformVector(v Vec3) Vec3 {
	return Vec3{v.Dot(c.Axis[0]), v.Dot(c.Axis[1]), v.Dot(c.Axis[2])}
}
