package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Mul returns the component-wise product.
func (v Vec2) Mul(other Vec2) Vec2 {
	return Vec2{v.X * other.X, v.Y * other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Near reports whether both components differ by at most eps.
func (v Vec2) Near(other Vec2, eps float32) bool {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx <= eps && dx >= -eps && dy <= eps && dy >= -eps
}
