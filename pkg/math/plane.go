package math

// Plane is the set of points p with dot(p, Normal) == Dist.
type Plane struct {
	Normal Vec3
	Dist   float32
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p Vec3) float32 {
	return p.Dot(pl.Normal) - pl.Dist
}
