package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// List collects the dynamic lights of a frame.
type List struct {
	lights []view.Dlight
}

// NewList creates an empty list.
func NewList() *List {
	return &List{lights: make([]view.Dlight, 0, view.MaxDlights)}
}

// Clear removes all lights.
func (l *List) Clear() {
	l.lights = l.lights[:0]
}

// Add appends a light. It returns false when the list is full or the light has no radius.
func (l *List) Add(dl view.Dlight) bool {
	if len(l.lights) >= view.MaxDlights || dl.Intensity <= 0 {
		return false
	}
	l.lights = append(l.lights, dl)
	return true
}

// Lights returns the collected lights.
func (l *List) Lights() []view.Dlight {
	return l.lights
}

// Axes returns two unit vectors perpendicular to n and to each other.
func Axes(n math.Vec3) [2]math.Vec3 {
	var ref math.Vec3
	ax, ay, az := abs(n.X), abs(n.Y), abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		ref = math.Vec3{X: 1}
	default:
		ref = math.Vec3{Z: 1}
	}
	a0 := n.Cross(ref).Normalize()
	a1 := n.Cross(a0).Normalize()
	return [2]math.Vec3{a0, a1}
}

// ProjectPlanar projects the lights selected by candidates onto a plane.
// It returns the mask of lights that reach the plane and their projections,
// ordered by bit number.
func ProjectPlanar(plane math.Plane, dlights []view.Dlight, candidates uint32) (uint32, []vertexbuf.PlanarDlight) {
	var mask uint32
	var out []vertexbuf.PlanarDlight
	axis := Axes(plane.Normal)
	for i, dl := range dlights {
		if i >= view.MaxDlights || candidates&(1<<uint(i)) == 0 {
			continue
		}
		dist := plane.Distance(dl.Origin)
		if dist < 0 || dist >= dl.Intensity {
			continue
		}
		radius := sqrt(dl.Intensity*dl.Intensity - dist*dist)
		mask |= 1 << uint(i)
		out = append(out, vertexbuf.PlanarDlight{
			Axis:   axis,
			Pos:    [2]float32{dl.Origin.Dot(axis[0]), dl.Origin.Dot(axis[1])},
			Radius: radius,
		})
	}
	return mask, out
}

// ProjectTrisurf returns the lights selected by mask for a free-form mesh, ordered by bit number.
func ProjectTrisurf(dlights []view.Dlight, mask uint32) []vertexbuf.TrisurfDlight {
	var out []vertexbuf.TrisurfDlight
	for i, dl := range dlights {
		if i >= view.MaxDlights || mask&(1<<uint(i)) == 0 {
			continue
		}
		out = append(out, vertexbuf.TrisurfDlight{Origin: dl.Origin, Radius: dl.Intensity})
	}
	return out
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func sqrt(f float32) float32 {
	return float32(gomath.Sqrt(float64(f)))
}
