// Package deform applies shader vertex deformations to the batch before
// attributes are generated.
package deform

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// ErrNotQuads is reported when a sprite deform gets geometry that is not made of quads.
var ErrNotQuads = errors.New("surface is not made of quads")

// QuadError names the deform and shader that could not be applied.
type QuadError struct {
	Deform material.DeformKind
	Shader string
	Verts  int
	Inds   int
}

func (e *QuadError) Error() string {
	return fmt.Sprintf("%s in %s: %d verts, %d indexes: %v", e.Deform, e.Shader, e.Verts, e.Inds, ErrNotQuads)
}

func (e *QuadError) Unwrap() error { return ErrNotQuads }

// Apply runs the shader's deforms over the active vertexes in order. Deforms whose
// preconditions fail are skipped; their errors are joined into the result.
func Apply(buf *vertexbuf.Buffer, sh *material.Shader, v *view.View, ent *view.Entity) error {
	var errs []error
	for i := range sh.Deforms {
		d := &sh.Deforms[i]
		switch d.Kind {
		case material.DeformWave:
			wave(buf, d, v.Time)
		case material.DeformMove:
			f := d.Wave.Eval(v.Time)
			delta := d.Move.Scale(f)
			verts := buf.ActiveVerts()
			for j := range verts {
				verts[j] = verts[j].Add(delta)
			}
		case material.DeformBulge:
			bulge(buf, d, v.Time)
		case material.DeformAutosprite, material.DeformAutosprite2:
			if !isQuads(buf) {
				errs = append(errs, &QuadError{Deform: d.Kind, Shader: sh.Name, Verts: buf.NumVerts, Inds: buf.NumIndexes})
				continue
			}
			if d.Kind == material.DeformAutosprite {
				autosprite(buf, v, ent)
			} else {
				autosprite2(buf, v, ent)
			}
			for j := range buf.Extras() {
				buf.Extra[j].Normal = math.Vec3{}
			}
		}
	}
	return errors.Join(errs...)
}

func isQuads(buf *vertexbuf.Buffer) bool {
	return buf.NumVerts&3 == 0 && buf.NumIndexes == buf.NumVerts/2*3
}

func wave(buf *vertexbuf.Buffer, d *material.Deform, t float32) {
	w := d.Wave
	phase := w.Freq*t + w.Phase
	i := 0
	for _, ex := range buf.Extras() {
		norm := ex.Normal
		if w.Amp != 0 {
			for k := 0; k < ex.NumVerts; k++ {
				p := buf.Verts[i]
				f := math.Periodic(w.Func, phase+d.WaveDiv*p.Sum())*w.Amp + w.Base
				buf.Verts[i] = p.MA(f, norm)
				i++
			}
			continue
		}
		// constant offset along the normal: shell effects
		delta := norm.Scale(w.Base)
		for k := 0; k < ex.NumVerts; k++ {
			buf.Verts[i] = buf.Verts[i].Add(delta)
			i++
		}
	}
}

func bulge(buf *vertexbuf.Buffer, d *material.Deform, t float32) {
	f0 := t * d.BulgeSpeed
	i := 0
	for _, ex := range buf.Extras() {
		for k := 0; k < ex.NumVerts; k++ {
			u := buf.Src[i].Tex.X
			f := math.SinPeriod((f0+u*d.BulgeWidth)/(2*gomath.Pi)) * d.BulgeHeight
			buf.Verts[i] = buf.Verts[i].MA(f, ex.Normal)
			i++
		}
	}
}

// spriteView returns the viewer origin and up axis in the entity's space.
func spriteView(v *view.View, ent *view.Entity) (math.Vec3, math.Vec3) {
	if ent == nil || ent.WorldMatrix {
		return v.Coord.Origin, v.Coord.Axis[2]
	}
	return ent.Coord.Origin, ent.Coord.TransformVector(v.Coord.Axis[2])
}

var spriteTexCoords = [4]math.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}

func autosprite(buf *vertexbuf.Buffer, v *view.View, ent *view.Entity) {
	viewOrg, up := spriteView(v, ent)
	for i := 0; i < buf.NumVerts; i += 4 {
		q := buf.Verts[i : i+4]
		center := q[0].Add(q[1]).Add(q[2]).Add(q[3]).Scale(0.25)
		// assume the source quad is square
		tmp := q[0].Sub(center)
		radius := float32(gomath.Sqrt(float64(tmp.Dot(tmp) / 2)))

		toViewer := viewOrg.Sub(center).Normalize()
		left := toViewer.Cross(up)

		l := center.MA(radius, left)
		q[0] = l.MA(radius, up)
		q[1] = l.MA(-radius, up)
		r := center.MA(-radius, left)
		q[2] = r.MA(-radius, up)
		q[3] = r.MA(radius, up)

		for k := 0; k < 4; k++ {
			buf.Src[i+k].Tex = spriteTexCoords[k]
		}
		idx := buf.Indexes[i/4*6:]
		base := uint32(i)
		idx[0], idx[1], idx[2] = base, base+2, base+1
		idx[3], idx[4], idx[5] = base, base+3, base+2
	}
}

// quadEdges connects every vertex of a quad with every other one.
var quadEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

func autosprite2(buf *vertexbuf.Buffer, v *view.View, ent *view.Entity) {
	viewOrg, _ := spriteView(v, ent)
	for i := 0; i < buf.NumVerts; i += 4 {
		q := buf.Verts[i : i+4]

		// two shortest edges are the ends of the beam
		dist1, dist2 := float32(gomath.MaxFloat32), float32(gomath.MaxFloat32)
		edge1, edge2 := 0, 0
		for j, e := range quadEdges {
			d := q[e[0]].Sub(q[e[1]])
			dist := d.Dot(d)
			if dist < dist1 {
				dist2, edge2 = dist1, edge1
				dist1, edge1 = dist, j
			} else if dist < dist2 {
				dist2, edge2 = dist, j
			}
		}
		e1, e2 := quadEdges[edge1], quadEdges[edge2]
		pt1 := q[e1[0]].Add(q[e1[1]]).Scale(0.5)
		pt2 := q[e2[0]].Add(q[e2[1]]).Scale(0.5)

		var prev, next math.Coords
		prev.Origin = pt2
		prev.Axis[0] = pt1.Sub(pt2).Normalize()
		prev.Axis[2] = prev.Axis[0].Cross(q[e2[1]].Sub(q[e2[0]])).Normalize()
		prev.Axis[1] = prev.Axis[0].Cross(prev.Axis[2])

		next.Origin = prev.Origin
		next.Axis[0] = prev.Axis[0]
		next.Axis[1] = next.Axis[0].Cross(pt2.Sub(viewOrg)).Normalize()
		next.Axis[2] = next.Axis[0].Cross(next.Axis[1])
		next.Axis[1] = next.Axis[1].Negate()

		for k := range q {
			q[k] = next.UnTransformPoint(prev.TransformPoint(q[k]))
		}
	}
}
