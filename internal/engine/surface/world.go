package surface

import (
	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/lighting"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Planar is a flat world face. All vertexes share the plane normal.
type Planar struct {
	Plane   math.Plane
	Verts   []Vertex
	Indexes []uint32
	// LightmapWidth is the width of the face's lightmap block in texels.
	LightmapWidth int
	// Axis is the texture axis pair, when the face has one.
	Axis *[2]math.Vec3

	dlightMask uint32
	dlights    []vertexbuf.PlanarDlight
}

// MarkLights projects the candidate dynamic lights onto the face.
func (p *Planar) MarkLights(dlights []view.Dlight, candidates uint32) {
	p.dlightMask, p.dlights = lighting.ProjectPlanar(p.Plane, dlights, candidates)
}

// DlightMask implements Lit.
func (p *Planar) DlightMask() uint32 { return p.dlightMask }

// Tesselate implements Surface.
func (p *Planar) Tesselate(b *batch.Batch) {
	n := len(p.Verts)
	b.ReserveVerts(n, len(p.Indexes))
	buf := b.Buffer()
	first, idx := buf.Alloc(n, len(p.Indexes))

	ex := buf.AddExtra(n)
	ex.Normal = p.Plane.Normal
	ex.Axis = p.Axis
	ex.LightmapWidth = p.LightmapWidth
	ex.PlanarDlights = p.dlights

	copyVerts(buf, first, p.Verts)
	copyIndexes(buf, first, idx, p.Indexes)
}

// Trisurf is a free-form mesh with one normal per vertex.
type Trisurf struct {
	Verts   []Vertex
	Indexes []uint32

	dlightMask uint32
	dlights    []vertexbuf.TrisurfDlight
}

// MarkLights records the dynamic lights selected by mask.
func (s *Trisurf) MarkLights(dlights []view.Dlight, mask uint32) {
	s.dlightMask = mask
	s.dlights = lighting.ProjectTrisurf(dlights, mask)
}

// DlightMask implements Lit.
func (s *Trisurf) DlightMask() uint32 { return s.dlightMask }

// Tesselate implements Surface.
func (s *Trisurf) Tesselate(b *batch.Batch) {
	n := len(s.Verts)
	b.ReserveVerts(n, len(s.Indexes))
	buf := b.Buffer()
	first, idx := buf.Alloc(n, len(s.Indexes))

	extras := buf.AddExtras(n)
	for i := range extras {
		extras[i].NumVerts = 1
		extras[i].Normal = s.Verts[i].Normal
		extras[i].TrisurfDlights = s.dlights
	}

	copyVerts(buf, first, s.Verts)
	copyIndexes(buf, first, idx, s.Indexes)
}

// Poly is a convex polygon drawn as a triangle fan. Lightmap coordinates are ignored.
type Poly struct {
	Verts []Vertex
}

// Tesselate implements Surface.
func (p *Poly) Tesselate(b *batch.Batch) {
	n := len(p.Verts)
	if n < 3 {
		return
	}
	numIdx := (n - 2) * 3
	b.ReserveVerts(n, numIdx)
	buf := b.Buffer()
	first, idx := buf.Alloc(n, numIdx)

	// zero normal: lit as a point
	buf.AddExtra(n)

	for i, v := range p.Verts {
		buf.Verts[first+i] = v.Pos
		buf.Src[first+i] = vertexbuf.SrcTexCoord{Tex: v.Tex}
		buf.SrcColor[first+i] = v.Color
	}

	out := buf.Indexes[idx : idx+numIdx]
	base := uint32(first)
	for i := 1; i < n-1; i++ {
		k := (i - 1) * 3
		out[k] = base
		out[k+1] = base + uint32(i)
		out[k+2] = base + uint32(i) + 1
	}
}

func copyVerts(buf *vertexbuf.Buffer, first int, verts []Vertex) {
	for i, v := range verts {
		buf.Verts[first+i] = v.Pos
		buf.Src[first+i] = vertexbuf.SrcTexCoord{Tex: v.Tex, LM: v.LM}
		buf.SrcColor[first+i] = v.Color
	}
}

func copyIndexes(buf *vertexbuf.Buffer, first, idx int, indexes []uint32) {
	out := buf.Indexes[idx : idx+len(indexes)]
	base := uint32(first)
	for i, k := range indexes {
		out[i] = k + base
	}
}
