// Package vertexbuf is the fixed-capacity vertex batch shared by the tesselators,
// the attribute generators and the GL submitter.
package vertexbuf

import (
	"fmt"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Default capacities.
const (
	DefaultMaxVertexes = 4096
	DefaultMaxIndexes  = 6 * DefaultMaxVertexes
)

// SrcTexCoord is the stored texture and lightmap coordinate of a vertex.
type SrcTexCoord struct {
	Tex math.Vec2
	LM  math.Vec2
}

// PlanarDlight is a dynamic light projected onto a plane: texcoords are
// (dot(v, Axis[i]) - Pos[i]) / (2*Radius) + 0.5.
type PlanarDlight struct {
	Axis   [2]math.Vec3
	Pos    [2]float32
	Radius float32
}

// TrisurfDlight is a dynamic light affecting a free-form mesh.
type TrisurfDlight struct {
	Origin math.Vec3
	Radius float32
}

// Extra describes a run of NumVerts consecutive vertices sharing a facet normal
// and light projection data. Runs partition the active vertices in order.
type Extra struct {
	NumVerts int
	Normal   math.Vec3
	// Axis is the optional texture axis pair used by environment mapping.
	Axis          *[2]math.Vec3
	LightmapWidth int
	// At most one of PlanarDlights and TrisurfDlights is set; both are indexed
	// by the surface's active dynamic light number.
	PlanarDlights  []PlanarDlight
	TrisurfDlights []TrisurfDlight
}

// Buffer is the batch arena. Slices are allocated once at full capacity;
// the counters select the active part.
type Buffer struct {
	maxVerts   int
	maxIndexes int

	Verts    []math.Vec3
	Src      []SrcTexCoord
	SrcColor []color.Color
	Color    []color.Color
	TexCoord [][]math.Vec2
	Indexes  []uint32
	Extra    []Extra

	NumVerts   int
	NumIndexes int
	NumExtra   int
}

// New allocates a buffer. units is the number of texture coordinate arrays.
func New(maxVerts, maxIndexes, units int) *Buffer {
	if maxVerts <= 0 {
		maxVerts = DefaultMaxVertexes
	}
	if maxIndexes <= 0 {
		maxIndexes = DefaultMaxIndexes
	}
	if units < 1 {
		units = 1
	}
	b := &Buffer{
		maxVerts:   maxVerts,
		maxIndexes: maxIndexes,
		Verts:      make([]math.Vec3, maxVerts),
		Src:        make([]SrcTexCoord, maxVerts),
		SrcColor:   make([]color.Color, maxVerts),
		Color:      make([]color.Color, maxVerts),
		TexCoord:   make([][]math.Vec2, units),
		Indexes:    make([]uint32, maxIndexes),
		Extra:      make([]Extra, maxVerts),
	}
	for i := range b.TexCoord {
		b.TexCoord[i] = make([]math.Vec2, maxVerts)
	}
	return b
}

// MaxVerts returns the vertex capacity.
func (b *Buffer) MaxVerts() int { return b.maxVerts }

// MaxIndexes returns the index capacity.
func (b *Buffer) MaxIndexes() int { return b.maxIndexes }

// Units returns the number of texture coordinate arrays.
func (b *Buffer) Units() int { return len(b.TexCoord) }

// Reset empties the batch.
func (b *Buffer) Reset() {
	b.NumVerts = 0
	b.NumIndexes = 0
	b.NumExtra = 0
}

// Empty reports whether no indexes are queued.
func (b *Buffer) Empty() bool {
	return b.NumIndexes == 0
}

// Fits reports whether verts and inds more elements can be appended.
func (b *Buffer) Fits(verts, inds int) bool {
	return b.NumVerts+verts <= b.maxVerts && b.NumIndexes+inds <= b.maxIndexes
}

// Alloc appends verts vertices and inds indexes and returns the first of each.
// The caller must have checked Fits.
func (b *Buffer) Alloc(verts, inds int) (firstVert, firstIndex int) {
	firstVert, firstIndex = b.NumVerts, b.NumIndexes
	b.NumVerts += verts
	b.NumIndexes += inds
	return firstVert, firstIndex
}

// AddExtra appends one run descriptor and returns it for filling.
func (b *Buffer) AddExtra(numVerts int) *Extra {
	ex := &b.Extra[b.NumExtra]
	*ex = Extra{NumVerts: numVerts}
	b.NumExtra++
	return ex
}

// AddExtras appends n runs and returns them.
func (b *Buffer) AddExtras(n int) []Extra {
	out := b.Extra[b.NumExtra : b.NumExtra+n]
	for i := range out {
		out[i] = Extra{}
	}
	b.NumExtra += n
	return out
}

// Extras returns the active run descriptors.
func (b *Buffer) Extras() []Extra {
	return b.Extra[:b.NumExtra]
}

// ActiveVerts returns the active vertex positions.
func (b *Buffer) ActiveVerts() []math.Vec3 {
	return b.Verts[:b.NumVerts]
}

// ActiveIndexes returns the active indexes.
func (b *Buffer) ActiveIndexes() []uint32 {
	return b.Indexes[:b.NumIndexes]
}

// Normals expands the per-run normals into one normal per active vertex.
func (b *Buffer) Normals(dst []math.Vec3) []math.Vec3 {
	dst = dst[:0]
	for _, ex := range b.Extras() {
		for k := 0; k < ex.NumVerts; k++ {
			dst = append(dst, ex.Normal)
		}
	}
	return dst
}

// Check verifies the counter invariants.
func (b *Buffer) Check() error {
	if b.NumVerts < 0 || b.NumVerts > b.maxVerts {
		return fmt.Errorf("vertex count %d out of range [0,%d]", b.NumVerts, b.maxVerts)
	}
	if b.NumIndexes < 0 || b.NumIndexes > b.maxIndexes {
		return fmt.Errorf("index count %d out of range [0,%d]", b.NumIndexes, b.maxIndexes)
	}
	sum := 0
	for _, ex := range b.Extras() {
		sum += ex.NumVerts
	}
	if sum != b.NumVerts {
		return fmt.Errorf("extra runs cover %d vertexes, batch has %d", sum, b.NumVerts)
	}
	return nil
}
