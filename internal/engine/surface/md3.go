package surface

import (
	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// MD3XYZScale converts stored MD3 coordinates to model units.
const MD3XYZScale = 1.0 / 64

// MD3Vertex is a compressed keyframe vertex. Normal packs the latitude in the low
// byte and the longitude in the high byte, both in 1/256 turns.
type MD3Vertex struct {
	Pos    [3]int16
	Normal uint16
}

// MD3 is one surface of a keyframed model.
type MD3 struct {
	// Frames holds one vertex list per animation frame, all of equal length.
	Frames    [][]MD3Vertex
	TexCoords []math.Vec2
	Indexes   []uint32
}

// DecodeNormal expands a packed MD3 normal.
func DecodeNormal(n uint16) math.Vec3 {
	a, b := int(n&255), int(n>>8)
	sa := math.SinFrac(a, 256)
	return math.Vec3{
		X: sa * math.CosFrac(b, 256),
		Y: sa * math.SinFrac(b, 256),
		Z: math.CosFrac(a, 256),
	}
}

func (m *MD3) frame(i int) []MD3Vertex {
	if i < 0 || i >= len(m.Frames) {
		i = 0
	}
	return m.Frames[i]
}

// Tesselate implements Surface. It interpolates between the entity's frame and
// old frame by BackLerp. The batch is flushed first so the mesh starts at vertex 0.
func (m *MD3) Tesselate(b *batch.Batch) {
	if len(m.Frames) == 0 {
		return
	}
	b.Flush()

	ent := entityOf(b)
	cur := m.frame(ent.Frame)
	n := len(cur)
	b.ReserveVerts(n, len(m.Indexes))
	buf := b.Buffer()
	first, idx := buf.Alloc(n, len(m.Indexes))
	extras := buf.AddExtras(n)
	verts := buf.Verts[first : first+n]

	drawScale := ent.DrawScale
	if drawScale == 0 {
		drawScale = 1
	}

	if ent.BackLerp != 0 && ent.Frame != ent.OldFrame {
		old := m.frame(ent.OldFrame)
		backLerp := ent.BackLerp
		frontLerp := 1 - backLerp
		backScale := backLerp * MD3XYZScale * drawScale
		frontScale := frontLerp * MD3XYZScale * drawScale
		for i := range verts {
			v1, v2 := &cur[i], &old[i]
			verts[i] = math.Vec3{
				X: float32(v1.Pos[0])*frontScale + float32(v2.Pos[0])*backScale,
				Y: float32(v1.Pos[1])*frontScale + float32(v2.Pos[1])*backScale,
				Z: float32(v1.Pos[2])*frontScale + float32(v2.Pos[2])*backScale,
			}

			a1, b1 := int(v1.Normal&255), int(v1.Normal>>8)
			a2, b2 := int(v2.Normal&255), int(v2.Normal>>8)
			sa1 := math.SinFrac(a1, 256) * frontLerp
			sa2 := math.SinFrac(a2, 256) * backLerp
			extras[i].NumVerts = 1
			extras[i].Normal = math.Vec3{
				X: sa1*math.CosFrac(b1, 256) + sa2*math.CosFrac(b2, 256),
				Y: sa1*math.SinFrac(b1, 256) + sa2*math.SinFrac(b2, 256),
				Z: math.CosFrac(a1, 256)*frontLerp + math.CosFrac(a2, 256)*backLerp,
			}
		}
	} else {
		scale := MD3XYZScale * drawScale
		for i := range verts {
			v := &cur[i]
			verts[i] = math.Vec3{
				X: float32(v.Pos[0]) * scale,
				Y: float32(v.Pos[1]) * scale,
				Z: float32(v.Pos[2]) * scale,
			}
			extras[i].NumVerts = 1
			extras[i].Normal = DecodeNormal(v.Normal)
		}
	}

	for i := 0; i < n; i++ {
		buf.SrcColor[first+i] = color.White
		st := vertexbuf.SrcTexCoord{}
		if i < len(m.TexCoords) {
			st.Tex = m.TexCoords[i]
		}
		buf.Src[first+i] = st
	}
	copyIndexes(buf, first, idx, m.Indexes)
}
