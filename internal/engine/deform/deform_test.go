package deform

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

func quads(t *testing.T, verts ...math.Vec3) *vertexbuf.Buffer {
	t.Helper()
	buf := vertexbuf.New(32, 64, 1)
	n := len(verts)
	inds := n / 2 * 3
	buf.Alloc(n, inds)
	copy(buf.Verts, verts)
	ex := buf.AddExtra(n)
	ex.Normal = math.Vec3{Z: 1}
	return buf
}

func shader(defs ...material.Deform) *material.Shader {
	return &material.Shader{Name: "test/sprite", Deforms: defs}
}

func TestMoveAndWave(t *testing.T) {
	buf := quads(t, math.Vec3{X: 1}, math.Vec3{X: 2}, math.Vec3{X: 3}, math.Vec3{X: 4})
	v := view.New(640, 480)
	sh := shader(
		material.Deform{Kind: material.DeformMove, Move: math.Vec3{Y: 2}, Wave: material.Wave{Base: 1}},
		material.Deform{Kind: material.DeformWave, Wave: material.Wave{Base: 3}},
		material.Deform{Kind: material.DeformWave, Wave: material.Wave{Func: math.FuncSawtooth, Amp: 1, Phase: 0.25}},
	)
	require.NoError(t, Apply(buf, sh, v, nil))
	for i, p := range buf.ActiveVerts() {
		assert.InDelta(t, float32(i+1), p.X, 1e-6)
		assert.InDelta(t, 2, p.Y, 1e-6)
		assert.InDelta(t, 3.25, p.Z, 1e-3)
	}
}

func TestBulge(t *testing.T) {
	buf := quads(t, math.Vec3{}, math.Vec3{}, math.Vec3{}, math.Vec3{})
	v := view.New(640, 480)
	v.Time = 1
	sh := shader(material.Deform{Kind: material.DeformBulge, BulgeHeight: 2, BulgeSpeed: gomath.Pi / 2})
	require.NoError(t, Apply(buf, sh, v, nil))
	assert.InDelta(t, 2, buf.Verts[0].Z, 1e-3)
}

func TestAutospriteRejectsNonQuads(t *testing.T) {
	buf := vertexbuf.New(32, 64, 1)
	buf.Alloc(3, 3)
	buf.Verts[0] = math.Vec3{X: 7}
	buf.AddExtra(3).Normal = math.Vec3{Z: 1}

	err := Apply(buf, shader(material.Deform{Kind: material.DeformAutosprite}), view.New(640, 480), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotQuads)
	var qe *QuadError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "test/sprite", qe.Shader)
	assert.Equal(t, 3, qe.Verts)

	assert.Equal(t, math.Vec3{X: 7}, buf.Verts[0])
	assert.Equal(t, math.Vec3{Z: 1}, buf.Extra[0].Normal)
}

func TestAutospriteFacesViewer(t *testing.T) {
	buf := quads(t,
		math.Vec3{X: -1, Y: -1}, math.Vec3{X: 1, Y: -1},
		math.Vec3{X: 1, Y: 1}, math.Vec3{X: -1, Y: 1},
	)
	v := view.New(640, 480)
	v.Coord.Origin = math.Vec3{X: 10}

	require.NoError(t, Apply(buf, shader(material.Deform{Kind: material.DeformAutosprite}), v, nil))

	for _, p := range buf.ActiveVerts() {
		assert.InDelta(t, 0, p.X, 1e-5)
		assert.InDelta(t, 1, abs(p.Y), 1e-5)
		assert.InDelta(t, 1, abs(p.Z), 1e-5)
	}
	assert.Equal(t, math.Vec3{Y: -1, Z: 1}, buf.Verts[0])
	assert.Equal(t, math.Vec2{X: 1, Y: 1}, buf.Src[2].Tex)
	assert.Equal(t, []uint32{0, 2, 1, 0, 3, 2}, buf.ActiveIndexes())
	assert.True(t, buf.Extra[0].Normal.IsZero())
}

func TestAutosprite2KeepsLongAxis(t *testing.T) {
	buf := quads(t,
		math.Vec3{Y: -0.5}, math.Vec3{Y: 0.5},
		math.Vec3{X: 10, Y: 0.5}, math.Vec3{X: 10, Y: -0.5},
	)
	v := view.New(640, 480)
	v.Coord.Origin = math.Vec3{X: 5, Y: 100}

	require.NoError(t, Apply(buf, shader(material.Deform{Kind: material.DeformAutosprite2}), v, nil))

	for i, p := range buf.ActiveVerts() {
		wantX := float32(0)
		if i >= 2 {
			wantX = 10
		}
		assert.InDelta(t, wantX, p.X, 1e-4)
		assert.InDelta(t, 0, p.Y, 1e-4)
		assert.InDelta(t, 0.5, abs(p.Z), 1e-4)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
