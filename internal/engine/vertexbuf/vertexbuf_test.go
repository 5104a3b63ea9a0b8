package vertexbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/pkg/math"
)

func TestNewDefaults(t *testing.T) {
	b := New(0, 0, 0)
	assert.Equal(t, DefaultMaxVertexes, b.MaxVerts())
	assert.Equal(t, DefaultMaxIndexes, b.MaxIndexes())
	assert.Equal(t, 1, b.Units())
	assert.Len(t, b.TexCoord[0], DefaultMaxVertexes)
	assert.True(t, b.Empty())
	assert.NoError(t, b.Check())
}

func TestAllocAndExtras(t *testing.T) {
	b := New(16, 24, 2)

	require.True(t, b.Fits(4, 6))
	v, i := b.Alloc(4, 6)
	assert.Equal(t, 0, v)
	assert.Equal(t, 0, i)
	ex := b.AddExtra(4)
	ex.Normal = math.Vec3{Z: 1}
	require.NoError(t, b.Check())

	v, i = b.Alloc(3, 3)
	assert.Equal(t, 4, v)
	assert.Equal(t, 6, i)
	assert.Error(t, b.Check(), "new vertexes are not covered by a run yet")

	runs := b.AddExtras(3)
	for k := range runs {
		runs[k].NumVerts = 1
		runs[k].Normal = math.Vec3{X: 1}
	}
	require.NoError(t, b.Check())

	normals := b.Normals(nil)
	require.Len(t, normals, 7)
	assert.Equal(t, math.Vec3{Z: 1}, normals[3])
	assert.Equal(t, math.Vec3{X: 1}, normals[4])

	assert.True(t, b.Fits(9, 15))
	assert.False(t, b.Fits(10, 0))
	assert.False(t, b.Fits(0, 16))

	b.Reset()
	assert.True(t, b.Empty())
	assert.Zero(t, b.NumVerts)
	assert.Zero(t, b.NumExtra)
	assert.NoError(t, b.Check())
}

func TestAddExtraClearsStaleData(t *testing.T) {
	b := New(8, 8, 1)
	ex := b.AddExtra(2)
	ex.PlanarDlights = []PlanarDlight{{Radius: 10}}
	b.Reset()

	ex = b.AddExtra(2)
	assert.Nil(t, ex.PlanarDlights)
}
