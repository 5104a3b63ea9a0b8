package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/logger"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

type recorder struct {
	batches []string
	verts   []int
	events  []string
}

func (r *recorder) Begin2D(int, int)   { r.events = append(r.events, "2d") }
func (r *recorder) Begin3D(*view.View) { r.events = append(r.events, "3d") }
func (r *recorder) DrawPass(*batch.Pass) {}
func (r *recorder) EndBatch()            {}

func (r *recorder) SetEntity(_ *view.View, e *view.Entity) {
	if e == nil || e.WorldMatrix {
		r.events = append(r.events, "world")
		return
	}
	r.events = append(r.events, "entity")
}

func (r *recorder) BeginBatch(sh *material.Shader, verts []math.Vec3, _ []uint32) {
	r.batches = append(r.batches, sh.Name)
	r.verts = append(r.verts, len(verts))
	r.events = append(r.events, "batch "+sh.Name)
}

// probe emits n vertexes as a triangle fan and records the state it saw.
type probe struct {
	n     int
	mask  uint32
	times []float32
	ents  []*view.Entity
}

func (p *probe) DlightMask() uint32 { return p.mask }

func (p *probe) Tesselate(b *batch.Batch) {
	p.times = append(p.times, b.View.Time)
	p.ents = append(p.ents, b.Entity())

	inds := (p.n - 2) * 3
	b.ReserveVerts(p.n, inds)
	buf := b.Buffer()
	first, idx := buf.Alloc(p.n, inds)
	buf.AddExtra(p.n)
	for i := 1; i < p.n-1; i++ {
		k := idx + (i-1)*3
		buf.Indexes[k] = uint32(first)
		buf.Indexes[k+1] = uint32(first + i)
		buf.Indexes[k+2] = uint32(first + i + 1)
	}
}

func testShader(name string) *material.Shader {
	sh := &material.Shader{
		Name:           name,
		LightmapNumber: material.LightmapNone,
		Stages:         []*material.Stage{{Images: []*texture.Image{nil}}},
	}
	sh.Finish()
	return sh
}

func newScene(t *testing.T, maxVerts int) (*Scene, *recorder, *material.Shader, *material.Shader) {
	t.Helper()
	p := combiner.New(combiner.Profiles["multitexture"], combiner.Settings{}, texture.NewDlightImage(), texture.NewFogImage())
	rec := &recorder{}
	b := batch.New(rec, p, maxVerts, maxVerts*3)
	reg := material.NewRegistry()
	a, c := testShader("textures/a"), testShader("textures/c")
	reg.Register(a)
	reg.Register(c)
	return New(reg, b), rec, a, c
}

func TestSortKey(t *testing.T) {
	tests := []struct {
		shader, entity, fog int
		dlight              bool
	}{
		{0, 0, 0, false},
		{1, 2, 3, true},
		{MaxShaders - 1, MaxEntities - 1, MaxFogs - 1, true},
	}
	for _, tt := range tests {
		k := Pack(tt.shader, tt.entity, tt.fog, tt.dlight)
		assert.Equal(t, tt.shader, k.Shader(), k.String())
		assert.Equal(t, tt.entity, k.Entity(), k.String())
		assert.Equal(t, tt.fog, k.Fog(), k.String())
		assert.Equal(t, tt.dlight, k.Dlight(), k.String())
	}

	assert.Less(t, Pack(0, MaxEntities-1, MaxFogs-1, true), Pack(1, 0, 0, false))
	assert.Less(t, Pack(1, 0, MaxFogs-1, true), Pack(1, 1, 0, false))
	assert.Less(t, Pack(1, 1, 0, true), Pack(1, 1, 1, false))
}

func TestDrawSceneGroupsByShader(t *testing.T) {
	logger.Nop()
	s, rec, a, c := newScene(t, 0)
	f := NewFrame(view.New(640, 480))
	f.Add(&probe{n: 4}, c, 0, 0, false)
	f.Add(&probe{n: 4}, a, 0, 0, false)
	f.Add(&probe{n: 3}, a, 0, 0, false)
	f.Sort()

	require.NoError(t, s.DrawScene(f))
	assert.Equal(t, []string{"textures/a", "textures/c"}, rec.batches)
	assert.Equal(t, []int{7, 4}, rec.verts)
	assert.Equal(t, []string{"3d", "world", "batch textures/a", "batch textures/c", "world"}, rec.events)
}

func TestDrawSceneEntityTime(t *testing.T) {
	logger.Nop()
	s, rec, a, _ := newScene(t, 0)
	v := view.New(640, 480)
	v.Time = 1
	f := NewFrame(v)

	ent := view.NewWorldEntity()
	ent.WorldMatrix = false
	ent.Time = 5
	num := f.AddEntity(ent)

	world, model := &probe{n: 3}, &probe{n: 3}
	f.Add(world, a, 0, 0, false)
	f.Add(model, a, num, 0, false)

	require.NoError(t, s.DrawScene(f))
	assert.Equal(t, []float32{1}, world.times)
	assert.Equal(t, []float32{5}, model.times)
	assert.Same(t, &f.Entities[num], model.ents[0])
	assert.Equal(t, float32(1), v.Time, "world time is restored")
	assert.Len(t, rec.batches, 2, "an entity switch flushes")
}

func TestDrawSceneDlightMaskSplitsBatches(t *testing.T) {
	logger.Nop()
	s, rec, a, _ := newScene(t, 0)
	f := NewFrame(view.New(640, 480))
	f.Add(&probe{n: 3, mask: 0b01}, a, 0, 0, true)
	f.Add(&probe{n: 3, mask: 0b01}, a, 0, 0, true)
	f.Add(&probe{n: 3, mask: 0b10}, a, 0, 0, true)
	// the mask is ignored without the key flag
	f.Add(&probe{n: 3, mask: 0b10}, a, 0, 0, false)

	require.NoError(t, s.DrawScene(f))
	assert.Equal(t, []int{6, 3, 3}, rec.verts)
}

func TestDrawSceneOverflowAborts(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger.Use(zap.New(core))
	t.Cleanup(logger.Nop)

	s, rec, a, _ := newScene(t, 8)
	v := view.New(640, 480)
	v.Time = 2
	f := NewFrame(v)
	ent := view.NewWorldEntity()
	ent.WorldMatrix = false
	ent.Time = 9
	num := f.AddEntity(ent)
	f.Add(&probe{n: 12}, a, num, 0, false)

	err := s.DrawScene(f)
	require.Error(t, err)
	var oe *batch.OverflowError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, 12, oe.Verts)
	assert.Empty(t, rec.batches)
	assert.True(t, s.Batch.Buffer().Empty())
	assert.Equal(t, float32(2), v.Time)
	assert.Equal(t, 1, logs.FilterMessage("scene aborted").Len())
}

func TestDrawSceneRepanicsOtherErrors(t *testing.T) {
	logger.Nop()
	s, _, a, _ := newScene(t, 0)
	f := NewFrame(view.New(640, 480))
	f.Add(panicSurface{}, a, 0, 0, false)

	assert.PanicsWithError(t, "boom", func() { _ = s.DrawScene(f) })
}

type panicSurface struct{}

func (panicSurface) Tesselate(*batch.Batch) { panic(errors.New("boom")) }

func TestSortPutsOpaqueBeforeSprites(t *testing.T) {
	logger.Nop()
	s, rec, glow, floor := newScene(t, 0)
	glow.Sort = material.SortSprite
	floor.Sort = material.SortOpaque

	f := NewFrame(view.New(640, 480))
	f.Add(&probe{n: 4}, glow, 0, 0, false)
	f.Add(&probe{n: 4}, floor, 0, 0, false)
	f.Sort()

	assert.Less(t, glow.Index, floor.Index)
	require.NoError(t, s.DrawScene(f))
	assert.Equal(t, []string{"textures/c", "textures/a"}, rec.batches)
}
