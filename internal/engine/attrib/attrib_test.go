package attrib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// quadBuffer returns a batch holding one planar run of n vertexes with normal +Z.
func quadBuffer(t *testing.T, verts ...math.Vec3) *vertexbuf.Buffer {
	t.Helper()
	buf := vertexbuf.New(16, 32, 2)
	first, _ := buf.Alloc(len(verts), 0)
	copy(buf.Verts[first:], verts)
	ex := buf.AddExtra(len(verts))
	ex.Normal = math.Vec3{Z: 1}
	require.NoError(t, buf.Check())
	return buf
}

func newContext() *Context {
	v := view.New(640, 480)
	ent := view.NewWorldEntity()
	ent.Prepare(v)
	return &Context{View: v, Entity: &ent}
}

func TestColorsVertexOverbright(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{})
	buf.SrcColor[0] = color.Color{200, 100, 50, 77}
	ctx := newContext()
	ctx.Overbright = 1

	st := &material.Stage{
		RGBGen:   material.RGBGen{Kind: material.RGBVertex},
		AlphaGen: material.AlphaGen{Kind: material.AlphaConst},
		Color:    color.Color{0, 0, 0, 128},
	}
	Colors(buf, st, ctx)
	assert.Equal(t, color.Color{100, 50, 25, 128}, buf.Color[0])

	st.RGBGen.Kind = material.RGBOneMinusVertex
	st.AlphaGen.Kind = material.AlphaOneMinusVertex
	Colors(buf, st, ctx)
	assert.Equal(t, color.Color{27, 77, 102, 178}, buf.Color[0])
}

func TestColorsExactVertexKeepsAlpha(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{}, math.Vec3{X: 1})
	buf.SrcColor[0] = color.Color{1, 2, 3, 4}
	buf.SrcColor[1] = color.Color{5, 6, 7, 8}
	st := &material.Stage{
		RGBGen:   material.RGBGen{Kind: material.RGBExactVertex},
		AlphaGen: material.AlphaGen{Kind: material.AlphaVertex},
	}
	Colors(buf, st, newContext())
	assert.Equal(t, buf.SrcColor[:2], buf.Color[:2])
}

func TestColorsConstAndBoost(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{}, math.Vec3{X: 1})
	buf.SrcColor[0] = color.Color{100, 50, 0, 255}
	buf.SrcColor[1] = color.Color{0, 0, 0, 255}

	st := &material.Stage{
		RGBGen:   material.RGBGen{Kind: material.RGBBoostVertex},
		AlphaGen: material.AlphaGen{Kind: material.AlphaConst},
		Color:    color.Color{0, 0, 0, 255},
	}
	Colors(buf, st, newContext())
	assert.Equal(t, color.Color{128, 64, 0, 255}, buf.Color[0])
	assert.Equal(t, color.Color{0, 0, 0, 255}, buf.Color[1])

	st = &material.Stage{
		RGBGen:   material.RGBGen{Kind: material.RGBConst},
		AlphaGen: material.AlphaGen{Kind: material.AlphaConst},
		Color:    color.Color{9, 8, 7, 6},
	}
	Colors(buf, st, newContext())
	assert.Equal(t, color.Color{9, 8, 7, 6}, buf.Color[1])
}

type fixedLight struct {
	calls int
}

func (f *fixedLight) LightEntity(*view.View, *view.Entity) {}

func (f *fixedLight) Diffuse(n math.Vec3, weight float32) color.Color {
	f.calls++
	v := uint8(200 * weight)
	return color.Color{v, v, v, 255}
}

func TestColorsDiffuse(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{}, math.Vec3{X: 1})
	ctx := newContext()
	st := &material.Stage{
		RGBGen:   material.RGBGen{Kind: material.RGBHalfDiffuse},
		AlphaGen: material.AlphaGen{Kind: material.AlphaConst},
		Color:    color.White,
	}

	Colors(buf, st, ctx)
	assert.Equal(t, color.White, buf.Color[0], "no lighting evaluator means fullbright")

	light := &fixedLight{}
	ctx.Lighting = light
	Colors(buf, st, ctx)
	assert.Equal(t, 2, light.calls)
	assert.Equal(t, color.Color{100, 100, 100, 255}, buf.Color[1])
}

func TestAlphaDotAndPortal(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{})
	ctx := newContext()
	ctx.Entity.ModelViewOrg = math.Vec3{Z: 10}

	st := &material.Stage{
		RGBGen:   material.RGBGen{Kind: material.RGBConst},
		AlphaGen: material.AlphaGen{Kind: material.AlphaDot, Min: 0, Max: 1},
		Color:    color.White,
	}
	Colors(buf, st, ctx)
	assert.Equal(t, uint8(255), buf.Color[0][3])

	st.AlphaGen.Kind = material.AlphaOneMinusDot
	Colors(buf, st, ctx)
	assert.Equal(t, uint8(0), buf.Color[0][3])

	st.AlphaGen = material.AlphaGen{Kind: material.AlphaPortal, PortalRange: 20}
	Colors(buf, st, ctx)
	assert.Equal(t, uint8(128), buf.Color[0][3])

	// no range: the portal stays opaque
	st.AlphaGen = material.AlphaGen{Kind: material.AlphaPortal}
	Colors(buf, st, ctx)
	assert.Equal(t, uint8(255), buf.Color[0][3])

	st.AlphaGen = material.AlphaGen{Kind: material.AlphaLightingSpecular}
	Colors(buf, st, ctx)
	assert.LessOrEqual(t, buf.Color[0][3], uint8(255))
}

func TestTexCoordsScaleMod(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{})
	buf.Src[0].Tex = math.Vec2{X: 0.5, Y: 0.5}
	st := &material.Stage{
		TCGen:  material.TCGen{Kind: material.TCTexture},
		TcMods: []material.TcMod{{Kind: material.TcModScale, S: 2, T: 3}},
	}
	TexCoords(buf, 0, st, nil, newContext())
	assert.Equal(t, math.Vec2{X: 1, Y: 1.5}, buf.TexCoord[0][0])
}

func TestTexCoordsRectangleAndLightmap(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{})
	buf.Src[0] = vertexbuf.SrcTexCoord{Tex: math.Vec2{X: 0.5, Y: 0.25}, LM: math.Vec2{X: 0.1, Y: 0.2}}
	buf.Extra[0].LightmapWidth = 128

	rect := &texture.Image{Target: texture.TargetRectangle, InternalWidth: 64, InternalHeight: 32}
	st := &material.Stage{TCGen: material.TCGen{Kind: material.TCTexture}}
	TexCoords(buf, 1, st, rect, newContext())
	assert.Equal(t, math.Vec2{X: 32, Y: 8}, buf.TexCoord[1][0])

	st.TCGen.Kind = material.TCLightmap
	TexCoords(buf, 0, st, nil, newContext())
	assert.Equal(t, math.Vec2{X: 0.1, Y: 0.2}, buf.TexCoord[0][0])

	st.TCGen = material.TCGen{Kind: material.TCLightmapStyle, Index: 2}
	TexCoords(buf, 0, st, nil, newContext())
	assert.InDelta(t, 2.1, buf.TexCoord[0][0].X, 1e-6)
	assert.Equal(t, float32(0.2), buf.TexCoord[0][0].Y)
}

func TestTexCoordsVectorAndEnvironment(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{X: 2, Y: 3, Z: 4})
	st := &material.Stage{TCGen: material.TCGen{
		Kind:    material.TCVector,
		Vectors: [2]math.Vec3{{X: 1}, {Y: 0.5}},
	}}
	TexCoords(buf, 0, st, nil, newContext())
	assert.Equal(t, math.Vec2{X: 2, Y: 1.5}, buf.TexCoord[0][0])

	env := quadBuffer(t, math.Vec3{})
	ctx := newContext()
	ctx.Entity.ModelViewOrg = math.Vec3{Z: 5}
	st = &material.Stage{TCGen: material.TCGen{Kind: material.TCEnvironment}}
	TexCoords(env, 0, st, nil, ctx)
	assert.True(t, env.TexCoord[0][0].Near(math.Vec2{X: 0.5, Y: 1}, 1e-5))

	env.Extra[0].Axis = &[2]math.Vec3{{Z: 1}, {X: 1}}
	TexCoords(env, 0, st, nil, ctx)
	assert.True(t, env.TexCoord[0][0].Near(math.Vec2{X: 0, Y: -0.5}, 1e-5))
}

func TestTexCoordsFog(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{X: 4, Z: -10}, math.Vec3{X: 4})
	ctx := newContext()
	ctx.View.Coord.Origin = math.Vec3{Z: 10}
	ctx.Fog = &view.Fog{
		TexCoordScale: 0.5,
		HasSurface:    true,
		Surface:       math.Plane{Normal: math.Vec3{Z: -1}},
	}
	st := &material.Stage{TCGen: material.TCGen{Kind: material.TCFog}}

	TexCoords(buf, 0, st, nil, ctx)
	assert.InDelta(t, 2, buf.TexCoord[0][0].X, 1e-6)
	assert.InDelta(t, 0.5, buf.TexCoord[0][0].Y, 1e-6)
	assert.InDelta(t, fogDepthOutside, buf.TexCoord[0][1].Y, 1e-6)

	// eye inside the volume
	ctx.View.Coord.Origin = math.Vec3{Z: -10}
	buf.Verts[1] = math.Vec3{Z: 5}
	TexCoords(buf, 0, st, nil, ctx)
	assert.InDelta(t, fogDepthInside, buf.TexCoord[0][0].Y, 1e-6)
	assert.InDelta(t, fogDepthOutside, buf.TexCoord[0][1].Y, 1e-6)

	ctx.Fog.HasSurface = false
	TexCoords(buf, 0, st, nil, ctx)
	assert.InDelta(t, fogDepthInside, buf.TexCoord[0][1].Y, 1e-6)
}

func TestTexCoordsDlight(t *testing.T) {
	buf := quadBuffer(t, math.Vec3{X: 5})
	buf.Extra[0].PlanarDlights = []vertexbuf.PlanarDlight{
		{},
		{Axis: [2]math.Vec3{{X: 1}, {Y: 1}}, Radius: 10},
	}
	st := &material.Stage{TCGen: material.TCGen{Kind: material.TCDlight, Index: 1}}
	TexCoords(buf, 0, st, nil, newContext())
	assert.True(t, buf.TexCoord[0][0].Near(math.Vec2{X: 0.75, Y: 0.5}, 1e-6))

	st.TCGen.Index = 2
	TexCoords(buf, 0, st, nil, newContext())
	assert.Equal(t, math.Vec2{}, buf.TexCoord[0][0])

	mesh := quadBuffer(t, math.Vec3{Y: 3})
	mesh.Extra[0].TrisurfDlights = []vertexbuf.TrisurfDlight{{Radius: 6}}
	st.TCGen.Index = 0
	TexCoords(mesh, 0, st, nil, newContext())
	assert.True(t, mesh.TexCoord[0][0].Near(math.Vec2{X: 0.75, Y: 0.5}, 1e-6))
}

func TestApplyTcMods(t *testing.T) {
	tests := []struct {
		name string
		mod  material.TcMod
		t    float32
		in   math.Vec2
		want math.Vec2
	}{
		{"scroll", material.TcMod{Kind: material.TcModScroll, S: 0.5, T: -0.25}, 3, math.Vec2{}, math.Vec2{X: 0.5, Y: 0.25}},
		{"offset", material.TcMod{Kind: material.TcModOffset, S: 1, T: 2}, 0, math.Vec2{X: 1}, math.Vec2{X: 2, Y: 2}},
		{"stretch", material.TcMod{Kind: material.TcModStretch, Wave: material.Wave{Base: 2}}, 0, math.Vec2{}, math.Vec2{X: 0.25, Y: 0.25}},
		{"rotate center", material.TcMod{Kind: material.TcModRotate, RotateSpeed: 33}, 1.7, math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 0.5, Y: 0.5}},
		{"rotate quarter", material.TcMod{Kind: material.TcModRotate, RotateSpeed: 90}, 1, math.Vec2{X: 1, Y: 0.5}, math.Vec2{X: 0.5, Y: 0}},
		{"transform", material.TcMod{
			Kind:      material.TcModTransform,
			Matrix:    [2][2]float32{{0, 1}, {1, 0}},
			Translate: [2]float32{1, 0},
		}, 0, math.Vec2{X: 2, Y: 3}, math.Vec2{X: 4, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uv := []math.Vec2{tt.in}
			ApplyTcMods(uv, []math.Vec3{{}}, []material.TcMod{tt.mod}, tt.t)
			assert.True(t, uv[0].Near(tt.want, 1e-5), "got %v want %v", uv[0], tt.want)
		})
	}
}

func TestRotateIsPeriodic(t *testing.T) {
	mod := material.TcMod{Kind: material.TcModRotate, RotateSpeed: 45}
	period := mod.RotatePeriod()
	for _, t0 := range []float32{0, 0.3, 2.5, 7} {
		a := []math.Vec2{{X: 0.1, Y: 0.9}}
		b := []math.Vec2{{X: 0.1, Y: 0.9}}
		ApplyTcMods(a, nil, []material.TcMod{mod}, t0)
		ApplyTcMods(b, nil, []material.TcMod{mod}, t0+period)
		assert.True(t, a[0].Near(b[0], 1e-4), "t=%v: %v vs %v", t0, a[0], b[0])
	}
}

func TestTurbAndWarpStayFinite(t *testing.T) {
	uv := []math.Vec2{{X: 0.5, Y: 0.5}}
	verts := []math.Vec3{{X: 100, Y: 200, Z: 300}}
	ApplyTcMods(uv, verts, []material.TcMod{
		{Kind: material.TcModTurb, Wave: material.Wave{Amp: 0.1, Freq: 1}},
		{Kind: material.TcModWarp},
	}, 1.25)
	assert.InDelta(t, 0, uv[0].X, 1)
	assert.InDelta(t, 0, uv[0].Y, 1)
}
