package viewer

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/config"
	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/input"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/scene"
	"github.com/Faultbox/midgard-gl/internal/engine/surface"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/formats"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

func TestSettingsFromConfig(t *testing.T) {
	r := config.Default().Renderer
	r.Fullbright = true
	r.SpyShader = "models/*"

	s := settingsFromConfig(&r)
	assert.Equal(t, uint8(1), s.Overbright)
	assert.True(t, s.DynamicLights)
	assert.True(t, s.Fullbright)
	assert.False(t, s.LightmapOnly)
	assert.Equal(t, "models/*", s.SpyShader)
}

func TestApplyToggle(t *testing.T) {
	var s combiner.Settings

	msg, ok := applyToggle(&s, input.CmdToggleFullbright)
	require.True(t, ok)
	assert.Equal(t, "fullbright on", msg)
	assert.True(t, s.Fullbright)

	msg, _ = applyToggle(&s, input.CmdToggleFullbright)
	assert.Equal(t, "fullbright off", msg)
	assert.False(t, s.Fullbright)

	applyToggle(&s, input.CmdToggleLightmap)
	applyToggle(&s, input.CmdToggleFillRate)
	applyToggle(&s, input.CmdToggleDlights)
	assert.True(t, s.LightmapOnly)
	assert.True(t, s.ShowFillRate)
	assert.True(t, s.DynamicLights)

	_, ok = applyToggle(&s, input.CmdQuit)
	assert.False(t, ok)
	_, ok = applyToggle(&s, input.CmdToggleWireframe)
	assert.False(t, ok, "wireframe lives on the submitter")
}

func TestOverbrightCycle(t *testing.T) {
	s := combiner.Settings{Overbright: 1}
	var got []uint8
	for i := 0; i < 3; i++ {
		applyToggle(&s, input.CmdCycleOverbright)
		got = append(got, s.Overbright)
	}
	assert.Equal(t, []uint8{2, 0, 1}, got)
}

func TestProfileCycle(t *testing.T) {
	hw := combiner.NewCaps(combiner.ExtEnvAdd|combiner.ExtCombineEXT, 4, 2048)
	p := newProfileCycle(hw)
	assert.Equal(t, HardwareProfile, p.Name())
	assert.Equal(t, hw, p.Caps())

	caps := p.Next()
	assert.Equal(t, "arb", p.Name())
	assert.Equal(t, combiner.ExtEnvAdd, caps.Ext, "ARB combine is missing on the hardware")
	assert.Equal(t, 4, caps.MaxActiveTextures)
	assert.Equal(t, 2048, caps.MaxTextureSize)

	caps = p.Next()
	assert.Equal(t, "geforce", p.Name())
	assert.Equal(t, combiner.ExtEnvAdd|combiner.ExtCombineEXT, caps.Ext)
	assert.True(t, caps.DoubleModulateLM)

	for i := 0; i < len(combiner.Profiles)-1; i++ {
		p.Next()
	}
	assert.Equal(t, HardwareProfile, p.Name())
}

func TestClampCapsSingleUnit(t *testing.T) {
	hw := combiner.NewCaps(combiner.ExtEnvAdd|combiner.ExtCombine|combiner.ExtNVCombine4, 8, 8192)
	caps := clampCaps(combiner.Profiles["single"], hw)
	assert.Equal(t, 1, caps.MaxActiveTextures)
	assert.Equal(t, 256, caps.MaxTextureSize)
	assert.Zero(t, caps.Ext)
}

func TestEncodeNormal(t *testing.T) {
	for _, n := range []math.Vec3{
		{X: 1},
		{Y: -1},
		{Z: 1},
		math.Vec3{X: 1, Y: 1, Z: 1}.Normalize(),
		math.Vec3{X: -1, Y: 0.5, Z: -0.3}.Normalize(),
	} {
		got := surface.DecodeNormal(encodeNormal(n))
		assert.InDelta(t, n.X, got.X, 0.05, "%v", n)
		assert.InDelta(t, n.Y, got.Y, 0.05, "%v", n)
		assert.InDelta(t, n.Z, got.Z, 0.05, "%v", n)
	}
}

func TestGemWinding(t *testing.T) {
	m := newGem()
	require.Len(t, m.Frames, 2)
	require.Len(t, m.Indexes, 24)
	assert.Len(t, m.TexCoords, 24)

	pos := func(v surface.MD3Vertex) math.Vec3 {
		return math.Vec3{X: float32(v.Pos[0]), Y: float32(v.Pos[1]), Z: float32(v.Pos[2])}
	}
	for _, frame := range m.Frames {
		require.Len(t, frame, 24)
		for i := 0; i < len(m.Indexes); i += 3 {
			a := pos(frame[m.Indexes[i]])
			b := pos(frame[m.Indexes[i+1]])
			c := pos(frame[m.Indexes[i+2]])
			out := a.Add(b).Add(c)
			assert.Positive(t, c.Sub(a).Cross(b.Sub(a)).Dot(out), "triangle %d faces outward", i/3)

			n := surface.DecodeNormal(frame[m.Indexes[i]].Normal)
			assert.Positive(t, n.Dot(out), "triangle %d normal points outward", i/3)
		}
	}

	var top int16
	for _, v := range m.Frames[1] {
		top = max(top, v.Pos[2])
	}
	assert.InDelta(t, gemRadius*gemStretch/surface.MD3XYZScale, float64(top), 1)
}

func TestPropsUpdate(t *testing.T) {
	center := math.Vec3{X: 100, Y: 50, Z: 10}
	p := NewProps(center, nil, nil)
	p.Update(1.25)

	require.Len(t, p.Sparks.List, sparkCount)
	for i, sp := range p.Sparks.List {
		assert.GreaterOrEqual(t, sp.Org.Z, center.Z+gemHover, "spark %d", i)
		assert.LessOrEqual(t, sp.Org.Z, center.Z+gemHover+sparkHeight, "spark %d", i)
		assert.InDelta(t, 0.5, sp.Alpha, 0.5, "spark %d", i)
	}
	assert.Equal(t, surface.ParticleSparkle, p.Sparks.List[0].Type)
	assert.Equal(t, surface.ParticleDefault, p.Sparks.List[1].Type)
}

func TestPropsDlights(t *testing.T) {
	center := math.Vec3{X: 100, Y: 50, Z: 10}
	p := NewProps(center, nil, nil)

	lights := p.Dlights(3)
	require.Len(t, lights, 2)
	for _, l := range lights {
		d := l.Origin.Sub(center)
		assert.InDelta(t, orbitRadius, math.Vec3{X: d.X, Y: d.Y}.Length(), 1e-3)
		assert.InDelta(t, orbitHeight, d.Z, 1e-4)
		assert.Equal(t, float32(dlightRadius), l.Intensity)
	}
	// opposite sides of the orbit
	assert.InDelta(t, 0, lights[0].Origin.Add(lights[1].Origin).Scale(0.5).Sub(center).Sub(math.Vec3{Z: orbitHeight}).Length(), 1e-3)
}

func TestPropsAddToFrame(t *testing.T) {
	reg := material.NewRegistry()
	gem := &material.Shader{Name: GemShaderName}
	sparks := surface.NewParticleShader(texture.NewParticleImage())
	reg.Register(gem)
	reg.Register(sparks)

	p := NewProps(math.Vec3{}, gem, sparks)
	f := scene.NewFrame(view.New(640, 480))
	p.AddToFrame(f, 2)

	require.Len(t, f.Items, 2)
	require.Len(t, f.Entities, 2)
	assert.Equal(t, gem.Index, f.Items[0].Key.Shader())
	assert.Equal(t, 1, f.Items[0].Key.Entity())
	assert.Equal(t, sparks.Index, f.Items[1].Key.Shader())
	assert.Equal(t, view.WorldEntity, f.Items[1].Key.Entity())

	ent := f.Entities[1]
	assert.False(t, ent.WorldMatrix)
	assert.Equal(t, float32(2), ent.Time)
	assert.InDelta(t, gemHover, ent.Coord.Origin.Z, 1e-6)

	empty := scene.NewFrame(view.New(640, 480))
	NewProps(math.Vec3{}, nil, nil).AddToFrame(empty, 0)
	assert.Empty(t, empty.Items)
}

func TestOverlayLines(t *testing.T) {
	var o overlay
	fi := &frameInfo{
		Stats:    batch.Stats{Flushes: 3, Tris: 40, TrisMT: 20, Tris2D: 8},
		FPS:      60,
		Profile:  "tnt2",
		Caps:     combiner.Profiles["tnt2"],
		Settings: combiner.Settings{Overbright: 2, DynamicLights: true},
		Surfaces: 12,
	}
	lines := o.lines(fi)
	require.Len(t, lines, 5)
	assert.Equal(t, "60 fps  12 surfaces", lines[0])
	assert.Equal(t, "flushes 3  tris 40  mt 20  2d 8", lines[1])
	assert.Contains(t, lines[2], "profile tnt2: 2 units")
	assert.Equal(t, "overbright 2  dlights on  fullbright off  lightmap off", lines[3])
	assert.Equal(t, "fillrate off  wireframe off", lines[4])

	o.notify("reloaded", 10)
	assert.Equal(t, "reloaded", o.notice)
	assert.Equal(t, float32(10+noticeSeconds), o.noticeUntil)
}

func testAssets(t *testing.T) *assets {
	t.Helper()
	a, err := openAssets(&config.DataConfig{TextureDir: t.TempDir()}, 0)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestOpenAssets(t *testing.T) {
	a := testAssets(t)
	for _, name := range []string{texture.ParticleImageName, fontImageName, gemImageName} {
		img, err := a.images.Find(name)
		require.NoError(t, err, name)
		assert.NotZero(t, img.Width, name)
	}

	img, err := a.images.Find("textures/missing")
	require.NoError(t, err, "missing textures get a placeholder")
	assert.Equal(t, texture.PlaceholderSize, img.Width)
}

func TestOpenAssetsBadArchive(t *testing.T) {
	_, err := openAssets(&config.DataConfig{GRFPaths: []string{filepath.Join(t.TempDir(), "none.grf")}}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open archive")
}

func TestRegisterBuiltins(t *testing.T) {
	a := testAssets(t)
	reg := material.NewRegistry()
	require.NoError(t, registerBuiltins(reg, a.images))

	gem, ok := reg.ByName(GemShaderName)
	require.True(t, ok)
	require.Len(t, gem.Stages, 2)
	assert.Equal(t, material.RGBDiffuse, gem.Stages[0].RGBGen.Kind)
	assert.Equal(t, material.TCEnvironment, gem.Stages[1].TCGen.Kind)

	fnt, ok := reg.ByName(FontShaderName)
	require.True(t, ok)
	assert.Equal(t, 128, fnt.Width)

	_, ok = reg.ByName(surface.ParticleShaderName)
	assert.True(t, ok)

	// a second pass keeps the existing shaders
	n := reg.Len()
	require.NoError(t, registerBuiltins(reg, a.images))
	assert.Equal(t, n, reg.Len())
	again, _ := reg.ByName(GemShaderName)
	assert.Same(t, gem, again)
}

func TestRegisterBuiltinsKeepsMaterialOverride(t *testing.T) {
	a := testAssets(t)
	reg := material.NewRegistry()
	_, err := material.Parse([]byte(`
shaders:
  - name: models/gem
    stages:
      - map: "*gem"
        rgb_gen: vertex
`), reg, a.images)
	require.NoError(t, err)
	require.NoError(t, registerBuiltins(reg, a.images))

	gem, _ := reg.ByName(GemShaderName)
	require.Len(t, gem.Stages, 1)
	assert.Equal(t, material.RGBVertex, gem.Stages[0].RGBGen.Kind)
}

func TestLoadMaterialsMissingFile(t *testing.T) {
	reg := material.NewRegistry()
	n, err := loadMaterials(filepath.Join(t.TempDir(), "materials.yaml"), reg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = loadMaterials("", reg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadWorldDemo(t *testing.T) {
	w, err := loadWorld("", nil, material.NewRegistry(), nil)
	require.NoError(t, err)
	assert.Positive(t, w.NumSurfaces())
}

func TestLoadWorldErrors(t *testing.T) {
	data := fstest.MapFS{"data/bad.gnd": {Data: []byte("nope")}}
	reg := material.NewRegistry()

	_, err := loadWorld("data\\bad.gnd", data, reg, nil)
	require.ErrorIs(t, err, formats.ErrInvalidGNDMagic)
	assert.Contains(t, err.Error(), "data/bad.gnd")

	_, err = loadWorld("data/none.gnd", data, reg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load map")
}

func TestGemPixels(t *testing.T) {
	pix := gemPixels()
	center := pix.RGBAAt(gemImageSize/2, gemImageSize/2)
	corner := pix.RGBAAt(0, 0)
	assert.Equal(t, uint8(255), center.A)
	assert.Greater(t, center.B, corner.B)
}
