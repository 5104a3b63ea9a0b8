package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/logger"
)

const testMaterials = `
shaders:
  - name: textures/base_wall/metal
    lightmap: 0
    stages:
      - map: $lightmap
      - map: textures/base_wall/metal
        blend: filter
  - name: textures/base_wall/glow
    lightmap: 1
    stages:
      - map: $lightmap
      - map: textures/base_wall/glow
        blend: filter
      - map: textures/base_wall/glow_blend
        blend: add
  - name: textures/sfx/beam
    sort: additive
    cull: none
    stages:
      - map: textures/sfx/beam
        blend: add
`

func writeMaterials(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "materials.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testMaterials), 0644))
	return file
}

func TestLoadMaterials(t *testing.T) {
	logger.Nop()
	reg, err := loadMaterials(writeMaterials(t))
	require.NoError(t, err)
	// default shader plus three
	assert.Equal(t, 4, reg.Len())

	sh, ok := reg.ByName("textures/base_wall/metal")
	require.True(t, ok)
	assert.NotNil(t, sh.Stages[0].Image(), "lightmap page must be bound")
}

func TestLoadMaterialsMissingFile(t *testing.T) {
	logger.Nop()
	_, err := loadMaterials(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestPrintPlans(t *testing.T) {
	logger.Nop()
	reg, err := loadMaterials(writeMaterials(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = printPlans(&buf, reg, combiner.Profiles["geforce"], combiner.Settings{Overbright: 1}, "textures/base_wall/*", planOptions{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "textures/base_wall/metal")
	assert.Contains(t, out, "textures/base_wall/glow")
	assert.NotContains(t, out, "textures/sfx/beam")
	assert.Contains(t, out, "pass 0")
	assert.Contains(t, out, "*lightmap0")
}

func TestPrintPlansSingleTextureSplits(t *testing.T) {
	logger.Nop()
	reg, err := loadMaterials(writeMaterials(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = printPlans(&buf, reg, combiner.Profiles["single"], combiner.Settings{}, "textures/base_wall/metal", planOptions{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pass 1")
	assert.NotContains(t, buf.String(), "unit 1")
}

func TestPrintPlansBadPattern(t *testing.T) {
	logger.Nop()
	reg, err := loadMaterials(writeMaterials(t))
	require.NoError(t, err)

	err = printPlans(&bytes.Buffer{}, reg, combiner.Profiles["arb"], combiner.Settings{}, "[", planOptions{})
	assert.Error(t, err)
}

func TestPrintPlansWithFogAndDlights(t *testing.T) {
	logger.Nop()
	reg, err := loadMaterials(writeMaterials(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	s := combiner.Settings{DynamicLights: true}
	err = printPlans(&buf, reg, combiner.Profiles["arb"], s, "textures/base_wall/metal", planOptions{Fog: true, Dlights: 2})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "*fog")
}

func TestVerifyAllProfiles(t *testing.T) {
	logger.Nop()
	reg, err := loadMaterials(writeMaterials(t))
	require.NoError(t, err)

	for _, name := range profileNames() {
		results := verify(reg, combiner.Profiles[name], 0.01)
		require.Len(t, results, 4, name)
		for _, r := range results {
			assert.True(t, r.OK, "%s on %s: want %v got %v", r.Shader, name, r.Want, r.Got)
		}
	}
}

func TestTexelIsStable(t *testing.T) {
	a := &texture.Image{Name: "textures/a"}
	b := &texture.Image{Name: "textures/b"}
	assert.Equal(t, texel(a), texel(&texture.Image{Name: "textures/a"}))
	assert.NotEqual(t, texel(a), texel(b))
	assert.Equal(t, combiner.RGBA{1, 1, 1, 1}, texel(nil))

	c := texel(a)
	for k := range c {
		assert.True(t, c[k] > 0 && c[k] <= 1, "channel %d = %v", k, c[k])
	}
}

func TestProfileNamesSorted(t *testing.T) {
	names := profileNames()
	assert.Len(t, names, len(combiner.Profiles))
	assert.IsIncreasing(t, names)
}
