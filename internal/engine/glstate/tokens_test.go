package glstate

import (
	"testing"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
)

func params(p envProgram) map[uint32]uint32 {
	m := make(map[uint32]uint32, len(p.params))
	for _, e := range p.params {
		m[e.name] = e.value
	}
	return m
}

func TestCompileEnvModulate(t *testing.T) {
	p := compileEnv(combiner.TexEnv{Op: combiner.EnvModulate})
	require.Len(t, p.params, 1)
	assert.Equal(t, envParam{gl.TEXTURE_ENV_MODE, gl.MODULATE}, p.params[0])
	assert.False(t, p.useColor)

	p = compileEnv(combiner.TexEnv{Op: combiner.EnvAdd})
	assert.Equal(t, []envParam{{gl.TEXTURE_ENV_MODE, gl.ADD}}, p.params)
}

func TestCompileEnvCombine(t *testing.T) {
	tests := []struct {
		name    string
		env     combiner.TexEnv
		mode    uint32
		rgb     uint32
		nargs   int
		color   bool
		scale   uint32
		alphaOp uint32
	}{
		{
			name:  "modulate2x",
			env:   combiner.TexEnv{Op: combiner.EnvCombineModulate, Args: [4]combiner.EnvArg{combiner.ArgPrevious, combiner.ArgTexture}, Mul2: true},
			mode:  tokCombine,
			rgb:   gl.MODULATE,
			nargs: 2, scale: 2, alphaOp: gl.MODULATE,
		},
		{
			name:  "interpolate constant",
			env:   combiner.TexEnv{Op: combiner.EnvCombineInterp, Args: [4]combiner.EnvArg{combiner.ArgTexture, combiner.ArgPrevious, combiner.ArgConstant}},
			mode:  tokCombine,
			rgb:   tokInterpolate,
			nargs: 3, color: true, scale: 1, alphaOp: gl.MODULATE,
		},
		{
			name:  "nv combine4",
			env:   combiner.TexEnv{Op: combiner.EnvCombine4Add, Args: [4]combiner.EnvArg{combiner.ArgTexture, combiner.ArgOne, combiner.ArgPrevious, combiner.ArgOne}},
			mode:  tokCombine4NV,
			rgb:   gl.ADD,
			nargs: 4, scale: 1, alphaOp: gl.ADD,
		},
		{
			name:  "ati modulate add",
			env:   combiner.TexEnv{Op: combiner.EnvCombine3Add, Args: [4]combiner.EnvArg{combiner.ArgTexture, combiner.ArgPrevious, combiner.ArgTexAlpha}},
			mode:  tokCombine,
			rgb:   tokModulateAddATI,
			nargs: 3, scale: 1, alphaOp: gl.MODULATE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := compileEnv(tt.env)
			m := params(p)
			assert.Equal(t, tt.mode, m[gl.TEXTURE_ENV_MODE])
			assert.Equal(t, tt.rgb, m[tokCombineRGB])
			assert.Equal(t, tt.alphaOp, m[tokCombineAlpha])
			assert.Equal(t, tt.scale, m[tokRGBScale])
			assert.Equal(t, tt.color, p.useColor)

			for i := 0; i < 4; i++ {
				_, ok := m[tokSourceRGB[i]]
				assert.Equal(t, i < tt.nargs, ok, "source %d", i)
			}
			assert.Equal(t, uint32(tokPrevious), m[tokSourceAlpha[0]])
			assert.Equal(t, uint32(gl.TEXTURE), m[tokSourceAlpha[1]])
		})
	}
}

func TestArgTokens(t *testing.T) {
	src, op, _ := argTokens(combiner.ArgOne)
	assert.Equal(t, uint32(gl.ZERO), src)
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_COLOR), op)

	src, op, _ = argTokens(combiner.ArgOneMinusPrevAlpha)
	assert.Equal(t, uint32(tokPrevious), src)
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_ALPHA), op)

	src, _, _ = argTokens(combiner.ArgConstant)
	assert.Equal(t, uint32(tokConstant), src)
}

func TestEnvColorFlagUsesConstant(t *testing.T) {
	p := compileEnv(combiner.TexEnv{
		Op:       combiner.EnvCombineModulate,
		Args:     [4]combiner.EnvArg{combiner.ArgPrevious, combiner.ArgTexture},
		EnvColor: true,
	})
	assert.True(t, p.useColor)
}

func TestBlendToken(t *testing.T) {
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_ALPHA), blendToken(material.FactorOneMinusSrcAlpha))
	assert.Equal(t, uint32(gl.DST_COLOR), blendToken(material.FactorDstColor))
	assert.Equal(t, uint32(gl.ONE), blendToken(material.BlendFactor(200)))
}

func TestDiffState(t *testing.T) {
	from := material.BlendAlpha | material.DepthWrite
	to := material.BlendAdd | material.DepthWrite | material.AlphaGE05

	ch := diffState(from, to, false)
	assert.Equal(t, stateChange{blend: true, alpha: true}, ch)

	assert.Equal(t, stateChange{}, diffState(to, to, false))

	all := diffState(to, to, true)
	assert.Equal(t, stateChange{true, true, true, true, true, true}, all)

	ch = diffState(0, material.NoDepthTest|material.DepthEqual|material.PolygonLine, false)
	assert.Equal(t, stateChange{depthTest: true, depthFunc: true, polyMode: true}, ch)
}
