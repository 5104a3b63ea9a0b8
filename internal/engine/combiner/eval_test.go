package combiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
)

func TestPackingMatchesSinglePassFallback(t *testing.T) {
	a, b, c := img("a"), img("b"), img("c")
	texels := map[*texture.Image]RGBA{
		a: {0.4, 0.3, 0.2, 1},
		b: {0.5, 0.4, 0.3, 0.25},
		c: {0.1, 0.2, 0.15, 1},
	}
	frag := Fragment{
		Texel:  func(st *RenderStage) RGBA { return texels[st.Image] },
		Vertex: RGBA{1, 1, 1, 1},
	}
	dst := RGBA{0.8, 0.7, 0.6, 1}

	tests := []struct {
		name   string
		caps   Caps
		stages func() []*material.Stage
		passes int
		env    EnvOp
	}{
		{
			name: "modulate",
			caps: Profiles["arb"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), texStage(b, material.BlendModulate)}
			},
			passes: 1, env: EnvModulate,
		},
		{
			name: "add",
			caps: Profiles["arb"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), texStage(b, material.BlendAdd)}
			},
			passes: 1, env: EnvAdd,
		},
		{
			name: "add through combine",
			caps: NewCaps(ExtCombineEXT, 2, 1024),
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), texStage(b, material.BlendAdd)}
			},
			passes: 1, env: EnvCombineAdd,
		},
		{
			name: "modulate2",
			caps: Profiles["arb"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), texStage(b, material.BlendModulate2)}
			},
			passes: 1, env: EnvCombineModulate,
		},
		{
			name: "nv constant add",
			caps: Profiles["tnt2"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), constStage(b, material.BlendAdd, color.RGB255(128, 64, 255))}
			},
			passes: 1, env: EnvCombine4Add,
		},
		{
			name: "nv decal",
			caps: Profiles["tnt2"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), texStage(b, material.BlendAlpha)}
			},
			passes: 1, env: EnvCombine4Add,
		},
		{
			name: "nv filter",
			caps: Profiles["tnt2"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, material.BlendModulate), texStage(b, material.BlendFilter)}
			},
			passes: 1, env: EnvCombine4Add,
		},
		{
			name: "ati constant add",
			caps: Profiles["radeon"],
			stages: func() []*material.Stage {
				return []*material.Stage{texStage(a, 0), constStage(b, material.BlendAdd, color.RGB255(128, 64, 255))}
			},
			passes: 1, env: EnvCombine3Add,
		},
		{
			name: "ati alpha add",
			caps: Profiles["radeon"],
			stages: func() []*material.Stage {
				return []*material.Stage{
					texStage(a, 0),
					texStage(b, material.Blend(material.FactorSrcAlpha, material.FactorOne)),
				}
			},
			passes: 1, env: EnvCombine3Add,
		},
		{
			name: "interpolated add",
			caps: Profiles["arb"],
			stages: func() []*material.Stage {
				return []*material.Stage{
					constStage(a, 0, color.RGB255(200, 100, 50)),
					constStage(b, material.BlendAdd, color.RGB255(100, 150, 60)),
				}
			},
			passes: 1, env: EnvCombineInterp,
		},
		{
			name: "destination alpha stays split",
			caps: Profiles["tnt2"],
			stages: func() []*material.Stage {
				return []*material.Stage{
					texStage(a, material.BlendAdd),
					texStage(b, material.Blend(material.FactorOne, material.FactorDstAlpha)),
				}
			},
			passes: 2,
		},
		{
			name: "three layers",
			caps: Profiles["geforce"],
			stages: func() []*material.Stage {
				return []*material.Stage{
					texStage(a, 0), texStage(b, material.BlendModulate), texStage(c, material.BlendAdd),
				}
			},
			passes: 1, env: EnvModulate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := func() *Input {
				sh := newShader(tt.stages()...)
				return &Input{Shader: sh, View: view.New(640, 480)}
			}

			single := newPlanner(t, Profiles["single"], Settings{}).Compute(in())
			require.Len(t, single.Passes, len(single.Stages))
			want := Evaluate(single, frag, dst)

			packed := newPlanner(t, tt.caps, Settings{}).Compute(in())
			require.Len(t, packed.Passes, tt.passes)
			if tt.passes == 1 {
				assert.Equal(t, tt.env, packed.Stages[1].Env.Op, packed.Stages[1].Env.String())
			}
			got := Evaluate(packed, frag, dst)

			for k := 0; k < 3; k++ {
				assert.InDelta(t, want[k], got[k], 0.01, "channel %d: want %v got %v", k, want, got)
			}
		})
	}
}

func TestEvaluateBlend(t *testing.T) {
	src := RGBA{0.5, 0.5, 0.5, 0.5}
	dst := RGBA{1, 0, 0, 1}
	assert.Equal(t, src, blend(0, src, dst))
	assert.Equal(t, RGBA{1, 0.5, 0.5, 1}, blend(material.BlendAdd, src, dst))
	assert.Equal(t, RGBA{0.75, 0.25, 0.25, 0.75}, blend(material.BlendAlpha, src, dst))
	assert.Equal(t, RGBA{0.5, 0, 0, 0.5}, blend(material.BlendModulate, src, dst))
}

func TestTexEnvString(t *testing.T) {
	assert.Equal(t, "MODULATE", envModulate.String())
	assert.Equal(t, "C_MODULATE: 2 x (P.c x T.c)", envModulate2.String())
	env := TexEnv{Op: EnvCombine4Add, Args: [4]EnvArg{ArgConstant, ArgTexture, ArgOne, ArgPrevious}}
	assert.Equal(t, "C4_ADD: C x T.c + 1 x P.c", env.String())
}
