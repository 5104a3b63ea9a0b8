package main

import (
	"fmt"
	"hash/fnv"
	"image"
	"io"
	"path"
	"text/tabwriter"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/lighting"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// lightmapPages is the number of synthetic lightmap slots made available to materials.
const lightmapPages = 4

type planOptions struct {
	Fog     bool
	Dlights int
}

// loadMaterials parses a material file; missing textures become placeholders.
func loadMaterials(file string) (*material.Registry, error) {
	reg := newRegistry()
	cache := texture.NewPlaceholderCache(path.Dir(file))
	if _, err := material.LoadFile(file, reg, cache); err != nil {
		return nil, err
	}
	return reg, nil
}

func newRegistry() *material.Registry {
	reg := material.NewRegistry()
	for i := 0; i < lightmapPages; i++ {
		pix := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for j := range pix.Pix {
			pix.Pix[j] = 128
		}
		reg.AddLightmap(texture.NewImage(fmt.Sprintf("*lightmap%d", i), pix, 0))
	}
	return reg
}

func newPlanner(caps combiner.Caps, s combiner.Settings) *combiner.Planner {
	return combiner.New(caps, s, texture.NewDlightImage(), texture.NewFogImage())
}

func newInput(sh *material.Shader, opts planOptions) *combiner.Input {
	v := view.New(640, 480)
	in := &combiner.Input{
		Shader:   sh,
		View:     v,
		Lighting: lighting.NewSun(45, 60),
	}
	for i := 0; i < opts.Dlights && i < view.MaxDlights; i++ {
		v.Dlights = append(v.Dlights, view.Dlight{
			Origin:    math.Vec3{X: float32(64 * i)},
			Color:     color.White,
			Intensity: 200,
		})
		in.DlightMask |= 1 << i
	}
	if opts.Fog {
		in.FogNum = v.AddFog(view.Fog{Color: color.RGB255(128, 128, 160), TexCoordScale: 1.0 / 512})
	}
	return in
}

// printPlans writes the passes of every shader matching pattern.
func printPlans(w io.Writer, reg *material.Registry, caps combiner.Caps, s combiner.Settings, pattern string, opts planOptions) error {
	p := newPlanner(caps, s)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sh := range reg.Shaders() {
		ok, err := path.Match(pattern, sh.Name)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		plan := p.Compute(newInput(sh, opts))
		describePlan(tw, plan)
	}
	return tw.Flush()
}

func describePlan(w io.Writer, plan *combiner.Plan) {
	sh := plan.Shader
	fmt.Fprintf(w, "%s\tsort %d\t%d stages\t%d passes\n", sh.Name, sh.Sort, len(plan.Stages), len(plan.Passes))
	for i, pass := range plan.Passes {
		fmt.Fprintf(w, "  pass %d\t%s\t\t\n", i, pass.State)
		for u, st := range plan.PassStages(i) {
			colorSrc := "vertex"
			if st.IsConst {
				colorSrc = fmt.Sprintf("const %v", st.Color)
			}
			if u > 0 {
				colorSrc = ""
			}
			fmt.Fprintf(w, "    unit %d\t%s\t%s\t%s\n", u, texture.DisplayName(st.Image), st.Env, colorSrc)
		}
	}
	fmt.Fprintln(w, "\t\t\t")
}

type verifyResult struct {
	Shader string
	Passes int
	Diff   float32
	Want   combiner.RGBA
	Got    combiner.RGBA
	OK     bool
}

// verify evaluates every shader on caps and on a single-texture card and
// compares the resulting pixel.
func verify(reg *material.Registry, caps combiner.Caps, tolerance float32) []verifyResult {
	single := newPlanner(combiner.Profiles["single"], combiner.Settings{})
	packed := newPlanner(caps, combiner.Settings{})

	frag := combiner.Fragment{
		Texel:  func(st *combiner.RenderStage) combiner.RGBA { return texel(st.Image) },
		Vertex: combiner.RGBA{0.9, 0.8, 0.7, 1},
	}
	dst := combiner.RGBA{0.3, 0.4, 0.5, 1}

	var out []verifyResult
	for _, sh := range reg.Shaders() {
		if len(sh.Stages) == 0 {
			continue
		}
		want := combiner.Evaluate(single.Compute(newInput(sh, planOptions{})), frag, dst)
		plan := packed.Compute(newInput(sh, planOptions{}))
		got := combiner.Evaluate(plan, frag, dst)

		r := verifyResult{Shader: sh.Name, Passes: len(plan.Passes), Want: want, Got: got}
		for k := 0; k < 3; k++ {
			r.Diff = max(r.Diff, abs(want[k]-got[k]))
		}
		r.OK = r.Diff <= tolerance
		out = append(out, r)
	}
	return out
}

// texel derives a stable color from the image name.
func texel(img *texture.Image) combiner.RGBA {
	if img == nil {
		return combiner.RGBA{1, 1, 1, 1}
	}
	h := fnv.New32a()
	h.Write([]byte(img.Name))
	v := h.Sum32()
	ch := func(shift uint) float32 {
		return 0.1 + 0.8*float32((v>>shift)&0xFF)/255
	}
	return combiner.RGBA{ch(0), ch(8), ch(16), 0.25 + 0.75*float32(v>>24)/255}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
