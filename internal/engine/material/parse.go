package material

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", args[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseWave0 parses "base amp phase freq" with a sine function.
func parseWave0(args []string) (Wave, error) {
	f, err := parseFloats(args, 4)
	if err != nil {
		return Wave{}, fmt.Errorf("invalid wave arguments: %w", err)
	}
	return Wave{Func: math.FuncSin, Base: f[0], Amp: f[1], Phase: f[2], Freq: f[3]}, nil
}

// parseWave parses "func base amp phase freq". An "inverse" prefix flips the function.
func parseWave(args []string) (Wave, error) {
	if len(args) < 5 {
		return Wave{}, fmt.Errorf("invalid wave arguments: need 5, got %d", len(args))
	}
	name := strings.ToLower(args[0])
	fn, ok := math.ParseWaveFunc(name)
	inverse := false
	if !ok && strings.HasPrefix(name, "inverse") {
		fn, ok = math.ParseWaveFunc(strings.TrimPrefix(name, "inverse"))
		inverse = true
	}
	if !ok {
		return Wave{}, fmt.Errorf("bad wave func %q", args[0])
	}
	w, err := parseWave0(args[1:])
	if err != nil {
		return Wave{}, err
	}
	w.Func = fn
	if inverse {
		switch fn {
		case math.FuncSawtooth:
			w.Func = math.FuncInverseSawtooth
		default:
			w.Amp = -w.Amp
		}
	}
	return w, nil
}

func parseVector(args []string) (math.Vec3, error) {
	if len(args) < 5 || args[0] != "(" || args[4] != ")" {
		return math.Vec3{}, fmt.Errorf("invalid vector param")
	}
	f, err := parseFloats(args[1:4], 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func parseColor(args []string) (color.Color, error) {
	f, err := parseFloats(args, 3)
	if err != nil {
		return color.Color{}, fmt.Errorf("invalid color: %w", err)
	}
	return color.RGB(f[0], f[1], f[2]), nil
}

// parseRGBGen parses an rgbGen command. It returns the generator and the color to store
// (alpha is taken from the current stage color).
func parseRGBGen(args []string, cur color.Color) (RGBGen, color.Color, error) {
	if len(args) == 0 {
		return RGBGen{}, cur, fmt.Errorf("empty rgbGen")
	}
	white := color.White.WithAlpha(cur[3])
	simple := map[string]RGBGenKind{
		"identity":         RGBIdentity,
		"identitylighting": RGBIdentityLighting,
		"entity":           RGBEntity,
		"oneminusentity":   RGBOneMinusEntity,
		"vertex":           RGBVertex,
		"oneminusvertex":   RGBOneMinusVertex,
		"exactvertex":      RGBExactVertex,
		"boostvertex":      RGBBoostVertex,
		"lightingdiffuse":  RGBDiffuse,
		"globalfog":        RGBGlobalFog,
	}
	name := strings.ToLower(args[0])
	if k, ok := simple[name]; ok {
		return RGBGen{Kind: k}, white, nil
	}
	switch name {
	case "const", "constant":
		c, err := parseColor(args[1:])
		if err != nil {
			return RGBGen{}, cur, err
		}
		return RGBGen{Kind: RGBConst}, c.WithAlpha(cur[3]), nil
	case "wave":
		w, err := parseWave(args[1:])
		if err != nil {
			return RGBGen{}, cur, err
		}
		return RGBGen{Kind: RGBWave, Wave: w}, white, nil
	case "colorwave":
		c, err := parseColor(args[1:])
		if err != nil {
			return RGBGen{}, cur, err
		}
		if len(args) < 4 {
			return RGBGen{}, cur, fmt.Errorf("colorWave needs a wave")
		}
		w, err := parseWave(args[4:])
		if err != nil {
			return RGBGen{}, cur, err
		}
		return RGBGen{Kind: RGBWave, Wave: w}, c.WithAlpha(cur[3]), nil
	}
	return RGBGen{}, cur, fmt.Errorf("unknown rgbGen %q", args[0])
}

// parseAlphaGen parses an alphaGen command. Constant alpha is written into the returned color.
func parseAlphaGen(args []string, cur color.Color) (AlphaGen, color.Color, error) {
	if len(args) == 0 {
		return AlphaGen{}, cur, fmt.Errorf("empty alphaGen")
	}
	simple := map[string]AlphaGenKind{
		"identity":         AlphaIdentity,
		"entity":           AlphaEntity,
		"oneminusentity":   AlphaOneMinusEntity,
		"vertex":           AlphaVertex,
		"oneminusvertex":   AlphaOneMinusVertex,
		"lightingspecular": AlphaLightingSpecular,
	}
	name := strings.ToLower(args[0])
	if k, ok := simple[name]; ok {
		return AlphaGen{Kind: k}, cur, nil
	}
	switch name {
	case "const", "constant":
		f, err := parseFloats(args[1:], 1)
		if err != nil {
			return AlphaGen{}, cur, err
		}
		return AlphaGen{Kind: AlphaConst}, cur.WithAlpha(math.Clamp255(math.Round(f[0] * 255))), nil
	case "wave":
		w, err := parseWave(args[1:])
		if err != nil {
			return AlphaGen{}, cur, err
		}
		return AlphaGen{Kind: AlphaWave, Wave: w}, cur, nil
	case "dot", "oneminusdot":
		g := AlphaGen{Kind: AlphaDot, Min: 0, Max: 1}
		if name == "oneminusdot" {
			g.Kind = AlphaOneMinusDot
		}
		if len(args) >= 3 {
			f, err := parseFloats(args[1:], 2)
			if err != nil {
				return AlphaGen{}, cur, err
			}
			g.Min, g.Max = f[0], f[1]
		}
		return g, cur, nil
	case "portal":
		f, err := parseFloats(args[1:], 1)
		if err != nil {
			return AlphaGen{}, cur, err
		}
		if f[0] <= 0 {
			return AlphaGen{}, cur, fmt.Errorf("portal range must be positive")
		}
		return AlphaGen{Kind: AlphaPortal, PortalRange: f[0]}, cur, nil
	}
	return AlphaGen{}, cur, fmt.Errorf("unknown alphaGen %q", args[0])
}

func parseTCGen(args []string) (TCGen, error) {
	if len(args) == 0 {
		return TCGen{}, fmt.Errorf("empty tcGen")
	}
	switch strings.ToLower(args[0]) {
	case "texture", "base":
		return TCGen{Kind: TCTexture}, nil
	case "lightmap":
		return TCGen{Kind: TCLightmap}, nil
	case "environment":
		return TCGen{Kind: TCEnvironment}, nil
	case "vector":
		if len(args) < 11 {
			return TCGen{}, fmt.Errorf("tcGen vector needs two vectors")
		}
		v0, err := parseVector(args[1:6])
		if err != nil {
			return TCGen{}, err
		}
		v1, err := parseVector(args[6:11])
		if err != nil {
			return TCGen{}, err
		}
		return TCGen{Kind: TCVector, Vectors: [2]math.Vec3{v0, v1}}, nil
	}
	return TCGen{}, fmt.Errorf("unknown tcGen %q", args[0])
}

func parseTcMod(args []string) (TcMod, error) {
	if len(args) == 0 {
		return TcMod{}, fmt.Errorf("empty tcMod")
	}
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "turb":
		w, err := parseWave0(rest)
		return TcMod{Kind: TcModTurb, Wave: w}, err
	case "scale", "scroll", "offset":
		f, err := parseFloats(rest, 2)
		if err != nil {
			return TcMod{}, err
		}
		kind := map[string]TcModKind{"scale": TcModScale, "scroll": TcModScroll, "offset": TcModOffset}[strings.ToLower(args[0])]
		return TcMod{Kind: kind, S: f[0], T: f[1]}, nil
	case "stretch":
		w, err := parseWave(rest)
		return TcMod{Kind: TcModStretch, Wave: w}, err
	case "rotate":
		f, err := parseFloats(rest, 1)
		if err != nil {
			return TcMod{}, err
		}
		return TcMod{Kind: TcModRotate, RotateSpeed: f[0]}, nil
	case "transform":
		f, err := parseFloats(rest, 6)
		if err != nil {
			return TcMod{}, err
		}
		return TcMod{
			Kind:      TcModTransform,
			Matrix:    [2][2]float32{{f[0], f[1]}, {f[2], f[3]}},
			Translate: [2]float32{f[4], f[5]},
		}, nil
	case "warp":
		return TcMod{Kind: TcModWarp}, nil
	}
	return TcMod{}, fmt.Errorf("unknown tcMod %q", args[0])
}

func parseDeform(args []string) (Deform, error) {
	if len(args) == 0 {
		return Deform{}, fmt.Errorf("empty deformVertexes")
	}
	switch strings.ToLower(args[0]) {
	case "wave":
		f, err := parseFloats(args[1:], 1)
		if err != nil {
			return Deform{}, err
		}
		if f[0] == 0 {
			return Deform{}, fmt.Errorf("bad deform wave div")
		}
		w, err := parseWave(args[2:])
		if err != nil {
			return Deform{}, err
		}
		return Deform{Kind: DeformWave, WaveDiv: 1 / f[0], Wave: w}, nil
	case "move":
		f, err := parseFloats(args[1:], 3)
		if err != nil {
			return Deform{}, err
		}
		w, err := parseWave(args[4:])
		if err != nil {
			return Deform{}, err
		}
		return Deform{Kind: DeformMove, Move: math.Vec3{X: f[0], Y: f[1], Z: f[2]}, Wave: w}, nil
	case "bulge":
		f, err := parseFloats(args[1:], 3)
		if err != nil {
			return Deform{}, err
		}
		return Deform{Kind: DeformBulge, BulgeWidth: f[0], BulgeHeight: f[1], BulgeSpeed: f[2]}, nil
	case "autosprite":
		return Deform{Kind: DeformAutosprite}, nil
	case "autosprite2":
		return Deform{Kind: DeformAutosprite2}, nil
	}
	return Deform{}, fmt.Errorf("unknown deform type %q", args[0])
}

func parseSort(s string) (Sort, error) {
	names := map[string]Sort{
		"portal":     SortPortal,
		"sky":        SortSky,
		"opaque":     SortOpaque,
		"decal":      SortDecal,
		"seethrough": SortSeeThrough,
		"banner":     SortBanner,
		"underwater": SortUnderwater,
		"additive":   SortSprite,
		"nearest":    SortNearest,
	}
	if v, ok := names[strings.ToLower(s)]; ok {
		return v, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad sort %q", s)
	}
	return Sort(n), nil
}

func parseCull(s string) (CullMode, error) {
	switch strings.ToLower(s) {
	case "", "front":
		return CullFront, nil
	case "none", "disable", "twosided":
		return CullNone, nil
	case "back", "backside", "backsided":
		return CullBack, nil
	}
	return 0, fmt.Errorf("bad cull param %q", s)
}

func parseAlphaFunc(s string) (GLState, error) {
	switch strings.ToUpper(s) {
	case "":
		return 0, nil
	case "GT0":
		return AlphaGT0, nil
	case "LT128":
		return AlphaLT05, nil
	case "GE128":
		return AlphaGE05, nil
	}
	return 0, fmt.Errorf("bad alpha mode %q", s)
}

func parseDepthFunc(s string) (GLState, error) {
	switch strings.ToLower(s) {
	case "", "lequal":
		return 0, nil
	case "equal":
		return DepthEqual, nil
	}
	return 0, fmt.Errorf("bad depth argument %q", s)
}
