package material

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/logger"
)

// File is the on-disk material descriptor.
type File struct {
	Shaders []ShaderDesc `yaml:"shaders"`
}

// ShaderDesc describes one shader. Commands use the classic shader script vocabulary,
// e.g. rgb_gen: "wave sin 0.5 0.5 0 1".
type ShaderDesc struct {
	Name           string      `yaml:"name"`
	Sort           string      `yaml:"sort"`
	Cull           string      `yaml:"cull"`
	PolygonOffset  bool        `yaml:"polygon_offset"`
	NoDraw         bool        `yaml:"nodraw"`
	Lightmap       *int        `yaml:"lightmap"`
	VertexLight    bool        `yaml:"vertex_light"`
	LightStyles    []uint8     `yaml:"light_styles"`
	FastStylesOnly bool        `yaml:"fast_styles_only"`
	Deforms        []string    `yaml:"deforms"`
	Stages         []StageDesc `yaml:"stages"`
}

// StageDesc describes one stage.
type StageDesc struct {
	Map             string   `yaml:"map"`
	ClampMap        string   `yaml:"clamp_map"`
	AnimMap         []string `yaml:"anim_map"`
	AnimFreq        float32  `yaml:"anim_freq"`
	FrameFromEntity bool     `yaml:"frame_from_entity"`
	Blend           string   `yaml:"blend"`
	AlphaFunc       string   `yaml:"alpha_func"`
	DepthFunc       string   `yaml:"depth_func"`
	DepthWrite      bool     `yaml:"depth_write"`
	NoDepthTest     bool     `yaml:"no_depth_test"`
	RGBGen          string   `yaml:"rgb_gen"`
	AlphaGen        string   `yaml:"alpha_gen"`
	TCGen           string   `yaml:"tc_gen"`
	TcMods          []string `yaml:"tc_mods"`
}

// ImageFinder resolves texture names.
type ImageFinder interface {
	Find(name string) (*texture.Image, error)
}

// LoadFile reads a descriptor file and registers its shaders.
func LoadFile(path string, reg *Registry, images ImageFinder) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read materials: %w", err)
	}
	n, err := Parse(data, reg, images)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Parse decodes descriptor YAML and registers its shaders. Shaders that fail to
// compile are logged and skipped; the count of registered shaders is returned.
func Parse(data []byte, reg *Registry, images ImageFinder) (int, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse materials: %w", err)
	}
	log := logger.Named("material")
	n := 0
	for i := range f.Shaders {
		sh, err := Compile(&f.Shaders[i], reg, images)
		if err != nil {
			log.Warn("shader skipped", zap.String("shader", f.Shaders[i].Name), zap.Error(err))
			continue
		}
		if reg.Register(sh) < 0 {
			return n, fmt.Errorf("too many shaders (max %d)", MaxShaders)
		}
		n++
	}
	log.Debug("materials loaded", zap.Int("shaders", n))
	return n, nil
}

// Compile builds a Shader from its descriptor.
func Compile(d *ShaderDesc, reg *Registry, images ImageFinder) (*Shader, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("shader without name")
	}
	if len(d.Stages) > MaxShaderStages {
		return nil, fmt.Errorf("too many stages (%d > %d)", len(d.Stages), MaxShaderStages)
	}
	if len(d.Deforms) > MaxShaderDeforms {
		return nil, fmt.Errorf("too many deforms (%d > %d)", len(d.Deforms), MaxShaderDeforms)
	}
	if len(d.LightStyles) > MaxLightStyles {
		return nil, fmt.Errorf("too many light styles (%d > %d)", len(d.LightStyles), MaxLightStyles)
	}

	sh := &Shader{
		Name:           d.Name,
		Sort:           SortOpaque,
		PolygonOffset:  d.PolygonOffset,
		NoDraw:         d.NoDraw,
		LightmapNumber: LightmapNone,
		FastStylesOnly: d.FastStylesOnly,
	}
	var err error
	if d.Sort != "" {
		if sh.Sort, err = parseSort(d.Sort); err != nil {
			return nil, err
		}
	}
	if sh.Cull, err = parseCull(d.Cull); err != nil {
		return nil, err
	}
	switch {
	case d.VertexLight:
		sh.LightmapNumber = LightmapVertex
	case d.Lightmap != nil:
		sh.LightmapNumber = *d.Lightmap
	}
	copy(sh.LightStyles[:], d.LightStyles)

	for _, cmd := range d.Deforms {
		def, err := parseDeform(strings.Fields(cmd))
		if err != nil {
			return nil, err
		}
		sh.Deforms = append(sh.Deforms, def)
	}
	for i := range d.Stages {
		st, err := compileStage(sh, &d.Stages[i], reg, images)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		sh.Stages = append(sh.Stages, st)
	}
	sh.Finish()
	return sh, nil
}

func compileStage(sh *Shader, d *StageDesc, reg *Registry, images ImageFinder) (*Stage, error) {
	st := &Stage{
		AnimFreq:        d.AnimFreq,
		FrameFromEntity: d.FrameFromEntity,
		RGBGen:          RGBGen{Kind: RGBIdentity},
	}

	find := func(name string, clamp bool) (*texture.Image, error) {
		if name == "$texture" {
			name = sh.Name
		}
		if strings.HasPrefix(name, "./") {
			if i := strings.LastIndex(sh.Name, "/"); i >= 0 {
				name = sh.Name[:i+1] + name[2:]
			} else {
				name = name[2:]
			}
		}
		if images == nil {
			return nil, fmt.Errorf("no texture: %s", name)
		}
		img, err := images.Find(name)
		if err != nil {
			return nil, fmt.Errorf("no texture: %w", err)
		}
		if clamp {
			img.Clamp = true
		}
		return img, nil
	}

	switch {
	case len(d.AnimMap) > 0:
		if len(d.AnimMap) > MaxStageTextures {
			return nil, fmt.Errorf("too many animmap textures")
		}
		for _, name := range d.AnimMap {
			img, err := find(name, d.ClampMap != "")
			if err != nil {
				return nil, err
			}
			st.Images = append(st.Images, img)
		}
	case strings.EqualFold(d.Map, "$lightmap"):
		if sh.LightmapNumber >= 0 {
			st.Images = []*texture.Image{reg.Lightmap(sh.LightmapNumber)}
			st.IsLightmap = true
			st.State |= DepthWrite
			st.TCGen = TCGen{Kind: TCLightmap}
		} else {
			st.Images = []*texture.Image{nil}
		}
	case strings.EqualFold(d.Map, "$whiteimage") || (d.Map == "" && d.ClampMap == ""):
		st.Images = []*texture.Image{nil}
	default:
		name, clamp := d.Map, false
		if name == "" {
			name, clamp = d.ClampMap, true
		}
		img, err := find(name, clamp)
		if err != nil {
			return nil, err
		}
		st.Images = []*texture.Image{img}
	}

	if d.Blend != "" {
		blend, err := ParseBlend(strings.Fields(d.Blend))
		if err != nil {
			return nil, err
		}
		st.State = st.State.WithBlend(blend)
	}
	alpha, err := parseAlphaFunc(d.AlphaFunc)
	if err != nil {
		return nil, err
	}
	st.State = st.State.WithAlpha(alpha)
	depth, err := parseDepthFunc(d.DepthFunc)
	if err != nil {
		return nil, err
	}
	st.State |= depth
	if d.DepthWrite {
		st.State |= DepthWrite
	}
	if d.NoDepthTest {
		st.State |= NoDepthTest
	}

	st.Color = st.Color.WithAlpha(255)
	if d.RGBGen != "" {
		if st.RGBGen, st.Color, err = parseRGBGen(strings.Fields(d.RGBGen), st.Color); err != nil {
			return nil, err
		}
	}
	if d.AlphaGen != "" {
		if st.AlphaGen, st.Color, err = parseAlphaGen(strings.Fields(d.AlphaGen), st.Color); err != nil {
			return nil, err
		}
	}
	if d.TCGen != "" {
		if st.TCGen, err = parseTCGen(strings.Fields(d.TCGen)); err != nil {
			return nil, err
		}
	}
	for _, cmd := range d.TcMods {
		m, err := parseTcMod(strings.Fields(cmd))
		if err != nil {
			return nil, err
		}
		st.TcMods = append(st.TcMods, m)
	}
	return st, nil
}
