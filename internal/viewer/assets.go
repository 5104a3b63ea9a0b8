package viewer

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/config"
	"github.com/Faultbox/midgard-gl/internal/engine/font"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/surface"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/world"
	"github.com/Faultbox/midgard-gl/pkg/formats"
	"github.com/Faultbox/midgard-gl/pkg/grf"
)

// Built-in shader and image names. A material file may override the shaders.
const (
	FontShaderName = "gfx/2d/conchars"
	GemShaderName  = "models/gem"

	fontImageName = "*conchars"
	gemImageName  = "*gem"
	gemImageSize  = 32
)

// builtinShaders are registered unless the material file defines them.
var builtinShaders = []material.ShaderDesc{
	{
		Name: FontShaderName,
		Cull: "none",
		Stages: []material.StageDesc{
			{Map: fontImageName, Blend: "blend", RGBGen: "vertex", AlphaGen: "vertex"},
		},
	},
	{
		Name: GemShaderName,
		Stages: []material.StageDesc{
			{Map: gemImageName, RGBGen: "lightingDiffuse"},
			{Map: texture.ParticleImageName, Blend: "add", TCGen: "environment", RGBGen: "wave sin 0.5 0.5 0 0.5"},
		},
	},
}

// assets are the data file systems and the image cache built over them.
type assets struct {
	archives []*grf.Archive
	data     grf.Multi
	images   *texture.Cache
}

// openAssets opens the configured archives in order, then the texture directory.
func openAssets(cfg *config.DataConfig, maxTextureSize int) (*assets, error) {
	a := &assets{}
	for _, p := range cfg.GRFPaths {
		arc, err := grf.Open(p)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.archives = append(a.archives, arc)
		a.data = append(a.data, arc)
	}
	dir := cfg.TextureDir
	if dir == "" {
		dir = "."
	}
	a.data = append(a.data, os.DirFS(dir))

	a.images = texture.NewCacheFS(a.data, maxTextureSize, true)
	a.images.Add(texture.NewParticleImage())
	a.images.Add(texture.NewImage(fontImageName, font.BasicImage(), 0))
	a.images.Add(texture.NewImage(gemImageName, gemPixels(), 0))
	return a, nil
}

// Close closes the archives.
func (a *assets) Close() {
	for _, arc := range a.archives {
		arc.Close()
	}
	a.archives = nil
}

// loadMaterials registers the shaders of path. A missing file is not an error.
func loadMaterials(path string, reg *material.Registry, images material.ImageFinder, log *zap.Logger) (int, error) {
	if path == "" {
		return 0, nil
	}
	n, err := material.LoadFile(path, reg, images)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("no material file", zap.String("path", path))
		return 0, nil
	}
	if err != nil {
		return n, err
	}
	log.Info("materials loaded", zap.String("path", path), zap.Int("shaders", n))
	return n, nil
}

// registerBuiltins adds the built-in shaders missing from reg and the particle shader.
func registerBuiltins(reg *material.Registry, images material.ImageFinder) error {
	for i := range builtinShaders {
		d := &builtinShaders[i]
		if _, ok := reg.ByName(d.Name); ok {
			continue
		}
		sh, err := material.Compile(d, reg, images)
		if err != nil {
			return fmt.Errorf("builtin shader %s: %w", d.Name, err)
		}
		reg.Register(sh)
	}
	if _, ok := reg.ByName(surface.ParticleShaderName); !ok {
		img, err := images.Find(texture.ParticleImageName)
		if err != nil {
			return fmt.Errorf("particle image: %w", err)
		}
		reg.Register(surface.NewParticleShader(img))
	}
	return nil
}

// loadWorld builds the configured ground, or the demo courtyard when none is set.
func loadWorld(name string, data fs.FS, reg *material.Registry, images material.ImageFinder) (*world.World, error) {
	if name == "" {
		return world.Demo(reg)
	}
	name = strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	raw, err := fs.ReadFile(data, name)
	if err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}
	gnd, err := formats.ParseGND(raw)
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", name, err)
	}
	return world.Build(gnd, reg, images)
}

// gemPixels is a violet radial gradient.
func gemPixels() *image.RGBA {
	pix := image.NewRGBA(image.Rect(0, 0, gemImageSize, gemImageSize))
	half := float32(gemImageSize) / 2
	for y := 0; y < gemImageSize; y++ {
		for x := 0; x < gemImageSize; x++ {
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			f := 1 - min(dx*dx+dy*dy, 1)*0.6
			o := pix.PixOffset(x, y)
			pix.Pix[o] = uint8(180 * f)
			pix.Pix[o+1] = uint8(90 * f)
			pix.Pix[o+2] = uint8(255 * f)
			pix.Pix[o+3] = 255
		}
	}
	return pix
}
