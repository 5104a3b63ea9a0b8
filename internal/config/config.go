// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Renderer RendererConfig `yaml:"renderer"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig holds asset paths.
type DataConfig struct {
	MaterialFile string `yaml:"material_file"` // YAML shader descriptors
	TextureDir   string `yaml:"texture_dir"`   // Root for texture names
	FontFile     string `yaml:"font_file"`     // BMFont descriptor, empty = grid font
	ShotDir      string `yaml:"shot_dir"`      // Screenshot output directory

	GRFPaths []string `yaml:"grf_paths"` // Archives searched before texture_dir
	Map      string   `yaml:"map"`       // GND path inside the archives, empty = demo courtyard
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// RendererConfig holds the multitexture renderer settings.
type RendererConfig struct {
	Overbright      int  `yaml:"overbright"`        // Lightmap shift, 0..2
	DynamicLights   bool `yaml:"dynamic_lights"`
	MaxTextureUnits int  `yaml:"max_texture_units"` // 0 = hardware limit
	MaxVertexes     int  `yaml:"max_vertexes"`
	MaxIndexes      int  `yaml:"max_indexes"`
	NoFog           bool `yaml:"no_fog"`
	ForcePostLight  bool `yaml:"force_post_light"`

	Fullbright   bool   `yaml:"fullbright"`
	LightmapOnly bool   `yaml:"lightmap_only"`
	ShowFillRate bool   `yaml:"show_fill_rate"`
	Wireframe    bool   `yaml:"wireframe"`
	SpyShader    string `yaml:"spy_shader"` // path.Match pattern

	DisableExtensions []string `yaml:"disable_extensions"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Renderer: RendererConfig{
			Overbright:    1,
			DynamicLights: true,
			MaxVertexes:   4000,
			MaxIndexes:    6 * 4000,
		},
		Data: DataConfig{
			MaterialFile: "materials.yaml",
			TextureDir:   "textures",
			ShotDir:      "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: bad size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	r := &c.Renderer
	if r.Overbright < 0 || r.Overbright > 2 {
		errs = append(errs, fmt.Errorf("renderer.overbright: %d not in 0..2", r.Overbright))
	}
	if r.MaxTextureUnits < 0 {
		errs = append(errs, fmt.Errorf("renderer.max_texture_units: %d is negative", r.MaxTextureUnits))
	}
	if r.MaxVertexes < 4 || r.MaxIndexes < 6 {
		errs = append(errs, fmt.Errorf("renderer: batch of %d vertexes / %d indexes cannot hold a quad", r.MaxVertexes, r.MaxIndexes))
	}
	if m := c.Data.Map; m != "" && !strings.HasSuffix(strings.ToLower(m), ".gnd") {
		errs = append(errs, fmt.Errorf("data.map: %q is not a .gnd file", m))
	}
	return errors.Join(errs...)
}
