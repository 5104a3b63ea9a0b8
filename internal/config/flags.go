package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagOverbright = flag.Int("overbright", -1, "Lightmap overbright shift (0..2)")
	flagMaxTMU     = flag.Int("max-tmu", -1, "Limit texture units (0 = hardware)")
	flagFullbright = flag.Bool("fullbright", false, "Draw without lighting")
	flagLightmap   = flag.Bool("lightmap", false, "Draw lighting only")
	flagFillRate   = flag.Bool("fillrate", false, "Show the fill-rate heatmap")
	flagSpy        = flag.String("spy", "", "Trace packing of shaders matching this pattern")
	flagMap        = flag.String("map", "", "Ground mesh to load, e.g. data/prontera.gnd")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagOverbright >= 0 {
		cfg.Renderer.Overbright = *flagOverbright
	}
	if *flagMaxTMU >= 0 {
		cfg.Renderer.MaxTextureUnits = *flagMaxTMU
	}
	if *flagFullbright {
		cfg.Renderer.Fullbright = true
	}
	if *flagLightmap {
		cfg.Renderer.LightmapOnly = true
	}
	if *flagFillRate {
		cfg.Renderer.ShowFillRate = true
	}
	if *flagSpy != "" {
		cfg.Renderer.SpyShader = *flagSpy
	}
	if *flagMap != "" {
		cfg.Data.Map = *flagMap
	}
}
