// Package viewer runs the interactive renderer: it loads a world, drives an orbit
// camera from the keyboard and draws every frame through the multitexture planner.
package viewer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/config"
	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/camera"
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/font"
	"github.com/Faultbox/midgard-gl/internal/engine/glstate"
	"github.com/Faultbox/midgard-gl/internal/engine/input"
	"github.com/Faultbox/midgard-gl/internal/engine/lighting"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/scene"
	"github.com/Faultbox/midgard-gl/internal/engine/surface"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/engine/window"
	"github.com/Faultbox/midgard-gl/internal/engine/world"
	"github.com/Faultbox/midgard-gl/internal/logger"
)

const title = "combview"

var clearColor = color.RGB255(40, 48, 64)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window *window.Window
	input  *input.Input
	gl     *glstate.Submitter

	assets  *assets
	reg     *material.Registry
	watcher *material.Watcher

	profiles  *profileCycle
	planner   *combiner.Planner
	batch     *batch.Batch
	scene     *scene.Scene
	sun       *lighting.Sun
	generated []*texture.Image

	view    *view.View
	camera  *camera.OrbitCamera
	world   *world.World
	props   *Props
	overlay overlay
	shots   shots
	shoot   bool

	start time.Time
	now   float32
	info  frameInfo
}

// New opens the window and loads the world.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg: cfg,
		log: logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	if err := v.init(); err != nil {
		v.Close()
		return nil, err
	}
	v.log.Info("viewer initialized")
	return v, nil
}

// init builds everything that needs the GL context.
func (v *Viewer) init() error {
	cfg := v.cfg
	if err := glstate.Init(); err != nil {
		return err
	}
	caps, err := glstate.DetectCaps(cfg.Renderer.MaxTextureUnits, cfg.Renderer.DisableExtensions)
	if err != nil {
		return err
	}
	v.gl = glstate.New(glstate.DefaultConfig(), caps.MaxActiveTextures)
	v.gl.Wireframe = cfg.Renderer.Wireframe
	v.profiles = newProfileCycle(caps)

	if v.assets, err = openAssets(&cfg.Data, caps.MaxTextureSize); err != nil {
		return err
	}
	v.reg = material.NewRegistry()
	if _, err := loadMaterials(cfg.Data.MaterialFile, v.reg, v.assets.images, v.log); err != nil {
		return err
	}
	if err := registerBuiltins(v.reg, v.assets.images); err != nil {
		return err
	}
	v.watch(cfg.Data.MaterialFile)

	dlightImage, fogImage := texture.NewDlightImage(), texture.NewFogImage()
	v.generated = append(v.generated, dlightImage, fogImage)
	v.planner = combiner.New(caps, settingsFromConfig(&cfg.Renderer), dlightImage, fogImage)
	v.sun = lighting.NewSun(45, 50)
	v.batch = batch.New(v.gl, v.planner, cfg.Renderer.MaxVertexes, cfg.Renderer.MaxIndexes)
	v.batch.Lighting = v.sun
	v.batch.Notify = func(msg string) { v.overlay.notify(msg, v.now) }
	v.scene = scene.New(v.reg, v.batch)

	if v.world, err = loadWorld(cfg.Data.Map, v.assets.data, v.reg, v.assets.images); err != nil {
		return err
	}
	v.camera = camera.NewOrbitCamera()
	v.camera.FitToBounds(v.world.Mins, v.world.Maxs)

	center := v.world.Center()
	center.Z = v.world.Height(center.X, center.Y)
	gem, _ := v.reg.ByName(GemShaderName)
	sparks, _ := v.reg.ByName(surface.ParticleShaderName)
	v.props = NewProps(center, gem, sparks)

	v.overlay.font, err = v.loadFont(cfg.Data.FontFile)
	if err != nil {
		v.log.Warn("font not loaded, using built-in font", zap.Error(err))
		v.overlay.font, _ = v.loadFont("")
	}

	w, h := v.window.GetSize()
	v.view = view.New(w, h)
	v.batch.View = v.view
	v.input = input.New(input.DefaultBindings())
	v.shots = shots{dir: cfg.Data.ShotDir, clock: time.Now}
	return nil
}

// watch starts hot reload of the material file; failures only disable reloading.
func (v *Viewer) watch(path string) {
	if path == "" {
		return
	}
	w, err := material.NewWatcher(path)
	if err != nil {
		v.log.Warn("material hot reload disabled", zap.String("path", path), zap.Error(err))
		return
	}
	v.watcher = w
}

// loadFont loads a BMFont descriptor whose first page is <name>_0.png next to it,
// or the built-in grid font for an empty path.
func (v *Viewer) loadFont(path string) (*font.Font, error) {
	if path == "" {
		sh, _ := v.reg.ByName(FontShaderName)
		return font.NewBasic(sh), nil
	}
	page := strings.TrimSuffix(path, filepath.Ext(path)) + "_0.png"
	pix, err := texture.Load(page)
	if err != nil {
		return nil, fmt.Errorf("font page: %w", err)
	}
	img := texture.NewImage("*bmfont", pix, 0)
	v.assets.images.Add(img)
	sh, err := material.Compile(&material.ShaderDesc{
		Name:   "fonts/" + filepath.Base(path),
		Cull:   "none",
		Stages: []material.StageDesc{{Map: img.Name, Blend: "blend", RGBGen: "vertex", AlphaGen: "vertex"}},
	}, v.reg, v.assets.images)
	if err != nil {
		return nil, err
	}
	v.reg.Register(sh)
	return font.LoadBMFont(path, sh)
}

// Run runs the main loop until the window closes or quit is pressed.
func (v *Viewer) Run() error {
	v.running = true
	v.start = time.Now()

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting main loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now
		v.now = float32(now.Sub(v.start).Seconds())

		if v.input.Update() {
			v.running = false
			break
		}
		if w, h, ok := v.input.Resized(); ok {
			v.view.Width, v.view.Height = w, h
		}
		for _, cmd := range v.input.Commands() {
			v.command(cmd)
		}
		if v.watcher != nil && v.watcher.Changed() {
			v.reload()
		}

		v.update(dt)
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if v.shoot {
			v.shoot = false
			v.screenshot()
		}
		v.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.info.FPS = frameCount
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("flushes", v.info.Stats.Flushes),
				zap.Int("tris", v.info.Stats.Tris),
				zap.Int("tris_mt", v.info.Stats.TrisMT),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// command handles one key command.
func (v *Viewer) command(cmd input.Command) {
	if msg, ok := applyToggle(&v.planner.Settings, cmd); ok {
		v.notify(msg)
		return
	}
	switch cmd {
	case input.CmdQuit:
		v.running = false
	case input.CmdToggleWireframe:
		v.gl.Wireframe = !v.gl.Wireframe
		v.notify("wireframe " + onOff(v.gl.Wireframe))
	case input.CmdCycleProfile:
		v.planner.Caps = v.profiles.Next()
		v.notify(fmt.Sprintf("profile %s: %s", v.profiles.Name(), v.planner.Caps))
	case input.CmdReloadMaterials:
		v.reload()
	case input.CmdToggleStats:
		v.overlay.visible = !v.overlay.visible
	case input.CmdScreenshot:
		v.shoot = true
	}
}

// screenshot saves the frame just rendered, before the buffers swap.
func (v *Viewer) screenshot() {
	w, h := v.view.Width, v.view.Height
	name, err := v.shots.save(v.gl.ReadPixels(w, h), w, h, v.profiles.Name())
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		v.notify("screenshot failed")
		return
	}
	v.notify("saved " + name)
}

// reload re-reads the material file. Shaders keep their indexes, so queued
// surfaces pick up the new definitions on the next frame.
func (v *Viewer) reload() {
	n, err := loadMaterials(v.cfg.Data.MaterialFile, v.reg, v.assets.images, v.log)
	if err != nil {
		v.log.Warn("material reload failed", zap.Error(err))
		v.notify("reload failed: " + err.Error())
		return
	}
	v.notify(fmt.Sprintf("reloaded %d shaders", n))
}

func (v *Viewer) notify(msg string) {
	v.log.Info(msg)
	v.overlay.notify(msg, v.now)
}

// update moves the camera and animates the props.
func (v *Viewer) update(dt float32) {
	in := v.input
	c := v.camera
	if in.Held(input.CmdForward) {
		c.Move(1, 0, dt)
	}
	if in.Held(input.CmdBack) {
		c.Move(-1, 0, dt)
	}
	if in.Held(input.CmdTurnLeft) {
		c.Turn(1, dt)
	}
	if in.Held(input.CmdTurnRight) {
		c.Turn(-1, dt)
	}
	if in.Held(input.CmdZoomIn) {
		c.Zoom(1, dt)
	}
	if in.Held(input.CmdZoomOut) {
		c.Zoom(-1, dt)
	}
	c.Center.Z = v.world.Height(c.Center.X, c.Center.Y)

	v.props.Update(v.now)
}

// render draws the frame.
func (v *Viewer) render() error {
	vw := v.view
	vw.Time = v.now
	vw.Coord = v.camera.Coords()
	vw.Dlights = vw.Dlights[:0]
	if v.planner.Settings.DynamicLights {
		vw.Dlights = append(vw.Dlights, v.props.Dlights(v.now)...)
	}

	v.gl.Clear(clearColor)
	f := scene.NewFrame(vw)
	v.world.AddToFrame(f)
	v.props.AddToFrame(f, v.now)
	f.Sort()
	if err := v.scene.DrawScene(f); err != nil {
		return err
	}

	v.info.Stats = v.batch.ResetStats()
	v.info.Profile = v.profiles.Name()
	v.info.Caps = v.planner.Caps
	v.info.Settings = v.planner.Settings
	v.info.Wireframe = v.gl.Wireframe
	v.info.Surfaces = len(f.Items)

	v.overlay.draw(v.batch, &v.info, v.now)
	v.batch.Flush()
	return nil
}

// images lists every image that may have been uploaded.
func (v *Viewer) images() []*texture.Image {
	images := v.generated
	if v.reg != nil {
		for _, sh := range v.reg.Shaders() {
			for _, st := range sh.Stages {
				images = append(images, st.Images...)
			}
		}
	}
	if v.assets != nil {
		images = append(images, v.assets.images.All()...)
	}
	return images
}

// Close releases GL objects and closes the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.watcher != nil {
		v.watcher.Close()
	}
	if v.gl != nil {
		glstate.Release(v.images())
		v.gl.Close()
	}
	if v.assets != nil {
		v.assets.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
