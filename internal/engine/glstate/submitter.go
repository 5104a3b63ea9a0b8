// Package glstate draws batch passes with the OpenGL 2.1 fixed-function pipeline:
// packed GL state, texture environments (including the NV and ATI combiners),
// streaming vertex buffers and texture upload.
package glstate

import (
	"fmt"
	stdmath "math"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/logger"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Config holds the projection settings.
type Config struct {
	// FovY is the vertical field of view in degrees.
	FovY float32
	Near float32
	Far  float32
}

// DefaultConfig returns a 90 degree projection.
func DefaultConfig() Config {
	return Config{FovY: 90, Near: 4, Far: 8192}
}

// Init loads the GL entry points. It must run after the context is current.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return nil
}

// DetectCaps reads the texture capabilities of the current context. maxUnits > 0
// limits the unit count; disabled names extensions to ignore.
func DetectCaps(maxUnits int, disabled []string) (combiner.Caps, error) {
	var units, size int32
	gl.GetIntegerv(tokMaxTextureUnits, &units)
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &size)
	ext := combiner.ParseExtensions(gl.GoStr(gl.GetString(gl.EXTENSIONS)))

	caps := combiner.NewCaps(ext, int(units), int(size)).Limit(maxUnits)
	caps, err := caps.Without(disabled)
	if err != nil {
		return caps, fmt.Errorf("renderer.disable_extensions: %w", err)
	}
	logger.Info("texture caps", zap.Stringer("caps", caps), zap.Int("max_texture_size", caps.MaxTextureSize))
	return caps, nil
}

type unitState struct {
	target uint32
	id     uint32
}

// Submitter implements batch.Submitter on the current GL context.
type Submitter struct {
	// Wireframe draws every 3D pass as lines.
	Wireframe bool

	cfg Config
	log *zap.Logger

	state      material.GLState
	stateValid bool

	units      []unitState
	activeUnit int
	white      *texture.Image

	vertBuf  uint32
	colorBuf uint32
	indexBuf uint32
	tcBufs   []uint32

	numIndexes  int32
	offset      bool
	is2D        bool
	inverseCull bool
	viewMatrix  math.Mat4
}

var _ batch.Submitter = (*Submitter)(nil)

// New creates the streaming buffers for a context with the given unit count.
func New(cfg Config, units int) *Submitter {
	s := &Submitter{
		cfg:        cfg,
		log:        logger.Named("glstate"),
		units:      make([]unitState, max(units, 1)),
		tcBufs:     make([]uint32, max(units, 1)),
		viewMatrix: math.Identity(),
	}
	s.white = texture.NewImage("*white", whitePixels(), 0)

	gl.GenBuffers(1, &s.vertBuf)
	gl.GenBuffers(1, &s.colorBuf)
	gl.GenBuffers(1, &s.indexBuf)
	gl.GenBuffers(int32(len(s.tcBufs)), &s.tcBufs[0])
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	return s
}

// Close deletes the buffers and the white texture.
func (s *Submitter) Close() {
	gl.DeleteBuffers(1, &s.vertBuf)
	gl.DeleteBuffers(1, &s.colorBuf)
	gl.DeleteBuffers(1, &s.indexBuf)
	gl.DeleteBuffers(int32(len(s.tcBufs)), &s.tcBufs[0])
	Release([]*texture.Image{s.white})
}

// Clear clears the color and depth buffers.
func (s *Submitter) Clear(c color.Color) {
	f := c.Floats()
	gl.ClearColor(f[0], f[1], f[2], f[3])
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	s.stateValid = false
}

// ReadPixels returns the RGBA back buffer, bottom row first.
func (s *Submitter) ReadPixels(width, height int) []byte {
	pix := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}

// Begin2D implements batch.Submitter.
func (s *Submitter) Begin2D(width, height int) {
	s.is2D = true
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.MatrixMode(gl.PROJECTION)
	proj := math.Ortho(0, float32(width), float32(height), 0, -99999, 99999)
	gl.LoadMatrixf(proj.Ptr())
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.DepthRange(0, 1)
	gl.Disable(gl.CULL_FACE)
}

// Begin3D implements batch.Submitter.
func (s *Submitter) Begin3D(v *view.View) {
	s.is2D = false
	w, h := max(v.Width, 1), max(v.Height, 1)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.MatrixMode(gl.PROJECTION)
	fov := s.cfg.FovY * stdmath.Pi / 180
	proj := math.Perspective(fov, float32(w)/float32(h), s.cfg.Near, s.cfg.Far)
	gl.LoadMatrixf(proj.Ptr())
	gl.MatrixMode(gl.MODELVIEW)
	s.viewMatrix = math.View(v.Coord)
	gl.LoadMatrixf(s.viewMatrix.Ptr())
	gl.DepthRange(0, 1)
	s.inverseCull = false
}

// SetEntity implements batch.Submitter.
func (s *Submitter) SetEntity(v *view.View, e *view.Entity) {
	if s.is2D {
		return
	}
	if e == nil || e.WorldMatrix {
		gl.LoadMatrixf(s.viewMatrix.Ptr())
		s.inverseCull = false
		gl.DepthRange(0, 1)
		return
	}
	m := s.viewMatrix.Mul(e.ModelMatrix())
	gl.LoadMatrixf(m.Ptr())
	s.inverseCull = e.Mirror
	if e.Has(view.FlagDepthHack) {
		gl.DepthRange(0, 0.3)
	} else {
		gl.DepthRange(0, 1)
	}
}

// BeginBatch implements batch.Submitter.
func (s *Submitter) BeginBatch(sh *material.Shader, verts []math.Vec3, indexes []uint32) {
	s.setCull(sh.Cull)
	if sh.PolygonOffset {
		gl.Enable(gl.POLYGON_OFFSET_FILL)
		gl.PolygonOffset(-1, -2)
		s.offset = true
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, s.vertBuf)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*3*4, gl.Ptr(verts), gl.STREAM_DRAW)
	gl.VertexPointer(3, gl.FLOAT, 0, gl.PtrOffset(0))
	gl.EnableClientState(gl.VERTEX_ARRAY)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.indexBuf)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indexes)*4, gl.Ptr(indexes), gl.STREAM_DRAW)
	s.numIndexes = int32(len(indexes))
}

// DrawPass implements batch.Submitter.
func (s *Submitter) DrawPass(p *batch.Pass) {
	s.applyState(p.State)

	for j := range p.Units {
		u := &p.Units[j]
		s.selectUnit(j)
		s.bind(j, u.Image)

		prog := compileEnv(u.Env)
		for _, e := range prog.params {
			gl.TexEnvi(gl.TEXTURE_ENV, e.name, int32(e.value))
		}
		if prog.useColor {
			f := u.EnvColor.Floats()
			gl.TexEnvfv(gl.TEXTURE_ENV, gl.TEXTURE_ENV_COLOR, &f[0])
		}

		gl.BindBuffer(gl.ARRAY_BUFFER, s.tcBufs[j])
		gl.BufferData(gl.ARRAY_BUFFER, len(u.TexCoords)*2*4, gl.Ptr(u.TexCoords), gl.STREAM_DRAW)
		gl.TexCoordPointer(2, gl.FLOAT, 0, gl.PtrOffset(0))
		gl.EnableClientState(gl.TEXTURE_COORD_ARRAY)
	}
	for j := len(p.Units); j < len(s.units); j++ {
		s.disableUnit(j)
	}

	if p.Colors != nil {
		gl.BindBuffer(gl.ARRAY_BUFFER, s.colorBuf)
		gl.BufferData(gl.ARRAY_BUFFER, len(p.Colors)*4, gl.Ptr(p.Colors), gl.STREAM_DRAW)
		gl.ColorPointer(4, gl.UNSIGNED_BYTE, 0, gl.PtrOffset(0))
		gl.EnableClientState(gl.COLOR_ARRAY)
	} else {
		gl.DisableClientState(gl.COLOR_ARRAY)
		gl.Color4ub(p.Color[0], p.Color[1], p.Color[2], p.Color[3])
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.indexBuf)
	gl.DrawElements(gl.TRIANGLES, s.numIndexes, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

// EndBatch implements batch.Submitter.
func (s *Submitter) EndBatch() {
	if s.offset {
		gl.Disable(gl.POLYGON_OFFSET_FILL)
		s.offset = false
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (s *Submitter) setCull(mode material.CullMode) {
	if s.is2D || mode == material.CullNone {
		gl.Disable(gl.CULL_FACE)
		return
	}
	gl.Enable(gl.CULL_FACE)
	front := mode == material.CullFront
	if s.inverseCull {
		front = !front
	}
	if front {
		gl.CullFace(gl.FRONT)
	} else {
		gl.CullFace(gl.BACK)
	}
}

func (s *Submitter) selectUnit(j int) {
	if s.activeUnit == j {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(j))
	gl.ClientActiveTexture(gl.TEXTURE0 + uint32(j))
	s.activeUnit = j
}

func (s *Submitter) bind(j int, img *texture.Image) {
	if img == nil {
		img = s.white
	}
	u := &s.units[j]
	tgt := target(img)
	if u.target != tgt {
		if u.target != 0 {
			gl.Disable(u.target)
		}
		gl.Enable(tgt)
		u.target = tgt
		u.id = 0
	}
	if img.ID == 0 {
		s.upload(img)
		u.id = img.ID
		return
	}
	if u.id != img.ID {
		gl.BindTexture(tgt, img.ID)
		u.id = img.ID
	}
}

func (s *Submitter) disableUnit(j int) {
	u := &s.units[j]
	if u.target == 0 {
		return
	}
	s.selectUnit(j)
	gl.Disable(u.target)
	gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
	u.target = 0
}

func (s *Submitter) applyState(st material.GLState) {
	if s.Wireframe && !s.is2D {
		st |= material.PolygonLine
	}
	ch := diffState(s.state, st, !s.stateValid)
	s.state, s.stateValid = st, true

	if ch.blend {
		if st.HasBlend() {
			gl.Enable(gl.BLEND)
			gl.BlendFunc(blendToken(st.Src()), blendToken(st.Dst()))
		} else {
			gl.Disable(gl.BLEND)
		}
	}
	if ch.alpha {
		switch st.Alpha() {
		case material.AlphaGT0:
			gl.Enable(gl.ALPHA_TEST)
			gl.AlphaFunc(gl.GREATER, 0)
		case material.AlphaLT05:
			gl.Enable(gl.ALPHA_TEST)
			gl.AlphaFunc(gl.LESS, 0.5)
		case material.AlphaGE05:
			gl.Enable(gl.ALPHA_TEST)
			gl.AlphaFunc(gl.GEQUAL, 0.5)
		default:
			gl.Disable(gl.ALPHA_TEST)
		}
	}
	if ch.depthWrite {
		gl.DepthMask(st.Has(material.DepthWrite))
	}
	if ch.depthTest {
		if st.Has(material.NoDepthTest) {
			gl.Disable(gl.DEPTH_TEST)
		} else {
			gl.Enable(gl.DEPTH_TEST)
		}
	}
	if ch.depthFunc {
		if st.Has(material.DepthEqual) {
			gl.DepthFunc(gl.EQUAL)
		} else {
			gl.DepthFunc(gl.LEQUAL)
		}
	}
	if ch.polyMode {
		if st.Has(material.PolygonLine) {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		} else {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
	}
}
