// Package world turns ground meshes into lightmapped world surfaces grouped by shader.
package world

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/scene"
	"github.com/Faultbox/midgard-gl/internal/engine/surface"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/logger"
	"github.com/Faultbox/midgard-gl/pkg/encoding"
	"github.com/Faultbox/midgard-gl/pkg/formats"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// TexturePrefix is prepended to GND texture names to form image paths.
const TexturePrefix = "data/texture/"

// Group is a set of surfaces drawn with one shader.
type Group struct {
	Shader   *material.Shader
	Surfaces []*surface.Planar
}

// World is a built ground mesh.
type World struct {
	Groups []Group
	// Mins and Maxs bound every vertex.
	Mins, Maxs math.Vec3
	// Pages is the number of lightmap pages added to the registry.
	Pages int

	gnd *formats.GND
}

// Build converts a parsed GND into world surfaces. Lightmap pages are added to reg and a
// shader is registered for every texture and page pair unless reg already holds a shader
// named after the texture.
func Build(gnd *formats.GND, reg *material.Registry, images material.ImageFinder) (*World, error) {
	if gnd == nil || gnd.Width <= 0 || gnd.Height <= 0 {
		return nil, fmt.Errorf("build world: empty ground")
	}
	log := logger.Named("world")

	pages := buildPages(gnd)
	slots := make([]int, len(pages))
	for i, img := range pages {
		slots[i] = reg.AddLightmap(img)
	}

	b := &builder{
		gnd:     gnd,
		reg:     reg,
		images:  images,
		slots:   slots,
		log:     log,
		shaders: make(map[shaderKey]*material.Shader),
		groups:  make(map[*material.Shader]int),
		w: &World{
			Pages: len(pages),
			gnd:   gnd,
			Mins:  math.Vec3{X: gomath.MaxFloat32, Y: gomath.MaxFloat32, Z: gomath.MaxFloat32},
			Maxs:  math.Vec3{X: -gomath.MaxFloat32, Y: -gomath.MaxFloat32, Z: -gomath.MaxFloat32},
		},
	}
	for y := 0; y < gnd.Height; y++ {
		for x := 0; x < gnd.Width; x++ {
			if err := b.tile(x, y); err != nil {
				return nil, err
			}
		}
	}

	log.Info("world built",
		zap.Int("width", gnd.Width), zap.Int("height", gnd.Height),
		zap.Int("surfaces", b.w.NumSurfaces()), zap.Int("shaders", len(b.w.Groups)),
		zap.Int("lightmap_pages", len(pages)))
	return b.w, nil
}

// NumSurfaces returns the surface count over all groups.
func (w *World) NumSurfaces() int {
	n := 0
	for _, g := range w.Groups {
		n += len(g.Surfaces)
	}
	return n
}

// Center returns the middle of the bounds.
func (w *World) Center() math.Vec3 {
	return w.Mins.Add(w.Maxs).Scale(0.5)
}

// Height returns the ground height under (x, y), interpolated over the tile corners.
// Points outside the ground return the lowest height.
func (w *World) Height(x, y float32) float32 {
	z := w.gnd.Zoom
	tx, ty := int(floor(x/z)), int(floor(y/z))
	t := w.gnd.Tile(tx, ty)
	if t == nil {
		return w.Mins.Z
	}
	fx := x/z - float32(tx)
	fy := y/z - float32(ty)
	bottom := -t.Altitude[0]*(1-fx) - t.Altitude[1]*fx
	top := -t.Altitude[2]*(1-fx) - t.Altitude[3]*fx
	return bottom*(1-fy) + top*fy
}

// AddToFrame marks the view's dynamic lights on every surface and queues the surfaces as
// part of the world entity.
func (w *World) AddToFrame(f *scene.Frame) {
	dlights := f.View.Dlights
	for _, g := range w.Groups {
		for _, s := range g.Surfaces {
			s.MarkLights(dlights, touching(dlights, s.Verts))
			f.Add(s, g.Shader, 0, 0, s.DlightMask() != 0)
		}
	}
}

// touching returns the mask of lights whose sphere reaches the bounds of verts.
func touching(dlights []view.Dlight, verts []surface.Vertex) uint32 {
	if len(dlights) == 0 || len(verts) == 0 {
		return 0
	}
	mins, maxs := verts[0].Pos, verts[0].Pos
	for _, v := range verts[1:] {
		mins = math.Vec3{X: min(mins.X, v.Pos.X), Y: min(mins.Y, v.Pos.Y), Z: min(mins.Z, v.Pos.Z)}
		maxs = math.Vec3{X: max(maxs.X, v.Pos.X), Y: max(maxs.Y, v.Pos.Y), Z: max(maxs.Z, v.Pos.Z)}
	}
	var mask uint32
	for i, dl := range dlights {
		if i >= view.MaxDlights {
			break
		}
		d := math.Vec3{
			X: outside(dl.Origin.X, mins.X, maxs.X),
			Y: outside(dl.Origin.Y, mins.Y, maxs.Y),
			Z: outside(dl.Origin.Z, mins.Z, maxs.Z),
		}
		if d.Dot(d) < dl.Intensity*dl.Intensity {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func outside(v, lo, hi float32) float32 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}

type shaderKey struct {
	texture int
	page    int
}

type builder struct {
	gnd     *formats.GND
	reg     *material.Registry
	images  material.ImageFinder
	slots   []int
	log     *zap.Logger
	shaders map[shaderKey]*material.Shader
	groups  map[*material.Shader]int
	w       *World
}

func (b *builder) tile(x, y int) error {
	g := b.gnd
	t := g.Tile(x, y)
	z := g.Zoom
	x0, x1 := float32(x)*z, float32(x+1)*z
	y0, y1 := float32(y)*z, float32(y+1)*z

	if s := g.Surface(t, formats.FaceTop); s != nil {
		pos := [4]math.Vec3{
			{X: x0, Y: y0, Z: -t.Altitude[0]},
			{X: x1, Y: y0, Z: -t.Altitude[1]},
			{X: x0, Y: y1, Z: -t.Altitude[2]},
			{X: x1, Y: y1, Z: -t.Altitude[3]},
		}
		if err := b.face(s, pos, [4]int{0, 1, 2, 3}, math.Vec3{Z: 1}); err != nil {
			return err
		}
	}

	// Walls join this tile's edge (top of the quad) to the neighbor's edge (bottom).
	if s, n := g.Surface(t, formats.FaceFront), g.Tile(x, y+1); s != nil && n != nil {
		pos := [4]math.Vec3{
			{X: x0, Y: y1, Z: -n.Altitude[0]},
			{X: x1, Y: y1, Z: -n.Altitude[1]},
			{X: x0, Y: y1, Z: -t.Altitude[2]},
			{X: x1, Y: y1, Z: -t.Altitude[3]},
		}
		want := math.Vec3{Y: 1}
		if t.Altitude[2]+t.Altitude[3] > n.Altitude[0]+n.Altitude[1] {
			want.Y = -1
		}
		if err := b.face(s, pos, [4]int{2, 3, 0, 1}, want); err != nil {
			return err
		}
	}
	if s, n := g.Surface(t, formats.FaceRight), g.Tile(x+1, y); s != nil && n != nil {
		pos := [4]math.Vec3{
			{X: x1, Y: y0, Z: -n.Altitude[0]},
			{X: x1, Y: y1, Z: -n.Altitude[2]},
			{X: x1, Y: y0, Z: -t.Altitude[1]},
			{X: x1, Y: y1, Z: -t.Altitude[3]},
		}
		want := math.Vec3{X: 1}
		if t.Altitude[1]+t.Altitude[3] > n.Altitude[0]+n.Altitude[2] {
			want.X = -1
		}
		if err := b.face(s, pos, [4]int{2, 3, 0, 1}, want); err != nil {
			return err
		}
	}
	return nil
}

// face emits one quad. pos is laid out bl, br, tl, tr; uv maps each corner to a surface
// texcoord pair. The winding is chosen so the face points along want.
func (b *builder) face(s *formats.GNDSurface, pos [4]math.Vec3, uv [4]int, want math.Vec3) error {
	n := pos[3].Sub(pos[0]).Cross(pos[2].Sub(pos[1]))
	if n.Length() < 1e-4 {
		return nil
	}
	n = n.Normalize()
	indexes := []uint32{0, 2, 3, 0, 3, 1}
	if n.Dot(want) < 0 {
		n = n.Scale(-1)
		indexes = []uint32{0, 3, 2, 0, 1, 3}
	}

	page, cell := int(s.LightmapID)/cellsPerPage, int(s.LightmapID)%cellsPerPage
	lm := cellCoords(cell)
	c := color.Color{s.Color[2], s.Color[1], s.Color[0], s.Color[3]}

	p := &surface.Planar{Indexes: indexes, LightmapWidth: CellSize}
	var center math.Vec3
	for i := range pos {
		k := uv[i]
		p.Verts = append(p.Verts, surface.Vertex{
			Pos:   pos[i],
			Tex:   math.Vec2{X: s.U[k], Y: s.V[k]},
			LM:    lm[k],
			Color: c,
		})
		center = center.Add(pos[i])
		b.bound(pos[i])
	}
	p.Plane = math.Plane{Normal: n, Dist: n.Dot(center.Scale(0.25))}

	sh, err := b.shader(int(s.TextureID), page)
	if err != nil {
		return err
	}
	gi, ok := b.groups[sh]
	if !ok {
		gi = len(b.w.Groups)
		b.groups[sh] = gi
		b.w.Groups = append(b.w.Groups, Group{Shader: sh})
	}
	b.w.Groups[gi].Surfaces = append(b.w.Groups[gi].Surfaces, p)
	return nil
}

func (b *builder) bound(p math.Vec3) {
	mins, maxs := &b.w.Mins, &b.w.Maxs
	mins.X, maxs.X = min(mins.X, p.X), max(maxs.X, p.X)
	mins.Y, maxs.Y = min(mins.Y, p.Y), max(maxs.Y, p.Y)
	mins.Z, maxs.Z = min(mins.Z, p.Z), max(maxs.Z, p.Z)
}

func (b *builder) shader(tex, page int) (*material.Shader, error) {
	key := shaderKey{tex, page}
	if sh, ok := b.shaders[key]; ok {
		return sh, nil
	}
	name := b.textureName(tex)
	if sh, ok := b.reg.ByName(name); ok {
		b.shaders[key] = sh
		return sh, nil
	}

	slot := material.LightmapNone
	if page < len(b.slots) {
		slot = b.slots[page]
	}
	desc := material.ShaderDesc{
		Name:     fmt.Sprintf("%s#%d", name, page),
		Lightmap: &slot,
		Stages: []material.StageDesc{
			{Map: "$lightmap"},
			{Map: name, Blend: "filter"},
		},
	}
	if tex < 0 {
		desc.Stages = desc.Stages[:1]
	}
	sh, err := material.Compile(&desc, b.reg, b.images)
	if err != nil {
		b.log.Warn("texture unavailable, drawing lightmap only",
			zap.String("texture", name), zap.Error(err))
		desc.Stages = desc.Stages[:1]
		if sh, err = material.Compile(&desc, b.reg, b.images); err != nil {
			return nil, fmt.Errorf("compile %s: %w", desc.Name, err)
		}
	}
	if b.reg.Register(sh) < 0 {
		return nil, fmt.Errorf("compile %s: too many shaders (max %d)", desc.Name, material.MaxShaders)
	}
	b.shaders[key] = sh
	return sh, nil
}

func (b *builder) textureName(tex int) string {
	if tex < 0 || tex >= len(b.gnd.Textures) {
		return fmt.Sprintf("*notexture%d", tex)
	}
	return TexturePrefix + encoding.SlashPath(b.gnd.Textures[tex])
}

// Names returns the shader names in group order.
func (w *World) Names() []string {
	names := make([]string, 0, len(w.Groups))
	for _, g := range w.Groups {
		names = append(names, g.Shader.Name)
	}
	return names
}

func floor(f float32) float32 {
	return float32(gomath.Floor(float64(f)))
}
