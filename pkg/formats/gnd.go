package formats

import (
	"errors"
	"fmt"
	"os"
)

// GND format errors.
var (
	ErrInvalidGNDMagic       = errors.New("invalid GND magic: expected 'GRGN'")
	ErrUnsupportedGNDVersion = errors.New("unsupported GND version")
	ErrTruncatedGND          = errors.New("truncated GND data")
)

// MaxGNDSize bounds the tile grid.
const MaxGNDSize = 1024

// GNDVersion represents the GND file version.
type GNDVersion struct {
	Major uint8
	Minor uint8
}

func (v GNDVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GNDSurface is a textured quad: texcoords of its 4 corners, texture, lightmap cell and color.
type GNDSurface struct {
	U          [4]float32
	V          [4]float32
	TextureID  int16 // -1 = untextured
	LightmapID uint16
	Color      [4]uint8 // BGRA
}

// Tile faces.
const (
	FaceTop = iota
	FaceFront
	FaceRight
)

// GNDTile is one ground cell. Corner order is bottom-left, bottom-right, top-left, top-right.
type GNDTile struct {
	Altitude [4]float32
	// Surfaces of the top, front and right faces (-1 = none).
	Surfaces [3]int32
}

// GNDLightmap is one lightmap cell: a brightness (shadow) channel and an RGB channel.
type GNDLightmap struct {
	Brightness []uint8
	ColorRGB   []uint8
}

// GND is a parsed ground mesh.
type GND struct {
	Version        GNDVersion
	Width          int
	Height         int
	Zoom           float32
	Textures       []string
	LightmapWidth  int
	LightmapHeight int
	Lightmaps      []GNDLightmap
	Surfaces       []GNDSurface
	Tiles          []GNDTile
}

// Tile returns the tile at x, y or nil when out of bounds.
func (g *GND) Tile(x, y int) *GNDTile {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return nil
	}
	return &g.Tiles[y*g.Width+x]
}

// Surface returns the surface of a tile face or nil.
func (g *GND) Surface(t *GNDTile, face int) *GNDSurface {
	if t == nil {
		return nil
	}
	id := t.Surfaces[face]
	if id < 0 || int(id) >= len(g.Surfaces) {
		return nil
	}
	return &g.Surfaces[id]
}

// AltitudeRange returns the lowest and highest corner altitude.
func (g *GND) AltitudeRange() (lo, hi float32) {
	for i, t := range g.Tiles {
		for j, h := range t.Altitude {
			if i == 0 && j == 0 {
				lo, hi = h, h
			}
			lo, hi = min(lo, h), max(hi, h)
		}
	}
	return lo, hi
}

// ParseGND parses a GND file (versions 1.5 to 1.9).
func ParseGND(data []byte) (*GND, error) {
	r := &reader{data: data}
	if magic := r.take(4, "magic"); magic == nil {
		return nil, fmt.Errorf("%w: header", ErrTruncatedGND)
	} else if string(magic) != "GRGN" {
		return nil, ErrInvalidGNDMagic
	}

	g := &GND{}
	g.Version.Major = r.u8("version")
	g.Version.Minor = r.u8("version")
	if r.err == nil && (g.Version.Major != 1 || g.Version.Minor < 5 || g.Version.Minor > 9) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGNDVersion, g.Version)
	}

	w, h := r.u32("width"), r.u32("height")
	g.Zoom = r.f32("zoom")
	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedGND, r.err)
	}
	if w == 0 || h == 0 || w > MaxGNDSize || h > MaxGNDSize {
		return nil, fmt.Errorf("invalid GND dimensions: %dx%d", w, h)
	}
	g.Width, g.Height = int(w), int(h)

	ntex, nameLen := r.u32("texture count"), r.u32("texture name length")
	if r.err == nil && uint64(ntex)*uint64(nameLen) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d textures of %d bytes", ErrTruncatedGND, ntex, nameLen)
	}
	for i := uint32(0); i < ntex && r.err == nil; i++ {
		g.Textures = append(g.Textures, r.name(int(nameLen), "texture name"))
	}

	nlm := r.u32("lightmap count")
	lw, lh, cells := r.u32("lightmap width"), r.u32("lightmap height"), r.u32("lightmap cells")
	g.LightmapWidth, g.LightmapHeight = int(lw), int(lh)
	pixels := uint64(lw) * uint64(lh) * uint64(cells)
	if r.err == nil && uint64(nlm)*pixels*4 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d lightmaps", ErrTruncatedGND, nlm)
	}
	g.Lightmaps = make([]GNDLightmap, 0, nlm)
	for i := uint32(0); i < nlm && r.err == nil; i++ {
		g.Lightmaps = append(g.Lightmaps, GNDLightmap{
			Brightness: r.take(int(pixels), "lightmap brightness"),
			ColorRGB:   r.take(int(pixels)*3, "lightmap color"),
		})
	}

	nsurf := r.u32("surface count")
	if r.err == nil && uint64(nsurf)*40 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d surfaces", ErrTruncatedGND, nsurf)
	}
	g.Surfaces = make([]GNDSurface, nsurf)
	for i := range g.Surfaces {
		s := &g.Surfaces[i]
		for k := range s.U {
			s.U[k] = r.f32("surface u")
		}
		for k := range s.V {
			s.V[k] = r.f32("surface v")
		}
		s.TextureID = int16(r.u16("surface texture"))
		s.LightmapID = r.u16("surface lightmap")
		copy(s.Color[:], r.take(4, "surface color"))
	}

	g.Tiles = make([]GNDTile, g.Width*g.Height)
	for i := range g.Tiles {
		t := &g.Tiles[i]
		for k := range t.Altitude {
			t.Altitude[k] = r.f32("tile altitude")
		}
		for k := range t.Surfaces {
			t.Surfaces[k] = int32(r.u32("tile surface"))
		}
	}

	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedGND, r.err)
	}
	return g, nil
}

// ParseGNDFile parses a GND file from disk.
func ParseGNDFile(path string) (*GND, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GND file: %w", err)
	}
	return ParseGND(data)
}

// SurfacesByTexture counts the surfaces using each texture.
func (g *GND) SurfacesByTexture() map[int]int {
	counts := make(map[int]int)
	for _, s := range g.Surfaces {
		if s.TextureID >= 0 {
			counts[int(s.TextureID)]++
		}
	}
	return counts
}
