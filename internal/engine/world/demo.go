package world

import (
	"fmt"
	"image"
	gomath "math"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/pkg/formats"
)

// Demo courtyard layout.
const (
	DemoSize = 16
	DemoZoom = 10

	demoWallHeight = 40
	demoTexSize    = 64
)

// Demo builds a walled courtyard with a raised plinth, a checkered floor and generated
// lightmaps holding two warm light pools.
func Demo(reg *material.Registry) (*World, error) {
	return Build(DemoGround(), reg, demoImages{})
}

// DemoGround returns the ground mesh used by Demo.
func DemoGround() *formats.GND {
	g := &formats.GND{
		Version:        formats.GNDVersion{Major: 1, Minor: 7},
		Width:          DemoSize,
		Height:         DemoSize,
		Zoom:           DemoZoom,
		Textures:       []string{"demo\\floor", "demo\\wall"},
		LightmapWidth:  CellSize,
		LightmapHeight: CellSize,
	}
	wallCell := uint16(DemoSize * DemoSize)
	for y := 0; y < DemoSize; y++ {
		for x := 0; x < DemoSize; x++ {
			g.Lightmaps = append(g.Lightmaps, demoLightmap(x, y))

			var alt float32
			tex := int16(0)
			switch {
			case x == 0 || y == 0 || x == DemoSize-1 || y == DemoSize-1:
				alt, tex = -demoWallHeight, 1
			case x >= 7 && x <= 8 && y >= 7 && y <= 8:
				alt = -demoWallHeight / 4
			}

			t := formats.GNDTile{
				Altitude: [4]float32{alt, alt, alt, alt},
				Surfaces: [3]int32{int32(len(g.Surfaces)), -1, -1},
			}
			g.Surfaces = append(g.Surfaces, formats.GNDSurface{
				U:          [4]float32{0, 1, 0, 1},
				V:          [4]float32{0, 0, 1, 1},
				TextureID:  tex,
				LightmapID: uint16(y*DemoSize + x),
				Color:      [4]uint8{255, 255, 255, 255},
			})
			wall := formats.GNDSurface{
				U:          [4]float32{0, 1, 0, 1},
				V:          [4]float32{0, 0, 1, 1},
				TextureID:  1,
				LightmapID: wallCell,
				Color:      [4]uint8{200, 220, 255, 255},
			}
			if y < DemoSize-1 {
				t.Surfaces[formats.FaceFront] = int32(len(g.Surfaces))
				g.Surfaces = append(g.Surfaces, wall)
			}
			if x < DemoSize-1 {
				t.Surfaces[formats.FaceRight] = int32(len(g.Surfaces))
				g.Surfaces = append(g.Surfaces, wall)
			}
			g.Tiles = append(g.Tiles, t)
		}
	}
	g.Lightmaps = append(g.Lightmaps, flatLightmap(176))
	return g
}

var demoLights = [...]struct{ x, y, radius float64 }{
	{4.5, 4.5, 5},
	{11.5, 10.5, 6},
}

// demoLightmap lights one tile: an ambient floor plus the pools, tinted orange.
func demoLightmap(tx, ty int) formats.GNDLightmap {
	lm := formats.GNDLightmap{
		Brightness: make([]uint8, CellSize*CellSize),
		ColorRGB:   make([]uint8, CellSize*CellSize*3),
	}
	for y := 0; y < CellSize; y++ {
		for x := 0; x < CellSize; x++ {
			// border texels repeat their interior neighbor
			fx := float64(tx) + (float64(min(max(x, 1), CellSize-2))-0.5)/(CellSize-2)
			fy := float64(ty) + (float64(min(max(y, 1), CellSize-2))-0.5)/(CellSize-2)
			light := 0.0
			for _, l := range demoLights {
				d := gomath.Hypot(fx-l.x, fy-l.y) / l.radius
				light += gomath.Max(0, 1-d*d)
			}
			i := y*CellSize + x
			lm.Brightness[i] = uint8(gomath.Min(255, 64+160*light))
			lm.ColorRGB[i*3] = uint8(gomath.Min(255, 60*light))
			lm.ColorRGB[i*3+1] = uint8(gomath.Min(255, 25*light))
		}
	}
	return lm
}

func flatLightmap(v uint8) formats.GNDLightmap {
	lm := formats.GNDLightmap{
		Brightness: make([]uint8, CellSize*CellSize),
		ColorRGB:   make([]uint8, CellSize*CellSize*3),
	}
	for i := range lm.Brightness {
		lm.Brightness[i] = v
	}
	return lm
}

// demoImages generates the courtyard textures.
type demoImages struct{}

func (demoImages) Find(name string) (*texture.Image, error) {
	var pix *image.RGBA
	switch name {
	case TexturePrefix + "demo/floor":
		pix = checker(8, [3]uint8{170, 160, 140}, [3]uint8{90, 85, 80})
	case TexturePrefix + "demo/wall":
		pix = bricks([3]uint8{150, 80, 60}, [3]uint8{200, 195, 185})
	default:
		return nil, fmt.Errorf("%s: not a demo texture", name)
	}
	return texture.NewImage(name, pix, 0), nil
}

func checker(cells int, a, b [3]uint8) *image.RGBA {
	pix := image.NewRGBA(image.Rect(0, 0, demoTexSize, demoTexSize))
	step := demoTexSize / cells
	for y := 0; y < demoTexSize; y++ {
		for x := 0; x < demoTexSize; x++ {
			c := a
			if (x/step+y/step)%2 == 1 {
				c = b
			}
			setRGB(pix, x, y, c)
		}
	}
	return pix
}

func bricks(brick, mortar [3]uint8) *image.RGBA {
	const bw, bh = 16, 8
	pix := image.NewRGBA(image.Rect(0, 0, demoTexSize, demoTexSize))
	for y := 0; y < demoTexSize; y++ {
		row := y / bh
		for x := 0; x < demoTexSize; x++ {
			ox := x
			if row%2 == 1 {
				ox += bw / 2
			}
			c := brick
			if y%bh == 0 || ox%bw == 0 {
				c = mortar
			}
			setRGB(pix, x, y, c)
		}
	}
	return pix
}

func setRGB(pix *image.RGBA, x, y int, c [3]uint8) {
	o := pix.PixOffset(x, y)
	pix.Pix[o], pix.Pix[o+1], pix.Pix[o+2], pix.Pix[o+3] = c[0], c[1], c[2], 255
}
