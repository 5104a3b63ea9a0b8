package world

import (
	"fmt"
	"image"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
	"github.com/Faultbox/midgard-gl/pkg/formats"
	"github.com/Faultbox/midgard-gl/pkg/math"
)

// Lightmap page layout. Every cell carries a one texel border around its 6x6 interior.
const (
	CellSize     = 8
	PageSize     = material.LightmapSize
	cellsPerRow  = PageSize / CellSize
	cellsPerPage = cellsPerRow * cellsPerRow
)

// buildPages packs the GND lightmap cells into pages. A texel is the cell brightness
// plus its color tint, saturated.
func buildPages(gnd *formats.GND) []*texture.Image {
	n := (len(gnd.Lightmaps) + cellsPerPage - 1) / cellsPerPage
	w := min(gnd.LightmapWidth, CellSize)
	h := min(gnd.LightmapHeight, CellSize)
	pages := make([]*texture.Image, 0, n)
	for p := 0; p < n; p++ {
		pix := image.NewRGBA(image.Rect(0, 0, PageSize, PageSize))
		for i := range pix.Pix {
			pix.Pix[i] = 255
		}
		first := p * cellsPerPage
		last := min(first+cellsPerPage, len(gnd.Lightmaps))
		for id := first; id < last; id++ {
			lm := &gnd.Lightmaps[id]
			cell := id - first
			bx, by := cell%cellsPerRow*CellSize, cell/cellsPerRow*CellSize
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					src := y*gnd.LightmapWidth + x
					o := pix.PixOffset(bx+x, by+y)
					var bright uint8 = 255
					if src < len(lm.Brightness) {
						bright = lm.Brightness[src]
					}
					for c := 0; c < 3; c++ {
						v := int(bright)
						if k := src*3 + c; k < len(lm.ColorRGB) {
							v += int(lm.ColorRGB[k])
						}
						pix.Pix[o+c] = uint8(min(v, 255))
					}
				}
			}
		}
		img := texture.NewImage(fmt.Sprintf("*lightmap%d", p), pix, 0)
		img.Clamp = true
		pages = append(pages, img)
	}
	return pages
}

// cellCoords returns the lightmap texcoords of a cell's interior for the corners
// bl, br, tl, tr.
func cellCoords(cell int) [4]math.Vec2 {
	const texel = 1.0 / PageSize
	u0 := float32(cell%cellsPerRow*CellSize+1) * texel
	v0 := float32(cell/cellsPerRow*CellSize+1) * texel
	u1 := u0 + (CellSize-2)*texel
	v1 := v0 + (CellSize-2)*texel
	return [4]math.Vec2{{X: u0, Y: v0}, {X: u1, Y: v0}, {X: u0, Y: v1}, {X: u1, Y: v1}}
}
