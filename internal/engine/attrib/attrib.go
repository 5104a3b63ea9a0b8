// Package attrib generates per-vertex colors and texture coordinates for one stage
// from its rgbGen, alphaGen, tcGen and tcMod rules.
package attrib

import (
	"github.com/Faultbox/midgard-gl/internal/engine/view"
)

// Context is the per-flush state the generators read.
type Context struct {
	View     *view.View
	Entity   *view.Entity
	Fog      *view.Fog
	Lighting view.Lighting
	// Overbright is the lightmap brightness shift applied to vertex colors.
	Overbright uint8
}

func (c *Context) time() float32 {
	if c.View == nil {
		return 0
	}
	return c.View.Time
}
