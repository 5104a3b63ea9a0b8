package material

import (
	"strings"

	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/texture"
)

// MaxShaders bounds the shader index so it fits the scene sort key.
const MaxShaders = 1 << 12

// DefaultShaderName is the name of the fallback shader at index 0.
const DefaultShaderName = "*default"

// Registry maps shader indexes and names to shaders, and lightmap slots to images.
// It is owned by the render thread.
type Registry struct {
	shaders   []*Shader
	byName    map[string]*Shader
	lightmaps []*texture.Image
}

// NewRegistry creates a registry holding only the default shader.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Shader)}
	def := &Shader{
		Name:           DefaultShaderName,
		Sort:           SortOpaque,
		LightmapNumber: LightmapNone,
		Stages: []*Stage{{
			Images: []*texture.Image{nil},
			RGBGen: RGBGen{Kind: RGBIdentity},
			Color:  color.White,
		}},
	}
	def.Finish()
	r.Register(def)
	return r
}

// Register adds a shader, or replaces the shader with the same name keeping its index.
// It returns the shader index, or -1 when the registry is full.
func (r *Registry) Register(sh *Shader) int {
	key := strings.ToLower(sh.Name)
	if old, ok := r.byName[key]; ok {
		sh.Index = old.Index
		r.shaders[old.Index] = sh
		r.byName[key] = sh
		return sh.Index
	}
	if len(r.shaders) >= MaxShaders {
		return -1
	}
	sh.Index = len(r.shaders)
	r.shaders = append(r.shaders, sh)
	r.byName[key] = sh
	return sh.Index
}

// ByIndex returns the shader with the given index, or the default shader.
func (r *Registry) ByIndex(i int) *Shader {
	if i < 0 || i >= len(r.shaders) {
		return r.shaders[0]
	}
	return r.shaders[i]
}

// ByName looks a shader up by name (case-insensitive).
func (r *Registry) ByName(name string) (*Shader, bool) {
	sh, ok := r.byName[strings.ToLower(name)]
	return sh, ok
}

// Default returns the fallback shader.
func (r *Registry) Default() *Shader {
	return r.shaders[0]
}

// Shaders returns all registered shaders in index order.
func (r *Registry) Shaders() []*Shader {
	return r.shaders
}

// Len returns the number of registered shaders.
func (r *Registry) Len() int {
	return len(r.shaders)
}

// AddLightmap stores a lightmap page and returns its slot.
func (r *Registry) AddLightmap(img *texture.Image) int {
	r.lightmaps = append(r.lightmaps, img)
	return len(r.lightmaps) - 1
}

// Lightmap returns the lightmap image of a slot, or nil (white) when the slot is unknown.
func (r *Registry) Lightmap(slot int) *texture.Image {
	if slot < 0 || slot >= len(r.lightmaps) {
		return nil
	}
	return r.lightmaps[slot]
}
