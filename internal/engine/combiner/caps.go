package combiner

import (
	"fmt"
	"sort"
	"strings"
)

// Ext is a set of texture environment extensions.
type Ext uint32

// Extensions the planner knows how to use.
const (
	ExtEnvAdd Ext = 1 << iota
	ExtCombineEXT
	ExtCombineARB
	ExtNVCombine4
	ExtATICombine3
)

// Any combine extension (EXT or ARB flavour).
const ExtCombine = ExtCombineEXT | ExtCombineARB

var extNames = map[string]Ext{
	"GL_ARB_texture_env_add":      ExtEnvAdd,
	"GL_EXT_texture_env_add":      ExtEnvAdd,
	"GL_EXT_texture_env_combine":  ExtCombineEXT,
	"GL_ARB_texture_env_combine":  ExtCombineARB,
	"GL_NV_texture_env_combine4":  ExtNVCombine4,
	"GL_ATI_texture_env_combine3": ExtATICombine3,
}

// Any reports whether at least one extension of mask is present.
func (e Ext) Any(mask Ext) bool {
	return e&mask != 0
}

// canonicalExt names each bit once, in bit order.
var canonicalExt = []struct {
	bit  Ext
	name string
}{
	{ExtEnvAdd, "GL_ARB_texture_env_add"},
	{ExtCombineEXT, "GL_EXT_texture_env_combine"},
	{ExtCombineARB, "GL_ARB_texture_env_combine"},
	{ExtNVCombine4, "GL_NV_texture_env_combine4"},
	{ExtATICombine3, "GL_ATI_texture_env_combine3"},
}

func (e Ext) String() string {
	var names []string
	for _, c := range canonicalExt {
		if e&c.bit != 0 {
			names = append(names, c.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, " ")
}

// ParseExtension returns the extension bit for a GL extension name.
func ParseExtension(name string) (Ext, bool) {
	e, ok := extNames[strings.TrimSpace(name)]
	return e, ok
}

// ParseExtensions collects the known extensions from a GL_EXTENSIONS string.
func ParseExtensions(list string) Ext {
	var e Ext
	for _, name := range strings.Fields(list) {
		e |= extNames[name]
	}
	return e
}

// Caps describes the texture hardware the planner targets.
type Caps struct {
	Ext               Ext
	MaxActiveTextures int
	MaxTextureSize    int
	// DoubleModulateLM makes dynamic light passes modulate the texture with doubled brightness.
	DoubleModulateLM bool
}

// NewCaps builds capabilities from an extension set and a unit count.
func NewCaps(ext Ext, units, maxTextureSize int) Caps {
	c := Caps{Ext: ext, MaxActiveTextures: units, MaxTextureSize: maxTextureSize}
	if c.MaxActiveTextures < 1 {
		c.MaxActiveTextures = 1
	}
	c.DoubleModulateLM = ext.Any(ExtCombine | ExtNVCombine4)
	return c
}

// Limit caps the texture unit count; n <= 0 keeps the hardware value.
func (c Caps) Limit(n int) Caps {
	if n > 0 && c.MaxActiveTextures > n {
		c.MaxActiveTextures = n
	}
	return c
}

// Without removes extensions by GL name.
func (c Caps) Without(names []string) (Caps, error) {
	for _, name := range names {
		e, ok := ParseExtension(name)
		if !ok {
			return c, fmt.Errorf("unknown extension %q", name)
		}
		c.Ext &^= e
	}
	return NewCaps(c.Ext, c.MaxActiveTextures, c.MaxTextureSize), nil
}

func (c Caps) String() string {
	return fmt.Sprintf("%d units, %s", c.MaxActiveTextures, c.Ext)
}

// Profiles are typical fixed-function cards, used by tools and tests.
var Profiles = map[string]Caps{
	"single":       NewCaps(0, 1, 256),
	"multitexture": NewCaps(0, 2, 1024),
	"tnt2":         NewCaps(ExtEnvAdd|ExtCombineEXT|ExtNVCombine4, 2, 2048),
	"geforce":      NewCaps(ExtEnvAdd|ExtCombine|ExtNVCombine4, 4, 4096),
	"radeon":       NewCaps(ExtEnvAdd|ExtCombine|ExtATICombine3, 6, 2048),
	"arb":          NewCaps(ExtEnvAdd|ExtCombineARB, 8, 8192),
}

// Profile looks up a named capability profile.
func Profile(name string) (Caps, error) {
	c, ok := Profiles[name]
	if !ok {
		names := make([]string, 0, len(Profiles))
		for n := range Profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return Caps{}, fmt.Errorf("unknown profile %q (have %s)", name, strings.Join(names, ", "))
	}
	return c, nil
}
