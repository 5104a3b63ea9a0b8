package scene

import "fmt"

// Sort key layout, most significant first: shader, entity, fog, dynamic light flag.
const (
	DlightBits = 1
	FogBits    = 8
	EntityBits = 10
	ShaderBits = 12

	fogShift    = DlightBits
	entityShift = fogShift + FogBits
	shaderShift = entityShift + EntityBits

	MaxEntities = 1 << EntityBits
	MaxFogs     = 1 << FogBits
	MaxShaders  = 1 << ShaderBits
)

// SortKey orders surfaces so that those sharing a shader, entity and fog volume
// are drawn together.
type SortKey uint32

// Pack builds a sort key. Out of range fields are masked.
func Pack(shader, entity, fog int, dlight bool) SortKey {
	k := SortKey(shader&(MaxShaders-1))<<shaderShift |
		SortKey(entity&(MaxEntities-1))<<entityShift |
		SortKey(fog&(MaxFogs-1))<<fogShift
	if dlight {
		k |= 1
	}
	return k
}

// Shader returns the shader index.
func (k SortKey) Shader() int { return int(k>>shaderShift) & (MaxShaders - 1) }

// Entity returns the entity index.
func (k SortKey) Entity() int { return int(k>>entityShift) & (MaxEntities - 1) }

// Fog returns the fog volume number.
func (k SortKey) Fog() int { return int(k>>fogShift) & (MaxFogs - 1) }

// Dlight reports whether dynamic lights touch the surface.
func (k SortKey) Dlight() bool { return k&1 != 0 }

func (k SortKey) String() string {
	return fmt.Sprintf("shader=%d entity=%d fog=%d dlight=%t", k.Shader(), k.Entity(), k.Fog(), k.Dlight())
}
