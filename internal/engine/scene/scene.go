// Package scene draws a sorted list of surfaces through the batcher, switching
// shader, entity, fog and dynamic light state as the sort keys change.
package scene

import (
	"cmp"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/surface"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/logger"
)

// Item is a surface with its sort key. Sort is the shader's sort value, which
// orders items before the key.
type Item struct {
	Sort    material.Sort
	Key     SortKey
	Surface surface.Surface
}

// Frame is everything drawn by one DrawScene call.
type Frame struct {
	View *view.View
	// Entities is indexed by the entity field of the sort keys; entry 0 is the world.
	Entities []view.Entity
	Items    []Item
}

// NewFrame returns a frame for v holding only the world entity.
func NewFrame(v *view.View) *Frame {
	return &Frame{
		View:     v,
		Entities: []view.Entity{view.NewWorldEntity()},
	}
}

// AddEntity appends an entity and returns its number.
func (f *Frame) AddEntity(e view.Entity) int {
	f.Entities = append(f.Entities, e)
	return len(f.Entities) - 1
}

// Add queues a surface.
func (f *Frame) Add(s surface.Surface, sh *material.Shader, entity, fog int, dlight bool) {
	f.Items = append(f.Items, Item{Sort: sh.Sort, Key: Pack(sh.Index, entity, fog, dlight), Surface: s})
}

// Sort orders the items by shader sort value, then by key, keeping the submission
// order of equal keys.
func (f *Frame) Sort() {
	slices.SortStableFunc(f.Items, func(a, b Item) int {
		switch {
		case a.Sort != b.Sort:
			return cmp.Compare(a.Sort, b.Sort)
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
}

func (f *Frame) entity(num int) *view.Entity {
	if num < 0 || num >= len(f.Entities) {
		return nil
	}
	return &f.Entities[num]
}

// Scene resolves sort keys against a shader registry and feeds a batch.
type Scene struct {
	Registry *material.Registry
	Batch    *batch.Batch

	log *zap.Logger
}

// New returns a scene drawing with b.
func New(reg *material.Registry, b *batch.Batch) *Scene {
	return &Scene{Registry: reg, Batch: b, log: logger.Named("scene")}
}

// DrawScene tesselates the items of f in order. Capacity violations abort the
// draw: the pending batch is discarded and the error is returned.
func (s *Scene) DrawScene(f *Frame) (err error) {
	b := s.Batch
	v := f.View
	worldTime := v.Time

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		var oe *batch.OverflowError
		var se *combiner.StageOverflowError
		if !ok || !(errors.As(e, &oe) || errors.As(e, &se)) {
			panic(r)
		}
		s.log.Error("scene aborted", zap.Error(e))
		b.Discard()
		v.Time = worldTime
		err = e
	}()

	if b.Buffer().NumVerts != 0 {
		b.Flush()
	}
	b.View = v
	b.Begin3D()

	var (
		curShader = -1
		curEntity = -1
		curFog    = -1
		curMask   uint32
	)
	for _, it := range f.Items {
		shNum, entNum, fogNum := it.Key.Shader(), it.Key.Entity(), it.Key.Fog()
		var mask uint32
		if it.Key.Dlight() {
			if lit, ok := it.Surface.(surface.Lit); ok {
				mask = lit.DlightMask()
			}
		}

		if shNum != curShader || entNum != curEntity || mask != curMask || fogNum != curFog {
			b.Bind(s.Registry.ByIndex(shNum), mask, fogNum)
			curShader, curMask, curFog = shNum, mask, fogNum
		}

		if entNum != curEntity {
			ent := f.entity(entNum)
			if entNum == view.WorldEntity || ent == nil {
				v.Time = worldTime
			} else {
				v.Time = ent.Time
			}
			if ent != nil {
				ent.Prepare(v)
			}
			if entNum == view.WorldEntity && ent != nil {
				b.SetWorldEntity(ent)
			} else {
				b.SetEntity(ent)
			}
			curEntity = entNum
		}

		it.Surface.Tesselate(b)
	}

	b.Flush()
	v.Time = worldTime
	b.SetEntity(nil)
	return nil
}
