// Package batch accumulates surface geometry for one shader and flushes it
// through the combiner to a Submitter.
package batch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/engine/attrib"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/deform"
	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/vertexbuf"
	"github.com/Faultbox/midgard-gl/internal/engine/view"
	"github.com/Faultbox/midgard-gl/internal/logger"
)

// Notifier shows a diagnostic line on screen.
type Notifier func(msg string)

// Stats counts the work of the flushes since the last ResetStats.
type Stats struct {
	Flushes int
	// Tris counts triangles as if every stage were its own pass.
	Tris int
	// TrisMT counts triangles actually submitted by multitexture passes.
	TrisMT int
	Tris2D int
}

// OverflowError reports a reservation that cannot fit an empty batch.
type OverflowError struct {
	Shader     string
	Verts      int
	Indexes    int
	MaxVerts   int
	MaxIndexes int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("batch: %s: reservation of %d verts, %d indexes exceeds %d/%d",
		e.Shader, e.Verts, e.Indexes, e.MaxVerts, e.MaxIndexes)
}

// Batch is the geometry batcher. It is not safe for concurrent use.
type Batch struct {
	View     *view.View
	Lighting view.Lighting
	Notify   Notifier

	buf     *vertexbuf.Buffer
	planner *combiner.Planner
	out     Submitter
	log     *zap.Logger

	shader     *material.Shader
	entity     *view.Entity
	world      view.Entity
	dlightMask uint32
	fogNum     int
	is2D       bool
	isWorld    bool

	pass  Pass
	stats Stats
}

// New returns a batch drawing through out. Zero capacities select the defaults.
func New(out Submitter, planner *combiner.Planner, maxVerts, maxIndexes int) *Batch {
	units := planner.Caps.MaxActiveTextures
	return &Batch{
		View:    view.New(0, 0),
		buf:     vertexbuf.New(maxVerts, maxIndexes, units),
		planner: planner,
		out:     out,
		log:     logger.Named("batch"),
		world:   view.NewWorldEntity(),
		pass:    Pass{Units: make([]Unit, 0, max(units, 1))},
	}
}

// Buffer returns the arena tesselators write into.
func (b *Batch) Buffer() *vertexbuf.Buffer { return b.buf }

// Planner returns the combiner used by Flush.
func (b *Batch) Planner() *combiner.Planner { return b.planner }

// Shader returns the current shader.
func (b *Batch) Shader() *material.Shader { return b.shader }

// Entity returns the current entity (nil = world).
func (b *Batch) Entity() *view.Entity { return b.entity }

// Is2D reports whether the batch is in screen-space mode.
func (b *Batch) Is2D() bool { return b.is2D }

// Stats returns the counters.
func (b *Batch) Stats() Stats { return b.stats }

// ResetStats returns the counters and zeroes them.
func (b *Batch) ResetStats() Stats {
	s := b.stats
	b.stats = Stats{}
	return s
}

// SetCurrentShader flushes the pending geometry and makes sh current.
func (b *Batch) SetCurrentShader(sh *material.Shader) {
	b.Flush()
	if b.buf.NumVerts != 0 && b.buf.NumIndexes != 0 {
		b.log.Warn("shader switch without flush",
			zap.String("shader", shaderName(sh)),
			zap.String("previous", shaderName(b.shader)),
			zap.Int("verts", b.buf.NumVerts),
			zap.Int("indexes", b.buf.NumIndexes))
	}
	b.shader = sh
	b.buf.Reset()
}

// Bind makes sh current together with the surface's dynamic lights and fog volume.
func (b *Batch) Bind(sh *material.Shader, dlightMask uint32, fogNum int) {
	b.SetCurrentShader(sh)
	b.dlightMask = dlightMask
	b.fogNum = fogNum
}

// SetEntity flushes and loads the transform of e (nil = world).
func (b *Batch) SetEntity(e *view.Entity) {
	b.setEntity(e, e == nil)
}

// SetWorldEntity is SetEntity for the world entity of a frame.
func (b *Batch) SetWorldEntity(e *view.Entity) {
	b.setEntity(e, true)
}

func (b *Batch) setEntity(e *view.Entity, world bool) {
	b.Flush()
	b.entity = e
	b.isWorld = world
	b.out.SetEntity(b.View, e)
}

// ReserveVerts makes room for verts vertexes and inds indexes, flushing when the
// batch is too full. A reservation larger than an empty batch panics with
// *OverflowError.
func (b *Batch) ReserveVerts(verts, inds int) {
	if b.buf.Fits(verts, inds) {
		return
	}
	b.Flush()
	if !b.buf.Fits(verts, inds) {
		panic(&OverflowError{
			Shader:     shaderName(b.shader),
			Verts:      verts,
			Indexes:    inds,
			MaxVerts:   b.buf.MaxVerts(),
			MaxIndexes: b.buf.MaxIndexes(),
		})
	}
}

// Begin2D flushes and switches to screen space.
func (b *Batch) Begin2D() {
	if b.is2D {
		return
	}
	b.Flush()
	b.is2D = true
	b.entity = nil
	b.dlightMask = 0
	b.fogNum = 0
	b.out.Begin2D(b.View.Width, b.View.Height)
}

// Begin3D flushes and loads the camera of the current view.
func (b *Batch) Begin3D() {
	b.Flush()
	b.is2D = false
	b.world.Prepare(b.View)
	b.out.Begin3D(b.View)
}

// Flush draws the pending geometry with the current shader and empties the batch.
// Flushing an empty batch does nothing.
func (b *Batch) Flush() {
	buf := b.buf
	if buf.NumIndexes == 0 {
		return
	}
	sh := b.shader
	if sh == nil {
		return
	}

	ent := b.entity
	if ent == nil {
		ent = &b.world
	}
	plan := b.planner.Compute(&combiner.Input{
		Shader:     sh,
		View:       b.View,
		Entity:     b.entity,
		Lighting:   b.Lighting,
		DlightMask: b.dlightMask,
		FogNum:     b.fogNum,
		Is2D:       b.is2D,
		World:      b.entity == nil || b.isWorld,
	})

	if err := deform.Apply(buf, sh, b.View, ent); err != nil {
		b.log.Warn("deform skipped", zap.String("shader", sh.Name), zap.Error(err))
		if b.Notify != nil {
			b.Notify(err.Error())
		}
	}

	ctx := attrib.Context{
		View:       b.View,
		Entity:     ent,
		Fog:        b.View.Fog(b.fogNum),
		Lighting:   b.Lighting,
		Overbright: b.planner.Settings.Overbright,
	}

	n := buf.NumVerts
	b.out.BeginBatch(sh, buf.ActiveVerts(), buf.ActiveIndexes())
	for i := range plan.Passes {
		stages := plan.PassStages(i)
		p := &b.pass
		p.State = plan.Passes[i].State
		p.Units = p.Units[:0]
		for j := range stages {
			st := &stages[j]
			attrib.TexCoords(buf, j, &st.Stage, st.Image, &ctx)
			p.Units = append(p.Units, Unit{
				Image:     st.Image,
				Env:       st.Env,
				EnvColor:  st.Color,
				TexCoords: buf.TexCoord[j][:n],
			})
		}

		cs := &stages[0]
		if cs.RGBGen.Kind != material.RGBConst || cs.AlphaGen.Kind != material.AlphaConst {
			attrib.Colors(buf, &cs.Stage, &ctx)
			p.Colors = buf.Color[:n]
		} else {
			p.Colors = nil
			p.Color = cs.Color
		}
		b.out.DrawPass(p)
	}
	b.out.EndBatch()

	tris := buf.NumIndexes / 3
	if b.is2D {
		b.stats.Tris2D += tris * len(plan.Stages)
	} else {
		b.stats.Tris += tris * len(plan.Stages)
		b.stats.TrisMT += tris * len(plan.Passes)
	}
	b.stats.Flushes++

	buf.Reset()
}

// Discard drops the pending geometry without drawing it.
func (b *Batch) Discard() {
	b.buf.Reset()
}

func shaderName(sh *material.Shader) string {
	if sh == nil {
		return "<none>"
	}
	return sh.Name
}
