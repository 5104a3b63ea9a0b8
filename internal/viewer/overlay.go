package viewer

import (
	"fmt"

	"github.com/Faultbox/midgard-gl/internal/engine/batch"
	"github.com/Faultbox/midgard-gl/internal/engine/color"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/font"
)

// noticeSeconds is how long a notice stays on screen.
const noticeSeconds = 3

var (
	statsColor  = color.RGB255(255, 255, 255)
	noticeColor = color.RGB255(255, 220, 80)
)

// frameInfo is what the overlay reports about the last frame.
type frameInfo struct {
	Stats     batch.Stats
	FPS       int
	Profile   string
	Caps      combiner.Caps
	Settings  combiner.Settings
	Wireframe bool
	Surfaces  int
}

// overlay draws the statistics block and transient notices.
type overlay struct {
	font    *font.Font
	visible bool

	notice      string
	noticeUntil float32
}

// notify shows msg until now+noticeSeconds.
func (o *overlay) notify(msg string, now float32) {
	o.notice = msg
	o.noticeUntil = now + noticeSeconds
}

// lines formats the statistics block.
func (o *overlay) lines(fi *frameInfo) []string {
	s := &fi.Settings
	return []string{
		fmt.Sprintf("%d fps  %d surfaces", fi.FPS, fi.Surfaces),
		fmt.Sprintf("flushes %d  tris %d  mt %d  2d %d",
			fi.Stats.Flushes, fi.Stats.Tris, fi.Stats.TrisMT, fi.Stats.Tris2D),
		fmt.Sprintf("profile %s: %s", fi.Profile, fi.Caps),
		fmt.Sprintf("overbright %d  dlights %s  fullbright %s  lightmap %s",
			s.Overbright, onOff(s.DynamicLights), onOff(s.Fullbright), onOff(s.LightmapOnly)),
		fmt.Sprintf("fillrate %s  wireframe %s", onOff(s.ShowFillRate), onOff(fi.Wireframe)),
	}
}

// draw queues the overlay text; the caller flushes.
func (o *overlay) draw(b *batch.Batch, fi *frameInfo, now float32) {
	if o.font == nil {
		return
	}
	y := 4
	if o.visible {
		for _, line := range o.lines(fi) {
			b.DrawText(o.font, line, 4, y, statsColor)
			y += o.font.LineHeight
		}
	}
	if o.notice != "" && now < o.noticeUntil {
		b.DrawText(o.font, o.notice, 4, y+o.font.LineHeight/2, noticeColor)
	}
}
