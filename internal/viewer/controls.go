package viewer

import (
	"fmt"
	"sort"

	"github.com/Faultbox/midgard-gl/internal/config"
	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/engine/input"
)

// HardwareProfile names the detected capabilities in the profile cycle.
const HardwareProfile = "hardware"

// settingsFromConfig maps the renderer section onto planner settings.
func settingsFromConfig(r *config.RendererConfig) combiner.Settings {
	return combiner.Settings{
		Overbright:     uint8(r.Overbright),
		DynamicLights:  r.DynamicLights,
		ForcePostLight: r.ForcePostLight,
		NoFog:          r.NoFog,
		Fullbright:     r.Fullbright,
		LightmapOnly:   r.LightmapOnly,
		ShowFillRate:   r.ShowFillRate,
		SpyShader:      r.SpyShader,
	}
}

// applyToggle flips the planner switch bound to cmd and describes the result.
// It reports false for commands that are not planner switches.
func applyToggle(s *combiner.Settings, cmd input.Command) (string, bool) {
	var (
		name string
		on   bool
	)
	switch cmd {
	case input.CmdToggleFullbright:
		s.Fullbright = !s.Fullbright
		name, on = "fullbright", s.Fullbright
	case input.CmdToggleLightmap:
		s.LightmapOnly = !s.LightmapOnly
		name, on = "lightmap", s.LightmapOnly
	case input.CmdToggleFillRate:
		s.ShowFillRate = !s.ShowFillRate
		name, on = "fillrate", s.ShowFillRate
	case input.CmdToggleDlights:
		s.DynamicLights = !s.DynamicLights
		name, on = "dlights", s.DynamicLights
	case input.CmdCycleOverbright:
		s.Overbright = (s.Overbright + 1) % 3
		return fmt.Sprintf("overbright %d", s.Overbright), true
	default:
		return "", false
	}
	return fmt.Sprintf("%s %s", name, onOff(on)), true
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// profileCycle steps through the detected hardware and then the named profiles,
// each restricted to what the hardware offers.
type profileCycle struct {
	hw    combiner.Caps
	names []string
	cur   int
}

func newProfileCycle(hw combiner.Caps) *profileCycle {
	names := []string{HardwareProfile}
	rest := make([]string, 0, len(combiner.Profiles))
	for n := range combiner.Profiles {
		rest = append(rest, n)
	}
	sort.Strings(rest)
	return &profileCycle{hw: hw, names: append(names, rest...)}
}

// Name returns the current profile name.
func (p *profileCycle) Name() string {
	return p.names[p.cur]
}

// Caps returns the capabilities of the current profile.
func (p *profileCycle) Caps() combiner.Caps {
	if p.cur == 0 {
		return p.hw
	}
	return clampCaps(combiner.Profiles[p.names[p.cur]], p.hw)
}

// Next advances to the following profile, wrapping to the hardware.
func (p *profileCycle) Next() combiner.Caps {
	p.cur = (p.cur + 1) % len(p.names)
	return p.Caps()
}

// clampCaps keeps the extensions and limits of profile that hw also has.
func clampCaps(profile, hw combiner.Caps) combiner.Caps {
	return combiner.NewCaps(
		profile.Ext&hw.Ext,
		min(profile.MaxActiveTextures, hw.MaxActiveTextures),
		min(profile.MaxTextureSize, hw.MaxTextureSize),
	)
}
