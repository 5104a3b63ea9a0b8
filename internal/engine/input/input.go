// Package input turns SDL2 events into viewer commands.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Command is a viewer action bound to a key.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdToggleFullbright
	CmdToggleLightmap
	CmdToggleFillRate
	CmdToggleWireframe
	CmdToggleDlights
	CmdCycleOverbright
	CmdCycleProfile
	CmdReloadMaterials
	CmdToggleStats
	CmdScreenshot

	// Held commands, queried with Held.
	CmdForward
	CmdBack
	CmdTurnLeft
	CmdTurnRight
	CmdZoomIn
	CmdZoomOut
)

var commandNames = [...]string{
	"none", "quit", "fullbright", "lightmap", "fillrate", "wireframe", "dlights",
	"overbright", "profile", "reload", "stats", "screenshot", "forward", "back", "left", "right",
	"zoomin", "zoomout",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// Bindings maps scancodes to commands.
type Bindings map[sdl.Scancode]Command

// DefaultBindings returns the stock key layout.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_ESCAPE:   CmdQuit,
		sdl.SCANCODE_F1:       CmdToggleFullbright,
		sdl.SCANCODE_F2:       CmdToggleLightmap,
		sdl.SCANCODE_F3:       CmdToggleFillRate,
		sdl.SCANCODE_F4:       CmdToggleWireframe,
		sdl.SCANCODE_F5:       CmdToggleDlights,
		sdl.SCANCODE_F6:       CmdCycleOverbright,
		sdl.SCANCODE_F7:       CmdCycleProfile,
		sdl.SCANCODE_F8:       CmdReloadMaterials,
		sdl.SCANCODE_F12:      CmdScreenshot,
		sdl.SCANCODE_TAB:      CmdToggleStats,
		sdl.SCANCODE_W:        CmdForward,
		sdl.SCANCODE_UP:       CmdForward,
		sdl.SCANCODE_S:        CmdBack,
		sdl.SCANCODE_DOWN:     CmdBack,
		sdl.SCANCODE_A:        CmdTurnLeft,
		sdl.SCANCODE_LEFT:     CmdTurnLeft,
		sdl.SCANCODE_D:        CmdTurnRight,
		sdl.SCANCODE_RIGHT:    CmdTurnRight,
		sdl.SCANCODE_E:        CmdZoomIn,
		sdl.SCANCODE_PAGEUP:   CmdZoomIn,
		sdl.SCANCODE_Q:        CmdZoomOut,
		sdl.SCANCODE_PAGEDOWN: CmdZoomOut,
	}
}

// EventType is the kind of a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Input handles all input processing.
type Input struct {
	bindings Bindings
	events   []Event
	commands []Command
	held     map[Command]bool
}

// New creates an input handler. Nil bindings select DefaultBindings.
func New(b Bindings) *Input {
	if b == nil {
		b = DefaultBindings()
	}
	return &Input{
		bindings: b,
		events:   make([]Event, 0, 16),
		held:     make(map[Command]bool),
	}
}

// Update polls SDL events and translates them.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}
		}
	}

	return i.Process(i.events)
}

// Process translates events into commands and held state.
// Returns true if a quit was requested.
func (i *Input) Process(events []Event) bool {
	i.commands = i.commands[:0]
	quit := false

	for _, e := range events {
		switch e.Type {
		case EventQuit:
			quit = true
		case EventKeyDown:
			cmd := i.bindings[e.Key]
			switch {
			case cmd == CmdNone:
			case cmd >= CmdForward:
				i.held[cmd] = true
			default:
				if cmd == CmdQuit {
					quit = true
				}
				i.commands = append(i.commands, cmd)
			}
		case EventKeyUp:
			if cmd := i.bindings[e.Key]; cmd >= CmdForward {
				i.held[cmd] = false
			}
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Commands returns the one-shot commands from the last Update.
func (i *Input) Commands() []Command {
	return i.commands
}

// Held reports whether the key of a held command is down.
func (i *Input) Held(c Command) bool {
	return i.held[c]
}

// Resized returns the last window size reported since the previous Update.
func (i *Input) Resized() (w, h int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			w, h, ok = e.Width, e.Height, true
		}
	}
	return w, h, ok
}
