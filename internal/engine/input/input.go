// Package input turns SDL2 events into viewer actions and camera motion.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionNextSequence
	ActionPrevSequence
	ActionNextEntity
	ActionNextBody
	ActionToggleShadows
	ActionToggleInterp
	ActionTogglePause
	ActionCycleDebug
	ActionSunLeft
	ActionSunRight
	ActionSunUp
	ActionSunDown
	ActionPrecache
	ActionScreenshot
)

var actionNames = map[Action]string{
	ActionQuit:          "quit",
	ActionNextSequence:  "next_sequence",
	ActionPrevSequence:  "prev_sequence",
	ActionNextEntity:    "next_entity",
	ActionNextBody:      "next_body",
	ActionToggleShadows: "toggle_shadows",
	ActionToggleInterp:  "toggle_interp",
	ActionTogglePause:   "toggle_pause",
	ActionCycleDebug:    "cycle_debug",
	ActionSunLeft:       "sun_left",
	ActionSunRight:      "sun_right",
	ActionSunUp:         "sun_up",
	ActionSunDown:       "sun_down",
	ActionPrecache:      "precache",
	ActionScreenshot:    "screenshot",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "none"
}

// DefaultBindings maps keys to actions.
func DefaultBindings() map[sdl.Keycode]Action {
	return map[sdl.Keycode]Action{
		sdl.K_ESCAPE: ActionQuit,
		sdl.K_RIGHT:  ActionNextSequence,
		sdl.K_LEFT:   ActionPrevSequence,
		sdl.K_TAB:    ActionNextEntity,
		sdl.K_b:      ActionNextBody,
		sdl.K_s:      ActionToggleShadows,
		sdl.K_i:      ActionToggleInterp,
		sdl.K_SPACE:  ActionTogglePause,
		sdl.K_d:      ActionCycleDebug,
		sdl.K_q:      ActionSunLeft,
		sdl.K_e:      ActionSunRight,
		sdl.K_r:      ActionSunUp,
		sdl.K_f:      ActionSunDown,
		sdl.K_c:      ActionPrecache,
		sdl.K_F12:    ActionScreenshot,
	}
}

// Input collects the actions and camera motion of one frame.
type Input struct {
	bindings map[sdl.Keycode]Action

	actions []Action
	resized bool
	width   int
	height  int

	dragging bool
	lastX    int32
	lastY    int32
	dragX    float32
	dragY    float32
	wheel    float32
	quit     bool
}

// New creates an input handler with the default bindings.
func New() *Input {
	return &Input{
		bindings: DefaultBindings(),
		actions:  make([]Action, 0, 8),
	}
}

// Bind maps key to action, replacing any previous binding.
func (i *Input) Bind(key sdl.Keycode, a Action) {
	i.bindings[key] = a
}

// Update polls SDL events. It returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.reset()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.quit
}

func (i *Input) reset() {
	i.actions = i.actions[:0]
	i.resized = false
	i.dragX, i.dragY, i.wheel = 0, 0, 0
}

func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.quit = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.resized = true
			i.width, i.height = int(e.Data1), int(e.Data2)
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return
		}
		a, ok := i.bindings[e.Keysym.Sym]
		if !ok {
			return
		}
		if a == ActionQuit {
			i.quit = true
		}
		i.actions = append(i.actions, a)

	case *sdl.MouseButtonEvent:
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = e.State == sdl.PRESSED
			i.lastX, i.lastY = e.X, e.Y
		}

	case *sdl.MouseMotionEvent:
		if i.dragging {
			i.dragX += float32(e.X - i.lastX)
			i.dragY += float32(e.Y - i.lastY)
		}
		i.lastX, i.lastY = e.X, e.Y

	case *sdl.MouseWheelEvent:
		i.wheel += float32(e.Y)
	}
}

// Actions returns the actions triggered since the last Update.
func (i *Input) Actions() []Action {
	return i.actions
}

// Resized reports a window size change since the last Update.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// Drag returns the mouse motion with the left button held.
func (i *Input) Drag() (dx, dy float32) {
	return i.dragX, i.dragY
}

// Wheel returns the scroll wheel motion.
func (i *Input) Wheel() float32 {
	return i.wheel
}
