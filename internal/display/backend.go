// Package display abstracts over the ways a display stack can be
// queried and configured. Two backends exist: one talking to a sway
// compositor and one talking to the kernel DRM interface directly.
package display

import "fmt"

// Mode is a single video mode advertised by an output.
type Mode struct {
	Width   uint32
	Height  uint32
	Refresh uint32 // Hz, rounded
	Name    string // "WxH@RHz"
}

// Output is a physical connector as seen by the backend. Outputs are
// produced fresh on every query, never cached.
type Output struct {
	Name        string
	Modes       []Mode
	CurrentMode *Mode // nil when the output is disabled
	Connected   bool
	Rotation    int // degrees clockwise, one of 0 90 180 270
}

// ModeParams carries a parsed mode request.
type ModeParams struct {
	Width   uint32
	Height  uint32
	Refresh uint32
}

// Backend is implemented by each display stack. Operations that take a
// screen name treat the empty string as "all screens" for setters and
// "any active screen" for getters. Operations a backend cannot support
// return a BackendError naming the backend rather than silently
// succeeding.
type Backend interface {
	// Name identifies the backend, e.g. "Wayland" or "DRM".
	Name() string

	ListOutputs() ([]Output, error)
	ListModes(screen string) ([]Mode, error)

	CurrentMode(screen string) (*Mode, error)
	CurrentResolution(screen string) (uint32, uint32, error)
	CurrentRefreshRate(screen string) (uint32, error)
	CurrentRotation(screen string) (int, error)

	SetMode(screen string, params ModeParams) error
	SetRotation(screen string, degrees int) error
	SetMaxResolution(screen string, maxRes string) error

	TakeScreenshot(dir string) (string, error)
	MapTouchscreen() error
}

func modeName(width, height, refresh uint32) string {
	return fmt.Sprintf("%dx%d@%dHz", width, height, refresh)
}
