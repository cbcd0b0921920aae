package player

import "termplay/render"

// Speed multiplier bounds and the per-keypress step.
const (
	MinSpeed  = 0.2
	MaxSpeed  = 5.0
	speedStep = 1.5
)

// State holds the playback modifiers the controller mutates in response to
// input. The renderer only ever sees a per-tick snapshot of it.
type State struct {
	Paused     bool
	Speed      float64
	Style      render.Style
	Fullscreen bool
	Loop       bool
	FrameIndex int

	// Requested character box; zero means size to the terminal each tick.
	Width  int
	Height int

	origWidth  int
	origHeight int
}

// SpeedUp raises the speed multiplier one step, clamped to MaxSpeed.
func (s *State) SpeedUp() {
	s.Speed = min(s.Speed*speedStep, MaxSpeed)
}

// SlowDown lowers the speed multiplier one step, clamped to MinSpeed.
func (s *State) SlowDown() {
	s.Speed = max(s.Speed/speedStep, MinSpeed)
}

// ToggleStyle flips between glyph and filled-block rendering.
func (s *State) ToggleStyle() {
	if s.Style == render.StyleGlyph {
		s.Style = render.StyleBlock
	} else {
		s.Style = render.StyleGlyph
	}
}

// EnterFullscreen captures the current terminal geometry as the active box,
// remembering the configured one for RestoreWindow.
func (s *State) EnterFullscreen(cols, rows int) {
	s.origWidth, s.origHeight = s.Width, s.Height
	s.Width = cols - 2
	s.Height = rows - 4
	s.Fullscreen = true
}

// RestoreWindow reinstates the box configured before fullscreen.
func (s *State) RestoreWindow() {
	s.Width, s.Height = s.origWidth, s.origHeight
	s.Fullscreen = false
}
