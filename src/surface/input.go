package surface

import "image"

// Button is a mouse button bit.
type Button uint8

const (
	ButtonLeft Button = 1 << iota
	ButtonRight
	ButtonMiddle
)

// Key is a keyboard key the region tools react to.
type Key uint8

const (
	KeyEscape Key = 1 << iota
	KeyEnter
)

// Input is the per-frame view of the pointer and keyboard. Positions are in
// capture-surface pixels with the origin at the surface's top-left corner.
type Input interface {
	MousePosition() image.Point
	IsMouseDown(b Button) bool
	// IsMousePressed reports a press since the previous frame.
	IsMousePressed(b Button) bool
	// IsMouseReleased reports a release since the previous frame.
	IsMouseReleased(b Button) bool
	IsKeyPressed(k Key) bool
}

// InputState is an Input fed by host events. Events are latched until the
// next BeginFrame so a press and release inside one frame are both seen.
// It is not safe for concurrent use; hosts deliver events and run frames on
// the same goroutine.
type InputState struct {
	pos image.Point

	live            Button
	pendingPressed  Button
	pendingReleased Button
	pendingKeys     Key

	down     Button
	pressed  Button
	released Button
	keys     Key
}

var _ Input = (*InputState)(nil)

// MoveTo records the pointer position.
func (s *InputState) MoveTo(p image.Point) { s.pos = p }

// SetButton records a button transition.
func (s *InputState) SetButton(b Button, down bool) {
	if down {
		if s.live&b == 0 {
			s.pendingPressed |= b
		}
		s.live |= b
		return
	}
	if s.live&b != 0 {
		s.pendingReleased |= b
	}
	s.live &^= b
}

// PressKey records a key press.
func (s *InputState) PressKey(k Key) { s.pendingKeys |= k }

// BeginFrame publishes the events received since the previous frame.
func (s *InputState) BeginFrame() {
	s.down = s.live
	s.pressed, s.pendingPressed = s.pendingPressed, 0
	s.released, s.pendingReleased = s.pendingReleased, 0
	s.keys, s.pendingKeys = s.pendingKeys, 0
}

func (s *InputState) MousePosition() image.Point    { return s.pos }
func (s *InputState) IsMouseDown(b Button) bool     { return s.down&b != 0 }
func (s *InputState) IsMousePressed(b Button) bool  { return s.pressed&b != 0 }
func (s *InputState) IsMouseReleased(b Button) bool { return s.released&b != 0 }
func (s *InputState) IsKeyPressed(k Key) bool       { return s.keys&k != 0 }
