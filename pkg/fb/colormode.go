package fb

import "sync/atomic"

// Colour modes the painter understands. Anything else is painted as
// nothing at all.
const (
	ModeBlack = iota
	ModeWhite
	ModeRed
	ModeGreen
	ModeBlue
)

// ColorMode is a single shared word selecting the painter's colour
// scheme. It is written by sessions on keystrokes and read by the
// painter once per pixel; plain relaxed atomics are all it needs.
type ColorMode struct {
	v atomic.Uint32
}

// Get returns the current mode.
func (m *ColorMode) Get() int { return int(m.v.Load()) }

// Set stores a new mode. Values outside the known set are stored as-is;
// the painter ignores them.
func (m *ColorMode) Set(mode int) { m.v.Store(uint32(mode)) }
