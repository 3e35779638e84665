package spread

import (
	"fmt"
	"strings"
)

// Control is one of the two on-screen navigation buttons.
type Control string

const (
	ControlLeft  Control = "left"
	ControlRight Control = "right"
)

// ParseControl parses a navigation control name.
func ParseControl(s string) (Control, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ControlLeft):
		return ControlLeft, nil
	case string(ControlRight):
		return ControlRight, nil
	default:
		return "", fmt.Errorf("unknown control %q", s)
	}
}

// Forward returns the control that advances reading for a binding.
func Forward(b Binding) Control {
	if b == BindRight {
		return ControlLeft
	}
	return ControlRight
}

// Cursor is the current spread position. It is always kept within
// [0, MaxSpread(n)] for the page count it was last moved against.
type Cursor struct {
	pos int
}

// Pos returns the cursor position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Clamp re-limits the cursor after the page count changed.
func (c *Cursor) Clamp(n int) {
	c.pos = Clamp(c.pos, n)
}

// Reset moves the cursor back to the cover.
func (c *Cursor) Reset() {
	c.pos = 0
}

// Next advances one spread; a no-op at the last spread.
func (c *Cursor) Next(n int) {
	c.pos = Clamp(c.pos+1, n)
}

// Prev goes back one spread; a no-op at the cover.
func (c *Cursor) Prev(n int) {
	c.pos = Clamp(c.pos-1, n)
}

// Press applies a navigation control press under the given binding.
func (c *Cursor) Press(ctrl Control, b Binding, n int) {
	if ctrl == Forward(b) {
		c.Next(n)
		return
	}
	c.Prev(n)
}

// View returns the view at the cursor.
func (c *Cursor) View(n int) View {
	c.Clamp(n)
	return ViewAt(n, c.pos)
}
