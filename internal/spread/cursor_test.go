package spread

import "testing"

func TestCursor_StaysInRange(t *testing.T) {
	for n := 0; n <= 48; n++ {
		var c Cursor
		maxS := MaxSpread(n)
		for range maxS + 5 {
			c.Next(n)
			if c.Pos() < 0 || c.Pos() > maxS {
				t.Fatalf("n=%d: cursor %d out of [0, %d]", n, c.Pos(), maxS)
			}
		}
		if c.Pos() != maxS {
			t.Errorf("n=%d: expected cursor at max %d, got %d", n, maxS, c.Pos())
		}
		c.Next(n)
		if c.Pos() != maxS {
			t.Errorf("n=%d: increment at max should be a no-op, got %d", n, c.Pos())
		}
		for range maxS + 5 {
			c.Prev(n)
		}
		if c.Pos() != 0 {
			t.Errorf("n=%d: expected cursor at 0, got %d", n, c.Pos())
		}
		c.Prev(n)
		if c.Pos() != 0 {
			t.Errorf("n=%d: decrement at 0 should be a no-op, got %d", n, c.Pos())
		}
	}
}

func TestCursor_PressFollowsBinding(t *testing.T) {
	tests := []struct {
		binding Binding
		forward Control
		back    Control
	}{
		{BindLeft, ControlRight, ControlLeft},
		{BindRight, ControlLeft, ControlRight},
	}
	for _, tt := range tests {
		t.Run(string(tt.binding), func(t *testing.T) {
			if Forward(tt.binding) != tt.forward {
				t.Fatalf("expected forward control %s, got %s", tt.forward, Forward(tt.binding))
			}
			var c Cursor
			c.Press(tt.forward, tt.binding, 8)
			c.Press(tt.forward, tt.binding, 8)
			if c.Pos() != 2 {
				t.Errorf("expected cursor 2 after two forward presses, got %d", c.Pos())
			}
			c.Press(tt.back, tt.binding, 8)
			if c.Pos() != 1 {
				t.Errorf("expected cursor 1 after back press, got %d", c.Pos())
			}
		})
	}
}

func TestCursor_ClampAfterShrink(t *testing.T) {
	var c Cursor
	for range 10 {
		c.Next(20)
	}
	if c.Pos() != 10 {
		t.Fatalf("expected 10, got %d", c.Pos())
	}
	c.Clamp(5)
	if c.Pos() != MaxSpread(5) {
		t.Errorf("expected clamp to %d, got %d", MaxSpread(5), c.Pos())
	}
	v := c.View(3)
	if v.Spread != 1 || c.Pos() != 1 {
		t.Errorf("View should clamp the cursor, got spread %d pos %d", v.Spread, c.Pos())
	}
}

func TestParseControl(t *testing.T) {
	if c, err := ParseControl("Left"); err != nil || c != ControlLeft {
		t.Errorf("expected left, got %q (%v)", c, err)
	}
	if _, err := ParseControl("up"); err == nil {
		t.Error("expected error for unknown control")
	}
}
