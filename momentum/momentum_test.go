package momentum

import (
	"math"
	"testing"

	"github.com/stewi1014/glmandel/viewport"
)

func newView(t *testing.T) *viewport.State {
	t.Helper()
	v, err := viewport.New(800, 600)
	if err != nil {
		t.Fatalf("viewport.New: %v", err)
	}
	return v
}

func TestTick_IdleIsNoop(t *testing.T) {
	view := newView(t)
	c := New(DefaultFriction, DefaultEpsilon)
	before := view.Bounds()

	for i := 0; i < 10; i++ {
		if c.Tick(view) {
			t.Fatalf("tick %v reported motion while idle", i)
		}
	}
	if view.Bounds() != before {
		t.Errorf("bounds changed from %v to %v", before, view.Bounds())
	}

	// below epsilon counts as idle
	c.SetImpulse(Velocity{X: 1e-6, Y: -1e-6, Zoom: 5e-6})
	if c.Tick(view) {
		t.Error("sub-epsilon impulse reported motion")
	}
	if view.Bounds() != before {
		t.Errorf("bounds changed from %v to %v", before, view.Bounds())
	}
	if !c.Idle() {
		t.Errorf("velocity = %+v, want zero", c.Velocity())
	}
}

func TestTick_Terminates(t *testing.T) {
	tests := []struct {
		name     string
		v        Velocity
		friction float64
	}{
		{"pan", Velocity{X: 0.3, Y: -0.2}, 0.9},
		{"zoom in", Velocity{Zoom: -0.03}, 0.9},
		{"zoom out", Velocity{Zoom: 0.035}, 0.5},
		{"all axes", Velocity{X: 0.01, Y: 0.02, Zoom: -0.01}, 0.99},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := newView(t)
			c := New(tc.friction, DefaultEpsilon)
			c.SetImpulse(tc.v)

			bound := TicksToIdle(tc.v.Magnitude(), tc.friction, DefaultEpsilon)
			ticks := 0
			for c.Tick(view) {
				ticks++
				if ticks > bound {
					t.Fatalf("still coasting after %v ticks, bound %v, velocity %+v", ticks, bound, c.Velocity())
				}
				if b := view.Bounds(); !b.Valid() {
					t.Fatalf("tick %v: invalid bounds %v", ticks, b)
				}
			}

			if !c.Idle() {
				t.Errorf("velocity = %+v, want zero", c.Velocity())
			}
			if v := c.Velocity(); v.X != 0 || v.Y != 0 || v.Zoom != 0 {
				t.Errorf("velocity = %+v, want exactly zero", v)
			}
		})
	}
}

func TestTick_DecaysByFriction(t *testing.T) {
	view := newView(t)
	c := New(0.9, DefaultEpsilon)
	c.SetImpulse(Velocity{X: 0.1, Y: 0.2, Zoom: -0.03})

	c.Tick(view)

	v := c.Velocity()
	want := Velocity{X: 0.1 * 0.9, Y: 0.2 * 0.9, Zoom: -0.03 * 0.9}
	if math.Abs(v.X-want.X) > 1e-15 || math.Abs(v.Y-want.Y) > 1e-15 || math.Abs(v.Zoom-want.Zoom) > 1e-15 {
		t.Errorf("velocity = %+v, want %+v", v, want)
	}
}

func TestTick_PanDirection(t *testing.T) {
	view := newView(t)
	c := New(DefaultFriction, DefaultEpsilon)
	before := view.Center()

	c.SetPan(0.1, 0.1)
	c.Tick(view)

	after := view.Center()
	if after[0] >= before[0] {
		t.Errorf("positive x velocity moved real center from %v to %v, want it to decrease", before[0], after[0])
	}
	if after[1] <= before[1] {
		t.Errorf("positive y velocity moved imaginary center from %v to %v, want it to increase", before[1], after[1])
	}
}

func TestTick_ZoomKeepsAspect(t *testing.T) {
	view := newView(t)
	c := New(DefaultFriction, DefaultEpsilon)
	height := view.Bounds().Height()

	c.SetZoom(-0.03)
	c.Tick(view)

	b := view.Bounds()
	if b.Height() >= height {
		t.Errorf("height = %v, want less than %v", b.Height(), height)
	}
	if math.Abs(b.Width()/b.Height()-view.Aspect()) > 1e-9 {
		t.Errorf("aspect = %v, want %v", b.Width()/b.Height(), view.Aspect())
	}
}

func TestTick_RejectedZoomStops(t *testing.T) {
	view := newView(t)
	c := New(DefaultFriction, DefaultEpsilon)
	before := view.Bounds()

	c.SetZoom(-2) // factor -1
	c.Tick(view)

	if c.Velocity().Zoom != 0 {
		t.Errorf("zoom velocity = %v, want 0", c.Velocity().Zoom)
	}
	if after := view.Bounds(); !after.Valid() || math.Abs(after.Height()-before.Height()) > 1e-12 {
		t.Errorf("bounds changed from %v to %v", before, after)
	}
}

func TestSetImpulse_Overwrites(t *testing.T) {
	c := New(DefaultFriction, DefaultEpsilon)

	c.SetImpulse(Velocity{X: 0.5, Zoom: 0.1})
	c.SetImpulse(Velocity{X: 0.5, Zoom: 0.1})
	if v := c.Velocity(); v.X != 0.5 || v.Zoom != 0.1 {
		t.Errorf("velocity = %+v, want impulses to replace rather than add", v)
	}

	c.SetZoom(-0.2)
	if v := c.Velocity(); v.X != 0.5 || v.Zoom != -0.2 {
		t.Errorf("velocity = %+v, want pan kept and zoom replaced", v)
	}

	c.SetPan(0, 0.3)
	if v := c.Velocity(); v.X != 0 || v.Y != 0.3 || v.Zoom != -0.2 {
		t.Errorf("velocity = %+v, want zoom kept and pan replaced", v)
	}

	c.Reset()
	if !c.Idle() {
		t.Errorf("velocity after reset = %+v", c.Velocity())
	}
}

func TestNew_FallsBackToDefaults(t *testing.T) {
	c := New(1.5, -1)
	if c.Friction() != DefaultFriction {
		t.Errorf("friction = %v, want %v", c.Friction(), DefaultFriction)
	}
	if c.Epsilon() != DefaultEpsilon {
		t.Errorf("epsilon = %v, want %v", c.Epsilon(), DefaultEpsilon)
	}
}

func TestTicksToIdle(t *testing.T) {
	if n := TicksToIdle(1e-6, 0.9, 1e-5); n != 0 {
		t.Errorf("sub-epsilon bound = %v, want 0", n)
	}
	// 0.1 * 0.5^k <= 1e-5 first holds at k = 14
	if n := TicksToIdle(0.1, 0.5, 1e-5); n != 14 {
		t.Errorf("bound = %v, want 14", n)
	}
}
