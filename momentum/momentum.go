// Package momentum keeps panning and zooming going after a gesture ends and
// slows it down with friction until it stops.
package momentum

import (
	"log"
	"math"

	"github.com/stewi1014/glmandel/viewport"
)

const (
	DefaultFriction = 0.9
	DefaultEpsilon  = 1e-5
)

// Velocity is the per frame motion of the view. X and Y are fractions of the
// current range, Zoom is added to 1 to give the range scale factor.
type Velocity struct {
	X, Y float64
	Zoom float64
}

func (v Velocity) IsZero() bool {
	return v == Velocity{}
}

// Magnitude is the largest absolute component.
func (v Velocity) Magnitude() float64 {
	return math.Max(math.Abs(v.Zoom), math.Max(math.Abs(v.X), math.Abs(v.Y)))
}

// Controller owns the velocity of a single view.
type Controller struct {
	friction float64
	epsilon  float64
	velocity Velocity
}

// New returns an idle Controller. Friction must be in (0, 1) and epsilon
// positive, otherwise the defaults are used.
func New(friction, epsilon float64) *Controller {
	if !(friction > 0 && friction < 1) {
		log.Printf("momentum: friction %v out of range, using %v", friction, DefaultFriction)
		friction = DefaultFriction
	}
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		log.Printf("momentum: epsilon %v out of range, using %v", epsilon, DefaultEpsilon)
		epsilon = DefaultEpsilon
	}

	return &Controller{
		friction: friction,
		epsilon:  epsilon,
	}
}

func (c *Controller) Friction() float64  { return c.friction }
func (c *Controller) Epsilon() float64   { return c.epsilon }
func (c *Controller) Velocity() Velocity { return c.velocity }

// Idle reports whether every component has come to rest.
func (c *Controller) Idle() bool {
	c.snap()
	return c.velocity.IsZero()
}

// SetImpulse replaces the current velocity. Impulses never add up, so repeated
// small gestures can not run away.
func (c *Controller) SetImpulse(v Velocity) {
	c.velocity = v
	c.snap()
}

// SetPan replaces the pan velocity and leaves zoom coasting.
func (c *Controller) SetPan(x, y float64) {
	c.velocity.X, c.velocity.Y = x, y
	c.snap()
}

// SetZoom replaces the zoom velocity and leaves panning coasting.
func (c *Controller) SetZoom(zoom float64) {
	c.velocity.Zoom = zoom
	c.snap()
}

func (c *Controller) Reset() {
	c.velocity = Velocity{}
}

// Tick applies one frame of motion to view and then decays the velocity.
// It returns false, leaving view untouched, when there was nothing to apply.
func (c *Controller) Tick(view *viewport.State) bool {
	c.snap()
	if c.velocity.IsZero() {
		return false
	}

	if c.velocity.X != 0 || c.velocity.Y != 0 {
		// screen x grows with the drag while the view moves the other way,
		// screen y grows down while the imaginary axis grows up.
		if err := view.Pan(-c.velocity.X, c.velocity.Y); err != nil {
			log.Printf("momentum: stopping pan: %v", err)
			c.velocity.X, c.velocity.Y = 0, 0
		}
	}

	if c.velocity.Zoom != 0 {
		if err := view.ZoomAroundCenter(1 + c.velocity.Zoom); err != nil {
			log.Printf("momentum: stopping zoom: %v", err)
			c.velocity.Zoom = 0
		}
	}

	if err := view.FixAspect(); err != nil {
		log.Printf("momentum: %v", err)
	}

	c.velocity.X *= c.friction
	c.velocity.Y *= c.friction
	c.velocity.Zoom *= c.friction
	c.snap()
	return true
}

func (c *Controller) snap() {
	if math.Abs(c.velocity.X) <= c.epsilon || math.IsNaN(c.velocity.X) {
		c.velocity.X = 0
	}
	if math.Abs(c.velocity.Y) <= c.epsilon || math.IsNaN(c.velocity.Y) {
		c.velocity.Y = 0
	}
	if math.Abs(c.velocity.Zoom) <= c.epsilon || math.IsNaN(c.velocity.Zoom) {
		c.velocity.Zoom = 0
	}
}

// TicksToIdle is the most ticks a velocity of magnitude v0 can coast for
// before it is snapped to zero.
func TicksToIdle(v0, friction, epsilon float64) int {
	v0 = math.Abs(v0)
	if v0 <= epsilon {
		return 0
	}
	return int(math.Ceil(math.Log(epsilon/v0) / math.Log(friction)))
}
