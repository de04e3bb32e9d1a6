// Package gesture turns pointer, wheel, touch and form input into changes to
// a viewport, either directly or as a momentum impulse.
package gesture

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/glmandel/momentum"
	"github.com/stewi1014/glmandel/viewport"
)

var ErrInvalidInput = errors.New("please enter valid numbers for all fields")

// ButtonPrimary is the buttons mask of a drag with only the primary button held.
const ButtonPrimary = 1

// Range factors applied per gesture step. Below 1 zooms in.
const (
	wheelIn  = 0.95
	wheelOut = 1.05
	pinchIn  = 0.99
	pinchOut = 1.01
)

// Constants scale raw gesture deltas into velocities.
type Constants struct {
	ZoomMomentum       float64 `yaml:"zoom"`
	MoveMomentum       float64 `yaml:"move"`
	MobileZoomMomentum float64 `yaml:"mobileZoom"`
	MobileMoveMomentum float64 `yaml:"mobileMove"`

	// PresetSettle is the zoom velocity left behind after jumping to a preset.
	PresetSettle float64 `yaml:"presetSettle"`
}

func DefaultConstants() Constants {
	return Constants{
		ZoomMomentum:       0.6,
		MoveMomentum:       0.1,
		MobileZoomMomentum: 3.5,
		MobileMoveMomentum: 0.2,
		PresetSettle:       0.01,
	}
}

type touchMode int

const (
	touchNone touchMode = iota
	touchPanning
	touchPinching
)

// Translator applies input to a view and its momentum.
// It is not safe for concurrent use.
type Translator struct {
	view     *viewport.State
	momentum *momentum.Controller
	consts   Constants
	presets  Presets

	overSettings bool

	touch     touchMode
	lastTouch mgl64.Vec2
	lastPinch float64
}

func NewTranslator(
	view *viewport.State,
	momentum *momentum.Controller,
	consts Constants,
	presets Presets,
) *Translator {
	return &Translator{
		view:     view,
		momentum: momentum,
		consts:   consts,
		presets:  presets,
	}
}

func (t *Translator) Presets() Presets       { return t.presets }
func (t *Translator) Constants() Constants   { return t.consts }
func (t *Translator) OverSettings() bool     { return t.overSettings }
func (t *Translator) SetOverSettings(b bool) { t.overSettings = b }

// Handle dispatches ev to the matching method.
func (t *Translator) Handle(ev Event) error {
	switch ev := ev.(type) {
	case *WheelEvent:
		t.Wheel(ev.DeltaY)
	case *DragEvent:
		t.Drag(ev.DX, ev.DY, ev.Buttons)
	case *TouchEvent:
		switch ev.Phase {
		case TouchStart:
			t.TouchStart(ev.Points)
		case TouchMove:
			t.TouchMove(ev.Points)
		case TouchEnd:
			t.TouchEnd(ev.Points)
		default:
			return fmt.Errorf("unknown touch phase %v", ev.Phase)
		}
	case *CommitEvent:
		return t.Commit(ev.Real, ev.Imaginary, ev.Zoom)
	case *PresetEvent:
		return t.JumpTo(ev.Name)
	case *HoverEvent:
		t.SetOverSettings(ev.OverSettings)
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
	return nil
}

// Wheel sets a zoom impulse, in for a negative delta and out otherwise.
func (t *Translator) Wheel(deltaY float64) bool {
	if t.overSettings {
		return false
	}

	factor := wheelOut
	if deltaY < 0 {
		factor = wheelIn
	}
	t.momentum.SetZoom((factor - 1) * t.consts.ZoomMomentum)
	return true
}

// Drag sets a pan impulse from pointer movement in pixels. Only primary
// button drags pan.
func (t *Translator) Drag(dx, dy float64, buttons int) bool {
	if t.overSettings || buttons != ButtonPrimary {
		return false
	}

	t.pan(dx, dy, t.consts.MoveMomentum)
	return true
}

func (t *Translator) pan(dx, dy, scale float64) {
	width, height := t.view.Size()
	b := t.view.Bounds()
	zoom := t.view.ZoomLevel()

	t.momentum.SetPan(
		dx/float64(width)*b.Width()*scale*zoom,
		dy/float64(height)*b.Height()*scale*zoom,
	)
}

// TouchStart arms panning for one touch or pinching for two.
func (t *Translator) TouchStart(points []mgl64.Vec2) {
	switch len(points) {
	case 1:
		t.touch = touchPanning
		t.lastTouch = points[0]
	case 2:
		t.touch = touchPinching
		t.lastPinch = points[0].Sub(points[1]).Len()
	}
}

// TouchMove turns the movement of the armed gesture into an impulse.
func (t *Translator) TouchMove(points []mgl64.Vec2) bool {
	if t.overSettings {
		return false
	}

	switch {
	case t.touch == touchPanning && len(points) == 1:
		d := points[0].Sub(t.lastTouch)
		t.lastTouch = points[0]
		t.pan(d[0], d[1], t.consts.MobileMoveMomentum)
		return true

	case t.touch == touchPinching && len(points) == 2:
		distance := points[0].Sub(points[1]).Len()
		delta := distance - t.lastPinch
		t.lastPinch = distance
		if delta == 0 {
			return false
		}

		factor := pinchOut
		if delta > 0 {
			factor = pinchIn
		}
		t.momentum.SetZoom((factor - 1) * t.consts.MobileZoomMomentum)
		return true
	}
	return false
}

// TouchEnd takes the touches still down. With one left it goes back to
// panning from where that touch is.
func (t *Translator) TouchEnd(remaining []mgl64.Vec2) {
	switch len(remaining) {
	case 0:
		t.touch = touchNone
		t.lastPinch = 0
	case 1:
		t.touch = touchPanning
		t.lastTouch = remaining[0]
	}
}

// Commit moves the view to the typed coordinates and stops any momentum.
// Nothing changes unless all three fields parse.
func (t *Translator) Commit(real, imaginary, zoom string) error {
	r, i, z, err := ParseLocation(real, imaginary, zoom)
	if err != nil {
		return err
	}

	if err := t.view.SetCenterAndZoom(r, i, z); err != nil {
		return err
	}
	t.momentum.Reset()
	return nil
}

// ParseLocation reads typed coordinates. Every error wraps ErrInvalidInput.
func ParseLocation(real, imaginary, zoom string) (r, i, z float64, err error) {
	if r, err = parseField("real", real); err != nil {
		return
	}
	if i, err = parseField("imaginary", imaginary); err != nil {
		return
	}
	z, err = parseField("zoom", zoom)
	return
}

func parseField(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is %q", ErrInvalidInput, name, value)
	}
	return f, nil
}

// JumpTo moves the view to a preset and leaves a small zoom velocity so the
// view settles into place.
func (t *Translator) JumpTo(name string) error {
	p, err := t.presets.Lookup(name)
	if err != nil {
		return err
	}

	if err := t.view.SetCenterAndZoom(p.Real, p.Imaginary, p.Zoom); err != nil {
		return fmt.Errorf("preset %v: %w", p.Name, err)
	}
	t.momentum.SetImpulse(momentum.Velocity{Zoom: t.consts.PresetSettle})
	return nil
}
