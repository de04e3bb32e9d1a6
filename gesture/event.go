package gesture

import (
	"encoding/gob"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

func init() {
	gob.Register(&WheelEvent{})
	gob.Register(&DragEvent{})
	gob.Register(&TouchEvent{})
	gob.Register(&CommitEvent{})
	gob.Register(&PresetEvent{})
	gob.Register(&HoverEvent{})
}

// Event is raw input from a frontend or a remote, in surface pixels.
type Event interface {
	event()
}

type WheelEvent struct {
	DeltaY float64
}

// DragEvent is pointer motion since the last event with the buttons held.
type DragEvent struct {
	DX, DY  float64
	Buttons int
}

type TouchPhase int

const (
	TouchStart TouchPhase = iota
	TouchMove
	TouchEnd
)

func (p TouchPhase) String() string {
	switch p {
	case TouchStart:
		return "start"
	case TouchMove:
		return "move"
	case TouchEnd:
		return "end"
	}
	return fmt.Sprintf("TouchPhase(%d)", int(p))
}

// TouchEvent carries the touches that are down after the event.
type TouchEvent struct {
	Phase  TouchPhase
	Points []mgl64.Vec2
}

// CommitEvent is the text of the three coordinate fields when one of them is
// committed.
type CommitEvent struct {
	Real, Imaginary, Zoom string
}

type PresetEvent struct {
	Name string
}

// HoverEvent reports the pointer entering or leaving the settings panel.
type HoverEvent struct {
	OverSettings bool
}

func (*WheelEvent) event()  {}
func (*DragEvent) event()   {}
func (*TouchEvent) event()  {}
func (*CommitEvent) event() {}
func (*PresetEvent) event() {}
func (*HoverEvent) event()  {}
