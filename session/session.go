// Package session ties one view, its momentum and its input together, and
// produces the uniforms for each frame.
package session

import (
	"fmt"
	"log"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/momentum"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/viewport"
)

// Surface size used until the frontend reports its own.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

const eventQueue = 64

// Session is the state of a single viewer. Only Post and PostSources may be
// called from other goroutines; everything else belongs to the frontend's
// loop.
type Session struct {
	view       *viewport.State
	momentum   *momentum.Controller
	translator *gesture.Translator
	fields     gesture.Fields

	program        programs.Program
	sourcesVersion int
	uniforms       programs.Uniforms

	events  chan gesture.Event
	sources chan programs.Sources

	dirty   bool
	changed bool
}

// New builds a session from cfg drawing with sources.
func New(cfg *config.Config, sources programs.Sources) (*Session, error) {
	if sources.Vertex == "" || sources.Fragment == "" {
		return nil, programs.ErrShaderMissing
	}

	view, err := viewport.New(
		DefaultWidth, DefaultHeight,
		viewport.WithBaseHeight(cfg.View.BaseHeight),
		viewport.WithStretch(cfg.View.Stretch),
	)
	if err != nil {
		return nil, err
	}
	if err := view.SetCenterAndZoom(cfg.View.Real, cfg.View.Imaginary, cfg.View.Zoom); err != nil {
		return nil, fmt.Errorf("starting view: %w", err)
	}

	m := momentum.New(cfg.Momentum.Friction, cfg.Momentum.Epsilon)
	s := &Session{
		view:       view,
		momentum:   m,
		translator: gesture.NewTranslator(view, m, cfg.Momentum.Constants, cfg.AllPresets()),
		program:    programs.Mandelbrot(sources),
		events:     make(chan gesture.Event, eventQueue),
		sources:    make(chan programs.Sources, 1),
		dirty:      true,
	}

	s.uniforms.DefaultValues()
	s.SetColorScheme(cfg.Render.ColorScheme)
	s.SetMaxIterations(cfg.Render.MaxIterations)
	s.fields.Sync(view)
	s.uniforms.SetBounds(view)
	return s, nil
}

func (s *Session) View() *viewport.State           { return s.view }
func (s *Session) Momentum() *momentum.Controller  { return s.momentum }
func (s *Session) Translator() *gesture.Translator { return s.translator }
func (s *Session) Fields() *gesture.Fields         { return &s.fields }
func (s *Session) Program() *programs.Program      { return &s.program }
func (s *Session) Uniforms() programs.Uniforms     { return s.uniforms }
func (s *Session) Presets() gesture.Presets        { return s.translator.Presets() }
func (s *Session) Sources() programs.Sources       { return s.program.Sources }
func (s *Session) ColorMode() int                  { return int(s.uniforms.ColorMode) }
func (s *Session) MaxIterations() int              { return int(s.uniforms.MaxIterations) }
func (s *Session) ColorScheme() string             { return programs.Schemes[s.uniforms.ColorMode].Name }
func (s *Session) SourcesVersion() int             { return s.sourcesVersion }
func (s *Session) SetOverSettings(over bool)       { s.translator.SetOverSettings(over) }

// Frame applies posted events and one tick of momentum, then returns the
// uniforms to draw with.
func (s *Session) Frame() programs.Uniforms {
	s.drain()

	if s.momentum.Tick(s.view) {
		s.dirty = true
	}
	if s.fields.Sync(s.view) {
		s.dirty = true
	}

	s.uniforms.SetBounds(s.view)
	s.changed, s.dirty = s.dirty, false
	return s.uniforms
}

// Dirty reports whether the last Frame differs from the one before it.
func (s *Session) Dirty() bool {
	return s.changed
}

// Idle reports whether nothing will change until new input arrives.
func (s *Session) Idle() bool {
	return !s.dirty && s.momentum.Idle() && len(s.events) == 0 && len(s.sources) == 0
}

func (s *Session) drain() {
	for {
		select {
		case ev := <-s.events:
			if err := s.Handle(ev); err != nil {
				log.Printf("posted %T: %v", ev, err)
			}
		case src := <-s.sources:
			s.SetSources(src)
		default:
			return
		}
	}
}

// Handle applies ev immediately.
func (s *Session) Handle(ev gesture.Event) error {
	if err := s.translator.Handle(ev); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Post queues ev for the next Frame. It never blocks, and drops ev if the
// queue is full.
func (s *Session) Post(ev gesture.Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		log.Printf("event queue full, dropping %T", ev)
		return false
	}
}

// PostSources queues new shader sources for the next Frame, replacing any
// that have not been picked up yet.
func (s *Session) PostSources(src programs.Sources) {
	for {
		select {
		case s.sources <- src:
			return
		default:
		}
		select {
		case <-s.sources:
		default:
		}
	}
}

func (s *Session) SetSources(src programs.Sources) {
	s.program.Sources = src
	s.sourcesVersion++
	s.dirty = true
}

// Resize tells the session the surface is now width x height pixels.
func (s *Session) Resize(width, height int) error {
	if err := s.view.Resize(width, height); err != nil {
		return err
	}
	s.uniforms.SetBounds(s.view)
	s.dirty = true
	return nil
}

// Commit applies the text of the coordinate fields.
func (s *Session) Commit() error {
	if err := s.fields.Commit(s.translator); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *Session) JumpTo(name string) error {
	return s.Handle(&gesture.PresetEvent{Name: name})
}

// Locate places the view for a still picture. It jumps to preset, if named,
// without the settling drift, then applies whichever of at is not empty over
// that location. at is indexed by gesture.Field.
func (s *Session) Locate(preset string, at [3]string) error {
	if preset != "" {
		if err := s.JumpTo(preset); err != nil {
			return err
		}
		s.momentum.Reset()
		s.fields.Sync(s.view)
	}
	if at == [3]string{} {
		return nil
	}

	for i, v := range at {
		if v != "" {
			s.fields.Set(gesture.Field(i), v)
		}
	}
	return s.Commit()
}

func (s *Session) SetColorMode(mode int) {
	s.uniforms.SetColorMode(mode)
	s.dirty = true
}

// SetColorScheme selects a scheme by name. Unknown names select the first.
func (s *Session) SetColorScheme(name string) {
	s.SetColorMode(programs.SchemeIndex(name))
}

// SetMaxIterations clamps n to the supported range and returns what was set.
func (s *Session) SetMaxIterations(n int) int {
	n = programs.ClampIterations(n)
	s.uniforms.MaxIterations = float32(n)
	s.dirty = true
	return n
}
