package session

import (
	"errors"
	"math"
	"testing"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/programs"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(config.Default(), programs.DefaultSources())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew_NeedsSources(t *testing.T) {
	if _, err := New(config.Default(), programs.Sources{}); !errors.Is(err, programs.ErrShaderMissing) {
		t.Errorf("err = %v, want %v", err, programs.ErrShaderMissing)
	}
}

func TestNew_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.View.Real, cfg.View.Zoom = 0.25, 8
	cfg.Render.ColorScheme = "gold"
	cfg.Render.MaxIterations = 500

	s, err := New(cfg, programs.DefaultSources())
	if err != nil {
		t.Fatal(err)
	}

	u := s.Frame()
	if c := s.View().Center(); math.Abs(c[0]-0.25) > 1e-12 {
		t.Errorf("center = %v", c)
	}
	if u.ColorMode != 4 || s.ColorScheme() != "gold" {
		t.Errorf("colour mode = %v (%v)", u.ColorMode, s.ColorScheme())
	}
	if u.MaxIterations != 500 {
		t.Errorf("iterations = %v", u.MaxIterations)
	}
	if got := s.Fields().Value(gesture.FieldZoom); got != "8.00" {
		t.Errorf("zoom field = %q", got)
	}
}

func TestFrame_Uniforms(t *testing.T) {
	s := newSession(t)
	if err := s.Resize(1000, 500); err != nil {
		t.Fatal(err)
	}

	u := s.Frame()
	if u.ViewportDimensions[0] != 1000 || u.ViewportDimensions[1] != 500 {
		t.Errorf("dimensions = %v", u.ViewportDimensions)
	}
	if u.Bounds() != s.View().Bounds() {
		t.Errorf("bounds = %v, want %v", u.Bounds(), s.View().Bounds())
	}
	if w, h := u.MaxR-u.MinR, u.MaxI-u.MinI; math.Abs(w/h-2) > 1e-12 {
		t.Errorf("aspect = %v, want 2", w/h)
	}
}

func TestFrame_Dirty(t *testing.T) {
	s := newSession(t)

	s.Frame()
	if !s.Dirty() {
		t.Error("first frame is not dirty")
	}
	s.Frame()
	if s.Dirty() || !s.Idle() {
		t.Error("second frame without input is dirty")
	}

	s.Post(&gesture.WheelEvent{DeltaY: -1})
	if s.Idle() {
		t.Error("idle with a posted event")
	}
	before := s.View().Bounds().Height()
	s.Frame()
	if !s.Dirty() {
		t.Error("frame after wheel is not dirty")
	}
	if after := s.View().Bounds().Height(); after >= before {
		t.Errorf("height = %v, want less than %v", after, before)
	}

	for i := 0; i < 1000 && !s.Idle(); i++ {
		s.Frame()
	}
	if !s.Idle() {
		t.Error("momentum never settled")
	}
}

func TestFrame_OneStepPerCall(t *testing.T) {
	single := newSession(t)
	if err := single.Handle(&gesture.WheelEvent{DeltaY: -1}); err != nil {
		t.Fatal(err)
	}
	impulse := single.Momentum().Velocity().Zoom

	s := newSession(t)
	for i := 0; i < 5; i++ {
		s.Post(&gesture.WheelEvent{DeltaY: -1})
	}
	s.Frame()

	want := impulse * s.Momentum().Friction()
	if got := s.Momentum().Velocity().Zoom; math.Abs(got-want) > 1e-15 {
		t.Errorf("zoom velocity = %v, want %v after one step", got, want)
	}
}

func TestPost_DropsWhenFull(t *testing.T) {
	s := newSession(t)
	for i := 0; i < eventQueue; i++ {
		if !s.Post(&gesture.WheelEvent{DeltaY: 1}) {
			t.Fatalf("event %v dropped", i)
		}
	}
	if s.Post(&gesture.WheelEvent{DeltaY: 1}) {
		t.Error("post to a full queue succeeded")
	}

	s.Frame()
	if !s.Post(&gesture.WheelEvent{DeltaY: 1}) {
		t.Error("queue not drained by Frame")
	}
}

func TestPost_InvalidCommitIsDropped(t *testing.T) {
	s := newSession(t)
	s.Frame()
	before := s.View().Bounds()

	s.Post(&gesture.CommitEvent{Real: "x", Imaginary: "0", Zoom: "1"})
	s.Frame()
	if s.View().Bounds() != before {
		t.Error("invalid posted commit moved the view")
	}
}

func TestPostSources(t *testing.T) {
	s := newSession(t)
	version := s.SourcesVersion()

	s.PostSources(programs.Sources{Vertex: "a", Fragment: "1"})
	s.PostSources(programs.Sources{Vertex: "b", Fragment: "2"})
	s.Frame()

	if got := s.Sources(); got.Vertex != "b" {
		t.Errorf("sources = %+v, want the latest", got)
	}
	if s.SourcesVersion() != version+1 {
		t.Errorf("version = %v, want %v", s.SourcesVersion(), version+1)
	}
}

func TestCommit(t *testing.T) {
	s := newSession(t)
	s.Frame()

	f := s.Fields()
	f.SetEditing(gesture.FieldReal, true)
	f.Set(gesture.FieldReal, "-1.25")
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	f.SetEditing(gesture.FieldReal, false)
	s.Frame()
	if got := f.Value(gesture.FieldReal); got != "-1.2500000000" {
		t.Errorf("real field = %q", got)
	}

	f.Set(gesture.FieldZoom, "big")
	if err := s.Commit(); !errors.Is(err, gesture.ErrInvalidInput) {
		t.Errorf("err = %v, want %v", err, gesture.ErrInvalidInput)
	}
}

func TestSettings(t *testing.T) {
	s := newSession(t)

	if n := s.SetMaxIterations(0); n != 1 {
		t.Errorf("iterations = %v, want 1", n)
	}
	if n := s.SetMaxIterations(1 << 20); n != programs.MaxIterations || s.MaxIterations() != programs.MaxIterations {
		t.Errorf("iterations = %v, want %v", n, programs.MaxIterations)
	}

	s.SetColorScheme("pastel")
	if s.ColorMode() != 6 {
		t.Errorf("mode = %v, want 6", s.ColorMode())
	}
	s.SetColorScheme("mauve")
	if s.ColorMode() != 0 {
		t.Errorf("mode = %v, want 0", s.ColorMode())
	}
}

func TestJumpTo(t *testing.T) {
	s := newSession(t)
	if err := s.JumpTo("elephant-valley"); err != nil {
		t.Fatal(err)
	}
	if err := s.JumpTo("atlantis"); !errors.Is(err, gesture.ErrUnknownPreset) {
		t.Errorf("err = %v, want %v", err, gesture.ErrUnknownPreset)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name            string
		preset          string
		at              [3]string
		real, imaginary float64
		zoom            float64
	}{
		{"start", "", [3]string{}, -0.5, 0, 1},
		{"preset", "seahorse-valley", [3]string{}, -0.737532251, 0.1665403958, 150.89},
		{"preset zoom", "seahorse-valley", [3]string{gesture.FieldZoom: "500"}, -0.737532251, 0.1665403958, 500},
		{"preset real", "seahorse-valley", [3]string{gesture.FieldReal: "-0.7"}, -0.7, 0.1665403958, 150.89},
		{"location", "", [3]string{"0.25", "-0.5", "4"}, 0.25, -0.5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			if err := s.Resize(1920, 1080); err != nil {
				t.Fatal(err)
			}
			if err := s.Locate(tt.preset, tt.at); err != nil {
				t.Fatal(err)
			}
			s.Frame()

			c := s.View().Center()
			if math.Abs(c[0]-tt.real) > 1e-9 || math.Abs(c[1]-tt.imaginary) > 1e-9 {
				t.Errorf("centre = %v, want %v%+vi", c, tt.real, tt.imaginary)
			}
			if z := s.View().ZoomLevel(); math.Abs(z-tt.zoom) > 1e-6*tt.zoom {
				t.Errorf("zoom = %v, want %v", z, tt.zoom)
			}
			if !s.Momentum().Idle() {
				t.Errorf("velocity = %v, want still", s.Momentum().Velocity())
			}
		})
	}
}

func TestLocate_Errors(t *testing.T) {
	s := newSession(t)
	if err := s.Locate("atlantis", [3]string{}); !errors.Is(err, gesture.ErrUnknownPreset) {
		t.Errorf("err = %v, want %v", err, gesture.ErrUnknownPreset)
	}
	if err := s.Locate("", [3]string{gesture.FieldZoom: "lots"}); !errors.Is(err, gesture.ErrInvalidInput) {
		t.Errorf("err = %v, want %v", err, gesture.ErrInvalidInput)
	}
}
