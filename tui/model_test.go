package tui

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/session"
)

func newModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	s, err := session.New(config.Default(), programs.DefaultSources())
	if err != nil {
		t.Fatal(err)
	}
	m := New(context.Background(), s, t.TempDir())
	return update(t, m, tea.WindowSizeMsg{Width: 40, Height: 15}), s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestResize(t *testing.T) {
	_, s := newModel(t)
	if w, h := s.View().Size(); w != 40 || h != 24 {
		t.Errorf("surface = %vx%v, want 40x24", w, h)
	}
}

func TestMouse_Wheel(t *testing.T) {
	m, s := newModel(t)
	update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})

	if got := s.Momentum().Velocity().Zoom; got >= 0 {
		t.Errorf("zoom velocity = %v, want zooming in", got)
	}
}

func TestMouse_OverBar(t *testing.T) {
	m, s := newModel(t)
	m = update(t, m, tea.MouseMsg{X: 10, Y: 13, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})

	if !s.Translator().OverSettings() {
		t.Error("pointer over the bar is not masked")
	}
	if !s.Momentum().Idle() {
		t.Errorf("velocity = %v, want idle", s.Momentum().Velocity())
	}

	update(t, m, tea.MouseMsg{X: 10, Y: 2, Action: tea.MouseActionMotion})
	if s.Translator().OverSettings() {
		t.Error("mask not cleared after leaving the bar")
	}
}

func TestMouse_Drag(t *testing.T) {
	m, s := newModel(t)
	m = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 14, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})

	if got := s.Momentum().Velocity().X; got <= 0 {
		t.Errorf("velocity x = %v, want positive", got)
	}

	s.Momentum().Reset()
	m = update(t, m, tea.MouseMsg{X: 14, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	update(t, m, tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionMotion})
	if !s.Momentum().Idle() {
		t.Error("motion after release panned")
	}
}

func TestKeys_OverBar(t *testing.T) {
	m, s := newModel(t)
	m = update(t, m, tea.MouseMsg{X: 10, Y: 13, Action: tea.MouseActionMotion})
	if !s.Translator().OverSettings() {
		t.Fatal("pointer over the bar is not masked")
	}

	m = update(t, m, runes("+"))
	if got := s.Momentum().Velocity().Zoom; got >= 0 {
		t.Errorf("zoom velocity = %v, want negative", got)
	}
	if s.Translator().OverSettings() {
		t.Error("mask still set after a key")
	}

	s.Momentum().Reset()
	update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := s.Momentum().Velocity().X; got <= 0 {
		t.Errorf("velocity x = %v, want positive", got)
	}
}

func TestFields_Edit(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !s.Fields().Editing(gesture.FieldReal) {
		t.Fatal("real field not marked as editing")
	}

	m = update(t, m, runes("x"))
	if got := s.Fields().Value(gesture.FieldReal); !strings.HasSuffix(got, "x") {
		t.Errorf("real field = %q, want the typed text", got)
	}

	before := s.View().Bounds()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.statusErr {
		t.Error("invalid commit did not report an error")
	}
	if s.View().Bounds() != before {
		t.Error("invalid commit moved the view")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if s.Fields().Editing(gesture.FieldReal) || !s.Fields().Editing(gesture.FieldImaginary) {
		t.Error("tab did not move editing to the next field")
	}

	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	for f := gesture.FieldReal; f <= gesture.FieldZoom; f++ {
		if s.Fields().Editing(f) {
			t.Errorf("%v still editing after esc", f)
		}
	}
}

func TestKeys(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, runes("c"))
	if s.ColorMode() != 1 {
		t.Errorf("colour mode = %v, want 1", s.ColorMode())
	}

	m = update(t, m, runes("["))
	if s.MaxIterations() != programs.DefaultMaxIterations/2 {
		t.Errorf("iterations = %v", s.MaxIterations())
	}

	m = update(t, m, runes("p"))
	if c := s.View().Center(); math.Abs(c[0]+0.5) > 1e-12 {
		t.Errorf("first preset centre = %v, want home", c)
	}
	m = update(t, m, runes("p"))
	if s.View().ZoomLevel() < 1000 {
		t.Errorf("second preset zoom = %v, want flower", s.View().ZoomLevel())
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestView(t *testing.T) {
	m, _ := newModel(t)
	m.picture = []string{"row"}

	lines := strings.Split(m.View(), "\n")
	if lines[0] != "row" {
		t.Errorf("first line = %q", lines[0])
	}
	if len(lines) != 15 {
		t.Errorf("%v lines, want 15", len(lines))
	}
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})

	lines := halfBlocks(img)
	if len(lines) != 2 {
		t.Fatalf("%v lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m▀") {
		t.Errorf("first cell = %q", lines[0])
	}
	for i, l := range lines {
		if n := strings.Count(l, "▀"); n != 2 {
			t.Errorf("line %v has %v cells, want 2", i, n)
		}
	}
}

func TestRender(t *testing.T) {
	m, s := newModel(t)
	w, h := s.View().Size()

	msg := render(context.Background(), *s.Program(), s.Frame(), w, h)()
	rendered, ok := msg.(renderedMsg)
	if !ok || rendered.err != nil {
		t.Fatalf("render = %#v", msg)
	}
	if len(rendered.lines) != h/2 {
		t.Errorf("%v lines, want %v", len(rendered.lines), h/2)
	}

	m = update(t, m, rendered)
	if len(m.picture) != h/2 {
		t.Error("picture not stored")
	}
}
