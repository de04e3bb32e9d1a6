// Package tui is a terminal frontend that draws the fractal with half block
// characters and steers it with the mouse and keyboard.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/session"
	"github.com/stewi1014/glmandel/snapshot"
)

const (
	// lines under the picture: coordinates, status and help
	barHeight = 3
	frameRate = time.Second / 30

	snapshotWidth = 1600
)

type frameMsg time.Time

type savedMsg struct {
	path string
	err  error
}

type Model struct {
	ctx     context.Context
	session *session.Session
	keys    KeyMap
	help    help.Model
	inputs  [3]textinput.Model
	focus   int

	width, height int
	picture       []string
	rendering     bool
	pending       bool

	dragging     bool
	lastX, lastY int

	preset      int
	status      string
	statusErr   bool
	snapshotDir string
}

// New returns a Model driving s. Snapshots are written to snapshotDir.
func New(ctx context.Context, s *session.Session, snapshotDir string) Model {
	m := Model{
		ctx:         ctx,
		session:     s,
		keys:        DefaultKeyMap,
		help:        help.New(),
		focus:       -1,
		pending:     true,
		preset:      -1,
		snapshotDir: snapshotDir,
	}

	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 32
		in.Width = 16
		in.SetValue(s.Fields().Value(gesture.Field(i)))
		m.inputs[i] = in
	}
	return m
}

// Run starts a full screen program for s and blocks until it exits.
func Run(ctx context.Context, s *session.Session, snapshotDir string) error {
	p := tea.NewProgram(
		New(ctx, s, snapshotDir),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

func frame() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frame(), textinput.Blink)
}

func (m Model) pictureRows() int {
	return max(m.height-barHeight, 1)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if err := m.session.Resize(max(m.width, 1), m.pictureRows()*2); err != nil {
			m.setError(err)
		}
		m.pending = true
		return m, nil

	case frameMsg:
		m.session.Frame()
		m.syncInputs()
		if m.session.Dirty() {
			m.pending = true
		}
		return m, tea.Batch(frame(), m.startRender())

	case renderedMsg:
		m.rendering = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.picture = msg.lines
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("saved " + msg.path)
		}
		return m, nil

	case tea.MouseMsg:
		return m.mouse(msg), nil

	case tea.KeyMsg:
		if m.focus >= 0 {
			return m.editKey(msg)
		}
		return m.browseKey(msg)
	}
	return m, nil
}

func (m *Model) startRender() tea.Cmd {
	if !m.pending || m.rendering || m.width <= 0 {
		return nil
	}
	m.pending = false
	m.rendering = true

	width, height := m.session.View().Size()
	return render(m.ctx, *m.session.Program(), m.session.Uniforms(), width, height)
}

func (m *Model) syncInputs() {
	for i := range m.inputs {
		if i == m.focus {
			continue
		}
		m.inputs[i].SetValue(m.session.Fields().Value(gesture.Field(i)))
	}
}

func (m Model) mouse(msg tea.MouseMsg) Model {
	over := msg.Y >= m.pictureRows()
	if over != m.session.Translator().OverSettings() {
		m.session.Handle(&gesture.HoverEvent{OverSettings: over})
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.session.Handle(&gesture.WheelEvent{DeltaY: -1})
		case tea.MouseButtonWheelDown:
			m.session.Handle(&gesture.WheelEvent{DeltaY: 1})
		case tea.MouseButtonLeft:
			m.dragging = !over
			m.lastX, m.lastY = msg.X, msg.Y
		}

	case tea.MouseActionMotion:
		if !m.dragging {
			break
		}
		// a cell is one pixel wide and two tall
		m.session.Handle(&gesture.DragEvent{
			DX:      float64(msg.X - m.lastX),
			DY:      float64(msg.Y-m.lastY) * 2,
			Buttons: gesture.ButtonPrimary,
		})
		m.lastX, m.lastY = msg.X, msg.Y

	case tea.MouseActionRelease:
		m.dragging = false
	}
	return m
}

func (m Model) browseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	width, height := m.session.View().Size()
	// the hover mask is for the pointer, keys always steer
	pan := func(dx, dy float64) {
		m.session.SetOverSettings(false)
		m.session.Handle(&gesture.DragEvent{DX: dx, DY: dy, Buttons: gesture.ButtonPrimary})
	}
	zoom := func(deltaY float64) {
		m.session.SetOverSettings(false)
		m.session.Handle(&gesture.WheelEvent{DeltaY: deltaY})
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		pan(float64(width)/10, 0)
	case key.Matches(msg, m.keys.Right):
		pan(-float64(width)/10, 0)
	case key.Matches(msg, m.keys.Up):
		pan(0, float64(height)/10)
	case key.Matches(msg, m.keys.Down):
		pan(0, -float64(height)/10)
	case key.Matches(msg, m.keys.ZoomIn):
		zoom(-1)
	case key.Matches(msg, m.keys.ZoomOut):
		zoom(1)
	case key.Matches(msg, m.keys.Fields):
		return m, m.setFocus(0)
	case key.Matches(msg, m.keys.Scheme):
		m.session.SetColorMode((m.session.ColorMode() + 1) % len(programs.Schemes))
		m.setStatus("colours " + m.session.ColorScheme())
	case key.Matches(msg, m.keys.MoreIter):
		m.setStatus(fmt.Sprintf("%v iterations", m.session.SetMaxIterations(m.session.MaxIterations()*2)))
	case key.Matches(msg, m.keys.LessIter):
		m.setStatus(fmt.Sprintf("%v iterations", m.session.SetMaxIterations(m.session.MaxIterations()/2)))
	case key.Matches(msg, m.keys.Preset):
		names := m.session.Presets().Names()
		m.preset = (m.preset + 1) % len(names)
		if err := m.session.JumpTo(names[m.preset]); err != nil {
			m.setError(err)
		} else {
			m.setStatus(names[m.preset])
		}
	case key.Matches(msg, m.keys.Copy):
		if err := m.session.Fields().Clipboard(); err != nil {
			m.setError(err)
		} else {
			m.setStatus("copied " + m.session.Fields().Summary())
		}
	case key.Matches(msg, m.keys.Snapshot):
		m.setStatus("saving...")
		return m, m.save()
	}
	return m, nil
}

func (m Model) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Fields):
		return m, m.setFocus((m.focus + 1) % len(m.inputs))
	case key.Matches(msg, m.keys.Back):
		return m, m.setFocus(-1)
	case key.Matches(msg, m.keys.Commit):
		if err := m.session.Commit(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("")
		return m, m.setFocus(-1)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.session.Fields().Set(gesture.Field(m.focus), m.inputs[m.focus].Value())
	return m, cmd
}

// setFocus moves the cursor to input i, or out of the inputs if i is -1.
// A focused input is not overwritten as the view moves.
func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i

	var cmd tea.Cmd
	for j := range m.inputs {
		editing := j == i
		m.session.Fields().SetEditing(gesture.Field(j), editing)
		if editing {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.syncInputs()
	return cmd
}

func (m Model) save() tea.Cmd {
	ctx := m.ctx
	program := *m.session.Program()
	u := m.session.Uniforms()
	caption := snapshot.Caption(m.session.View())
	width, height := m.session.View().Size()
	height = snapshotWidth * height / width
	path := filepath.Join(m.snapshotDir, fmt.Sprintf("glmandel-%v.png", time.Now().Format("20060102-150405")))

	return func() tea.Msg {
		img, err := snapshot.Render(ctx, &program, u, snapshotWidth, height, 0.5)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path, err: snapshot.Save(path, img, caption)}
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m Model) View() string {
	var b strings.Builder

	// full help takes lines from the bottom of the picture
	helpView := m.help.View(m.keys)
	rows := m.pictureRows() - strings.Count(helpView, "\n")
	for i := 0; i < rows; i++ {
		if i < len(m.picture) {
			b.WriteString(m.picture[i])
		}
		b.WriteByte('\n')
	}

	labels := [...]string{"re ", "  im ", "  zoom "}
	var fields strings.Builder
	for i := range m.inputs {
		fields.WriteString(labelStyle.Render(labels[i]))
		fields.WriteString(m.inputs[i].View())
	}
	b.WriteString(barStyle.Width(m.width).MaxHeight(1).Render(fields.String()))
	b.WriteByte('\n')

	status := m.status
	if status == "" {
		status = fmt.Sprintf("%v, %v iterations", m.session.ColorScheme(), m.session.MaxIterations())
	}
	style := statusStyle
	if m.statusErr {
		style = errorStyle
	}
	b.WriteString(style.MaxWidth(m.width).Render(status))
	b.WriteByte('\n')

	b.WriteString(helpView)
	return b.String()
}
