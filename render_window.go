package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/remote"
	"github.com/stewi1014/glmandel/session"
	"github.com/stewi1014/glmandel/snapshot"
)

// idleWait bounds how long an idle window sleeps, so posts from the remote
// and the shader watcher are picked up.
const idleWait = 0.1

func glfwMain(ctx context.Context, opts *options) error {
	runtime.LockOSThread()

	cfg, s, err := opts.session()
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	w, err := NewGLFWWindow(s, opts.debug)
	if err != nil {
		return err
	}
	defer w.Destroy()

	ctx, quit := context.WithCancelCause(ctx)
	defer quit(nil)
	w.remote = serve(ctx, quit, cfg, s)
	w.resize(w.GetFramebufferSize())

	w.run(ctx)

	if err := context.Cause(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// GLFWWindow is a single window that draws the session and takes mouse and
// keyboard input, for when GTK is not wanted.
type GLFWWindow struct {
	*glfw.Window
	renderer *gpu.Renderer
	remote   *remote.Server

	session        *session.Session
	uniforms       programs.Uniforms
	sourcesVersion int
	title          string

	dragging bool
	dragPos  mgl64.Vec2
}

func NewGLFWWindow(s *session.Session, debug bool) (*GLFWWindow, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	width, height := s.View().Size()
	window, err := glfw.CreateWindow(
		width,
		height,
		"glmandel",
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &GLFWWindow{
		Window:  window,
		session: s,
	}

	w.MakeContextCurrent()
	glfw.SwapInterval(1)
	if err := gpu.Init(debug); err != nil {
		window.Destroy()
		return nil, err
	}

	w.renderer = gpu.New()
	w.sourcesVersion = s.SourcesVersion()
	if err := w.renderer.Load(s.Sources()); err != nil {
		w.renderer.Delete()
		window.Destroy()
		return nil, err
	}

	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resize(width, height)
	})
	w.SetRefreshCallback(func(_ *glfw.Window) {
		w.draw()
	})
	w.SetScrollCallback(w.scroll)
	w.SetMouseButtonCallback(w.button)
	w.SetCursorPosCallback(w.cursor)
	w.SetKeyCallback(w.key)
	w.SetCursor(glfw.CreateStandardCursor(glfw.HandCursor))

	return w, nil
}

func (w *GLFWWindow) Destroy() {
	w.renderer.Delete()
	w.Window.Destroy()
}

func (w *GLFWWindow) run(ctx context.Context) {
	for !w.ShouldClose() && ctx.Err() == nil {
		w.uniforms = w.session.Frame()

		if v := w.session.SourcesVersion(); v != w.sourcesVersion {
			w.sourcesVersion = v
			if err := w.renderer.Load(w.session.Sources()); err != nil {
				log.Println(err)
			} else {
				log.Println("shaders reloaded")
			}
		}

		if w.session.Dirty() {
			w.draw()
			w.setTitle()
		}

		if w.session.Idle() {
			glfw.WaitEventsTimeout(idleWait)
		} else {
			glfw.PollEvents()
		}
	}
}

func (w *GLFWWindow) draw() {
	w.renderer.Draw(&w.uniforms)
	w.SwapBuffers()
}

func (w *GLFWWindow) setTitle() {
	title := "glmandel  " + w.session.Fields().Summary()
	if title != w.title {
		w.title = title
		w.SetTitle(title)
	}
}

func (w *GLFWWindow) resize(width, height int) {
	if err := w.session.Resize(width, height); err != nil {
		log.Println(err)
		return
	}
	w.renderer.Viewport(width, height)
	if w.remote != nil {
		w.remote.SetSurface(width, height)
	}
}

// pixelScale converts cursor positions, which are in screen coordinates, to
// framebuffer pixels.
func (w *GLFWWindow) pixelScale() float64 {
	fw, _ := w.GetFramebufferSize()
	ww, _ := w.GetSize()
	if ww == 0 {
		return 1
	}
	return float64(fw) / float64(ww)
}

func (w *GLFWWindow) handle(ev gesture.Event) {
	if err := w.session.Handle(ev); err != nil {
		log.Println(err)
	}
}

func (w *GLFWWindow) scroll(_ *glfw.Window, xoff, yoff float64) {
	// wheel deltas are negative upwards, the other way to glfw
	if yoff != 0 {
		w.handle(&gesture.WheelEvent{DeltaY: -yoff})
	}
}

func (w *GLFWWindow) button(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	switch action {
	case glfw.Press:
		w.dragging = true
		x, y := w.GetCursorPos()
		w.dragPos = mgl64.Vec2{x, y}
	case glfw.Release:
		w.dragging = false
	}
}

func (w *GLFWWindow) cursor(_ *glfw.Window, x, y float64) {
	if !w.dragging {
		return
	}

	pos := mgl64.Vec2{x, y}
	d := pos.Sub(w.dragPos).Mul(w.pixelScale())
	w.dragPos = pos
	w.handle(&gesture.DragEvent{DX: d.X(), DY: d.Y(), Buttons: gesture.ButtonPrimary})
}

// key handles the keyboard: number keys jump to presets in order, c cycles
// colour schemes, brackets change the iteration count and s saves what is on
// screen.
func (w *GLFWWindow) key(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}

	switch {
	case key >= glfw.Key1 && key <= glfw.Key9:
		w.jumpTo(int(key - glfw.Key1))
	case key == glfw.Key0:
		w.jumpTo(9)
	case key == glfw.KeyC:
		w.session.SetColorMode((w.session.ColorMode() + 1) % len(programs.Schemes))
		log.Println("colours", w.session.ColorScheme())
	case key == glfw.KeyRightBracket:
		log.Println(w.session.SetMaxIterations(w.session.MaxIterations()*2), "iterations")
	case key == glfw.KeyLeftBracket:
		log.Println(w.session.SetMaxIterations(w.session.MaxIterations()/2), "iterations")
	case key == glfw.KeyS && action == glfw.Press:
		w.screenshot()
	case key == glfw.KeyEscape:
		w.SetShouldClose(true)
	}
}

func (w *GLFWWindow) jumpTo(i int) {
	names := w.session.Presets().Names()
	if i >= len(names) {
		return
	}
	w.handle(&gesture.PresetEvent{Name: names[i]})
}

func (w *GLFWWindow) screenshot() {
	w.renderer.Draw(&w.uniforms)
	img := w.renderer.ReadPixels()

	path := fmt.Sprintf("glmandel-%v.png", time.Now().Format("20060102-150405"))
	if err := snapshot.Save(path, img, snapshot.Caption(w.session.View())); err != nil {
		log.Println(err)
		return
	}
	log.Printf("saved %v", path)
}
