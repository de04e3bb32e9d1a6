package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/link"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/remote"
	"github.com/stewi1014/glmandel/session"
	"github.com/stewi1014/glmandel/snapshot"
)

// saveScale is the size of a CPU save relative to the window.
const saveScale = 2

func NewRenderWindow(
	app *gtk.Application,
	ctx context.Context,
	quit context.CancelCauseFunc,
	s *session.Session,
	srv *remote.Server,
	conn net.Conn,
	debug bool,
) *RenderWindow {
	var err error
	w := &RenderWindow{
		ctx:     ctx,
		quit:    quit,
		session: s,
		remote:  srv,
		link:    link.New(conn),
		debug:   debug,
	}

	go func() {
		defer CatchPanicToContext(quit)
		if err := w.link.Run(ctx, w.receive); err != nil {
			quit(err)
		}
	}()

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(getWindowSize())

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GLAreaNew: %w", err))
		return nil
	}

	w.gla.SetRequiredVersion(4, 0)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.SCROLL_MASK),
	)
	w.gla.Connect("resize", w.resize)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)
	w.Connect("key-press-event", w.key)

	w.Add(w.gla)
	w.ShowAll()

	// one step per frame clock tick, so a slow frame is skipped rather
	// than queued behind the next
	w.gla.AddTickCallback(w.tick)

	return w
}

func getWindowSize() (width, height int) {
	width = session.DefaultWidth
	height = session.DefaultHeight

	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return
	}

	monitor, err := display.GetPrimaryMonitor()
	if err != nil {
		return
	}

	width = int(float32(monitor.GetGeometry().GetWidth()) * .6)
	height = int(float32(monitor.GetGeometry().GetHeight()) * .6)
	return
}

// RenderWindow draws the session and owns it. Everything but the link
// goroutine runs on the GTK main loop.
type RenderWindow struct {
	*gtk.ApplicationWindow
	gla      *gtk.GLArea
	renderer *gpu.Renderer
	debug    bool

	ctx  context.Context
	quit context.CancelCauseFunc

	session        *session.Session
	uniforms       programs.Uniforms
	sourcesVersion int

	remote *remote.Server
	link   *link.Link
	status link.Status

	dragging bool
	dragPos  mgl64.Vec2
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()

	if err := gpu.Init(w.debug); err != nil {
		w.quit(err)
		return
	}

	w.renderer = gpu.New()
	w.sourcesVersion = w.session.SourcesVersion()
	if err := w.renderer.Load(w.session.Sources()); err != nil {
		w.quit(err)
		return
	}
	w.setCursor("grab")
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) {
	if w.renderer == nil {
		return
	}
	gla.AttachBuffers()
	w.renderer.Draw(&w.uniforms)
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	if w.renderer == nil {
		return
	}
	gla.MakeCurrent()
	w.renderer.Delete()
	w.renderer = nil
}

func (w *RenderWindow) tick(widget *gtk.Widget, clock *gdk.FrameClock) bool {
	return w.frame()
}

// frame steps the session and queues a redraw if anything moved. It keeps
// running until the window closes.
func (w *RenderWindow) frame() bool {
	if w.ctx.Err() != nil {
		return false
	}

	w.uniforms = w.session.Frame()

	if v := w.session.SourcesVersion(); v != w.sourcesVersion && w.renderer != nil {
		w.sourcesVersion = v
		w.gla.MakeCurrent()
		if err := w.renderer.Load(w.session.Sources()); err != nil {
			log.Println(err)
			w.notice(err)
		} else {
			log.Println("shaders reloaded")
		}
	}

	if w.session.Dirty() {
		w.gla.QueueRender()
		w.sendStatus()
	}
	return true
}

func (w *RenderWindow) sendStatus() {
	fields := w.session.Fields()
	status := link.Status{
		Real:          fields.Value(gesture.FieldReal),
		Imaginary:     fields.Value(gesture.FieldImaginary),
		Zoom:          fields.Value(gesture.FieldZoom),
		ColorScheme:   w.session.ColorScheme(),
		MaxIterations: w.session.MaxIterations(),
	}
	if status == w.status {
		return
	}
	w.status = status
	w.link.Send(&status)
}

func (w *RenderWindow) notice(err error) {
	w.link.Send(&link.Notice{Message: err.Error(), Error: true})
}

func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	if err := w.session.Resize(width, height); err != nil {
		log.Println(err)
		return
	}
	if w.renderer != nil {
		w.renderer.Viewport(width, height)
	}
	if w.remote != nil {
		w.remote.SetSurface(width, height)
	}
}

func (w *RenderWindow) setCursor(name string) {
	window, err := w.gla.GetWindow()
	if err != nil {
		return
	}

	display, err := w.gla.GetDisplay()
	if err != nil {
		return
	}
	cursor, err := gdk.CursorNewFromName(display, name)
	if err != nil {
		return
	}
	window.SetCursor(cursor)
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) {
	button := gdk.EventButtonNewFromEvent(event)
	if button.Button() != gdk.BUTTON_PRIMARY {
		return
	}

	switch button.Type() {
	case gdk.EVENT_BUTTON_PRESS:
		w.dragging = true
		w.dragPos = mgl64.Vec2{button.X(), button.Y()}
		w.setCursor("grabbing")
	case gdk.EVENT_BUTTON_RELEASE:
		w.dragging = false
		w.setCursor("grab")
	}
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) {
	if !w.dragging {
		return
	}

	motion := gdk.EventMotionNewFromEvent(event)
	x, y := motion.MotionVal()
	pos := mgl64.Vec2{x, y}
	// the surface is in device pixels, events are not
	d := pos.Sub(w.dragPos).Mul(float64(w.gla.GetScaleFactor()))
	w.dragPos = pos

	w.handle(&gesture.DragEvent{DX: d.X(), DY: d.Y(), Buttons: gesture.ButtonPrimary})
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) {
	scroll := gdk.EventScrollNewFromEvent(event)

	switch scroll.Direction() {
	case gdk.SCROLL_UP:
		w.handle(&gesture.WheelEvent{DeltaY: -1})
	case gdk.SCROLL_DOWN:
		w.handle(&gesture.WheelEvent{DeltaY: 1})
	case gdk.SCROLL_SMOOTH:
		if dy := scroll.DeltaY(); dy != 0 {
			w.handle(&gesture.WheelEvent{DeltaY: dy})
		}
	}
}

func (w *RenderWindow) key(win *gtk.ApplicationWindow, event *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(event)

	switch key.KeyVal() {
	case gdk.KEY_s:
		w.screenshot()
	case gdk.KEY_r:
		w.handle(&gesture.PresetEvent{Name: "home"})
	default:
		return false
	}
	return true
}

// screenshot writes what is on screen now, without a CPU render.
func (w *RenderWindow) screenshot() {
	if w.renderer == nil {
		return
	}

	w.gla.MakeCurrent()
	w.gla.AttachBuffers()
	w.renderer.Draw(&w.uniforms)
	img := w.renderer.ReadPixels()

	path := fmt.Sprintf("glmandel-%v.png", time.Now().Format("20060102-150405"))
	if err := snapshot.Save(path, img, snapshot.Caption(w.session.View())); err != nil {
		NewErrorDialog(w, err)
		return
	}
	abs, _ := filepath.Abs(path)
	w.link.Send(&link.Notice{Message: "saved " + abs})
}

func (w *RenderWindow) handle(ev gesture.Event) {
	if err := w.session.Handle(ev); err != nil {
		log.Println(err)
		w.notice(err)
	}
}

// receive is called by the link goroutine.
func (w *RenderWindow) receive(v any) {
	glib.IdleAdd(func() {
		switch msg := v.(type) {
		case gesture.Event:
			w.handle(msg)

		case *link.Settings:
			w.session.SetColorScheme(msg.ColorScheme)
			w.session.SetMaxIterations(msg.MaxIterations)

		case *link.Save:
			width, height := w.session.View().Size()
			save(w.ctx, w, SaveOptions{
				Path:      msg.Path,
				Width:     width * saveScale,
				Height:    height * saveScale,
				Antialias: msg.Antialias,
			}, *w.session.Program(), w.session.Uniforms(), snapshot.Caption(w.session.View()))

		default:
			log.Println("unknown message received", reflect.TypeOf(v))
		}
	})
}
