package main

import (
	"context"
	"fmt"
	"html"
	"log"
	"net"
	"reflect"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/link"
	"github.com/stewi1014/glmandel/programs"
)

const saveAntialias = 0.5

var fieldLabels = [...]string{
	gesture.FieldReal:      "Real",
	gesture.FieldImaginary: "Imaginary",
	gesture.FieldZoom:      "Zoom",
}

func NewConfigWindow(
	app *gtk.Application,
	ctx context.Context,
	quit context.CancelCauseFunc,
	listener net.Listener,
	presets gesture.Presets,
) *ConfigWindow {
	conn, err := listener.Accept()
	if err != nil {
		quit(fmt.Errorf("accepting render window: %w", err))
		return nil
	}

	w := &ConfigWindow{
		ctx:     ctx,
		quit:    quit,
		link:    link.New(conn),
		syncing: true,
	}
	defer func() { w.syncing = false }()

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(320, 0)

	grid, _ := gtk.GridNew()
	grid.SetRowSpacing(6)
	grid.SetColumnSpacing(12)
	grid.SetBorderWidth(12)
	row := 0

	for i := range w.entries {
		field := gesture.Field(i)
		w.entries[i], _ = gtk.EntryNew()
		w.entries[i].SetWidthChars(18)
		w.entries[i].SetHExpand(true)
		w.entries[i].Connect("changed", func(entry *gtk.Entry) {
			if w.syncing {
				return
			}
			text, _ := entry.GetText()
			w.fields.Set(field, text)
			w.edited = true
		})
		w.entries[i].Connect("focus-in-event", func() bool {
			w.fields.SetEditing(field, true)
			return false
		})
		w.entries[i].Connect("focus-out-event", func() bool {
			w.fields.SetEditing(field, false)
			if w.edited {
				w.commit()
			}
			return false
		})
		w.entries[i].Connect("activate", w.commit)

		label, _ := gtk.LabelNew(fieldLabels[field])
		label.SetXAlign(0)
		grid.Attach(label, 0, row, 1, 1)
		grid.Attach(w.entries[i], 1, row, 1, 1)
		row++
	}

	goButton, _ := gtk.ButtonNewWithLabel("Go")
	goButton.Connect("clicked", w.commit)
	grid.Attach(goButton, 1, row, 1, 1)
	row++

	w.scheme, _ = gtk.ComboBoxTextNew()
	for _, name := range programs.SchemeNames() {
		w.scheme.AppendText(name)
	}
	w.scheme.SetActive(0)
	w.scheme.Connect("changed", w.sendSettings)
	w.attachRow(grid, &row, "Colours", w.scheme)

	w.iterations, _ = gtk.SpinButtonNewWithRange(programs.MinIterations, programs.MaxIterations, 1)
	w.iterations.SetValue(programs.DefaultMaxIterations)
	w.iterations.Connect("value-changed", w.sendSettings)
	w.attachRow(grid, &row, "Iterations", w.iterations)

	// shares the spin button's adjustment so the two move together
	scale, _ := gtk.ScaleNew(gtk.ORIENTATION_HORIZONTAL, w.iterations.GetAdjustment())
	scale.SetDrawValue(false)
	grid.Attach(scale, 0, row, 2, 1)
	row++

	w.jump, _ = gtk.ComboBoxTextNew()
	for _, name := range presets.Names() {
		w.jump.AppendText(name)
	}
	w.jump.Connect("changed", w.jumpTo)
	w.attachRow(grid, &row, "Jump to", w.jump)

	buttons, _ := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 6)
	copyButton, _ := gtk.ButtonNewWithLabel("Copy")
	copyButton.Connect("clicked", WrapErrorDialog(w, w.copy))
	saveButton, _ := gtk.ButtonNewWithLabel("Save PNG")
	saveButton.Connect("clicked", w.chooseSave)
	buttons.PackStart(copyButton, true, true, 0)
	buttons.PackStart(saveButton, true, true, 0)
	grid.Attach(buttons, 0, row, 2, 1)
	row++

	w.status, _ = gtk.LabelNew("")
	w.status.SetLineWrap(true)
	w.status.SetSelectable(true)
	w.status.SetXAlign(0)
	grid.Attach(w.status, 0, row, 2, 1)

	w.AddEvents(int(gdk.ENTER_NOTIFY_MASK) | int(gdk.LEAVE_NOTIFY_MASK))
	w.Connect("enter-notify-event", func() bool {
		w.link.Send(&gesture.HoverEvent{OverSettings: true})
		return false
	})
	w.Connect("leave-notify-event", func() bool {
		w.link.Send(&gesture.HoverEvent{OverSettings: false})
		return false
	})

	w.Add(grid)
	w.ShowAll()

	go func() {
		defer CatchPanicToContext(quit)
		if err := w.link.Run(ctx, w.receive); err != nil {
			quit(err)
		}
	}()

	return w
}

// ConfigWindow edits the view drawn by the render window. It only talks to
// it over the link.
type ConfigWindow struct {
	*gtk.ApplicationWindow

	ctx  context.Context
	quit context.CancelCauseFunc
	link *link.Link

	fields     gesture.Fields
	entries    [3]*gtk.Entry
	scheme     *gtk.ComboBoxText
	iterations *gtk.SpinButton
	jump       *gtk.ComboBoxText
	status     *gtk.Label

	// syncing is set while widgets are updated from a Status, so their
	// change signals are not sent back.
	syncing bool
	edited  bool
}

func (w *ConfigWindow) attachRow(grid *gtk.Grid, row *int, label string, widget gtk.IWidget) {
	l, _ := gtk.LabelNew(label)
	l.SetXAlign(0)
	grid.Attach(l, 0, *row, 1, 1)
	grid.Attach(widget, 1, *row, 1, 1)
	*row++
}

// commit sends the typed location. Text that can not be read is refused
// here with a dialog, and the view is left where it is.
func (w *ConfigWindow) commit() {
	w.edited = false
	if err := w.fields.Check(); err != nil {
		// not from inside a focus handler
		glib.IdleAdd(func() {
			NewErrorDialog(w, err)
		})
		return
	}
	w.link.Send(w.fields.CommitEvent())
}

func (w *ConfigWindow) sendSettings() {
	if w.syncing {
		return
	}
	w.link.Send(&link.Settings{
		ColorScheme:   w.scheme.GetActiveText(),
		MaxIterations: w.iterations.GetValueAsInt(),
	})
}

func (w *ConfigWindow) jumpTo() {
	name := w.jump.GetActiveText()
	if name == "" {
		return
	}
	w.link.Send(&gesture.PresetEvent{Name: name})
	glib.IdleAdd(func() {
		w.jump.SetActive(-1)
	})
}

func (w *ConfigWindow) copy() error {
	if err := w.fields.Clipboard(); err != nil {
		return err
	}
	w.notify(&link.Notice{Message: "copied " + w.fields.Summary()})
	return nil
}

func (w *ConfigWindow) chooseSave() {
	dialog, err := gtk.FileChooserDialogNewWith2Buttons(
		"Save Image", w, gtk.FILE_CHOOSER_ACTION_SAVE,
		"Cancel", gtk.RESPONSE_CANCEL,
		"Save", gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		NewErrorDialog(w, err)
		return
	}
	defer dialog.Destroy()

	dialog.SetDoOverwriteConfirmation(true)
	dialog.SetCurrentName("mandelbrot.png")
	if dialog.Run() != gtk.RESPONSE_ACCEPT {
		return
	}
	w.link.Send(&link.Save{Path: dialog.GetFilename(), Antialias: saveAntialias})
}

// receive is called by the link goroutine.
func (w *ConfigWindow) receive(v any) {
	glib.IdleAdd(func() {
		switch msg := v.(type) {
		case *link.Status:
			w.show(msg)
		case *link.Notice:
			w.notify(msg)
		default:
			log.Println("unknown message received", reflect.TypeOf(v))
		}
	})
}

// show updates the widgets from status, leaving alone a field that is being
// typed in.
func (w *ConfigWindow) show(status *link.Status) {
	w.syncing = true
	defer func() { w.syncing = false }()

	values := [...]string{
		gesture.FieldReal:      status.Real,
		gesture.FieldImaginary: status.Imaginary,
		gesture.FieldZoom:      status.Zoom,
	}
	for i, entry := range w.entries {
		field := gesture.Field(i)
		if w.fields.Editing(field) {
			continue
		}
		w.fields.Set(field, values[field])
		entry.SetText(values[field])
	}

	w.scheme.SetActive(programs.SchemeIndex(status.ColorScheme))
	w.iterations.SetValue(float64(status.MaxIterations))
}

func (w *ConfigWindow) notify(notice *link.Notice) {
	if notice.Error {
		w.status.SetMarkup(fmt.Sprintf(`<span foreground="red">%s</span>`, html.EscapeString(notice.Message)))
		return
	}
	w.status.SetText(notice.Message)
}
