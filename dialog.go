package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/viewport"
)

const previewSize = 640

func CatchPanicToContext(ctxCancel context.CancelCauseFunc) {
	if v := recover(); v != nil {
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", v)
		}
		err = fmt.Errorf("%w\n%v", err, string(debug.Stack()))
		if ctxCancel != nil {
			ctxCancel(err)
		}
	}
}

// errorMessage is what an error dialog says about err. Known errors get a
// plain title; anything else is unexpected and is reported with where it was
// shown from.
type errorMessage struct {
	title      string
	detail     string
	unexpected bool
}

var knownErrors = []struct {
	target error
	title  string
}{
	{gesture.ErrInvalidInput, "Please enter valid numbers for all fields"},
	{gesture.ErrUnknownPreset, "There is no preset by that name"},
	{viewport.ErrInvalidZoom, "The view can not go there"},
	{viewport.ErrDegenerate, "The view can not go there"},
	{viewport.ErrInvalidSurface, "The window is too small to draw in"},
	{gpu.ErrShader, "The shaders did not build"},
	{programs.ErrShaderMissing, "A shader source is missing"},
	{programs.ErrNoCPUImplementation, "This picture can only be drawn on the GPU"},
	{config.ErrInvalid, "The config file has a problem"},
	{fs.ErrPermission, "Permission denied"},
	{fs.ErrNotExist, "No such file or folder"},
}

func describeError(err error) errorMessage {
	for _, known := range knownErrors {
		if errors.Is(err, known.target) {
			return errorMessage{title: known.title, detail: err.Error()}
		}
	}
	return errorMessage{title: "Something went wrong", detail: err.Error(), unexpected: true}
}

// WrapErrorDialog returns a signal handler that shows an error dialog if
// failable fails.
func WrapErrorDialog(parent gtk.IWindow, failable func() error) func() {
	return func() {
		err := failable()
		if err != nil {
			log.Println(err)
			glib.IdleAdd(func() {
				NewErrorDialog(parent, err)
			})
		}
	}
}

// AttachErrorDialog shows an error dialog when ctx ends with a cause other
// than cancellation.
func AttachErrorDialog(parent gtk.IWindow, ctx context.Context) {
	go func() {
		<-ctx.Done()
		err := context.Cause(ctx)
		if !errors.Is(err, context.Canceled) {
			log.Println(err)
			glib.IdleAdd(func() {
				NewErrorDialog(parent, err)
			})
		}
	}()
}

// NewErrorDialog shows err and blocks until it is closed.
func NewErrorDialog(parent gtk.IWindow, err error) {
	msg := describeError(err)
	if msg.unexpected {
		if _, file, line, ok := runtime.Caller(1); ok {
			msg.detail = fmt.Sprintf("%v\n\nshown from %s:%v", msg.detail, filepath.Base(file), line)
		}
	}

	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT|gtk.DIALOG_MODAL,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s",
		msg.title,
	)
	dialog.FormatSecondaryText("%s", msg.detail)
	dialog.Connect("response", dialog.Destroy)

	// the detail holds coordinates and driver logs worth copying
	if area, err := dialog.GetMessageArea(); err != nil {
		log.Println(err)
	} else {
		area.GetChildren().Foreach(func(item interface{}) {
			if widget, ok := item.(*gtk.Widget); ok {
				if l, err := gtk.WidgetToLabel(widget); err == nil {
					l.SetSelectable(true)
				}
			}
		})
	}

	dialog.SetKeepAbove(true)
	dialog.Run()
}

// NewProgressDialog follows a CPU save of location to opts. onCancel is
// called if the user gives up; the dialog closes itself when ctx ends.
func NewProgressDialog(
	ctx context.Context,
	parent gtk.IWindow,
	opts SaveOptions,
	location string,
	onCancel func(),
) (*ProgressDialog, error) {
	var err error
	dialog := &ProgressDialog{}
	dialog.Dialog, err = gtk.DialogNewWithButtons(
		"Saving "+filepath.Base(opts.Path),
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Cancel", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, fmt.Errorf("gtk.DialogNewWithButtons: %w", err)
	}
	dialog.SetKeepAbove(true)
	dialog.Connect("response", func(dialog *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL {
			onCancel()
		}
	})

	ca, err := dialog.GetContentArea()
	if err != nil {
		return nil, err
	}
	ca.SetSpacing(6)
	ca.SetBorderWidth(12)

	dialog.label, _ = gtk.LabelNew(saveDescription(opts, location))
	dialog.label.SetXAlign(0)
	ca.Add(dialog.label)

	dialog.progressBar, _ = gtk.ProgressBarNew()
	dialog.progressBar.SetShowText(true)
	dialog.progressBar.SetSizeRequest(500, 40)
	ca.Add(dialog.progressBar)

	dialog.started = time.Now()
	go dialog.periodicUpdate(ctx)
	return dialog, nil
}

func saveDescription(opts SaveOptions, location string) string {
	aa := "no antialiasing"
	if opts.Antialias > 0 {
		aa = "9x antialiasing"
	}
	return fmt.Sprintf("Drawing %vx%v with %v\n%v\nto %v", opts.Width, opts.Height, aa, location, opts.Path)
}

type ProgressDialog struct {
	*gtk.Dialog
	progressBar *gtk.ProgressBar
	label       *gtk.Label
	started     time.Time

	progressFuncs []func() float64
}

// AddProgressSupplier adds a supplier for progress information to the ProgressDialog.
// If more than one supplier is added, their values are averaged.
func (dialog *ProgressDialog) AddProgressSupplier(supplier func() float64) {
	glib.IdleAdd(func() {
		dialog.progressFuncs = append(dialog.progressFuncs, supplier)
	})
}

func (dialog *ProgressDialog) periodicUpdate(ctx context.Context) {
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			glib.IdleAdd(dialog.update)
		case <-ctx.Done():
			glib.IdleAdd(func() {
				dialog.Destroy()
			})
			return
		}
	}
}

func (dialog *ProgressDialog) update() {
	if len(dialog.progressFuncs) == 0 {
		return
	}
	progress := float64(0)
	for _, progressFunc := range dialog.progressFuncs {
		progress += progressFunc()
	}
	progress = progress / float64(len(dialog.progressFuncs))
	dialog.progressBar.SetFraction(progress)
	dialog.progressBar.SetText(progressText(progress, time.Since(dialog.started)))
}

// progressText is the percentage done and, once there is enough to go on, a
// guess at the time left.
func progressText(progress float64, elapsed time.Duration) string {
	text := fmt.Sprintf("%.0f%%", progress*100)
	if progress < 0.05 || progress >= 1 || elapsed < time.Second {
		return text
	}
	left := time.Duration(float64(elapsed) * (1 - progress) / progress)
	return fmt.Sprintf("%v, about %v left", text, left.Round(time.Second))
}

// NewImageDialog shows a saved picture of location. Delete removes the file.
func NewImageDialog(
	app *gtk.Application,
	path string,
	location string,
) (*ImagePreview, error) {
	w := &ImagePreview{}
	var err error

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, err
	}
	w.SetTitle(filepath.Base(path))

	pixbuf, err := gdk.PixbufNewFromFileAtScale(path, previewSize, previewSize, true)
	if err != nil {
		return nil, err
	}

	previewImage, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return nil, err
	}

	previewImage.SetHExpand(true)
	previewImage.SetVExpand(true)

	caption, _ := gtk.LabelNew(location)
	caption.SetSelectable(true)

	deleteButton, _ := gtk.ButtonNewWithLabel("Delete")
	deleteButton.Connect("clicked", func(button *gtk.Button) {
		if err := os.Remove(path); err != nil {
			NewErrorDialog(w, err)
			return
		}
		w.Destroy()
	})

	keepButton, _ := gtk.ButtonNewWithLabel("Keep")
	keepButton.Connect("clicked", func(button *gtk.Button) {
		w.Destroy()
	})

	grid, _ := gtk.GridNew()
	grid.Attach(previewImage, 0, 0, 5, 1)
	grid.Attach(caption, 0, 1, 5, 1)
	grid.Attach(keepButton, 0, 2, 1, 1)
	grid.Attach(deleteButton, 4, 2, 1, 1)

	w.Add(grid)

	return w, nil
}

type ImagePreview struct {
	*gtk.ApplicationWindow
}
