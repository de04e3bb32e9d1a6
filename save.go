package main

import (
	"context"
	"errors"
	"image"
	"log"
	"os"

	"github.com/gotk3/gotk3/glib"

	"github.com/stewi1014/glmandel/link"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/snapshot"
)

type SaveOptions struct {
	Path          string
	Width, Height int
	Antialias     float64
}

// save renders the view on the CPU with a progress dialog, then shows the
// result. Cancelling removes the partly written file.
func save(
	ctx context.Context,
	window *RenderWindow,
	opts SaveOptions,
	program programs.Program,
	uniforms programs.Uniforms,
	caption string,
) {
	ctx, cancel := context.WithCancelCause(ctx)
	AttachErrorDialog(window, ctx)
	defer CatchPanicToContext(cancel)

	progress, err := NewProgressDialog(ctx, window, opts, caption, func() {
		cancel(context.Canceled)
	})
	if err != nil {
		cancel(err)
		return
	}
	progress.ShowAll()

	img, err := program.GetImage(uniforms, opts.Width, opts.Height)
	if err != nil {
		cancel(err)
		return
	}
	if opts.Antialias > 0 {
		img = programs.AntiAlias9x(img, opts.Antialias)
	}

	imageImage := programs.ToImage(img)
	progress.AddProgressSupplier(programs.WrapWithProgress(&imageImage))

	go func() {
		defer CatchPanicToContext(cancel)

		buff := programs.BufferImage(imageImage)
		if err := buff.Buffer(ctx); err != nil {
			cancel(err)
			return
		}

		if err := writeSnapshot(ctx, opts.Path, buff, caption); err != nil {
			cancel(err)
			return
		}
		log.Printf("saved %v", opts.Path)

		glib.IdleAdd(func() {
			cancel(nil)
			showSaved(window, opts.Path, caption)
		})
	}()
}

func writeSnapshot(ctx context.Context, path string, img image.Image, caption string) error {
	err := snapshot.Save(path, img, caption)
	if err == nil && ctx.Err() != nil {
		err = context.Cause(ctx)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Remove(path)
	}
	return err
}

func showSaved(window *RenderWindow, path, caption string) {
	app, err := window.GetApplication()
	if err != nil {
		NewErrorDialog(window, err)
		return
	}

	preview, err := NewImageDialog(app, path, caption)
	if err != nil {
		NewErrorDialog(window, err)
		return
	}
	preview.ShowAll()
	window.link.Send(&link.Notice{Message: "saved " + path})
}
