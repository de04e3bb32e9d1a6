// Package snapshot writes the current view to a PNG with its location printed
// along the bottom.
package snapshot

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/viewport"
)

const (
	fontSize = 14.0
	padding  = 6.0
)

// Caption describes the centre and zoom of view.
func Caption(view *viewport.State) string {
	c := view.Center()
	imaginary := gesture.FormatCoordinate(c[1])
	if !strings.HasPrefix(imaginary, "-") {
		imaginary = "+" + imaginary
	}
	return fmt.Sprintf("%v %vi  zoom %v", gesture.FormatCoordinate(c[0]), imaginary, gesture.FormatZoom(view.ZoomLevel()))
}

// Render draws the program on the CPU. With antialias above zero every pixel
// is the average of 9 samples that far apart, in pixels.
func Render(
	ctx context.Context,
	program *programs.Program,
	uniforms programs.Uniforms,
	width, height int,
	antialias float64,
) (*image.RGBA, error) {
	img, err := program.GetImage(uniforms, width, height)
	if err != nil {
		return nil, err
	}
	if antialias > 0 {
		img = programs.AntiAlias9x(img, antialias)
	}
	return programs.Render(ctx, img)
}

// Annotate returns a copy of img with caption drawn in a bar along the bottom.
func Annotate(img image.Image, caption string) (image.Image, error) {
	dc := gg.NewContextForImage(img)
	if caption == "" {
		return dc.Image(), nil
	}

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()
	dc.SetFontFace(face)

	w, h := float64(dc.Width()), float64(dc.Height())
	barHeight := fontSize + 2*padding

	dc.SetColor(color.NRGBA{0, 0, 0, 0xa0})
	dc.DrawRectangle(0, h-barHeight, w, barHeight)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(caption, padding, h-barHeight/2, 0, 0.35)
	return dc.Image(), nil
}

// Encode writes img, annotated with caption, to w as a PNG.
func Encode(w io.Writer, img image.Image, caption string) error {
	annotated, err := Annotate(img, caption)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(annotated).EncodePNG(w)
}

// Save writes img, annotated with caption, to a PNG file at path.
func Save(path string, img image.Image, caption string) error {
	annotated, err := Annotate(img, caption)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, annotated)
}
