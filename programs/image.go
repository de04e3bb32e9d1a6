package programs

import (
	"context"
	"image"
	"image/color"
	"log"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// WrapWithProgress replaces *img with a wrapper that counts sampled pixels,
// and returns a function giving the fraction sampled so far.
func WrapWithProgress(img *image.Image) func() float64 {
	p := &ProgressImage{
		Image: *img,
	}

	*img = p
	return p.Progress
}

type ProgressImage struct {
	image.Image
	count atomic.Int64
}

func (i *ProgressImage) At(x, y int) color.Color {
	i.count.Add(1)
	return i.Image.At(x, y)
}

func (i *ProgressImage) Progress() float64 {
	end := i.Bounds().Dx() * i.Bounds().Dy()
	if end == 0 {
		return 1
	}
	return float64(i.count.Load()) / float64(end)
}

func (i *ProgressImage) Opaque() bool {
	return true
}

// AntiAlias9x samples 9 positions for each sampled position,
// returning the average colour.
//
// antialias is the number of pixels apart the sampled locations are.
func AntiAlias9x(img Image, antialias float64) Image {
	if antialias == 0 {
		log.Println("image uselessly antialiased with distance of 0")
	}

	// a pixel is 2/width wide in device coordinates
	return &antialias9xImage{
		Image: img,
		offset: mgl64.Vec2{
			2 * antialias / float64(img.Bounds().Dx()),
			2 * antialias / float64(img.Bounds().Dy()),
		},
	}
}

type antialias9xImage struct {
	Image
	offset mgl64.Vec2
}

func (i *antialias9xImage) GetPixel(pos mgl64.Vec2) mgl32.Vec3 {
	avg := mgl32.Vec3{}
	for _, dx := range [...]float64{-i.offset[0], 0, i.offset[0]} {
		for _, dy := range [...]float64{-i.offset[1], 0, i.offset[1]} {
			avg = avg.Add(i.Image.GetPixel(mgl64.Vec2{pos[0] + dx, pos[1] + dy}))
		}
	}
	return avg.Mul(1 / float32(9))
}

func BufferImage(img image.Image) *BufferedImage {
	return &BufferedImage{
		Image:  img,
		height: img.Bounds().Dy(),
	}
}

// BufferedImage renders its source once, in parallel, and serves At from memory.
type BufferedImage struct {
	image.Image
	height int
	buff   []color.Color
}

func (b *BufferedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Image.Bounds().Dx(), b.Image.Bounds().Dy())
}

func (b *BufferedImage) At(x, y int) color.Color {
	return b.buff[x*b.height+y]
}

// Buffer samples every pixel of the source in column chunks. It stops early
// and returns the context's error if ctx is cancelled.
func (b *BufferedImage) Buffer(ctx context.Context) error {
	b.buff = make([]color.Color, b.Image.Bounds().Dx()*b.Image.Bounds().Dy())

	min, max := b.Image.Bounds().Min, b.Image.Bounds().Max
	chunkSize := 50
	var wg sync.WaitGroup

	for chunkMin := min.X; chunkMin < max.X; chunkMin += chunkSize {
		chunkMax := chunkMin + chunkSize
		if chunkMax > max.X {
			chunkMax = max.X
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			i := (chunkMin - min.X) * b.height
			for x := chunkMin; x < chunkMax; x++ {
				if ctx.Err() != nil {
					return
				}

				for y := min.Y; y < max.Y; y++ {
					b.buff[i] = b.Image.At(x, y)
					i++
				}
			}
		}()
	}

	wg.Wait()

	return ctx.Err()
}

func (b *BufferedImage) Opaque() bool {
	return true
}

// ToImage samples img at pixel centres, with y growing downwards.
func ToImage(img Image) image.Image {
	return &imageImage{
		Image: img,
		size:  mgl64.Vec2{float64(img.Bounds().Dx()), float64(img.Bounds().Dy())},
	}
}

type imageImage struct {
	Image
	size mgl64.Vec2
}

func (i *imageImage) At(x, y int) color.Color {
	x -= i.Bounds().Min.X
	y -= i.Bounds().Min.Y

	c := i.GetPixel(mgl64.Vec2{
		(float64(x)+0.5)/i.size[0]*2 - 1,
		1 - (float64(y)+0.5)/i.size[1]*2,
	})

	return color.NRGBA{
		R: uint8(c[0] * 255),
		G: uint8(c[1] * 255),
		B: uint8(c[2] * 255),
		A: 0xff,
	}
}

func (i *imageImage) ColorModel() color.Model {
	return color.NRGBAModel
}

func (i *imageImage) Opaque() bool {
	return true
}

// Render samples the whole of img into an RGBA image.
func Render(ctx context.Context, img Image) (*image.RGBA, error) {
	buf := BufferImage(ToImage(img))
	if err := buf.Buffer(ctx); err != nil {
		return nil, err
	}

	out := image.NewRGBA(buf.Bounds())
	for x := 0; x < out.Rect.Dx(); x++ {
		for y := 0; y < out.Rect.Dy(); y++ {
			out.Set(x, y, buf.At(x, y))
		}
	}
	return out, nil
}
