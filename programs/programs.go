// Package programs holds the shader sources and the CPU rendition of the same
// fractal, for when there is no GPU to draw with.
package programs

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNoCPUImplementation = errors.New("program does not have a CPU implementation")
	ErrShaderMissing       = errors.New("shader source missing")
)

const (
	VertexFile   = "mandelbrot.vert"
	FragmentFile = "mandelbrot.frag"
)

//go:embed shaders/mandelbrot.vert
var defaultVertexShader string

//go:embed shaders/mandelbrot.frag
var defaultFragmentShader string

// Sources is the GLSL of a program.
type Sources struct {
	Vertex   string
	Fragment string
}

func DefaultSources() Sources {
	return Sources{
		Vertex:   defaultVertexShader,
		Fragment: defaultFragmentShader,
	}
}

// Load reads the shaders from dir, or returns the built in ones if dir is empty.
func Load(dir string) (Sources, error) {
	if dir == "" {
		return DefaultSources(), nil
	}

	vert, err := readShader(filepath.Join(dir, VertexFile))
	if err != nil {
		return Sources{}, err
	}
	frag, err := readShader(filepath.Join(dir, FragmentFile))
	if err != nil {
		return Sources{}, err
	}

	return Sources{Vertex: vert, Fragment: frag}, nil
}

func readShader(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %v", ErrShaderMissing, path)
	}
	if err != nil {
		return "", fmt.Errorf("reading shader: %w", err)
	}
	if len(buf) == 0 {
		return "", fmt.Errorf("%w: %v is empty", ErrShaderMissing, path)
	}
	return string(buf), nil
}

// PixelFunc returns the colour of the point c.
type PixelFunc func(uniforms Uniforms, c complex128) mgl32.Vec3

type Program struct {
	Name string
	Sources
	GetPixel PixelFunc
}

// Mandelbrot is the program drawn by every frontend.
func Mandelbrot(sources Sources) Program {
	return Program{
		Name:     "mandelbrot",
		Sources:  sources,
		GetPixel: MandelbrotPixel,
	}
}

// GetImage returns a width x height rendering of the rectangle in uniforms.
func (p *Program) GetImage(uniforms Uniforms, width, height int) (Image, error) {
	if p.GetPixel == nil {
		return nil, ErrNoCPUImplementation
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image size %vx%v", width, height)
	}

	return &programImage{
		uniforms:  uniforms,
		bounds:    image.Rect(0, 0, width, height),
		pixelFunc: p.GetPixel,
	}, nil
}

// Image is a picture sampled in normalized device coordinates, [-1, 1] on
// both axes with y up.
type Image interface {
	GetPixel(mgl64.Vec2) mgl32.Vec3
	Bounds() image.Rectangle
}

type programImage struct {
	uniforms  Uniforms
	bounds    image.Rectangle
	pixelFunc PixelFunc
}

func (i *programImage) GetPixel(pos mgl64.Vec2) mgl32.Vec3 {
	u := &i.uniforms
	c := complex(
		u.MinR+(pos[0]+1)/2*(u.MaxR-u.MinR),
		u.MinI+(pos[1]+1)/2*(u.MaxI-u.MinI),
	)
	return i.pixelFunc(i.uniforms, c)
}

func (i *programImage) Bounds() image.Rectangle {
	return i.bounds
}
