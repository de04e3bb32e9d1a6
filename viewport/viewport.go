// Package viewport holds the rectangle of the complex plane that is shown on
// the render surface, and the maps between that rectangle, surface pixels and
// the normalized device coordinates the fragment shader works in.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidZoom    = errors.New("invalid zoom")
	ErrDegenerate     = errors.New("degenerate viewport")
	ErrInvalidSurface = errors.New("invalid surface size")
)

const (
	DefaultBaseHeight = 3.0
	DefaultStretch    = 1.0
	DefaultReal       = -0.5
	DefaultImaginary  = 0.0
	DefaultZoom       = 1.0
)

// Rect is an axis aligned rectangle in the complex plane.
type Rect struct {
	MinR, MaxR float64
	MinI, MaxI float64
}

func (r Rect) Width() float64  { return r.MaxR - r.MinR }
func (r Rect) Height() float64 { return r.MaxI - r.MinI }

func (r Rect) Center() mgl64.Vec2 {
	return mgl64.Vec2{(r.MinR + r.MaxR) / 2, (r.MinI + r.MaxI) / 2}
}

// Valid reports whether all bounds are finite and both ranges are positive.
func (r Rect) Valid() bool {
	for _, f := range [...]float64{r.MinR, r.MaxR, r.MinI, r.MaxI} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return r.MaxR > r.MinR && r.MaxI > r.MinI
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", r.MinR, r.MaxR, r.MinI, r.MaxI)
}

func centered(center mgl64.Vec2, width, height float64) Rect {
	return Rect{
		MinR: center[0] - width/2,
		MaxR: center[0] + width/2,
		MinI: center[1] - height/2,
		MaxI: center[1] + height/2,
	}
}

type Option func(*State)

// WithBaseHeight sets the imaginary range shown at zoom 1.
func WithBaseHeight(h float64) Option {
	return func(s *State) { s.baseHeight = h }
}

// WithStretch sets the factor the surface aspect ratio is divided by
// before it is applied to the rectangle.
func WithStretch(stretch float64) Option {
	return func(s *State) { s.stretch = stretch }
}

// State is the single viewing rectangle of a session along with the pixel
// size of the surface it is drawn to.
//
// Every method either leaves the rectangle valid or returns an error and
// leaves it untouched.
type State struct {
	rect          Rect
	width, height int
	baseHeight    float64
	stretch       float64
}

// New returns a State for a width x height surface, showing the default view.
func New(width, height int, opts ...Option) (*State, error) {
	s := &State{
		baseHeight: DefaultBaseHeight,
		stretch:    DefaultStretch,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !positive(s.baseHeight) {
		return nil, fmt.Errorf("base height %v: %w", s.baseHeight, ErrDegenerate)
	}
	if !positive(s.stretch) {
		return nil, fmt.Errorf("stretch %v: %w", s.stretch, ErrInvalidSurface)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%vx%v: %w", width, height, ErrInvalidSurface)
	}

	s.width, s.height = width, height
	if err := s.SetCenterAndZoom(DefaultReal, DefaultImaginary, DefaultZoom); err != nil {
		return nil, err
	}
	return s, nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (s *State) Bounds() Rect { return s.rect }

// SetBounds replaces the rectangle as is, without aspect correction.
func (s *State) SetBounds(r Rect) error {
	if !r.Valid() {
		return fmt.Errorf("bounds %v: %w", r, ErrDegenerate)
	}
	s.rect = r
	return nil
}

// Size returns the surface size in pixels.
func (s *State) Size() (width, height int) { return s.width, s.height }

func (s *State) BaseHeight() float64 { return s.baseHeight }
func (s *State) Stretch() float64    { return s.stretch }

// Aspect is the width/height ratio the rectangle is kept at.
func (s *State) Aspect() float64 {
	return float64(s.width) / float64(s.height) / s.stretch
}

func (s *State) Center() mgl64.Vec2 { return s.rect.Center() }

// ZoomLevel is larger the more magnified the view is.
func (s *State) ZoomLevel() float64 {
	return s.baseHeight / s.rect.Height()
}

// Resize records a new surface size and re-derives the rectangle width from
// its height, keeping the center where it is.
func (s *State) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%vx%v: %w", width, height, ErrInvalidSurface)
	}

	oldWidth, oldHeight := s.width, s.height
	s.width, s.height = width, height
	if err := s.FixAspect(); err != nil {
		s.width, s.height = oldWidth, oldHeight
		return err
	}
	return nil
}

// FixAspect recomputes the rectangle width so that it matches the surface
// aspect ratio. The height and center are preserved.
func (s *State) FixAspect() error {
	height := s.rect.Height()
	r := centered(s.rect.Center(), height*s.Aspect(), height)
	if !r.Valid() {
		return fmt.Errorf("aspect fix to %v: %w", r, ErrDegenerate)
	}
	s.rect = r
	return nil
}

// SetCenterAndZoom centers the view on real+imaginary*i at the given zoom.
func (s *State) SetCenterAndZoom(real, imaginary, zoom float64) error {
	if !finite(zoom) || zoom <= 0 {
		return fmt.Errorf("zoom %v: %w", zoom, ErrInvalidZoom)
	}
	if !finite(real) || !finite(imaginary) {
		return fmt.Errorf("center %v%+vi: %w", real, imaginary, ErrInvalidZoom)
	}

	height := s.baseHeight / zoom
	r := centered(mgl64.Vec2{real, imaginary}, height*s.Aspect(), height)
	if !r.Valid() {
		return fmt.Errorf("zoom %v at %v%+vi: %w", zoom, real, imaginary, ErrDegenerate)
	}
	s.rect = r
	return nil
}

// Pan shifts the view by fractions of its current width and height, so pan
// speed does not depend on resolution or zoom.
func (s *State) Pan(dr, di float64) error {
	dr *= s.rect.Width()
	di *= s.rect.Height()

	r := Rect{
		MinR: s.rect.MinR + dr,
		MaxR: s.rect.MaxR + dr,
		MinI: s.rect.MinI + di,
		MaxI: s.rect.MaxI + di,
	}
	if !r.Valid() {
		return fmt.Errorf("pan by %v%+vi: %w", dr, di, ErrDegenerate)
	}
	s.rect = r
	return nil
}

// ZoomAroundCenter scales both ranges by factor. A factor below 1 zooms in.
func (s *State) ZoomAroundCenter(factor float64) error {
	if !finite(factor) || factor <= 0 {
		return fmt.Errorf("zoom factor %v: %w", factor, ErrInvalidZoom)
	}

	r := centered(s.rect.Center(), s.rect.Width()*factor, s.rect.Height()*factor)
	if !r.Valid() {
		return fmt.Errorf("zoom factor %v: %w", factor, ErrDegenerate)
	}
	s.rect = r
	return nil
}

// NDC returns the affine map from normalized device coordinates, [-1, 1] on
// both axes with y up, to the complex plane.
func (s *State) NDC() mgl64.Mat3 {
	c := s.rect.Center()
	return mgl64.Translate2D(c[0], c[1]).Mul3(
		mgl64.Scale2D(s.rect.Width()/2, s.rect.Height()/2),
	)
}

// PixelToComplex maps a surface pixel position, y down, to the complex plane.
func (s *State) PixelToComplex(x, y float64) complex128 {
	ndc := mgl64.Vec3{
		x/float64(s.width)*2 - 1,
		1 - y/float64(s.height)*2,
		1,
	}
	p := s.NDC().Mul3x1(ndc)
	return complex(p[0], p[1])
}
