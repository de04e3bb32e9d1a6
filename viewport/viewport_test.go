package viewport

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func newState(t *testing.T, width, height int, opts ...Option) *State {
	t.Helper()
	s, err := New(width, height, opts...)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", width, height, err)
	}
	return s
}

func TestNew_DefaultView(t *testing.T) {
	s := newState(t, 800, 600)

	c := s.Center()
	if !near(c[0], DefaultReal) || !near(c[1], DefaultImaginary) {
		t.Errorf("center = %v, want (%v, %v)", c, DefaultReal, DefaultImaginary)
	}
	if !near(s.ZoomLevel(), DefaultZoom) {
		t.Errorf("zoom = %v, want %v", s.ZoomLevel(), DefaultZoom)
	}
	if !near(s.Bounds().Height(), DefaultBaseHeight) {
		t.Errorf("height = %v, want %v", s.Bounds().Height(), DefaultBaseHeight)
	}
	if !near(s.Bounds().Width()/s.Bounds().Height(), 800.0/600.0) {
		t.Errorf("aspect = %v, want %v", s.Bounds().Width()/s.Bounds().Height(), 800.0/600.0)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		opts          []Option
		want          error
	}{
		{"zero width", 0, 600, nil, ErrInvalidSurface},
		{"negative height", 800, -1, nil, ErrInvalidSurface},
		{"zero stretch", 800, 600, []Option{WithStretch(0)}, ErrInvalidSurface},
		{"negative base height", 800, 600, []Option{WithBaseHeight(-3)}, ErrDegenerate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.width, tc.height, tc.opts...)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSetCenterAndZoom_RoundTrip(t *testing.T) {
	tests := []struct {
		r, i, z float64
	}{
		{-0.5, 0, 1},
		{-0.737532251, 0.1665403958, 150.89},
		{0.2966735576, 0.4851305008, 260.78},
		{-0.776592847, -0.136640848, 20000},
		{1.5, -2.25, 0.01},
	}

	s := newState(t, 1920, 1080)
	for _, tc := range tests {
		if err := s.SetCenterAndZoom(tc.r, tc.i, tc.z); err != nil {
			t.Fatalf("SetCenterAndZoom(%v, %v, %v): %v", tc.r, tc.i, tc.z, err)
		}

		b := s.Bounds()
		if !near((b.MinR+b.MaxR)/2, tc.r) || !near((b.MinI+b.MaxI)/2, tc.i) {
			t.Errorf("center = %v, want (%v, %v)", b.Center(), tc.r, tc.i)
		}
		if !near(s.ZoomLevel(), tc.z) {
			t.Errorf("zoom = %v, want %v", s.ZoomLevel(), tc.z)
		}
		if !near(b.Width()/b.Height(), s.Aspect()) {
			t.Errorf("aspect = %v, want %v", b.Width()/b.Height(), s.Aspect())
		}
	}
}

func TestSetCenterAndZoom_InvalidLeavesState(t *testing.T) {
	s := newState(t, 800, 600)
	before := s.Bounds()

	for _, z := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := s.SetCenterAndZoom(0, 0, z)
		if !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("zoom %v: err = %v, want ErrInvalidZoom", z, err)
		}
		if s.Bounds() != before {
			t.Errorf("zoom %v: bounds changed to %v", z, s.Bounds())
		}
	}

	if err := s.SetCenterAndZoom(math.NaN(), 0, 1); !errors.Is(err, ErrInvalidZoom) {
		t.Errorf("NaN center: err = %v, want ErrInvalidZoom", err)
	}

	// so deep that the range vanishes next to the center
	err := s.SetCenterAndZoom(1e10, 0, 1e300)
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("vanishing range: err = %v, want ErrDegenerate", err)
	}
	if s.Bounds() != before {
		t.Errorf("bounds changed to %v", s.Bounds())
	}
}

func TestResize_KeepsCenterAndHeight(t *testing.T) {
	sizes := [][2]int{{800, 600}, {600, 800}, {1, 1000}, {3840, 2160}, {1000, 1}}

	for _, stretch := range []float64{1, 0.9, 2} {
		s := newState(t, 1024, 768, WithStretch(stretch))
		if err := s.SetCenterAndZoom(-0.75, 0.1, 12); err != nil {
			t.Fatal(err)
		}

		for _, size := range sizes {
			center, height := s.Center(), s.Bounds().Height()

			if err := s.Resize(size[0], size[1]); err != nil {
				t.Fatalf("Resize(%v): %v", size, err)
			}

			b := s.Bounds()
			want := float64(size[0]) / float64(size[1]) / stretch
			if !near(b.Width()/b.Height(), want) {
				t.Errorf("stretch %v size %v: aspect = %v, want %v", stretch, size, b.Width()/b.Height(), want)
			}
			if !near(b.Center()[0], center[0]) || !near(b.Center()[1], center[1]) {
				t.Errorf("stretch %v size %v: center moved from %v to %v", stretch, size, center, b.Center())
			}
			if !near(b.Height(), height) {
				t.Errorf("stretch %v size %v: height changed from %v to %v", stretch, size, height, b.Height())
			}
			if !b.Valid() {
				t.Errorf("stretch %v size %v: invalid bounds %v", stretch, size, b)
			}
		}
	}
}

func TestResize_InvalidSurface(t *testing.T) {
	s := newState(t, 800, 600)
	before := s.Bounds()

	if err := s.Resize(0, 600); !errors.Is(err, ErrInvalidSurface) {
		t.Errorf("err = %v, want ErrInvalidSurface", err)
	}
	if w, h := s.Size(); w != 800 || h != 600 {
		t.Errorf("size = %vx%v, want 800x600", w, h)
	}
	if s.Bounds() != before {
		t.Errorf("bounds changed to %v", s.Bounds())
	}
}

func TestPan_FractionOfRange(t *testing.T) {
	s := newState(t, 800, 800)
	if err := s.SetCenterAndZoom(0, 0, 3); err != nil { // 1x1
		t.Fatal(err)
	}

	if err := s.Pan(0.5, -0.25); err != nil {
		t.Fatal(err)
	}

	c := s.Center()
	if !near(c[0], 0.5) || !near(c[1], -0.25) {
		t.Errorf("center = %v, want (0.5, -0.25)", c)
	}
	if !near(s.ZoomLevel(), 3) {
		t.Errorf("pan changed zoom to %v", s.ZoomLevel())
	}
}

func TestZoomAroundCenter(t *testing.T) {
	s := newState(t, 800, 600)
	center, height := s.Center(), s.Bounds().Height()

	if err := s.ZoomAroundCenter(0.5); err != nil {
		t.Fatal(err)
	}
	if !near(s.Bounds().Height(), height/2) {
		t.Errorf("height = %v, want %v", s.Bounds().Height(), height/2)
	}
	if !near(s.ZoomLevel(), 2) {
		t.Errorf("zoom = %v, want 2", s.ZoomLevel())
	}
	if c := s.Center(); !near(c[0], center[0]) || !near(c[1], center[1]) {
		t.Errorf("center moved from %v to %v", center, c)
	}

	before := s.Bounds()
	for _, f := range []float64{0, -0.5, math.NaN()} {
		if err := s.ZoomAroundCenter(f); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("factor %v: err = %v, want ErrInvalidZoom", f, err)
		}
	}
	if s.Bounds() != before {
		t.Errorf("bounds changed to %v", s.Bounds())
	}
}

func TestSetBounds(t *testing.T) {
	s := newState(t, 800, 600)

	if err := s.SetBounds(Rect{MinR: 1, MaxR: 0, MinI: 0, MaxI: 1}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("inverted: err = %v, want ErrDegenerate", err)
	}

	r := Rect{MinR: -2, MaxR: 1, MinI: -1, MaxI: 1}
	if err := s.SetBounds(r); err != nil {
		t.Fatal(err)
	}
	if s.Bounds() != r {
		t.Errorf("bounds = %v, want %v", s.Bounds(), r)
	}
}

func TestNDC_Corners(t *testing.T) {
	s := newState(t, 800, 600)
	b := s.Bounds()
	m := s.NDC()

	corners := []struct {
		x, y float64
		r, i float64
	}{
		{-1, -1, b.MinR, b.MinI},
		{1, 1, b.MaxR, b.MaxI},
		{-1, 1, b.MinR, b.MaxI},
		{0, 0, b.Center()[0], b.Center()[1]},
	}

	for _, c := range corners {
		p := m.Mul3x1([3]float64{c.x, c.y, 1})
		if !near(p[0], c.r) || !near(p[1], c.i) {
			t.Errorf("ndc (%v, %v) -> (%v, %v), want (%v, %v)", c.x, c.y, p[0], p[1], c.r, c.i)
		}
	}
}

func TestPixelToComplex(t *testing.T) {
	s := newState(t, 800, 600)
	b := s.Bounds()

	if z := s.PixelToComplex(0, 0); !near(real(z), b.MinR) || !near(imag(z), b.MaxI) {
		t.Errorf("top left = %v, want %v%+vi", z, b.MinR, b.MaxI)
	}
	if z := s.PixelToComplex(800, 600); !near(real(z), b.MaxR) || !near(imag(z), b.MinI) {
		t.Errorf("bottom right = %v, want %v%+vi", z, b.MaxR, b.MinI)
	}
}
