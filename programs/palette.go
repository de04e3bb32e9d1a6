package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Scheme is a cosine palette, colour(t) = Offset + Amplitude*cos(2pi(Frequency*t + Phase)).
type Scheme struct {
	Name      string
	Offset    mgl32.Vec3
	Amplitude mgl32.Vec3
	Frequency mgl32.Vec3
	Phase     mgl32.Vec3
}

const paletteScale = 0.02

var Schemes = [...]Scheme{
	{"cool-blue", mgl32.Vec3{0.2, 0.4, 0.6}, mgl32.Vec3{0.2, 0.3, 0.4}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0.5, 0.4, 0.3}},
	{"hot-pink", mgl32.Vec3{0.7, 0.3, 0.5}, mgl32.Vec3{0.3, 0.3, 0.4}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0.1, 0.2}},
	{"black-and-white", mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{2.5, 2.5, 2.5}, mgl32.Vec3{0, 0, 0}},
	{"cool-green", mgl32.Vec3{0.2, 0.5, 0.3}, mgl32.Vec3{0.2, 0.4, 0.3}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0.3, 0.2, 0.1}},
	{"gold", mgl32.Vec3{0.6, 0.45, 0.15}, mgl32.Vec3{0.4, 0.35, 0.15}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0.05, 0.15}},
	{"plasma", mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0.33, 0.67}},
	{"pastel", mgl32.Vec3{0.8, 0.75, 0.8}, mgl32.Vec3{0.2, 0.25, 0.2}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0.33, 0.67}},
	{"inferno", mgl32.Vec3{0.5, 0.3, 0.1}, mgl32.Vec3{0.5, 0.3, 0.1}, mgl32.Vec3{1, 1, 0.5}, mgl32.Vec3{0, 0.15, 0.2}},
}

// SchemeIndex returns the index of the named scheme, or 0 when there is none.
func SchemeIndex(name string) int {
	for i, s := range Schemes {
		if s.Name == name {
			return i
		}
	}
	return 0
}

func SchemeNames() []string {
	names := make([]string, len(Schemes))
	for i, s := range Schemes {
		names[i] = s.Name
	}
	return names
}

func (s Scheme) params() [4]mgl32.Vec3 {
	return [4]mgl32.Vec3{s.Offset, s.Amplitude, s.Frequency, s.Phase}
}

// Colour evaluates the palette at a smoothed iteration count.
func (s Scheme) Colour(mu float64) mgl32.Vec3 {
	t := float32(mu * paletteScale)
	var c mgl32.Vec3
	for i := range c {
		v := s.Offset[i] + s.Amplitude[i]*float32(math.Cos(2*math.Pi*float64(s.Frequency[i]*t+s.Phase[i])))
		c[i] = mgl32.Clamp(v, 0, 1)
	}
	return c
}
