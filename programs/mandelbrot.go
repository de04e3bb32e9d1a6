package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const bailout = 256

// Escape iterates z = z^2 + c from 0 until |z|^2 passes the bailout or limit
// is reached. It returns the iteration count and the final |z|^2.
func Escape(c complex128, limit int) (int, float64) {
	var z complex128
	for i := 0; i < limit; i++ {
		z = z*z + c
		mag := real(z)*real(z) + imag(z)*imag(z)
		if mag > bailout {
			return i, mag
		}
	}
	return limit, 0
}

// Smooth turns an escape count into a continuous value, so colour bands blend.
func Smooth(i int, mag float64) float64 {
	return float64(i) + 1 - math.Log(0.5*math.Log(mag))/math.Ln2
}

// MandelbrotPixel is the CPU version of the fragment shader.
func MandelbrotPixel(uniforms Uniforms, c complex128) mgl32.Vec3 {
	limit := int(uniforms.MaxIterations)
	i, mag := Escape(c, limit)
	if i >= limit {
		return mgl32.Vec3{}
	}

	mu := Smooth(i, mag)
	if uniforms.ColorMode == 2 {
		// black and white keeps hard bands
		mu = math.Floor(mu)
	}

	p := uniforms.Palette
	return Scheme{Offset: p[0], Amplitude: p[1], Frequency: p[2], Phase: p[3]}.Colour(mu)
}
