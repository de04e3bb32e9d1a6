package programs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glmandel/viewport"
)

const (
	DefaultMaxIterations = 3000
	MinIterations        = 1
	MaxIterations        = 10000
)

// Uniforms is uploaded field by field to the uniform named in its tag.
type Uniforms struct {
	ViewportDimensions mgl32.Vec2    `uniform:"viewportDimensions"`
	MinR               float64       `uniform:"minR"`
	MaxR               float64       `uniform:"maxR"`
	MinI               float64       `uniform:"minI"`
	MaxI               float64       `uniform:"maxI"`
	ColorMode          int32         `uniform:"colorMode"`
	MaxIterations      float32       `uniform:"maxIterations"`
	Palette            [4]mgl32.Vec3 `uniform:"palette"`
}

func (u *Uniforms) DefaultValues() {
	*u = Uniforms{}
	u.SetColorMode(0)
	u.MaxIterations = DefaultMaxIterations
}

// SetBounds copies the view rectangle and surface size in.
func (u *Uniforms) SetBounds(view *viewport.State) {
	w, h := view.Size()
	b := view.Bounds()

	u.ViewportDimensions = mgl32.Vec2{float32(w), float32(h)}
	u.MinR, u.MaxR = b.MinR, b.MaxR
	u.MinI, u.MaxI = b.MinI, b.MaxI
}

func (u *Uniforms) Bounds() viewport.Rect {
	return viewport.Rect{MinR: u.MinR, MaxR: u.MaxR, MinI: u.MinI, MaxI: u.MaxI}
}

// SetColorMode selects a scheme by index, wrapping out of range values to 0.
func (u *Uniforms) SetColorMode(mode int) {
	if mode < 0 || mode >= len(Schemes) {
		mode = 0
	}
	u.ColorMode = int32(mode)
	u.Palette = Schemes[mode].params()
}

// ClampIterations limits n to what the renderers accept.
func ClampIterations(n int) int {
	return min(max(n, MinIterations), MaxIterations)
}
