// Package gpu draws the fractal with OpenGL into whatever context is current.
package gpu

import (
	"errors"
	"fmt"
	"image"
	"log"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/glmandel/programs"
)

// ErrShader is wrapped by compile and link failures, with the driver's log.
var ErrShader = errors.New("shader rejected by the driver")

// Init loads the GL functions for the current context. With debug set, driver
// messages are logged.
func Init(debug bool) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl.Init: %w", err)
	}
	log.Println("OpenGL version", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.DebugMessageCallback(glDebugMessage, nil)
	if debug {
		gl.Enable(gl.DEBUG_OUTPUT)
	}
	return nil
}

// Renderer owns the GL objects for one context. Its methods must be called
// with that context current.
type Renderer struct {
	vao              uint32
	vbo              uint32
	program          uint32
	vertexAttrib     uint32
	uniformLocations map[string]int32

	width, height int
}

// New uploads the triangle that covers the screen.
func New() *Renderer {
	r := &Renderer{}

	verticies := []float32{
		-3, -2,
		0, 3,
		3, -2,
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verticies)*4, gl.Ptr(verticies), gl.STATIC_DRAW)

	return r
}

// Load compiles and links sources. The previous program is kept if that fails.
func (r *Renderer) Load(sources programs.Sources) error {
	vertexShader, err := compileShader(sources.Vertex+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(sources.Fragment+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.BindFragDataLocation(program, 0, gl.Str("outputColor\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(program, l, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return fmt.Errorf("%w: link: %v", ErrShader, strings.TrimRight(log, "\x00"))
	}

	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
	r.program = program
	gl.UseProgram(r.program)

	r.uniformLocations = make(map[string]int32)
	t := reflect.TypeOf(programs.Uniforms{})
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("uniform")
		r.uniformLocations[name] = gl.GetUniformLocation(r.program, gl.Str(name+"\x00"))
	}

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	r.vertexAttrib = uint32(gl.GetAttribLocation(r.program, gl.Str("vert\x00")))
	gl.EnableVertexAttribArray(r.vertexAttrib)
	gl.VertexAttribPointerWithOffset(r.vertexAttrib, 2, gl.FLOAT, false, 2*4, 0)

	return nil
}

func (r *Renderer) Viewport(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw renders one frame with uniforms.
func (r *Renderer) Draw(uniforms *programs.Uniforms) {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.program == 0 {
		return
	}

	gl.UseProgram(r.program)
	r.loadUniforms(uniforms)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

// ReadPixels copies the framebuffer into an image, top row first.
func (r *Renderer) ReadPixels() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if r.width == 0 || r.height == 0 {
		return img
	}

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	// GL rows start at the bottom
	stride := img.Stride
	row := make([]byte, stride)
	for y := 0; y < r.height/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bottom := img.Pix[(r.height-1-y)*stride : (r.height-y)*stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
	return img
}

func (r *Renderer) Delete() {
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
}

func (r *Renderer) loadUniforms(uniforms *programs.Uniforms) {
	v := reflect.ValueOf(uniforms).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)

		ptr := f.Addr().UnsafePointer()
		loc := r.uniformLocations[v.Type().Field(i).Tag.Get("uniform")]

		count := int32(1)

	SwitchElem:
		switch f.Type() {
		case reflect.TypeOf(mgl32.Vec2{}):
			gl.Uniform2fv(loc, count, (*float32)(ptr))
			continue
		case reflect.TypeOf(mgl32.Vec3{}):
			gl.Uniform3fv(loc, count, (*float32)(ptr))
			continue
		case reflect.TypeOf(mgl32.Vec4{}):
			gl.Uniform4fv(loc, count, (*float32)(ptr))
			continue
		case reflect.TypeOf(mgl64.Vec2{}):
			gl.Uniform2dv(loc, count, (*float64)(ptr))
			continue
		case reflect.TypeOf(int32(0)):
			gl.Uniform1iv(loc, count, (*int32)(ptr))
			continue
		case reflect.TypeOf(float32(0)):
			gl.Uniform1fv(loc, count, (*float32)(ptr))
			continue
		case reflect.TypeOf(float64(0)):
			gl.Uniform1dv(loc, count, (*float64)(ptr))
			continue
		}

		if f.Kind() == reflect.Array {
			count = int32(f.Len())
			f = f.Index(0)
			goto SwitchElem
		}

		log.Printf("unsupported uniform type %v", f.Type())
	}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: compile: %v", ErrShader, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}
