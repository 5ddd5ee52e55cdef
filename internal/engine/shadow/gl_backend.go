package shadow

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/studiorender/internal/engine/shader"
)

const volumeVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const volumeFragmentShader = `
#version 410 core

out vec4 FragColor;

void main() {
	FragColor = vec4(0.0);
}
`

// GLBackend draws shadow volumes with the z-pass stencil method.
// IMPORTANT: Must be created AFTER the OpenGL context.
type GLBackend struct {
	program *shader.Program
	vao     uint32
	vbo     uint32
	ebo     uint32
	matrix  mgl32.Mat4
}

// NewGLBackend compiles the volume program and allocates its buffers.
func NewGLBackend() (*GLBackend, error) {
	program, err := shader.Compile("shadow volume", volumeVertexShader, volumeFragmentShader)
	if err != nil {
		return nil, err
	}
	b := &GLBackend{
		program: program,
		matrix:  mgl32.Ident4(),
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b, nil
}

// SetViewProjection sets the matrix volumes are drawn with.
func (b *GLBackend) SetViewProjection(m mgl32.Mat4) {
	b.matrix = m
}

// Begin implements Backend.
func (b *GLBackend) Begin() {
	gl.DepthMask(false)
	gl.ColorMask(false, false, false, false)
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilFunc(gl.ALWAYS, 0, ^uint32(0))
	gl.Enable(gl.CULL_FACE)

	b.program.Use()
	gl.UniformMatrix4fv(b.program.Uniform("uViewProj"), 1, false, &b.matrix[0])
	gl.BindVertexArray(b.vao)
}

// Draw implements Backend.
func (b *GLBackend) Draw(vertices []mgl32.Vec3, indices []uint16, pass Pass) {
	if len(vertices) == 0 || len(indices) == 0 {
		return
	}
	if pass == PassIncrement {
		// Both passes share the buffers.
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*3*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, unsafe.Pointer(&indices[0]), gl.STREAM_DRAW)

		gl.StencilOp(gl.KEEP, gl.KEEP, gl.INCR)
		gl.CullFace(gl.BACK)
	} else {
		gl.StencilOp(gl.KEEP, gl.KEEP, gl.DECR)
		gl.CullFace(gl.FRONT)
	}
	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_SHORT, nil)
}

// End implements Backend.
func (b *GLBackend) End() {
	gl.BindVertexArray(0)
	gl.CullFace(gl.BACK)
	gl.Disable(gl.CULL_FACE)
	gl.DepthMask(true)
	gl.ColorMask(true, true, true, true)
	gl.Disable(gl.STENCIL_TEST)
}

// Destroy releases the GPU resources.
func (b *GLBackend) Destroy() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
	if b.program != nil {
		b.program.Delete()
		b.program = nil
	}
}
