// Package renderer provides the OpenGL hardware path: frame setup, the
// stencil capability probe, studio mesh submission and the shadow overlay.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/engine/shader"
	"github.com/Faultbox/studiorender/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	VSync  bool
}

// Stats counts submissions since the last Begin.
type Stats struct {
	SubModels int
	Triangles int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	meshProgram *shader.Program

	meshVAO uint32
	meshVBO uint32

	overlayProgram *shader.Program
	overlayVAO     uint32
	overlayVBO     uint32

	stencilBits int

	view       mgl32.Mat4
	projection mgl32.Mat4
	override   *mgl32.Mat4
	lightDir   mgl32.Vec3

	mode   int32
	chrome bool
	top    int
	bottom int

	scratch []float32
	stats   Stats
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		lightDir:   mgl32.Vec3{0.3, 0.4, 1}.Normalize(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0) // Dark blue-gray background
	gl.ClearStencil(0)

	var err error
	r.meshProgram, err = shader.Compile("mesh", meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}
	r.overlayProgram, err = shader.Compile("overlay", overlayVertexShader, overlayFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay program: %w", err)
	}

	r.createMeshBuffers()
	r.createOverlay()

	r.stencilBits = probeStencil()
	logger.Debug("stencil buffer", zap.Int("bits", r.stencilBits))

	return r, nil
}

// probeStencil returns the stencil depth of the default framebuffer.
func probeStencil() int {
	var bits int32
	gl.GetFramebufferAttachmentParameteriv(gl.FRAMEBUFFER, gl.STENCIL,
		gl.FRAMEBUFFER_ATTACHMENT_STENCIL_SIZE, &bits)
	return int(bits)
}

// StencilBits returns the stencil depth found at startup.
func (r *Renderer) StencilBits() int {
	return r.stencilBits
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, vao := range []*uint32{&r.meshVAO, &r.overlayVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
		}
	}
	for _, vbo := range []*uint32{&r.meshVBO, &r.overlayVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
		}
	}
	for _, p := range []*shader.Program{r.meshProgram, r.overlayProgram} {
		if p != nil {
			p.Delete()
		}
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// ReadPixels returns the bottom-up RGBA contents of the viewport.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// SetCamera sets the view and projection of the following submissions.
func (r *Renderer) SetCamera(view, projection mgl32.Mat4) {
	r.view = view
	r.projection = projection
}

// SetLightDirection sets the direction toward the light used for shading.
func (r *Renderer) SetLightDirection(dir mgl32.Vec3) {
	r.lightDir = dir.Normalize()
}

// ViewProjection returns the camera matrix shadow volumes are drawn with.
func (r *Renderer) ViewProjection() mgl32.Mat4 {
	return r.projection.Mul4(r.view)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.stats = Stats{}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// Stats returns the counters of the current frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// DrawShadowOverlay darkens every pixel with a non-zero stencil value.
func (r *Renderer) DrawShadowOverlay(shade float32) {
	if r.stencilBits < 1 {
		return
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilFunc(gl.NOTEQUAL, 0, ^uint32(0))
	gl.StencilOp(gl.KEEP, gl.KEEP, gl.KEEP)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.overlayProgram.Use()
	gl.Uniform1f(r.overlayProgram.Uniform("uShade"), shade)
	gl.BindVertexArray(r.overlayVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Disable(gl.STENCIL_TEST)
	gl.Enable(gl.DEPTH_TEST)
}

// createMeshBuffers creates the streaming buffer for posed meshes.
func (r *Renderer) createMeshBuffers() {
	gl.GenVertexArrays(1, &r.meshVAO)
	gl.BindVertexArray(r.meshVAO)

	gl.GenBuffers(1, &r.meshVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.meshVBO)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, floatsPerVertex*4, nil)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, floatsPerVertex*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("mesh buffers created",
		zap.Uint32("vao", r.meshVAO),
		zap.Uint32("vbo", r.meshVBO),
	)
}

// createOverlay creates the full screen quad used by DrawShadowOverlay.
func (r *Renderer) createOverlay() {
	vertices := []float32{
		-1, -1,
		1, -1,
		-1, 1,
		1, 1,
	}

	gl.GenVertexArrays(1, &r.overlayVAO)
	gl.BindVertexArray(r.overlayVAO)

	gl.GenBuffers(1, &r.overlayVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.overlayVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// upload streams interleaved position/normal floats into the mesh buffer.
func (r *Renderer) upload(data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, r.meshVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
}

func (r *Renderer) useMeshProgram(color mgl32.Vec4, lit bool) {
	vp := r.ViewProjection()
	if r.override != nil {
		vp = r.override.Mul4(r.view)
	}
	p := r.meshProgram
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uViewProj"), 1, false, &vp[0])
	gl.Uniform4f(p.Uniform("uColor"), color[0], color[1], color[2], color[3])
	var l int32
	if lit {
		l = 1
	}
	gl.Uniform1i(p.Uniform("uLit"), l)
	gl.Uniform3f(p.Uniform("uLightDir"), r.lightDir[0], r.lightDir[1], r.lightDir[2])
	gl.BindVertexArray(r.meshVAO)
}
