// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// StencilSize is the stencil depth requested for shadow volumes.
const StencilSize = 8

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	NoStencil  bool
}

// Window wraps the SDL2 window and its OpenGL 4.1 core context.
type Window struct {
	config      Config
	sdlWindow   *sdl.Window
	glContext   sdl.GLContext
	stencilBits int
}

// New creates a window with an OpenGL context. When the driver cannot
// provide a stencil buffer the window is created without one; shadows
// then disable themselves at the capability check.
func New(cfg Config) (*Window, error) {
	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "SDL_Init")
	}

	w := &Window{config: cfg}
	err := w.create(!cfg.NoStencil)
	if err != nil && !cfg.NoStencil {
		logger.Warn("no context with a stencil buffer, retrying without", zap.Error(err))
		err = w.create(false)
	}
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	if bits, err := sdl.GLGetAttribute(sdl.GL_STENCIL_SIZE); err == nil {
		w.stencilBits = bits
	}

	swap := 0
	if cfg.VSync {
		swap = 1
	}
	if err := sdl.GLSetSwapInterval(swap); err != nil {
		logger.Warn("failed to set swap interval", zap.Int("interval", swap), zap.Error(err))
	}

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("stencil_bits", w.stencilBits),
	)
	return w, nil
}

func (w *Window) create(stencil bool) error {
	// Attributes must be set before the window exists.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	if stencil {
		sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, StencilSize)
	} else {
		sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 0)
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE)
	if w.config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	win, err := sdl.CreateWindow(w.config.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(w.config.Width), int32(w.config.Height), flags)
	if err != nil {
		return errors.Wrap(err, "SDL_CreateWindow")
	}
	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		return errors.Wrap(err, "SDL_GL_CreateContext")
	}
	w.sdlWindow, w.glContext = win, ctx
	return nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	logger.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// SwapBuffers presents the frame.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the drawable size in pixels.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// StencilBits returns the stencil depth SDL reported for the context.
func (w *Window) StencilBits() int {
	return w.stencilBits
}
