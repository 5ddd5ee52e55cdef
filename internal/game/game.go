// Package game runs the model viewer: it loads the configured models, stands
// them on a ground plane and draws them with stencil shadows every frame.
package game

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/assets"
	"github.com/Faultbox/studiorender/internal/config"
	"github.com/Faultbox/studiorender/internal/engine/camera"
	"github.com/Faultbox/studiorender/internal/engine/debug"
	"github.com/Faultbox/studiorender/internal/engine/input"
	"github.com/Faultbox/studiorender/internal/engine/renderer"
	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
	"github.com/Faultbox/studiorender/internal/engine/window"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/internal/inspect"
	"github.com/Faultbox/studiorender/internal/logger"
)

const (
	groundHalfSize = 2048
	shadowShade    = 0.45
	sunStep        = 5 // Degrees per key press
	windowTitle    = "Studio Model Viewer"
)

// Game is the viewer instance.
type Game struct {
	cfg     *config.Config
	running bool
	paused  bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	assets   *assets.Manager
	ents     *entity.Manager
	scene    *Scene
	host     *host
	studio   *studiorender.Renderer
	backend  *shadow.GLBackend
	shadows  *shadow.Caster
	stencil  bool
	sky      [3]float32
	shots    *debug.ScreenshotCapture
	inspect  *inspect.Server
	frameNum int
	now      float64
}

// New creates the window and renderers and loads the configured models.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.String("game_dir", cfg.Data.GameDir),
	)

	g := &Game{
		cfg:    cfg,
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		assets: assets.NewManager(),
		ents:   entity.NewManager(0),
		sky:    SkyVector(&cfg.Shadow),
		shots:  debug.NewScreenshotCapture("screenshots", "studio"),
	}
	g.camera.FOV = cfg.Animation.DefaultFOV

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Fullscreen: cfg.Render.Fullscreen,
		VSync:      cfg.Render.VSync,
		NoStencil:  !cfg.Shadow.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := g.window.Size()
	g.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
		VSync:  cfg.Render.VSync,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := g.initShadows(); err != nil {
		g.Close()
		return nil, err
	}

	if !cfg.Render.Hardware {
		logger.Warn("the viewer draws through the GPU, ignoring the software path setting")
	}
	g.host = &host{models: g.assets, remap: g.renderer}
	g.studio = studiorender.New(studiorender.Config{
		Host:     g.host,
		Raster:   g.renderer,
		Entities: g.ents,
		Shadows:  g.shadows,
		Hardware: true,
		Options:  RenderOptions(cfg),
	})

	g.loadScene()
	g.studio.RequestPrecache()

	if cfg.Inspect.Enabled {
		g.inspect = inspect.NewServer()
	}

	logger.Info("viewer initialized", zap.Int("models", g.assets.Count()))
	return g, nil
}

func (g *Game) initShadows() error {
	var err error
	g.backend, err = shadow.NewGLBackend()
	if err != nil {
		return fmt.Errorf("failed to create shadow backend: %w", err)
	}

	cacheDir := ""
	if g.cfg.Shadow.CacheDir != "" {
		cacheDir = filepath.Join(g.cfg.Data.GameDir, g.cfg.Shadow.CacheDir)
	}
	var tracer shadow.Tracer
	if g.cfg.Shadow.OcclusionCheck {
		tracer = groundTracer{}
	}
	g.shadows = shadow.NewCaster(shadow.Config{
		Store:     shadow.NewStore(cacheDir),
		Backend:   g.backend,
		Tracer:    tracer,
		SkyVector: g.sky,
		MaxFaces:  g.cfg.Shadow.MaxFaces,
		Extrude:   g.cfg.Shadow.ExtrudeDistance,
		Enabled:   g.cfg.Shadow.Enabled,
	})
	g.stencil = g.shadows.CheckStencil(g.renderer.StencilBits())
	g.renderer.SetLightDirection(shadow.Direction(g.sky))
	return nil
}

// loadScene loads every configured model and frames the camera on them.
func (g *Game) loadScene() {
	g.assets.AddSearchPath(g.cfg.Data.GameDir)
	g.scene = NewScene(g.ents, g.assets)

	for _, path := range g.cfg.Data.Models {
		idx, _, err := g.assets.LoadModel(path)
		if err != nil {
			logger.Error("failed to load model", zap.String("path", path), zap.Error(err))
			continue
		}
		g.scene.Add(idx, g.now)
	}
	if g.ents.Count() > 0 {
		g.camera.FitToBounds(g.scene.Bounds())
	}
}

// Run starts the main loop. It returns when the window closes or ctx ends.
func (g *Game) Run(ctx context.Context) error {
	g.running = true

	if g.inspect != nil {
		go func() {
			if err := g.inspect.ListenAndServe(ctx, g.cfg.Inspect.Addr); err != nil {
				logger.Error("inspector stopped", zap.Error(err))
			}
		}()
	}

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	var frameBudget time.Duration
	if g.cfg.Render.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(g.cfg.Render.FPSLimit)
	}

	logger.Info("starting viewer loop")

	for g.running {
		select {
		case <-ctx.Done():
			g.running = false
			continue
		default:
		}

		// Calculate delta time
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		g.handleInput()

		// 2. Update scene
		prev := g.now
		if !g.paused {
			g.now += dt
		}
		g.scene.Update(g.now)

		// 3. Render
		g.render(prev)

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Int("models", g.studio.Stats().ModelsDrawn),
				zap.Int("shadow_volumes", g.shadows.Stats().Volumes),
			)
			g.window.SetTitle(fmt.Sprintf("%s - %d fps", windowTitle, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spent := time.Since(now); spent < frameBudget {
				time.Sleep(frameBudget - spent)
			}
		}
	}

	return nil
}

func (g *Game) handleInput() {
	if w, h, ok := g.input.Resized(); ok {
		g.renderer.Resize(w, h)
	}
	dx, dy := g.input.Drag()
	if dx != 0 || dy != 0 {
		g.camera.HandleDrag(dx, dy)
	}
	if wheel := g.input.Wheel(); wheel != 0 {
		g.camera.HandleZoom(wheel)
	}

	for _, a := range g.input.Actions() {
		switch a {
		case input.ActionQuit:
			g.running = false
		case input.ActionNextSequence:
			g.scene.StepSequence(1, g.now)
		case input.ActionPrevSequence:
			g.scene.StepSequence(-1, g.now)
		case input.ActionNextEntity:
			g.scene.SelectNext()
		case input.ActionNextBody:
			g.scene.NextBody()
		case input.ActionToggleShadows:
			g.toggleShadows()
		case input.ActionToggleInterp:
			opts := g.studio.Options()
			opts.Interpolate = !opts.Interpolate
			g.studio.SetOptions(opts)
		case input.ActionTogglePause:
			g.paused = !g.paused
		case input.ActionCycleDebug:
			opts := g.studio.Options()
			opts.DrawEntities = nextDebugMode(opts.DrawEntities)
			g.studio.SetOptions(opts)
			if opts.DrawEntities != 0 {
				logger.SetLevel("debug")
			} else {
				logger.SetLevel(g.cfg.Logging.Level)
			}
		case input.ActionSunLeft:
			g.turnSun(-sunStep, 0)
		case input.ActionSunRight:
			g.turnSun(sunStep, 0)
		case input.ActionSunUp:
			g.turnSun(0, sunStep)
		case input.ActionSunDown:
			g.turnSun(0, -sunStep)
		case input.ActionPrecache:
			g.studio.RequestPrecache()
		case input.ActionScreenshot:
			// Taken after the next frame is drawn.
		default:
			continue
		}
		logger.Debug("action", zap.Stringer("action", a))
	}
}

func (g *Game) toggleShadows() {
	if !g.stencil {
		logger.Warn("shadows unavailable without a stencil buffer")
		return
	}
	g.shadows.SetEnabled(!g.shadows.Enabled())
}

func (g *Game) turnSun(azimuth, elevation float32) {
	g.sky = TurnSun(g.sky, azimuth, elevation)
	g.shadows.SetSkyVector(g.sky)
	g.renderer.SetLightDirection(shadow.Direction(g.sky))
}

// render draws the current frame.
func (g *Game) render(prev float64) {
	g.frameNum++
	w, h := g.renderer.Size()
	g.host.frame = studiorender.Frame{
		Count:  g.frameNum,
		Now:    g.now,
		Prev:   prev,
		View:   g.camera.View(),
		FOV:    g.camera.FOV,
		Width:  w,
		Height: h,
	}

	g.renderer.Begin()
	g.renderer.SetCamera(g.camera.ViewMatrix(), g.camera.Projection(w, h))
	g.backend.SetViewProjection(g.renderer.ViewProjection())
	g.renderer.DrawGround(groundHalfSize, 0)

	g.studio.ResetStats()
	g.shadows.ResetStats()
	for _, e := range g.scene.Entities() {
		g.studio.DrawModel(e, studiorender.FlagRender|studiorender.FlagEvents)
	}
	if g.shadows.Enabled() {
		g.renderer.DrawShadowOverlay(shadowShade)
	}
	g.renderer.End()

	for _, a := range g.input.Actions() {
		if a == input.ActionScreenshot {
			g.screenshot()
		}
	}
	if g.inspect != nil {
		g.inspect.Publish(g.snapshot())
	}
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	name, err := g.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", name))
}

func (g *Game) snapshot() inspect.Snapshot {
	snap := inspect.Snapshot{
		Frame:    g.frameNum,
		Time:     g.now,
		Render:   g.studio.Stats(),
		Shadows:  inspect.ShadowsOf(g.shadows),
		Entities: inspect.Entities(g.ents.All(), g.assets.Model),
	}
	for i, m := range g.assets.Models() {
		snap.Models = append(snap.Models, inspect.ModelOf(i+1, m, g.shadows.Store()))
	}
	return snap
}

// Close cleans up viewer resources.
func (g *Game) Close() {
	logger.Info("closing viewer")

	if g.backend != nil {
		g.backend.Destroy()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
	g.assets.Close()
}
