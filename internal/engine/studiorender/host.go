// Package studiorender drives studio model drawing for one frame: it places
// each entity, evaluates its pose, composes the skeleton, and hands the result
// to the rasterizer and the shadow caster.
package studiorender

import (
	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Flags select the work done by a draw call.
type Flags int

const (
	// FlagRender culls, lights and rasterizes the model.
	FlagRender Flags = 1 << iota
	// FlagEvents computes attachment points.
	FlagEvents
)

// Frame is the host state shared by every draw of one frame.
type Frame struct {
	Count int     // Host frame counter
	Now   float64 // Client time in seconds
	Prev  float64 // Client time of the previous frame

	View   skeleton.View
	FOV    float32 // Horizontal field of view of the world, degrees
	Width  int     // Viewport size in pixels
	Height int
}

// Host is the engine side of the renderer.
type Host interface {
	// Frame returns the timing and camera of the current frame.
	Frame() Frame

	// Model resolves a model index. Index 0 and unknown indices return nil.
	Model(index int) *studio.Model

	// PlayerModel returns the model used to draw player slot (0-based).
	PlayerModel(slot int) *studio.Model

	// CheckBBox reports whether the model at the entity placement is visible.
	CheckBBox(e *entity.Entity, m *studio.Model) bool

	// SetRemapColors sets the palette remap used for the next submission.
	SetRemapColors(top, bottom int)
}

// Rasterizer submits posed geometry.
type Rasterizer interface {
	SetupRenderer(mode entity.RenderMode)
	RestoreRenderer()

	// SetChrome forces every face to the chrome shader, as used by the
	// glow shell pass.
	SetChrome(on bool)

	// SetProjection overrides the projection for the next submission.
	SetProjection(p math.Mat4)

	DrawSubModel(e *entity.Entity, m *studio.Model, part, sub int, t *skeleton.Transforms)
	DrawBones(m *studio.Model, t *skeleton.Transforms)
	DrawHulls(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, additive bool)
	DrawAbsBBox(e *entity.Entity, m *studio.Model)
}

// ShadowCaster draws stencil shadow volumes for posed models.
type ShadowCaster interface {
	// Enabled reports whether shadows can be drawn this session.
	Enabled() bool

	// Cast draws the shadow of m posed by t. viewOrigin is the camera.
	Cast(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, viewOrigin math.Vec3)

	// Precache builds and stores shadow data for models.
	Precache(models []*studio.Model)
}
