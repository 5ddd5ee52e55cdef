package shadow

import (
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Tracer traces a line through the world and returns the fraction of it
// that is unobstructed.
type Tracer interface {
	Trace(from, to math.Vec3) float32
}

// Config configures a Caster.
type Config struct {
	Store     *Store
	Backend   Backend
	Tracer    Tracer // nil disables the occlusion check
	SkyVector [3]float32
	MaxFaces  int
	Extrude   float32
	Enabled   bool
}

// Stats counts the work of a Caster since the last reset.
type Stats struct {
	Volumes int
	Polys   int
	Skips   map[SkipReason]int
}

// Caster draws the shadow volumes of posed studio models.
type Caster struct {
	store   *Store
	backend Backend
	tracer  Tracer
	emitter *Emitter
	dir     [3]float32
	enabled bool
	stats   Stats
}

// NewCaster creates a caster.
func NewCaster(cfg Config) *Caster {
	em := NewEmitter(cfg.Backend)
	if cfg.MaxFaces > 0 {
		em.MaxFaces = cfg.MaxFaces
	}
	if cfg.Extrude > 0 {
		em.Extrude = cfg.Extrude
	}
	store := cfg.Store
	if store == nil {
		store = NewStore("")
	}
	return &Caster{
		store:   store,
		backend: cfg.Backend,
		tracer:  cfg.Tracer,
		emitter: em,
		dir:     cfg.SkyVector,
		enabled: cfg.Enabled,
		stats:   Stats{Skips: make(map[SkipReason]int)},
	}
}

// CheckStencil disables shadows for the session when the framebuffer has no
// stencil bits.
func (c *Caster) CheckStencil(bits int) bool {
	if bits < 1 {
		c.enabled = false
		logger.ErrorOnce("shadow-stencil", "failed to enable shadows, the window has no stencil buffer",
			zap.Int("stencil_bits", bits))
		return false
	}
	return true
}

// Enabled reports whether shadows are drawn.
func (c *Caster) Enabled() bool { return c.enabled }

// SetEnabled turns shadows on or off.
func (c *Caster) SetEnabled(on bool) { c.enabled = on }

// SetSkyVector sets the sun vector; zero selects the default direction.
func (c *Caster) SetSkyVector(v [3]float32) { c.dir = v }

// Store returns the topology store.
func (c *Caster) Store() *Store { return c.store }

// Stats returns the counters since the last reset.
func (c *Caster) Stats() Stats {
	s := c.stats
	s.Skips = make(map[SkipReason]int, len(c.stats.Skips))
	for k, v := range c.stats.Skips {
		s.Skips[k] = v
	}
	return s
}

// ResetStats clears the counters.
func (c *Caster) ResetStats() {
	c.stats = Stats{Skips: make(map[SkipReason]int)}
}

// Cast draws the shadow of e posed by t.
func (c *Caster) Cast(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, viewOrigin math.Vec3) {
	c.Draw(e, m, t, viewOrigin)
}

// Draw draws the shadow of e and reports why nothing was drawn, if so.
func (c *Caster) Draw(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, viewOrigin math.Vec3) SkipReason {
	reason := c.draw(e, m, t, viewOrigin)
	if reason != SkipNone {
		c.stats.Skips[reason]++
	}
	return reason
}

func (c *Caster) draw(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, viewOrigin math.Vec3) SkipReason {
	if !c.enabled {
		return SkipDisabled
	}
	if c.tracer != nil && c.tracer.Trace(e.Origin, viewOrigin) < 1 {
		return SkipOccluded
	}

	topo := c.store.Ensure(m)
	if topo == nil {
		return SkipNoTopology
	}

	dir := Direction(c.dir)
	c.backend.Begin()
	defer c.backend.End()

	drawn := false
	reason := SkipEmpty
	base := 0
	for i := range m.BodyParts {
		bp := &m.BodyParts[i]
		if len(bp.Models) == 0 {
			continue
		}
		idx := bp.SubModelIndex(e.Cur.Body)
		if base+idx >= len(topo.SubModels) {
			logger.WarnOnce("shadow-range:"+ModelName(m), "shadow submodel index out of range",
				zap.String("model", ModelName(m)), zap.Int("index", base+idx))
			return SkipMismatch
		}

		tris, why := c.emitter.Volume(&topo.SubModels[base+idx], &bp.Models[idx], t.Bone, dir)
		switch why {
		case SkipNone:
			drawn = true
			c.stats.Volumes++
			c.stats.Polys += tris * 2
		case SkipOversized:
			logger.WarnOnce("shadow-size:"+ModelName(m), "oversized shadow mesh", zap.String("model", ModelName(m)),
				zap.Int("faces", len(topo.SubModels[base+idx].Faces)))
			reason = why
		case SkipMismatch:
			logger.WarnOnce("shadow-stale:"+ModelName(m), "shadow topology does not match model", zap.String("model", ModelName(m)))
			reason = why
		}
		base += len(bp.Models)
	}
	if drawn {
		return SkipNone
	}
	return reason
}

// Precache makes sure every model has topology and a cache file.
func (c *Caster) Precache(models []*studio.Model) {
	n := c.store.WriteAll(models)
	logger.Debug("shadow topology precached", zap.Int("models", n), zap.Int("stored", c.store.Len()))
}
