package game

import (
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

type remapper interface {
	SetRemapColors(top, bottom int)
}

// host is the viewer side of the studio renderer.
type host struct {
	frame  studiorender.Frame
	models ModelSource
	remap  remapper
}

func (h *host) Frame() studiorender.Frame { return h.frame }

func (h *host) Model(index int) *studio.Model {
	if index <= 0 {
		return nil
	}
	return h.models.Model(index)
}

// PlayerModel returns nil; the viewer has no player slots.
func (h *host) PlayerModel(int) *studio.Model { return nil }

// CheckBBox accepts every model; the viewer keeps the whole row in view.
func (h *host) CheckBBox(*entity.Entity, *studio.Model) bool { return true }

func (h *host) SetRemapColors(top, bottom int) {
	if h.remap != nil {
		h.remap.SetRemapColors(top, bottom)
	}
}

// groundTracer blocks the line of sight where it passes through the ground
// plane.
type groundTracer struct {
	z float32
}

// Trace returns the fraction of from..to above the ground, 1 if to is not
// below it. A start below the ground counts as on it.
func (g groundTracer) Trace(from, to math.Vec3) float32 {
	a, b := max(from[2]-g.z, 0), to[2]-g.z
	if b >= 0 {
		return 1
	}
	return a / (a - b)
}
