package entity

import "github.com/Faultbox/studiorender/pkg/math"

// PlayerInfo is the per-player data kept across frames: remap colors and the
// independent leg animation.
type PlayerInfo struct {
	Name        string
	Model       int // Model index of the player model, 0 for the entity's own
	TopColor    int
	BottomColor int

	// Gait
	GaitSequence   int
	GaitFrame      float64
	GaitYaw        float32
	PrevGaitOrigin math.Vec3
	RenderFrame    int // Host frame count of the last draw
}

// RemapColors returns top and bottom colors clamped to the palette range.
func (p *PlayerInfo) RemapColors() (top, bottom int) {
	return clampColor(p.TopColor), clampColor(p.BottomColor)
}

// ColorMap splits a packed color map into top and bottom colors.
func ColorMap(cm int32) (top, bottom int) {
	return int(cm & 0xFF), int((cm & 0xFF00) >> 8)
}

func clampColor(c int) int {
	if c < 0 {
		return 0
	}
	if c > 254 {
		return 254
	}
	return c
}
