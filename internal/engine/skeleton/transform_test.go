package skeleton

import (
	"testing"

	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
)

func TestSetUpTransformStatic(t *testing.T) {
	e := entity.NewEntity(1, 1, math.Vec3{1, 2, 3})
	e.Cur.MoveType = entity.MoveNone
	e.Cur.Angles = math.Vec3{10, 20, 0}
	e.Angles = math.Vec3{50, 60, 0}

	rot, pos := SetUpTransform(e, 1, true)
	if pos != (math.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", pos)
	}
	want := math.AngleMatrix(math.Vec3{-10, 20, 0})
	if !matNear(rot, want) {
		t.Errorf("rotation should use replicated angles with pitch negated")
	}
}

func TestSetUpTransformWalkUsesInterpolatedAngles(t *testing.T) {
	e := entity.NewEntity(1, 1, math.Vec3{})
	e.Cur.MoveType = entity.MoveWalk
	e.Cur.Angles = math.Vec3{10, 20, 0}
	e.Angles = math.Vec3{0, 45, 0}

	rot, _ := SetUpTransform(e, 1, true)
	if !matNear(rot, math.AngleMatrix(math.Vec3{0, 45, 0})) {
		t.Error("walking entities should use their interpolated angles")
	}
}

func TestSetUpTransformStep(t *testing.T) {
	e := entity.NewEntity(1, 1, math.Vec3{})
	e.Cur.MoveType = entity.MoveStep
	e.Cur.AnimTime = 1.0
	e.Latched.PrevAnimTime = 0.9
	e.Latched.PrevOrigin = math.Vec3{0, 0, 0}
	e.Origin = math.Vec3{10, 0, 0}
	e.Latched.PrevAngles = math.Vec3{0, 170, 0}
	e.Angles = math.Vec3{0, -170, 0}
	e.Cur.Angles = math.Vec3{0, -170, 0}

	// Halfway through the update interval: f = 0.5 - 1 = -0.5.
	_, pos := SetUpTransform(e, 1.05, true)
	if pos.Sub(math.Vec3{5, 0, 0}).Length() > 0.001 {
		t.Errorf("position = %v, want (5, 0, 0)", pos)
	}

	rot, _ := SetUpTransform(e, 1.05, true)
	// Yaw moves the short way across 180: -170 + 20*-0.5 = -180.
	if !matNear(rot, math.AngleMatrix(math.Vec3{0, -180, 0})) {
		t.Error("yaw should interpolate across the wrap")
	}

	_, pos = SetUpTransform(e, 1.05, false)
	if pos != (math.Vec3{10, 0, 0}) {
		t.Errorf("without interpolation position = %v, want current origin", pos)
	}
}
