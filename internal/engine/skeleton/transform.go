package skeleton

import (
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
)

// SetUpTransform returns the model rotation and position of e at now.
//
// Step-moving entities extrapolate from their previous replicated placement;
// the current placement is reached one update interval after it was set.
// Pitch is negated because models are authored with pitch up.
func SetUpTransform(e *entity.Entity, now float64, interp bool) (math.Mat34, math.Vec3) {
	modelPos := e.Origin
	angles := e.Cur.Angles

	switch e.Cur.MoveType {
	case entity.MoveStep:
		var f float64
		animTime, prev := e.Cur.AnimTime, e.Latched.PrevAnimTime
		if now < animTime+1 && animTime != prev {
			f = (now - animTime) / (animTime - prev)
		}
		if interp {
			f -= 1
		} else {
			f = 0
		}
		ff := float32(f)

		modelPos = modelPos.Add(e.Origin.Sub(e.Latched.PrevOrigin).Scale(ff))

		for i := 0; i < 3; i++ {
			d := e.Angles[i] - e.Latched.PrevAngles[i]
			if d > 180 {
				d -= 360
			} else if d < -180 {
				d += 360
			}
			angles[i] += d * ff
		}
	case entity.MoveNone:
	default:
		angles = e.Angles
	}

	angles[math.Pitch] = -angles[math.Pitch]
	return math.AngleMatrix(angles), modelPos
}
