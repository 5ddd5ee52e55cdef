package studiorender

import (
	gomath "math"

	"github.com/Faultbox/studiorender/internal/engine/anim"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
)

// minGaitSpeed is the origin speed below which a player counts as standing.
const minGaitSpeed = 5

// frameDelta returns the time since the previous frame, clamped to [0, 1].
func (r *Renderer) frameDelta() float64 {
	dt := r.frame.Now - r.frame.Prev
	if dt < 0 {
		return 0
	}
	if dt > 1 {
		return 1
	}
	return dt
}

// truncMod folds v by whole multiples of m toward zero.
func truncMod(v, m float32) float32 {
	return v - float32(int(v/m))*m
}

// estimateGait measures how far the player moved since the last frame and
// turns the gait yaw toward the movement direction. Standing players turn the
// legs slowly toward where they look.
func (r *Renderer) estimateGait(state *entity.State) {
	e, p := r.cur, r.player
	dt := float32(r.frameDelta())

	if dt == 0 || p.RenderFrame == r.frame.Count {
		r.gaitMovement = 0
		return
	}

	var est math.Vec3
	if r.opts.GaitFromVelocity {
		est = state.Velocity
		r.gaitMovement = est.Length() * dt
	} else {
		est = e.Origin.Sub(p.PrevGaitOrigin)
		p.PrevGaitOrigin = e.Origin
		r.gaitMovement = est.Length()
		if r.gaitMovement/dt < minGaitSpeed {
			r.gaitMovement = 0
			est[0], est[1] = 0, 0
		}
	}

	if est[0] == 0 && est[1] == 0 {
		diff := truncMod(e.Angles[math.Yaw]-p.GaitYaw, 360)
		if diff > 180 {
			diff -= 360
		}
		if diff < -180 {
			diff += 360
		}

		if dt < 0.25 {
			diff *= dt * 4
		} else {
			diff *= dt
		}

		p.GaitYaw = math.WrapAngle(p.GaitYaw + diff)
		r.gaitMovement = 0
		return
	}

	p.GaitYaw = float32(gomath.Atan2(float64(est[1]), float64(est[0])) * 180 / gomath.Pi)
	p.GaitYaw = math.Clamp(p.GaitYaw, -180, 180)
}

// torsoController maps the look yaw relative to the legs onto a controller
// byte: +-30 degrees of torso twist over the full byte range, split across
// four spine controllers.
func torsoController(yaw float32) uint8 {
	v := (yaw/4 + 30) * 255 / 60
	return uint8(math.Clamp(v, 0, 255))
}

// processGait drives the legs of a player independently of the body: aim
// pitch selects the blend, the torso twists toward the view, and the gait
// frame advances with the distance walked.
func (r *Renderer) processGait(state *entity.State) {
	e, m, p := r.cur, r.model, r.player

	seq := r.sequence(m)

	blend, pitch := anim.PlayerBlend(seq, e.Angles[math.Pitch])
	e.Angles[math.Pitch] = pitch
	e.Latched.PrevAngles[math.Pitch] = pitch
	e.Cur.Blending[0] = blend
	e.Latched.PrevBlending[0] = blend
	e.Latched.PrevSeqBlending[0] = blend

	dt := r.frameDelta()
	r.estimateGait(state)

	// Side to side turning.
	yaw := truncMod(e.Angles[math.Yaw]-p.GaitYaw, 360)
	if yaw < -180 {
		yaw += 360
	}
	if yaw > 180 {
		yaw -= 360
	}

	// Walk backwards rather than twist past 120 degrees.
	if yaw > 120 {
		p.GaitYaw = math.WrapAngle(p.GaitYaw - 180)
		r.gaitMovement = -r.gaitMovement
		yaw -= 180
	} else if yaw < -120 {
		p.GaitYaw = math.WrapAngle(p.GaitYaw + 180)
		r.gaitMovement = -r.gaitMovement
		yaw += 180
	}

	ctl := torsoController(yaw)
	for i := range e.Cur.Controller {
		e.Cur.Controller[i] = ctl
		e.Latched.PrevController[i] = ctl
	}

	e.Angles[math.Yaw] = p.GaitYaw
	if e.Angles[math.Yaw] < 0 {
		e.Angles[math.Yaw] += 360
	}
	e.Latched.PrevAngles[math.Yaw] = e.Angles[math.Yaw]

	if state.GaitSequence < 0 || state.GaitSequence >= len(m.Sequences) {
		state.GaitSequence = 0
	}
	gseq := m.Sequence(state.GaitSequence)
	if gseq == nil || gseq.NumFrames <= 0 {
		return
	}

	n := float64(gseq.NumFrames)
	if gseq.LinearMovement[0] > 0 {
		p.GaitFrame += float64(r.gaitMovement/gseq.LinearMovement[0]) * n
	} else {
		p.GaitFrame += float64(gseq.FPS) * dt
	}

	p.GaitFrame -= float64(int(p.GaitFrame/n)) * n
	if p.GaitFrame < 0 {
		p.GaitFrame += n
	}
}
