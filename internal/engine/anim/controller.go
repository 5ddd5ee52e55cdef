package anim

import (
	gomath "math"

	"github.com/Faultbox/studiorender/pkg/studio"
)

// Adjustments holds the resolved value of each bone controller: radians for
// rotation controllers, units for translation controllers.
type Adjustments [studio.MaxControllers]float32

// Controls are the per-entity inputs to bone controller resolution.
type Controls struct {
	Current  [4]uint8
	Previous [4]uint8
	Mouth    uint8
	Dadt     float32 // Interpolant between Previous (0) and Current (1)
}

// BoneAdjust resolves every controller of the model for the given controls.
//
// Controllers 0..3 map a byte range onto [Start, End]. Looping rotation
// controllers wrap modulo 256 when the two samples straddle the seam. The
// mouth controller maps the mouth value over 64 steps.
func BoneAdjust(ctls []studio.BoneController, c Controls) Adjustments {
	var adj Adjustments
	for j := range ctls {
		if j >= len(adj) {
			break
		}
		ctl := &ctls[j]
		i := ctl.Index

		var value float32
		if i < studio.MouthController {
			cur, prev := float32(c.Current[i]), float32(c.Previous[i])
			if ctl.Type&studio.MotionRLoop != 0 {
				if gomath.Abs(float64(cur-prev)) > 128 {
					a := float32((int(c.Current[i]) + 128) % 256)
					b := float32((int(c.Previous[i]) + 128) % 256)
					value = (a*c.Dadt+b*(1-c.Dadt)-128)*(360.0/256.0) + ctl.Start
				} else {
					value = (cur*c.Dadt+prev*(1-c.Dadt))*(360.0/256.0) + ctl.Start
				}
			} else {
				value = (cur*c.Dadt + prev*(1-c.Dadt)) / 255
				value = clamp01(value)
				value = (1-value)*ctl.Start + value*ctl.End
			}
		} else {
			value = float32(c.Mouth) / 64
			if value > 1 {
				value = 1
			}
			value = (1-value)*ctl.Start + value*ctl.End
		}

		switch ctl.Type & studio.MotionTypes {
		case studio.MotionXR, studio.MotionYR, studio.MotionZR:
			adj[j] = value * (gomath.Pi / 180)
		case studio.MotionX, studio.MotionY, studio.MotionZ:
			adj[j] = value
		}
	}
	return adj
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
