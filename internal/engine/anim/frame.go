package anim

import "github.com/Faultbox/studiorender/pkg/studio"

// Timing constants in seconds.
const (
	// LatencyWindow is the time over which a replicated value is reached.
	LatencyWindow = 0.1
	// TransitionWindow is how long a sequence change cross-fades.
	TransitionWindow = 0.2
)

// EstimateInterpolant returns how far the entity is between its previous and
// current replicated state, as a multiple of the latency window. It is 1
// without interpolation or when the last two updates are too close together,
// and never exceeds 2.
func EstimateInterpolant(now, animTime, prevAnimTime float64, interp bool) float32 {
	dadt := float32(1)
	if interp && animTime >= prevAnimTime+0.01 {
		dadt = float32((now - animTime) / LatencyWindow)
		if dadt < 0 {
			dadt = 0
		} else if dadt > 2 {
			dadt = 2
		}
	}
	return dadt
}

// EstimateFrame converts the replicated 0..255 frame value into a fractional
// frame index and advances it by the time since animTime. Looping sequences
// wrap modulo numframes-1; others clamp just below the last frame.
func EstimateFrame(seq *studio.Sequence, frame, frameRate float32, animTime, now float64, interp bool) float64 {
	var dfdt float64
	if interp && now >= animTime {
		dfdt = (now - animTime) * float64(frameRate) * float64(seq.FPS)
	}

	var f float64
	if seq.NumFrames > 1 {
		f = float64(frame) * float64(seq.NumFrames-1) / 256
	}
	f += dfdt

	last := float64(seq.NumFrames - 1)
	if seq.Looping() {
		if seq.NumFrames > 1 {
			f -= float64(int(f/last)) * last
		}
		if f < 0 {
			f += last
		}
		return f
	}

	if f >= last-0.001 {
		f = last - 0.001
	}
	if f < 0 {
		f = 0
	}
	return f
}

// PlayerBlend maps a pitch angle onto the first blend axis of seq. It returns
// the blend byte and the pitch left over for the body transform: the excess
// beyond the blend range, or 0 inside it. A degenerate range blends to 127.
func PlayerBlend(seq *studio.Sequence, pitch float32) (blend uint8, rest float32) {
	b := int(pitch * 3)
	start, end := seq.BlendStart[0], seq.BlendEnd[0]

	switch {
	case float32(b) < start:
		return 0, pitch - start/3
	case float32(b) > end:
		return 255, pitch - end/3
	case end-start < 0.1:
		return 127, 0
	default:
		return uint8(int(255 * (float32(b) - start) / (end - start))), 0
	}
}
