// Package anim samples compressed studio animation tracks into per-bone
// poses and blends poses across blend tracks, sequences and gait.
package anim

import (
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// locate walks the spans of t to frame. It returns the entry index of the
// span header holding the frame, the frame offset inside that span, and the
// span's counts. A span whose valid count exceeds its total restarts the
// offset at 0. ok is false when the walk runs off the end of the data.
func locate(t studio.Track, frame int) (idx, k, valid, total int, ok bool) {
	k = frame
	valid, total, ok = t.Span(0)
	if !ok {
		return 0, 0, 0, 0, false
	}
	if total < valid {
		k = 0
	}
	for total <= k {
		k -= total
		idx += valid + 1
		valid, total, ok = t.Span(idx)
		if !ok {
			return 0, 0, 0, 0, false
		}
		if total < valid {
			k = 0
		}
	}
	return idx, k, valid, total, true
}

// rotationKeys returns the raw samples at frame and frame+1. Past the last
// stored key a span repeats it; at a span's end the next span's first key is
// used.
func rotationKeys(t studio.Track, frame int) (v1, v2 float32) {
	idx, k, valid, total, ok := locate(t, frame)
	if !ok {
		return 0, 0
	}
	val := func(i int) float32 { return float32(t.Value(idx + i)) }

	if valid > k {
		v1 = val(k + 1)
		switch {
		case valid > k+1:
			v2 = val(k + 2)
		case total > k+1:
			v2 = v1
		default:
			v2 = val(valid + 2)
		}
		return v1, v2
	}

	v1 = val(valid)
	if total > k+1 {
		v2 = v1
	} else {
		v2 = val(valid + 2)
	}
	return v1, v2
}

// positionKeys is rotationKeys for translation channels, which do not blend
// into the next span from the last stored key.
func positionKeys(t studio.Track, frame int) (v1, v2 float32) {
	idx, k, valid, total, ok := locate(t, frame)
	if !ok {
		return 0, 0
	}
	val := func(i int) float32 { return float32(t.Value(idx + i)) }

	if valid > k {
		v1 = val(k + 1)
		if valid > k+1 {
			return v1, val(k + 2)
		}
		return v1, v1
	}

	v1 = val(valid)
	if total <= k+1 {
		return v1, val(valid + 2)
	}
	return v1, v1
}

// BoneQuaternion samples the rotation of bone at frame+s.
func BoneQuaternion(bone *studio.Bone, anim *studio.BoneAnim, frame int, s float32, adj *Adjustments) math.Quat {
	var a1, a2 math.Vec3
	for j := 0; j < 3; j++ {
		if anim == nil || anim[j+3].Empty() {
			a1[j] = bone.Value[j+3]
			a2[j] = bone.Value[j+3]
		} else {
			r1, r2 := rotationKeys(anim[j+3], frame)
			a1[j] = bone.Value[j+3] + r1*bone.Scale[j+3]
			a2[j] = bone.Value[j+3] + r2*bone.Scale[j+3]
		}

		if c := bone.Controller[j+3]; c != -1 {
			a1[j] += adj[c]
			a2[j] += adj[c]
		}
	}

	if a1 != a2 {
		q1 := math.AngleQuaternion(a1)
		q2 := math.AngleQuaternion(a2)
		return q1.Slerp(q2, s)
	}
	return math.AngleQuaternion(a1)
}

// BonePosition samples the translation of bone at frame+s.
func BonePosition(bone *studio.Bone, anim *studio.BoneAnim, frame int, s float32, adj *Adjustments) math.Vec3 {
	var pos math.Vec3
	for j := 0; j < 3; j++ {
		pos[j] = bone.Value[j]
		if anim != nil && !anim[j].Empty() {
			v1, v2 := positionKeys(anim[j], frame)
			pos[j] += (v1*(1-s) + v2*s) * bone.Scale[j]
		}

		if c := bone.Controller[j]; c != -1 {
			pos[j] += adj[c]
		}
	}
	return pos
}
