package anim

import (
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Pose is a rotation and translation per bone, relative to the bone's parent.
type Pose struct {
	Q   []math.Quat
	Pos []math.Vec3
}

// NewPose allocates a pose for n bones.
func NewPose(n int) *Pose {
	p := &Pose{}
	p.Reset(n)
	return p
}

// Reset resizes the pose to n bones and clears it to identity.
func (p *Pose) Reset(n int) {
	if cap(p.Q) < n {
		p.Q = make([]math.Quat, n, studio.MaxBones)
		p.Pos = make([]math.Vec3, n, studio.MaxBones)
	}
	p.Q = p.Q[:n]
	p.Pos = p.Pos[:n]
	for i := range p.Q {
		p.Q[i] = math.QuatIdentity()
		p.Pos[i] = math.Vec3{}
	}
}

// Len returns the number of bones.
func (p *Pose) Len() int {
	return len(p.Q)
}

// Slerp blends other into p by s, clamped to [0, 1]: rotations spherically,
// translations linearly. s = 0 leaves p unchanged and s = 1 copies other.
func (p *Pose) Slerp(other *Pose, s float32) {
	s = clamp01(s)
	s1 := 1 - s

	for i := range p.Q {
		if i >= len(other.Q) {
			break
		}
		switch s {
		case 0:
			continue
		case 1:
			p.Q[i] = other.Q[i]
			p.Pos[i] = other.Pos[i]
			continue
		}
		p.Q[i] = p.Q[i].Slerp(other.Q[i], s)
		p.Pos[i] = p.Pos[i].Scale(s1).Add(other.Pos[i].Scale(s))
	}
}

// CopyFrom copies the rotation and translation of each listed bone.
func (p *Pose) CopyFrom(other *Pose, bones []int) {
	for _, i := range bones {
		p.Q[i] = other.Q[i]
		p.Pos[i] = other.Pos[i]
	}
}
