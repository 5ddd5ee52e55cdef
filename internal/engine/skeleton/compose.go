// Package skeleton composes sampled bone poses into model transforms, walking
// the hierarchy from the root, and shares composed transforms with attached
// models.
package skeleton

import (
	"github.com/Faultbox/studiorender/internal/engine/anim"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Transforms are the composed per-bone matrices of one draw. Bone is used for
// vertex transformation, Light for lighting and attachments. They are equal on
// the hardware path.
type Transforms struct {
	Bone  []math.Mat34
	Light []math.Mat34
}

// NewTransforms allocates transforms for n bones.
func NewTransforms(n int) *Transforms {
	t := &Transforms{}
	t.Reset(n)
	return t
}

// Reset resizes to n bones.
func (t *Transforms) Reset(n int) {
	if cap(t.Bone) < n {
		t.Bone = make([]math.Mat34, n, studio.MaxBones)
		t.Light = make([]math.Mat34, n, studio.MaxBones)
	}
	t.Bone = t.Bone[:n]
	t.Light = t.Light[:n]
}

// Root configures how root bones are placed.
type Root struct {
	Space *Space
	Path  Path

	// Mirror negates the Y row of root bones, flipping a view model to the
	// right hand.
	Mirror bool

	// Fx post-multiplies the render transform of root bones. May be nil.
	Fx Effect
}

// Local builds the parent-relative matrix of bone i from the pose.
func Local(p *anim.Pose, i int) math.Mat34 {
	return math.QuatMatrix(p.Q[i], p.Pos[i])
}

// Compose builds the transforms of every bone in index order. Parents always
// precede children, so each child concatenates onto its parent's finished
// transform.
func Compose(dst *Transforms, bones []studio.Bone, p *anim.Pose, root Root) {
	dst.Reset(len(bones))
	for i := range bones {
		composeBone(dst, bones, p, i, root)
	}
}

func composeBone(dst *Transforms, bones []studio.Bone, p *anim.Pose, i int, root Root) {
	local := Local(p, i)

	parent := bones[i].Parent
	if parent != -1 {
		dst.Bone[i] = dst.Bone[parent].Concat(local)
		dst.Light[i] = dst.Light[parent].Concat(local)
		return
	}

	if root.Mirror {
		for j := 0; j < 4; j++ {
			local[1][j] = -local[1][j]
		}
	}
	dst.Bone[i], dst.Light[i] = root.Path.Root(root.Space, local)
	if root.Fx != nil {
		root.Fx.Apply(&dst.Bone[i])
	}
}
