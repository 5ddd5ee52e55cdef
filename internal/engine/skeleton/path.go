package skeleton

import (
	"github.com/Faultbox/studiorender/pkg/math"
)

// zScale maps view depth into the fixed-point range of the software rasterizer.
const zScale = float32(0x8000) * 0x10000

// View is the camera of the current frame.
type View struct {
	Origin math.Vec3
	Up     math.Vec3
	Right  math.Vec3
	Normal math.Vec3

	// Screen scale of the software path.
	XScale float32
	YScale float32
}

// Space holds the root transforms of one draw.
type Space struct {
	Rotation math.Mat34 // Model to world
	Alias    math.Mat34 // Model to screen, software path only
}

// Path finalizes root bone transforms for one kind of rasterizer. It is
// chosen once at startup.
type Path interface {
	// Prepare fills sp from the model rotation and position.
	Prepare(sp *Space, rotation math.Mat34, modelPos math.Vec3, view *View, trivialAccept bool)
	// Root returns the bone and light transforms of a root bone.
	Root(sp *Space, local math.Mat34) (bone, light math.Mat34)
	// Hardware reports whether the path submits to a GPU.
	Hardware() bool
}

// HardwarePath renders through the GPU; bone and light transforms are equal.
type HardwarePath struct{}

func (HardwarePath) Prepare(sp *Space, rotation math.Mat34, modelPos math.Vec3, _ *View, _ bool) {
	sp.Rotation = rotation
	sp.Rotation.SetOrigin(modelPos)
}

func (HardwarePath) Root(sp *Space, local math.Mat34) (math.Mat34, math.Mat34) {
	bone := sp.Rotation.Concat(local)
	return bone, bone
}

func (HardwarePath) Hardware() bool { return true }

// SoftwarePath renders through the alias transform: bone transforms land in
// view space, pre-scaled to screen coordinates when the model is trivially
// accepted, and light transforms stay in world space.
type SoftwarePath struct{}

func (SoftwarePath) Prepare(sp *Space, rotation math.Mat34, modelPos math.Vec3, view *View, trivialAccept bool) {
	viewMatrix := math.Mat34{
		{view.Right[0], view.Right[1], view.Right[2], 0},
		{-view.Up[0], -view.Up[1], -view.Up[2], 0},
		{view.Normal[0], view.Normal[1], view.Normal[2], 0},
	}

	rel := rotation
	rel.SetOrigin(modelPos.Sub(view.Origin))
	sp.Alias = viewMatrix.Concat(rel)

	if trivialAccept {
		for i := 0; i < 4; i++ {
			sp.Alias[0][i] *= view.XScale / zScale
			sp.Alias[1][i] *= view.YScale / zScale
			sp.Alias[2][i] *= 1 / zScale
		}
	}

	sp.Rotation = rotation
	sp.Rotation.SetOrigin(modelPos)
}

func (SoftwarePath) Root(sp *Space, local math.Mat34) (math.Mat34, math.Mat34) {
	return sp.Alias.Concat(local), sp.Rotation.Concat(local)
}

func (SoftwarePath) Hardware() bool { return false }

// SelectPath returns the path for the given capability.
func SelectPath(hardware bool) Path {
	if hardware {
		return HardwarePath{}
	}
	return SoftwarePath{}
}
