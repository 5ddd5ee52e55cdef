package anim

import (
	"github.com/Faultbox/studiorender/pkg/studio"
)

// LegBones are the bones driven by the gait sequence for players.
var LegBones = []string{
	"Bip01",
	"Bip01 Pelvis",
	"Bip01 L Leg",
	"Bip01 L Leg1",
	"Bip01 L Foot",
	"Bip01 R Leg",
	"Bip01 R Leg1",
	"Bip01 R Foot",
}

// CalcRotations samples every bone of m for one blend of seq at frame f.
// Frames past the end restart at 0; negative frames clamp to -0.01. Motion
// flags of the sequence zero the extracted axes of its motion bone.
func CalcRotations(p *Pose, m *studio.Model, seq *studio.Sequence, anims []studio.BoneAnim, f float64, c Controls) {
	if f > float64(seq.NumFrames-1) {
		f = 0
	} else if f < -0.01 {
		f = -0.01
	}

	frame := int(f)
	s := float32(f - float64(frame))

	adj := BoneAdjust(m.Controllers, c)

	p.Reset(len(m.Bones))
	for i := range m.Bones {
		var anim *studio.BoneAnim
		if i < len(anims) {
			anim = &anims[i]
		}
		p.Q[i] = BoneQuaternion(&m.Bones[i], anim, frame, s, &adj)
		p.Pos[i] = BonePosition(&m.Bones[i], anim, frame, s, &adj)
	}

	if mb := int(seq.MotionBone); mb >= 0 && mb < len(p.Pos) {
		if seq.MotionType&studio.MotionX != 0 {
			p.Pos[mb][0] = 0
		}
		if seq.MotionType&studio.MotionY != 0 {
			p.Pos[mb][1] = 0
		}
		if seq.MotionType&studio.MotionZ != 0 {
			p.Pos[mb][2] = 0
		}
	}
}

// Transition describes the outgoing sequence while a sequence change fades.
type Transition struct {
	Sequence *studio.Sequence
	Frame    float64
	Weights  [2]float32
	Amount   float32 // Weight of the outgoing pose, 1 at the change
}

// Gait describes the leg animation of a player.
type Gait struct {
	Sequence *studio.Sequence
	Frame    float64
}

// Request is one pose evaluation.
type Request struct {
	Model    *studio.Model
	Sequence *studio.Sequence
	Frame    float64
	Weights  [2]float32 // Blend axis weights in [0, 1]
	Controls Controls

	Transition *Transition // nil outside the transition window
	Gait       *Gait       // nil for non-players or without a gait sequence
}

// Blender owns the scratch poses used to evaluate a request. The returned
// pose is valid until the next call. A Blender must not be shared between
// goroutines.
type Blender struct {
	pose  Pose
	pose2 Pose
	pose3 Pose
	pose4 Pose
	prev  Pose
	gait  Pose

	legs    []int
	legsFor *studio.Model
}

// NewBlender creates a blender.
func NewBlender() *Blender {
	return &Blender{}
}

// Pose evaluates r: the blended current sequence, cross-faded with the
// outgoing sequence during a transition, with leg bones taken from the gait.
func (b *Blender) Pose(r *Request) *Pose {
	b.sample(&b.pose, r.Model, r.Sequence, r.Frame, r.Weights, r.Controls)

	if t := r.Transition; t != nil && t.Sequence != nil {
		b.sample(&b.prev, r.Model, t.Sequence, t.Frame, t.Weights, r.Controls)
		b.pose.Slerp(&b.prev, t.Amount)
	}

	if g := r.Gait; g != nil && g.Sequence != nil {
		CalcRotations(&b.gait, r.Model, g.Sequence, g.Sequence.Blend(0), g.Frame, r.Controls)
		b.pose.CopyFrom(&b.gait, b.legBones(r.Model))
	}

	return &b.pose
}

// Single samples only the first blend of seq, as used when merging an attached
// model onto a posed skeleton.
func (b *Blender) Single(m *studio.Model, seq *studio.Sequence, f float64, c Controls) *Pose {
	CalcRotations(&b.pose, m, seq, seq.Blend(0), f, c)
	return &b.pose
}

func (b *Blender) sample(dst *Pose, m *studio.Model, seq *studio.Sequence, f float64, w [2]float32, c Controls) {
	CalcRotations(dst, m, seq, seq.Blend(0), f, c)
	if seq.NumBlends <= 1 {
		return
	}

	CalcRotations(&b.pose2, m, seq, seq.Blend(1), f, c)
	dst.Slerp(&b.pose2, w[0])

	if seq.NumBlends == 4 {
		CalcRotations(&b.pose3, m, seq, seq.Blend(2), f, c)
		CalcRotations(&b.pose4, m, seq, seq.Blend(3), f, c)
		b.pose3.Slerp(&b.pose4, w[0])
		dst.Slerp(&b.pose3, w[1])
	}
}

func (b *Blender) legBones(m *studio.Model) []int {
	if b.legsFor == m {
		return b.legs
	}
	b.legs = b.legs[:0]
	for i := range m.Bones {
		for _, name := range LegBones {
			if m.Bones[i].Name == name {
				b.legs = append(b.legs, i)
				break
			}
		}
	}
	b.legsFor = m
	return b.legs
}
