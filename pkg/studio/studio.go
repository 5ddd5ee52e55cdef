// Package studio decodes version 10 studio models (.mdl): skeleton, bone
// controllers, sequences with their compressed animation tracks, body parts
// with sub-model meshes, and attachments.
//
// All tables are validated once by Parse. Accessors never re-check offsets.
package studio

import (
	"fmt"

	"github.com/Faultbox/studiorender/pkg/math"
)

// Format limits.
const (
	MaxBones       = 128
	MaxControllers = 8
	MaxAttachments = 4
	MaxBlends      = 4

	// MouthController is the controller index driven by the entity's mouth value.
	MouthController = 4
)

// Sequence flags.
const (
	FlagLooping = 0x0001
)

// Motion and controller type flags.
const (
	MotionX     = 0x0001
	MotionY     = 0x0002
	MotionZ     = 0x0004
	MotionXR    = 0x0008
	MotionYR    = 0x0010
	MotionZR    = 0x0020
	MotionLX    = 0x0040
	MotionLY    = 0x0080
	MotionLZ    = 0x0100
	MotionTypes = 0x7FFF
	MotionRLoop = 0x8000
)

// Header holds the fixed fields of the file header.
type Header struct {
	Name        string
	Length      int32
	EyePosition math.Vec3
	Min, Max    math.Vec3
	BBMin       math.Vec3
	BBMax       math.Vec3
	Flags       int32
}

// Bone is one skeleton node. Value and Scale hold the default and the
// quantization scale for each degree of freedom: X, Y, Z, then roll, pitch, yaw.
type Bone struct {
	Name       string
	Parent     int32 // -1 for root
	Flags      int32
	Controller [6]int32 // -1 if the DOF has no controller
	Value      [6]float32
	Scale      [6]float32
}

// BoneController maps an entity controller byte to a bone DOF adjustment.
type BoneController struct {
	Bone  int32
	Type  int32
	Start float32
	End   float32
	Rest  int32
	Index int32 // 0..3 entity controllers, 4 mouth
}

// HitBox is an axis-aligned box attached to a bone.
type HitBox struct {
	Bone  int32
	Group int32
	BBMin math.Vec3
	BBMax math.Vec3
}

// Sequence is one named animation clip.
type Sequence struct {
	Label          string
	FPS            float32
	Flags          int32
	Activity       int32
	ActWeight      int32
	NumFrames      int32
	MotionType     int32
	MotionBone     int32
	LinearMovement math.Vec3
	BBMin, BBMax   math.Vec3
	NumBlends      int32
	AnimIndex      int32
	BlendType      [2]int32
	BlendStart     [2]float32
	BlendEnd       [2]float32
	BlendParent    int32
	SeqGroup       int32
	EntryNode      int32
	ExitNode       int32
	NodeFlags      int32
	NextSeq        int32

	// blends holds one BoneAnim per bone for each blend, resolved from the
	// sequence group that stores the animation data.
	blends [][]BoneAnim
}

// Looping reports whether the clip wraps around.
func (s *Sequence) Looping() bool {
	return s.Flags&FlagLooping != 0
}

// Loaded reports whether animation data is available for the sequence.
func (s *Sequence) Loaded() bool {
	return len(s.blends) > 0
}

// Blend returns the per-bone animation of blend i, or nil if the group holding
// the animation has not been loaded.
func (s *Sequence) Blend(i int) []BoneAnim {
	if i < 0 || i >= len(s.blends) {
		return nil
	}
	return s.blends[i]
}

// SequenceGroup names the file that stores a group's animation data. Group 0
// is the model file itself.
type SequenceGroup struct {
	Label string
	Name  string
}

// Attachment is a named point on a bone.
type Attachment struct {
	Name    string
	Type    int32
	Bone    int32
	Origin  math.Vec3
	Vectors [3]math.Vec3
}

// TriVertex is one vertex reference in a triangle command.
type TriVertex struct {
	Vertex int16
	Normal int16
	S, T   int16
}

// TriCommand is one triangle strip or fan.
type TriCommand struct {
	Fan   bool
	Verts []TriVertex
}

// Triangles returns the number of triangles the command expands to.
func (c TriCommand) Triangles() int {
	if len(c.Verts) < 3 {
		return 0
	}
	return len(c.Verts) - 2
}

// Mesh is a set of triangle commands sharing one skin.
type Mesh struct {
	NumTris  int32
	SkinRef  int32
	NumNorms int32
	Commands []TriCommand
}

// SubModel is one selectable variant of a body part.
type SubModel struct {
	Name           string
	Type           int32
	BoundingRadius float32
	Meshes         []Mesh
	Vertices       []math.Vec3
	VertexBones    []uint8
	Normals        []math.Vec3
	NormalBones    []uint8
}

// BodyPart groups alternative sub-models; the entity body value selects one.
type BodyPart struct {
	Name   string
	Base   int32
	Models []SubModel
}

// SubModelIndex returns the index of the sub-model selected by body.
func (b *BodyPart) SubModelIndex(body int32) int {
	if len(b.Models) == 0 || b.Base == 0 {
		return 0
	}
	idx := int(body/b.Base) % len(b.Models)
	if idx < 0 {
		idx += len(b.Models)
	}
	return idx
}

// Model is a parsed studio model.
type Model struct {
	Path string

	Header      Header
	Bones       []Bone
	Controllers []BoneController
	HitBoxes    []HitBox
	Sequences   []Sequence
	Groups      []SequenceGroup
	BodyParts   []BodyPart
	Attachments []Attachment
	NumTextures int32
}

// Sequence returns sequence i, or nil if out of range.
func (m *Model) Sequence(i int) *Sequence {
	if i < 0 || i >= len(m.Sequences) {
		return nil
	}
	return &m.Sequences[i]
}

// BoneIndex returns the index of the named bone, or -1.
func (m *Model) BoneIndex(name string) int {
	for i := range m.Bones {
		if m.Bones[i].Name == name {
			return i
		}
	}
	return -1
}

// String returns a short description for logs.
func (m *Model) String() string {
	return fmt.Sprintf("%s (%d bones, %d seqs, %d bodyparts)",
		m.Header.Name, len(m.Bones), len(m.Sequences), len(m.BodyParts))
}
