package studio

import (
	"bytes"
	"encoding/binary"
	gomath "math"
	"os"

	"github.com/pkg/errors"

	"github.com/Faultbox/studiorender/pkg/math"
)

// Studio model errors.
var (
	ErrInvalidMagic       = errors.New("invalid studio magic: expected 'IDST'")
	ErrInvalidGroupMagic  = errors.New("invalid sequence group magic: expected 'IDSQ'")
	ErrUnsupportedVersion = errors.New("unsupported studio version")
	ErrTruncated          = errors.New("truncated studio data")
	ErrBadOffset          = errors.New("studio table out of range")
	ErrBadHierarchy       = errors.New("bone parent must precede child")
)

// Version is the only supported studio format version.
const Version = 10

// Record sizes in bytes.
const (
	headerSize         = 244
	seqHeaderSize      = 76
	boneSize           = 112
	boneControllerSize = 24
	hitBoxSize         = 32
	sequenceSize       = 176
	sequenceGroupSize  = 104
	animSize           = 12
	bodyPartSize       = 76
	subModelSize       = 112
	meshSize           = 20
	attachmentSize     = 88
)

// blob is a little-endian view over the model file. Callers validate ranges
// with table before reading.
type blob []byte

func (b blob) i32(off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off:]))
}

func (b blob) i16(off int) int16 {
	return int16(binary.LittleEndian.Uint16(b[off:]))
}

func (b blob) f32(off int) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func (b blob) vec3(off int) math.Vec3 {
	return math.Vec3{b.f32(off), b.f32(off + 4), b.f32(off + 8)}
}

func (b blob) str(off, n int) string {
	s := b[off : off+n]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

// table checks that count records of size bytes fit at off.
func (b blob) table(what string, count, off int32, size int) error {
	if count < 0 {
		return errors.Wrapf(ErrBadOffset, "%s: negative count %d", what, count)
	}
	if count == 0 {
		return nil
	}
	end := int64(off) + int64(count)*int64(size)
	if off < 0 || end > int64(len(b)) {
		return errors.Wrapf(ErrBadOffset, "%s: %d records at %d exceed %d bytes", what, count, off, len(b))
	}
	return nil
}

// Load reads and parses a model file. The path is kept as the model name.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading studio model")
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	m.Path = path
	return m, nil
}

// Parse decodes a studio model from data. Animation data for sequence group 0
// is resolved immediately; other groups are attached with LoadSequenceGroup.
func Parse(data []byte) (*Model, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	b := blob(data)
	if string(data[0:4]) != "IDST" {
		return nil, ErrInvalidMagic
	}
	if v := b.i32(4); v != Version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", v)
	}

	m := &Model{
		Header: Header{
			Name:        b.str(8, 64),
			Length:      b.i32(72),
			EyePosition: b.vec3(76),
			Min:         b.vec3(88),
			Max:         b.vec3(100),
			BBMin:       b.vec3(112),
			BBMax:       b.vec3(124),
			Flags:       b.i32(136),
		},
		NumTextures: b.i32(180),
	}

	steps := []func(blob, *Model) error{
		parseBones,
		parseControllers,
		parseHitBoxes,
		parseSequences,
		parseGroups,
		parseBodyParts,
		parseAttachments,
	}
	for _, step := range steps {
		if err := step(b, m); err != nil {
			return nil, err
		}
	}

	for i := range m.Sequences {
		seq := &m.Sequences[i]
		if seq.SeqGroup != 0 {
			continue
		}
		if err := resolveAnims(b, m, seq); err != nil {
			return nil, errors.Wrapf(err, "sequence %d %q", i, seq.Label)
		}
	}

	return m, nil
}

// LoadSequenceGroup attaches the animation data of an external sequence group
// file to every sequence that references it.
func (m *Model) LoadSequenceGroup(group int, data []byte) error {
	if group <= 0 || group >= len(m.Groups) {
		return errors.Wrapf(ErrBadOffset, "sequence group %d", group)
	}
	if len(data) < seqHeaderSize {
		return ErrTruncated
	}
	if string(data[0:4]) != "IDSQ" {
		return ErrInvalidGroupMagic
	}
	b := blob(data)
	if v := b.i32(4); v != Version {
		return errors.Wrapf(ErrUnsupportedVersion, "group version %d", v)
	}

	for i := range m.Sequences {
		seq := &m.Sequences[i]
		if int(seq.SeqGroup) != group {
			continue
		}
		if err := resolveAnims(b, m, seq); err != nil {
			return errors.Wrapf(err, "sequence %d %q", i, seq.Label)
		}
	}
	return nil
}

func parseBones(b blob, m *Model) error {
	num, idx := b.i32(140), b.i32(144)
	if num > MaxBones {
		return errors.Wrapf(ErrBadOffset, "%d bones exceed %d", num, MaxBones)
	}
	if err := b.table("bones", num, idx, boneSize); err != nil {
		return err
	}

	m.Bones = make([]Bone, num)
	for i := range m.Bones {
		off := int(idx) + i*boneSize
		bone := &m.Bones[i]
		bone.Name = b.str(off, 32)
		bone.Parent = b.i32(off + 32)
		bone.Flags = b.i32(off + 36)
		for j := 0; j < 6; j++ {
			bone.Controller[j] = b.i32(off + 40 + j*4)
			bone.Value[j] = b.f32(off + 64 + j*4)
			bone.Scale[j] = b.f32(off + 88 + j*4)
		}
		if bone.Parent < -1 || int(bone.Parent) >= i {
			return errors.Wrapf(ErrBadHierarchy, "bone %d %q parent %d", i, bone.Name, bone.Parent)
		}
	}
	return nil
}

func parseControllers(b blob, m *Model) error {
	num, idx := b.i32(148), b.i32(152)
	if num > MaxControllers {
		return errors.Wrapf(ErrBadOffset, "%d controllers exceed %d", num, MaxControllers)
	}
	if err := b.table("bone controllers", num, idx, boneControllerSize); err != nil {
		return err
	}

	m.Controllers = make([]BoneController, num)
	for i := range m.Controllers {
		off := int(idx) + i*boneControllerSize
		m.Controllers[i] = BoneController{
			Bone:  b.i32(off),
			Type:  b.i32(off + 4),
			Start: b.f32(off + 8),
			End:   b.f32(off + 12),
			Rest:  b.i32(off + 16),
			Index: b.i32(off + 20),
		}
		if c := m.Controllers[i].Index; c < 0 || c > MouthController {
			return errors.Wrapf(ErrBadOffset, "controller %d index %d", i, c)
		}
	}

	for i := range m.Bones {
		for j, c := range m.Bones[i].Controller {
			if c < -1 || int(c) >= len(m.Controllers) {
				return errors.Wrapf(ErrBadOffset, "bone %d dof %d controller %d", i, j, c)
			}
		}
	}
	return nil
}

func parseHitBoxes(b blob, m *Model) error {
	num, idx := b.i32(156), b.i32(160)
	if err := b.table("hitboxes", num, idx, hitBoxSize); err != nil {
		return err
	}

	m.HitBoxes = make([]HitBox, num)
	for i := range m.HitBoxes {
		off := int(idx) + i*hitBoxSize
		m.HitBoxes[i] = HitBox{
			Bone:  b.i32(off),
			Group: b.i32(off + 4),
			BBMin: b.vec3(off + 8),
			BBMax: b.vec3(off + 20),
		}
	}
	return nil
}

func parseSequences(b blob, m *Model) error {
	num, idx := b.i32(164), b.i32(168)
	if err := b.table("sequences", num, idx, sequenceSize); err != nil {
		return err
	}

	m.Sequences = make([]Sequence, num)
	for i := range m.Sequences {
		off := int(idx) + i*sequenceSize
		s := &m.Sequences[i]
		s.Label = b.str(off, 32)
		s.FPS = b.f32(off + 32)
		s.Flags = b.i32(off + 36)
		s.Activity = b.i32(off + 40)
		s.ActWeight = b.i32(off + 44)
		s.NumFrames = b.i32(off + 56)
		s.MotionType = b.i32(off + 68)
		s.MotionBone = b.i32(off + 72)
		s.LinearMovement = b.vec3(off + 76)
		s.BBMin = b.vec3(off + 96)
		s.BBMax = b.vec3(off + 108)
		s.NumBlends = b.i32(off + 120)
		s.AnimIndex = b.i32(off + 124)
		for j := 0; j < 2; j++ {
			s.BlendType[j] = b.i32(off + 128 + j*4)
			s.BlendStart[j] = b.f32(off + 136 + j*4)
			s.BlendEnd[j] = b.f32(off + 144 + j*4)
		}
		s.BlendParent = b.i32(off + 152)
		s.SeqGroup = b.i32(off + 156)
		s.EntryNode = b.i32(off + 160)
		s.ExitNode = b.i32(off + 164)
		s.NodeFlags = b.i32(off + 168)
		s.NextSeq = b.i32(off + 172)

		if s.NumBlends < 1 || s.NumBlends > MaxBlends {
			return errors.Wrapf(ErrBadOffset, "sequence %d %q: %d blends", i, s.Label, s.NumBlends)
		}
		if s.MotionBone < 0 || (len(m.Bones) > 0 && int(s.MotionBone) >= len(m.Bones)) {
			return errors.Wrapf(ErrBadOffset, "sequence %d %q: motion bone %d", i, s.Label, s.MotionBone)
		}
	}
	return nil
}

func parseGroups(b blob, m *Model) error {
	num, idx := b.i32(172), b.i32(176)
	if err := b.table("sequence groups", num, idx, sequenceGroupSize); err != nil {
		return err
	}

	m.Groups = make([]SequenceGroup, num)
	for i := range m.Groups {
		off := int(idx) + i*sequenceGroupSize
		m.Groups[i] = SequenceGroup{
			Label: b.str(off, 32),
			Name:  b.str(off+32, 64),
		}
	}

	for i := range m.Sequences {
		if g := m.Sequences[i].SeqGroup; g < 0 || (g > 0 && int(g) >= len(m.Groups)) {
			return errors.Wrapf(ErrBadOffset, "sequence %d group %d", i, g)
		}
	}
	return nil
}

// resolveAnims builds the per-blend, per-bone track views of seq from b, which
// is either the model file or the sequence group file holding its data.
func resolveAnims(b blob, m *Model, seq *Sequence) error {
	numBones := int32(len(m.Bones))
	if err := b.table("anims", seq.NumBlends*numBones, seq.AnimIndex, animSize); err != nil {
		return err
	}

	seq.blends = make([][]BoneAnim, seq.NumBlends)
	for blend := range seq.blends {
		anims := make([]BoneAnim, numBones)
		for bone := range anims {
			rec := int(seq.AnimIndex) + (blend*int(numBones)+bone)*animSize
			for j := 0; j < 6; j++ {
				o := int(binary.LittleEndian.Uint16(b[rec+j*2:]))
				if o == 0 {
					continue
				}
				start := rec + o
				if start+2 > len(b) {
					return errors.Wrapf(ErrBadOffset, "blend %d bone %d channel %d at %d", blend, bone, j, start)
				}
				anims[bone][j] = NewTrack(b[start:])
			}
		}
		seq.blends[blend] = anims
	}
	return nil
}

func parseBodyParts(b blob, m *Model) error {
	num, idx := b.i32(204), b.i32(208)
	if err := b.table("bodyparts", num, idx, bodyPartSize); err != nil {
		return err
	}

	m.BodyParts = make([]BodyPart, num)
	for i := range m.BodyParts {
		off := int(idx) + i*bodyPartSize
		bp := &m.BodyParts[i]
		bp.Name = b.str(off, 64)
		numModels := b.i32(off + 64)
		bp.Base = b.i32(off + 68)
		modelIdx := b.i32(off + 72)

		if err := b.table("models", numModels, modelIdx, subModelSize); err != nil {
			return errors.Wrapf(err, "bodypart %d %q", i, bp.Name)
		}
		bp.Models = make([]SubModel, numModels)
		for j := range bp.Models {
			if err := parseSubModel(b, m, int(modelIdx)+j*subModelSize, &bp.Models[j]); err != nil {
				return errors.Wrapf(err, "bodypart %d %q model %d", i, bp.Name, j)
			}
		}
	}
	return nil
}

func parseSubModel(b blob, m *Model, off int, sm *SubModel) error {
	sm.Name = b.str(off, 64)
	sm.Type = b.i32(off + 64)
	sm.BoundingRadius = b.f32(off + 68)
	numMesh, meshIdx := b.i32(off+72), b.i32(off+76)
	numVerts, vertInfo, vertIdx := b.i32(off+80), b.i32(off+84), b.i32(off+88)
	numNorms, normInfo, normIdx := b.i32(off+92), b.i32(off+96), b.i32(off+100)

	if err := b.table("vertices", numVerts, vertIdx, 12); err != nil {
		return err
	}
	if err := b.table("vertex bones", numVerts, vertInfo, 1); err != nil {
		return err
	}
	if err := b.table("normals", numNorms, normIdx, 12); err != nil {
		return err
	}
	if err := b.table("normal bones", numNorms, normInfo, 1); err != nil {
		return err
	}
	if err := b.table("meshes", numMesh, meshIdx, meshSize); err != nil {
		return err
	}

	sm.Vertices = make([]math.Vec3, numVerts)
	sm.VertexBones = make([]uint8, numVerts)
	for i := range sm.Vertices {
		sm.Vertices[i] = b.vec3(int(vertIdx) + i*12)
		sm.VertexBones[i] = b[int(vertInfo)+i]
		if int(sm.VertexBones[i]) >= len(m.Bones) {
			return errors.Wrapf(ErrBadOffset, "vertex %d bone %d", i, sm.VertexBones[i])
		}
	}
	sm.Normals = make([]math.Vec3, numNorms)
	sm.NormalBones = make([]uint8, numNorms)
	for i := range sm.Normals {
		sm.Normals[i] = b.vec3(int(normIdx) + i*12)
		sm.NormalBones[i] = b[int(normInfo)+i]
	}

	sm.Meshes = make([]Mesh, numMesh)
	for i := range sm.Meshes {
		moff := int(meshIdx) + i*meshSize
		mesh := &sm.Meshes[i]
		mesh.NumTris = b.i32(moff)
		triIdx := b.i32(moff + 4)
		mesh.SkinRef = b.i32(moff + 8)
		mesh.NumNorms = b.i32(moff + 12)

		cmds, err := parseTriCommands(b, int(triIdx), len(sm.Vertices))
		if err != nil {
			return errors.Wrapf(err, "mesh %d", i)
		}
		mesh.Commands = cmds
	}
	return nil
}

// parseTriCommands reads a zero-terminated stream of strips and fans. Each
// command is a signed count (negative for fans) followed by count vertex
// records of four shorts.
func parseTriCommands(b blob, off, numVerts int) ([]TriCommand, error) {
	var cmds []TriCommand
	for {
		if off < 0 || off+2 > len(b) {
			return nil, errors.Wrapf(ErrTruncated, "triangle commands at %d", off)
		}
		n := int(b.i16(off))
		off += 2
		if n == 0 {
			return cmds, nil
		}

		cmd := TriCommand{}
		if n < 0 {
			cmd.Fan = true
			n = -n
		}
		if off+n*8 > len(b) {
			return nil, errors.Wrapf(ErrTruncated, "triangle command of %d vertices at %d", n, off)
		}
		cmd.Verts = make([]TriVertex, n)
		for i := range cmd.Verts {
			v := TriVertex{
				Vertex: b.i16(off),
				Normal: b.i16(off + 2),
				S:      b.i16(off + 4),
				T:      b.i16(off + 6),
			}
			if v.Vertex < 0 || int(v.Vertex) >= numVerts {
				return nil, errors.Wrapf(ErrBadOffset, "triangle vertex %d of %d", v.Vertex, numVerts)
			}
			cmd.Verts[i] = v
			off += 8
		}
		cmds = append(cmds, cmd)
	}
}

func parseAttachments(b blob, m *Model) error {
	num, idx := b.i32(212), b.i32(216)
	if err := b.table("attachments", num, idx, attachmentSize); err != nil {
		return err
	}

	m.Attachments = make([]Attachment, num)
	for i := range m.Attachments {
		off := int(idx) + i*attachmentSize
		a := &m.Attachments[i]
		a.Name = b.str(off, 32)
		a.Type = b.i32(off + 32)
		a.Bone = b.i32(off + 36)
		a.Origin = b.vec3(off + 40)
		for j := 0; j < 3; j++ {
			a.Vectors[j] = b.vec3(off + 52 + j*12)
		}
		if a.Bone < 0 || int(a.Bone) >= len(m.Bones) {
			return errors.Wrapf(ErrBadOffset, "attachment %d bone %d", i, a.Bone)
		}
	}
	return nil
}
