// Package studiotest builds studio model files in memory for tests.
package studiotest

import (
	"encoding/binary"
	gomath "math"
	"testing"

	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Span is one run of an animation channel. Valid defaults to len(Values).
type Span struct {
	Valid  int
	Total  int
	Values []int16
}

// Channel is the span list of one DOF. An empty channel uses the bone default.
type Channel []Span

// BoneAnim holds the six channels of one bone.
type BoneAnim [6]Channel

// Sequence is a sequence descriptor plus its animation. Blends holds one
// BoneAnim per bone for each blend; missing bones get empty channels.
type Sequence struct {
	studio.Sequence
	Blends [][]BoneAnim
}

// SubModel is a body part variant. Meshes list triangle commands per mesh.
type SubModel struct {
	Name        string
	Vertices    []math.Vec3
	VertexBones []uint8
	Meshes      [][]studio.TriCommand
}

// BodyPart groups sub-models.
type BodyPart struct {
	Name   string
	Base   int32
	Models []SubModel
}

// Builder describes a model to encode.
type Builder struct {
	Name        string
	Bones       []studio.Bone
	Controllers []studio.BoneController
	Sequences   []Sequence
	Groups      []studio.SequenceGroup
	BodyParts   []BodyPart
	Attachments []studio.Attachment
}

// Strip builds a triangle strip over the given vertex indices.
func Strip(verts ...int16) studio.TriCommand {
	return command(false, verts)
}

// Fan builds a triangle fan over the given vertex indices.
func Fan(verts ...int16) studio.TriCommand {
	return command(true, verts)
}

func command(fan bool, verts []int16) studio.TriCommand {
	cmd := studio.TriCommand{Fan: fan, Verts: make([]studio.TriVertex, len(verts))}
	for i, v := range verts {
		cmd.Verts[i] = studio.TriVertex{Vertex: v}
	}
	return cmd
}

// RootBone returns a parentless bone with unit scales and no controllers.
func RootBone(name string) studio.Bone {
	return ChildBone(name, -1)
}

// ChildBone returns a bone under parent with unit scales and no controllers.
func ChildBone(name string, parent int32) studio.Bone {
	b := studio.Bone{Name: name, Parent: parent}
	for i := range b.Controller {
		b.Controller[i] = -1
		b.Scale[i] = 1
	}
	return b
}

// Model encodes and parses the builder, failing the test on error.
func (b *Builder) Model(tb testing.TB) *studio.Model {
	tb.Helper()
	m, err := studio.Parse(b.Bytes())
	if err != nil {
		tb.Fatalf("parsing built model: %v", err)
	}
	m.Path = "models/" + b.Name + ".mdl"
	for g := 1; g < len(b.Groups); g++ {
		if err := m.LoadSequenceGroup(g, b.GroupBytes(g)); err != nil {
			tb.Fatalf("loading sequence group %d: %v", g, err)
		}
	}
	return m
}

// GroupBytes encodes the external file of sequence group g.
func (b *Builder) GroupBytes(g int) []byte {
	w := &writer{}
	w.alloc(76)
	copy(w.buf[0:4], "IDSQ")
	w.put32(4, studio.Version)
	w.putStr(8, b.Name, 64)
	b.writeAnims(w, int32(g))
	w.put32(72, int32(len(w.buf)))
	return w.buf
}

// Bytes encodes the main model file.
func (b *Builder) Bytes() []byte {
	groupIndex := make(map[int]int32)
	for g := 1; g < len(b.Groups); g++ {
		w := &writer{}
		w.alloc(76)
		for i, off := range b.writeAnims(w, int32(g)) {
			groupIndex[i] = off
		}
	}

	w := &writer{}
	w.alloc(244)
	copy(w.buf[0:4], "IDST")
	w.put32(4, studio.Version)
	w.putStr(8, b.Name, 64)

	w.put32(140, int32(len(b.Bones)))
	w.put32(144, w.writeBones(b.Bones))
	w.put32(148, int32(len(b.Controllers)))
	w.put32(152, w.writeControllers(b.Controllers))

	seqOff := w.alloc(176 * len(b.Sequences))
	w.put32(164, int32(len(b.Sequences)))
	w.put32(168, int32(seqOff))

	groups := b.Groups
	if len(groups) == 0 {
		groups = []studio.SequenceGroup{{Label: "default"}}
	}
	groupOff := w.alloc(104 * len(groups))
	for i, g := range groups {
		w.putStr(groupOff+i*104, g.Label, 32)
		w.putStr(groupOff+i*104+32, g.Name, 64)
	}
	w.put32(172, int32(len(groups)))
	w.put32(176, int32(groupOff))

	animIndex := b.writeAnims(w, 0)
	for i, off := range groupIndex {
		animIndex[i] = off
	}
	for i := range b.Sequences {
		w.writeSequence(seqOff+i*176, &b.Sequences[i], animIndex[i])
	}

	w.put32(204, int32(len(b.BodyParts)))
	w.put32(208, w.writeBodyParts(b.BodyParts))
	w.put32(212, int32(len(b.Attachments)))
	w.put32(216, w.writeAttachments(b.Attachments))

	w.put32(72, int32(len(w.buf)))
	return w.buf
}

// writeAnims appends the animation records and tracks of every sequence in
// group g and returns their offsets by sequence index.
func (b *Builder) writeAnims(w *writer, g int32) map[int]int32 {
	out := make(map[int]int32)
	numBones := len(b.Bones)
	for i := range b.Sequences {
		seq := &b.Sequences[i]
		if seq.SeqGroup != g {
			continue
		}
		blends := numBlends(seq)
		recs := w.alloc(blends * numBones * 12)
		out[i] = int32(recs)

		for blend := 0; blend < blends; blend++ {
			for bone := 0; bone < numBones; bone++ {
				rec := recs + (blend*numBones+bone)*12
				var anim BoneAnim
				if blend < len(seq.Blends) && bone < len(seq.Blends[blend]) {
					anim = seq.Blends[blend][bone]
				}
				for j, ch := range anim {
					if len(ch) == 0 {
						continue
					}
					start := w.writeChannel(ch)
					binary.LittleEndian.PutUint16(w.buf[rec+j*2:], uint16(start-rec))
				}
			}
		}
	}
	return out
}

func numBlends(seq *Sequence) int {
	if seq.NumBlends > 0 {
		return int(seq.NumBlends)
	}
	if len(seq.Blends) > 0 {
		return len(seq.Blends)
	}
	return 1
}

type writer struct {
	buf []byte
}

func (w *writer) alloc(n int) int {
	off := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return off
}

func (w *writer) put32(off int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[off:], uint32(v))
}

func (w *writer) put16(off int, v int16) {
	binary.LittleEndian.PutUint16(w.buf[off:], uint16(v))
}

func (w *writer) putF(off int, v float32) {
	binary.LittleEndian.PutUint32(w.buf[off:], gomath.Float32bits(v))
}

func (w *writer) putVec(off int, v math.Vec3) {
	for i := 0; i < 3; i++ {
		w.putF(off+i*4, v[i])
	}
}

func (w *writer) putStr(off int, s string, n int) {
	if len(s) >= n {
		s = s[:n-1]
	}
	copy(w.buf[off:off+n], s)
}

func (w *writer) writeChannel(ch Channel) int {
	start := len(w.buf)
	for _, span := range ch {
		valid := span.Valid
		if valid == 0 {
			valid = len(span.Values)
		}
		off := w.alloc(2 + 2*len(span.Values))
		w.buf[off] = byte(valid)
		w.buf[off+1] = byte(span.Total)
		for i, v := range span.Values {
			w.put16(off+2+i*2, v)
		}
	}
	return start
}

func (w *writer) writeBones(bones []studio.Bone) int32 {
	off := w.alloc(112 * len(bones))
	for i, bone := range bones {
		o := off + i*112
		w.putStr(o, bone.Name, 32)
		w.put32(o+32, bone.Parent)
		w.put32(o+36, bone.Flags)
		for j := 0; j < 6; j++ {
			w.put32(o+40+j*4, bone.Controller[j])
			w.putF(o+64+j*4, bone.Value[j])
			w.putF(o+88+j*4, bone.Scale[j])
		}
	}
	return int32(off)
}

func (w *writer) writeControllers(ctls []studio.BoneController) int32 {
	off := w.alloc(24 * len(ctls))
	for i, c := range ctls {
		o := off + i*24
		w.put32(o, c.Bone)
		w.put32(o+4, c.Type)
		w.putF(o+8, c.Start)
		w.putF(o+12, c.End)
		w.put32(o+16, c.Rest)
		w.put32(o+20, c.Index)
	}
	return int32(off)
}

func (w *writer) writeSequence(o int, seq *Sequence, animIndex int32) {
	s := &seq.Sequence
	w.putStr(o, s.Label, 32)
	w.putF(o+32, s.FPS)
	w.put32(o+36, s.Flags)
	w.put32(o+40, s.Activity)
	w.put32(o+44, s.ActWeight)
	w.put32(o+56, s.NumFrames)
	w.put32(o+68, s.MotionType)
	w.put32(o+72, s.MotionBone)
	w.putVec(o+76, s.LinearMovement)
	w.putVec(o+96, s.BBMin)
	w.putVec(o+108, s.BBMax)
	w.put32(o+120, int32(numBlends(seq)))
	w.put32(o+124, animIndex)
	for j := 0; j < 2; j++ {
		w.put32(o+128+j*4, s.BlendType[j])
		w.putF(o+136+j*4, s.BlendStart[j])
		w.putF(o+144+j*4, s.BlendEnd[j])
	}
	w.put32(o+152, s.BlendParent)
	w.put32(o+156, s.SeqGroup)
	w.put32(o+160, s.EntryNode)
	w.put32(o+164, s.ExitNode)
	w.put32(o+168, s.NodeFlags)
	w.put32(o+172, s.NextSeq)
}

func (w *writer) writeBodyParts(parts []BodyPart) int32 {
	off := w.alloc(76 * len(parts))
	for i, bp := range parts {
		o := off + i*76
		w.putStr(o, bp.Name, 64)
		w.put32(o+64, int32(len(bp.Models)))
		base := bp.Base
		if base == 0 {
			base = 1
		}
		w.put32(o+68, base)

		models := w.alloc(112 * len(bp.Models))
		w.put32(o+72, int32(models))
		for j := range bp.Models {
			w.writeSubModel(models+j*112, &bp.Models[j])
		}
	}
	return int32(off)
}

func (w *writer) writeSubModel(o int, sm *SubModel) {
	w.putStr(o, sm.Name, 64)

	verts := w.alloc(12 * len(sm.Vertices))
	for i, v := range sm.Vertices {
		w.putVec(verts+i*12, v)
	}
	info := w.alloc(len(sm.Vertices))
	for i := range sm.Vertices {
		if i < len(sm.VertexBones) {
			w.buf[info+i] = sm.VertexBones[i]
		}
	}
	w.put32(o+80, int32(len(sm.Vertices)))
	w.put32(o+84, int32(info))
	w.put32(o+88, int32(verts))

	meshes := w.alloc(20 * len(sm.Meshes))
	w.put32(o+72, int32(len(sm.Meshes)))
	w.put32(o+76, int32(meshes))
	for i, cmds := range sm.Meshes {
		mo := meshes + i*20
		tris := 0
		tri := len(w.buf)
		for _, cmd := range cmds {
			n := int16(len(cmd.Verts))
			if cmd.Fan {
				n = -n
			}
			c := w.alloc(2 + 8*len(cmd.Verts))
			w.put16(c, n)
			for k, v := range cmd.Verts {
				w.put16(c+2+k*8, v.Vertex)
				w.put16(c+4+k*8, v.Normal)
				w.put16(c+6+k*8, v.S)
				w.put16(c+8+k*8, v.T)
			}
			tris += cmd.Triangles()
		}
		w.alloc(2)
		w.put32(mo, int32(tris))
		w.put32(mo+4, int32(tri))
	}
}

func (w *writer) writeAttachments(atts []studio.Attachment) int32 {
	off := w.alloc(88 * len(atts))
	for i, a := range atts {
		o := off + i*88
		w.putStr(o, a.Name, 32)
		w.put32(o+32, a.Type)
		w.put32(o+36, a.Bone)
		w.putVec(o+40, a.Origin)
		for j := 0; j < 3; j++ {
			w.putVec(o+52+j*12, a.Vectors[j])
		}
	}
	return int32(off)
}

// EncodeChannel returns the raw entries of ch, for wrapping with studio.NewTrack.
func EncodeChannel(ch Channel) []byte {
	w := &writer{}
	w.writeChannel(ch)
	return w.buf
}
