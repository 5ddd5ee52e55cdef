package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Emitter limits.
const (
	DefaultMaxFaces = 10000
	DefaultExtrude  = 256
)

// SkipReason tells why no shadow volume was drawn.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipDisabled
	SkipOccluded
	SkipNoTopology
	SkipEmpty
	SkipOversized
	SkipMismatch
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipDisabled:
		return "disabled"
	case SkipOccluded:
		return "occluded"
	case SkipNoTopology:
		return "no topology"
	case SkipEmpty:
		return "empty"
	case SkipOversized:
		return "oversized"
	case SkipMismatch:
		return "mismatch"
	}
	return "unknown"
}

// Emitter builds silhouette volumes for posed submodels. The vertex, index
// and lit buffers are reused across calls.
type Emitter struct {
	MaxFaces int
	Extrude  float32

	backend  Backend
	vertices []mgl32.Vec3
	indices  []uint16
	lit      []bool
}

// NewEmitter creates an emitter submitting to backend.
func NewEmitter(backend Backend) *Emitter {
	return &Emitter{
		MaxFaces: DefaultMaxFaces,
		Extrude:  DefaultExtrude,
		backend:  backend,
	}
}

// Transform fills the vertex buffer: slot 2i holds vertex i posed by its
// bone, slot 2i+1 the same point pushed along dir.
func (em *Emitter) Transform(sm *studio.SubModel, bones []math.Mat34, dir mgl32.Vec3) []mgl32.Vec3 {
	d := dir.Mul(em.Extrude)
	n := len(sm.Vertices) * 2
	if cap(em.vertices) < n {
		em.vertices = make([]mgl32.Vec3, n)
	}
	em.vertices = em.vertices[:n]

	for i, v := range sm.Vertices {
		b := int(sm.VertexBones[i])
		var p mgl32.Vec3
		if b < len(bones) {
			p = mgl32.Vec3(bones[b].TransformPoint(v))
		} else {
			p = mgl32.Vec3(v)
		}
		em.vertices[2*i] = p
		em.vertices[2*i+1] = p.Sub(d)
	}
	return em.vertices
}

// Classify marks each face lit when its normal does not point away from dir.
// It returns false if a face references a vertex outside the buffer.
func (em *Emitter) Classify(faces []Face, dir mgl32.Vec3) ([]bool, bool) {
	if cap(em.lit) < len(faces) {
		em.lit = make([]bool, len(faces))
	}
	em.lit = em.lit[:len(faces)]

	verts := em.vertices
	for i, f := range faces {
		if int(f.V0) >= len(verts) || int(f.V1) >= len(verts) || int(f.V2) >= len(verts) {
			return nil, false
		}
		v1 := verts[f.V1].Sub(verts[f.V0])
		v2 := verts[f.V2].Sub(verts[f.V1])
		norm := v2.Cross(v1)
		em.lit[i] = norm.Dot(dir) >= 0
	}
	return em.lit, true
}

// Silhouette appends a quad for every edge between a lit and an unlit face,
// and for every boundary edge of a lit face. The quad runs along the edge
// on the lit side and its extruded copy.
func (em *Emitter) Silhouette(edges []Edge, lit []bool) ([]uint16, bool) {
	em.indices = em.indices[:0]
	for _, e := range edges {
		if int(e.Face0) >= len(lit) || (!e.Boundary() && int(e.Face1) >= len(lit)) {
			return nil, false
		}
		var a, b uint16
		if lit[e.Face0] {
			if !e.Boundary() && lit[e.Face1] {
				continue
			}
			a, b = e.V0, e.V1
		} else {
			if e.Boundary() || !lit[e.Face1] {
				continue
			}
			a, b = e.V1, e.V0
		}
		if int(a)+1 >= len(em.vertices) || int(b)+1 >= len(em.vertices) {
			return nil, false
		}
		em.indices = append(em.indices, a, b, a+1, a+1, b, b+1)
	}
	return em.indices, true
}

// Volume draws the shadow volume of one submodel in two stencil passes and
// returns the number of triangles per pass.
func (em *Emitter) Volume(data *SubModel, sm *studio.SubModel, bones []math.Mat34, dir mgl32.Vec3) (int, SkipReason) {
	if len(data.Faces) == 0 {
		return 0, SkipEmpty
	}
	if em.MaxFaces > 0 && len(data.Faces) > em.MaxFaces {
		return 0, SkipOversized
	}
	if len(sm.VertexBones) < len(sm.Vertices) {
		return 0, SkipMismatch
	}

	verts := em.Transform(sm, bones, dir)
	lit, ok := em.Classify(data.Faces, dir)
	if !ok {
		return 0, SkipMismatch
	}
	indices, ok := em.Silhouette(data.Edges, lit)
	if !ok {
		return 0, SkipMismatch
	}

	tris := len(indices) / 3
	if tris == 0 {
		return 0, SkipNone
	}
	em.backend.Draw(verts, indices, PassIncrement)
	em.backend.Draw(verts, indices, PassDecrement)
	return tris, SkipNone
}
