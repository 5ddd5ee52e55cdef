// Package shadow builds silhouette shadow volumes for studio models and
// submits them to the stencil buffer.
package shadow

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// NoFace marks the open second face slot of a boundary edge.
const NoFace = 0xFFFF

// ErrNoSubModels is returned when a model has nothing to build topology for.
var ErrNoSubModels = errors.New("model has no submodels")

// Face is a triangle as three vertex indices.
type Face struct {
	V0, V1, V2 uint16
}

// Edge joins two vertices and records up to two adjacent faces. Face1 is
// NoFace for a boundary edge.
type Edge struct {
	V0, V1       uint16
	Face0, Face1 uint16
}

// Boundary reports whether the edge has only one face.
func (e Edge) Boundary() bool {
	return e.Face1 == NoFace
}

// SubModel is the adjacency data of one submodel. Vertex indices are doubled:
// slot 2i holds the posed vertex i and slot 2i+1 its extruded copy.
type SubModel struct {
	Faces []Face
	Edges []Edge
}

// Topology holds one SubModel per submodel, body parts flattened in order.
type Topology struct {
	SubModels []SubModel
}

// Faces returns the total face count.
func (t *Topology) Faces() int {
	n := 0
	for i := range t.SubModels {
		n += len(t.SubModels[i].Faces)
	}
	return n
}

// Edges returns the total edge count.
func (t *Topology) Edges() int {
	n := 0
	for i := range t.SubModels {
		n += len(t.SubModels[i].Edges)
	}
	return n
}

// BuildFaces expands the strips and fans of a submodel into triangles.
// Strip winding alternates per added vertex so every face keeps the
// orientation of the first one.
func BuildFaces(sm *studio.SubModel) []Face {
	n := 0
	for i := range sm.Meshes {
		for _, cmd := range sm.Meshes[i].Commands {
			n += cmd.Triangles()
		}
	}
	if n == 0 {
		return nil
	}

	faces := make([]Face, 0, n)
	for i := range sm.Meshes {
		for _, cmd := range sm.Meshes[i].Commands {
			if len(cmd.Verts) < 3 {
				continue
			}
			i0 := uint16(cmd.Verts[0].Vertex)
			i1 := uint16(cmd.Verts[1].Vertex)
			i2 := uint16(cmd.Verts[2].Vertex)
			faces = append(faces, Face{i0, i1, i2})

			rest := cmd.Verts[3:]
			if cmd.Fan {
				for _, v := range rest {
					i1, i2 = i2, uint16(v.Vertex)
					faces = append(faces, Face{i0, i1, i2})
				}
				continue
			}

			reverse := false
			for _, v := range rest {
				i0, i1, i2 = i1, i2, uint16(v.Vertex)
				if !reverse {
					faces = append(faces, Face{i2, i1, i0})
				} else {
					faces = append(faces, Face{i0, i1, i2})
				}
				reverse = !reverse
			}
		}
	}
	return faces
}

// BuildEdges derives the edge list of faces. Each face edge either closes an
// open edge running the opposite way or starts a new one.
func BuildEdges(faces []Face) []Edge {
	if len(faces) == 0 {
		return nil
	}
	edges := make([]Edge, 0, len(faces)*3)
	for i, f := range faces {
		face := uint16(i)
		edges = addEdge(edges, face, f.V0, f.V1)
		edges = addEdge(edges, face, f.V1, f.V2)
		edges = addEdge(edges, face, f.V2, f.V0)
	}
	return edges[:len(edges):len(edges)]
}

func addEdge(edges []Edge, face, v0, v1 uint16) []Edge {
	for i := range edges {
		e := &edges[i]
		if e.V0 == v1 && e.V1 == v0 && e.Face1 == NoFace {
			e.Face1 = face
			return edges
		}
	}
	return append(edges, Edge{V0: v0, V1: v1, Face0: face, Face1: NoFace})
}

// doubleIndices moves every vertex reference to its even slot.
func doubleIndices(sm *SubModel) {
	for i := range sm.Faces {
		f := &sm.Faces[i]
		f.V0 *= 2
		f.V1 *= 2
		f.V2 *= 2
	}
	for i := range sm.Edges {
		e := &sm.Edges[i]
		e.V0 *= 2
		e.V1 *= 2
	}
}

// BuildSubModel builds the doubled adjacency data of one submodel.
func BuildSubModel(sm *studio.SubModel) SubModel {
	faces := BuildFaces(sm)
	out := SubModel{Faces: faces, Edges: BuildEdges(faces)}
	doubleIndices(&out)
	return out
}

// Build builds the topology of every submodel of m.
func Build(m *studio.Model) (*Topology, error) {
	n := 0
	for i := range m.BodyParts {
		n += len(m.BodyParts[i].Models)
	}
	if n == 0 {
		return nil, errors.Wrap(ErrNoSubModels, m.Header.Name)
	}

	logger.Debug("generating shadow topology", zap.String("model", m.Header.Name))

	t := &Topology{SubModels: make([]SubModel, 0, n)}
	for i := range m.BodyParts {
		for j := range m.BodyParts[i].Models {
			t.SubModels = append(t.SubModels, BuildSubModel(&m.BodyParts[i].Models[j]))
		}
	}

	logger.Debug("shadow topology done",
		zap.String("model", m.Header.Name),
		zap.Int("polys", t.Faces()),
		zap.Int("edges", t.Edges()),
	)
	return t, nil
}
