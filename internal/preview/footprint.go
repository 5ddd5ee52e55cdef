// Package preview renders the ground footprint of a model's shadow volume to
// an image, so shadow topology can be checked without a window.
package preview

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/Faultbox/studiorender/internal/engine/anim"
	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

var (
	ErrHorizon     = errors.New("light is at or below the horizon")
	ErrNoFootprint = errors.New("model casts no shadow")
	ErrMismatch    = errors.New("shadow topology does not match model")
)

// Footprint is a shadow projected onto the ground plane along the light.
type Footprint struct {
	Faces    [][3]mgl32.Vec2 // Lit faces
	Edges    [][2]mgl32.Vec2 // Silhouette edges
	Min, Max mgl32.Vec2
}

// Size returns the extent of the footprint.
func (f *Footprint) Size() mgl32.Vec2 {
	return f.Max.Sub(f.Min)
}

func (f *Footprint) grow(p mgl32.Vec2) {
	if len(f.Faces) == 0 && len(f.Edges) == 0 {
		f.Min, f.Max = p, p
		return
	}
	for i := 0; i < 2; i++ {
		f.Min[i] = min(f.Min[i], p[i])
		f.Max[i] = max(f.Max[i], p[i])
	}
}

// Pose returns the bone transforms of m at frame of sequence seq, placed at
// the origin. An unknown sequence gives the bind pose.
func Pose(m *studio.Model, seq int, frame float64) []math.Mat34 {
	s := m.Sequence(seq)
	if s == nil {
		s = &studio.Sequence{NumFrames: 1}
	}
	pose := anim.NewBlender().Single(m, s, frame, anim.Controls{})

	var t skeleton.Transforms
	sp := &skeleton.Space{Rotation: math.Identity34()}
	skeleton.Compose(&t, m.Bones, pose, skeleton.Root{Space: sp, Path: skeleton.HardwarePath{}})
	return t.Bone
}

// Project poses m and projects the lit faces and silhouette of the selected
// body onto the ground plane.
func Project(m *studio.Model, topo *shadow.Topology, opts Options) (*Footprint, error) {
	dir := shadow.Direction(opts.SkyVector)
	if dir.Z() < 1e-3 {
		return nil, errors.Wrapf(ErrHorizon, "direction %v", dir)
	}
	bones := Pose(m, opts.Sequence, opts.Frame)

	project := func(p mgl32.Vec3) mgl32.Vec2 {
		t := (p.Z() - opts.Ground) / dir.Z()
		q := p.Sub(dir.Mul(t))
		return mgl32.Vec2{q.X(), q.Y()}
	}

	em := shadow.NewEmitter(nil)
	fp := &Footprint{}
	base := 0
	for i := range m.BodyParts {
		bp := &m.BodyParts[i]
		if len(bp.Models) == 0 {
			continue
		}
		idx := bp.SubModelIndex(opts.Body)
		if base+idx >= len(topo.SubModels) {
			return nil, errors.Wrapf(ErrMismatch, "submodel %d of %d", base+idx, len(topo.SubModels))
		}
		data := &topo.SubModels[base+idx]
		base += len(bp.Models)

		sm := &bp.Models[idx]
		if len(sm.VertexBones) < len(sm.Vertices) {
			return nil, errors.Wrapf(ErrMismatch, "submodel %q", sm.Name)
		}
		verts := em.Transform(sm, bones, dir)
		lit, ok := em.Classify(data.Faces, dir)
		if !ok {
			return nil, errors.Wrapf(ErrMismatch, "submodel %q faces", sm.Name)
		}
		for j, f := range data.Faces {
			if !lit[j] {
				continue
			}
			tri := [3]mgl32.Vec2{project(verts[f.V0]), project(verts[f.V1]), project(verts[f.V2])}
			for _, p := range tri {
				fp.grow(p)
			}
			fp.Faces = append(fp.Faces, tri)
		}

		quads, ok := em.Silhouette(data.Edges, lit)
		if !ok {
			return nil, errors.Wrapf(ErrMismatch, "submodel %q edges", sm.Name)
		}
		for k := 0; k+1 < len(quads); k += 6 {
			fp.Edges = append(fp.Edges, [2]mgl32.Vec2{project(verts[quads[k]]), project(verts[quads[k+1]])})
		}
	}

	if len(fp.Faces) == 0 {
		return nil, ErrNoFootprint
	}
	return fp, nil
}
