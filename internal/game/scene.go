package game

import (
	"sort"

	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

const (
	// sceneGap separates neighbouring models in the row.
	sceneGap = 16
	// replayHold is how long a finished one-shot sequence holds its last
	// frame before replaying, in seconds.
	replayHold = 1.0
)

// ModelSource resolves model indices.
type ModelSource interface {
	Model(index int) *studio.Model
}

// Scene stands one entity per model in a row along +Y on the ground plane
// and plays their sequences the way a server would replicate them.
type Scene struct {
	ents   *entity.Manager
	models ModelSource

	next     int // Index of the next entity
	cursor   float32
	start    map[int]float64 // Sequence start time per entity
	selected int
}

// NewScene creates an empty scene over ents.
func NewScene(ents *entity.Manager, models ModelSource) *Scene {
	return &Scene{
		ents:   ents,
		models: models,
		next:   ents.MaxClients() + 1,
		start:  make(map[int]float64),
	}
}

// modelBounds returns the extent of the first sequence, falling back to the
// header box and then to a 32 unit cube.
func modelBounds(m *studio.Model) (min, max math.Vec3) {
	if seq := m.Sequence(0); seq != nil && seq.BBMin != seq.BBMax {
		return seq.BBMin, seq.BBMax
	}
	if m.Header.BBMin != m.Header.BBMax {
		return m.Header.BBMin, m.Header.BBMax
	}
	return math.Vec3{-16, -16, -16}, math.Vec3{16, 16, 16}
}

// Add places an entity for model at the end of the row, standing on z = 0.
func (s *Scene) Add(model int, now float64) *entity.Entity {
	m := s.models.Model(model)
	if m == nil {
		return nil
	}
	min, max := modelBounds(m)
	origin := math.Vec3{0, s.cursor - min[1], -min[2]}
	s.cursor += max[1] - min[1] + sceneGap

	e := entity.NewEntity(s.next, model, origin)
	e.Cur.AnimTime = now
	s.next++
	s.ents.Add(e)
	s.start[e.Index] = now
	if s.selected == 0 {
		s.selected = e.Index
	}
	return e
}

// Entities returns the entities ordered by index.
func (s *Scene) Entities() []*entity.Entity {
	all := s.ents.All()
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	return all
}

// Selected returns the entity the sequence and body controls act on.
func (s *Scene) Selected() *entity.Entity {
	return s.ents.Get(s.selected)
}

// SelectNext moves the selection to the next entity, wrapping around.
func (s *Scene) SelectNext() *entity.Entity {
	all := s.Entities()
	if len(all) == 0 {
		return nil
	}
	for i, e := range all {
		if e.Index == s.selected {
			s.selected = all[(i+1)%len(all)].Index
			return s.Selected()
		}
	}
	s.selected = all[0].Index
	return all[0]
}

// StepSequence moves the selected entity delta sequences on, wrapping around.
func (s *Scene) StepSequence(delta int, now float64) {
	e := s.Selected()
	if e == nil {
		return
	}
	m := s.models.Model(e.Model)
	if m == nil || len(m.Sequences) == 0 {
		return
	}
	n := len(m.Sequences)
	seq := ((e.Cur.Sequence+delta)%n + n) % n
	e.SetSequence(seq, now)
	s.start[e.Index] = now
}

// BodyCount returns the number of distinct body selections of m.
func BodyCount(m *studio.Model) int32 {
	n := int32(1)
	for _, bp := range m.BodyParts {
		if len(bp.Models) > 1 {
			n *= int32(len(bp.Models))
		}
	}
	return n
}

// NextBody steps the selected entity to its next body selection.
func (s *Scene) NextBody() {
	e := s.Selected()
	if e == nil {
		return
	}
	m := s.models.Model(e.Model)
	if m == nil {
		return
	}
	e.Cur.Body = (e.Cur.Body + 1) % BodyCount(m)
}

// Bounds returns the box around every placed model.
func (s *Scene) Bounds() (min, max math.Vec3) {
	first := true
	for _, e := range s.Entities() {
		m := s.models.Model(e.Model)
		if m == nil {
			continue
		}
		lo, hi := modelBounds(m)
		lo, hi = lo.Add(e.Origin), hi.Add(e.Origin)
		if first {
			min, max = lo, hi
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			min[i] = minf(min[i], lo[i])
			max[i] = maxf(max[i], hi[i])
		}
	}
	return min, max
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Update replicates the frame of every entity at now. Looping sequences
// wrap; one-shot sequences hold their last frame, then replay.
func (s *Scene) Update(now float64) {
	for _, e := range s.ents.All() {
		m := s.models.Model(e.Model)
		if m == nil {
			continue
		}
		seq := m.Sequence(e.Cur.Sequence)
		if seq == nil || seq.NumFrames <= 1 || seq.FPS <= 0 {
			e.Cur.Frame = 0
			e.Latched.PrevAnimTime, e.Cur.AnimTime = e.Cur.AnimTime, now
			continue
		}

		last := float64(seq.NumFrames - 1)
		f := (now - s.start[e.Index]) * float64(seq.FPS)
		if seq.Looping() {
			f -= float64(int(f/last)) * last
		} else if f > last+replayHold*float64(seq.FPS) {
			s.start[e.Index] = now
			f = 0
		} else if f > last {
			f = last
		}

		e.Cur.Frame = float32(f * 256 / last)
		e.Latched.PrevAnimTime, e.Cur.AnimTime = e.Cur.AnimTime, now
	}
}
