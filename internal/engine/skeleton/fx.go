package skeleton

import (
	"math/rand/v2"

	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
)

// Effect post-processes the render transform of a root bone.
type Effect interface {
	Apply(m *math.Mat34)
}

// Random is the host random source. Bounds are inclusive.
type Random interface {
	Int(lo, hi int) int
	Float(lo, hi float32) float32
}

// NewRandom returns a Random seeded with seed.
func NewRandom(seed uint64) Random {
	return &pcgRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type pcgRandom struct {
	r *rand.Rand
}

func (p *pcgRandom) Int(lo, hi int) int {
	return lo + p.r.IntN(hi-lo+1)
}

func (p *pcgRandom) Float(lo, hi float32) float32 {
	return lo + p.r.Float32()*(hi-lo)
}

// FxTransform applies the client-side distortion of a render effect.
type FxTransform struct {
	Fx       entity.RenderFx
	Now      float64
	AnimTime float64
	Rand     Random
}

// Apply implements Effect.
//
// Distort and hologram occasionally stretch the X or Z row, or jolt the
// translation. Explode stretches the Y column over time up to twice its size.
func (f FxTransform) Apply(m *math.Mat34) {
	switch f.Fx {
	case entity.FxDistort, entity.FxHologram:
		if f.Rand.Int(0, 49) == 0 {
			axis := f.Rand.Int(0, 1)
			if axis == 1 {
				axis = 2
			}
			scale := f.Rand.Float(1, 1.484)
			for j := 0; j < 3; j++ {
				m[axis][j] *= scale
			}
		} else if f.Rand.Int(0, 49) == 0 {
			// Axis draw is unused but keeps the random sequence of the jolt.
			f.Rand.Int(0, 1)
			offset := f.Rand.Float(-10, 10)
			m[f.Rand.Int(0, 2)][3] += offset
		}
	case entity.FxExplode:
		scale := float32(1 + (f.Now-f.AnimTime)*10)
		if scale > 2 {
			scale = 2
		}
		m[0][1] *= scale
		m[1][1] *= scale
		m[2][1] *= scale
	}
}
