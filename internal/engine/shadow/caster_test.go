package shadow

import (
	"testing"

	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

var _ studiorender.ShadowCaster = (*Caster)(nil)

type fakeTracer struct {
	fraction float32
	calls    int
}

func (f *fakeTracer) Trace(from, to math.Vec3) float32 {
	f.calls++
	return f.fraction
}

type casterFixture struct {
	caster *Caster
	rec    *Recorder
	tracer *fakeTracer
	model  *studio.Model
	bones  *skeleton.Transforms
	ent    *entity.Entity
}

func newCasterFixture(t *testing.T) *casterFixture {
	f := &casterFixture{
		rec:    &Recorder{},
		tracer: &fakeTracer{fraction: 1},
		model:  twoBoneModel(t),
	}
	f.caster = NewCaster(Config{
		Store:     NewStore(t.TempDir()),
		Backend:   f.rec,
		Tracer:    f.tracer,
		SkyVector: [3]float32{0, 0, -1},
		Enabled:   true,
	})
	f.bones = skeleton.NewTransforms(2)
	copy(f.bones.Bone, identityBones(2))
	f.ent = entity.NewEntity(5, 1, math.Vec3{})
	return f
}

func (f *casterFixture) draw() SkipReason {
	return f.caster.Draw(f.ent, f.model, f.bones, math.Vec3{-100, 0, 0})
}

func TestCasterDraw(t *testing.T) {
	f := newCasterFixture(t)

	if reason := f.draw(); reason != SkipNone {
		t.Fatalf("Draw() = %v", reason)
	}
	if f.rec.Begins != 1 || f.rec.Ends != 1 {
		t.Errorf("begin/end = %d/%d, want 1/1", f.rec.Begins, f.rec.Ends)
	}
	if f.rec.Count(PassIncrement) != 1 || f.rec.Count(PassDecrement) != 1 {
		t.Errorf("calls = %+v", f.rec.Calls)
	}
	if f.tracer.calls != 1 {
		t.Errorf("traces = %d, want 1", f.tracer.calls)
	}

	s := f.caster.Stats()
	// The slab and the empty submodel of the second part.
	if s.Volumes != 1 || s.Polys != 16 {
		t.Errorf("stats = %+v", s)
	}
	if f.caster.Store().Len() != 1 {
		t.Error("topology should be stored after the first cast")
	}
}

func TestCasterSelectsBody(t *testing.T) {
	f := newCasterFixture(t)
	f.ent.Cur.Body = 1

	f.draw()
	// The triangle of the second part faces away from the light.
	if len(f.rec.Calls) != 2 {
		t.Fatalf("draw calls = %d, want 2", len(f.rec.Calls))
	}
	if s := f.caster.Stats(); s.Volumes != 2 {
		t.Errorf("volumes = %d, want 2", s.Volumes)
	}
}

func TestCasterSkips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *casterFixture)
		want  SkipReason
	}{
		{"disabled", func(f *casterFixture) { f.caster.SetEnabled(false) }, SkipDisabled},
		{"occluded", func(f *casterFixture) { f.tracer.fraction = 0.5 }, SkipOccluded},
		{"no submodels", func(f *casterFixture) { f.model = &studio.Model{Path: "models/empty.mdl"} }, SkipNoTopology},
		{"facing away", func(f *casterFixture) { f.caster.SetSkyVector([3]float32{0, 0, 1}) }, SkipNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCasterFixture(t)
			tt.setup(f)
			if got := f.draw(); got != tt.want {
				t.Errorf("Draw() = %v, want %v", got, tt.want)
			}
			if len(f.rec.Calls) != 0 {
				t.Errorf("draw calls = %d, want 0", len(f.rec.Calls))
			}
			if tt.want != SkipNone && f.caster.Stats().Skips[tt.want] != 1 {
				t.Errorf("skips = %v", f.caster.Stats().Skips)
			}
		})
	}
}

func TestCasterStaleCache(t *testing.T) {
	f := newCasterFixture(t)
	f.caster.Store().Insert(ModelName(f.model), &Topology{SubModels: []SubModel{{Faces: []Face{{0, 2, 4}}}}})

	if got := f.draw(); got != SkipMismatch {
		t.Errorf("Draw() = %v, want mismatch", got)
	}
}

func TestCasterCheckStencil(t *testing.T) {
	logger.ResetOnce()
	f := newCasterFixture(t)

	if !f.caster.CheckStencil(8) || !f.caster.Enabled() {
		t.Fatal("8 stencil bits should keep shadows on")
	}
	if f.caster.CheckStencil(0) || f.caster.Enabled() {
		t.Fatal("no stencil bits should turn shadows off")
	}
	if f.draw() != SkipDisabled {
		t.Error("Draw() should skip once shadows are off")
	}
}

func TestCasterPrecache(t *testing.T) {
	f := newCasterFixture(t)
	other := twoBoneModel(t)
	other.Path = "models/other.mdl"

	f.caster.Precache([]*studio.Model{f.model, other})
	if f.caster.Store().Len() != 2 {
		t.Errorf("stored = %d, want 2", f.caster.Store().Len())
	}
	f.caster.ResetStats()
	if s := f.caster.Stats(); s.Volumes != 0 || len(s.Skips) != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}
