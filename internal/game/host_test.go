package game

import (
	"testing"

	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
	"github.com/Faultbox/studiorender/pkg/math"
)

var (
	_ studiorender.Host = (*host)(nil)
	_ shadow.Tracer     = groundTracer{}
)

type remapRecorder struct{ top, bottom int }

func (r *remapRecorder) SetRemapColors(top, bottom int) { r.top, r.bottom = top, bottom }

func TestHost(t *testing.T) {
	models := modelList{boxModel(t, "a", 1)}
	rec := &remapRecorder{}
	h := &host{models: models, remap: rec, frame: studiorender.Frame{Count: 3, Now: 1.5}}

	if h.Model(0) != nil || h.Model(1) != models[0] || h.Model(2) != nil {
		t.Error("Model() lookup mismatch")
	}
	if h.PlayerModel(0) != nil {
		t.Error("viewer has no player models")
	}
	if f := h.Frame(); f.Count != 3 || f.Now != 1.5 {
		t.Errorf("Frame() = %+v", f)
	}
	h.SetRemapColors(10, 20)
	if rec.top != 10 || rec.bottom != 20 {
		t.Errorf("remap = %+v", rec)
	}

	(&host{models: models}).SetRemapColors(1, 2)
}

func TestGroundTracer(t *testing.T) {
	tr := groundTracer{}
	tests := []struct {
		name     string
		from, to math.Vec3
		want     float32
	}{
		{"camera above", math.Vec3{0, 0, 36}, math.Vec3{100, 0, 50}, 1},
		{"camera on ground", math.Vec3{0, 0, 36}, math.Vec3{100, 0, 0}, 1},
		{"camera below", math.Vec3{0, 0, 30}, math.Vec3{0, 0, -10}, 0.75},
		{"origin below ground", math.Vec3{0, 0, -4}, math.Vec3{0, 0, -10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Trace(tt.from, tt.to); got != tt.want {
				t.Errorf("Trace() = %v, want %v", got, tt.want)
			}
		})
	}
}
