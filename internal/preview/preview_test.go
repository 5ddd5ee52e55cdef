package preview

import (
	"bytes"
	stdmath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
	"github.com/Faultbox/studiorender/pkg/studio/studiotest"
)

func init() {
	logger.Nop()
}

// roof is a 10x10 square at height 10 facing up.
func roof(t *testing.T, strip studio.TriCommand) (*studio.Model, *shadow.Topology) {
	t.Helper()
	b := &studiotest.Builder{
		Name:  "roof",
		Bones: []studio.Bone{studiotest.RootBone("root")},
		Sequences: []studiotest.Sequence{
			{Sequence: studio.Sequence{Label: "idle", FPS: 10, NumFrames: 1}},
		},
		BodyParts: []studiotest.BodyPart{{Name: "body", Base: 1, Models: []studiotest.SubModel{{
			Name:        "roof",
			Vertices:    []math.Vec3{{0, 0, 10}, {10, 0, 10}, {0, 10, 10}, {10, 10, 10}},
			VertexBones: []uint8{0, 0, 0, 0},
			Meshes:      [][]studio.TriCommand{{strip}},
		}}}},
	}
	m := b.Model(t)
	topo, err := shadow.Build(m)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m, topo
}

func near(a, b mgl32.Vec2) bool {
	return a.ApproxEqualThreshold(b, 1e-3)
}

func TestProjectOverhead(t *testing.T) {
	m, topo := roof(t, studiotest.Strip(0, 2, 1, 3))
	opts := DefaultOptions()
	opts.SkyVector = [3]float32{0, 0, -1}

	fp, err := Project(m, topo, opts)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(fp.Faces) != 2 || len(fp.Edges) != 4 {
		t.Errorf("faces = %d edges = %d, want 2 and 4", len(fp.Faces), len(fp.Edges))
	}
	if !near(fp.Min, mgl32.Vec2{0, 0}) || !near(fp.Max, mgl32.Vec2{10, 10}) {
		t.Errorf("bounds = %v %v", fp.Min, fp.Max)
	}
}

func TestProjectSlanted(t *testing.T) {
	m, topo := roof(t, studiotest.Strip(0, 2, 1, 3))
	opts := DefaultOptions()
	opts.SkyVector = [3]float32{-1, 0, -1}

	fp, err := Project(m, topo, opts)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	// The sun travels toward -x, so the shadow lands 10 units that way.
	if !near(fp.Min, mgl32.Vec2{-10, 0}) || !near(fp.Max, mgl32.Vec2{0, 10}) {
		t.Errorf("bounds = %v %v", fp.Min, fp.Max)
	}
	if !near(fp.Size(), mgl32.Vec2{10, 10}) {
		t.Errorf("size = %v", fp.Size())
	}
}

func TestProjectErrors(t *testing.T) {
	up, upTopo := roof(t, studiotest.Strip(0, 2, 1, 3))
	down, downTopo := roof(t, studiotest.Strip(0, 1, 2, 3))

	tests := []struct {
		name    string
		m       *studio.Model
		topo    *shadow.Topology
		sky     [3]float32
		wantErr error
	}{
		{"light below", up, upTopo, [3]float32{0, 0, 1}, ErrHorizon},
		{"light level", up, upTopo, [3]float32{1, 0, 0}, ErrHorizon},
		{"facing away", down, downTopo, [3]float32{0, 0, -1}, ErrNoFootprint},
		{"stale topology", up, &shadow.Topology{}, [3]float32{0, 0, -1}, ErrMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.SkyVector = tt.sky
			_, err := Project(tt.m, tt.topo, opts)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("Project() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoseUnknownSequence(t *testing.T) {
	m, _ := roof(t, studiotest.Strip(0, 2, 1, 3))
	bones := Pose(m, 5, 0)
	if len(bones) != 1 {
		t.Fatalf("bones = %d, want 1", len(bones))
	}
	if p := bones[0].TransformPoint(math.Vec3{1, 2, 3}); p != (math.Vec3{1, 2, 3}) {
		t.Errorf("bind pose moved point to %v", p)
	}
}

func TestRender(t *testing.T) {
	m, topo := roof(t, studiotest.Strip(0, 2, 1, 3))
	opts := DefaultOptions()
	opts.Size = 64
	opts.Supersample = 2
	opts.SkyVector = [3]float32{0, 0, -1}

	fp, err := Project(m, topo, opts)
	if err != nil {
		t.Fatal(err)
	}
	img := Render(fp, opts)
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("bounds = %v", b)
	}

	if c := img.RGBAAt(32, 32); !close8(c.R, opts.Shadow.R) || !close8(c.B, opts.Shadow.B) {
		t.Errorf("center = %v, want shadow %v", c, opts.Shadow)
	}
	if c := img.RGBAAt(2, 2); !close8(c.R, opts.Background.R) || !close8(c.G, opts.Background.G) {
		t.Errorf("corner = %v, want background %v", c, opts.Background)
	}
}

func close8(a, b uint8) bool {
	return stdmath.Abs(float64(a)-float64(b)) <= 4
}

func TestSave(t *testing.T) {
	m, topo := roof(t, studiotest.Strip(0, 2, 1, 3))
	opts := DefaultOptions()
	opts.Size = 32
	fp, err := Project(m, topo, opts)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "previews", "roof.webp")
	if err := Save(path, Render(fp, opts)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Errorf("not a WebP file: % x", data[:min(len(data), 12)])
	}
}
