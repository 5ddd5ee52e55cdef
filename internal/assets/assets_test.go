package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
	"github.com/Faultbox/studiorender/pkg/studio/studiotest"
)

func init() {
	logger.Nop()
}

func crateBuilder() *studiotest.Builder {
	return &studiotest.Builder{
		Name:   "crate",
		Bones:  []studio.Bone{studiotest.RootBone("root")},
		Groups: []studio.SequenceGroup{{Label: "default"}, {Label: "extra", Name: "models/crate01.mdl"}},
		Sequences: []studiotest.Sequence{
			{Sequence: studio.Sequence{Label: "idle", FPS: 10, NumFrames: 1}},
			{
				Sequence: studio.Sequence{Label: "open", FPS: 10, NumFrames: 5, SeqGroup: 1},
				Blends:   [][]studiotest.BoneAnim{{{2: studiotest.Channel{{Total: 5, Values: []int16{3}}}}}},
			},
		},
		BodyParts: []studiotest.BodyPart{{Name: "body", Base: 1, Models: []studiotest.SubModel{{
			Name:        "box",
			Vertices:    []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			VertexBones: []uint8{0, 0, 0},
			Meshes:      [][]studio.TriCommand{{studiotest.Fan(0, 1, 2)}},
		}}}},
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	base, mod := t.TempDir(), t.TempDir()
	writeFile(t, base, "models/a.txt", []byte("base"))
	writeFile(t, base, "models/b.txt", []byte("only base"))
	writeFile(t, mod, "models/a.txt", []byte("mod"))

	m := NewManager()
	m.AddSearchPath(base)
	m.AddSearchPath(mod)

	tests := []struct {
		name string
		want string
	}{
		{"models/a.txt", "mod"},
		{"models/b.txt", "only base"},
		{"/Models\\B.txt", "only base"},
	}
	for _, tt := range tests {
		data, err := m.Load(tt.name)
		if err != nil {
			t.Errorf("Load(%q) error = %v", tt.name, err)
			continue
		}
		if string(data) != tt.want {
			t.Errorf("Load(%q) = %q, want %q", tt.name, data, tt.want)
		}
	}

	if _, err := m.Load("models/missing.txt"); errors.Cause(err) != ErrNotFound {
		t.Errorf("missing file error = %v", err)
	}
	if hits, misses := m.cache.Stats(); hits != 1 || misses != 3 {
		t.Errorf("cache stats = (%d, %d), want (1, 3)", hits, misses)
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	b := crateBuilder()
	writeFile(t, dir, "models/crate.mdl", b.Bytes())
	writeFile(t, dir, "models/crate01.mdl", b.GroupBytes(1))

	m := NewManager()
	m.AddSearchPath(dir)

	idx, mdl, err := m.LoadModel("models/crate.mdl")
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if idx != 1 || mdl.Path != "models/crate.mdl" {
		t.Errorf("index = %d path = %q", idx, mdl.Path)
	}
	if !mdl.Sequence(1).Loaded() {
		t.Error("external group should be attached")
	}
	if m.Model(1) != mdl || m.Model(0) != nil || m.Model(2) != nil {
		t.Error("Model() lookup mismatch")
	}

	again, _, err := m.LoadModel("models/CRATE.mdl")
	if err != nil || again != 1 || m.Count() != 1 {
		t.Errorf("reload = %d, %v; count %d", again, err, m.Count())
	}
}

func TestLoadModelMissingGroup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "models/crate.mdl", crateBuilder().Bytes())

	m := NewManager()
	m.AddSearchPath(dir)

	_, mdl, err := m.LoadModel("models/crate.mdl")
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if mdl.Sequence(1).Loaded() {
		t.Error("group without a file should stay unloaded")
	}
	if !m.missing["models/crate01.mdl"] {
		t.Error("missing group should be remembered")
	}
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "models/junk.mdl", []byte("not a model"))

	m := NewManager()
	m.AddSearchPath(dir)

	if _, _, err := m.LoadModel("models/none.mdl"); errors.Cause(err) != ErrNotFound {
		t.Errorf("missing model error = %v", err)
	}
	if _, _, err := m.LoadModel("models/junk.mdl"); err == nil {
		t.Error("junk model should fail to parse")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestClose(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "models/crate.mdl", crateBuilder().Bytes())
	m := NewManager()
	m.AddSearchPath(dir)
	if _, _, err := m.LoadModel("models/crate.mdl"); err != nil {
		t.Fatal(err)
	}

	m.Close()
	if m.Count() != 0 || len(m.Models()) != 0 {
		t.Error("Close should drop models")
	}
}
