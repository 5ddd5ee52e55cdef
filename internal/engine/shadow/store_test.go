package shadow

import (
	"os"
	"reflect"
	"testing"

	"github.com/Faultbox/studiorender/pkg/studio"
)

func TestStoreEnsureBuildsAndWrites(t *testing.T) {
	dir := t.TempDir()
	m := twoBoneModel(t)

	s := NewStore(dir)
	topo := s.Ensure(m)
	if topo == nil {
		t.Fatal("Ensure() = nil")
	}
	if again := s.Ensure(m); again != topo {
		t.Error("second Ensure() should return the stored topology")
	}
	if got, ok := s.Lookup(ModelName(m)); !ok || got != topo {
		t.Error("Lookup() should find the built topology")
	}

	path := CachePath(dir, ModelName(m))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	fresh := NewStore(dir)
	loaded := fresh.Ensure(m)
	if !reflect.DeepEqual(loaded, topo) {
		t.Errorf("cached topology = %+v, want %+v", loaded, topo)
	}
}

func TestStoreCacheWins(t *testing.T) {
	dir := t.TempDir()
	m := twoBoneModel(t)

	stale := &Topology{SubModels: []SubModel{{Faces: []Face{{0, 2, 4}}}}}
	if err := SaveTopology(CachePath(dir, ModelName(m)), stale); err != nil {
		t.Fatal(err)
	}

	s := NewStore(dir)
	if got := s.Ensure(m); !reflect.DeepEqual(got, stale) {
		t.Errorf("Ensure() = %+v, want the cached file", got)
	}
}

func TestStoreCorruptCacheRebuilds(t *testing.T) {
	dir := t.TempDir()
	m := twoBoneModel(t)
	path := CachePath(dir, ModelName(m))
	if err := os.WriteFile(path, []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(dir)
	topo := s.Ensure(m)
	if topo == nil || len(topo.SubModels) != 3 {
		t.Fatalf("Ensure() = %+v, want a rebuilt topology", topo)
	}
	loaded, err := LoadTopology(path)
	if err != nil {
		t.Fatalf("rebuilt cache unreadable: %v", err)
	}
	if !reflect.DeepEqual(loaded, topo) {
		t.Error("rebuilt topology was not written back")
	}
}

func TestStoreWithoutDir(t *testing.T) {
	s := NewStore("")
	if s.Ensure(twoBoneModel(t)) == nil {
		t.Fatal("Ensure() = nil")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreNoSubModels(t *testing.T) {
	s := NewStore(t.TempDir())
	m := &studio.Model{Path: "models/empty.mdl"}

	if s.Ensure(m) != nil {
		t.Error("Ensure() of a model without submodels should be nil")
	}
	if _, ok := s.Lookup(m.Path); ok {
		t.Error("Lookup() should not report an empty entry")
	}
}

func TestStoreWriteAll(t *testing.T) {
	dir := t.TempDir()
	a := twoBoneModel(t)
	b := twoBoneModel(t)
	b.Path = "models/other.mdl"
	empty := &studio.Model{Path: "models/empty.mdl"}

	s := NewStore(dir)
	if n := s.WriteAll([]*studio.Model{a, nil, empty, b}); n != 2 {
		t.Errorf("WriteAll() = %d, want 2", n)
	}
	for _, name := range []string{a.Path, b.Path} {
		if _, err := os.Stat(CachePath(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
