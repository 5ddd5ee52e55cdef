package shadow

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestCacheName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"models/player.mdl", "player"},
		{"models/player/gign/gign.mdl", "player/gign/gign"},
		{"valve/models/v_crowbar.mdl", "v_crowbar"},
		{"crate", "crate"},
	}
	for _, tt := range tests {
		if got := CacheName(tt.path); got != tt.want {
			t.Errorf("CacheName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	want := filepath.Join("cache", "player", "gign.dat")
	if got := CachePath("cache", "models/player/gign.mdl"); got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
}

func sampleTopology() *Topology {
	return &Topology{SubModels: []SubModel{
		{
			Faces: []Face{{0, 2, 4}, {6, 4, 2}},
			Edges: []Edge{
				{V0: 0, V1: 2, Face0: 0, Face1: NoFace},
				{V0: 2, V1: 4, Face0: 0, Face1: 1},
			},
		},
		{},
		{
			Faces: []Face{{0, 2, 4}},
			Edges: []Edge{{V0: 4, V1: 0, Face0: 0, Face1: NoFace}},
		},
	}}
}

func TestTopologyRoundTrip(t *testing.T) {
	want := sampleTopology()

	var buf bytes.Buffer
	if err := WriteTopology(&buf, want); err != nil {
		t.Fatalf("WriteTopology() error = %v", err)
	}
	// count + (4 + 2*6 + 4 + 2*8) + (4 + 4) + (4 + 6 + 4 + 8)
	if buf.Len() != 4+36+8+22 {
		t.Errorf("encoded size = %d, want 70", buf.Len())
	}

	got, err := ReadTopology(&buf)
	if err != nil {
		t.Fatalf("ReadTopology() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestTopologyLayout(t *testing.T) {
	var buf bytes.Buffer
	topo := &Topology{SubModels: []SubModel{{
		Faces: []Face{{1, 2, 3}},
		Edges: []Edge{{V0: 4, V1: 5, Face0: 0, Face1: NoFace}},
	}}}
	if err := WriteTopology(&buf, topo); err != nil {
		t.Fatal(err)
	}

	var raw struct {
		Count int32
		Faces int32
		Face  [3]uint16
		Edges int32
		Edge  [4]uint16
	}
	if err := binary.Read(&buf, binary.LittleEndian, &raw); err != nil {
		t.Fatal(err)
	}
	if raw.Count != 1 || raw.Faces != 1 || raw.Face != [3]uint16{1, 2, 3} ||
		raw.Edges != 1 || raw.Edge != [4]uint16{4, 5, 0, 0xFFFF} {
		t.Errorf("layout = %+v", raw)
	}
}

func TestReadTopologyErrors(t *testing.T) {
	var valid bytes.Buffer
	if err := WriteTopology(&valid, sampleTopology()); err != nil {
		t.Fatal(err)
	}

	negative := make([]byte, 4)
	binary.LittleEndian.PutUint32(negative, 0xFFFFFFFF)

	hugeFaces := make([]byte, 8)
	binary.LittleEndian.PutUint32(hugeFaces, 1)
	binary.LittleEndian.PutUint32(hugeFaces[4:], 1<<30)

	tests := []struct {
		name    string
		data    []byte
		corrupt bool
	}{
		{"empty", nil, false},
		{"truncated", valid.Bytes()[:valid.Len()-3], false},
		{"negative submodel count", negative, true},
		{"huge face count", hugeFaces, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTopology(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("ReadTopology() should fail")
			}
			if corrupt := errors.Is(err, ErrCorruptCache); corrupt != tt.corrupt {
				t.Errorf("error = %v, corrupt = %v, want %v", err, corrupt, tt.corrupt)
			}
		})
	}
}

func TestSaveLoadTopology(t *testing.T) {
	dir := t.TempDir()
	path := CachePath(filepath.Join(dir, "models", "shadowcache"), "models/player/gign.mdl")

	want := sampleTopology()
	if err := SaveTopology(path, want); err != nil {
		t.Fatalf("SaveTopology() error = %v", err)
	}
	got, err := LoadTopology(path)
	if err != nil {
		t.Fatalf("LoadTopology() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded = %+v, want %+v", got, want)
	}

	_, err = LoadTopology(filepath.Join(dir, "missing.dat"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}
}
