package shadow

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Cache file limits. Counts outside them mean the file is not a topology cache.
const (
	maxCacheSubModels = 1024
	maxCacheRecords   = 1 << 20
)

// ErrCorruptCache is returned when a cache file has impossible counts.
var ErrCorruptCache = errors.New("corrupt shadow cache")

// CacheName turns a model path into the cache file stem: everything up to
// and including "models/" is dropped along with the extension.
func CacheName(modelPath string) string {
	name := filepath.ToSlash(modelPath)
	if i := strings.LastIndex(name, "models/"); i >= 0 {
		name = name[i+len("models/"):]
	}
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// CachePath returns the cache file of modelPath under dir.
func CachePath(dir, modelPath string) string {
	return filepath.Join(dir, filepath.FromSlash(CacheName(modelPath))+".dat")
}

// ReadTopology decodes a cache stream.
//
// Layout, little endian: int32 submodel count, then per submodel int32 face
// count, faces as 3 x uint16, int32 edge count, edges as 4 x uint16.
func ReadTopology(r io.Reader) (*Topology, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "read submodel count")
	}
	if count < 0 || count > maxCacheSubModels {
		return nil, errors.Wrapf(ErrCorruptCache, "submodel count %d", count)
	}

	t := &Topology{SubModels: make([]SubModel, count)}
	for i := range t.SubModels {
		sm := &t.SubModels[i]

		n, err := readCount(r)
		if err != nil {
			return nil, errors.Wrapf(err, "submodel %d faces", i)
		}
		if n > 0 {
			sm.Faces = make([]Face, n)
			if err := binary.Read(r, binary.LittleEndian, sm.Faces); err != nil {
				return nil, errors.Wrapf(err, "submodel %d faces", i)
			}
		}

		n, err = readCount(r)
		if err != nil {
			return nil, errors.Wrapf(err, "submodel %d edges", i)
		}
		if n > 0 {
			sm.Edges = make([]Edge, n)
			if err := binary.Read(r, binary.LittleEndian, sm.Edges); err != nil {
				return nil, errors.Wrapf(err, "submodel %d edges", i)
			}
		}
	}
	return t, nil
}

func readCount(r io.Reader) (int, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	if n < 0 || n > maxCacheRecords {
		return 0, errors.Wrapf(ErrCorruptCache, "count %d", n)
	}
	return int(n), nil
}

// WriteTopology encodes t in the cache layout. Submodels without faces are
// written with zero counts so the submodel order survives a round trip.
func WriteTopology(w io.Writer, t *Topology) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(t.SubModels))); err != nil {
		return errors.Wrap(err, "write submodel count")
	}
	for i := range t.SubModels {
		sm := &t.SubModels[i]
		if err := binary.Write(w, binary.LittleEndian, int32(len(sm.Faces))); err != nil {
			return errors.Wrapf(err, "submodel %d", i)
		}
		if len(sm.Faces) > 0 {
			if err := binary.Write(w, binary.LittleEndian, sm.Faces); err != nil {
				return errors.Wrapf(err, "submodel %d faces", i)
			}
		}
		if err := binary.Write(w, binary.LittleEndian, int32(len(sm.Edges))); err != nil {
			return errors.Wrapf(err, "submodel %d", i)
		}
		if len(sm.Edges) > 0 {
			if err := binary.Write(w, binary.LittleEndian, sm.Edges); err != nil {
				return errors.Wrapf(err, "submodel %d edges", i)
			}
		}
	}
	return nil
}

// LoadTopology reads a cache file. A missing file returns an error matching
// os.ErrNotExist.
func LoadTopology(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTopology(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return t, nil
}

// SaveTopology writes a cache file, creating its directory.
func SaveTopology(path string, t *Topology) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create cache file")
	}

	w := bufio.NewWriter(f)
	if err := WriteTopology(w, t); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return f.Close()
}
