package studio

import "encoding/binary"

// Track is a view over one compressed animation channel. Each entry is two
// bytes: span headers carry (valid, total) counts, value entries carry a
// signed 16-bit sample. A span header is followed by its valid samples and
// covers total frames; frames past the last valid sample repeat it.
type Track struct {
	data []byte
}

// Empty reports whether the channel has no data; the bone default applies.
func (t Track) Empty() bool {
	return len(t.data) == 0
}

// Len returns the number of two-byte entries addressable from the start.
func (t Track) Len() int {
	return len(t.data) / 2
}

// Span reads entry i as a span header. ok is false past the end.
func (t Track) Span(i int) (valid, total int, ok bool) {
	if i < 0 || 2*i+1 >= len(t.data) {
		return 0, 0, false
	}
	return int(t.data[2*i]), int(t.data[2*i+1]), true
}

// Value reads entry i as a sample. Out of range entries read as zero.
func (t Track) Value(i int) int16 {
	if i < 0 || 2*i+1 >= len(t.data) {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(t.data[2*i:]))
}

// BoneAnim holds the six channel tracks of one bone in one blend:
// X, Y, Z position then roll, pitch, yaw rotation.
type BoneAnim [6]Track

// NewTrack wraps encoded entries.
func NewTrack(data []byte) Track {
	return Track{data: data}
}
