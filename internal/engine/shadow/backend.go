package shadow

import "github.com/go-gl/mathgl/mgl32"

// Pass is one of the two stencil passes of a shadow volume.
type Pass int

const (
	// PassIncrement draws front faces and increments the stencil value.
	PassIncrement Pass = iota
	// PassDecrement draws back faces and decrements the stencil value.
	PassDecrement
)

func (p Pass) String() string {
	switch p {
	case PassIncrement:
		return "incr"
	case PassDecrement:
		return "decr"
	}
	return "unknown"
}

// Backend submits shadow volumes to the stencil buffer.
type Backend interface {
	// Begin disables depth and color writes and enables the stencil test.
	Begin()
	// Draw submits indexed triangles over vertices for one pass.
	Draw(vertices []mgl32.Vec3, indices []uint16, pass Pass)
	// End restores depth and color writes.
	End()
}

// DrawCall is a recorded Backend.Draw.
type DrawCall struct {
	Pass     Pass
	Vertices []mgl32.Vec3
	Indices  []uint16
}

// Recorder is a Backend that keeps every submission.
type Recorder struct {
	Begins int
	Ends   int
	Calls  []DrawCall
}

// Begin implements Backend.
func (r *Recorder) Begin() { r.Begins++ }

// End implements Backend.
func (r *Recorder) End() { r.Ends++ }

// Draw implements Backend.
func (r *Recorder) Draw(vertices []mgl32.Vec3, indices []uint16, pass Pass) {
	r.Calls = append(r.Calls, DrawCall{
		Pass:     pass,
		Vertices: append([]mgl32.Vec3(nil), vertices...),
		Indices:  append([]uint16(nil), indices...),
	})
}

// Count returns the number of draws recorded for pass.
func (r *Recorder) Count(pass Pass) int {
	n := 0
	for _, c := range r.Calls {
		if c.Pass == pass {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	*r = Recorder{}
}
