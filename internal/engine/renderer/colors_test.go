package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRemapColor(t *testing.T) {
	tests := []struct {
		name string
		hue  int
		want mgl32.Vec4
	}{
		{"unset", 0, mgl32.Vec4{0.8, 0.8, 0.8, 1}},
		{"red", 1, mgl32.Vec4{0.9, 0.3727, 0.36, 1}},
		{"green", 86, mgl32.Vec4{0.36, 0.9, 0.3684, 1}},
		{"clamped", 300, remapColor(255)},
	}
	for _, tt := range tests {
		got := remapColor(tt.hue)
		if !got.ApproxEqualThreshold(tt.want, 0.01) {
			t.Errorf("%s: remapColor(%d) = %v, want %v", tt.name, tt.hue, got, tt.want)
		}
	}
}
