package shadow

import "github.com/go-gl/mathgl/mgl32"

// DefaultDirection is the light direction used when no sky vector is set.
var DefaultDirection = mgl32.Vec3{0.5, 1, 1.5}

// Direction returns the normalized vector pointing toward the light. The sky
// vector is the direction sunlight travels; zero selects DefaultDirection.
func Direction(sky [3]float32) mgl32.Vec3 {
	v := mgl32.Vec3(sky)
	if v[0] != 0 || v[1] != 0 || v[2] != 0 {
		return v.Mul(-1).Normalize()
	}
	return DefaultDirection.Normalize()
}
