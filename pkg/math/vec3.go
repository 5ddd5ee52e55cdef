// Package math provides the vector, quaternion and matrix types used by the
// studio model pipeline.
package math

import "math"

// Vec3 is a 3D vector. Index 0..2 map to X, Y, Z; for Euler angles they map to
// pitch, yaw, roll (degrees) unless a function says otherwise.
type Vec3 [3]float32

// Euler angle indices.
const (
	Pitch = 0
	Yaw   = 1
	Roll  = 2
)

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v[0] + other[0], v[1] + other[1], v[2] + other[2]}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v[0] - other[0], v[1] - other[1], v[2] - other[2]}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v[0]*other[0] + v[1]*other[1] + v[2]*other[2]
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v[1]*other[2] - v[2]*other[1],
		v[2]*other[0] - v[0]*other[2],
		v[0]*other[1] - v[1]*other[0],
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns a unit vector. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Lerp linearly interpolates from v to other.
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	s := 1 - t
	return Vec3{
		v[0]*s + other[0]*t,
		v[1]*s + other[1]*t,
		v[2]*s + other[2]*t,
	}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// WrapAngle folds an angle in degrees into [-180, 180] by truncating modulo 360
// and then correcting once in each direction.
func WrapAngle(deg float32) float32 {
	deg -= float32(int(deg/360)) * 360
	if deg > 180 {
		deg -= 360
	}
	if deg < -180 {
		deg += 360
	}
	return deg
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
