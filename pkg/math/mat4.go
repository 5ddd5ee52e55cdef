package math

import "math"

// Mat4 is a column-major 4x4 projection matrix, laid out for glUniformMatrix4fv.
type Mat4 [16]float32

// Frustum returns an off-axis perspective projection, matching glFrustum.
func Frustum(left, right, bottom, top, near, far float32) Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near

	return Mat4{
		2 * near / rl, 0, 0, 0,
		0, 2 * near / tb, 0, 0,
		(right + left) / rl, (top + bottom) / tb, -(far + near) / fn, -1,
		0, 0, -2 * far * near / fn, 0,
	}
}

// TransformPoint transforms a point, dividing by w when it is not 1.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// Perspective returns a symmetric projection for a vertical field of view in
// degrees.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	h := float32(math.Tan(float64(fovY)*math.Pi/360)) * near
	w := h * aspect
	return Frustum(-w, w, -h, h, near, far)
}
