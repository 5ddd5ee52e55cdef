package math

// Mat34 is a row-major 3x4 affine transform: the 3x3 rotation/scale block in
// columns 0..2 and the translation in column 3.
type Mat34 [3][4]float32

// Identity34 returns the identity transform.
func Identity34() Mat34 {
	return Mat34{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
}

// QuatMatrix converts a quaternion and a translation into a transform.
func QuatMatrix(q Quat, pos Vec3) Mat34 {
	x, y, z, w := q[0], q[1], q[2], q[3]

	return Mat34{
		{1 - 2*y*y - 2*z*z, 2*x*y - 2*w*z, 2*x*z + 2*w*y, pos[0]},
		{2*x*y + 2*w*z, 1 - 2*x*x - 2*z*z, 2*y*z - 2*w*x, pos[1]},
		{2*x*z - 2*w*y, 2*y*z + 2*w*x, 1 - 2*x*x - 2*y*y, pos[2]},
	}
}

// AngleMatrix builds a rotation from pitch/yaw/roll angles in degrees
// (indexed by Pitch, Yaw, Roll). Translation is zero.
func AngleMatrix(angles Vec3) Mat34 {
	sy, cy := sincos(DegToRad(angles[Yaw]))
	sp, cp := sincos(DegToRad(angles[Pitch]))
	sr, cr := sincos(DegToRad(angles[Roll]))

	return Mat34{
		{cp * cy, sr*sp*cy + cr*-sy, cr*sp*cy + -sr*-sy, 0},
		{cp * sy, sr*sp*sy + cr*cy, cr*sp*sy + -sr*cy, 0},
		{-sp, sr * cp, cr * cp, 0},
	}
}

// Concat returns m * other, treating both as 4x4 matrices with an implicit
// (0, 0, 0, 1) bottom row.
func (m Mat34) Concat(other Mat34) Mat34 {
	var out Mat34
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = m[i][0]*other[0][j] + m[i][1]*other[1][j] + m[i][2]*other[2][j]
		}
		out[i][3] += m[i][3]
	}
	return out
}

// TransformPoint applies the full transform to p.
func (m Mat34) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		p[0]*m[0][0] + p[1]*m[0][1] + p[2]*m[0][2] + m[0][3],
		p[0]*m[1][0] + p[1]*m[1][1] + p[2]*m[1][2] + m[1][3],
		p[0]*m[2][0] + p[1]*m[2][1] + p[2]*m[2][2] + m[2][3],
	}
}

// Origin returns the translation column.
func (m Mat34) Origin() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}

// SetOrigin replaces the translation column.
func (m *Mat34) SetOrigin(v Vec3) {
	m[0][3] = v[0]
	m[1][3] = v[1]
	m[2][3] = v[2]
}

// Row returns row i as a vector, ignoring the translation.
func (m Mat34) Row(i int) Vec3 {
	return Vec3{m[i][0], m[i][1], m[i][2]}
}

// ToMat4 widens the transform to a column-major Mat4 for GL uploads.
func (m Mat34) ToMat4() Mat4 {
	return Mat4{
		m[0][0], m[1][0], m[2][0], 0,
		m[0][1], m[1][1], m[2][1], 0,
		m[0][2], m[1][2], m[2][2], 0,
		m[0][3], m[1][3], m[2][3], 1,
	}
}
