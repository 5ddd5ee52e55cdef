package math

import "math"

// Quat is a rotation quaternion stored as X, Y, Z, W where W is the scalar part.
type Quat [4]float32

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// AngleQuaternion builds a quaternion from Euler angles in radians, ordered
// (roll about X, pitch about Y, yaw about Z). This is the ordering bone
// rotation channels are stored in.
func AngleQuaternion(angles Vec3) Quat {
	sy, cy := sincos(angles[2] * 0.5)
	sp, cp := sincos(angles[1] * 0.5)
	sr, cr := sincos(angles[0] * 0.5)

	return Quat{
		sr*cp*cy - cr*sp*sy,
		cr*sp*cy + sr*cp*sy,
		cr*cp*sy - sr*sp*cy,
		cr*cp*cy + sr*sp*sy,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q[0]*other[0] + q[1]*other[1] + q[2]*other[2] + q[3]*other[3]
}

// Normalize returns a unit quaternion. Degenerate input yields the identity.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.Dot(q))))
	if length < 0.0001 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// Slerp spherically interpolates from q to other by t.
//
// The hemisphere is chosen by comparing squared distances to other and -other.
// Exactly opposite inputs rotate about a perpendicular axis.
func (q Quat) Slerp(other Quat, t float32) Quat {
	p := q
	q = other

	var a, b float32
	for i := 0; i < 4; i++ {
		a += (p[i] - q[i]) * (p[i] - q[i])
		b += (p[i] + q[i]) * (p[i] + q[i])
	}
	if a > b {
		q = Quat{-q[0], -q[1], -q[2], -q[3]}
	}

	cosom := p.Dot(q)

	var out Quat
	if 1+cosom > 0.000001 {
		var sclp, sclq float32
		if 1-cosom > 0.000001 {
			omega := math.Acos(float64(cosom))
			sinom := math.Sin(omega)
			sclp = float32(math.Sin(float64(1-t)*omega) / sinom)
			sclq = float32(math.Sin(float64(t)*omega) / sinom)
		} else {
			sclp = 1 - t
			sclq = t
		}
		for i := 0; i < 4; i++ {
			out[i] = sclp*p[i] + sclq*q[i]
		}
		return out
	}

	out = Quat{-q[1], q[0], -q[3], q[2]}
	sclp := float32(math.Sin(float64(1-t) * 0.5 * math.Pi))
	sclq := float32(math.Sin(float64(t) * 0.5 * math.Pi))
	for i := 0; i < 3; i++ {
		out[i] = sclp*p[i] + sclq*out[i]
	}
	return out
}

func sincos(x float32) (float32, float32) {
	s, c := math.Sincos(float64(x))
	return float32(s), float32(c)
}
