// Package lighting converts sun angles into the sky vector used by shadows
// and model shading.
package lighting

import "math"

// SkyVector converts sun angles to the direction sunlight travels.
// Azimuth is the compass angle of the sun around Z in degrees (0 is +X),
// elevation its height above the horizon in degrees. The result points
// away from the sun.
func SkyVector(azimuth, elevation float32) [3]float32 {
	az := float64(azimuth) * math.Pi / 180.0
	el := float64(elevation) * math.Pi / 180.0

	x := math.Cos(el) * math.Cos(az)
	y := math.Cos(el) * math.Sin(az)
	z := math.Sin(el)

	return [3]float32{float32(-x), float32(-y), float32(-z)}
}

// SunAngles is the inverse of SkyVector. A zero vector gives zero angles.
func SunAngles(sky [3]float32) (azimuth, elevation float32) {
	x, y, z := -float64(sky[0]), -float64(sky[1]), -float64(sky[2])
	l := math.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return 0, 0
	}
	elevation = float32(math.Asin(z/l) * 180 / math.Pi)
	if x != 0 || y != 0 {
		azimuth = float32(math.Atan2(y, x) * 180 / math.Pi)
	}
	return azimuth, elevation
}
