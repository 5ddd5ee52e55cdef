package renderer

import "github.com/go-gl/mathgl/mgl32"

// remapColor turns a player color byte, a hue on 0..255, into a tint.
// Zero keeps the mesh neutral gray.
func remapColor(hue int) mgl32.Vec4 {
	if hue <= 0 {
		return mgl32.Vec4{0.8, 0.8, 0.8, 1}
	}
	if hue > 255 {
		hue = 255
	}
	const s, v float32 = 0.6, 0.9

	h := float32(hue) / 256 * 6
	i := int(h)
	f := h - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch i {
	case 0:
		return mgl32.Vec4{v, t, p, 1}
	case 1:
		return mgl32.Vec4{q, v, p, 1}
	case 2:
		return mgl32.Vec4{p, v, t, 1}
	case 3:
		return mgl32.Vec4{p, q, v, 1}
	case 4:
		return mgl32.Vec4{t, p, v, 1}
	default:
		return mgl32.Vec4{v, p, q, 1}
	}
}
