// Package camera provides the orbit camera of the model viewer. The world is
// Z-up, as studio models are authored.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XY plane, radians
	Yaw      float32 // Rotation around Z, radians; 0 looks down -X

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	FOV  float32 // Horizontal, degrees
	Near float32
	Far  float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        120,
		Pitch:           0.35,
		MinDistance:     8,
		MaxDistance:     4096,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             90,
		Near:            4,
		Far:             8192,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp, sp := gomath.Cos(float64(c.Pitch)), gomath.Sin(float64(c.Pitch))
	cy, sy := gomath.Cos(float64(c.Yaw)), gomath.Sin(float64(c.Yaw))
	off := math.Vec3{
		float32(cp * cy),
		float32(cp * sy),
		float32(sp),
	}.Scale(c.Distance)
	return c.Center.Add(off)
}

// View returns the camera axes in the form the studio renderer expects.
func (c *OrbitCamera) View() skeleton.View {
	pos := c.Position()
	forward := c.Center.Sub(pos).Normalize()
	right := forward.Cross(math.Vec3{0, 0, 1}).Normalize()
	up := right.Cross(forward)
	return skeleton.View{Origin: pos, Normal: forward, Right: right, Up: up}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(mgl32.Vec3(c.Position()), mgl32.Vec3(c.Center), mgl32.Vec3{0, 0, 1})
}

// Projection returns the perspective matrix for a viewport.
func (c *OrbitCamera) Projection(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(VerticalFOV(c.FOV, aspect), aspect, c.Near, c.Far)
}

// VerticalFOV converts a horizontal field of view in degrees to a vertical
// one in radians.
func VerticalFOV(horizontal, aspect float32) float32 {
	half := gomath.Tan(float64(mgl32.DegToRad(horizontal)) / 2)
	return float32(2 * gomath.Atan(half/float64(aspect)))
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on min..max and backs off far enough to
// see all of it.
func (c *OrbitCamera) FitToBounds(min, max math.Vec3) {
	c.Center = min.Add(max).Scale(0.5)
	radius := max.Sub(min).Length() / 2
	half := mgl32.DegToRad(c.FOV) / 2
	c.Distance = mgl32.Clamp(radius/float32(gomath.Sin(float64(half)))+c.Near, c.MinDistance, c.MaxDistance)
}
