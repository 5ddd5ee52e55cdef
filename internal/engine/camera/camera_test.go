package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/studiorender/pkg/math"
)

func approx(a, b math.Vec3) bool {
	return mgl32.Vec3(a).ApproxEqualThreshold(mgl32.Vec3(b), 1e-4)
}

func TestPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{10, 0, 5}
	c.Distance = 100
	c.Pitch = 0
	c.Yaw = 0

	if p := c.Position(); !approx(p, math.Vec3{110, 0, 5}) {
		t.Errorf("Position() = %v", p)
	}

	c.Pitch = gomath.Pi / 2
	if p := c.Position(); !approx(p, math.Vec3{10, 0, 105}) {
		t.Errorf("overhead Position() = %v", p)
	}
}

func TestView(t *testing.T) {
	c := NewOrbitCamera()
	c.Pitch = 0
	c.Yaw = 0
	v := c.View()

	if !approx(v.Normal, math.Vec3{-1, 0, 0}) {
		t.Errorf("Normal = %v", v.Normal)
	}
	if !approx(v.Up, math.Vec3{0, 0, 1}) {
		t.Errorf("Up = %v", v.Up)
	}
	if !approx(v.Right, math.Vec3{0, 1, 0}) {
		t.Errorf("Right = %v", v.Right)
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{1, 2, 3}
	c.Yaw = 0.7

	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	if gomath.Abs(float64(p.X())) > 1e-3 || gomath.Abs(float64(p.Y())) > 1e-3 {
		t.Errorf("center maps to %v, want on the view axis", p)
	}
	if p.Z() >= 0 {
		t.Errorf("center should be in front of the camera, z = %f", p.Z())
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %f, want %f", c.Pitch, c.MaxPitch)
	}
	c.HandleDrag(0, -1e6)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %f, want %f", c.Pitch, c.MinPitch)
	}

	yaw := c.Yaw
	c.HandleDrag(100, 0)
	if c.Yaw >= yaw {
		t.Error("dragging right should decrease yaw")
	}
}

func TestHandleZoom(t *testing.T) {
	c := NewOrbitCamera()
	c.Distance = 100
	c.HandleZoom(1)
	if c.Distance != 90 {
		t.Errorf("Distance = %f, want 90", c.Distance)
	}
	for i := 0; i < 200; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %f, want clamp to %f", c.Distance, c.MinDistance)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.Vec3{-16, -16, 0}, math.Vec3{16, 16, 72})

	if c.Center != (math.Vec3{0, 0, 36}) {
		t.Errorf("Center = %v", c.Center)
	}
	radius := float32(math.Vec3{32, 32, 72}.Length() / 2)
	if c.Distance <= radius {
		t.Errorf("Distance = %f, should clear radius %f", c.Distance, radius)
	}
}

func TestVerticalFOV(t *testing.T) {
	if got := VerticalFOV(90, 1); gomath.Abs(float64(got)-gomath.Pi/2) > 1e-5 {
		t.Errorf("VerticalFOV(90, 1) = %f", got)
	}
	if VerticalFOV(90, 16.0/9) >= VerticalFOV(90, 1) {
		t.Error("wider aspect should narrow the vertical FOV")
	}
}
