package game

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/studiorender/internal/config"
	"github.com/Faultbox/studiorender/internal/engine/lighting"
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
)

func TestRenderOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Animation.GaitEstimation = config.GaitFromVelocity
	cfg.Animation.ViewModelFreeze = 5
	cfg.Debug.DrawEntities = 3

	o := RenderOptions(cfg)
	if !o.Interpolate || !o.PlayerGait || !o.GaitFromVelocity || !o.RightHand {
		t.Errorf("options = %+v", o)
	}
	if o.ViewModelFreeze != studiorender.FreezeIdle|studiorender.FreezeShoot {
		t.Errorf("freeze = %v", o.ViewModelFreeze)
	}
	if o.DrawEntities != 3 || o.DefaultFOV != 90 {
		t.Errorf("options = %+v", o)
	}
}

func TestSkyVector(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ShadowConfig
		want [3]float32
	}{
		{"explicit", config.ShadowConfig{SkyVector: [3]float32{1, 0, -1}, SunElevation: 45}, [3]float32{1, 0, -1}},
		{"sun angles", config.ShadowConfig{SunAzimuth: 0, SunElevation: 90}, lighting.SkyVector(0, 90)},
		{"unset", config.ShadowConfig{}, [3]float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SkyVector(&tt.cfg); got != tt.want {
				t.Errorf("SkyVector() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTurnSun(t *testing.T) {
	sky := lighting.SkyVector(30, 40)

	az, el := lighting.SunAngles(TurnSun(sky, 15, 10))
	if gomath.Abs(float64(az-45)) > 1e-3 || gomath.Abs(float64(el-50)) > 1e-3 {
		t.Errorf("turned sun = (%v, %v), want (45, 50)", az, el)
	}

	_, el = lighting.SunAngles(TurnSun(sky, 0, -80))
	if gomath.Abs(float64(el-minSunElevation)) > 1e-3 {
		t.Errorf("elevation = %v, want clamp to %d", el, minSunElevation)
	}

	// The built-in light turns from where it is.
	_, el = lighting.SunAngles(TurnSun([3]float32{}, 0, 0))
	if el <= minSunElevation || el >= maxSunElevation {
		t.Errorf("default sun elevation = %v", el)
	}
}

func TestNextDebugMode(t *testing.T) {
	if nextDebugMode(0) != 1 || nextDebugMode(5) != 0 {
		t.Error("debug modes should cycle through 0..5")
	}
}
