package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/studiorender/internal/config"
	"github.com/Faultbox/studiorender/internal/engine/lighting"
	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
)

// RenderOptions maps the animation and debug settings onto the renderer.
func RenderOptions(cfg *config.Config) studiorender.Options {
	return studiorender.Options{
		Interpolate:      cfg.Animation.Interpolate,
		PlayerGait:       cfg.Animation.PlayerGait,
		GaitFromVelocity: cfg.Animation.GaitEstimation == config.GaitFromVelocity,
		ViewModelFreeze:  studiorender.FreezeMask(cfg.Animation.ViewModelFreeze),
		RightHand:        cfg.Animation.RightHand,
		ViewModelFOV:     cfg.Animation.ViewModelFOV,
		DefaultFOV:       cfg.Animation.DefaultFOV,
		Developer:        cfg.Debug.Developer,
		HiModels:         cfg.Debug.HiModels,
		DrawEntities:     cfg.Debug.DrawEntities,
	}
}

// SkyVector returns the configured sun vector: the explicit vector, else
// the sun angles, else zero for the built-in direction.
func SkyVector(cfg *config.ShadowConfig) [3]float32 {
	if cfg.SkyVector != ([3]float32{}) {
		return cfg.SkyVector
	}
	if cfg.SunElevation > 0 {
		return lighting.SkyVector(cfg.SunAzimuth, cfg.SunElevation)
	}
	return [3]float32{}
}

const (
	minSunElevation = 5
	maxSunElevation = 90
)

// TurnSun rotates the sun of sky by the given degrees, keeping it above the
// horizon.
func TurnSun(sky [3]float32, azimuth, elevation float32) [3]float32 {
	toSun := shadow.Direction(sky)
	az, el := lighting.SunAngles([3]float32{-toSun[0], -toSun[1], -toSun[2]})
	el = mgl32.Clamp(el+elevation, minSunElevation, maxSunElevation)
	return lighting.SkyVector(az+azimuth, el)
}

// nextDebugMode cycles the entity debug drawing through 0..5.
func nextDebugMode(mode int) int {
	return (mode + 1) % 6
}
