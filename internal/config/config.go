// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Animation AnimationConfig `yaml:"animation"`
	Shadow    ShadowConfig    `yaml:"shadow"`
	Debug     DebugConfig     `yaml:"debug"`
	Data      DataConfig      `yaml:"data"`
	Logging   LoggingConfig   `yaml:"logging"`
	Inspect   InspectConfig   `yaml:"inspect"`
}

// RenderConfig holds display and rasterizer settings.
type RenderConfig struct {
	Hardware   bool `yaml:"hardware"` // GPU path; false selects the software alias path
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// GaitEstimation selects how player movement is measured.
type GaitEstimation string

const (
	GaitFromPosition GaitEstimation = "position" // Origin delta between frames
	GaitFromVelocity GaitEstimation = "velocity" // Replicated velocity
)

// AnimationConfig holds pose evaluation settings.
type AnimationConfig struct {
	Interpolate    bool           `yaml:"interpolate"`
	PlayerGait     bool           `yaml:"player_gait"`
	GaitEstimation GaitEstimation `yaml:"gait_estimation"`

	// ViewModelFreeze is a bitmask of view model animation categories held
	// at frame 0: 1 idle, 2 equip, 4 shoot, 8 reload.
	ViewModelFreeze int     `yaml:"viewmodel_freeze"`
	RightHand       bool    `yaml:"right_hand"`
	ViewModelFOV    float32 `yaml:"viewmodel_fov"` // 0 uses the world FOV
	DefaultFOV      float32 `yaml:"default_fov"`
}

// ShadowConfig holds stencil shadow settings.
type ShadowConfig struct {
	Enabled         bool       `yaml:"enabled"`
	SkyVector       [3]float32 `yaml:"sky_vector"`    // Zero uses the sun angles, then the built-in direction
	SunAzimuth      float32    `yaml:"sun_azimuth"`   // Degrees around Z, 0 is +X
	SunElevation    float32    `yaml:"sun_elevation"` // Degrees above the horizon, 0 leaves the sun unset
	MaxFaces        int        `yaml:"max_faces"`
	ExtrudeDistance float32    `yaml:"extrude_distance"`
	CacheDir        string     `yaml:"cache_dir"` // Relative to the game directory
	OcclusionCheck  bool       `yaml:"occlusion_check"`
}

// DebugConfig holds developer switches.
type DebugConfig struct {
	Developer    int  `yaml:"developer"`
	HiModels     bool `yaml:"hi_models"`
	DrawEntities int  `yaml:"draw_entities"` // 0..5
}

// DataConfig holds game data paths.
type DataConfig struct {
	GameDir string   `yaml:"game_dir"`
	Models  []string `yaml:"models"` // Models loaded at startup, relative to GameDir
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// InspectConfig holds the debug HTTP endpoint settings.
type InspectConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Hardware:   true,
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Animation: AnimationConfig{
			Interpolate:    true,
			PlayerGait:     true,
			GaitEstimation: GaitFromPosition,
			RightHand:      true,
			ViewModelFOV:   0,
			DefaultFOV:     90,
		},
		Shadow: ShadowConfig{
			Enabled:         true,
			MaxFaces:        10000,
			ExtrudeDistance: 256,
			CacheDir:        "models/shadowcache",
			OcclusionCheck:  true,
		},
		Data: DataConfig{
			GameDir: "valve",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Inspect: InspectConfig{
			Enabled: false,
			Addr:    "127.0.0.1:7070",
		},
	}
}
