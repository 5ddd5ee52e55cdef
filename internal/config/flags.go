package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagGameDir    = flag.String("game", "", "Game directory")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSoftware   = flag.Bool("software", false, "Use the software transform path")
	flagNoShadows  = flag.Bool("noshadows", false, "Disable stencil shadows")
	flagNoInterp   = flag.Bool("nointerp", false, "Disable animation interpolation")
	flagVelGait    = flag.Bool("velocity-gait", false, "Estimate gait from replicated velocity")
	flagInspect    = flag.String("inspect", "", "Serve the inspector on this address")
	flagWrite      = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the --write-config path, empty when not given.
func WriteConfigPath() string {
	return *flagWrite
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.Developer = 1
	}
	if *flagGameDir != "" {
		cfg.Data.GameDir = *flagGameDir
	}
	if *flagWindowed {
		cfg.Render.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Render.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagSoftware {
		cfg.Render.Hardware = false
	}
	if *flagNoShadows {
		cfg.Shadow.Enabled = false
	}
	if *flagNoInterp {
		cfg.Animation.Interpolate = false
	}
	if *flagVelGait {
		cfg.Animation.GaitEstimation = GaitFromVelocity
	}
	if flag.NArg() > 0 {
		cfg.Data.Models = append(cfg.Data.Models, flag.Args()...)
	}
	if *flagInspect != "" {
		cfg.Inspect.Enabled = true
		cfg.Inspect.Addr = *flagInspect
	}
}
