package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagFrames   = flag.Int("frames", 0, "Number of frames to simulate")
	flagAddr     = flag.String("addr", "", "Inspector listen address")
	flagPageSize = flag.Int("page-size", 0, "Node slots per arena page (0 keeps the configured value)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFrames > 0 {
		cfg.Simulation.Frames = *flagFrames
	}
	if *flagAddr != "" {
		cfg.Inspector.Addr = *flagAddr
	}
	if *flagPageSize != 0 {
		cfg.Scene.PageSize = *flagPageSize
	}
}
