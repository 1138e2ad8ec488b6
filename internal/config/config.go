// Package config handles posegraph configuration loading and management.
package config

import "time"

// Config holds all posegraph settings.
type Config struct {
	Scene      SceneConfig      `yaml:"scene"`
	Camera     CameraConfig     `yaml:"camera"`
	Simulation SimulationConfig `yaml:"simulation"`
	Inspector  InspectorConfig  `yaml:"inspector"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SceneConfig holds scene graph construction settings.
type SceneConfig struct {
	PageSize     int     `yaml:"page_size"` // Node slots per arena page
	MaxPages     int     `yaml:"max_pages"` // 0 = unlimited
	DrawBones    bool    `yaml:"draw_bones"`
	DefaultLight bool    `yaml:"default_light"`
	SunLongitude float32 `yaml:"sun_longitude"` // Degrees around Y (0-360)
	SunLatitude  float32 `yaml:"sun_latitude"`  // Degrees above horizon (0-90)
}

// CameraConfig holds the demo orbit camera settings.
type CameraConfig struct {
	FovDeg   float32 `yaml:"fov_deg"`
	Near     float32 `yaml:"near"`
	Far      float32 `yaml:"far"`
	Aspect   float32 `yaml:"aspect"`
	Distance float32 `yaml:"distance"`
	Pitch    float32 `yaml:"pitch"` // Radians
}

// SimulationConfig holds settings for the animated demo scene.
type SimulationConfig struct {
	Frames       int           `yaml:"frames"`
	Grid         int           `yaml:"grid"`    // Instances per side
	Spacing      float32       `yaml:"spacing"` // World units between instances
	Joints       int           `yaml:"joints"`  // Length of the skinned joint chain
	TweenSeconds float32       `yaml:"tween_seconds"`
	FrameDT      time.Duration `yaml:"frame_dt"`
}

// InspectorConfig holds HTTP inspector settings.
type InspectorConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			PageSize:     64,
			MaxPages:     0,
			DrawBones:    false,
			DefaultLight: true,
			SunLongitude: 45,
			SunLatitude:  45,
		},
		Camera: CameraConfig{
			FovDeg:   60,
			Near:     0.1,
			Far:      1000,
			Aspect:   16.0 / 9.0,
			Distance: 40,
			Pitch:    0.5,
		},
		Simulation: SimulationConfig{
			Frames:       120,
			Grid:         4,
			Spacing:      3,
			Joints:       4,
			TweenSeconds: 2,
			FrameDT:      16 * time.Millisecond,
		},
		Inspector: InspectorConfig{
			Addr: "127.0.0.1:8088",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
