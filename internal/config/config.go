// Package config loads the YAML project file that describes a bake run.
package config

import (
	"runtime"

	"fur-mask-baker/internal/bake"
	"fur-mask-baker/internal/export"
)

// Config is a whole project: logging, output, shared bake settings and
// the targets to bake.
type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	Output  OutputConfig   `yaml:"output"`
	Bake    BakeConfig     `yaml:"bake"`
	Workers int            `yaml:"workers"`
	Targets []TargetConfig `yaml:"targets"`

	// BaseDir is the directory relative paths resolve against. It is set
	// by Load and never written.
	BaseDir string `yaml:"-"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// OutputConfig says where textures go.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Format   string `yaml:"format"`
	Manifest string `yaml:"manifest"` // empty disables the manifest
}

// BakeConfig holds the numeric bake parameters shared by all targets.
type BakeConfig struct {
	TextureSize int     `yaml:"texture_size"`
	BatchSize   int     `yaml:"batch_size"`
	Iterations  int     `yaml:"iterations"`
	Threshold   float64 `yaml:"threshold"`
	Gamma       float64 `yaml:"gamma"`
	MaxDistance float64 `yaml:"max_distance"`
	RayEpsilon  float64 `yaml:"ray_epsilon"`
	Padding     int     `yaml:"padding"` // -1 scales 4px at 1024
	UVThreshold float64 `yaml:"uv_threshold"`
}

// TargetConfig is one bake target.
type TargetConfig struct {
	Name     string `yaml:"name"`
	Mesh     string `yaml:"mesh"`
	MeshName string `yaml:"mesh_name,omitempty"` // glTF mesh, first by default
	BindPose bool   `yaml:"bind_pose,omitempty"`
	Kind     string `yaml:"kind,omitempty"` // mask | direction

	Colliders     []string           `yaml:"colliders,omitempty"`
	Spheres       []SphereConfig     `yaml:"spheres,omitempty"`
	Bones         map[string]float64 `yaml:"bones,omitempty"`
	Anchors       []AnchorConfig     `yaml:"anchors,omitempty"`
	DirectionMaps map[string]string  `yaml:"direction_maps,omitempty"` // material -> image
	Root          *RootConfig        `yaml:"root,omitempty"`
	TextureSize   int                `yaml:"texture_size,omitempty"` // overrides bake.texture_size
}

// SphereConfig is one spherical influence volume.
type SphereConfig struct {
	Position      [3]float64 `yaml:"position"`
	Radius        float64    `yaml:"radius"`
	GradientWidth float64    `yaml:"gradient_width"`
	Intensity     float64    `yaml:"intensity"`
	Mirror        bool       `yaml:"mirror,omitempty"`
}

// AnchorConfig pins the UV island around a seed to zero.
type AnchorConfig struct {
	Submesh   int        `yaml:"submesh"`
	UV        [2]float64 `yaml:"uv"`
	Threshold float64    `yaml:"threshold,omitempty"`
}

// RootConfig is the avatar root transform that defines the mirror plane.
type RootConfig struct {
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"` // Euler XYZ degrees
	Scale    [3]float64 `yaml:"scale"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	s := bake.DefaultSettings()
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Dir:      "textures",
			Format:   string(export.PNG),
			Manifest: "manifest.json",
		},
		Bake: BakeConfig{
			TextureSize: s.TextureSize,
			BatchSize:   s.BatchSize,
			Iterations:  s.Iterations,
			Threshold:   s.Threshold,
			Gamma:       s.Gamma,
			MaxDistance: s.MaxDistance,
			RayEpsilon:  s.RayEpsilon,
			Padding:     s.Padding,
			UVThreshold: s.UVThreshold,
		},
		Workers: runtime.NumCPU(),
	}
}
