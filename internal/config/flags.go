package config

import (
	"flag"
	"path/filepath"
	"strings"
)

// Flags holds CLI flag values that override project settings.
type Flags struct {
	Project  string
	Output   string
	Format   string
	Size     int
	Workers  int
	LogLevel string
	Only     string // comma-separated target names
}

// RegisterFlags binds Flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Project, "project", "bake.yaml", "Path to project file")
	fs.StringVar(&f.Output, "output", "", "Output directory (overrides project)")
	fs.StringVar(&f.Format, "format", "", "Output format: png, webp, tga, bmp, tiff")
	fs.IntVar(&f.Size, "size", 0, "Texture size in pixels")
	fs.IntVar(&f.Workers, "workers", 0, "Number of parallel bakes (0 = project or NumCPU)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.Only, "only", "", "Bake only these targets (comma-separated)")
	return f
}

// Resolve applies flag overrides. CLI flags take priority when
// non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Output != "" {
		old := c.Output.Dir
		c.Output.Dir = flags.Output
		// a manifest that lived in the old output dir moves with it
		if c.Output.Manifest != "" && filepath.Dir(c.Output.Manifest) == old {
			c.Output.Manifest = filepath.Join(c.Output.Dir, filepath.Base(c.Output.Manifest))
		}
	}
	if flags.Format != "" {
		c.Output.Format = flags.Format
	}
	if flags.Size > 0 {
		c.Bake.TextureSize = flags.Size
		for i := range c.Targets {
			c.Targets[i].TextureSize = 0
		}
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
	if flags.Only != "" {
		c.Targets = c.Select(strings.Split(flags.Only, ","))
	}
}

// Select returns the targets whose names are listed, in project order.
func (c *Config) Select(names []string) []TargetConfig {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			want[n] = true
		}
	}
	var out []TargetConfig
	for _, t := range c.Targets {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
