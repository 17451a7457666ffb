package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"fur-mask-baker/internal/bake"
	"fur-mask-baker/internal/export"
)

// Validate checks the whole project and returns every problem at once.
func (c *Config) Validate() error {
	var err error
	if _, perr := zapcore.ParseLevel(c.Logging.Level); perr != nil {
		err = multierr.Append(err, errors.Wrap(perr, "logging level"))
	}
	if _, ferr := export.ParseFormat(c.Output.Format); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	if c.Output.Dir == "" {
		err = multierr.Append(err, errors.New("output dir is empty"))
	}
	if c.Workers < 0 {
		err = multierr.Append(err, errors.Errorf("workers %d must not be negative", c.Workers))
	}
	if serr := c.Settings().Validate(); serr != nil {
		err = multierr.Append(err, serr)
	}
	if len(c.Targets) == 0 {
		err = multierr.Append(err, errors.New("no targets"))
	}

	names := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if terr := t.validate(); terr != nil {
			err = multierr.Append(err, errors.Wrapf(terr, "target %d (%q)", i, t.Name))
		}
		if names[t.Name] {
			err = multierr.Append(err, errors.Errorf("target %q is defined twice", t.Name))
		}
		names[t.Name] = true
		if t.TextureSize != 0 {
			s := c.TargetSettings(t)
			if serr := s.Validate(); serr != nil {
				err = multierr.Append(err, errors.Wrapf(serr, "target %q", t.Name))
			}
		}
	}
	return errors.Wrap(err, "config: invalid project")
}

func (t TargetConfig) validate() error {
	var err error
	if t.Name == "" {
		err = multierr.Append(err, errors.New("name is empty"))
	}
	if t.Mesh == "" {
		err = multierr.Append(err, errors.New("mesh is empty"))
	}
	if _, kerr := bake.ParseKind(t.Kind); kerr != nil {
		err = multierr.Append(err, kerr)
	}
	for i, s := range t.Spheres {
		if s.Radius < 0 {
			err = multierr.Append(err, errors.Errorf("sphere %d: negative radius", i))
		}
		if s.GradientWidth < 0 || s.GradientWidth > 1 {
			err = multierr.Append(err, errors.Errorf("sphere %d: gradient width %g outside [0,1]", i, s.GradientWidth))
		}
	}
	for bone, v := range t.Bones {
		if v < 0 || v > 1 {
			err = multierr.Append(err, errors.Errorf("bone %q: value %g outside [0,1]", bone, v))
		}
	}
	for i, a := range t.Anchors {
		if a.Submesh < 0 {
			err = multierr.Append(err, errors.Errorf("anchor %d: negative submesh", i))
		}
		if a.Threshold < 0 {
			err = multierr.Append(err, errors.Errorf("anchor %d: negative threshold", i))
		}
	}
	return err
}
