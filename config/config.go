// Package config loads the viewer settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/momentum"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/viewport"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	View     View     `yaml:"view"`
	Momentum Momentum `yaml:"momentum"`
	Render   Render   `yaml:"render"`
	Remote   Remote   `yaml:"remote"`

	// Presets are added to the built in ones, replacing any with the same name.
	Presets gesture.Presets `yaml:"presets,omitempty"`
}

// View is where the viewer starts.
type View struct {
	Real       float64 `yaml:"real"`
	Imaginary  float64 `yaml:"imaginary"`
	Zoom       float64 `yaml:"zoom"`
	BaseHeight float64 `yaml:"baseHeight"`
	Stretch    float64 `yaml:"stretch"`
}

type Momentum struct {
	Friction float64 `yaml:"friction"`
	Epsilon  float64 `yaml:"epsilon"`

	gesture.Constants `yaml:",inline"`
}

type Render struct {
	ColorScheme   string `yaml:"colorScheme"`
	MaxIterations int    `yaml:"maxIterations"`

	// ShaderDir replaces the built in shaders and is watched for changes.
	ShaderDir string `yaml:"shaderDir,omitempty"`
}

// Remote is the touch remote server. It is off when Addr is empty.
type Remote struct {
	Addr string `yaml:"addr,omitempty"`
}

func Default() *Config {
	return &Config{
		View: View{
			Real:       viewport.DefaultReal,
			Imaginary:  viewport.DefaultImaginary,
			Zoom:       viewport.DefaultZoom,
			BaseHeight: viewport.DefaultBaseHeight,
			Stretch:    viewport.DefaultStretch,
		},
		Momentum: Momentum{
			Friction:  momentum.DefaultFriction,
			Epsilon:   momentum.DefaultEpsilon,
			Constants: gesture.DefaultConstants(),
		},
		Render: Render{
			ColorScheme:   programs.Schemes[0].Name,
			MaxIterations: programs.DefaultMaxIterations,
		},
	}
}

// DefaultPath is config.yaml in the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "glmandel", "config.yaml"), nil
}

// Load reads the file at path over the defaults. A missing file gives the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %v: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Momentum.Friction > 0 && c.Momentum.Friction < 1, "momentum.friction %v not in (0, 1)", c.Momentum.Friction)
	check(positive(c.Momentum.Epsilon), "momentum.epsilon %v not positive", c.Momentum.Epsilon)
	check(positive(c.View.Zoom), "view.zoom %v not positive", c.View.Zoom)
	check(positive(c.View.BaseHeight), "view.baseHeight %v not positive", c.View.BaseHeight)
	check(positive(c.View.Stretch), "view.stretch %v not positive", c.View.Stretch)
	check(finite(c.View.Real) && finite(c.View.Imaginary), "view center %v%+vi not finite", c.View.Real, c.View.Imaginary)
	check(
		c.Render.MaxIterations >= programs.MinIterations && c.Render.MaxIterations <= programs.MaxIterations,
		"render.maxIterations %v not in [%v, %v]", c.Render.MaxIterations, programs.MinIterations, programs.MaxIterations,
	)

	for _, p := range c.Presets {
		check(p.Name != "", "preset without a name")
		check(positive(p.Zoom), "preset %q zoom %v not positive", p.Name, p.Zoom)
		check(finite(p.Real) && finite(p.Imaginary), "preset %q center not finite", p.Name)
	}

	return errors.Join(errs...)
}

// AllPresets is the built in presets with the configured ones applied.
func (c *Config) AllPresets() gesture.Presets {
	return gesture.DefaultPresets().With(c.Presets...)
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
