package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/roman-kulish/cube-spectrum/internal/preview"
	"github.com/roman-kulish/cube-spectrum/internal/render"
	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

const envPrefix = "CUBESPEC_"

var (
	errMissing   = errors.New("required key is missing")
	errNegative  = errors.New("must not be negative")
	errYRange    = errors.New("yminval must be less than ymaxval")
	errLineLists = errors.New("linenames, linexvals, linenames_sizes and arrow_tips must be given together")
)

// Keys each command needs.
var (
	PlotKeys    = []string{"cubefile", "regfile", "target", "figfile", "velconvention", "regplot", "smoothfact", "yminval", "ymaxval"}
	PreviewKeys = []string{"cubefile", "regfile", "previewfile"}
	InspectKeys = []string{"cubefile", "regfile"}
	RunsKeys    = []string{"archive"}
)

// ConfigError reports an invalid configuration key
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config key '%s': %s", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds the settings of one invocation
type Config struct {
	CubeFile      string  `yaml:"cubefile"`
	RegFile       string  `yaml:"regfile"`
	Target        string  `yaml:"target"`
	FigFile       string  `yaml:"figfile"`
	VelConvention string  `yaml:"velconvention"`
	RegPlot       int     `yaml:"regplot"`
	SmoothFact    float64 `yaml:"smoothfact"` // km/s
	YMinVal       float64 `yaml:"yminval"`
	YMaxVal       float64 `yaml:"ymaxval"`
	VRegion       float64 `yaml:"vregion"` // km/s

	LineNames      []string `yaml:"linenames,omitempty"`
	LineXVals      []string `yaml:"linexvals,omitempty"` // MHz
	LineNamesSizes []string `yaml:"linenames_sizes,omitempty"`
	ArrowTips      []string `yaml:"arrow_tips,omitempty"`

	SmoothType  string  `yaml:"smoothtype"`
	LabelOffset float64 `yaml:"label_offset"`
	FigWidth    float64 `yaml:"figwidth"`  // inches
	FigHeight   float64 `yaml:"figheight"` // inches
	Archive     string  `yaml:"archive,omitempty"`
	PreviewFile string  `yaml:"previewfile,omitempty"`
	Theme       string  `yaml:"theme"`
	LogLevel    string  `yaml:"log_level"`

	Convention spectrum.Convention `yaml:"-"`
	Kernel     spectrum.Kernel     `yaml:"-"`
	ColorTheme preview.ColorTheme  `yaml:"-"`
	Level      slog.Level          `yaml:"-"`
	Lines      []render.LineID     `yaml:"-"`

	set map[string]bool
}

// Require checks that every key was provided by one of the configuration layers.
func (c *Config) Require(keys ...string) error {
	for _, key := range keys {
		if !c.set[key] {
			return &ConfigError{Key: key, Err: errMissing}
		}
	}
	return nil
}

func defaults() map[string]any {
	return map[string]any{
		"vregion":      0.0,
		"smoothtype":   string(spectrum.Boxcar),
		"label_offset": render.DefaultLabelOffset,
		"figwidth":     8.0,
		"figheight":    5.0,
		"theme":        string(preview.EnhancedTheme),
		"log_level":    "info",
	}
}

// LoadConfig loads configuration from defaults, the YAML file at path (if
// any), CUBESPEC_ environment variables and explicitly set flags, in
// increasing order of precedence.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file '%s': %w", path, err)
		}
	}

	// CUBESPEC_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	c := &Config{set: make(map[string]bool)}
	if err := c.decode(k); err != nil {
		return nil, err
	}
	if err := c.parse(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decode(k *koanf.Koanf) error {
	fields := []struct {
		key string
		dst any
	}{
		{"cubefile", &c.CubeFile},
		{"regfile", &c.RegFile},
		{"target", &c.Target},
		{"figfile", &c.FigFile},
		{"velconvention", &c.VelConvention},
		{"regplot", &c.RegPlot},
		{"smoothfact", &c.SmoothFact},
		{"yminval", &c.YMinVal},
		{"ymaxval", &c.YMaxVal},
		{"vregion", &c.VRegion},
		{"linenames", &c.LineNames},
		{"linexvals", &c.LineXVals},
		{"linenames_sizes", &c.LineNamesSizes},
		{"arrow_tips", &c.ArrowTips},
		{"smoothtype", &c.SmoothType},
		{"label_offset", &c.LabelOffset},
		{"figwidth", &c.FigWidth},
		{"figheight", &c.FigHeight},
		{"archive", &c.Archive},
		{"previewfile", &c.PreviewFile},
		{"theme", &c.Theme},
		{"log_level", &c.LogLevel},
	}

	for _, f := range fields {
		if !k.Exists(f.key) || k.Get(f.key) == nil {
			continue
		}
		if err := k.Unmarshal(f.key, f.dst); err != nil {
			return &ConfigError{Key: f.key, Err: err}
		}
		c.set[f.key] = true
	}
	return nil
}

func (c *Config) parse() (err error) {
	if c.set["velconvention"] {
		if c.Convention, err = spectrum.ParseConvention(c.VelConvention); err != nil {
			return &ConfigError{Key: "velconvention", Err: err}
		}
	}
	if c.Kernel, err = spectrum.ParseKernel(c.SmoothType); err != nil {
		return &ConfigError{Key: "smoothtype", Err: err}
	}
	if c.ColorTheme, err = preview.ParseTheme(c.Theme); err != nil {
		return &ConfigError{Key: "theme", Err: err}
	}
	if err = c.Level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return &ConfigError{Key: "log_level", Err: err}
	}

	switch {
	case c.RegPlot < 0:
		return &ConfigError{Key: "regplot", Err: errNegative}
	case c.SmoothFact < 0:
		return &ConfigError{Key: "smoothfact", Err: errNegative}
	case c.LabelOffset < 0:
		return &ConfigError{Key: "label_offset", Err: errNegative}
	case c.FigWidth <= 0:
		return &ConfigError{Key: "figwidth", Err: fmt.Errorf("invalid figure width %g", c.FigWidth)}
	case c.FigHeight <= 0:
		return &ConfigError{Key: "figheight", Err: fmt.Errorf("invalid figure height %g", c.FigHeight)}
	case c.set["yminval"] && c.set["ymaxval"] && !(c.YMinVal < c.YMaxVal):
		return &ConfigError{Key: "yminval", Err: errYRange}
	}

	if c.FigFile != "" {
		if err = render.CheckFormat(c.FigFile); err != nil {
			return &ConfigError{Key: "figfile", Err: err}
		}
	}
	if c.PreviewFile != "" {
		if err = preview.CheckFormat(c.PreviewFile); err != nil {
			return &ConfigError{Key: "previewfile", Err: err}
		}
	}

	c.Lines, err = c.parseLines()
	return err
}

// splitList accepts either a YAML list or a single comma-delimited string.
func splitList(values []string) []string {
	if len(values) == 1 {
		values = strings.Split(values[0], ",")
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) parseLines() ([]render.LineID, error) {
	lists := []struct {
		key    string
		values []string
	}{
		{"linenames", splitList(c.LineNames)},
		{"linexvals", splitList(c.LineXVals)},
		{"linenames_sizes", splitList(c.LineNamesSizes)},
		{"arrow_tips", splitList(c.ArrowTips)},
	}

	var present int
	for _, l := range lists {
		if len(l.values) > 0 {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}

	n := len(lists[0].values)
	for _, l := range lists {
		if len(l.values) == 0 {
			return nil, &ConfigError{Key: l.key, Err: errLineLists}
		}
		if len(l.values) != n {
			return nil, &ConfigError{Key: l.key, Err: fmt.Errorf("has %d entries, linenames has %d", len(l.values), n)}
		}
	}

	numbers := make([][]float64, len(lists))
	for i, l := range lists[1:] {
		numbers[i+1] = make([]float64, n)
		for j, v := range l.values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, &ConfigError{Key: l.key, Err: fmt.Errorf("entry %d: %w", j, err)}
			}
			numbers[i+1][j] = f
		}
	}

	lines := make([]render.LineID, n)
	for i, name := range lists[0].values {
		lines[i] = render.LineID{
			Name:         name,
			FrequencyMHz: numbers[1][i],
			Size:         numbers[2][i],
			ArrowTip:     numbers[3][i],
		}
	}
	return lines, nil
}
