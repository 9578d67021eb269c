// Package config loads the YAML configuration used by the pagekeep CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	pagekeep "github.com/alnah/go-pagekeep"
	"github.com/alnah/go-pagekeep/internal/fileutil"
	"github.com/alnah/go-pagekeep/internal/logging"
	"github.com/alnah/go-pagekeep/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxDateLength     = 30
	MaxTextLength     = 500
	MaxPageSizeLength = 10
)

// Log levels accepted by Log.Level.
const (
	LogQuiet  = logging.Quiet
	LogNormal = logging.Normal
	LogDebug  = logging.Debug
)

// userConfigDirName is the directory under os.UserConfigDir searched for
// named configs.
const userConfigDirName = "go-pagekeep"

// Config holds all configuration for a CLI run.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Style  StyleConfig  `yaml:"style"`
	Rules  RulesConfig  `yaml:"rules"`
	Page   PageConfig   `yaml:"page"`
	Footer FooterConfig `yaml:"footer"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// InputConfig defines where markdown is read from.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // used when no path argument is given
	Recursive  bool   `yaml:"recursive"`
}

// OutputConfig defines where documents are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source
	HTML       bool   `yaml:"html"`       // also write the assembled HTML
}

// StyleConfig selects the theme and extra stylesheets.
type StyleConfig struct {
	Name      string `yaml:"name"`      // embedded style name or path
	CSS       string `yaml:"css"`       // extra CSS file appended last
	AssetPath string `yaml:"assetPath"` // directory overriding embedded assets
}

// RulesConfig controls page-break behavior.
type RulesConfig struct {
	Path   string `yaml:"path"`   // CSS rule-set replacing the defaults
	Strict bool   `yaml:"strict"` // unbalanced containers fail the document
}

// PageConfig defines geometry. Pointer fields distinguish "unset" from 0.
type PageConfig struct {
	Size         string   `yaml:"size"`        // a4, a5, letter, legal
	Orientation  string   `yaml:"orientation"` // portrait, landscape
	PaperWidth   *float64 `yaml:"paperWidth"`  // inches, wins over size
	PaperHeight  *float64 `yaml:"paperHeight"`
	Margin       *float64 `yaml:"margin"`      // all four sides, inches
	MarginTop    *float64 `yaml:"marginTop"`
	MarginBottom *float64 `yaml:"marginBottom"`
	MarginLeft   *float64 `yaml:"marginLeft"`
	MarginRight  *float64 `yaml:"marginRight"`
	Scale        *float64 `yaml:"scale"`
}

// FooterConfig defines the page footer.
type FooterConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Position       string `yaml:"position"` // left, center, right
	ShowPageNumber bool   `yaml:"showPageNumber"`
	Date           string `yaml:"date"` // literal, "auto" or "auto:FORMAT"
	Text           string `yaml:"text"`
}

// RenderConfig tunes conversion.
type RenderConfig struct {
	Timeout        string `yaml:"timeout"` // Go duration, e.g. "45s"
	Workers        int    `yaml:"workers"` // 0 = auto
	NoHighlight    bool   `yaml:"noHighlight"`
	HighlightStyle string `yaml:"highlightStyle"` // chroma style name
	RawHTML        bool   `yaml:"rawHTML"`
}

// LogConfig selects console verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // quiet, normal, debug
}

// DefaultConfig returns a configuration with every feature at its default.
func DefaultConfig() *Config {
	return &Config{Log: LogConfig{Level: LogNormal}}
}

// TimeoutDuration parses Render.Timeout. Zero means "use the default".
func (r RenderConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: render.timeout %q: %v", ErrInvalidValue, r.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: render.timeout must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Geometry converts the page section into geometry overrides. Explicit
// paper dimensions win over Size and per-side margins win over Margin.
func (p PageConfig) Geometry() (pagekeep.GeometryOverrides, bool, error) {
	var o pagekeep.GeometryOverrides
	if p.Size != "" {
		w, h, err := pagekeep.PaperSize(p.Size)
		if err != nil {
			return o, false, fmt.Errorf("page.size: %w", err)
		}
		o.PaperWidth, o.PaperHeight = &w, &h
	}
	if p.PaperWidth != nil {
		o.PaperWidth = p.PaperWidth
	}
	if p.PaperHeight != nil {
		o.PaperHeight = p.PaperHeight
	}
	if p.Margin != nil {
		o.MarginTop, o.MarginBottom, o.MarginLeft, o.MarginRight = p.Margin, p.Margin, p.Margin, p.Margin
	}
	if p.MarginTop != nil {
		o.MarginTop = p.MarginTop
	}
	if p.MarginBottom != nil {
		o.MarginBottom = p.MarginBottom
	}
	if p.MarginLeft != nil {
		o.MarginLeft = p.MarginLeft
	}
	if p.MarginRight != nil {
		o.MarginRight = p.MarginRight
	}
	o.Scale = p.Scale

	var landscape bool
	switch strings.ToLower(p.Orientation) {
	case "", "portrait":
	case "landscape":
		landscape = true
	default:
		return o, false, fmt.Errorf("%w: page.orientation %q (must be portrait or landscape)", ErrInvalidValue, p.Orientation)
	}
	return o, landscape, nil
}

// Footer returns the footer to render, or nil when disabled.
func (f FooterConfig) Footer() *pagekeep.Footer {
	if !f.Enabled {
		return nil
	}
	return &pagekeep.Footer{
		Position:       f.Position,
		ShowPageNumber: f.ShowPageNumber,
		Date:           f.Date,
		Text:           f.Text,
	}
}

// Validate checks lengths and enumerations. LoadConfig calls it; callers
// building a Config by hand should call it too.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"style.name", c.Style.Name, MaxPathLength},
		{"style.css", c.Style.CSS, MaxPathLength},
		{"style.assetPath", c.Style.AssetPath, MaxPathLength},
		{"rules.path", c.Rules.Path, MaxPathLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"footer.date", c.Footer.Date, MaxDateLength},
		{"footer.text", c.Footer.Text, MaxTextLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	overrides, _, err := c.Page.Geometry()
	if err != nil {
		return err
	}
	if _, err := pagekeep.NewGeometry(overrides); err != nil {
		return fmt.Errorf("page: %w", err)
	}

	footer := pagekeep.Footer{Position: c.Footer.Position}
	if err := footer.Validate(); err != nil {
		return fmt.Errorf("footer.position: %w", err)
	}

	if _, err := c.Render.TimeoutDuration(); err != nil {
		return err
	}
	if c.Render.Workers < 0 || c.Render.Workers > pagekeep.MaxPoolSize {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, pagekeep.MaxPoolSize, c.Render.Workers)
	}

	switch c.Log.Level {
	case "", LogQuiet, LogNormal, LogDebug:
	default:
		return fmt.Errorf("%w: log.level %q (must be quiet, normal, or debug)", ErrInvalidValue, c.Log.Level)
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// NotFoundError lists every path tried while resolving a config name.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

// Is makes errors.Is(err, ErrConfigNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// LoadConfig loads a config from a path, or from a name looked up as
// ./NAME.yaml, ./NAME.yml, then under the user config directory.
// Missing files are an error; there is no silent fallback to defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if path, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Name: nameOrPath, Tried: []string{path}}
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrConfigParse, path, yamlutil.Describe(err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup
// order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, 2*len(extensions))
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, userConfigDirName, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", &NotFoundError{Name: name, Tried: tried}
}
