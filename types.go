package pagekeep

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pagekeep/layout"
)

// Input contains conversion parameters for one document.
type Input struct {
	Markdown string // Markdown content (required, not blank)
	Title    string // Document title for <title>; first h1 text when empty

	// SourceDir resolves relative image and link targets to file:// URLs.
	// Empty leaves them untouched.
	SourceDir string

	// CSS is appended after the pagination rules.
	CSS string

	// RulesCSS replaces the converter's pagination rule set for this
	// document. It must carry every required selector.
	RulesCSS string

	Footer   *Footer // nil = no footer
	HTMLOnly bool    // skip PDF rendering
}

// ConvertResult holds the outputs of one conversion.
type ConvertResult struct {
	HTML     []byte
	PDF      []byte // nil when Input.HTMLOnly is set
	Geometry Geometry
	Stats    Stats
}

// Stats describes the structure the annotator saw.
type Stats struct {
	Events    int    // events after annotation
	Regions   int    // non-splitting regions emitted
	Unmatched int    // tracked closes with no open
	Unclosed  int    // tracked opens never closed
	Headings  [7]int // per level, index 0 unused

	Blocks       int // block elements, region wrappers included
	KeptTogether int // blocks whose rules avoid a break inside
	KeptWithNext int // blocks whose rules avoid a break after
}

// Footer position constants.
const (
	FooterLeft   = "left"
	FooterCenter = "center"
	FooterRight  = "right"
)

// Footer configures the page footer drawn by the renderer.
type Footer struct {
	Position       string // left, center or right (default right)
	ShowPageNumber bool
	Date           string // literal, "auto" or "auto:FORMAT"
	Text           string
}

// Validate checks the footer position.
// Returns nil if f is nil (nil means no footer).
func (f *Footer) Validate() error {
	if f == nil {
		return nil
	}
	switch strings.ToLower(f.Position) {
	case "", FooterLeft, FooterCenter, FooterRight:
		return nil
	default:
		return fmt.Errorf("%w: %q (must be left, center, or right)", ErrInvalidFooterPosition, f.Position)
	}
}

// RenderOptions carries per-document settings to the renderer.
type RenderOptions struct {
	Footer *Footer
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds option values until NewConverter resolves them.
type converterConfig struct {
	timeout     time.Duration
	styleInput  string
	assetPath   string
	rulesCSS    string
	geometry    GeometryOverrides
	landscape   bool
	strict      bool
	highlight   bool
	highlightAs string
	rawHTML     bool
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the render timeout per document.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pagekeep: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithRenderer replaces the headless Chrome renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithRuleSet sets the pagination rules used for every document.
func WithRuleSet(rs *layout.RuleSet) Option {
	return func(c *Converter) {
		if rs != nil {
			c.rules = rs
		}
	}
}

// WithRulesCSS parses stylesheet as the converter's rule set when the
// converter is created. Invalid rules fail NewConverter.
func WithRulesCSS(stylesheet string) Option {
	return func(c *Converter) {
		c.cfg.rulesCSS = stylesheet
	}
}

// WithStyle sets the theme: a built-in name, a path to a CSS file, or CSS
// text.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath sets a directory whose styles and templates take
// precedence over the embedded ones.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithGeometry overrides fields of DefaultGeometry.
func WithGeometry(o GeometryOverrides) Option {
	return func(c *Converter) {
		c.cfg.geometry = o
	}
}

// WithLandscape swaps paper width and height after overrides are applied.
func WithLandscape() Option {
	return func(c *Converter) {
		c.cfg.landscape = true
	}
}

// WithLogger sets the logger. The converter logs under the "pagekeep" name.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStrictStructure makes unbalanced tables, code blocks and block quotes
// fail the conversion with ErrMalformedStructure instead of logging a
// warning.
func WithStrictStructure() Option {
	return func(c *Converter) {
		c.cfg.strict = true
	}
}

// WithHighlighting enables or disables syntax highlighting of fenced code.
// Enabled by default.
func WithHighlighting(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.highlight = enabled
	}
}

// WithHighlightStyle selects the chroma style for code highlighting.
func WithHighlightStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.highlightAs = name
	}
}

// WithRawHTML passes HTML embedded in the markdown through to the document.
// Without it raw HTML is replaced by a comment.
func WithRawHTML() Option {
	return func(c *Converter) {
		c.cfg.rawHTML = true
	}
}
