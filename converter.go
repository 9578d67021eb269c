package pagekeep

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pagekeep/internal/assets"
	"github.com/alnah/go-pagekeep/internal/dateutil"
	"github.com/alnah/go-pagekeep/internal/fileutil"
	"github.com/alnah/go-pagekeep/internal/pipeline"
	"github.com/alnah/go-pagekeep/layout"
)

// Generator is written into every document's generator meta tag.
const Generator = "go-pagekeep"

// Compile-time interface implementation checks.
var (
	_ pipeline.Preprocessor = pipeline.TextPreprocessor{}
	_ pipeline.EventSource  = (*pipeline.GoldmarkSource)(nil)
)

// Converter orchestrates the markdown-to-PDF pipeline.
// Create with NewConverter, use Convert for each document, and Close when
// done. A Converter owns one renderer and is not meant for concurrent
// Convert calls; use a ConverterPool for parallel work.
type Converter struct {
	cfg   converterConfig
	log   *zap.Logger
	now   func() time.Time
	rules *layout.RuleSet

	geometry     Geometry
	themeCSS     string
	highlightCSS string

	preprocessor pipeline.Preprocessor
	source       pipeline.EventSource
	serializer   *pipeline.Serializer
	assembler    *pipeline.Assembler
	renderer     Renderer
}

// NewConverter creates a Converter. Options are applied first, then the
// theme, rule set, document shell and geometry are resolved so that
// configuration errors surface here rather than on the first document.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:          converterConfig{timeout: defaultTimeout, highlight: true},
		log:          zap.NewNop(),
		now:          time.Now,
		rules:        layout.Default(),
		preprocessor: pipeline.TextPreprocessor{},
	}

	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("pagekeep")

	geometry, err := NewGeometry(c.cfg.geometry)
	if err != nil {
		return nil, err
	}
	if c.cfg.landscape {
		geometry = geometry.Landscape()
	}
	c.geometry = geometry

	if c.cfg.rulesCSS != "" {
		rs, err := layout.ParseRuleSet(c.cfg.rulesCSS)
		if err != nil {
			return nil, err
		}
		c.rules = rs
	}

	resolver, err := assets.NewResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	if c.themeCSS, err = resolveStyle(resolver, c.cfg.styleInput); err != nil {
		return nil, err
	}

	shell, err := resolver.DocumentTemplate()
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	if c.assembler, err = pipeline.NewAssembler(shell); err != nil {
		return nil, err
	}

	var highlighter *pipeline.Highlighter
	if c.cfg.highlight {
		highlighter = pipeline.NewHighlighter(c.cfg.highlightAs)
		c.highlightCSS = highlighter.CSS()
	}
	c.serializer = pipeline.NewSerializer(highlighter)
	c.source = pipeline.NewGoldmarkSource(pipeline.WithRawHTML(c.cfg.rawHTML))

	if c.renderer == nil {
		c.renderer = NewRodRenderer(c.cfg.timeout)
	}

	c.log.Debug("converter ready",
		zap.String("rules", c.rules.Version()),
		zap.Int("rule_count", c.rules.Len()),
		zap.Float64("paper_width", c.geometry.PaperWidth),
		zap.Float64("paper_height", c.geometry.PaperHeight),
		zap.Bool("strict", c.cfg.strict),
		zap.Bool("highlight", c.cfg.highlight),
	)
	return c, nil
}

// Geometry returns the page geometry every document is rendered with.
func (c *Converter) Geometry() Geometry {
	return c.geometry
}

// RuleSet returns the converter's pagination rules.
func (c *Converter) RuleSet() *layout.RuleSet {
	return c.rules
}

// Convert runs the full pipeline for one document.
// The context is used for cancellation; rendering is additionally bounded
// by the converter's timeout. If input.HTMLOnly is true, PDF rendering is
// skipped. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	rules := c.rules
	if input.RulesCSS != "" {
		if rules, err = layout.ParseRuleSet(input.RulesCSS); err != nil {
			return nil, err
		}
	}

	markdown := c.preprocessor.Preprocess(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	events, err := c.source.Events(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("reading markdown structure: %w", err)
	}

	events, err = pipeline.ResolvePaths(events, input.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving relative paths: %w", err)
	}

	ann := pipeline.Annotator{}.Run(events)
	if err := ann.Err(); err != nil {
		if c.cfg.strict {
			return nil, err
		}
		c.log.Warn("unbalanced structure, page breaks may split content",
			zap.Int("unmatched", ann.Unmatched),
			zap.Int("unclosed", ann.Unclosed),
		)
	}
	stats := Stats{
		Events:    len(ann.Events),
		Regions:   ann.Regions,
		Unmatched: ann.Unmatched,
		Unclosed:  ann.Unclosed,
		Headings:  ann.Headings,
	}
	stats.Blocks, stats.KeptTogether, stats.KeptWithNext = paginationCounts(rules, ann.Events)
	c.log.Debug("annotated",
		zap.Int("events", stats.Events),
		zap.Int("regions", stats.Regions),
		zap.Int("blocks", stats.Blocks),
		zap.Int("kept-together", stats.KeptTogether),
		zap.Int("kept-with-next", stats.KeptWithNext),
	)

	body, err := c.serializer.SerializeString(ann.Events)
	if err != nil {
		return nil, fmt.Errorf("serializing markup: %w", err)
	}
	body = pipeline.ExpandMarks(body)

	title := input.Title
	if title == "" {
		title = pipeline.Title(events)
	}

	var footer *Footer
	if !input.HTMLOnly {
		if footer, err = c.resolveFooter(input.Footer); err != nil {
			return nil, err
		}
	}
	// Chrome lets @page margins win over print margins, so the page rule
	// carries the footer room too.
	page := c.geometry.withFooter(footer)

	markup, err := c.assembler.Assemble(pipeline.Document{
		Title:        title,
		Generator:    Generator,
		RulesVersion: rules.Version(),
		PageCSS:      page.CSS(),
		ThemeCSS:     c.themeCSS,
		HighlightCSS: c.highlightCSS,
		RulesCSS:     rules.CSS(),
		ExtraCSS:     input.CSS,
		Body:         body,
	})
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}

	res := &ConvertResult{
		HTML:     []byte(markup),
		Geometry: page,
		Stats:    stats,
	}

	if input.HTMLOnly {
		return res, nil
	}

	renderCtx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	start := c.now()
	pdf, err := c.renderer.Render(renderCtx, markup, page, RenderOptions{Footer: footer})
	if err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	c.log.Debug("rendered",
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", c.now().Sub(start)),
	)

	res.PDF = pdf
	return res, nil
}

// paginationCounts matches the rendered block elements against rules.
func paginationCounts(rules *layout.RuleSet, events []pipeline.Event) (blocks, together, withNext int) {
	for _, el := range pipeline.Blocks(events) {
		blocks++
		behaviors := rules.Match(el)
		if slices.Contains(behaviors, layout.AvoidSplit) {
			together++
		}
		if slices.Contains(behaviors, layout.AvoidAfter) || slices.Contains(behaviors, layout.KeepNext) {
			withNext++
		}
	}
	return blocks, together, withNext
}

// Close releases the renderer (headless Chrome browser).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// validateInput checks that required fields are present and valid.
//
// This is a trust boundary for library users who build Input manually.
// CLI users have their config validated earlier; both paths converge here.
func (c *Converter) validateInput(input Input) error {
	if pipeline.IsBlank(input.Markdown) {
		return ErrEmptyDocument
	}
	return input.Footer.Validate()
}

// resolveFooter returns a copy of f with an "auto" date replaced by the
// current date.
func (c *Converter) resolveFooter(f *Footer) (*Footer, error) {
	if f == nil {
		return nil, nil
	}
	out := *f
	date, err := dateutil.ResolveDate(f.Date, c.now())
	if err != nil {
		return nil, fmt.Errorf("footer date: %w", err)
	}
	out.Date = date
	return &out, nil
}

// resolveStyle resolves a style input (name, path, or CSS content) to CSS.
// An empty input selects the default theme.
func resolveStyle(loader assets.Loader, input string) (string, error) {
	if input == "" {
		input = assets.DefaultStyleName
	}

	// Inline CSS can contain slashes (url(...), comments), so check it first.
	if fileutil.IsCSS(input) {
		return input, nil
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	css, err := loader.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}
