package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	pagekeep "github.com/alnah/go-pagekeep"
	"github.com/alnah/go-pagekeep/internal/assets"
	"github.com/alnah/go-pagekeep/internal/config"
	"github.com/alnah/go-pagekeep/internal/dateutil"
	"github.com/alnah/go-pagekeep/internal/hints"
	"github.com/alnah/go-pagekeep/internal/logging"
)

// Sentinel errors for CLI operations.
var (
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrReadRules          = errors.New("failed to read rules file")
	ErrWritePDF           = errors.New("failed to write output file")
	ErrCreateOutputDir    = errors.New("failed to create output directory")
	ErrInvalidWorkerCount = errors.New("invalid worker count")

	errUsage = errors.New("usage")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---
	filePermissions = 0o644 // rw-r--r--
)

// fileResult is the outcome of one discovered file.
type fileResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// runSettings is everything resolved from flags, environment and config
// before any conversion starts.
type runSettings struct {
	timeout  time.Duration
	workers  int
	footer   *pagekeep.Footer
	extraCSS string
	htmlOnly bool
}

// run converts the inputs named by args and prints a report. The returned
// error decides the exit code.
func run(ctx context.Context, flags *cliFlags, args []string, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)

	cfg := config.DefaultConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, env.Stdout, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	defer func() { _ = log.Sync() }()

	warnUnknownEnvVars(env.Environ(), log)

	// Fails only on an invalid GOMAXPROCS value, in which case the runtime
	// default stays.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf))

	settings, err := resolveSettings(flags, cfg, env.Now())
	if err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 && cfg.Input.DefaultDir != "" {
		inputs = []string{cfg.Input.DefaultDir}
	}
	jobs, warnings, err := discoverFiles(inputs, cfg.Output.DefaultDir, cfg.Input.Recursive)
	for _, w := range multierr.Errors(warnings) {
		log.Warn(w.Error())
	}
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	opts, err := converterOptions(cfg, settings, log)
	if err != nil {
		return err
	}
	opts = append(opts, env.Options...)

	poolSize := pagekeep.ResolvePoolSize(settings.workers)
	log.Debug("starting conversion", zap.Int("files", len(jobs)), zap.Int("workers", poolSize))

	pool := pagekeep.NewConverterPool(poolSize, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing browsers", zap.Error(err))
		}
	}()

	results := convertFiles(ctx, pool, jobs, settings, cfg.Output.HTML)
	failed := printResults(results, cfg.Log.Level, env, settings)

	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return &reportedError{err: results[0].Err}
	default:
		return &reportedError{err: fmt.Errorf("%d of %d conversions failed", failed, len(results))}
	}
}

// reportedError marks an error already printed with its file.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// mergeFlags copies flags given on the command line over cfg.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.recursive {
		cfg.Input.Recursive = true
	}
	if flags.workers != 0 {
		cfg.Render.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Render.Timeout = flags.timeout
	}

	if flags.style.style != "" {
		cfg.Style.Name = flags.style.style
	}
	if flags.style.css != "" {
		cfg.Style.CSS = flags.style.css
	}
	if flags.style.assetPath != "" {
		cfg.Style.AssetPath = flags.style.assetPath
	}
	if flags.style.rules != "" {
		cfg.Rules.Path = flags.style.rules
	}
	if flags.style.strict {
		cfg.Rules.Strict = true
	}
	if flags.style.noHighlight {
		cfg.Render.NoHighlight = true
	}

	p := flags.page
	if p.size != "" {
		cfg.Page.Size = p.size
	}
	if p.landscape {
		cfg.Page.Orientation = "landscape"
	}
	if p.paperWidth != nil {
		cfg.Page.PaperWidth = p.paperWidth
	}
	if p.paperHeight != nil {
		cfg.Page.PaperHeight = p.paperHeight
	}
	if p.marginTop != nil {
		cfg.Page.MarginTop = p.marginTop
	}
	if p.marginBottom != nil {
		cfg.Page.MarginBottom = p.marginBottom
	}
	if p.marginLeft != nil {
		cfg.Page.MarginLeft = p.marginLeft
	}
	if p.marginRight != nil {
		cfg.Page.MarginRight = p.marginRight
	}
	if p.scale != nil {
		cfg.Page.Scale = p.scale
	}

	f := flags.footer
	if f.pageNumbers {
		cfg.Footer.ShowPageNumber = true
		cfg.Footer.Enabled = true
	}
	if f.text != "" {
		cfg.Footer.Text = f.text
		cfg.Footer.Enabled = true
	}
	if f.date != "" {
		cfg.Footer.Date = f.date
		cfg.Footer.Enabled = true
	}
	if f.position != "" {
		cfg.Footer.Position = f.position
	}

	if flags.outputMode.html {
		cfg.Output.HTML = true
	}

	switch {
	case flags.common.verbose:
		cfg.Log.Level = config.LogDebug
	case flags.common.quiet:
		cfg.Log.Level = config.LogQuiet
	}
}

// resolveSettings validates the run-level values taken from flags and cfg.
// An "auto" footer date is resolved once so every file of a batch shows
// the same date.
func resolveSettings(flags *cliFlags, cfg *config.Config, now time.Time) (*runSettings, error) {
	timeout, err := cfg.Render.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	s := &runSettings{
		timeout:  timeout,
		workers:  cfg.Render.Workers,
		footer:   cfg.Footer.Footer(),
		htmlOnly: flags.outputMode.htmlOnly,
	}
	if s.footer != nil {
		if err := s.footer.Validate(); err != nil {
			return nil, err
		}
		date, err := dateutil.ResolveDate(s.footer.Date, now)
		if err != nil {
			return nil, fmt.Errorf("footer date: %w", err)
		}
		s.footer.Date = date
	}

	if cfg.Style.CSS != "" {
		css, err := os.ReadFile(cfg.Style.CSS) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadCSS, err)
		}
		s.extraCSS = string(css)
	}
	return s, nil
}

// converterOptions translates cfg into converter options.
func converterOptions(cfg *config.Config, s *runSettings, log *zap.Logger) ([]pagekeep.Option, error) {
	opts := []pagekeep.Option{
		pagekeep.WithLogger(log),
		pagekeep.WithHighlighting(!cfg.Render.NoHighlight),
	}
	if s.timeout > 0 {
		opts = append(opts, pagekeep.WithTimeout(s.timeout))
	}
	if cfg.Style.Name != "" {
		opts = append(opts, pagekeep.WithStyle(cfg.Style.Name))
	}
	if cfg.Style.AssetPath != "" {
		opts = append(opts, pagekeep.WithAssetPath(cfg.Style.AssetPath))
	}
	if cfg.Render.HighlightStyle != "" {
		opts = append(opts, pagekeep.WithHighlightStyle(cfg.Render.HighlightStyle))
	}
	if cfg.Render.RawHTML {
		opts = append(opts, pagekeep.WithRawHTML())
	}
	if cfg.Rules.Strict {
		opts = append(opts, pagekeep.WithStrictStructure())
	}
	if cfg.Rules.Path != "" {
		rules, err := os.ReadFile(cfg.Rules.Path) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadRules, err)
		}
		opts = append(opts, pagekeep.WithRulesCSS(string(rules)))
	}

	overrides, landscape, err := cfg.Page.Geometry()
	if err != nil {
		return nil, err
	}
	if !overrides.IsZero() {
		opts = append(opts, pagekeep.WithGeometry(overrides))
	}
	if landscape {
		opts = append(opts, pagekeep.WithLandscape())
	}
	return opts, nil
}

// convertFiles reads every job, converts the readable ones as one batch and
// writes the outputs. Results keep the order of jobs.
func convertFiles(ctx context.Context, pool *pagekeep.ConverterPool, jobs []fileJob, s *runSettings, writeHTML bool) []fileResult {
	results := make([]fileResult, len(jobs))
	var (
		inputs  []pagekeep.Input
		indexes []int
	)
	for i, job := range jobs {
		results[i] = fileResult{InputPath: job.InputPath, OutputPath: job.OutputPath}

		content, err := os.ReadFile(job.InputPath) // #nosec G304 -- discovered path
		if err != nil {
			results[i].Err = fmt.Errorf("%w: %w", ErrReadMarkdown, err)
			continue
		}
		sourceDir := filepath.Dir(job.InputPath)
		if abs, err := filepath.Abs(sourceDir); err == nil {
			sourceDir = abs
		}
		inputs = append(inputs, pagekeep.Input{
			Markdown:  string(content),
			SourceDir: sourceDir,
			CSS:       s.extraCSS,
			Footer:    s.footer,
			HTMLOnly:  s.htmlOnly,
		})
		indexes = append(indexes, i)
	}

	outcomes := pagekeep.ConvertBatch(ctx, pool, inputs)
	for n, o := range outcomes {
		r := &results[indexes[n]]
		r.Duration = o.Duration
		if !o.OK() {
			r.Err = o.Err
			continue
		}
		r.OutputPath, r.Err = writeOutputs(o.Result, r.OutputPath, writeHTML, s.htmlOnly)
	}
	return results
}

// writeOutputs writes the PDF and, when asked, the HTML next to it. It
// returns the path reported to the user.
func writeOutputs(res *pagekeep.ConvertResult, pdfPath string, writeHTML, htmlOnly bool) (string, error) {
	if err := os.MkdirAll(filepath.Dir(pdfPath), dirPermissions); err != nil {
		return pdfPath, fmt.Errorf("%w: %w", ErrCreateOutputDir, err)
	}

	if writeHTML || htmlOnly {
		htmlPath := htmlOutputPath(pdfPath)
		// #nosec G306 -- output documents are meant to be readable
		if err := os.WriteFile(htmlPath, res.HTML, filePermissions); err != nil {
			return htmlPath, fmt.Errorf("%w: %w", ErrWritePDF, err)
		}
		if htmlOnly {
			return htmlPath, nil
		}
	}

	// #nosec G306 -- output documents are meant to be readable
	if err := os.WriteFile(pdfPath, res.PDF, filePermissions); err != nil {
		return pdfPath, fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return pdfPath, nil
}

// printResults reports each file and, for batches, the summary line. It
// returns the number of failures.
func printResults(results []fileResult, level string, env *Environment, s *runSettings) int {
	quiet := level == config.LogQuiet
	verbose := level == config.LogDebug

	outcomes := make([]pagekeep.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = pagekeep.Outcome{Err: r.Err, Duration: r.Duration}

		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v", r.InputPath, r.Err)
			if len(results) == 1 {
				fmt.Fprint(env.Stderr, hintFor(r.Err, env, s.timeout))
			}
			fmt.Fprintln(env.Stderr)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	succeeded, failed := pagekeep.Summarize(outcomes)
	if len(results) > 1 && (!quiet || failed > 0) {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}
	return failed
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment, timeout time.Duration) string {
	var notFound *config.NotFoundError
	switch {
	case errors.Is(err, pagekeep.ErrBrowserConnect):
		return hints.ForBrowserConnect(env.Getenv, hints.InContainer())
	case errors.Is(err, pagekeep.ErrRenderTimeout):
		return hints.ForTimeout(timeout)
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, pagekeep.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, pagekeep.ErrInvalidRuleSet):
		return hints.ForInvalidRules()
	case errors.Is(err, pagekeep.ErrMalformedStructure):
		return hints.ForMalformedStructure()
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}

// validateWorkers checks the worker count bounds. 0 means auto.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > pagekeep.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, pagekeep.MaxPoolSize)
	}
	return nil
}
