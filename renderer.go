package pagekeep

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-pagekeep/internal/fileutil"
	"github.com/alnah/go-pagekeep/internal/process"
)

// Renderer turns an assembled HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, markup string, g Geometry, opts RenderOptions) ([]byte, error)
	Close() error
}

var _ Renderer = (*RodRenderer)(nil)

// footerMarginInches is the minimum bottom margin that leaves room for the
// footer line.
const footerMarginInches = 0.6

// footerFontFamily matches the default theme's body font.
const footerFontFamily = `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif`

// RodRenderer renders through headless Chrome driven by go-rod.
// The browser is launched on first use. Rod downloads Chromium if none is
// found and ROD_BROWSER_BIN is unset.
type RodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	pid      int
	timeout  time.Duration
}

// NewRodRenderer creates a RodRenderer. timeout bounds page load when the
// context carries no deadline.
func NewRodRenderer(timeout time.Duration) *RodRenderer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *RodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if sandboxDisabled() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	r.pid = l.PID()
	return browser, nil
}

// sandboxDisabled reports whether Chrome must run without its sandbox:
// in CI, in containers with a pre-installed browser, or on request.
func sandboxDisabled() bool {
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		return true
	}
	switch strings.ToLower(os.Getenv("ROD_NO_SANDBOX")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Render writes markup to a temporary file, loads it in a new tab and
// prints it with the given geometry.
func (r *RodRenderer) Render(ctx context.Context, markup string, g Geometry, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, renderError(err)
	}

	path, cleanup, err := fileutil.WriteTempFile(markup, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderBackend, err)
	}
	defer cleanup()

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: fileutil.FileURL(path)})
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", ErrRenderBackend, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, renderError(context.DeadlineExceeded)
		}
	}
	page = page.Context(ctx)

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, renderError(fmt.Errorf("loading page: %w", err))
	}

	reader, err := page.PDF(buildPrintOptions(g, opts))
	if err != nil {
		return nil, renderError(fmt.Errorf("printing: %w", err))
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, renderError(fmt.Errorf("reading PDF stream: %w", err))
	}
	return pdf, nil
}

// Close closes the browser and kills its process group so no Chrome
// helper outlives the renderer.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	// launcher.Kill covers the main process if the group kill fails.
	_ = process.KillProcessGroup(r.pid)
	r.launcher.Kill()

	r.browser = nil
	r.launcher = nil
	r.pid = 0
	return err
}

// renderError maps deadline errors to ErrRenderTimeout and everything else
// to ErrRenderBackend.
func renderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRenderBackend, err)
}

// buildPrintOptions maps geometry and footer settings to Chrome's print
// parameters.
func buildPrintOptions(g Geometry, opts RenderOptions) *proto.PagePrintToPDF {
	g = g.withFooter(opts.Footer)
	footer := buildFooterTemplate(opts.Footer)

	req := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(g.PaperWidth),
		PaperHeight:     floatPtr(g.PaperHeight),
		MarginTop:       floatPtr(g.MarginTop),
		MarginBottom:    floatPtr(g.MarginBottom),
		MarginLeft:      floatPtr(g.MarginLeft),
		MarginRight:     floatPtr(g.MarginRight),
		Scale:           floatPtr(g.Scale),
		PrintBackground: true,
	}

	if footer != "" {
		req.DisplayHeaderFooter = true
		req.HeaderTemplate = "<span></span>" // Empty header
		req.FooterTemplate = footer
	}
	return req
}

// buildFooterTemplate generates Chrome's footer template. Page numbers use
// the pageNumber and totalPages classes Chrome fills in. Returns "" when
// the footer has nothing to show.
func buildFooterTemplate(f *Footer) string {
	if f == nil {
		return ""
	}

	var parts []string
	if f.ShowPageNumber {
		parts = append(parts, `<span class="pageNumber"></span>/<span class="totalPages"></span>`)
	}
	if f.Date != "" {
		parts = append(parts, html.EscapeString(f.Date))
	}
	if f.Text != "" {
		parts = append(parts, html.EscapeString(f.Text))
	}
	if len(parts) == 0 {
		return ""
	}

	textAlign := FooterRight
	switch strings.ToLower(f.Position) {
	case FooterLeft:
		textAlign = FooterLeft
	case FooterCenter:
		textAlign = FooterCenter
	}

	return fmt.Sprintf(`<div style="font-size: 10px; font-family: %s; color: #aaa; width: 100%%; text-align: %s; padding: 0 0.4in;">%s</div>`,
		html.EscapeString(footerFontFamily), textAlign, strings.Join(parts, " - "))
}

func floatPtr(v float64) *float64 {
	return &v
}
