package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// Highlighter renders code block contents as class-annotated spans.
// Safe for concurrent use: chroma lexers and formatters are stateless.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlighter creates a Highlighter for the named chroma style.
// Unknown names fall back to chroma's default style.
func NewHighlighter(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultHighlightStyle
	}
	return &Highlighter{
		style: styles.Get(styleName),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Highlight writes highlighted code to w. It returns false without writing
// anything when no lexer is registered for language.
func (h *Highlighter) Highlight(w io.Writer, language, code string) (bool, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return false, nil
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return false, fmt.Errorf("tokenising %s code: %w", language, err)
	}
	if err := h.formatter.Format(w, h.style, it); err != nil {
		return false, fmt.Errorf("formatting %s code: %w", language, err)
	}
	return true, nil
}

// CSS returns the stylesheet for the classes Highlight emits.
func (h *Highlighter) CSS() string {
	var sb strings.Builder
	if err := h.formatter.WriteCSS(&sb, h.style); err != nil {
		return ""
	}
	return sb.String()
}
