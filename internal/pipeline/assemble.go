package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// ErrTemplate indicates a document shell that cannot be parsed or executed.
var ErrTemplate = errors.New("document template error")

// Document is everything the shell needs. CSS fields are written into a
// single <style> element in field order: page geometry, theme, highlight
// classes, pagination rules, then caller CSS, so later sections win ties.
type Document struct {
	Title        string
	Lang         string
	Generator    string
	RulesVersion string

	PageCSS      string
	ThemeCSS     string
	HighlightCSS string
	RulesCSS     string
	ExtraCSS     string

	Body string
}

// shellData is what the template sees.
type shellData struct {
	Title        string
	Lang         string
	Generator    string
	RulesVersion string
	CSS          template.CSS
	Body         template.HTML
}

// Assembler renders documents into a parsed HTML shell. Safe for concurrent
// use.
type Assembler struct {
	shell *template.Template
}

// NewAssembler parses shell as an html/template.
func NewAssembler(shell string) (*Assembler, error) {
	tmpl, err := template.New("document").Parse(shell)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return &Assembler{shell: tmpl}, nil
}

// Assemble returns the complete HTML document. The body is inserted verbatim;
// title and metadata are escaped.
func (a *Assembler) Assemble(doc Document) (string, error) {
	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}
	data := shellData{
		Title:        doc.Title,
		Lang:         lang,
		Generator:    doc.Generator,
		RulesVersion: doc.RulesVersion,
		CSS:          template.CSS(joinCSS(doc.PageCSS, doc.ThemeCSS, doc.HighlightCSS, doc.RulesCSS, doc.ExtraCSS)), // #nosec G203 -- sanitized by joinCSS
		Body:         template.HTML(doc.Body),                                                                     // #nosec G203 -- serializer output
	}

	var buf bytes.Buffer
	if err := a.shell.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return buf.String(), nil
}

func joinCSS(sections ...string) string {
	var sb strings.Builder
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sanitizeCSS(s))
	}
	return sb.String()
}

// sanitizeCSS escapes "</" so no stylesheet can close the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// PageCSS returns the @page rule matching the print geometry. Values are in
// inches.
func PageCSS(width, height, top, right, bottom, left float64) string {
	return fmt.Sprintf("@page {\n  size: %sin %sin;\n  margin: %sin %sin %sin %sin;\n}",
		inches(width), inches(height), inches(top), inches(right), inches(bottom), inches(left))
}

func inches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
