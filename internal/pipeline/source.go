package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrParse indicates the markdown could not be turned into events.
var ErrParse = errors.New("markdown parsing failed")

// rawHTMLOmitted replaces raw HTML when it is not allowed, matching
// goldmark's own renderer.
const rawHTMLOmitted = "<!-- raw HTML omitted -->"

// EventSource produces the structural event stream for a markdown document.
type EventSource interface {
	Events(ctx context.Context, markdown string) ([]Event, error)
}

// GoldmarkSource parses markdown with goldmark and flattens the AST into
// start/end events.
type GoldmarkSource struct {
	md      goldmark.Markdown
	rawHTML bool
}

// SourceOption configures a GoldmarkSource.
type SourceOption func(*GoldmarkSource)

// WithRawHTML passes inline and block HTML through as raw markup instead of
// replacing it with a comment.
func WithRawHTML(allow bool) SourceOption {
	return func(s *GoldmarkSource) { s.rawHTML = allow }
}

// NewGoldmarkSource creates a source with GFM tables, strikethrough, task
// lists, autolinks, footnotes, smart punctuation, automatic heading IDs and
// {#id .class} heading attributes.
func NewGoldmarkSource(opts ...SourceOption) *GoldmarkSource {
	s := &GoldmarkSource{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithAttribute(),
			),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events parses markdown and returns its event stream.
// Goldmark has no context support, so parsing runs in a goroutine and the
// call returns early if ctx is done.
func (s *GoldmarkSource) Events(ctx context.Context, markdown string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		events []Event
		err    error
	}
	done := make(chan result, 1)

	go func() {
		src := []byte(markdown)
		doc := s.md.Parser().Parse(text.NewReader(src))
		w := &walker{src: src, rawHTML: s.rawHTML}
		if err := ast.Walk(doc, w.visit); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrParse, err)}
			return
		}
		done <- result{events: w.events}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.events, r.err
	}
}

// walker accumulates events during ast.Walk.
type walker struct {
	src     []byte
	rawHTML bool
	events  []Event
}

func (w *walker) emit(ev Event) { w.events = append(w.events, ev) }

func phase(entering bool) Phase {
	if entering {
		return PhaseStart
	}
	return PhaseEnd
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	p := phase(entering)

	switch node := n.(type) {
	case *ast.Document:
		w.emit(Event{Kind: KindDocument, Phase: p})

	case *ast.Heading:
		ev := Event{Kind: KindHeading, Phase: p, Level: node.Level}
		if entering {
			ev.ID = attributeString(node, "id")
			ev.Class = attributeString(node, "class")
		}
		w.emit(ev)

	case *ast.Paragraph:
		w.emit(Event{Kind: KindParagraph, Phase: p})

	case *ast.TextBlock:
		// Tight list item content: no paragraph of its own.

	case *ast.Blockquote:
		w.emit(Event{Kind: KindBlockQuote, Phase: p})

	case *ast.FencedCodeBlock:
		if entering {
			w.emit(CodeBlockStart(string(node.Language(w.src))))
			w.emit(Text(w.lines(node.Lines())))
		} else {
			w.emit(CodeBlockEnd())
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			w.emit(CodeBlockStart(""))
			w.emit(Text(w.lines(node.Lines())))
		} else {
			w.emit(CodeBlockEnd())
		}
		return ast.WalkSkipChildren, nil

	case *ast.List:
		w.emit(Event{Kind: KindList, Phase: p, Ordered: node.IsOrdered(), Start: node.Start})

	case *ast.ListItem:
		ev := Event{Kind: KindListItem, Phase: p}
		if entering {
			ev.Checked = taskState(node)
		}
		w.emit(ev)

	case *east.TaskCheckBox:
		// Carried by the enclosing list item's Checked field.

	case *ast.ThematicBreak:
		if entering {
			w.emit(Event{Kind: KindThematicBreak})
		}

	case *ast.HTMLBlock:
		if entering {
			w.emitHTML(w.htmlBlock(node))
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			var buf bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				buf.Write(seg.Value(w.src))
			}
			w.emitHTML(buf.String())
		}
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			w.emit(Text(w.textValue(node)))
			switch {
			case node.HardLineBreak():
				w.emit(Event{Kind: KindHardBreak})
			case node.SoftLineBreak():
				w.emit(Event{Kind: KindSoftBreak})
			}
		}

	case *ast.String:
		if entering {
			if node.IsCode() {
				w.emit(Raw(string(node.Value)))
			} else {
				w.emit(Text(string(node.Value)))
			}
		}

	case *ast.CodeSpan:
		if entering {
			w.emit(Event{Kind: KindCodeSpan, Content: w.inlineText(node)})
		}
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		w.emit(Event{Kind: KindEmphasis, Phase: p, Level: node.Level})

	case *ast.Link:
		w.emit(Event{Kind: KindLink, Phase: p, Dest: string(node.Destination), Title: string(node.Title)})

	case *ast.Image:
		w.emit(Event{Kind: KindImage, Phase: p, Dest: string(node.Destination), Title: string(node.Title)})

	case *ast.AutoLink:
		if entering {
			url := string(node.URL(w.src))
			if node.AutoLinkType == ast.AutoLinkEmail {
				url = "mailto:" + url
			}
			w.emit(Event{Kind: KindLink, Phase: PhaseStart, Dest: url})
			w.emit(Text(string(node.Label(w.src))))
			w.emit(Event{Kind: KindLink, Phase: PhaseEnd})
		}
		return ast.WalkSkipChildren, nil

	case *east.Table:
		w.emit(Event{Kind: KindTable, Phase: p})

	case *east.TableHeader:
		w.emit(Event{Kind: KindTableHead, Phase: p})

	case *east.TableRow:
		w.emit(Event{Kind: KindTableRow, Phase: p})

	case *east.TableCell:
		_, header := node.Parent().(*east.TableHeader)
		w.emit(Event{Kind: KindTableCell, Phase: p, Align: cellAlign(node.Alignment), Header: header})

	case *east.Strikethrough:
		w.emit(Event{Kind: KindStrikethrough, Phase: p})

	case *east.FootnoteLink:
		if entering {
			n := strconv.Itoa(node.Index)
			w.emit(Event{Kind: KindFootnoteRef, ID: footnoteRefID(node.Index, node.RefIndex), Dest: "#fn:" + n, Content: n})
		}
		return ast.WalkSkipChildren, nil

	case *east.FootnoteBacklink:
		if entering {
			w.emit(Event{Kind: KindFootnoteBacklink, Dest: "#" + footnoteRefID(node.Index, node.RefIndex)})
		}
		return ast.WalkSkipChildren, nil

	case *east.FootnoteList:
		w.emit(Event{Kind: KindFootnoteList, Phase: p})

	case *east.Footnote:
		w.emit(Event{Kind: KindFootnote, Phase: p, ID: "fn:" + strconv.Itoa(node.Index)})
	}

	return ast.WalkContinue, nil
}

func (w *walker) emitHTML(s string) {
	if !w.rawHTML {
		s = rawHTMLOmitted
	}
	w.emit(Raw(s))
}

func (w *walker) lines(lines *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(w.src))
	}
	return buf.String()
}

func (w *walker) htmlBlock(n *ast.HTMLBlock) string {
	s := w.lines(n.Lines())
	if n.HasClosure() {
		s += string(n.ClosureLine.Value(w.src))
	}
	return s
}

func (w *walker) inlineText(n ast.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.WriteString(w.textValue(t))
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	return buf.String()
}

// textValue returns the literal text of a node. Backslash escapes and
// entity references are resolved unless the node is raw, as in code spans.
func (w *walker) textValue(n *ast.Text) string {
	v := n.Segment.Value(w.src)
	if n.IsRaw() {
		return string(v)
	}
	return resolveReferences(v)
}

// resolveReferences drops the backslash of escaped ASCII punctuation and
// replaces entity and numeric character references with their characters.
// An escaped ampersand never starts a reference.
func resolveReferences(b []byte) string {
	if bytes.IndexByte(b, '\\') < 0 && bytes.IndexByte(b, '&') < 0 {
		return string(b)
	}
	var out bytes.Buffer
	out.Grow(len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '\\' && i+1 < len(b) && util.IsPunct(b[i+1]):
			out.WriteByte(b[i+1])
			i += 2
			continue
		case c == '&':
			if end := bytes.IndexByte(b[i:], ';'); end > 1 {
				ref := b[i : i+end+1]
				if r := util.ResolveNumericReferences(util.ResolveEntityNames(ref)); !bytes.Equal(r, ref) {
					out.Write(r)
					i += end + 1
					continue
				}
			}
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

// attributeString returns a string attribute of n, or "".
func attributeString(n ast.Node, name string) string {
	v, ok := n.AttributeString(name)
	if !ok {
		return ""
	}
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return ""
}

// footnoteRefID names the anchor of the refIndex-th reference to footnote
// index, using goldmark's scheme: fnref:1, fnref1:1, fnref2:1...
func footnoteRefID(index, refIndex int) string {
	prefix := "fnref"
	if refIndex > 0 {
		prefix += strconv.Itoa(refIndex)
	}
	return prefix + ":" + strconv.Itoa(index)
}

// taskState returns the checkbox state of a GFM task list item, or nil.
func taskState(item *ast.ListItem) *bool {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
		checked := box.IsChecked
		return &checked
	}
	return nil
}

func cellAlign(a east.Alignment) Alignment {
	switch a {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	}
	return AlignNone
}
