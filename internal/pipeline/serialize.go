package pipeline

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Serializer renders an event stream to HTML body markup.
// Raw markup events, including region markers, are written verbatim.
type Serializer struct {
	highlighter *Highlighter
}

// NewSerializer creates a Serializer. A nil highlighter renders code blocks
// as escaped plain text.
func NewSerializer(h *Highlighter) *Serializer {
	return &Serializer{highlighter: h}
}

// SerializeString renders events and returns the markup.
func (s *Serializer) SerializeString(events []Event) (string, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf, events); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Serialize writes one fragment per event to w, in stream order. Code block
// text and image alt text are the only content held back, until their
// container closes.
func (s *Serializer) Serialize(w io.Writer, events []Event) error {
	st := &serializeState{out: &stickyWriter{w: w}, hl: s.highlighter}
	for _, ev := range events {
		st.event(ev)
		if st.out.err != nil {
			return st.out.err
		}
	}
	return st.out.err
}

// stickyWriter remembers the first write error and drops later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (sw *stickyWriter) put(s string) {
	if sw.err != nil {
		return
	}
	_, sw.err = io.WriteString(sw.w, s)
}

type serializeState struct {
	out *stickyWriter
	hl  *Highlighter

	inCode   bool
	codeLang string
	code     strings.Builder

	imageDepth int
	alt        strings.Builder

	tbody bool
}

func (st *serializeState) write(parts ...string) {
	for _, p := range parts {
		st.out.put(p)
	}
}

func escape(s string) string { return xhtml.EscapeString(s) }

func (st *serializeState) event(ev Event) {
	if st.inCode && ev.Kind == KindText {
		st.code.WriteString(ev.Content)
		return
	}
	if st.imageDepth > 0 && ev.Kind != KindImage {
		if ev.Kind == KindText || ev.Kind == KindCodeSpan {
			st.alt.WriteString(ev.Content)
		}
		return
	}

	start := ev.Phase == PhaseStart
	switch ev.Kind {
	case KindDocument:

	case KindHeading:
		level := strconv.Itoa(clampLevel(ev.Level))
		if !start {
			st.write("</h", level, ">\n")
			return
		}
		st.write("<h", level)
		if ev.ID != "" {
			st.write(` id="`, escape(ev.ID), `"`)
		}
		if ev.Class != "" {
			st.write(` class="`, escape(ev.Class), `"`)
		}
		st.write(">")

	case KindParagraph:
		st.pair(start, "<p>", "</p>\n")

	case KindBlockQuote:
		st.pair(start, "<blockquote>\n", "</blockquote>\n")

	case KindCodeBlock:
		if start {
			st.inCode = true
			st.codeLang = ev.Language
			st.code.Reset()
			return
		}
		st.flushCode()

	case KindList:
		tag := "ul"
		if ev.Ordered {
			tag = "ol"
		}
		if !start {
			st.write("</", tag, ">\n")
			return
		}
		if ev.Ordered && ev.Start > 1 {
			st.write("<ol start=\"", strconv.Itoa(ev.Start), "\">\n")
			return
		}
		st.write("<", tag, ">\n")

	case KindListItem:
		if !start {
			st.write("</li>\n")
			return
		}
		switch {
		case ev.Checked == nil:
			st.write("<li>")
		case *ev.Checked:
			st.write(`<li class="task-list-item"><input type="checkbox" checked="" disabled="" /> `)
		default:
			st.write(`<li class="task-list-item"><input type="checkbox" disabled="" /> `)
		}

	case KindText:
		st.write(escape(ev.Content))

	case KindRawMarkup:
		st.write(ev.Content)

	case KindTable:
		if start {
			st.tbody = false
			st.write("<table>\n")
			return
		}
		if st.tbody {
			st.write("</tbody>\n")
			st.tbody = false
		}
		st.write("</table>\n")

	case KindTableHead:
		st.pair(start, "<thead>\n<tr>\n", "</tr>\n</thead>\n")

	case KindTableRow:
		if start && !st.tbody {
			st.tbody = true
			st.write("<tbody>\n")
		}
		st.pair(start, "<tr>\n", "</tr>\n")

	case KindTableCell:
		tag := "td"
		if ev.Header {
			tag = "th"
		}
		if !start {
			st.write("</", tag, ">\n")
			return
		}
		if align := alignName(ev.Align); align != "" {
			st.write("<", tag, ` style="text-align:`, align, `">`)
			return
		}
		st.write("<", tag, ">")

	case KindEmphasis:
		if ev.Level >= 2 {
			st.pair(start, "<strong>", "</strong>")
		} else {
			st.pair(start, "<em>", "</em>")
		}

	case KindStrikethrough:
		st.pair(start, "<del>", "</del>")

	case KindCodeSpan:
		st.write("<code>", escape(ev.Content), "</code>")

	case KindLink:
		if !start {
			st.write("</a>")
			return
		}
		st.write(`<a href="`, escape(ev.Dest), `"`)
		if ev.Title != "" {
			st.write(` title="`, escape(ev.Title), `"`)
		}
		st.write(">")

	case KindImage:
		st.image(ev)

	case KindThematicBreak:
		st.write("<hr />\n")

	case KindHardBreak:
		st.write("<br />\n")

	case KindSoftBreak:
		st.write("\n")

	case KindFootnoteRef:
		st.write(`<sup id="`, escape(ev.ID), `"><a href="`, escape(ev.Dest),
			`" class="footnote-ref" role="doc-noteref">`, escape(ev.Content), "</a></sup>")

	case KindFootnoteBacklink:
		st.write(`&#160;<a href="`, escape(ev.Dest), `" class="footnote-backref" role="doc-backlink">&#x21a9;&#xfe0e;</a>`)

	case KindFootnoteList:
		st.pair(start, "<div class=\"footnotes\" role=\"doc-endnotes\">\n<hr />\n<ol>\n", "</ol>\n</div>\n")

	case KindFootnote:
		if start {
			st.write(`<li id="`, escape(ev.ID), "\">\n")
		} else {
			st.write("</li>\n")
		}
	}
}

func (st *serializeState) pair(start bool, open, closing string) {
	if start {
		st.write(open)
	} else {
		st.write(closing)
	}
}

// image buffers alt text between the start and end events, since alt is an
// attribute of the single <img> tag.
func (st *serializeState) image(ev Event) {
	if ev.Phase == PhaseStart {
		if st.imageDepth == 0 {
			st.alt.Reset()
			st.write(`<img src="`, escape(ev.Dest), `"`)
			if ev.Title != "" {
				st.write(` title="`, escape(ev.Title), `"`)
			}
		}
		st.imageDepth++
		return
	}
	if st.imageDepth == 0 {
		return
	}
	st.imageDepth--
	if st.imageDepth == 0 {
		st.write(` alt="`, escape(st.alt.String()), `" />`)
	}
}

func (st *serializeState) flushCode() {
	code := st.code.String()
	lang := st.codeLang
	st.inCode = false
	st.code.Reset()

	if lang == "" {
		st.write("<pre><code>", escape(code), "</code></pre>\n")
		return
	}
	class := `"language-` + escape(lang) + `"`

	if st.hl != nil {
		var buf bytes.Buffer
		ok, err := st.hl.Highlight(&buf, lang, code)
		if err == nil && ok {
			st.write(`<pre class="chroma"><code class=`, class, ">", buf.String(), "</code></pre>\n")
			return
		}
	}
	st.write("<pre><code class=", class, ">", escape(code), "</code></pre>\n")
}

func clampLevel(l int) int {
	switch {
	case l < 1:
		return 1
	case l > 6:
		return 6
	}
	return l
}

func alignName(a Alignment) string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}
