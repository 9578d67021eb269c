package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func parseEvents(t *testing.T, markdown string, opts ...SourceOption) []Event {
	t.Helper()

	events, err := NewGoldmarkSource(opts...).Events(context.Background(), markdown)
	if err != nil {
		t.Fatalf("Events() unexpected error: %v", err)
	}
	return events
}

func findEvent(events []Event, match func(Event) bool) (Event, bool) {
	for _, ev := range events {
		if match(ev) {
			return ev, true
		}
	}
	return Event{}, false
}

func countEvents(events []Event, match func(Event) bool) int {
	n := 0
	for _, ev := range events {
		if match(ev) {
			n++
		}
	}
	return n
}

func TestGoldmarkSource_DocumentIsBalanced(t *testing.T) {
	t.Parallel()

	md := "# Title\n\nText\n\n> quote\n\n| a |\n|---|\n| 1 |\n\n```go\nx := 1\n```\n"
	events := parseEvents(t, md)

	if len(events) < 2 || !events[0].IsStart(KindDocument) || !events[len(events)-1].IsEnd(KindDocument) {
		t.Fatalf("stream should be wrapped in document start/end, got %v", events)
	}

	var stack []Kind
	for _, ev := range events {
		switch ev.Phase {
		case PhaseStart:
			stack = append(stack, ev.Kind)
		case PhaseEnd:
			if len(stack) == 0 || stack[len(stack)-1] != ev.Kind {
				t.Fatalf("unbalanced %v with open stack %v", ev, stack)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		t.Errorf("unclosed containers: %v", stack)
	}

	res := Annotator{}.Run(events)
	if res.Regions != 3 {
		t.Errorf("Regions = %d, want 3 (quote, table, code)", res.Regions)
	}
	if err := res.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestGoldmarkSource_Headings(t *testing.T) {
	t.Parallel()

	events := parseEvents(t, "# Getting Started\n\n### Install\n")

	h1, ok := findEvent(events, func(ev Event) bool { return ev.IsStart(KindHeading) && ev.Level == 1 })
	if !ok {
		t.Fatal("no level 1 heading")
	}
	if h1.ID != "getting-started" {
		t.Errorf("h1 ID = %q, want %q", h1.ID, "getting-started")
	}
	if _, ok := findEvent(events, func(ev Event) bool { return ev.IsStart(KindHeading) && ev.Level == 3 }); !ok {
		t.Error("no level 3 heading")
	}
	if _, ok := findEvent(events, func(ev Event) bool { return ev.Kind == KindText && ev.Content == "Install" }); !ok {
		t.Error("heading text missing")
	}
}

func TestGoldmarkSource_HeadingAttributes(t *testing.T) {
	t.Parallel()

	events := parseEvents(t, "# Title {#custom .note}\n")

	h, ok := findEvent(events, func(ev Event) bool { return ev.IsStart(KindHeading) })
	if !ok {
		t.Fatal("no heading")
	}
	if h.ID != "custom" {
		t.Errorf("heading ID = %q, want %q", h.ID, "custom")
	}
	if h.Class != "note" {
		t.Errorf("heading Class = %q, want %q", h.Class, "note")
	}
	if got := joinText(events); got != "Title" {
		t.Errorf("heading text = %q, want %q", got, "Title")
	}
}

func TestGoldmarkSource_Footnotes(t *testing.T) {
	t.Parallel()

	events := parseEvents(t, "Text[^1] and again[^1].\n\n[^1]: Note.\n")

	ref, ok := findEvent(events, func(ev Event) bool { return ev.Kind == KindFootnoteRef })
	if !ok {
		t.Fatal("no footnote reference")
	}
	if ref.ID != "fnref:1" || ref.Dest != "#fn:1" || ref.Content != "1" {
		t.Errorf("first reference = %+v, want ID fnref:1, Dest #fn:1, Content 1", ref)
	}
	if _, ok := findEvent(events, func(ev Event) bool { return ev.Kind == KindFootnoteRef && ev.ID == "fnref1:1" }); !ok {
		t.Error("second reference to the same note should get ID fnref1:1")
	}

	if n := countEvents(events, func(ev Event) bool { return ev.IsStart(KindFootnoteList) }); n != 1 {
		t.Errorf("footnote lists = %d, want 1", n)
	}
	note, ok := findEvent(events, func(ev Event) bool { return ev.IsStart(KindFootnote) })
	if !ok {
		t.Fatal("no footnote")
	}
	if note.ID != "fn:1" {
		t.Errorf("footnote ID = %q, want %q", note.ID, "fn:1")
	}
	if _, ok := findEvent(events, func(ev Event) bool { return ev.Kind == KindFootnoteBacklink && ev.Dest == "#fnref:1" }); !ok {
		t.Error("no backlink to #fnref:1")
	}
	if n := countEvents(events, func(ev Event) bool { return ev.Kind == KindText && ev.Content == "1" }); n != 0 {
		t.Errorf("footnote numbers leaked as text events: %d", n)
	}
}

func TestGoldmarkSource_CodeBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		language string
		code     string
	}{
		{
			name:     "fenced with language",
			markdown: "```go\nfmt.Println(\"hi\")\n```\n",
			language: "go",
			code:     "fmt.Println(\"hi\")\n",
		},
		{
			name:     "fenced without language",
			markdown: "```\n<div class=\"table-wrapper no-break\">\n```\n",
			language: "",
			code:     "<div class=\"table-wrapper no-break\">\n",
		},
		{
			name:     "indented",
			markdown: "para\n\n    indented line\n",
			language: "",
			code:     "indented line\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			events := parseEvents(t, tt.markdown)
			for i, ev := range events {
				if !ev.IsStart(KindCodeBlock) {
					continue
				}
				if ev.Language != tt.language {
					t.Errorf("Language = %q, want %q", ev.Language, tt.language)
				}
				if i+2 >= len(events) {
					t.Fatal("code block truncated")
				}
				if events[i+1] != Text(tt.code) {
					t.Errorf("code text = %v, want %v", events[i+1], Text(tt.code))
				}
				if !events[i+2].IsEnd(KindCodeBlock) {
					t.Errorf("event after code text = %v, want code block end", events[i+2])
				}
				return
			}
			t.Errorf("no code block in %v", events)
		})
	}
}

func TestGoldmarkSource_Table(t *testing.T) {
	t.Parallel()

	events := parseEvents(t, "| left | right |\n|:-----|------:|\n| 1 | 2 |\n")

	if countEvents(events, func(ev Event) bool { return ev.IsStart(KindTable) }) != 1 {
		t.Fatal("want exactly one table")
	}
	if countEvents(events, func(ev Event) bool { return ev.IsStart(KindTableHead) }) != 1 {
		t.Error("want one table head")
	}
	if countEvents(events, func(ev Event) bool { return ev.IsStart(KindTableRow) }) != 1 {
		t.Error("want one body row")
	}

	headers := countEvents(events, func(ev Event) bool { return ev.IsStart(KindTableCell) && ev.Header })
	if headers != 2 {
		t.Errorf("header cells = %d, want 2", headers)
	}
	if countEvents(events, func(ev Event) bool { return ev.IsStart(KindTableCell) && ev.Align == AlignLeft }) != 2 {
		t.Error("left column should be left aligned in head and body")
	}
	if countEvents(events, func(ev Event) bool { return ev.IsStart(KindTableCell) && ev.Align == AlignRight }) != 2 {
		t.Error("right column should be right aligned in head and body")
	}
}

func TestGoldmarkSource_Lists(t *testing.T) {
	t.Parallel()

	t.Run("ordered start", func(t *testing.T) {
		t.Parallel()

		events := parseEvents(t, "3. three\n4. four\n")
		list, ok := findEvent(events, func(ev Event) bool { return ev.IsStart(KindList) })
		if !ok {
			t.Fatal("no list")
		}
		if !list.Ordered || list.Start != 3 {
			t.Errorf("list Ordered=%v Start=%d, want true 3", list.Ordered, list.Start)
		}
		if n := countEvents(events, func(ev Event) bool { return ev.IsStart(KindListItem) }); n != 2 {
			t.Errorf("list items = %d, want 2", n)
		}
	})

	t.Run("task items", func(t *testing.T) {
		t.Parallel()

		events := parseEvents(t, "- [x] done\n- [ ] todo\n- plain\n")
		var states []string
		for _, ev := range events {
			if !ev.IsStart(KindListItem) {
				continue
			}
			switch {
			case ev.Checked == nil:
				states = append(states, "plain")
			case *ev.Checked:
				states = append(states, "checked")
			default:
				states = append(states, "unchecked")
			}
		}
		want := []string{"checked", "unchecked", "plain"}
		if len(states) != len(want) {
			t.Fatalf("states = %v, want %v", states, want)
		}
		for i := range want {
			if states[i] != want[i] {
				t.Errorf("item %d = %s, want %s", i, states[i], want[i])
			}
		}
	})
}

func TestGoldmarkSource_RawHTML(t *testing.T) {
	t.Parallel()

	md := "<aside>note</aside>\n"

	t.Run("omitted by default", func(t *testing.T) {
		t.Parallel()

		events := parseEvents(t, md)
		if _, ok := findEvent(events, func(ev Event) bool { return ev == Raw(rawHTMLOmitted) }); !ok {
			t.Errorf("want omitted-HTML comment, got %v", events)
		}
		if _, ok := findEvent(events, func(ev Event) bool { return ev.Kind == KindRawMarkup && ev.Content == md }); ok {
			t.Error("raw HTML should not pass through by default")
		}
	})

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()

		events := parseEvents(t, md, WithRawHTML(true))
		if _, ok := findEvent(events, func(ev Event) bool { return ev == Raw(md) }); !ok {
			t.Errorf("want raw HTML block, got %v", events)
		}
	})
}

func TestGoldmarkSource_Inline(t *testing.T) {
	t.Parallel()

	events := parseEvents(t, "A **bold** ~~gone~~ `code` [link](doc.md \"T\") ![alt](img.png) https://example.com\n")

	tests := []struct {
		name  string
		match func(Event) bool
	}{
		{"strong", func(ev Event) bool { return ev.IsStart(KindEmphasis) && ev.Level == 2 }},
		{"strikethrough", func(ev Event) bool { return ev.IsStart(KindStrikethrough) }},
		{"code span", func(ev Event) bool { return ev.Kind == KindCodeSpan && ev.Content == "code" }},
		{"link", func(ev Event) bool { return ev.IsStart(KindLink) && ev.Dest == "doc.md" && ev.Title == "T" }},
		{"image", func(ev Event) bool { return ev.IsStart(KindImage) && ev.Dest == "img.png" }},
		{"image alt", func(ev Event) bool { return ev == Text("alt") }},
		{"autolink", func(ev Event) bool { return ev.IsStart(KindLink) && ev.Dest == "https://example.com" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, ok := findEvent(events, tt.match); !ok {
				t.Errorf("no %s event in %v", tt.name, events)
			}
		})
	}
}

func joinText(events []Event) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Kind == KindText {
			b.WriteString(ev.Content)
		}
	}
	return b.String()
}

func TestGoldmarkSource_ResolvesEscapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"backslash escapes", `\*not emphasis\*`, "*not emphasis*"},
		{"named entities", "AT&amp;T &copy; 2024", "AT&T \u00a9 2024"},
		{"numeric references", "&#169; &#x41;", "\u00a9 A"},
		{"escaped ampersand", `\&copy;`, "&copy;"},
		{"bare ampersand", "a & b", "a & b"},
		{"unknown entity", "&bogus;", "&bogus;"},
		{"backslash before letter", `a\b`, `a\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := joinText(parseEvents(t, tt.input)); got != tt.expected {
				t.Errorf("text of %q = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGoldmarkSource_EscapedTablePipe(t *testing.T) {
	t.Parallel()

	got := joinText(parseEvents(t, "| h |\n|---|\n| x \\| y |\n"))
	if !strings.Contains(got, "x | y") || strings.Contains(got, `\`) {
		t.Errorf("table text = %q, want escaped pipe resolved to %q", got, "x | y")
	}
}

func TestGoldmarkSource_CodeSpanKeepsEscapes(t *testing.T) {
	t.Parallel()

	events := parseEvents(t, "`a \\* &amp;`\n")
	if _, ok := findEvent(events, func(ev Event) bool { return ev.Kind == KindCodeSpan && ev.Content == `a \* &amp;` }); !ok {
		t.Errorf("code span content changed: %v", events)
	}
}

func TestGoldmarkSource_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkSource().Events(ctx, "# Title\n")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Events() error = %v, want context.Canceled", err)
	}
}
