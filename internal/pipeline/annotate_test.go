package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-pagekeep/layout"
)

// isMarker reports whether ev was injected by the annotator.
func isMarker(ev Event) bool {
	if ev.Kind != KindRawMarkup {
		return false
	}
	switch ev.Content {
	case TableRegionOpen, CodeRegionOpen, QuoteRegionOpen, RegionClose:
		return true
	}
	return false
}

func withoutMarkers(events []Event) []Event {
	out := []Event{}
	for _, ev := range events {
		if !isMarker(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

// sampleStreams are well-formed streams exercising every tracked kind.
var sampleStreams = map[string][]Event{
	"empty": {},
	"paragraph only": {
		DocumentStart(),
		ParagraphStart(), Text("hello"), ParagraphEnd(),
		DocumentEnd(),
	},
	"table": {
		TableStart(), Text("a"), TableEnd(),
	},
	"every tracked kind": {
		DocumentStart(),
		HeadingStart(1), Text("Title"), HeadingEnd(1),
		ParagraphStart(), Text("intro"), ParagraphEnd(),
		TableStart(), Text("cell"), TableEnd(),
		CodeBlockStart("go"), Text("fmt.Println()\n"), CodeBlockEnd(),
		BlockQuoteStart(), ParagraphStart(), Text("quoted"), ParagraphEnd(), BlockQuoteEnd(),
		ListItemStart(boolPtr(true)), Text("done"), ListItemEnd(),
		DocumentEnd(),
	},
	"table inside block quote": {
		BlockQuoteStart(),
		TableStart(), Text("x"), TableEnd(),
		BlockQuoteEnd(),
	},
	"consecutive code blocks": {
		CodeBlockStart(""), Text("one"), CodeBlockEnd(),
		CodeBlockStart("sh"), Text("two"), CodeBlockEnd(),
	},
	"raw markup in input": {
		Raw("<section>"), ParagraphStart(), Text("p"), ParagraphEnd(), Raw("</section>"),
	},
}

func TestAnnotate_ProjectionEqualsInput(t *testing.T) {
	t.Parallel()

	for name, in := range sampleStreams {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := withoutMarkers(Annotate(in))
			want := append([]Event{}, in...)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("projection = %v, want %v", got, want)
			}
		})
	}
}

func TestAnnotate_LengthGrowsByTwoPerPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pairs int
	}{
		{"empty", 0},
		{"paragraph only", 0},
		{"table", 1},
		{"every tracked kind", 3},
		{"table inside block quote", 2},
		{"consecutive code blocks", 2},
		{"raw markup in input", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := sampleStreams[tt.name]
			res := Annotator{}.Run(in)
			if len(res.Events) != len(in)+2*tt.pairs {
				t.Errorf("len(out) = %d, want %d", len(res.Events), len(in)+2*tt.pairs)
			}
			if res.Regions != tt.pairs {
				t.Errorf("Regions = %d, want %d", res.Regions, tt.pairs)
			}
			if err := res.Err(); err != nil {
				t.Errorf("Err() = %v, want nil", err)
			}
		})
	}
}

func TestAnnotate_MarkersBracketContainers(t *testing.T) {
	t.Parallel()

	openFor := map[Kind]string{
		KindTable:      TableRegionOpen,
		KindCodeBlock:  CodeRegionOpen,
		KindBlockQuote: QuoteRegionOpen,
	}

	for name, in := range sampleStreams {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := Annotate(in)
			for i, ev := range out {
				open, ok := openFor[ev.Kind]
				if !ok || ev.Phase == PhaseLeaf {
					continue
				}
				if ev.Phase == PhaseStart {
					if i == 0 || out[i-1] != Raw(open) {
						t.Errorf("event %d %v not immediately preceded by %q", i, ev, open)
					}
					continue
				}
				if i+1 >= len(out) || out[i+1] != Raw(RegionClose) {
					t.Errorf("event %d %v not immediately followed by %q", i, ev, RegionClose)
				}
			}
		})
	}
}

func TestAnnotate_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range [][]Event{nil, {}} {
		got := Annotate(in)
		if got == nil || len(got) != 0 {
			t.Errorf("Annotate(%v) = %#v, want empty non-nil slice", in, got)
		}
	}
}

func TestAnnotate_TableExample(t *testing.T) {
	t.Parallel()

	in := []Event{TableStart(), Text("a"), TableEnd()}
	want := []Event{
		Raw(TableRegionOpen),
		TableStart(),
		Text("a"),
		TableEnd(),
		Raw(RegionClose),
	}

	got := Annotate(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Annotate() = %v, want %v", got, want)
	}
}

func TestAnnotate_TextPassesThroughByteForByte(t *testing.T) {
	t.Parallel()

	tricky := []string{
		TableRegionOpen,
		RegionClose,
		`<div class="code-wrapper no-break"></div>`,
		"```\n</div>\n```",
		"\x00\xff not utf-8 ",
	}

	for _, s := range tricky {
		in := []Event{CodeBlockStart("html"), Text(s), CodeBlockEnd()}
		out := Annotate(in)
		if len(out) != 5 {
			t.Fatalf("Annotate() returned %d events, want 5", len(out))
		}
		if out[2].Kind != KindText || out[2].Content != s {
			t.Errorf("text event = %v, want Text(%q) unchanged", out[2], s)
		}
	}
}

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []Event{TableStart(), Text("a"), TableEnd()}
	snapshot := append([]Event{}, in...)

	_ = Annotate(in)

	if !reflect.DeepEqual(in, snapshot) {
		t.Errorf("input modified: %v, want %v", in, snapshot)
	}
}

func TestAnnotate_NestedRegions(t *testing.T) {
	t.Parallel()

	in := sampleStreams["table inside block quote"]
	want := []Event{
		Raw(QuoteRegionOpen), BlockQuoteStart(),
		Raw(TableRegionOpen), TableStart(), Text("x"), TableEnd(), Raw(RegionClose),
		BlockQuoteEnd(), Raw(RegionClose),
	}

	res := Annotator{}.Run(in)
	if !reflect.DeepEqual(res.Events, want) {
		t.Errorf("Run() = %v, want %v", res.Events, want)
	}
	if res.Regions != 2 || res.Unmatched != 0 || res.Unclosed != 0 {
		t.Errorf("Regions/Unmatched/Unclosed = %d/%d/%d, want 2/0/0", res.Regions, res.Unmatched, res.Unclosed)
	}
}

func TestAnnotate_MalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        []Event
		want      []Event
		unmatched int
		unclosed  int
	}{
		{
			name: "close without open",
			in:   []Event{Text("a"), TableEnd()},
			want: []Event{Text("a"), TableEnd(), Raw(RegionClose)},

			unmatched: 1,
		},
		{
			name: "open without close",
			in:   []Event{CodeBlockStart("go"), Text("x")},
			want: []Event{Raw(CodeRegionOpen), CodeBlockStart("go"), Text("x")},

			unclosed: 1,
		},
		{
			name: "mismatched kinds",
			in:   []Event{TableStart(), BlockQuoteEnd(), TableEnd()},
			want: []Event{
				Raw(TableRegionOpen), TableStart(),
				BlockQuoteEnd(), Raw(RegionClose),
				TableEnd(), Raw(RegionClose),
			},
			unmatched: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Annotator{}.Run(tt.in)
			if !reflect.DeepEqual(res.Events, tt.want) {
				t.Errorf("Run() = %v, want %v", res.Events, tt.want)
			}
			if res.Unmatched != tt.unmatched {
				t.Errorf("Unmatched = %d, want %d", res.Unmatched, tt.unmatched)
			}
			if res.Unclosed != tt.unclosed {
				t.Errorf("Unclosed = %d, want %d", res.Unclosed, tt.unclosed)
			}
			if !errors.Is(res.Err(), ErrMalformedStructure) {
				t.Errorf("Err() = %v, want ErrMalformedStructure", res.Err())
			}
		})
	}
}

func TestAnnotate_CountsHeadings(t *testing.T) {
	t.Parallel()

	in := []Event{
		HeadingStart(1), Text("a"), HeadingEnd(1),
		HeadingStart(2), Text("b"), HeadingEnd(2),
		HeadingStart(2), Text("c"), HeadingEnd(2),
		HeadingStart(9), Text("out of range"), HeadingEnd(9),
	}

	res := Annotator{}.Run(in)
	want := [7]int{0, 1, 2, 0, 0, 0, 0}
	if res.Headings != want {
		t.Errorf("Headings = %v, want %v", res.Headings, want)
	}
	if !reflect.DeepEqual(res.Events, in) {
		t.Error("headings should pass through unchanged")
	}
}

func TestRegionMarkersCarryLayoutClasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		marker string
		class  string
	}{
		{TableRegionOpen, layout.TableRegionClass},
		{CodeRegionOpen, layout.CodeRegionClass},
		{QuoteRegionOpen, layout.QuoteRegionClass},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			t.Parallel()

			want := `class="` + tt.class + " " + layout.NoBreakClass + `"`
			if !strings.Contains(tt.marker, want) {
				t.Errorf("marker %q should carry %s", tt.marker, want)
			}
			if got := layout.Default().Behaviors("." + tt.class); len(got) == 0 || got[0] != layout.AvoidSplit {
				t.Errorf("default rules for .%s = %v, want avoid-break-inside", tt.class, got)
			}
		})
	}
}

func TestRegion_OpenMarker(t *testing.T) {
	t.Parallel()

	if got := Region(KindParagraph).OpenMarker(); got != "" {
		t.Errorf("Region(KindParagraph).OpenMarker() = %q, want empty", got)
	}
	if got := Region(KindTable).OpenMarker(); got != TableRegionOpen {
		t.Errorf("Region(KindTable).OpenMarker() = %q, want %q", got, TableRegionOpen)
	}
}
