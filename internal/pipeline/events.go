package pipeline

import (
	"fmt"
	"strconv"
)

// Kind identifies the structural element an Event describes.
type Kind int

// Event kinds. Container kinds appear as a Start/End pair, leaf kinds once.
const (
	KindDocument Kind = iota
	KindHeading
	KindTable
	KindCodeBlock
	KindBlockQuote
	KindParagraph
	KindListItem
	KindText
	KindRawMarkup

	// Kinds below are produced by the goldmark source so real documents can
	// be serialized. The annotator passes them through untouched.
	KindList
	KindTableHead
	KindTableRow
	KindTableCell
	KindEmphasis
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindImage
	KindThematicBreak
	KindHardBreak
	KindSoftBreak
	KindFootnoteRef
	KindFootnoteBacklink
	KindFootnoteList
	KindFootnote
)

var kindNames = [...]string{
	KindDocument:      "document",
	KindHeading:       "heading",
	KindTable:         "table",
	KindCodeBlock:     "code-block",
	KindBlockQuote:    "block-quote",
	KindParagraph:     "paragraph",
	KindListItem:      "list-item",
	KindText:          "text",
	KindRawMarkup:     "raw",
	KindList:          "list",
	KindTableHead:     "table-head",
	KindTableRow:      "table-row",
	KindTableCell:     "table-cell",
	KindEmphasis:      "emphasis",
	KindStrikethrough: "strikethrough",
	KindCodeSpan:      "code-span",
	KindLink:          "link",
	KindImage:         "image",
	KindThematicBreak: "thematic-break",
	KindHardBreak:     "hard-break",
	KindSoftBreak:     "soft-break",

	KindFootnoteRef:      "footnote-ref",
	KindFootnoteBacklink: "footnote-backlink",
	KindFootnoteList:     "footnote-list",
	KindFootnote:         "footnote",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Phase tells whether an event opens a container, closes it, or is a leaf.
type Phase uint8

const (
	PhaseLeaf Phase = iota
	PhaseStart
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseEnd:
		return "end"
	default:
		return "leaf"
	}
}

// Alignment of a table cell.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Event is one structural unit of a parsed document. Which fields are
// meaningful depends on Kind; the rest stay zero.
type Event struct {
	Kind  Kind
	Phase Phase

	Level    int       // heading level 1..6, emphasis level 1..2
	Language string    // code block info string, empty when absent
	Checked  *bool     // task list item state, nil for plain items
	Ordered  bool      // ordered list
	Start    int       // first number of an ordered list
	Content  string    // text, raw markup, code span content or footnote number
	Dest     string    // link, image or footnote link destination
	Title    string    // link or image title
	ID       string    // heading, footnote or footnote reference anchor
	Class    string    // heading class attribute
	Align    Alignment // table cell alignment
	Header   bool      // table cell belongs to the header row
}

// IsStart reports whether e opens a container of kind k.
func (e Event) IsStart(k Kind) bool { return e.Kind == k && e.Phase == PhaseStart }

// IsEnd reports whether e closes a container of kind k.
func (e Event) IsEnd(k Kind) bool { return e.Kind == k && e.Phase == PhaseEnd }

func (e Event) String() string {
	switch e.Phase {
	case PhaseLeaf:
		if e.Kind == KindText || e.Kind == KindRawMarkup || e.Kind == KindCodeSpan {
			return fmt.Sprintf("%s(%q)", e.Kind, e.Content)
		}
		return e.Kind.String()
	default:
		if e.Kind == KindHeading {
			return fmt.Sprintf("%s%d{%s}", e.Kind, e.Level, e.Phase)
		}
		return fmt.Sprintf("%s{%s}", e.Kind, e.Phase)
	}
}

// Constructors used by tests and by callers building streams by hand.

func DocumentStart() Event { return Event{Kind: KindDocument, Phase: PhaseStart} }
func DocumentEnd() Event   { return Event{Kind: KindDocument, Phase: PhaseEnd} }

func HeadingStart(level int) Event { return Event{Kind: KindHeading, Phase: PhaseStart, Level: level} }
func HeadingEnd(level int) Event   { return Event{Kind: KindHeading, Phase: PhaseEnd, Level: level} }

func TableStart() Event { return Event{Kind: KindTable, Phase: PhaseStart} }
func TableEnd() Event   { return Event{Kind: KindTable, Phase: PhaseEnd} }

func CodeBlockStart(language string) Event {
	return Event{Kind: KindCodeBlock, Phase: PhaseStart, Language: language}
}
func CodeBlockEnd() Event { return Event{Kind: KindCodeBlock, Phase: PhaseEnd} }

func BlockQuoteStart() Event { return Event{Kind: KindBlockQuote, Phase: PhaseStart} }
func BlockQuoteEnd() Event   { return Event{Kind: KindBlockQuote, Phase: PhaseEnd} }

func ParagraphStart() Event { return Event{Kind: KindParagraph, Phase: PhaseStart} }
func ParagraphEnd() Event   { return Event{Kind: KindParagraph, Phase: PhaseEnd} }

func ListItemStart(checked *bool) Event {
	return Event{Kind: KindListItem, Phase: PhaseStart, Checked: checked}
}
func ListItemEnd() Event { return Event{Kind: KindListItem, Phase: PhaseEnd} }

func Text(s string) Event { return Event{Kind: KindText, Content: s} }
func Raw(s string) Event  { return Event{Kind: KindRawMarkup, Content: s} }
