package pipeline

import (
	"errors"
	"fmt"
)

// ErrMalformedStructure indicates a tracked container was closed without
// being opened, or opened and never closed.
var ErrMalformedStructure = errors.New("malformed document structure")

// Region markers injected around non-splitting containers. The classes are
// the contract with the layout rule set: each wrapper class and the shared
// no-break class carry break-inside: avoid.
const (
	TableRegionOpen = `<div class="table-wrapper no-break">`
	CodeRegionOpen  = `<div class="code-wrapper no-break">`
	QuoteRegionOpen = `<div class="blockquote-wrapper no-break">`
	RegionClose     = `</div>`
)

// Region is a container kind that must not be split across pages.
type Region Kind

// OpenMarker returns the markup that opens the region, or "" when k is not
// a tracked kind.
func (r Region) OpenMarker() string {
	switch Kind(r) {
	case KindTable:
		return TableRegionOpen
	case KindCodeBlock:
		return CodeRegionOpen
	case KindBlockQuote:
		return QuoteRegionOpen
	}
	return ""
}

// tracked reports whether k gets a non-splitting region.
func tracked(k Kind) bool {
	return Region(k).OpenMarker() != ""
}

// Annotation is the result of one annotator pass.
type Annotation struct {
	Events []Event

	Regions   int    // balanced marker pairs emitted
	Unmatched int    // close events with no open region of the same kind
	Unclosed  int    // regions still open at end of stream
	Headings  [7]int // heading starts seen per level, index 0 unused
}

// Err returns ErrMalformedStructure when the pass saw unbalanced tracked
// containers, nil otherwise.
func (a Annotation) Err() error {
	if a.Unmatched == 0 && a.Unclosed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d unmatched close, %d unclosed open", ErrMalformedStructure, a.Unmatched, a.Unclosed)
}

// Annotator injects non-splitting region markers into an event stream.
// The zero value is ready to use and holds no state between runs.
type Annotator struct{}

// Annotate runs a pass and returns only the annotated events.
func Annotate(events []Event) []Event {
	return Annotator{}.Run(events).Events
}

// Run makes a single forward pass over events and returns a new slice with
// an open marker immediately before every tracked container start and a close
// marker immediately after its end. Input events are never modified or
// reordered. Open regions are kept on a stack so tracked kinds may nest.
//
// A close event with no open region of its kind still gets a close marker,
// which leaves the markup with an unmatched </div>. That case is counted in
// Unmatched; nothing is synthesized for regions left open at end of stream.
func (Annotator) Run(events []Event) Annotation {
	out := Annotation{Events: make([]Event, 0, len(events)+growth(events))}
	var open []Kind

	for _, ev := range events {
		switch {
		case ev.Phase == PhaseStart && tracked(ev.Kind):
			open = append(open, ev.Kind)
			out.Events = append(out.Events, Raw(Region(ev.Kind).OpenMarker()), ev)

		case ev.Phase == PhaseEnd && tracked(ev.Kind):
			if i := lastIndex(open, ev.Kind); i >= 0 {
				open = append(open[:i], open[i+1:]...)
				out.Regions++
			} else {
				out.Unmatched++
			}
			out.Events = append(out.Events, ev, Raw(RegionClose))

		case ev.IsStart(KindHeading):
			if ev.Level >= 1 && ev.Level <= 6 {
				out.Headings[ev.Level]++
			}
			out.Events = append(out.Events, ev)

		default:
			out.Events = append(out.Events, ev)
		}
	}

	out.Unclosed = len(open)
	return out
}

// growth estimates how many markers a pass will inject.
func growth(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Phase != PhaseLeaf && tracked(ev.Kind) {
			n++
		}
	}
	return n
}

func lastIndex(stack []Kind, k Kind) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == k {
			return i
		}
	}
	return -1
}
