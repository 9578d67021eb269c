package pipeline

import (
	"strconv"

	"github.com/alnah/go-pagekeep/layout"
)

var markerClasses = map[string][]string{
	TableRegionOpen: {layout.TableRegionClass, layout.NoBreakClass},
	CodeRegionOpen:  {layout.CodeRegionClass, layout.NoBreakClass},
	QuoteRegionOpen: {layout.QuoteRegionClass, layout.NoBreakClass},
}

// Blocks returns the block-level elements an annotated stream renders to, in
// document order, with each element linked to its preceding sibling. Region
// markers count as div elements. Inline content and table internals are
// skipped. A raw "</div>" only closes a level while a region marker is open,
// so trusted raw HTML outside regions does not shift the nesting.
func Blocks(events []Event) []*layout.Element {
	var out []*layout.Element
	// last holds, per open nesting level, the most recent element.
	last := []*layout.Element{nil}

	open := func(tag string, classes []string) {
		el := &layout.Element{Tag: tag, Classes: classes, Previous: last[len(last)-1]}
		last[len(last)-1] = el
		out = append(out, el)
		last = append(last, nil)
	}
	closeLevel := func() {
		if len(last) > 1 {
			last = last[:len(last)-1]
		}
	}

	markers := 0
	for _, ev := range events {
		if ev.Kind == KindRawMarkup {
			if classes, ok := markerClasses[ev.Content]; ok {
				open("div", classes)
				markers++
			} else if ev.Content == RegionClose && markers > 0 {
				closeLevel()
				markers--
			}
			continue
		}
		if ev.Kind == KindThematicBreak {
			open("hr", nil)
			closeLevel()
			continue
		}
		tag := blockTag(ev)
		if tag == "" {
			continue
		}
		switch ev.Phase {
		case PhaseStart:
			open(tag, nil)
		case PhaseEnd:
			closeLevel()
		}
	}
	return out
}

func blockTag(ev Event) string {
	switch ev.Kind {
	case KindHeading:
		return "h" + strconv.Itoa(clampLevel(ev.Level))
	case KindParagraph:
		return "p"
	case KindTable:
		return "table"
	case KindCodeBlock:
		return "pre"
	case KindBlockQuote:
		return "blockquote"
	case KindList:
		if ev.Ordered {
			return "ol"
		}
		return "ul"
	case KindListItem:
		return "li"
	}
	return ""
}
