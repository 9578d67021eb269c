package layout

import (
	"slices"
	"strings"
)

// Element describes a rendered block for selector matching. Previous is the
// preceding sibling at the same nesting level, or nil.
type Element struct {
	Tag      string
	Classes  []string
	Previous *Element
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool {
	return slices.Contains(e.Classes, c)
}

// Match returns the behaviors of every rule with a selector matching el, in
// rule order, without duplicates. Only type, class, universal and adjacent
// sibling (A + B) selectors take part; other selectors still reach the
// rendered CSS but never match here.
func (rs *RuleSet) Match(el *Element) []Behavior {
	if el == nil {
		return nil
	}
	var out []Behavior
	for i, sels := range rs.parsed {
		if !slices.ContainsFunc(sels, func(s selector) bool { return s.matches(el) }) {
			continue
		}
		for _, b := range rs.rules[i].Behaviors {
			if !slices.Contains(out, b) {
				out = append(out, b)
			}
		}
	}
	return out
}

// compound is a type selector with optional classes: "p", "*", ".a.b",
// "div.table-wrapper".
type compound struct {
	tag     string // empty or "*" matches any tag
	classes []string
}

func (c compound) matches(el *Element) bool {
	if c.tag != "" && c.tag != "*" && !strings.EqualFold(c.tag, el.Tag) {
		return false
	}
	for _, cls := range c.classes {
		if !el.HasClass(cls) {
			return false
		}
	}
	return true
}

// selector is "subject" or "prev + subject". unsupported marks anything
// else (attribute, pseudo, id, descendant, child, general sibling).
type selector struct {
	prev        *compound
	subject     compound
	unsupported bool
}

func (s selector) matches(el *Element) bool {
	if s.unsupported || !s.subject.matches(el) {
		return false
	}
	if s.prev == nil {
		return true
	}
	return el.Previous != nil && s.prev.matches(el.Previous)
}

func splitSelectorList(list string) []string {
	parts := strings.Split(list, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = normalizeSelector(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeSelector collapses whitespace and spaces out the + combinator.
func normalizeSelector(s string) string {
	s = strings.ReplaceAll(s, "+", " + ")
	return strings.Join(strings.Fields(s), " ")
}

func normalizeSelectorList(list string) string {
	return strings.Join(splitSelectorList(list), ", ")
}

func parseSelectorList(list string) []selector {
	parts := splitSelectorList(list)
	out := make([]selector, 0, len(parts))
	for _, p := range parts {
		out = append(out, parseSelector(p))
	}
	return out
}

func parseSelector(s string) selector {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 1:
		c, ok := parseCompound(fields[0])
		return selector{subject: c, unsupported: !ok}
	case len(fields) == 3 && fields[1] == "+":
		prev, ok1 := parseCompound(fields[0])
		subj, ok2 := parseCompound(fields[2])
		return selector{prev: &prev, subject: subj, unsupported: !ok1 || !ok2}
	}
	return selector{unsupported: true}
}

func parseCompound(s string) (compound, bool) {
	parts := strings.Split(s, ".")
	c := compound{tag: parts[0]}
	if c.tag != "*" && !isIdent(c.tag) && c.tag != "" {
		return c, false
	}
	for _, cls := range parts[1:] {
		if !isIdent(cls) {
			return c, false
		}
		c.classes = append(c.classes, cls)
	}
	return c, c.tag != "" || len(c.classes) > 0
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// missingRequired returns the entries of RequiredSelectors no rule covers.
// A region class only counts as covered by a rule that avoids breaks
// inside it; any heading rule covers "h1..h6".
func (rs *RuleSet) missingRequired() []string {
	var regions, subjects []compound
	for i, sels := range rs.parsed {
		keeps := rs.rules[i].Has(AvoidSplit)
		for _, s := range sels {
			if s.unsupported || s.prev != nil {
				continue
			}
			subjects = append(subjects, s.subject)
			if keeps {
				regions = append(regions, s.subject)
			}
		}
	}
	coversClass := func(class string) bool {
		return slices.ContainsFunc(regions, func(c compound) bool {
			return slices.Contains(c.classes, class) || slices.Contains(c.classes, NoBreakClass)
		})
	}
	coversHeading := slices.ContainsFunc(subjects, func(c compound) bool {
		return len(c.tag) == 2 && (c.tag[0] == 'h' || c.tag[0] == 'H') && c.tag[1] >= '1' && c.tag[1] <= '6'
	})

	var missing []string
	for _, req := range RequiredSelectors {
		if class, ok := strings.CutPrefix(req, "."); ok {
			if !coversClass(class) {
				missing = append(missing, req+" (break-inside: avoid)")
			}
			continue
		}
		if !coversHeading {
			missing = append(missing, req)
		}
	}
	return missing
}
