package layout

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidRuleSet indicates a rule set that cannot be used for pagination,
// most often because it is missing a required selector.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// BehaviorKind is a pagination behavior a rule applies to its selector.
type BehaviorKind int

const (
	AvoidBreakInside BehaviorKind = iota + 1
	AvoidBreakBefore
	AvoidBreakAfter
	KeepWithNext
	Orphans
	Widows
)

func (k BehaviorKind) String() string {
	switch k {
	case AvoidBreakInside:
		return "avoid-break-inside"
	case AvoidBreakBefore:
		return "avoid-break-before"
	case AvoidBreakAfter:
		return "avoid-break-after"
	case KeepWithNext:
		return "keep-with-next"
	case Orphans:
		return "orphans"
	case Widows:
		return "widows"
	}
	return "behavior(" + strconv.Itoa(int(k)) + ")"
}

// Behavior is one pagination constraint. Lines is used by Orphans and Widows.
type Behavior struct {
	Kind  BehaviorKind
	Lines int
}

func (b Behavior) String() string {
	if b.Kind == Orphans || b.Kind == Widows {
		return b.Kind.String() + "(" + strconv.Itoa(b.Lines) + ")"
	}
	return b.Kind.String()
}

// Behavior constructors.
var (
	AvoidSplit  = Behavior{Kind: AvoidBreakInside}
	AvoidBefore = Behavior{Kind: AvoidBreakBefore}
	AvoidAfter  = Behavior{Kind: AvoidBreakAfter}
	KeepNext    = Behavior{Kind: KeepWithNext}
)

// MinOrphans returns an orphans behavior keeping at least n lines at the
// bottom of a page.
func MinOrphans(n int) Behavior { return Behavior{Kind: Orphans, Lines: n} }

// MinWidows returns a widows behavior keeping at least n lines at the top of
// a page.
func MinWidows(n int) Behavior { return Behavior{Kind: Widows, Lines: n} }

// Declaration is a non-pagination CSS property carried verbatim.
type Declaration struct {
	Property string
	Value    string
}

// Rule maps a selector list to behaviors.
type Rule struct {
	Selector     string
	Behaviors    []Behavior
	Declarations []Declaration
}

// Has reports whether the rule carries behavior b.
func (r Rule) Has(b Behavior) bool {
	return slices.Contains(r.Behaviors, b)
}

func (r Rule) clone() Rule {
	r.Behaviors = slices.Clone(r.Behaviors)
	r.Declarations = slices.Clone(r.Declarations)
	return r
}

// RuleSet is an immutable, ordered collection of rules.
type RuleSet struct {
	version string
	rules   []Rule
	parsed  [][]selector // per rule, its selector list
}

// NewRuleSet validates rules and returns a rule set owning a copy of them.
// The result replaces the default set entirely.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	return newRuleSet(CustomVersion, rules)
}

func newRuleSet(version string, rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{version: version}
	for _, r := range rules {
		if err := validateBehaviors(r); err != nil {
			return nil, err
		}
		r = r.clone()
		r.Selector = normalizeSelectorList(r.Selector)
		if r.Selector == "" {
			return nil, fmt.Errorf("%w: rule with empty selector", ErrInvalidRuleSet)
		}
		rs.rules = append(rs.rules, r)
		rs.parsed = append(rs.parsed, parseSelectorList(r.Selector))
	}
	if missing := rs.missingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required selectors %s", ErrInvalidRuleSet, strings.Join(missing, ", "))
	}
	return rs, nil
}

func validateBehaviors(r Rule) error {
	for _, b := range r.Behaviors {
		switch b.Kind {
		case Orphans, Widows:
			if b.Lines < 1 {
				return fmt.Errorf("%w: %s on %q needs at least 1 line, got %d", ErrInvalidRuleSet, b.Kind, r.Selector, b.Lines)
			}
		case AvoidBreakInside, AvoidBreakBefore, AvoidBreakAfter, KeepWithNext:
		default:
			return fmt.Errorf("%w: unknown behavior %s on %q", ErrInvalidRuleSet, b.Kind, r.Selector)
		}
	}
	return nil
}

// Version identifies the rule set: DefaultVersion for the built-in set,
// CustomVersion for caller-supplied ones.
func (rs *RuleSet) Version() string { return rs.version }

// Len returns the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns a copy of the rules in order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.clone()
	}
	return out
}

// Lookup finds the first rule whose selector list equals selector, or
// contains it as one member. Whitespace is normalized before comparing.
func (rs *RuleSet) Lookup(selector string) (Rule, bool) {
	want := normalizeSelectorList(selector)
	for _, r := range rs.rules {
		if r.Selector == want {
			return r.clone(), true
		}
	}
	for _, r := range rs.rules {
		if slices.Contains(splitSelectorList(r.Selector), want) {
			return r.clone(), true
		}
	}
	return Rule{}, false
}

// Behaviors returns the behaviors of the rule found by Lookup, or nil.
func (rs *RuleSet) Behaviors(selector string) []Behavior {
	r, ok := rs.Lookup(selector)
	if !ok {
		return nil
	}
	return r.Behaviors
}
