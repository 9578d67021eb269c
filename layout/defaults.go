package layout

// Version strings reported by RuleSet.Version.
const (
	DefaultVersion = "pagekeep-rules/1"
	CustomVersion  = "custom"
)

// Region classes. The annotator's markers carry exactly these.
const (
	TableRegionClass = "table-wrapper"
	CodeRegionClass  = "code-wrapper"
	QuoteRegionClass = "blockquote-wrapper"
	NoBreakClass     = "no-break"
)

// RequiredSelectors lists the selectors every rule set must cover. Any
// selector whose subject carries .no-break covers all three region classes,
// and any heading type h1 through h6 covers "h1..h6".
var RequiredSelectors = []string{
	"." + TableRegionClass,
	"." + CodeRegionClass,
	"." + QuoteRegionClass,
	"h1..h6",
}

var defaultRules = []Rule{
	{Selector: "h1, h2, h3, h4, h5, h6", Behaviors: []Behavior{AvoidAfter, AvoidSplit}},
	{Selector: "h1 + *, h2 + *, h3 + *, h4 + *, h5 + *, h6 + *", Behaviors: []Behavior{AvoidBefore}},
	{Selector: "." + TableRegionClass, Behaviors: []Behavior{AvoidSplit}},
	{Selector: "." + CodeRegionClass, Behaviors: []Behavior{AvoidSplit}},
	{Selector: "." + QuoteRegionClass, Behaviors: []Behavior{AvoidSplit}},
	{Selector: "ul, ol", Behaviors: []Behavior{AvoidSplit}},
	{Selector: "li", Behaviors: []Behavior{MinOrphans(2), MinWidows(2)}},
	{Selector: "p", Behaviors: []Behavior{MinOrphans(3), MinWidows(3)}},
	{Selector: "hr", Behaviors: []Behavior{AvoidAfter}},
	{Selector: "img", Behaviors: []Behavior{AvoidSplit}},
	{Selector: "figure, ." + NoBreakClass, Behaviors: []Behavior{AvoidSplit}},
}

var defaultSet = mustRuleSet(DefaultVersion, defaultRules)

func mustRuleSet(version string, rules []Rule) *RuleSet {
	rs, err := newRuleSet(version, rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// Default returns the built-in rule set. The same value is returned on every
// call; it is never modified.
func Default() *RuleSet { return defaultSet }
