package layout

import (
	"strconv"
	"strings"
)

// CSS renders the rule set as a stylesheet. Break behaviors are written twice,
// as break-* and as the legacy page-break-* property, so older engines honor
// them too.
func (rs *RuleSet) CSS() string {
	var sb strings.Builder
	sb.WriteString("/* pagination rules: ")
	sb.WriteString(rs.version)
	sb.WriteString(" */\n")
	for _, r := range rs.rules {
		writeRule(&sb, r)
	}
	return sb.String()
}

func writeRule(sb *strings.Builder, r Rule) {
	sb.WriteString(r.Selector)
	sb.WriteString(" {\n")
	for _, b := range r.Behaviors {
		for _, d := range behaviorDeclarations(b) {
			writeDeclaration(sb, d)
		}
	}
	for _, d := range r.Declarations {
		writeDeclaration(sb, d)
	}
	sb.WriteString("}\n")
}

func writeDeclaration(sb *strings.Builder, d Declaration) {
	sb.WriteString("  ")
	sb.WriteString(d.Property)
	sb.WriteString(": ")
	sb.WriteString(d.Value)
	sb.WriteString(";\n")
}

func behaviorDeclarations(b Behavior) []Declaration {
	switch b.Kind {
	case AvoidBreakInside:
		return []Declaration{{"break-inside", "avoid"}, {"page-break-inside", "avoid"}}
	case AvoidBreakBefore:
		return []Declaration{{"break-before", "avoid"}, {"page-break-before", "avoid"}}
	case AvoidBreakAfter, KeepWithNext:
		return []Declaration{{"break-after", "avoid"}, {"page-break-after", "avoid"}}
	case Orphans:
		return []Declaration{{"orphans", strconv.Itoa(b.Lines)}}
	case Widows:
		return []Declaration{{"widows", strconv.Itoa(b.Lines)}}
	}
	return nil
}
