package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseRuleSet builds a rule set from a CSS stylesheet. Break properties
// (break-* and page-break-*) with the value avoid, orphans and widows become
// behaviors; every other declaration is kept verbatim. @-rule blocks are
// skipped. The result must cover RequiredSelectors.
func ParseRuleSet(stylesheet string) (*RuleSet, error) {
	rules, err := parseRules([]byte(stylesheet))
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: stylesheet has no rules", ErrInvalidRuleSet)
	}
	return newRuleSet(CustomVersion, rules)
}

func parseRules(src []byte) ([]Rule, error) {
	p := css.NewParser(parse.NewInput(bytes.NewReader(src)), false)

	var rules []Rule
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parseErr(p); err != nil {
				return nil, err
			}
			return rules, nil

		case css.BeginAtRuleGrammar:
			skipBlock(p)

		case css.BeginRulesetGrammar:
			r := Rule{Selector: selectorText(data, p.Values())}
			if err := parseDeclarations(p, &r); err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
	}
}

// parseErr returns the parser's error wrapped in ErrInvalidRuleSet, or nil
// at the end of input.
func parseErr(p *css.Parser) error {
	if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}
	return nil
}

func selectorText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		if v.TokenType == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

func skipBlock(p *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func parseDeclarations(p *css.Parser, r *Rule) error {
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return parseErr(p)
		case css.EndRulesetGrammar:
			return nil
		case css.DeclarationGrammar:
			if err := addDeclaration(r, strings.ToLower(string(data)), valueText(p.Values())); err != nil {
				return err
			}
		case css.CustomPropertyGrammar:
			r.Declarations = append(r.Declarations, Declaration{Property: string(data), Value: valueText(p.Values())})
		}
	}
}

func valueText(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func addDeclaration(r *Rule, property, value string) error {
	v := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(value, "!important")))

	var b Behavior
	switch property {
	case "break-inside", "page-break-inside":
		b = AvoidSplit
	case "break-before", "page-break-before":
		b = AvoidBefore
	case "break-after", "page-break-after":
		b = AvoidAfter
	case "orphans", "widows":
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s on %q must be a positive integer, got %q", ErrInvalidRuleSet, property, r.Selector, value)
		}
		if property == "orphans" {
			b = MinOrphans(n)
		} else {
			b = MinWidows(n)
		}
		r.Behaviors = appendBehavior(r.Behaviors, b)
		return nil
	default:
		r.Declarations = append(r.Declarations, Declaration{Property: property, Value: value})
		return nil
	}

	if v != "avoid" && v != "avoid-page" {
		r.Declarations = append(r.Declarations, Declaration{Property: property, Value: value})
		return nil
	}
	r.Behaviors = appendBehavior(r.Behaviors, b)
	return nil
}

// appendBehavior adds b, replacing an earlier behavior of the same kind.
// break-inside and page-break-inside therefore yield one behavior.
func appendBehavior(bs []Behavior, b Behavior) []Behavior {
	for i := range bs {
		if bs[i].Kind == b.Kind {
			bs[i] = b
			return bs
		}
	}
	return append(bs, b)
}
