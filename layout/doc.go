// Package layout holds the pagination rule set handed to the rendering
// backend.
//
// A rule set is data, not an algorithm: the browser decides where pages
// break, and the rules tell it what must stay together. Each Rule maps a CSS
// selector list to behaviors such as avoid-break-inside or orphan/widow
// minimums. The rule set and the annotator in internal/pipeline form one
// contract: the annotator wraps tables, code blocks and block quotes in
// elements carrying the region classes below, and the rule set forbids
// breaks inside those classes.
//
//	.table-wrapper       tables
//	.code-wrapper        fenced and indented code blocks
//	.blockquote-wrapper  block quotes
//	.no-break            shared by all three
//
// Default returns the built-in rule set. It is built once and never
// modified, so it can be shared by concurrent conversions. A caller may
// replace it wholesale with NewRuleSet or ParseRuleSet; there is no merging.
// Replacements must still cover RequiredSelectors.
package layout
