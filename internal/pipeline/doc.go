// Package pipeline turns Markdown into a self-contained HTML document.
//
// Stages, in order:
//
//	TextPreprocessor   line endings, blank lines, ==mark== placeholders
//	GoldmarkSource     Markdown -> flat stream of start/end/leaf events
//	ResolvePaths       relative image and link targets -> file:// URLs
//	Annotator          wraps tables, code blocks and block quotes in
//	                   non-splitting region markers
//	Serializer         events -> HTML body markup (chroma for code)
//	Assembler          body + stylesheets -> HTML document
//
// Events are plain values. Every stage returns a new slice and leaves its
// input untouched, so stages can be tested and reordered in isolation.
//
// The annotator's markers are the only place this package knows about
// pagination. They carry the region classes defined in the layout package,
// whose rule set forbids breaks inside them. Blocks exposes the element
// structure the markup will have, for matching against a rule set.
//
// Rendering to PDF happens in the root pagekeep package.
package pipeline
