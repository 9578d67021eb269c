// Package pagekeep converts Markdown documents to PDF while keeping tables,
// code blocks, block quotes and headings intact across page boundaries.
//
// # Quick Start
//
//	conv, err := pagekeep.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, pagekeep.Input{
//	    Markdown: "# Hello\n\nWorld",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// The result holds the PDF bytes, the assembled HTML and structure
// statistics. Set Input.HTMLOnly to skip rendering.
//
// # How page breaks are controlled
//
// The markdown is parsed into a flat stream of structural events. A single
// annotator pass wraps every table, code block and block quote in a region
// element whose class is covered by the pagination rule set (see package
// layout). The rule set is embedded in the document as CSS, so the browser
// that prints the PDF never splits those regions, keeps headings with the
// block that follows them and honors orphan and widow limits.
//
// The default rules can be replaced, not merged, with a CSS stylesheet via
// WithRulesCSS or Input.RulesCSS. A replacement must still cover the region
// classes and at least one heading level; otherwise ErrInvalidRuleSet is
// returned.
//
// # Configuration
//
//	conv, err := pagekeep.NewConverter(
//	    pagekeep.WithTimeout(time.Minute),
//	    pagekeep.WithStyle("compact"),
//	    pagekeep.WithGeometry(pagekeep.GeometryOverrides{MarginTop: &top}),
//	    pagekeep.WithLogger(logger),
//	    pagekeep.WithStrictStructure(),
//	)
//
// Page geometry defaults to A4 with 0.4 inch margins at 100% scale.
//
// # Parallel Processing
//
// ConverterPool holds up to N converters, each with its own browser.
// ConvertBatch runs a slice of inputs through a pool and returns one Outcome
// per input, in order; one failing document does not affect the others.
//
//	pool := pagekeep.NewConverterPool(pagekeep.ResolvePoolSize(0))
//	defer pool.Close()
//	outcomes := pagekeep.ConvertBatch(ctx, pool, inputs)
//	ok, failed := pagekeep.Summarize(outcomes)
//
// # Errors
//
// Errors wrap the sentinel values in errors.go; test them with errors.Is.
package pagekeep
