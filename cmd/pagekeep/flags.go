package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags controlling the run itself.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	version bool
	help    bool
}

// pageFlags holds geometry flags. Pointers stay nil unless the flag was
// given on the command line.
type pageFlags struct {
	size         string
	landscape    bool
	paperWidth   *float64
	paperHeight  *float64
	marginTop    *float64
	marginBottom *float64
	marginLeft   *float64
	marginRight  *float64
	scale        *float64
}

// footerFlags holds footer flags.
type footerFlags struct {
	pageNumbers bool
	text        string
	date        string
	position    string
}

// styleFlags holds theme and pagination rule flags.
type styleFlags struct {
	style       string
	css         string
	assetPath   string
	rules       string
	strict      bool
	noHighlight bool
}

// outputFlags holds output mode flags.
type outputFlags struct {
	html     bool
	htmlOnly bool
}

// cliFlags holds every flag of the pagekeep command.
type cliFlags struct {
	common     commonFlags
	output     string
	recursive  bool
	workers    int
	timeout    string
	page       pageFlags
	footer     footerFlags
	style      styleFlags
	outputMode outputFlags
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output and timings")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")
}

// geometryFlags names the float flags backing pageFlags pointers.
var geometryFlags = []string{
	"paper-width", "paper-height",
	"margin-top", "margin-bottom", "margin-left", "margin-right",
	"scale",
}

func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.size, "paper-size", "", "paper size: a4, a5, letter, legal")
	fs.BoolVar(&f.landscape, "landscape", false, "swap paper width and height")
	fs.Float64("paper-width", 0, "paper width in inches")
	fs.Float64("paper-height", 0, "paper height in inches")
	fs.Float64("margin-top", 0, "top margin in inches")
	fs.Float64("margin-bottom", 0, "bottom margin in inches")
	fs.Float64("margin-left", 0, "left margin in inches")
	fs.Float64("margin-right", 0, "right margin in inches")
	fs.Float64("scale", 0, "render scale (0.1-2.0)")
}

// collectPageFlags copies explicitly set geometry flags into f.
func collectPageFlags(fs *flag.FlagSet, f *pageFlags) error {
	targets := map[string]**float64{
		"paper-width":   &f.paperWidth,
		"paper-height":  &f.paperHeight,
		"margin-top":    &f.marginTop,
		"margin-bottom": &f.marginBottom,
		"margin-left":   &f.marginLeft,
		"margin-right":  &f.marginRight,
		"scale":         &f.scale,
	}
	for _, name := range geometryFlags {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetFloat64(name)
		if err != nil {
			return err
		}
		*targets[name] = &v
	}
	return nil
}

func addFooterFlags(fs *flag.FlagSet, f *footerFlags) {
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "show page numbers in the footer")
	fs.StringVar(&f.text, "footer-text", "", "footer text")
	fs.StringVar(&f.date, "footer-date", "", "footer date (\"auto\", \"auto:FORMAT\" or literal)")
	fs.StringVar(&f.position, "footer-position", "", "footer position: left, center, right")
}

func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "theme name or CSS file path")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended after the rules")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.rules, "rules", "", "CSS pagination rules replacing the defaults")
	fs.BoolVar(&f.strict, "strict", false, "fail documents with unbalanced tables, code or quotes")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "disable code highlighting")
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "also write the assembled HTML")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write HTML only, skip PDF")
}

// parseFlags parses args (without the program name) and returns the
// positional arguments. --help prints usage to stdout and returns
// flag.ErrHelp; parse errors print usage to stderr.
func parseFlags(args []string, stdout, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("pagekeep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (single input) or directory")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "descend into subdirectories")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout per document (e.g. 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addFooterFlags(fs, &f.footer)
	addStyleFlags(fs, &f.style)
	addOutputFlags(fs, &f.outputMode)

	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.common.help {
		printUsage(stdout, fs)
		return nil, nil, flag.ErrHelp
	}
	if err := collectPageFlags(fs, &f.page); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
