package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `pagekeep converts Markdown to PDF without splitting tables, code blocks
or quotes across pages.

Usage:
  pagekeep [flags] <file.md|dir>...

Flags:
%s
Environment:
  PAGEKEEP_CONFIG, PAGEKEEP_STYLE, PAGEKEEP_RULES, PAGEKEEP_TIMEOUT,
  PAGEKEEP_INPUT_DIR, PAGEKEEP_OUTPUT_DIR, PAGEKEEP_PAPER_SIZE,
  PAGEKEEP_WORKERS, ROD_BROWSER_BIN, ROD_NO_SANDBOX

Exit codes:
  0 success, 1 general error, 2 usage or validation, 3 I/O, 4 browser
`, fs.FlagUsages())
}
