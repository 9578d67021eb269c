package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"github.com/alnah/go-pagekeep/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrNoMarkdown       = errors.New("no markdown files found")
	ErrNotMarkdown      = errors.New("not a markdown file")
	ErrOutputFileTarget = errors.New("output ending in .pdf needs exactly one input file")
)

// fileJob pairs a markdown file with the PDF it produces.
type fileJob struct {
	InputPath  string
	OutputPath string
}

// discoverFiles expands inputs into markdown files. Directories are
// scanned (recursively when asked); other files without a markdown
// extension are skipped. Skipped and unreadable inputs are returned as
// warnings; only an empty result is an error.
func discoverFiles(inputs []string, outputDir string, recursive bool) (jobs []fileJob, warnings error, err error) {
	if len(inputs) == 0 {
		return nil, nil, ErrNoInput
	}

	for _, input := range inputs {
		info, statErr := os.Stat(input)
		if statErr != nil {
			warnings = multierr.Append(warnings, fmt.Errorf("skipping %s: %w", input, statErr))
			continue
		}

		if !info.IsDir() {
			if !fileutil.IsMarkdown(input) {
				warnings = multierr.Append(warnings, fmt.Errorf("skipping %s: %w", input, ErrNotMarkdown))
				continue
			}
			jobs = append(jobs, fileJob{InputPath: input, OutputPath: resolveOutputPath(input, outputDir, "")})
			continue
		}

		found, walkWarnings := scanDir(input, outputDir, recursive)
		warnings = multierr.Append(warnings, walkWarnings)
		jobs = append(jobs, found...)
	}

	if len(jobs) == 0 {
		return nil, warnings, multierr.Append(fmt.Errorf("%w in %s", ErrNoMarkdown, strings.Join(inputs, ", ")), warnings)
	}
	if isPDFPath(outputDir) && len(jobs) > 1 {
		return nil, warnings, fmt.Errorf("%w: %d files found", ErrOutputFileTarget, len(jobs))
	}
	return jobs, warnings, nil
}

// scanDir lists markdown files under dir in natural order ("ch2" before
// "ch10").
func scanDir(dir, outputDir string, recursive bool) ([]fileJob, error) {
	var (
		jobs     []fileJob
		warnings error
	)
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = multierr.Append(warnings, fmt.Errorf("scanning %s: %w", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if fileutil.IsMarkdown(path) {
			jobs = append(jobs, fileJob{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, dir)})
		}
		return nil
	})

	sort.SliceStable(jobs, func(i, j int) bool {
		return natural.Less(jobs[i].InputPath, jobs[j].InputPath)
	})
	return jobs, warnings
}

// resolveOutputPath picks the PDF path for inputPath. Without an output
// directory the PDF lands next to the source; files found under baseDir
// keep their relative layout inside outputDir.
func resolveOutputPath(inputPath, outputDir, baseDir string) string {
	pdfName := fileutil.ReplaceExt(filepath.Base(inputPath), ".pdf")

	switch {
	case outputDir == "":
		return fileutil.ReplaceExt(inputPath, ".pdf")
	case isPDFPath(outputDir):
		return outputDir
	}

	if baseDir != "" {
		if rel, err := filepath.Rel(baseDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), pdfName)
		}
	}
	return filepath.Join(outputDir, pdfName)
}

func isPDFPath(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".pdf")
}

// htmlOutputPath returns the HTML path next to a PDF path.
func htmlOutputPath(pdfPath string) string {
	return fileutil.ReplaceExt(pdfPath, ".html")
}
