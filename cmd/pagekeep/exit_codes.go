package main

import (
	"errors"
	"os"

	pagekeep "github.com/alnah/go-pagekeep"
	"github.com/alnah/go-pagekeep/internal/config"
	"github.com/alnah/go-pagekeep/internal/dateutil"
)

// Exit codes: 0 success, 1 general, 2 usage, custom codes below 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error, failed batch
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor maps an error to an exit code using errors.Is, so callers
// must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, pagekeep.ErrBrowserConnect) ||
		errors.Is(err, pagekeep.ErrRenderBackend) ||
		errors.Is(err, pagekeep.ErrRenderTimeout) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoMarkdown) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrReadRules) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrCreateOutputDir) {
		return ExitIO
	}

	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pagekeep.ErrEmptyDocument) ||
		errors.Is(err, pagekeep.ErrMalformedStructure) ||
		errors.Is(err, pagekeep.ErrInvalidRuleSet) ||
		errors.Is(err, pagekeep.ErrInvalidGeometry) ||
		errors.Is(err, pagekeep.ErrInvalidFooterPosition) ||
		errors.Is(err, pagekeep.ErrInvalidAssetPath) ||
		errors.Is(err, pagekeep.ErrStyleNotFound) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputFileTarget) {
		return ExitUsage
	}

	return ExitGeneral
}
