package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"go.uber.org/multierr"

	pagekeep "github.com/alnah/go-pagekeep"
	"github.com/alnah/go-pagekeep/internal/config"
	"github.com/alnah/go-pagekeep/internal/dateutil"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown", errors.New("boom"), ExitGeneral},
		{"browser connect", fmt.Errorf("rendering PDF: %w", pagekeep.ErrBrowserConnect), ExitBrowser},
		{"render backend", pagekeep.ErrRenderBackend, ExitBrowser},
		{"render timeout", pagekeep.ErrRenderTimeout, ExitBrowser},
		{"not exist", fmt.Errorf("x: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"write", ErrWritePDF, ExitIO},
		{"output dir", ErrCreateOutputDir, ExitIO},
		{"discovery warnings", multierr.Append(ErrNoMarkdown, fmt.Errorf("skipping: %w", os.ErrNotExist)), ExitIO},
		{"config not found", &config.NotFoundError{Name: "x"}, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"empty document", pagekeep.ErrEmptyDocument, ExitUsage},
		{"malformed", pagekeep.ErrMalformedStructure, ExitUsage},
		{"rules", pagekeep.ErrInvalidRuleSet, ExitUsage},
		{"geometry", pagekeep.ErrInvalidGeometry, ExitUsage},
		{"footer", pagekeep.ErrInvalidFooterPosition, ExitUsage},
		{"style", pagekeep.ErrStyleNotFound, ExitUsage},
		{"asset path", pagekeep.ErrInvalidAssetPath, ExitUsage},
		{"date", dateutil.ErrInvalidDateFormat, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"pdf target", ErrOutputFileTarget, ExitUsage},
		{"reported single", &reportedError{err: pagekeep.ErrEmptyDocument}, ExitUsage},
		{"reported batch", &reportedError{err: errors.New("2 of 3 conversions failed")}, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
