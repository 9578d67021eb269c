package pagekeep

import (
	"errors"

	"github.com/alnah/go-pagekeep/internal/assets"
	"github.com/alnah/go-pagekeep/internal/pipeline"
	"github.com/alnah/go-pagekeep/layout"
)

// Sentinel errors for library operations.
var (
	ErrEmptyDocument = errors.New("markdown content cannot be empty")

	// ErrMalformedStructure is returned in strict mode when a table, code
	// block or block quote is closed without being opened or never closed.
	ErrMalformedStructure = pipeline.ErrMalformedStructure

	// ErrInvalidRuleSet is returned for override rule sets that fail to
	// parse or miss a required selector.
	ErrInvalidRuleSet = layout.ErrInvalidRuleSet

	// Rendering errors.
	ErrRenderBackend  = errors.New("PDF rendering failed")
	ErrRenderTimeout  = errors.New("PDF rendering timed out")
	ErrBrowserConnect = errors.New("failed to connect to browser")

	// Validation errors.
	ErrInvalidGeometry       = errors.New("invalid page geometry")
	ErrInvalidFooterPosition = errors.New("invalid footer position")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrStyleNotFound    = assets.ErrStyleNotFound
)
