package assets

import "errors"

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName indicates a name that could escape its directory
	// or change the file extension.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the custom asset path is not a readable
	// directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead covers read failures other than a missing file,
	// including links that leave the asset directory.
	ErrAssetRead = errors.New("failed to read asset")
)
