package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// DefaultStyleName is the built-in theme used when none is configured.
const DefaultStyleName = "default"

// Layout shared by the embedded assets and custom asset directories.
const (
	stylesDir    = "styles"
	documentPath = "templates/document.html"
)

// Loader serves theme stylesheets and the document shell.
type Loader interface {
	// LoadStyle returns styles/{name}.css.
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// DocumentTemplate returns the html/template shell every document is
	// rendered into. Returns ErrTemplateNotFound if it is absent.
	DocumentTemplate() (string, error)
}

// readFunc reads an asset by slash-separated path.
type readFunc func(name string) ([]byte, error)

func loadStyle(read readFunc, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	return load(read, path.Join(stylesDir, name+".css"), ErrStyleNotFound)
}

func loadDocument(read readFunc) (string, error) {
	return load(read, documentPath, ErrTemplateNotFound)
}

func load(read readFunc, name string, notFound error) (string, error) {
	content, err := read(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", notFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, name, err)
	}
	return string(content), nil
}

// ValidateAssetName rejects empty names and anything outside [A-Za-z0-9_-].
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}
