package assets

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed styles/*.css templates/document.html
var embedded embed.FS

// EmbeddedLoader serves the themes and shell compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (*EmbeddedLoader) LoadStyle(name string) (string, error) {
	return loadStyle(embedded.ReadFile, name)
}

func (*EmbeddedLoader) DocumentTemplate() (string, error) {
	return loadDocument(embedded.ReadFile)
}

// StyleNames lists the embedded themes, sorted.
func StyleNames() []string {
	matches, err := fs.Glob(embedded, stylesDir+"/*.css")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".css"))
	}
	return names
}

var _ Loader = (*EmbeddedLoader)(nil)
