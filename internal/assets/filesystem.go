package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemLoader serves assets from a directory laid out like the
// embedded ones. Reads go through os.OpenInRoot, so neither names nor
// symlinks inside the directory can reach files outside it.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader returns ErrInvalidBasePath unless basePath is a
// readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}
	return &FilesystemLoader{basePath: absPath}, nil
}

func (l *FilesystemLoader) LoadStyle(name string) (string, error) {
	return loadStyle(l.read, name)
}

func (l *FilesystemLoader) DocumentTemplate() (string, error) {
	return loadDocument(l.read)
}

func (l *FilesystemLoader) read(name string) ([]byte, error) {
	f, err := os.OpenInRoot(l.basePath, filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

var _ Loader = (*FilesystemLoader)(nil)
