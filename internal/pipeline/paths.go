package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pagekeep/internal/fileutil"
)

// ResolvePaths rewrites relative image and link destinations to absolute
// file:// URLs under baseDir, so the rendered document finds them from the
// renderer's temporary location. An empty baseDir returns events unchanged.
// Destinations resolving outside baseDir are left as they are.
func ResolvePaths(events []Event, baseDir string) ([]Event, error) {
	if baseDir == "" {
		return events, nil
	}
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	out := make([]Event, len(events))
	copy(out, events)
	for i := range out {
		ev := &out[i]
		if ev.Phase != PhaseStart || (ev.Kind != KindImage && ev.Kind != KindLink) {
			continue
		}
		if !isRelativePath(ev.Dest) {
			continue
		}
		p := ev.Dest
		if u, err := url.PathUnescape(p); err == nil {
			p = u
		}
		abs := filepath.Join(absDir, filepath.FromSlash(p))
		if !isPathUnderDir(abs, absDir) {
			continue
		}
		ev.Dest = fileutil.FileURL(abs)
	}
	return out, nil
}

func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") || filepath.IsAbs(p) {
		return false
	}
	// Anything with a scheme (http:, mailto:, data:, file:) is left alone.
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		return false
	}
	return true
}

func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir) + string(filepath.Separator)
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}
