// Package hints builds the short "hint:" lines the CLI appends to errors.
package hints

import (
	"strings"
	"time"

	"github.com/alnah/go-pagekeep/internal/fileutil"
)

const prefix = "\n  hint: "

// InContainer reports whether the process runs inside Docker.
func InContainer() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the ROD_* variables relevant to the current
// environment. getenv is usually os.Getenv.
func ForBrowserConnect(getenv func(string) string, inContainer bool) string {
	var parts []string

	inCI := false
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if getenv(key) != "" {
			inCI = true
			break
		}
	}
	if (inCI || inContainer) && getenv("ROD_NO_SANDBOX") == "" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	return join(parts)
}

// ForTimeout suggests a longer --timeout than the one that expired.
func ForTimeout(current time.Duration) string {
	if current <= 0 {
		return format("for large documents, raise --timeout")
	}
	return format("for large documents, raise --timeout above " + current.String())
}

// ForConfigNotFound suggests --config, or creating the user config file
// when one of the searched paths lives under .config/go-pagekeep.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/go-pagekeep") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory is shown when the output directory cannot be created.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound lists the embedded styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForInvalidRules reminds the accepted rule syntax.
func ForInvalidRules() string {
	return format("rules are CSS, e.g. \"table, pre { break-inside: avoid; }\"")
}

// ForMalformedStructure is shown when --strict rejects unbalanced input.
func ForMalformedStructure() string {
	return format("rerun without --strict to render with best-effort page breaks")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return prefix + hint
}

func join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return format(strings.Join(parts, "; "))
}
