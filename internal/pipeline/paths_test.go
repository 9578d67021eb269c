package pipeline

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolvePaths(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file URL layout differs on windows")
	}

	base := t.TempDir()
	img := func(dest string) Event { return Event{Kind: KindImage, Phase: PhaseStart, Dest: dest} }
	link := func(dest string) Event { return Event{Kind: KindLink, Phase: PhaseStart, Dest: dest} }

	tests := []struct {
		name     string
		in       Event
		expected string
	}{
		{"relative image", img("images/cat.png"), "file://" + filepath.Join(base, "images", "cat.png")},
		{"relative link", link("other.md"), "file://" + filepath.Join(base, "other.md")},
		{"escaped space", img("my%20cat.png"), "file://" + filepath.Join(base, "my%20cat.png")},
		{"http url", img("https://example.com/a.png"), "https://example.com/a.png"},
		{"mailto", link("mailto:a@b.c"), "mailto:a@b.c"},
		{"data uri", img("data:image/png;base64,AAAA"), "data:image/png;base64,AAAA"},
		{"anchor", link("#section"), "#section"},
		{"protocol relative", img("//cdn.example.com/x.png"), "//cdn.example.com/x.png"},
		{"absolute path", img("/etc/hosts"), "/etc/hosts"},
		{"traversal", img("../../secret.png"), "../../secret.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolvePaths([]Event{tt.in}, base)
			if err != nil {
				t.Fatalf("ResolvePaths() unexpected error: %v", err)
			}
			if got[0].Dest != tt.expected {
				t.Errorf("Dest = %q, want %q", got[0].Dest, tt.expected)
			}
		})
	}
}

func TestResolvePaths_NoBaseDir(t *testing.T) {
	t.Parallel()

	in := []Event{{Kind: KindImage, Phase: PhaseStart, Dest: "cat.png"}}
	got, err := ResolvePaths(in, "")
	if err != nil {
		t.Fatalf("ResolvePaths() unexpected error: %v", err)
	}
	if got[0].Dest != "cat.png" {
		t.Errorf("Dest = %q, want unchanged", got[0].Dest)
	}
}

func TestResolvePaths_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []Event{{Kind: KindImage, Phase: PhaseStart, Dest: "cat.png"}}
	if _, err := ResolvePaths(in, t.TempDir()); err != nil {
		t.Fatalf("ResolvePaths() unexpected error: %v", err)
	}
	if in[0].Dest != "cat.png" {
		t.Errorf("input modified: %q", in[0].Dest)
	}
}
