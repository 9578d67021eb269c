package pipeline

import (
	"bytes"
	"strings"
	"testing"
)

func TestHighlighter(t *testing.T) {
	t.Parallel()

	h := NewHighlighter("")

	var buf bytes.Buffer
	ok, err := h.Highlight(&buf, "python", "def f():\n    return 1\n")
	if err != nil {
		t.Fatalf("Highlight() unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("Highlight() should recognize python")
	}
	if !strings.Contains(buf.String(), `class="k"`) {
		t.Errorf("expected keyword class in %q", buf.String())
	}
	if strings.Contains(buf.String(), "<pre") {
		t.Error("highlighter output should not carry its own <pre>")
	}

	buf.Reset()
	ok, err = h.Highlight(&buf, "definitely-not-a-language", "x")
	if err != nil || ok {
		t.Errorf("Highlight(unknown) = %v, %v, want false, nil", ok, err)
	}
	if buf.Len() != 0 {
		t.Errorf("Highlight(unknown) wrote %q", buf.String())
	}
}

func TestHighlighter_CSS(t *testing.T) {
	t.Parallel()

	css := NewHighlighter("monokai").CSS()
	if !strings.Contains(css, ".chroma") {
		t.Errorf("CSS() should style .chroma classes, got %q", css)
	}
}
