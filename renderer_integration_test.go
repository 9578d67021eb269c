//go:build integration

package pagekeep

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestRodRenderer_Integration(t *testing.T) {
	conv, err := NewConverter(WithTimeout(time.Minute))
	if err != nil {
		t.Fatalf("NewConverter() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })

	rows := strings.Repeat("| cell | cell |\n", 80)
	md := "# Integration\n\n| a | b |\n|---|---|\n" + rows + "\n```go\nfunc main() {}\n```\n"

	res, err := conv.Convert(context.Background(), Input{
		Markdown: md,
		Footer:   &Footer{ShowPageNumber: true, Date: "auto"},
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if !bytes.HasPrefix(res.PDF, []byte("%PDF-")) {
		t.Errorf("PDF starts with %q, want %%PDF-", res.PDF[:min(8, len(res.PDF))])
	}
	if res.Stats.Regions < 2 {
		t.Errorf("Stats.Regions = %d, want table and code regions", res.Stats.Regions)
	}
}

func TestRodRenderer_IntegrationReusesBrowser(t *testing.T) {
	r := NewRodRenderer(time.Minute)
	t.Cleanup(func() { _ = r.Close() })

	for i := range 2 {
		pdf, err := r.Render(context.Background(), "<html><body><p>page</p></body></html>", DefaultGeometry(), RenderOptions{})
		if err != nil {
			t.Fatalf("Render() #%d unexpected error: %v", i, err)
		}
		if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
			t.Errorf("Render() #%d is not a PDF", i)
		}
	}
}
