package pagekeep

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// fakeRenderer echoes the markup length instead of printing a PDF.
type fakeRenderer struct {
	mu       sync.Mutex
	calls    int
	closed   int
	markup   string
	geometry Geometry
	opts     RenderOptions
	err      error
	closeErr error
}

func (f *fakeRenderer) Render(ctx context.Context, markup string, g Geometry, opts RenderOptions) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.markup = markup
	f.geometry = g
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fakePDF(markup), nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed++
	return f.closeErr
}

func fakePDF(markup string) []byte {
	return []byte(fmt.Sprintf("%%PDF-fake %d", len(markup)))
}

// newTestConverter builds a converter with a fake renderer.
func newTestConverter(t *testing.T, opts ...Option) (*Converter, *fakeRenderer) {
	t.Helper()

	r := &fakeRenderer{}
	conv, err := NewConverter(append([]Option{WithRenderer(r)}, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv, r
}

func floatRef(v float64) *float64 { return &v }
