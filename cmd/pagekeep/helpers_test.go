package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pagekeep "github.com/alnah/go-pagekeep"
)

// fakeRenderer stands in for headless Chrome.
type fakeRenderer struct {
	mu     sync.Mutex
	calls  int
	footer *pagekeep.Footer
	err    error
}

func (r *fakeRenderer) Render(_ context.Context, markup string, _ pagekeep.Geometry, opts pagekeep.RenderOptions) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.footer = opts.Footer
	if r.err != nil {
		return nil, r.err
	}
	return []byte(fmt.Sprintf("%%PDF-fake %d", len(markup))), nil
}

func (r *fakeRenderer) Close() error { return nil }

// testEnv returns an environment with captured output, a fixed clock, an
// empty process environment and the fake renderer.
func testEnv(r *fakeRenderer) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:     func() time.Time { return time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC) },
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getenv:  func(string) string { return "" },
		Environ: func() []string { return nil },
		Options: []pagekeep.Option{pagekeep.WithRenderer(r)},
	}, &stdout, &stderr
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
