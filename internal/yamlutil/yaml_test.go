package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-pagekeep/internal/yamlutil"
)

type pageSettings struct {
	Paper  string  `yaml:"paper"`
	Margin float64 `yaml:"margin"`
	Strict bool    `yaml:"strict"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		strict  bool
		want    pageSettings
		wantErr error
		anyErr  bool
	}{
		{
			name: "valid",
			data: "paper: a4\nmargin: 0.4\nstrict: true\n",
			want: pageSettings{Paper: "a4", Margin: 0.4, Strict: true},
		},
		{
			name:    "empty",
			data:    "",
			wantErr: yamlutil.ErrEmptyInput,
		},
		{
			name: "unknown key tolerated when lenient",
			data: "paper: letter\ncolour: red\n",
			want: pageSettings{Paper: "letter"},
		},
		{
			name:   "unknown key rejected when strict",
			data:   "paper: letter\ncolour: red\n",
			strict: true,
			anyErr: true,
		},
		{
			name:   "type mismatch",
			data:   "margin: wide\n",
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got pageSettings
			err := yamlutil.Decode([]byte(tt.data), &got, tt.strict)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("Decode() expected error, got nil")
				}
			default:
				if err != nil {
					t.Fatalf("Decode() unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Decode() = %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestDecode_NilDestination(t *testing.T) {
	t.Parallel()

	if err := yamlutil.Decode([]byte("a: 1"), nil, false); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("Decode() error = %v, want ErrNilDestination", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("paper: " + strings.Repeat("x", yamlutil.MaxInputSize))
	var got pageSettings
	if err := yamlutil.Decode(data, &got, false); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("Decode() error = %v, want ErrInputTooLarge", err)
	}
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("strict by default", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "unknown.yaml")
		if err := os.WriteFile(path, []byte("paper: a4\nunknown: 1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		var got pageSettings
		if err := yamlutil.DecodeFile(path, &got); err == nil {
			t.Error("DecodeFile() expected error for unknown key")
		}
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "ok.yaml")
		if err := os.WriteFile(path, []byte("paper: legal\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		var got pageSettings
		if err := yamlutil.DecodeFile(path, &got); err != nil {
			t.Fatalf("DecodeFile() unexpected error: %v", err)
		}
		if got.Paper != "legal" {
			t.Errorf("Paper = %q, want %q", got.Paper, "legal")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var got pageSettings
		err := yamlutil.DecodeFile(filepath.Join(dir, "missing.yaml"), &got)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("DecodeFile() error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(pageSettings{Paper: "a5", Margin: 1})
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	var back pageSettings
	if err := yamlutil.Decode(out, &back, true); err != nil {
		t.Fatalf("Decode() of marshaled output: %v", err)
	}
	if back.Paper != "a5" || back.Margin != 1 {
		t.Errorf("decoded = %+v, want paper a5 margin 1", back)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	if got := yamlutil.Describe(nil); got != "" {
		t.Errorf("Describe(nil) = %q, want empty", got)
	}

	var got pageSettings
	err := yamlutil.Decode([]byte("paper: a4\nmargin: wide\n"), &got, true)
	if err == nil {
		t.Fatal("Decode() expected error")
	}
	if msg := yamlutil.Describe(err); !strings.Contains(msg, "margin") {
		t.Errorf("Describe() = %q, should point at the margin line", msg)
	}
}
