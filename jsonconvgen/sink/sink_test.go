package sink

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const generated = "// Code generated by jsonconv. DO NOT EDIT.\n\npackage models\n"

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"models_jsonconv.go", false},
		{"sub/dir/file.go", false},
		{"", true},
		{"/abs/file.go", true},
		{"C:file.go", true},
		{"../escape.go", true},
		{"a/../b.go", true},
		{"./file.go", true},
		{"a//b.go", true},
		{"a..b.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestIsGenerated(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"header", generated, true},
		{"other generator", "// Code generated by stringer; DO NOT EDIT.\npackage x\n", true},
		{"missing marker", "// Code generated by hand.\npackage x\n", false},
		{"hand written", "package models\n\ntype Record struct{}\n", false},
		{"header after package", "package x\n// Code generated by jsonconv. DO NOT EDIT.\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGenerated([]byte(tt.content)); got != tt.want {
				t.Errorf("IsGenerated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()
	content := []byte(generated)
	if err := s.WriteFile(ctx, "b.go", content); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(ctx, "a.go", content); err != nil {
		t.Fatal(err)
	}
	content[0] = 'X'
	if got := s.Get("b.go"); string(got) != generated {
		t.Errorf("stored content was aliased: %q", got)
	}
	if got := s.Paths(); len(got) != 2 || got[0] != "a.go" || got[1] != "b.go" {
		t.Errorf("Paths() = %v", got)
	}
	if _, err := s.ReadFile("missing.go"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want fs.ErrNotExist", err)
	}
	if err := s.WriteFile(ctx, "../x.go", content); err == nil {
		t.Error("WriteFile accepted a traversal path")
	}
	s.Reset()
	if len(s.Paths()) != 0 {
		t.Error("Reset() did not clear files")
	}
}

func TestMemorySink_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemorySink().WriteFile(ctx, "a.go", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteFile error = %v, want context.Canceled", err)
	}
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i)) + ".go"
			_ = s.WriteFile(context.Background(), name, []byte(generated))
			_ = s.Get(name)
		}(i)
	}
	wg.Wait()
	if n := len(s.Paths()); n != 20 {
		t.Errorf("got %d files, want 20", n)
	}
}

func TestFilesystemSink_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	s := NewFilesystemSink(dir)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "sub/models_jsonconv.go", []byte(generated)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := s.ReadFile("sub/models_jsonconv.go")
	if err != nil || string(got) != generated {
		t.Fatalf("ReadFile() = %q, %v", got, err)
	}
	info, err := os.Stat(filepath.Join(dir, "sub", "models_jsonconv.go"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	// Regenerating over a generated file is allowed.
	if err := s.WriteFile(ctx, "sub/models_jsonconv.go", []byte(generated+"\n")); err != nil {
		t.Errorf("overwrite of generated file failed: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "sub"))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFilesystemSink_Policies(t *testing.T) {
	tests := []struct {
		name     string
		policy   OverwritePolicy
		existing string
		wantErr  error
		anyErr   bool
	}{
		{"generated replaces generated", OverwriteGenerated, generated, nil, false},
		{"generated keeps hand written", OverwriteGenerated, "package models\n", ErrNotGenerated, true},
		{"always replaces hand written", OverwriteAlways, "package models\n", nil, false},
		{"never keeps anything", OverwriteNever, generated, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "f.go"), []byte(tt.existing), 0644); err != nil {
				t.Fatal(err)
			}
			s := &FilesystemSink{Root: dir, Policy: tt.policy}
			err := s.WriteFile(context.Background(), "f.go", []byte(generated))
			if (err != nil) != tt.anyErr {
				t.Fatalf("WriteFile() error = %v, wantErr %v", err, tt.anyErr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("WriteFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilesystemSink_RejectsEscapes(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())
	for _, p := range []string{"../x.go", "/etc/x.go", ""} {
		if err := s.WriteFile(context.Background(), p, []byte(generated)); err == nil {
			t.Errorf("WriteFile(%q) succeeded, want error", p)
		}
	}
}
