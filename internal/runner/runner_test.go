package runner

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/broady/jsonconv/jsonconvgen"
)

func TestGenerateRunner(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		contains []string // strings that must appear in output
	}{
		{
			name: "single type",
			opts: Options{PkgPath: "example.com/shop/models", Types: []string{"Cart"}},
			contains: []string{
				`target "example.com/shop/models"`,
				"target.Cart{},",
				"jsonconvgen.LoadConfigFile(os.Args[1])",
				"jsonconvgen.Generate(context.Background(), cfg)",
			},
		},
		{
			name: "several types keep order",
			opts: Options{PkgPath: "example.com/m", Types: []string{"B", "A"}},
			contains: []string{
				"target.B{},\n\t\ttarget.A{},",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := generateRunner(tt.opts)
			if err != nil {
				t.Fatalf("generateRunner() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(src), want) {
					t.Errorf("runner missing %q:\n%s", want, src)
				}
			}
		})
	}
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonconv.toml")
	cfg := &jsonconvgen.Config{
		OutDir:         "/abs/out",
		Provider:       jsonconvgen.ProviderSource,
		Packages:       []string{"./models"},
		RootTypes:      []string{"Cart"},
		Package:        "models",
		SingleFile:     true,
		NativeMapOrder: true,
		ParsePrefix:    "Decode",
	}
	if err := writeConfig(path, cfg); err != nil {
		t.Fatalf("writeConfig() error = %v", err)
	}
	got, err := jsonconvgen.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	want := &jsonconvgen.Config{
		OutDir:         "/abs/out",
		Provider:       jsonconvgen.ProviderReflection,
		Package:        "models",
		SingleFile:     true,
		NativeMapOrder: true,
		ParsePrefix:    "Decode",
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(jsonconvgen.Config{}, "Logger"), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestExec_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name:    "no types",
			opts:    Options{PkgPath: "example.com/m"},
			wantErr: "no root types",
		},
		{
			name:    "unexported type",
			opts:    Options{PkgPath: "example.com/m", Types: []string{"cart"}},
			wantErr: "not exported",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Exec(context.Background(), tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Exec() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
