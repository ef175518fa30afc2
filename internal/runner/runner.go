// Package runner executes reflection-based code generation from the command
// line by building and running a small program that imports the user's
// package.
//
// The program is written to a temporary directory inside the user's module
// so that it resolves the package and its dependencies the same way the
// module does. The generator configuration is handed over as a TOML file.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"

	"github.com/broady/jsonconv/jsonconvgen"
)

// Options configures the runner.
type Options struct {
	// PkgPath is the import path of the package declaring Types.
	PkgPath string

	// Types are the root type names in that package.
	Types []string

	// ModuleDir is the directory containing the user's go.mod.
	ModuleDir string

	// Config is passed to the program. OutDir is made absolute.
	Config *jsonconvgen.Config

	// Stderr receives the program's log output. Default: os.Stderr.
	Stderr io.Writer
}

// Result is what the program reports on success.
type Result struct {
	TypesGenerated int
	Files          int
}

// Exec builds and runs the generator program.
func Exec(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Types) == 0 {
		return nil, fmt.Errorf("no root types")
	}
	for _, name := range opts.Types {
		if !token.IsExported(name) {
			return nil, fmt.Errorf("type %s is not exported", name)
		}
	}

	tmpDir, err := os.MkdirTemp(opts.ModuleDir, "jsonconv-run-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := *opts.Config
	if cfg.OutDir, err = filepath.Abs(cfg.OutDir); err != nil {
		return nil, err
	}
	configPath := filepath.Join(tmpDir, "jsonconv.toml")
	if err := writeConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	src, err := generateRunner(opts)
	if err != nil {
		return nil, fmt.Errorf("generate runner: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "main.go"), src, 0644); err != nil {
		return nil, fmt.Errorf("write runner: %w", err)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var stdout bytes.Buffer
	// Use -mod=mod to allow updating go.mod/go.sum if needed
	cmd := exec.CommandContext(ctx, "go", "run", "-mod=mod", ".", configPath)
	cmd.Dir = tmpDir
	cmd.Env = append(os.Environ(), "GOWORK=off")
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run generator: %w", err)
	}

	var result Result
	if _, err := fmt.Sscanf(stdout.String(), "%d %d", &result.TypesGenerated, &result.Files); err != nil {
		return nil, fmt.Errorf("parse generator output: %w\nraw output: %s", err, stdout.Bytes())
	}
	return &result, nil
}

// writeConfig stores cfg as TOML with the provider forced to reflection.
func writeConfig(path string, cfg *jsonconvgen.Config) error {
	cfg.Provider = jsonconvgen.ProviderReflection
	cfg.Packages = nil
	cfg.RootTypes = nil
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// generateRunner creates the program's main.go.
func generateRunner(opts Options) ([]byte, error) {
	tmpl, err := template.New("runner").Parse(runnerTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, opts); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

const runnerTemplate = `package main

import (
	"context"
	"fmt"
	"os"

	"github.com/broady/jsonconv/jsonconvgen"

	target {{printf "%q" .PkgPath}}
)

func main() {
	cfg, err := jsonconvgen.LoadConfigFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsonconv gen: %v\n", err)
		os.Exit(1)
	}
	cfg.Types = []any{
{{- range .Types}}
		target.{{.}}{},
{{- end}}
	}
	result, err := jsonconvgen.Generate(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsonconv gen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d %d\n", result.TypesGenerated, len(result.Files))
}
`
