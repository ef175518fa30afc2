package gen

import (
	"context"
	"fmt"
	"os"

	"github.com/broady/jsonconv/cmd/jsonconv/internal/options"
	"github.com/broady/jsonconv/internal/directive"
	"github.com/broady/jsonconv/internal/discover"
	"github.com/broady/jsonconv/internal/runner"
	"github.com/broady/jsonconv/jsonconvgen"
)

type Cmd struct {
	Out string `arg:"" optional:"" help:"Output directory for generated files (default: config out, or .)." type:"path"`

	options.Source `embed:""`
}

func (c *Cmd) Run(g *options.Globals) error {
	cfg, err := options.Load(g, &c.Source, c.Out)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if cfg.Provider == jsonconvgen.ProviderReflection {
		return runReflection(ctx, cfg)
	}

	result, err := jsonconvgen.Generate(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d types, %d files in %s (package %s)\n",
		result.TypesGenerated, len(result.Files), cfg.OutDir, result.Package)
	if n := len(result.Warnings); n > 0 {
		fmt.Printf("! %d warnings\n", n)
	}
	return nil
}

// runReflection generates with the reflection provider, which needs the
// types compiled into a program.
func runReflection(ctx context.Context, cfg *jsonconvgen.Config) error {
	pattern := "."
	if len(cfg.Packages) > 0 {
		pattern = cfg.Packages[0]
	}
	found, err := directive.ParseDir(pattern, cfg.Dir)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	types := cfg.RootTypes
	if len(types) == 0 {
		types = found.TypeNames()
	}
	if len(types) == 0 {
		return fmt.Errorf("no root types: package %s has no //jsonconv:generate directives", found.PackagePath)
	}
	pkg, err := discover.Package(found.Dir)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	result, err := runner.Exec(ctx, runner.Options{
		PkgPath:   found.PackagePath,
		Types:     types,
		ModuleDir: pkg.ModuleDir,
		Config:    cfg,
		Stderr:    os.Stderr,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d types, %d files in %s\n", result.TypesGenerated, result.Files, cfg.OutDir)
	return nil
}
