package check

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/broady/jsonconv/cmd/jsonconv/internal/options"
	"github.com/broady/jsonconv/jsonconvgen"
)

type Cmd struct {
	Out   string `arg:"" optional:"" help:"Directory holding generated files (default: config out, or .)." type:"path"`
	Quiet bool   `help:"Do not print diffs." short:"q"`

	options.Source `embed:""`
}

func (c *Cmd) Run(g *options.Globals) error {
	cfg, err := options.Load(g, &c.Source, c.Out)
	if err != nil {
		return err
	}
	if cfg.Provider == jsonconvgen.ProviderReflection {
		return fmt.Errorf("check does not support the reflection provider; use source or schema")
	}
	result, err := jsonconvgen.Check(context.Background(), cfg)
	if err != nil {
		return err
	}
	if result.OK() {
		fmt.Printf("✓ generated code in %s is up to date\n", cfg.OutDir)
		return nil
	}
	w, useColor := g.Stdout()
	Report(w, result, useColor, !c.Quiet)
	return result.Err()
}

// Report prints the files that differ and, if diffs is set, how.
func Report(w io.Writer, result *jsonconvgen.CheckResult, useColor, diffs bool) {
	p := newPalette(useColor)
	for _, s := range result.Stale {
		if s.Missing {
			fmt.Fprintf(w, "%s %s\n", p.header("missing:"), s.Path)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", p.header("stale:"), s.Path)
		if diffs {
			printDiff(w, p, s.Diff)
		}
	}
	for _, o := range result.Orphans {
		fmt.Fprintf(w, "%s %s\n", p.header("orphan:"), o)
	}
}

type palette struct {
	header, removed, added, elided func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		header:  mk(color.Bold, color.FgYellow),
		removed: mk(color.FgRed),
		added:   mk(color.FgGreen),
		elided:  mk(color.FgCyan),
	}
}

func printDiff(w io.Writer, p palette, diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "-"):
			text = p.removed(text)
		case strings.HasPrefix(text, "+"):
			text = p.added(text)
		case text == "@@":
			text = p.elided(text)
		}
		fmt.Fprintf(w, "    %s\n", text)
	}
}
