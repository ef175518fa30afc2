// Package options turns command-line flags and jsonconv.toml into a
// generator configuration.
package options

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/broady/jsonconv/jsonconvgen"
)

// DefaultConfigFile is loaded when present and --config is not given.
const DefaultConfigFile = "jsonconv.toml"

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `help:"Path to a jsonconv.toml file (default: ./jsonconv.toml if present)." short:"c" type:"path"`
	Verbose bool   `help:"Log debug output." short:"v"`
	Color   string `help:"Colorize output: auto, always or never." enum:"auto,always,never" default:"auto"`
}

// Source selects the types to generate for. Flags override the config file.
type Source struct {
	Provider   string   `help:"Type source: source, reflection or schema."`
	Pkg        []string `help:"Package pattern to load (repeatable)." short:"p"`
	Type       []string `help:"Root type name (repeatable). Default: types marked //jsonconv:generate." short:"t"`
	Schema     string   `help:"YAML schema file; implies --provider=schema." type:"path"`
	Package    string   `help:"Name of the generated package."`
	SingleFile bool     `help:"Write all routines to one file."`
	Set        []string `help:"Override a config key, e.g. --set native_map_order=true." placeholder:"KEY=VALUE"`
}

// Load builds the configuration for out. Values are layered: the config
// file, then flags, then --set overrides.
func Load(g *Globals, src *Source, out string) (*jsonconvgen.Config, error) {
	cfg := &jsonconvgen.Config{}
	path := g.Config
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if path != "" {
		loaded, err := jsonconvgen.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if out != "" {
		cfg.OutDir = out
	}
	if src.Schema != "" {
		cfg.SchemaFile = src.Schema
		if src.Provider == "" {
			cfg.Provider = jsonconvgen.ProviderSchema
		}
	}
	if src.Provider != "" {
		cfg.Provider = src.Provider
	}
	if len(src.Pkg) > 0 {
		cfg.Packages = src.Pkg
	}
	if len(src.Type) > 0 {
		cfg.RootTypes = src.Type
	}
	if src.Package != "" {
		cfg.Package = src.Package
	}
	if src.SingleFile {
		cfg.SingleFile = true
	}
	if err := jsonconvgen.ApplyOverrides(cfg, src.Set); err != nil {
		return nil, err
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	cfg.Logger = g.Logger(os.Stderr)
	return cfg, nil
}

// Logger returns a text logger writing to w.
func (g *Globals) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Stdout returns standard output wrapped for ANSI colors, and whether
// colors should be used on it.
func (g *Globals) Stdout() (io.Writer, bool) {
	return colorable.NewColorable(os.Stdout), g.UseColor(os.Stdout)
}

// UseColor applies the --color setting to f.
func (g *Globals) UseColor(f *os.File) bool {
	switch g.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if color.NoColor {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
