// Package discover works out which Go package a directory holds, or will
// hold once generated files are written to it.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// Result describes the package in a directory.
type Result struct {
	PackagePath string
	PackageName string // declared name; empty if the directory has no Go files yet
	ModulePath  string
	ModuleDir   string // directory containing go.mod
	Dir         string // absolute package directory
}

// ErrNoModule is returned when no go.mod is found above a directory.
var ErrNoModule = errors.New("no go.mod found")

// Package inspects dir, which need not exist. The import path is derived
// from the enclosing module; the package name is read from existing
// non-test Go files.
func Package(dir string) (*Result, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	modDir, modPath, err := findModule(abs)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(modDir, abs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		PackagePath: modPath,
		ModulePath:  modPath,
		ModuleDir:   modDir,
		Dir:         abs,
	}
	if rel != "." {
		result.PackagePath = path.Join(modPath, filepath.ToSlash(rel))
	}

	if !hasGoFiles(abs) {
		return result, nil
	}
	pkgs, err := packages.Load(&packages.Config{Mode: packages.NeedName, Dir: abs}, ".")
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}
	if len(pkgs) == 1 && pkgs[0].Name != "" {
		result.PackageName = pkgs[0].Name
		if pkgs[0].PkgPath != "" {
			result.PackagePath = pkgs[0].PkgPath
		}
	}
	return result, nil
}

// findModule walks up from dir to the nearest go.mod.
func findModule(dir string) (modDir, modPath string, err error) {
	for d := dir; ; {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		if err == nil {
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", "", fmt.Errorf("%s: no module directive", filepath.Join(d, "go.mod"))
			}
			return d, modPath, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", "", err
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", "", fmt.Errorf("%s: %w", dir, ErrNoModule)
		}
		d = parent
	}
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			return true
		}
	}
	return false
}
