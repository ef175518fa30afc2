package jsonconvgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/broady/jsonconv/jsonconvgen/golang"
	"github.com/broady/jsonconv/jsonconvgen/sink"
)

// CheckResult reports how the files on disk differ from fresh output.
type CheckResult struct {
	// Stale lists generated files that are missing or out of date.
	Stale []StaleFile

	// Orphans lists files in the output directory that carry the jsonconv
	// header but would no longer be generated.
	Orphans []string
}

// OK reports whether the output directory is up to date.
func (r *CheckResult) OK() bool {
	return len(r.Stale) == 0 && len(r.Orphans) == 0
}

// StaleFile is a generated file whose disk content differs.
type StaleFile struct {
	Path    string
	Missing bool

	// Diff is a line diff from the disk content to the fresh content.
	// Lines start with "-", "+" or " "; runs of unchanged lines are
	// elided to a "@@" line.
	Diff string
}

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

// Check generates into memory and compares the result with cfg.OutDir.
// Nothing is written.
func Check(ctx context.Context, cfg *Config) (*CheckResult, error) {
	result, err := render(ctx, cfg)
	if err != nil {
		return nil, err
	}
	disk := sink.NewFilesystemSink(cfg.OutDir)
	check := &CheckResult{}
	fresh := make(map[string]bool, len(result.Files))

	for _, f := range result.Files {
		fresh[f.Path] = true
		existing, err := disk.ReadFile(f.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			check.Stale = append(check.Stale, StaleFile{Path: f.Path, Missing: true})
		case err != nil:
			return nil, err
		case !bytes.Equal(existing, f.Content):
			check.Stale = append(check.Stale, StaleFile{
				Path: f.Path,
				Diff: LineDiff(string(existing), string(f.Content)),
			})
		}
	}

	entries, err := os.ReadDir(cfg.OutDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || fresh[name] {
			continue
		}
		content, err := os.ReadFile(filepath.Join(cfg.OutDir, name))
		if err != nil {
			return nil, err
		}
		if bytes.HasPrefix(content, []byte(golang.Header)) {
			check.Orphans = append(check.Orphans, name)
		}
	}

	logger(cfg).Debug("checked",
		slog.String("dir", cfg.OutDir),
		slog.Int("stale", len(check.Stale)),
		slog.Int("orphans", len(check.Orphans)))
	return check, nil
}

// Err returns an error describing the differences, or nil if r is OK.
func (r *CheckResult) Err() error {
	if r.OK() {
		return nil
	}
	var parts []string
	for _, s := range r.Stale {
		if s.Missing {
			parts = append(parts, s.Path+" is missing")
		} else {
			parts = append(parts, s.Path+" is out of date")
		}
	}
	for _, o := range r.Orphans {
		parts = append(parts, o+" is no longer generated")
	}
	return fmt.Errorf("generated code is stale: %s", strings.Join(parts, ", "))
}

// LineDiff returns a line-oriented diff of two texts.
func LineDiff(old, new string) string {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffpatch.DiffDelete:
			writeLines(&out, "-", text)
		case diffpatch.DiffInsert:
			writeLines(&out, "+", text)
		case diffpatch.DiffEqual:
			if len(diffs) == 1 {
				continue
			}
			var head, tail []string
			if i > 0 {
				head = text[:min(contextLines, len(text))]
			}
			if i < len(diffs)-1 {
				tail = text[max(len(text)-contextLines, 0):]
			}
			if len(head)+len(tail) >= len(text) {
				writeLines(&out, " ", text)
				continue
			}
			writeLines(&out, " ", head)
			out.WriteString("@@\n")
			writeLines(&out, " ", tail)
		}
	}
	return out.String()
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(b *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		b.WriteString(prefix)
		b.WriteString(strings.TrimSuffix(l, "\n"))
		b.WriteString("\n")
	}
}
