// Package emit provides an indentation-tracking line and block writer for
// generated Go source.
package emit

import (
	"bytes"
	"fmt"
	"go/scanner"
	"go/token"
	"strings"
)

// Writer accumulates source text for one unit. Every BeginBlock must be
// matched by exactly one EndBlock before Finish.
type Writer struct {
	buf    bytes.Buffer
	indent string
	depth  int
	open   []string // headers of open blocks, for diagnostics

	// underflows counts EndBlock or ElseBlock calls made at depth 0.
	underflows int
}

// New returns a Writer that indents with unit, or a tab if unit is empty.
func New(unit string) *Writer {
	if unit == "" {
		unit = "\t"
	}
	return &Writer{indent: unit}
}

// Depth returns the current indentation depth.
func (w *Writer) Depth() int { return w.depth }

// WriteLine writes content at the current indentation followed by a newline.
func (w *Writer) WriteLine(content string) {
	if content == "" {
		w.buf.WriteByte('\n')
		return
	}
	for i := 0; i < w.depth; i++ {
		w.buf.WriteString(w.indent)
	}
	w.buf.WriteString(content)
	w.buf.WriteByte('\n')
}

// Linef is WriteLine with fmt formatting.
func (w *Writer) Linef(format string, args ...any) {
	w.WriteLine(fmt.Sprintf(format, args...))
}

// BeginBlock writes header followed by the block-open brace and indents.
// Go requires the brace on the header line.
func (w *Writer) BeginBlock(header string) {
	if header == "" {
		w.WriteLine("{")
	} else {
		w.WriteLine(header + " {")
	}
	w.open = append(w.open, header)
	w.depth++
}

// Blockf is BeginBlock with fmt formatting.
func (w *Writer) Blockf(format string, args ...any) {
	w.BeginBlock(fmt.Sprintf(format, args...))
}

// EndBlock outdents and writes the block-close brace.
func (w *Writer) EndBlock() {
	w.closeBlock()
	w.WriteLine("}")
}

// ElseBlock closes the current block and opens a chained one on the same
// line, as in "} else if cond {".
func (w *Writer) ElseBlock(header string) {
	w.closeBlock()
	w.WriteLine("} " + header + " {")
	w.open = append(w.open, header)
	w.depth++
}

func (w *Writer) closeBlock() {
	if w.depth == 0 {
		w.underflows++
		return
	}
	w.depth--
	w.open = w.open[:len(w.open)-1]
}

// BlankLine writes an empty line.
func (w *Writer) BlankLine() {
	w.buf.WriteByte('\n')
}

// Comment writes each line of text as a // comment.
func (w *Writer) Comment(text string) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			w.WriteLine("//")
			continue
		}
		w.WriteLine("// " + line)
	}
}

// String returns the text written so far.
func (w *Writer) String() string { return w.buf.String() }

// Finish returns the text and an error if any block is still open or was
// closed without being opened. A close without an open is reported even if
// later blocks bring the depth back to zero.
func (w *Writer) Finish() (string, error) {
	if w.underflows > 0 {
		return w.buf.String(), fmt.Errorf("emit: %d EndBlock(s) without matching BeginBlock", w.underflows)
	}
	if w.depth > 0 {
		return w.buf.String(), fmt.Errorf("emit: %d unclosed block(s), innermost %q", w.depth, w.open[len(w.open)-1])
	}
	return w.buf.String(), nil
}

// CheckBalance scans Go source text and reports whether braces, brackets
// and parentheses are balanced. Delimiters inside strings, runes and
// comments are ignored.
func CheckBalance(src string) error {
	var s scanner.Scanner
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var scanErr error
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("emit: %s: %s", pos, msg)
		}
	}, 0)

	var stack []token.Token
	closing := map[token.Token]token.Token{
		token.RBRACE: token.LBRACE,
		token.RBRACK: token.LBRACK,
		token.RPAREN: token.LPAREN,
	}
	for {
		pos, tok, _ := s.Scan()
		if tok == token.EOF {
			break
		}
		switch tok {
		case token.LBRACE, token.LBRACK, token.LPAREN:
			stack = append(stack, tok)
		case token.RBRACE, token.RBRACK, token.RPAREN:
			if len(stack) == 0 || stack[len(stack)-1] != closing[tok] {
				return fmt.Errorf("emit: unbalanced %s at %s", tok, fset.Position(pos))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if scanErr != nil {
		return scanErr
	}
	if len(stack) > 0 {
		return fmt.Errorf("emit: %d unclosed %s", len(stack), stack[len(stack)-1])
	}
	return nil
}
