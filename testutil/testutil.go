// Package testutil provides testing helpers for generated parse and
// serialize routines.
// This package is designed to be import-cycle safe and can be used from any package.
package testutil

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/broady/jsonconv"
)

// Parse parses input with parse, failing the test on error.
func Parse[T any](t *testing.T, input string, parse jsonconv.ParseFunc[T]) T {
	t.Helper()
	v, err := jsonconv.Unmarshal([]byte(input), parse)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", input, err)
	}
	return v
}

// Write serializes v with write, failing the test on error.
func Write[T any](t *testing.T, v T, write jsonconv.WriteFunc[T]) string {
	t.Helper()
	data, err := jsonconv.Marshal(v, write)
	if err != nil {
		t.Fatalf("failed to write %v: %v", v, err)
	}
	return string(data)
}

// RoundTrip serializes v and parses the result back.
func RoundTrip[T any](t *testing.T, v T, parse jsonconv.ParseFunc[T], write jsonconv.WriteFunc[T]) T {
	t.Helper()
	return Parse(t, Write(t, v, write), parse)
}

// AssertJSONEqual compares two JSON texts as values, ignoring formatting
// and object member order.
func AssertJSONEqual(t *testing.T, want, got string) {
	t.Helper()
	var wantData, gotData any
	if err := json.Unmarshal([]byte(want), &wantData); err != nil {
		t.Fatalf("invalid expected JSON: %v\n%s", err, want)
	}
	if err := json.Unmarshal([]byte(got), &gotData); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got)
	}
	if diff := cmp.Diff(wantData, gotData); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s\ngot: %s", diff, got)
	}
}

// AssertParseError checks that err is a *jsonconv.ParseError with the
// expected code and returns it.
func AssertParseError(t *testing.T, err error, code jsonconv.ErrorCode) *jsonconv.ParseError {
	t.Helper()
	var pe *jsonconv.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError %s, got %v", code, err)
	}
	if pe.Code != code {
		t.Errorf("expected error code %s, got %s (%v)", code, pe.Code, pe)
	}
	return pe
}
