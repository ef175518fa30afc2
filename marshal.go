package jsonconv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ParseFunc is the signature of a generated parse routine.
type ParseFunc[T any] func(TokenReader) (T, error)

// WriteFunc is the signature of a generated serialize routine.
type WriteFunc[T any] func(TokenWriter, T)

// Unmarshal parses data as exactly one JSON value using parse.
func Unmarshal[T any](data []byte, parse ParseFunc[T]) (T, error) {
	var zero T
	r := NewReader(bytes.NewReader(data))
	if err := r.Next(); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, io.ErrUnexpectedEOF
		}
		return zero, err
	}
	v, err := parse(r)
	if err != nil {
		return zero, err
	}
	switch err := r.Next(); {
	case errors.Is(err, io.EOF):
		return v, nil
	case err != nil:
		return zero, err
	default:
		return zero, fmt.Errorf("jsonconv: unexpected %s token after top-level value", r.Kind())
	}
}

// Marshal serializes v using write and returns the JSON text.
func Marshal[T any](v T, write WriteFunc[T]) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	write(w, v)
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
