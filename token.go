// Package jsonconv is the runtime used by code generated with jsonconvgen.
//
// Generated parse routines pull tokens from a [TokenReader] and generated
// serialize routines push tokens into a [TokenWriter]. NewReader and
// NewWriter return the implementations bundled with this package; any other
// implementation of the two interfaces can be used instead.
package jsonconv

import "time"

// Kind identifies the token a TokenReader is positioned at.
type Kind int

const (
	KindNone Kind = iota // before the first Next or after the end of input
	KindBeginObject
	KindEndObject
	KindBeginArray
	KindEndArray
	KindName // property name inside an object
	KindString
	KindNumber
	KindBool
	KindNull
)

// String returns the string representation of the token kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBeginObject:
		return "BeginObject"
	case KindEndObject:
		return "EndObject"
	case KindBeginArray:
		return "BeginArray"
	case KindEndArray:
		return "EndArray"
	case KindName:
		return "Name"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// TokenReader is a pull-style JSON token reader.
//
// A reader is positioned at one token at a time. Accessors read the current
// token and never advance; Next moves to the following token. Parse routines
// are entered positioned at the first token of their value and return
// positioned at its last token.
type TokenReader interface {
	// Kind returns the kind of the current token.
	Kind() Kind

	// Next advances to the next token. It returns io.EOF after the last
	// top-level value.
	Next() error

	// Skip advances past the value starting at the current token. For
	// BeginObject and BeginArray the reader ends positioned at the matching
	// end token. Scalars are left in place.
	Skip() error

	// Bytes returns the bytes of the current name, string or number, with
	// escapes decoded. The slice must not be modified; it stays valid after
	// Next, so a name can be compared once its value has been reached.
	Bytes() []byte

	String() (string, error)
	Int(bitSize int) (int64, error)
	Uint(bitSize int) (uint64, error)
	Float(bitSize int) (float64, error)
	Bool() (bool, error)
	Time() (time.Time, error)
	Duration() (time.Duration, error)

	// Base64 decodes the current string token as standard base64.
	// A null token yields a nil slice.
	Base64() ([]byte, error)
}

// TokenWriter is a push-style JSON token writer.
//
// Writers keep the first error they encounter; every later call is a no-op
// and Flush reports the error.
type TokenWriter interface {
	BeginObject()
	EndObject()
	BeginArray()
	EndArray()

	// Name writes a property name. The next value written is its value.
	Name(name string)

	String(s string)
	Int(n int64)
	Uint(n uint64)
	Float(f float64, bitSize int)
	Bool(b bool)
	Time(t time.Time)
	Duration(d time.Duration)

	// Base64 writes b as a standard base64 string, or null when b is nil.
	Base64(b []byte)
	Null()

	// Flush writes buffered output and returns the first error encountered.
	Flush() error
}
