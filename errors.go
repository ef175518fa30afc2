package jsonconv

import (
	"fmt"
)

// ErrorCode represents a machine-readable parse error code.
type ErrorCode string

const (
	// CodeUnexpectedToken reports that a required start token was absent.
	CodeUnexpectedToken ErrorCode = "unexpected_token"
	// CodeInvalidCharacter reports an empty string for a character-typed value.
	CodeInvalidCharacter ErrorCode = "invalid_character"
)

// ParseError is returned by generated parse routines.
// Errors from TokenReader accessors are returned unchanged and never wrapped
// in a ParseError.
type ParseError struct {
	Code ErrorCode
	// Type is the Go type, or Type.Field, being parsed.
	Type string
	// Token is the kind of the offending token.
	Token Kind
}

// Sentinels for use with errors.Is; they match any ParseError with the same code.
var (
	ErrUnexpectedToken  = &ParseError{Code: CodeUnexpectedToken}
	ErrInvalidCharacter = &ParseError{Code: CodeInvalidCharacter}
)

// NewParseError creates a ParseError. Generated code calls it with the
// reader's current token kind.
func NewParseError(code ErrorCode, typ string, tok Kind) *ParseError {
	return &ParseError{Code: code, Type: typ, Token: tok}
}

func (e *ParseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %s token", e.Code, e.Token)
	}
	return fmt.Sprintf("%s: parsing %s: %s token", e.Code, e.Type, e.Token)
}

// Is reports whether target is a ParseError with the same code.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Code == e.Code
}

// TokenError is returned by TokenReader accessors called on a token of the
// wrong kind.
type TokenError struct {
	Want string
	Got  Kind
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("jsonconv: cannot read %s token as %s", e.Got, e.Want)
}
