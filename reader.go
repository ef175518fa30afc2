package jsonconv

import (
	"encoding/base64"
	"io"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

type container int

const (
	inObject container = iota
	inArray
)

type readFrame struct {
	kind      container
	expectKey bool
}

// reader implements TokenReader on top of the go-json streaming decoder.
// Property names are delivered decoded, so escaped names compare equal to
// their literal spelling.
type reader struct {
	dec   *json.Decoder
	stack []readFrame
	kind  Kind
	raw   []byte
	b     bool
}

// NewReader returns a TokenReader reading JSON from r.
// The reader starts at KindNone; call Next to move to the first token.
func NewReader(r io.Reader) TokenReader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &reader{dec: dec}
}

func (d *reader) Kind() Kind { return d.kind }

func (d *reader) Bytes() []byte { return d.raw }

func (d *reader) Next() error {
	tok, err := d.dec.Token()
	if err != nil {
		d.kind = KindNone
		d.raw = nil
		return err
	}
	d.raw = nil
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			d.stack = append(d.stack, readFrame{kind: inObject, expectKey: true})
			d.kind = KindBeginObject
		case '[':
			d.stack = append(d.stack, readFrame{kind: inArray})
			d.kind = KindBeginArray
		case '}':
			d.pop()
			d.kind = KindEndObject
			d.valueDone()
		case ']':
			d.pop()
			d.kind = KindEndArray
			d.valueDone()
		}
	case string:
		if n := len(d.stack); n > 0 && d.stack[n-1].kind == inObject && d.stack[n-1].expectKey {
			d.stack[n-1].expectKey = false
			d.kind = KindName
			d.raw = []byte(v)
			return nil
		}
		d.kind = KindString
		d.raw = []byte(v)
		d.valueDone()
	case json.Number:
		d.kind = KindNumber
		d.raw = []byte(v)
		d.valueDone()
	case float64:
		d.kind = KindNumber
		d.raw = strconv.AppendFloat(nil, v, 'g', -1, 64)
		d.valueDone()
	case bool:
		d.kind = KindBool
		d.b = v
		d.valueDone()
	case nil:
		d.kind = KindNull
		d.valueDone()
	}
	return nil
}

func (d *reader) pop() {
	if n := len(d.stack); n > 0 {
		d.stack = d.stack[:n-1]
	}
}

// valueDone marks the enclosing object, if any, as expecting a key again.
func (d *reader) valueDone() {
	if n := len(d.stack); n > 0 && d.stack[n-1].kind == inObject {
		d.stack[n-1].expectKey = true
	}
}

func (d *reader) Skip() error {
	if d.kind != KindBeginObject && d.kind != KindBeginArray {
		return nil
	}
	depth := len(d.stack)
	for len(d.stack) >= depth {
		if err := d.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (d *reader) String() (string, error) {
	if d.kind != KindString && d.kind != KindName {
		return "", &TokenError{Want: "string", Got: d.kind}
	}
	return string(d.raw), nil
}

func (d *reader) Int(bitSize int) (int64, error) {
	if d.kind != KindNumber {
		return 0, &TokenError{Want: "integer", Got: d.kind}
	}
	return strconv.ParseInt(string(d.raw), 10, bitSize)
}

func (d *reader) Uint(bitSize int) (uint64, error) {
	if d.kind != KindNumber {
		return 0, &TokenError{Want: "unsigned integer", Got: d.kind}
	}
	return strconv.ParseUint(string(d.raw), 10, bitSize)
}

func (d *reader) Float(bitSize int) (float64, error) {
	if d.kind != KindNumber {
		return 0, &TokenError{Want: "number", Got: d.kind}
	}
	if bitSize != 32 {
		bitSize = 64
	}
	return strconv.ParseFloat(string(d.raw), bitSize)
}

func (d *reader) Bool() (bool, error) {
	if d.kind != KindBool {
		return false, &TokenError{Want: "boolean", Got: d.kind}
	}
	return d.b, nil
}

func (d *reader) Time() (time.Time, error) {
	if d.kind != KindString {
		return time.Time{}, &TokenError{Want: "time", Got: d.kind}
	}
	return time.Parse(time.RFC3339Nano, string(d.raw))
}

func (d *reader) Duration() (time.Duration, error) {
	if d.kind != KindNumber {
		return 0, &TokenError{Want: "duration", Got: d.kind}
	}
	n, err := strconv.ParseInt(string(d.raw), 10, 64)
	return time.Duration(n), err
}

func (d *reader) Base64() ([]byte, error) {
	switch d.kind {
	case KindNull:
		return nil, nil
	case KindString:
		return base64.StdEncoding.DecodeString(string(d.raw))
	default:
		return nil, &TokenError{Want: "base64 string", Got: d.kind}
	}
}
