package jsonconv

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

type writeFrame struct {
	kind container
	n    int // values written so far
}

// writer implements TokenWriter by buffering compact JSON text.
type writer struct {
	out       io.Writer
	buf       []byte
	stack     []writeFrame
	afterName bool
	err       error
}

// NewWriter returns a TokenWriter producing compact JSON on w.
// Nothing reaches w until Flush is called.
func NewWriter(w io.Writer) TokenWriter {
	return &writer{out: w, buf: make([]byte, 0, 512)}
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// beginValue writes the separator a value needs at the current position.
func (w *writer) beginValue() bool {
	if w.err != nil {
		return false
	}
	if w.afterName {
		w.afterName = false
		return true
	}
	if n := len(w.stack); n > 0 {
		top := &w.stack[n-1]
		if top.kind == inObject {
			w.fail(errors.New("jsonconv: value written in object without a name"))
			return false
		}
		if top.n > 0 {
			w.buf = append(w.buf, ',')
		}
		top.n++
	}
	return true
}

func (w *writer) end(kind container, delim byte) {
	if w.err != nil {
		return
	}
	n := len(w.stack)
	if n == 0 || w.stack[n-1].kind != kind || w.afterName {
		w.fail(fmt.Errorf("jsonconv: unbalanced %q", delim))
		return
	}
	w.stack = w.stack[:n-1]
	w.buf = append(w.buf, delim)
}

func (w *writer) BeginObject() {
	if !w.beginValue() {
		return
	}
	w.stack = append(w.stack, writeFrame{kind: inObject})
	w.buf = append(w.buf, '{')
}

func (w *writer) EndObject() { w.end(inObject, '}') }

func (w *writer) BeginArray() {
	if !w.beginValue() {
		return
	}
	w.stack = append(w.stack, writeFrame{kind: inArray})
	w.buf = append(w.buf, '[')
}

func (w *writer) EndArray() { w.end(inArray, ']') }

func (w *writer) Name(name string) {
	if w.err != nil {
		return
	}
	n := len(w.stack)
	if n == 0 || w.stack[n-1].kind != inObject || w.afterName {
		w.fail(fmt.Errorf("jsonconv: property name %q outside of object", name))
		return
	}
	top := &w.stack[n-1]
	if top.n > 0 {
		w.buf = append(w.buf, ',')
	}
	top.n++
	w.appendQuoted(name)
	w.buf = append(w.buf, ':')
	w.afterName = true
}

func (w *writer) appendQuoted(s string) {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		w.fail(err)
		return
	}
	w.buf = append(w.buf, b...)
}

func (w *writer) String(s string) {
	if w.beginValue() {
		w.appendQuoted(s)
	}
}

func (w *writer) Int(n int64) {
	if w.beginValue() {
		w.buf = strconv.AppendInt(w.buf, n, 10)
	}
}

func (w *writer) Uint(n uint64) {
	if w.beginValue() {
		w.buf = strconv.AppendUint(w.buf, n, 10)
	}
}

func (w *writer) Float(f float64, bitSize int) {
	if !w.beginValue() {
		return
	}
	var (
		b   []byte
		err error
	)
	if bitSize == 32 {
		b, err = json.Marshal(float32(f))
	} else {
		b, err = json.Marshal(f)
	}
	if err != nil {
		w.fail(err)
		return
	}
	w.buf = append(w.buf, b...)
}

func (w *writer) Bool(v bool) {
	if w.beginValue() {
		w.buf = strconv.AppendBool(w.buf, v)
	}
}

func (w *writer) Time(t time.Time) {
	if !w.beginValue() {
		return
	}
	w.buf = append(w.buf, '"')
	w.buf = t.AppendFormat(w.buf, time.RFC3339Nano)
	w.buf = append(w.buf, '"')
}

func (w *writer) Duration(d time.Duration) {
	if w.beginValue() {
		w.buf = strconv.AppendInt(w.buf, int64(d), 10)
	}
}

func (w *writer) Base64(b []byte) {
	if b == nil {
		w.Null()
		return
	}
	if !w.beginValue() {
		return
	}
	w.buf = append(w.buf, '"')
	w.buf = base64.StdEncoding.AppendEncode(w.buf, b)
	w.buf = append(w.buf, '"')
}

func (w *writer) Null() {
	if w.beginValue() {
		w.buf = append(w.buf, "null"...)
	}
}

func (w *writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.buf) == 0 {
		return nil
	}
	_, err := w.out.Write(w.buf)
	w.buf = w.buf[:0]
	if err != nil {
		w.fail(err)
	}
	return err
}
