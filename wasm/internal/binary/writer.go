package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for WASM binary encoding.
//
// Every write method targets the innermost open scope, so sections,
// function bodies, and other length-prefixed blocks can be written
// without precomputing their size: push a scope, write its payload, pop
// it, and the popped bytes are spliced into the parent scope behind a
// u32 LEB128 length prefix.
type Writer struct {
	scopes []*bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{scopes: []*bytes.Buffer{{}}}
}

func (w *Writer) buf() *bytes.Buffer {
	return w.scopes[len(w.scopes)-1]
}

// PushScope opens a new nested buffer that subsequent writes target,
// until the matching PopScope.
func (w *Writer) PushScope() {
	w.scopes = append(w.scopes, &bytes.Buffer{})
}

// PopScope closes the innermost scope opened by PushScope and splices
// its contents into the parent scope as a u32-length-prefixed block.
// Calling PopScope on the outermost (NewWriter-created) scope panics.
func (w *Writer) PopScope() {
	if len(w.scopes) == 1 {
		panic("binary: PopScope without matching PushScope")
	}
	inner := w.scopes[len(w.scopes)-1]
	w.scopes = w.scopes[:len(w.scopes)-1]
	w.WriteU32(uint32(inner.Len()))
	w.buf().Write(inner.Bytes())
}

// Bytes returns the outermost scope's written bytes. Any scope opened
// with PushScope must already have been closed with PopScope.
func (w *Writer) Bytes() []byte {
	return w.scopes[0].Bytes()
}

// Len returns the number of bytes written to the current scope.
func (w *Writer) Len() int {
	return w.buf().Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf().WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf().Write(data)
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	buf := w.buf()
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteU64 writes an unsigned LEB128 encoded uint64.
func (w *Writer) WriteU64(v uint64) {
	buf := w.buf()
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteS32 writes a signed LEB128 encoded int32.
func (w *Writer) WriteS32(v int32) {
	w.WriteS64(int64(v))
}

// WriteS64 writes a signed LEB128 encoded int64.
func (w *Writer) WriteS64(v int64) {
	buf := w.buf()
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && (b&0x40) == 0) || (v == -1 && (b&0x40) != 0) {
			more = false
		} else {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

// WriteName writes a UTF-8 encoded name (length-prefixed).
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf().WriteString(s)
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf().Write(b[:])
}
