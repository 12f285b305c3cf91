package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered big-endian writing for class file encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// U16 writes a big-endian uint16.
func (w *Writer) U16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// U32 writes a big-endian uint32.
func (w *Writer) U32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// U64 writes a big-endian uint64.
func (w *Writer) U64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// UTF8 writes a u2 length-prefixed byte string. The caller supplies the
// encoded bytes.
func (w *Writer) UTF8(data []byte) {
	w.U16(uint16(len(data)))
	w.buf.Write(data)
}
