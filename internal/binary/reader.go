package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a read runs past the end of the buffer.
var ErrTruncated = errors.New("unexpected end of class data")

// Reader is a big-endian cursor over a borrowed byte slice. The position
// lives in the Reader value, so independent scans of one buffer never
// observe each other.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Bytes returns the whole underlying buffer, independent of the cursor.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Seek moves the cursor to an absolute position.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return r.truncated(pos - r.pos)
	}
	r.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Len() {
		return r.truncated(n)
	}
	r.pos += n
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (byte, error) {
	if r.Len() < 1 {
		return 0, r.truncated(1)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if r.Len() < 2 {
		return 0, r.truncated(2)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if r.Len() < 4 {
		return 0, r.truncated(4)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// View returns the next n bytes without copying and advances past them.
// The returned slice aliases the underlying buffer.
func (r *Reader) View(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.truncated(n)
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) truncated(need int) error {
	return &ParseError{
		Position: r.pos,
		Need:     need,
		Have:     r.Len(),
		Err:      ErrTruncated,
	}
}

// ParseError represents a read failure with position information.
type ParseError struct {
	Err      error
	Section  string
	Position int
	Need     int
	Have     int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("classfile: %s at position %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("classfile: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError returns err as a ParseError attributed to section. A
// ParseError already in the chain is labeled in place; any other error is
// wrapped at the current position.
func (r *Reader) WrapError(section string, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Section = section
		return pe
	}
	return &ParseError{
		Position: r.pos,
		Section:  section,
		Err:      err,
	}
}
