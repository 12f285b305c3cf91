package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderU8(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.U8()
		if err != nil {
			t.Fatalf("U8 %d: %v", i, err)
		}
		if b != want {
			t.Errorf("U8 %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Position() != 3 {
		t.Errorf("final position: got %d, want 3", r.Position())
	}

	_, err := r.U8()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderBigEndian(t *testing.T) {
	r := NewReader([]byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x2A})

	v32, err := r.U32()
	if err != nil {
		t.Fatalf("U32: %v", err)
	}
	if v32 != 0xCAFEBABE {
		t.Errorf("U32: got 0x%08x, want 0xCAFEBABE", v32)
	}

	v16, err := r.U16()
	if err != nil {
		t.Fatalf("U16: %v", err)
	}
	if v16 != 42 {
		t.Errorf("U16: got %d, want 42", v16)
	}

	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
}

func TestReaderTruncated(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader) error
	}{
		{"U16", func(r *Reader) error { _, err := r.U16(); return err }},
		{"U32", func(r *Reader) error { _, err := r.U32(); return err }},
		{"View", func(r *Reader) error { _, err := r.View(2); return err }},
		{"Skip", func(r *Reader) error { return r.Skip(2) }},
		{"SkipNegative", func(r *Reader) error { return r.Skip(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader([]byte{0x01})
			err := tt.read(r)
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("expected ErrTruncated, got %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Have != 1 {
				t.Errorf("Have: got %d, want 1", pe.Have)
			}
			if r.Position() != 0 {
				t.Errorf("failed read moved cursor to %d", r.Position())
			}
		})
	}
}

func TestReaderViewAliases(t *testing.T) {
	data := []byte{'a', 'b', 'c', 'd'}
	r := NewReader(data)
	if err := r.Skip(1); err != nil {
		t.Fatal(err)
	}
	v, err := r.View(2)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if string(v) != "bc" {
		t.Errorf("View: got %q, want bc", v)
	}
	if cap(v) != 2 {
		t.Errorf("View capacity: got %d, want 2", cap(v))
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}
}

func TestReaderSeek(t *testing.T) {
	r := NewReader([]byte{0x10, 0x20, 0x30})
	if err := r.Seek(2); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b, err := r.U8()
	if err != nil || b != 0x30 {
		t.Fatalf("U8 after Seek: got 0x%02x, %v", b, err)
	}
	if err := r.Seek(4); !errors.Is(err, ErrTruncated) {
		t.Errorf("Seek past end: got %v", err)
	}
}

func TestWrapError(t *testing.T) {
	r := NewReader(nil)
	_, err := r.U16()
	wrapped := r.WrapError("constant pool", err)
	if !errors.Is(wrapped, ErrTruncated) {
		t.Errorf("wrapped error lost ErrTruncated: %v", wrapped)
	}
	want := "classfile: constant pool at position 0: unexpected end of class data"
	if wrapped.Error() != want {
		t.Errorf("Error(): got %q, want %q", wrapped.Error(), want)
	}

	plain := r.WrapError("header", errors.New("boom"))
	if plain.Section != "header" || plain.Position != 0 || plain.Err.Error() != "boom" {
		t.Errorf("WrapError on plain error: %+v", plain)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U32(0xCAFEBABE)
	w.U16(0x0102)
	w.Byte(7)
	w.U64(0x0102030405060708)
	w.UTF8([]byte("hi"))
	w.WriteBytes([]byte{0xFF})

	want := []byte{
		0xCA, 0xFE, 0xBA, 0xBE,
		0x01, 0x02,
		0x07,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x00, 0x02, 'h', 'i',
		0xFF,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes: got % x, want % x", w.Bytes(), want)
	}
	if w.Len() != len(want) {
		t.Errorf("Len: got %d, want %d", w.Len(), len(want))
	}

	r := NewReader(w.Bytes())
	magic, _ := r.U32()
	if magic != 0xCAFEBABE {
		t.Errorf("read back magic: 0x%08x", magic)
	}
}
