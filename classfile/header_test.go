package classfile_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/classload/classfile"
	clerrors "github.com/wippyai/classload/errors"
	"github.com/wippyai/classload/internal/testclass"
)

func TestParseHeader(t *testing.T) {
	b := testclass.New("com.acme.Impl").
		Super("com.acme.Base").
		Implements("com.acme.Service", "java.io.Closeable")
	b.Long(1)
	b.Double(2)
	b.Field("x", "I")

	h, err := classfile.ParseHeader(b.Bytes())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Name != "com.acme.Impl" {
		t.Errorf("Name = %q", h.Name)
	}
	if h.Super != "com.acme.Base" {
		t.Errorf("Super = %q", h.Super)
	}
	if !reflect.DeepEqual(h.Interfaces, []string{"com.acme.Service", "java.io.Closeable"}) {
		t.Errorf("Interfaces = %v", h.Interfaces)
	}
	if h.Major != 61 {
		t.Errorf("Major = %d, want 61", h.Major)
	}
	want := []string{"com.acme.Base", "com.acme.Service", "java.io.Closeable"}
	if !reflect.DeepEqual(h.Requires(), want) {
		t.Errorf("Requires = %v, want %v", h.Requires(), want)
	}
	if h.IsModule() {
		t.Error("plain class reported as module")
	}
}

func TestParseHeaderModuleInfo(t *testing.T) {
	h, err := classfile.ParseHeader(testclass.ModuleInfo("com.acme.app").Bytes())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if !h.IsModule() {
		t.Error("module-info not reported as module")
	}
	if h.Super != "" || len(h.Requires()) != 0 {
		t.Errorf("module-info requires %v", h.Requires())
	}
	if h.Name != "module-info" {
		t.Errorf("Name = %q", h.Name)
	}
}

func TestParseHeaderBadIndex(t *testing.T) {
	b := testclass.New("com.acme.Odd")
	// Interface index pointing at a Utf8 slot instead of a Class.
	b.Implements("com.acme.Fine")
	data := b.Bytes()

	// The interface index is the last u16 before the field and method
	// counts and the class attribute count.
	pos := len(data) - 8
	data[pos], data[pos+1] = 0x00, 0x01

	_, err := classfile.ParseHeader(data)
	if !errors.Is(err, clerrors.ErrMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	_, err := classfile.ParseHeader([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	if !errors.Is(err, clerrors.ErrMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	valid := testclass.New("com.acme.Short").Bytes()

	tests := []struct {
		name    string
		data    []byte
		section string
	}{
		{"version", valid[:6], "header"},
		{"pool", valid[:14], "constant pool"},
		{"interfaces", valid[:len(valid)-7], "header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := classfile.ParseHeader(tt.data)
			var e *clerrors.Error
			if !errors.As(err, &e) || e.Kind != clerrors.KindMalformed {
				t.Fatalf("expected malformed, got %v", err)
			}
			if !strings.HasPrefix(e.Detail, tt.section+":") {
				t.Errorf("Detail = %q, want %q section", e.Detail, tt.section)
			}
		})
	}
}
