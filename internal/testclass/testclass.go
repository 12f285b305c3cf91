// Package testclass builds synthetic class files for tests and examples.
package testclass

import (
	"math"
	"strings"

	"github.com/wippyai/classload/internal/binary"
)

// Constant pool tags, duplicated here so the builder does not depend on
// the package it is used to test.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldRef           = 9
	tagMethodRef          = 10
	tagInterfaceMethodRef = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagInvokeDynamic      = 18
	tagModule             = 19
)

// Access flags.
const (
	AccPublic = 0x0001
	AccSuper  = 0x0020
	AccModule = 0x8000
)

// Attr is a raw attribute attached to a field or method.
type Attr struct {
	Name string
	Data []byte
}

type member struct {
	attrs  []Attr
	access uint16
	name   uint16
	desc   uint16
}

// Builder assembles a class file. Pool entries are deduplicated by
// content, so asking for the same class twice returns the same slot.
type Builder struct {
	pool       *binary.Writer
	utf8       map[string]uint16
	classes    map[string]uint16
	interfaces []uint16
	fields     []member
	methods    []member
	next       uint16
	access     uint16
	this       uint16
	super      uint16
	major      uint16
}

// New starts a class named name that extends java.lang.Object. Names may
// be in dot or slash form.
func New(name string) *Builder {
	b := &Builder{
		pool:    binary.NewWriter(),
		utf8:    make(map[string]uint16),
		classes: make(map[string]uint16),
		next:    1,
		access:  AccPublic | AccSuper,
		major:   61,
	}
	b.this = b.Class(name)
	b.super = b.Class("java.lang.Object")
	return b
}

// ModuleInfo starts a module descriptor for module name.
func ModuleInfo(module string) *Builder {
	b := New("module-info").Super("").Access(AccModule)
	b.entry(tagModule, u16(b.Utf8(module)))
	return b
}

// Super sets the super class; "" clears it.
func (b *Builder) Super(name string) *Builder {
	if name == "" {
		b.super = 0
		return b
	}
	b.super = b.Class(name)
	return b
}

// Implements appends interfaces.
func (b *Builder) Implements(names ...string) *Builder {
	for _, n := range names {
		b.interfaces = append(b.interfaces, b.Class(n))
	}
	return b
}

// Access sets the class access flags.
func (b *Builder) Access(flags uint16) *Builder {
	b.access = flags
	return b
}

// Field adds a field with the given descriptor.
func (b *Builder) Field(name, desc string, attrs ...Attr) *Builder {
	b.fields = append(b.fields, b.member(name, desc, attrs))
	return b
}

// Method adds a method with the given descriptor.
func (b *Builder) Method(name, desc string, attrs ...Attr) *Builder {
	b.methods = append(b.methods, b.member(name, desc, attrs))
	return b
}

func (b *Builder) member(name, desc string, attrs []Attr) member {
	for _, a := range attrs {
		b.Utf8(a.Name)
	}
	return member{
		access: AccPublic,
		name:   b.Utf8(name),
		desc:   b.Utf8(desc),
		attrs:  attrs,
	}
}

// Utf8 adds a text entry.
func (b *Builder) Utf8(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	idx := b.RawUtf8([]byte(s))
	b.utf8[s] = idx
	return idx
}

// RawUtf8 adds a text entry from already encoded bytes, without
// deduplication.
func (b *Builder) RawUtf8(data []byte) uint16 {
	w := binary.NewWriter()
	w.UTF8(data)
	return b.entry(tagUtf8, w.Bytes())
}

// Class adds a class reference. Dots are stored as slashes.
func (b *Builder) Class(name string) uint16 {
	name = strings.ReplaceAll(name, ".", "/")
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	idx := b.entry(tagClass, u16(b.Utf8(name)))
	b.classes[name] = idx
	return idx
}

// String adds a string constant.
func (b *Builder) String(s string) uint16 {
	return b.entry(tagString, u16(b.Utf8(s)))
}

// Integer adds an int constant.
func (b *Builder) Integer(v int32) uint16 {
	return b.entry(tagInteger, u32(uint32(v)))
}

// Float adds a float constant.
func (b *Builder) Float(v float32) uint16 {
	return b.entry(tagFloat, u32(math.Float32bits(v)))
}

// Long adds a long constant, which takes two slots.
func (b *Builder) Long(v int64) uint16 {
	idx := b.entry(tagLong, u64(uint64(v)))
	b.next++
	return idx
}

// Double adds a double constant, which takes two slots.
func (b *Builder) Double(v float64) uint16 {
	idx := b.entry(tagDouble, u64(math.Float64bits(v)))
	b.next++
	return idx
}

// NameAndType adds a name and descriptor pair.
func (b *Builder) NameAndType(name, desc string) uint16 {
	return b.entry(tagNameAndType, append(u16(b.Utf8(name)), u16(b.Utf8(desc))...))
}

// FieldRef adds a field reference.
func (b *Builder) FieldRef(class, name, desc string) uint16 {
	return b.ref(tagFieldRef, class, name, desc)
}

// MethodRef adds a method reference.
func (b *Builder) MethodRef(class, name, desc string) uint16 {
	return b.ref(tagMethodRef, class, name, desc)
}

// InterfaceMethodRef adds an interface method reference.
func (b *Builder) InterfaceMethodRef(class, name, desc string) uint16 {
	return b.ref(tagInterfaceMethodRef, class, name, desc)
}

func (b *Builder) ref(tag byte, class, name, desc string) uint16 {
	c := b.Class(class)
	nt := b.NameAndType(name, desc)
	return b.entry(tag, append(u16(c), u16(nt)...))
}

// MethodType adds a method type constant.
func (b *Builder) MethodType(desc string) uint16 {
	return b.entry(tagMethodType, u16(b.Utf8(desc)))
}

// MethodHandle adds a method handle of the given reference kind.
func (b *Builder) MethodHandle(kind byte, ref uint16) uint16 {
	return b.entry(tagMethodHandle, append([]byte{kind}, u16(ref)...))
}

// InvokeDynamic adds an invokedynamic call site.
func (b *Builder) InvokeDynamic(bootstrap uint16, name, desc string) uint16 {
	return b.entry(tagInvokeDynamic, append(u16(bootstrap), u16(b.NameAndType(name, desc))...))
}

// Raw adds an entry with an arbitrary tag and payload.
func (b *Builder) Raw(tag byte, payload []byte) uint16 {
	return b.entry(tag, payload)
}

func (b *Builder) entry(tag byte, payload []byte) uint16 {
	idx := b.next
	b.pool.Byte(tag)
	b.pool.WriteBytes(payload)
	b.next++
	return idx
}

// Bytes encodes the class file.
func (b *Builder) Bytes() []byte {
	w := binary.NewWriter()
	w.U32(0xCAFEBABE)
	w.U16(0)
	w.U16(b.major)
	w.U16(b.next)
	w.WriteBytes(b.pool.Bytes())
	w.U16(b.access)
	w.U16(b.this)
	w.U16(b.super)
	w.U16(uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		w.U16(i)
	}
	for _, table := range [][]member{b.fields, b.methods} {
		w.U16(uint16(len(table)))
		for _, m := range table {
			w.U16(m.access)
			w.U16(m.name)
			w.U16(m.desc)
			w.U16(uint16(len(m.attrs)))
			for _, a := range m.attrs {
				w.U16(b.utf8[a.Name])
				w.U32(uint32(len(a.Data)))
				w.WriteBytes(a.Data)
			}
		}
	}
	// class attributes
	w.U16(0)
	return w.Bytes()
}

func u16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func u32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func u64(v uint64) []byte { return append(u32(uint32(v>>32)), u32(uint32(v))...) }
