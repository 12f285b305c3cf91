package classfile

import (
	"github.com/wippyai/classload/errors"
	"github.com/wippyai/classload/internal/binary"
)

// AccModule is the access flag of a module-info class file.
const AccModule = 0x8000

// Header is the identity part of a class file: what it is, what it
// extends and what it implements. Definers use it to find the components
// that must exist before this one can be defined.
type Header struct {
	Name       string
	Super      string // empty for java.lang.Object and module descriptors
	Interfaces []string
	Minor      uint16
	Major      uint16
	Access     uint16
}

// IsModule reports whether the class file is a module descriptor.
func (h *Header) IsModule() bool {
	return h.Access&AccModule != 0
}

// Requires returns the super class followed by the interfaces, the names
// a runtime must resolve while defining the component.
func (h *Header) Requires() []string {
	out := make([]string, 0, len(h.Interfaces)+1)
	if h.Super != "" {
		out = append(out, h.Super)
	}
	return append(out, h.Interfaces...)
}

// ParseHeader decodes the version, access flags, this class, super class
// and interfaces of a class file. It indexes the constant pool but does
// not look at fields, methods or attributes.
func ParseHeader(data []byte) (*Header, error) {
	r := binary.NewReader(data)
	magic, err := r.U32()
	if err != nil {
		return nil, malformed(r, sectionHeader, err)
	}
	if magic != Magic {
		return nil, errors.Malformed(0, "not a class file: magic 0x%08x", magic)
	}

	h := &Header{}
	if h.Minor, err = r.U16(); err != nil {
		return nil, malformed(r, sectionHeader, err)
	}
	if h.Major, err = r.U16(); err != nil {
		return nil, malformed(r, sectionHeader, err)
	}

	p, err := indexPool(r)
	if err != nil {
		return nil, err
	}

	if h.Access, err = r.U16(); err != nil {
		return nil, malformed(r, sectionHeader, err)
	}
	this, err := r.U16()
	if err != nil {
		return nil, malformed(r, sectionHeader, err)
	}
	super, err := r.U16()
	if err != nil {
		return nil, malformed(r, sectionHeader, err)
	}
	if h.Name, err = p.className(this); err != nil {
		return nil, err
	}
	if super != 0 {
		if h.Super, err = p.className(super); err != nil {
			return nil, err
		}
	}

	n, err := r.U16()
	if err != nil {
		return nil, malformed(r, sectionHeader, err)
	}
	for i := 0; i < int(n); i++ {
		idx, err := r.U16()
		if err != nil {
			return nil, malformed(r, sectionHeader, err)
		}
		name, err := p.className(idx)
		if err != nil {
			return nil, err
		}
		h.Interfaces = append(h.Interfaces, name)
	}
	return h, nil
}

// pool records where each constant pool entry starts.
type pool struct {
	data    []byte
	offsets []int // offset of the entry payload, after the tag
	tags    []Tag
}

func indexPool(r *binary.Reader) (*pool, error) {
	count, err := r.U16()
	if err != nil {
		return nil, malformed(r, sectionPool, err)
	}
	p := &pool{
		offsets: make([]int, count),
		tags:    make([]Tag, count),
	}
	for slot := 1; slot < int(count); slot++ {
		start := r.Position()
		b, err := r.U8()
		if err != nil {
			return nil, malformed(r, sectionPool, err)
		}
		tag := Tag(b)
		size, ok := payloadSize(tag)
		if !ok {
			return nil, errors.UnknownTag(start, b, slot)
		}
		p.tags[slot] = tag
		p.offsets[slot] = r.Position()
		if tag == TagUtf8 {
			n, err := r.U16()
			if err != nil {
				return nil, malformed(r, sectionPool, err)
			}
			size = int(n)
		}
		if err := r.Skip(size); err != nil {
			return nil, malformed(r, sectionPool, err)
		}
		if tag.wide() {
			slot++
		}
	}
	p.data = r.Bytes()
	return p, nil
}

func (p *pool) entry(idx uint16, want Tag) (*binary.Reader, error) {
	if idx == 0 || int(idx) >= len(p.tags) || p.tags[idx] != want {
		got := Tag(0)
		if int(idx) < len(p.tags) {
			got = p.tags[idx]
		}
		return nil, errors.New(errors.PhaseScan, errors.KindMalformed).
			Value(idx).
			Detail("constant pool index %d: want %s, found %s", idx, want, got).
			Build()
	}
	r := binary.NewReader(p.data)
	if err := r.Seek(p.offsets[idx]); err != nil {
		return nil, malformed(r, sectionPool, err)
	}
	return r, nil
}

func (p *pool) utf8(idx uint16) ([]byte, error) {
	r, err := p.entry(idx, TagUtf8)
	if err != nil {
		return nil, err
	}
	n, err := r.U16()
	if err != nil {
		return nil, malformed(r, sectionPool, err)
	}
	lit, err := r.View(int(n))
	if err != nil {
		return nil, malformed(r, sectionPool, err)
	}
	return lit, nil
}

func (p *pool) className(idx uint16) (string, error) {
	r, err := p.entry(idx, TagClass)
	if err != nil {
		return "", err
	}
	nameIdx, err := r.U16()
	if err != nil {
		return "", malformed(r, sectionPool, err)
	}
	lit, err := p.utf8(nameIdx)
	if err != nil {
		return "", err
	}
	return decodeName(lit), nil
}
