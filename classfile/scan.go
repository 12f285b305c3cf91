package classfile

import (
	"bytes"
	stderrors "errors"

	"github.com/wippyai/classload/classfile/internal/bitset"
	"github.com/wippyai/classload/errors"
	"github.com/wippyai/classload/internal/binary"
)

// Scan returns every component name the class file in data refers to, in
// first-seen order and dot form. The component's own name is included.
//
// Scan borrows data for the duration of the call and never modifies it.
// It is safe to call concurrently on the same or different buffers.
func Scan(data []byte) (*DependencySet, error) {
	s := &scanner{r: binary.NewReader(data)}
	if err := s.header(); err != nil {
		return nil, err
	}
	if err := s.classify(); err != nil {
		return nil, err
	}
	if err := s.skipMembers(); err != nil {
		return nil, err
	}
	return s.decode()
}

type scanner struct {
	r          *binary.Reader
	classRefs  *bitset.Set
	signatures *bitset.Set
	count      int
}

const (
	sectionHeader  = "header"
	sectionPool    = "constant pool"
	sectionMembers = "members"
)

func (s *scanner) header() error {
	magic, err := s.r.U32()
	if err != nil {
		return malformed(s.r, sectionHeader, err)
	}
	if magic != Magic {
		return errors.Malformed(0, "not a class file: magic 0x%08x", magic)
	}
	if err := s.r.Seek(poolCountOffset); err != nil {
		return malformed(s.r, sectionHeader, err)
	}
	n, err := s.r.U16()
	if err != nil {
		return malformed(s.r, sectionHeader, err)
	}
	s.count = int(n)
	s.classRefs = bitset.New(s.count)
	s.signatures = bitset.New(s.count)
	return nil
}

// classify is pass 1: walk the pool once, skip every payload and mark
// which Utf8 slots hold class names and which hold descriptors.
func (s *scanner) classify() error {
	r := s.r
	for slot := 1; slot < s.count; slot++ {
		start := r.Position()
		b, err := r.U8()
		if err != nil {
			return malformed(r, sectionPool, err)
		}
		tag := Tag(b)
		size, ok := payloadSize(tag)
		if !ok {
			return errors.UnknownTag(start, b, slot)
		}

		switch tag {
		case TagUtf8:
			err = skipUtf8(r)
		case TagNameAndType:
			if err = r.Skip(2); err == nil {
				err = s.mark(s.signatures)
			}
		case TagMethodType:
			err = s.mark(s.signatures)
		case TagClass:
			err = s.mark(s.classRefs)
		default:
			err = r.Skip(size)
		}
		if err != nil {
			return malformed(r, sectionPool, err)
		}
		if tag.wide() {
			slot++
		}
	}
	return nil
}

func skipUtf8(r *binary.Reader) error {
	n, err := r.U16()
	if err != nil {
		return err
	}
	return r.Skip(int(n))
}

func (s *scanner) mark(set *bitset.Set) error {
	idx, err := s.r.U16()
	if err != nil {
		return err
	}
	set.Add(idx)
	return nil
}

// skipMembers walks past the class header, the interface list and the
// field and method tables. Member descriptors are marked as signatures;
// attributes are skipped by their declared length.
func (s *scanner) skipMembers() error {
	r := s.r
	// access_flags, this_class, super_class
	if err := r.Skip(6); err != nil {
		return malformed(r, sectionHeader, err)
	}
	ifaces, err := r.U16()
	if err != nil {
		return malformed(r, sectionHeader, err)
	}
	if err := r.Skip(int(ifaces) * 2); err != nil {
		return malformed(r, sectionHeader, err)
	}

	// fields, then methods
	for table := 0; table < 2; table++ {
		members, err := r.U16()
		if err != nil {
			return malformed(r, sectionMembers, err)
		}
		for m := 0; m < int(members); m++ {
			if err := s.skipMember(); err != nil {
				return malformed(r, sectionMembers, err)
			}
		}
	}
	return nil
}

func (s *scanner) skipMember() error {
	r := s.r
	// access_flags, name_index
	if err := r.Skip(4); err != nil {
		return err
	}
	if err := s.mark(s.signatures); err != nil {
		return err
	}
	attrs, err := r.U16()
	if err != nil {
		return err
	}
	for a := 0; a < int(attrs); a++ {
		if err := r.Skip(2); err != nil {
			return err
		}
		length, err := r.U32()
		if err != nil {
			return err
		}
		if err := r.Skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

// decode is pass 2: walk the pool again and turn marked Utf8 literals
// into names.
func (s *scanner) decode() (*DependencySet, error) {
	r := s.r
	if err := r.Seek(poolOffset); err != nil {
		return nil, malformed(r, sectionPool, err)
	}

	names := &DependencySet{}
	for slot := 1; slot < s.count; slot++ {
		b, err := r.U8()
		if err != nil {
			return nil, malformed(r, sectionPool, err)
		}
		tag := Tag(b)
		size, ok := payloadSize(tag)
		if !ok {
			return nil, errors.Invariant(errors.PhaseScan,
				"tag %d at slot %d passed classification but not decoding", b, slot)
		}

		if tag == TagUtf8 {
			err = s.decodeUtf8(names, slot)
		} else {
			err = r.Skip(size)
		}
		if err != nil {
			return nil, malformed(r, sectionPool, err)
		}
		if tag.wide() {
			slot++
		}
	}
	return names, nil
}

func (s *scanner) decodeUtf8(names *DependencySet, slot int) error {
	n, err := s.r.U16()
	if err != nil {
		return err
	}
	lit, err := s.r.View(int(n))
	if err != nil {
		return err
	}

	signature := s.signatures.Has(slot)
	if s.classRefs.Has(slot) && len(lit) > 0 {
		if lit[0] == arrayMarker {
			signature = true
		} else {
			names.Add(decodeName(lit))
		}
	}
	if signature {
		addSignatureNames(names, lit)
	}
	return nil
}

// addSignatureNames extracts every L<name>; segment of a descriptor. A
// segment without its terminator ends the literal.
func addSignatureNames(names *DependencySet, lit []byte) {
	for i := 0; i < len(lit); i++ {
		if lit[i] != objectMarker {
			continue
		}
		end := bytes.IndexByte(lit[i+1:], objectTerminate)
		if end < 0 {
			return
		}
		names.Add(decodeName(lit[i+1 : i+1+end]))
		i += end + 1
	}
}

// malformed converts a cursor failure in section into a MalformedComponent
// error that names the section.
func malformed(r *binary.Reader, section string, err error) error {
	pe := r.WrapError(section, err)
	if stderrors.Is(pe.Err, binary.ErrTruncated) {
		e := errors.Truncated(pe.Position, pe.Need, pe.Have)
		e.Detail = section + ": " + e.Detail
		return e
	}
	return errors.New(errors.PhaseScan, errors.KindMalformed).
		Offset(pe.Position).
		Cause(pe.Err).
		Detail("%s: read class data", section).
		Build()
}
