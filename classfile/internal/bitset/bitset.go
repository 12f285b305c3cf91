// Package bitset is a slot-indexed bitmap for constant pool classification.
package bitset

// Set is a compact set of pool slot indices.
type Set struct {
	words []uint64
}

// New creates a Set that can hold slots below n without growing.
func New(n int) *Set {
	return &Set{words: make([]uint64, (n+63)/64)}
}

// Add marks slot i. Slots beyond the initial size grow the set, since
// pool references are not validated against the pool count.
func (s *Set) Add(i uint16) {
	w := int(i / 64)
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}
	s.words[w] |= 1 << (i % 64)
}

// Has reports whether slot i is marked.
func (s *Set) Has(i int) bool {
	w := i / 64
	if i < 0 || w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(i)%64)) != 0
}
