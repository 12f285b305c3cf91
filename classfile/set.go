package classfile

// DependencySet is an insertion-ordered set of dot-form component names.
// The zero value is ready to use.
type DependencySet struct {
	seen  map[string]struct{}
	names []string
}

// NewDependencySet creates a set holding names in the given order.
func NewDependencySet(names ...string) *DependencySet {
	s := &DependencySet{}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name and reports whether it was not already present.
func (s *DependencySet) Add(name string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Contains reports whether name is in the set.
func (s *DependencySet) Contains(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of names.
func (s *DependencySet) Len() int {
	return len(s.names)
}

// Names returns a copy of the names in insertion order.
func (s *DependencySet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Without returns a new set with name removed. Scanning keeps a component's
// reference to itself; callers that want "everything but self" use this.
func (s *DependencySet) Without(name string) *DependencySet {
	out := &DependencySet{}
	for _, n := range s.names {
		if n != name {
			out.Add(n)
		}
	}
	return out
}
