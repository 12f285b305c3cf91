package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/classload"
	"github.com/wippyai/classload/classfile"
)

// Entry is a component defined in a Table.
type Entry struct {
	Header *classfile.Header
	Size   int
}

// Name implements classload.Handle.
func (e *Entry) Name() string {
	return e.Header.Name
}

// Table is an in-memory symbol table of defined components. Like a class
// loader, it refuses a component whose super class or interfaces are not
// defined yet. Thread-safe.
type Table struct {
	entries map[string]*Entry
	opts    options
	order   []string
	mu      sync.RWMutex
}

var _ classload.Registry = (*Table)(nil)

// NewTable creates an empty table.
func NewTable(opts ...Option) *Table {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Table{
		entries: make(map[string]*Entry),
		opts:    o,
	}
}

// Define parses the header of data and records it under name. Defining a
// name twice returns the existing entry.
func (t *Table) Define(_ context.Context, name string, data []byte) (classload.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[name]; ok {
		return e, nil
	}

	hdr, err := header(name, data)
	if err != nil {
		return nil, err
	}
	if err := checkRequires(hdr, t.opts.platform, t.definedLocked); err != nil {
		return nil, err
	}

	e := &Entry{Header: hdr, Size: len(data)}
	t.entries[name] = e
	t.order = append(t.order, name)
	Logger().Debug("table define", zap.String("name", name), zap.Int("size", e.Size))
	return e, nil
}

func (t *Table) definedLocked(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Lookup implements classload.Lookup.
func (t *Table) Lookup(name string) (classload.Handle, bool) {
	e, ok := t.Entry(name)
	if !ok {
		return nil, false
	}
	return e, true
}

// Entry returns the entry defined under name.
func (t *Table) Entry(name string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	return e, ok
}

// Names returns the defined names in definition order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of defined components.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
