package registry

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/classload"
	"github.com/wippyai/classload/errors"
)

// SizeExport is the function every component module exports. It takes no
// parameters and returns the byte length of the component as i64.
const SizeExport = "component_size"

// Module is a component defined as a wazero host module.
type Module struct {
	mod api.Module
}

// Name implements classload.Handle.
func (m *Module) Name() string {
	return m.mod.Name()
}

// Size calls the module's size export.
func (m *Module) Size(ctx context.Context) (uint64, error) {
	fn := m.mod.ExportedFunction(SizeExport)
	if fn == nil {
		return 0, errors.Invariant(errors.PhaseDefine, "module %s has no %s export", m.mod.Name(), SizeExport)
	}
	results, err := fn.Call(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDefine, errors.KindInvariant, err, "call "+SizeExport)
	}
	return results[0], nil
}

// Modules defines every component as a host module of a wazero runtime,
// named after the component. Defined components are found again through
// the runtime's module namespace. Thread-safe.
type Modules struct {
	runtime wazero.Runtime
	opts    options
	order   []string
	mu      sync.Mutex
}

var _ classload.Registry = (*Modules)(nil)

// NewModules creates a registry backed by a new wazero runtime. The
// caller must Close it.
func NewModules(ctx context.Context, opts ...Option) *Modules {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Modules{
		runtime: wazero.NewRuntime(ctx),
		opts:    o,
	}
}

// Runtime returns the backing runtime.
func (m *Modules) Runtime() wazero.Runtime {
	return m.runtime
}

// Define instantiates a host module for the component. Defining a name
// twice returns the existing module.
func (m *Modules) Define(ctx context.Context, name string, data []byte) (classload.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mod := m.runtime.Module(name); mod != nil {
		return &Module{mod: mod}, nil
	}

	hdr, err := header(name, data)
	if err != nil {
		return nil, err
	}
	defined := func(n string) bool { return m.runtime.Module(n) != nil }
	if err := checkRequires(hdr, m.opts.platform, defined); err != nil {
		return nil, err
	}

	size := uint64(len(data))
	mod, err := m.runtime.NewHostModuleBuilder(name).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = size
		}), nil, []api.ValueType{api.ValueTypeI64}).
		Export(SizeExport).
		Instantiate(ctx)
	if err != nil {
		return nil, errors.New(errors.PhaseDefine, errors.KindInvariant).
			Name(name).
			Cause(err).
			Detail("instantiate host module").
			Build()
	}

	m.order = append(m.order, name)
	Logger().Debug("module define", zap.String("name", name), zap.Uint64("size", size))
	return &Module{mod: mod}, nil
}

// Lookup implements classload.Lookup.
func (m *Modules) Lookup(name string) (classload.Handle, bool) {
	mod := m.runtime.Module(name)
	if mod == nil {
		return nil, false
	}
	return &Module{mod: mod}, true
}

// Names returns the defined names in definition order.
func (m *Modules) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Close closes the runtime and every module defined in it.
func (m *Modules) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}
