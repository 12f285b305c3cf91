package classload

import "context"

// Handle identifies a component once it has been defined in the target
// environment.
type Handle interface {
	Name() string
}

// Fetcher retrieves the raw bytes of a component by storage path.
// Implementations return an error matching errors.ErrNotFound for a
// missing path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Definer registers component bytes under a symbolic name. It returns an
// *errors.MissingDependencyError when another component must be defined first.
type Definer interface {
	Define(ctx context.Context, name string, data []byte) (Handle, error)
}

// Lookup is a best-effort check against the target environment.
type Lookup interface {
	Lookup(name string) (Handle, bool)
}

// Registry is a Definer that can also report what it has defined.
type Registry interface {
	Definer
	Lookup
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, path string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetchFunc) Fetch(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// DefineFunc adapts a function to Definer.
type DefineFunc func(ctx context.Context, name string, data []byte) (Handle, error)

// Define implements Definer.
func (f DefineFunc) Define(ctx context.Context, name string, data []byte) (Handle, error) {
	return f(ctx, name, data)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(name string) (Handle, bool)

// Lookup implements Lookup.
func (f LookupFunc) Lookup(name string) (Handle, bool) {
	return f(name)
}

// Named is a Handle carrying only a name.
type Named string

// Name implements Handle.
func (n Named) Name() string { return string(n) }
