// Package errors provides structured error types for the classload module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the component name, storage path, byte offset and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDefine, errors.KindInvalidInput).
//		Name("com.acme.Widget").
//		Path("com/acme/Widget.class").
//		Detail("class file declares %s", other).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed(0, "not a class file")
//	err := errors.NotFound("com/acme/Widget.class", cause)
//
// A definer that needs another component first returns a
// MissingDependencyError; the missing name is a field, never parsed out of
// the message:
//
//	return nil, errors.NewMissingDependency("com.acme.Base", "com.acme.Widget")
//
// All errors implement the standard error interface and support errors.Is/As.
// The phase-less sentinels ErrMalformed, ErrNotFound, ErrInvariant and
// ErrUnresolvable match errors of that kind from any phase.
package errors
