package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseScan   Phase = "scan"   // constant pool scanning
	PhaseFetch  Phase = "fetch"  // reading component bytes
	PhaseDefine Phase = "define" // registering a component
	PhaseLoad   Phase = "load"   // dependency-ordered loading
	PhaseConfig Phase = "config" // CLI and file configuration
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed         Kind = "malformed"
	KindNotFound          Kind = "not_found"
	KindIO                Kind = "io"
	KindMissingDependency Kind = "missing_dependency"
	KindInvariant         Kind = "invariant"
	KindInvalidInput      Kind = "invalid_input"
	KindUnresolvable      Kind = "unresolvable"
)

// Sentinels for errors.Is. A sentinel without a Phase matches any phase.
var (
	ErrMalformed    = &Error{Kind: KindMalformed}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvariant    = &Error{Kind: KindInvariant}
	ErrUnresolvable = &Error{Kind: KindUnresolvable}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string // symbolic component name, dot form
	Path   string // storage path
	Detail string
	Offset int // byte offset into the component, -1 when unknown
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	switch {
	case e.Name != "" && e.Path != "":
		b.WriteString(" ")
		b.WriteString(e.Name)
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteByte(')')
	case e.Name != "":
		b.WriteString(" ")
		b.WriteString(e.Name)
	case e.Path != "":
		b.WriteString(" ")
		b.WriteString(e.Path)
	}

	if e.Offset >= 0 && e.Phase == PhaseScan {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Name sets the symbolic component name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Path sets the storage path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates a malformed component error
func Malformed(offset int, detail string, args ...any) *Error {
	return New(PhaseScan, KindMalformed).Offset(offset).Detail(detail, args...).Build()
}

// Truncated creates a malformed component error for a read past the end of the buffer
func Truncated(offset, need, have int) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindMalformed,
		Offset: offset,
		Detail: fmt.Sprintf("truncated: need %d bytes, %d remaining", need, have),
	}
}

// UnknownTag creates a malformed component error for an unrecognized constant pool tag
func UnknownTag(offset int, tag byte, slot int) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindMalformed,
		Offset: offset,
		Value:  tag,
		Detail: fmt.Sprintf("unknown constant pool item type %d at slot %d", tag, slot),
	}
}

// Invariant creates an internal invariant violation error
func Invariant(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvariant).Detail(detail, args...).Build()
}

// NotFound creates a not-found error for a component path
func NotFound(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseFetch,
		Kind:   KindNotFound,
		Path:   path,
		Offset: -1,
		Cause:  cause,
	}
}

// IO creates a fetch error that is not a missing component
func IO(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseFetch,
		Kind:   KindIO,
		Path:   path,
		Offset: -1,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvalidInput).Detail(detail, args...).Build()
}

// Unresolvable creates an error for a missing dependency the loader cannot satisfy
func Unresolvable(name, detail string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindUnresolvable,
		Name:   name,
		Offset: -1,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Offset: -1,
		Cause:  cause,
	}
}

// WithPath returns err with the storage path recorded when err is an
// *Error that lacks one. err itself is not modified; any other error is
// returned unchanged.
func WithPath(err error, path string) error {
	e, ok := err.(*Error)
	if !ok || e.Path != "" {
		return err
	}
	c := *e
	c.Path = path
	return &c
}

// MissingDependencyError is returned by a definer that needs another,
// not yet defined, component before it can define the requested one.
type MissingDependencyError struct {
	Cause error
	Name  string // dot form
	For   string // component whose definition failed
}

// NewMissingDependency creates a missing dependency error; name may be in
// dot or slash form and is stored in dot form.
func NewMissingDependency(name, forName string) *MissingDependencyError {
	return &MissingDependencyError{
		Name: strings.ReplaceAll(name, "/", "."),
		For:  forName,
	}
}

func (e *MissingDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("[define] missing_dependency ")
	b.WriteString(e.Name)
	if e.For != "" {
		b.WriteString(" required by ")
		b.WriteString(e.For)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type
func (e *MissingDependencyError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingDependencyError:
		return t.Name == "" || t.Name == e.Name
	case *Error:
		return (t.Phase == "" || t.Phase == PhaseDefine) && t.Kind == KindMissingDependency
	}
	return false
}

// MissingDependency reports the missing component name carried by err, if any.
func MissingDependency(err error) (string, bool) {
	var md *MissingDependencyError
	if stderrors.As(err, &md) {
		return md.Name, true
	}
	return "", false
}
