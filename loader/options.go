package loader

import (
	"github.com/wippyai/classload"
	"github.com/wippyai/classload/classpath"
)

// Mode selects how the loader discovers dependencies.
type Mode int

const (
	// ModeAnalyzing scans every component before defining it and defines
	// the dependencies it finds first.
	ModeAnalyzing Mode = iota
	// ModePlain defines components as requested and relies on the
	// definer's missing dependency reports alone.
	ModePlain
)

func (m Mode) String() string {
	switch m {
	case ModeAnalyzing:
		return "analyzing"
	case ModePlain:
		return "plain"
	}
	return "unknown"
}

// ParseMode parses a mode name as printed by Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "analyzing":
		return ModeAnalyzing, true
	case "plain":
		return ModePlain, true
	}
	return ModeAnalyzing, false
}

// Option configures a Loader.
type Option func(*Loader)

// WithMode sets the loading mode. The default is ModeAnalyzing.
func WithMode(m Mode) Option {
	return func(l *Loader) {
		l.mode = m
	}
}

// WithLookup sets the check used to skip components the target
// environment already has. By default the definer is used when it
// implements classload.Lookup; nil disables the check.
func WithLookup(lookup classload.Lookup) Option {
	return func(l *Loader) {
		l.lookup = lookup
		l.lookupSet = true
	}
}

// WithExclude sets the predicate for dependency names that are never
// loaded. The default is classpath.IsPlatformName.
func WithExclude(exclude func(name string) bool) Option {
	return func(l *Loader) {
		l.exclude = exclude
	}
}

// WithScanCache keeps the dependency lists of up to size components,
// keyed by path, across Load calls. Only use it when the fetcher's
// content does not change for the lifetime of the Loader.
func WithScanCache(size int) Option {
	return func(l *Loader) {
		l.cacheSize = size
	}
}

func defaultExclude() func(string) bool {
	return classpath.IsPlatformName
}
