package classpath

import "strings"

const (
	// Suffix is the storage suffix of a component.
	Suffix = ".class"
	// ModuleDescriptor is the reserved module descriptor file name. It has
	// the component suffix but is never loadable content.
	ModuleDescriptor = "module-info.class"
)

// PathToName converts a storage path to a dot-form name:
// "com/acme/Widget.class" becomes "com.acme.Widget".
func PathToName(path string) string {
	return strings.ReplaceAll(strings.TrimSuffix(path, Suffix), "/", ".")
}

// NameToPath converts a name to its storage path. Dot and slash forms map
// to the same path; a trailing ".class" on the name is dropped first.
func NameToPath(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, Suffix), ".", "/") + Suffix
}

// IsComponentPath reports whether path names loadable component content.
func IsComponentPath(path string) bool {
	return strings.HasSuffix(path, Suffix) && !strings.HasSuffix(path, ModuleDescriptor)
}

// IsPlatformName reports whether name belongs to the platform itself,
// whose components are always present and never loaded from a class path.
func IsPlatformName(name string) bool {
	return strings.HasPrefix(name, "java.")
}

// CompareDependencies orders names by nesting depth, counted as '$'
// separators, then lexically. Outer classes sort before their nested
// classes.
func CompareDependencies(a, b string) int {
	da, db := strings.Count(a, "$"), strings.Count(b, "$")
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	}
	return strings.Compare(a, b)
}
