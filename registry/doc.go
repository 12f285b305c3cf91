// Package registry provides target environments for the loader.
//
// Table is an in-memory symbol table. Modules defines each component as a
// host module of a wazero runtime that exports its byte size. Both parse
// the component header and refuse a component whose super class or
// interfaces are not defined yet, reporting the first missing one as an
// *errors.MissingDependencyError so the loader can define it first.
package registry
