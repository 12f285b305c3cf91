// Package classload defines JVM class files in dependency order.
//
// A class file names the classes it needs in its constant pool. This
// module reads those names without building a class model, and uses them
// to define a requested class only after everything it depends on has
// been defined in some target environment.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	classload/           Root package with the Fetcher, Definer and Lookup capabilities
//	├── classfile/       Constant pool scanner and class header parser
//	├── classpath/       Name and path mapping, fetchers, concurrent dependency index
//	├── loader/          Dependency-ordered loader with missing dependency retry
//	├── registry/        Target environments: in-memory table, wazero host modules
//	├── errors/          Structured error types for debugging
//	└── cmd/classdeps/   CLI for inspecting jars and class directories
//
// # Quick Start
//
// Load a class and everything it needs from a jar:
//
//	jar, err := classpath.OpenArchive("app.jar")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer jar.Close()
//
//	table := registry.NewTable()
//	l, err := loader.New(jar, table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h, err := l.Load(ctx, "com/acme/Main.class")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(h.Name(), table.Names())
//
// Scan a single class file:
//
//	deps, err := classfile.Scan(data)
//	fmt.Println(deps.Names()) // [com.acme.Main java.lang.Object ...]
//
// # Capabilities
//
// The loader never reads files or defines classes itself. It is given a
// Fetcher that returns raw bytes by storage path and a Definer that
// registers bytes under a name. A Definer reports a dependency it cannot
// resolve with *errors.MissingDependencyError; the loader defines that
// dependency and retries. A Definer that also implements Lookup lets the
// loader skip classes the environment already has.
//
// # Thread Safety
//
// Scan, ParseHeader, fetchers, Table and Modules are safe for concurrent
// use. A Loader keeps no state between Load calls and is safe for
// concurrent use when its capabilities are.
package classload
