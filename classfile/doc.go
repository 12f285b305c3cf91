// Package classfile extracts component dependencies from class file bytes.
//
// Scan walks the constant pool twice without building a parse tree. The
// first pass skips every entry by its tag width and marks which Utf8 slots
// are class names and which are descriptors; after the pool it skips the
// header, interfaces, fields and methods, marking member descriptors. The
// second pass decodes only the marked literals:
//
//	deps, err := classfile.Scan(data)
//	if err != nil {
//	    return err // errors.ErrMalformed for a bad magic or pool tag
//	}
//	for _, name := range deps.Without(self).Names() {
//	    fmt.Println(name) // "com.acme.Widget"
//	}
//
// Array class names ("[Lcom/acme/Widget;") go through the descriptor rule
// and yield their element type. Long and Double entries occupy two slots in
// both passes.
//
// ParseHeader decodes just the identity of a class: its name, super class
// and interfaces, which is what a runtime needs while defining it.
package classfile
