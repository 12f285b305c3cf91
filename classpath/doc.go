// Package classpath maps between component names and storage paths and
// provides the fetchers that read component bytes from memory, a
// directory or a jar archive.
//
// Names use dot form ("com.acme.Widget"); paths use slash form with the
// component suffix ("com/acme/Widget.class"):
//
//	p := classpath.NameToPath("com.acme.Widget") // com/acme/Widget.class
//	n := classpath.PathToName(p)                 // com.acme.Widget
//
// BuildIndex scans a whole class path concurrently and answers
// dependency and dependent queries without defining anything.
package classpath
