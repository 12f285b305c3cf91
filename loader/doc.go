// Package loader defines components in dependency order.
//
// A Loader keeps an explicit stack of pending components. In analyzing
// mode the component on top is fetched and scanned with classfile.Scan;
// every dependency that is neither loaded nor excluded nor already known to
// the target environment is pushed above it, and this repeats until the
// top stays put. The top is then defined. When the definer reports a
// missing dependency, that dependency is moved to the top and the failed
// component is retried after it:
//
//	l, err := loader.New(fetcher, table)
//	if err != nil {
//		return err
//	}
//	h, err := l.Load(ctx, "com/acme/Main.class")
//
// Plain mode skips scanning and relies on missing dependency reports
// alone. A report that cannot lead to progress, such as a component
// naming itself or a dependency that was already defined, fails the load
// with an error matching errors.ErrUnresolvable.
package loader
