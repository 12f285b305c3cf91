package loader

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/wippyai/classload"
	"github.com/wippyai/classload/classfile"
	"github.com/wippyai/classload/classpath"
	"github.com/wippyai/classload/errors"
)

// Loader defines a component and everything it needs, dependencies first.
// A Loader holds no per-load state and is safe for concurrent use when its
// fetcher and definer are.
type Loader struct {
	fetcher   classload.Fetcher
	definer   classload.Definer
	lookup    classload.Lookup
	exclude   func(string) bool
	cache     *lru.Cache[string, []string]
	mode      Mode
	cacheSize int
	lookupSet bool
}

// New creates a Loader that reads components through fetcher and
// registers them with definer.
func New(fetcher classload.Fetcher, definer classload.Definer, opts ...Option) (*Loader, error) {
	if fetcher == nil || definer == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "loader needs a fetcher and a definer")
	}
	l := &Loader{
		fetcher: fetcher,
		definer: definer,
		exclude: defaultExclude(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.lookupSet {
		if lk, ok := definer.(classload.Lookup); ok {
			l.lookup = lk
		}
	}
	if l.exclude == nil {
		l.exclude = func(string) bool { return false }
	}
	if l.cacheSize > 0 {
		cache, err := lru.New[string, []string](l.cacheSize)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "scan cache")
		}
		l.cache = cache
	}
	return l, nil
}

// Mode returns the loading mode.
func (l *Loader) Mode() Mode {
	return l.mode
}

// Load defines the component stored at path after every component it
// depends on. It returns the root's handle, or nil without error when path
// is not a component path. A root the lookup already knows is returned
// without fetching it. A failure of the fetcher, the scanner or the
// definer, other than a missing dependency report, aborts the load;
// components defined before the failure stay defined.
func (l *Loader) Load(ctx context.Context, path string) (classload.Handle, error) {
	if !classpath.IsComponentPath(path) {
		return nil, nil
	}
	if l.lookup != nil {
		if h, ok := l.lookup.Lookup(classpath.PathToName(path)); ok {
			return h, nil
		}
	}

	r := &run{
		Loader:  l,
		stack:   newStack(),
		loaded:  make(map[string]bool),
		defined: make(map[string]bool),
		reports: make(map[report]bool),
	}
	r.stack.push(path)

	var root classload.Handle
	for !r.stack.empty() {
		t, data, err := r.settle(ctx)
		if err != nil {
			return nil, err
		}

		h, err := r.define(ctx, t, data)
		if err == nil {
			if t.path == path {
				root = h
			}
			continue
		}

		missing, ok := errors.MissingDependency(err)
		if !ok {
			return nil, err
		}
		if err := r.requeue(t, missing, err); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// LoadAll loads every component path in order and returns the handles of
// the roots. Paths that are not component paths are skipped. The first
// failure aborts.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]classload.Handle, error) {
	handles := make([]classload.Handle, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return handles, err
		}
		h, err := l.Load(ctx, p)
		if err != nil {
			return handles, err
		}
		if h != nil {
			handles = append(handles, h)
		}
	}
	return handles, nil
}

// Dependencies returns the loadable dependencies of the component stored
// at path in push order: excluded names dropped, sorted by
// classpath.CompareDependencies.
func (l *Loader) Dependencies(path string, data []byte) ([]string, error) {
	if l.cache != nil {
		if deps, ok := l.cache.Get(path); ok {
			return deps, nil
		}
	}

	set, err := classfile.Scan(data)
	if err != nil {
		return nil, errors.WithPath(err, path)
	}

	names := set.Names()
	deps := names[:0]
	for _, n := range names {
		if !l.exclude(n) {
			deps = append(deps, n)
		}
	}
	slices.SortFunc(deps, classpath.CompareDependencies)

	if l.cache != nil {
		l.cache.Add(path, deps)
	}
	return deps, nil
}

type report struct {
	name    string
	missing string
}

// run is the state of one Load call. loaded holds every name sinking may
// skip, including lookup hits; defined holds only the names this call
// defined.
type run struct {
	*Loader
	stack   *stack
	loaded  map[string]bool
	defined map[string]bool
	reports map[report]bool
}

// settle returns the task to define next with its bytes. In analyzing mode
// it pushes the unloaded dependencies of the top task until the top no
// longer changes.
func (r *run) settle(ctx context.Context) (*task, []byte, error) {
	for {
		t := r.stack.peek()
		data, err := r.fetcher.Fetch(ctx, t.path)
		if err != nil {
			return nil, nil, errors.WithPath(err, t.path)
		}
		if r.mode == ModePlain {
			return t, data, nil
		}

		deps, err := r.Dependencies(t.path, data)
		if err != nil {
			return nil, nil, err
		}
		for _, dep := range deps {
			if dep == t.name || r.loaded[dep] {
				continue
			}
			if r.lookup != nil {
				if _, ok := r.lookup.Lookup(dep); ok {
					r.loaded[dep] = true
					continue
				}
			}
			if r.stack.push(classpath.NameToPath(dep)) {
				Logger().Debug("queued dependency",
					zap.String("name", dep),
					zap.String("for", t.name),
					zap.Int("depth", r.stack.len()))
			}
		}

		if r.stack.peek() == t {
			return t, data, nil
		}
	}
}

// define registers the top task and pops it on success.
func (r *run) define(ctx context.Context, t *task, data []byte) (classload.Handle, error) {
	h, err := r.definer.Define(ctx, t.name, data)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = classload.Named(t.name)
	}
	r.finish(t, h)
	Logger().Debug("defined component",
		zap.String("name", t.name),
		zap.String("path", t.path))
	return h, nil
}

func (r *run) finish(t *task, h classload.Handle) {
	for _, n := range []string{t.name, h.Name()} {
		r.loaded[n] = true
		r.defined[n] = true
	}
	r.stack.pop()
}

// requeue moves the missing component to the top of the stack so it is
// defined before t is retried. A lookup hit seen while sinking does not
// count as defined, so a stale lookup is corrected here. Reports that
// cannot lead to progress are fatal.
func (r *run) requeue(t *task, missing string, cause error) error {
	var detail string
	switch {
	case missing == "":
		detail = "definer reported a missing dependency without a name"
	case missing == t.name:
		detail = "definer reported the component as its own missing dependency"
	case r.defined[missing]:
		detail = "missing dependency " + missing + " was already defined"
	case r.reports[report{t.name, missing}]:
		detail = "missing dependency " + missing + " reported twice, dependency cycle"
	}
	if detail != "" {
		err := errors.Unresolvable(t.name, detail)
		err.Path = t.path
		err.Cause = cause
		Logger().Warn("unresolvable dependency",
			zap.String("name", t.name),
			zap.String("missing", missing),
			zap.String("reason", detail))
		return err
	}

	r.reports[report{t.name, missing}] = true
	r.stack.pushTop(classpath.NameToPath(missing))
	Logger().Debug("retrying after missing dependency",
		zap.String("name", t.name),
		zap.String("missing", missing))
	return nil
}
