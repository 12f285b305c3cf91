package loader_test

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/classload"
	"github.com/wippyai/classload/classpath"
	"github.com/wippyai/classload/errors"
	"github.com/wippyai/classload/internal/testclass"
	"github.com/wippyai/classload/loader"
)

// recorder is a definer that records definition order. A name listed in
// requires fails with a missing dependency until all its requirements are
// defined.
type recorder struct {
	defined  map[string]bool
	calls    map[string]int
	requires map[string][]string
	fail     map[string]error
	order    []string
	mu       sync.Mutex
}

func newRecorder() *recorder {
	return &recorder{
		defined:  make(map[string]bool),
		calls:    make(map[string]int),
		requires: make(map[string][]string),
		fail:     make(map[string]error),
	}
}

func (r *recorder) Define(_ context.Context, name string, _ []byte) (classload.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[name]++
	if err, ok := r.fail[name]; ok {
		return nil, err
	}
	for _, dep := range r.requires[name] {
		if !r.defined[dep] {
			return nil, errors.NewMissingDependency(dep, name)
		}
	}
	r.defined[name] = true
	r.order = append(r.order, name)
	return classload.Named(name), nil
}

// lookupRecorder also answers lookups from its definitions.
type lookupRecorder struct {
	*recorder
}

func (r lookupRecorder) Lookup(name string) (classload.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defined[name] {
		return classload.Named(name), true
	}
	return nil, false
}

// chain is X -> Y -> Z: X holds a field of type Y, Y extends Z.
func chain() classpath.Map {
	m := classpath.Map{}
	m.Put("app.X", testclass.New("app.X").Field("y", "Lapp/Y;").Bytes())
	m.Put("app.Y", testclass.New("app.Y").Super("app.Z").Bytes())
	m.Put("app.Z", testclass.New("app.Z").Bytes())
	return m
}

func mustLoader(t *testing.T, f classload.Fetcher, d classload.Definer, opts ...loader.Option) *loader.Loader {
	t.Helper()
	l, err := loader.New(f, d, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestLoadDependencyOrder(t *testing.T) {
	rec := newRecorder()
	l := mustLoader(t, chain(), rec)

	h, err := l.Load(context.Background(), "app/X.class")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h == nil || h.Name() != "app.X" {
		t.Fatalf("handle = %v, want app.X", h)
	}

	want := []string{"app.Z", "app.Y", "app.X"}
	if !slices.Equal(rec.order, want) {
		t.Errorf("order = %v, want %v", rec.order, want)
	}
	for name, n := range rec.calls {
		if n != 1 {
			t.Errorf("%s defined %d times, want 1", name, n)
		}
	}
}

func TestLoadRetryConvergence(t *testing.T) {
	// The definer needs A <- B <- C, which no scan can see: the classes do
	// not reference each other.
	m := classpath.Map{}
	for _, n := range []string{"A", "B", "C"} {
		m.Put(n, testclass.New(n).Bytes())
	}

	for _, mode := range []loader.Mode{loader.ModeAnalyzing, loader.ModePlain} {
		t.Run(mode.String(), func(t *testing.T) {
			rec := newRecorder()
			rec.requires["A"] = []string{"B"}
			rec.requires["B"] = []string{"C"}
			l := mustLoader(t, m, rec, loader.WithMode(mode))

			h, err := l.Load(context.Background(), "A.class")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if h.Name() != "A" {
				t.Errorf("handle = %s, want A", h.Name())
			}
			if want := []string{"C", "B", "A"}; !slices.Equal(rec.order, want) {
				t.Errorf("order = %v, want %v", rec.order, want)
			}
			if rec.calls["A"] != 2 {
				t.Errorf("A define calls = %d, want 2", rec.calls["A"])
			}
			if rec.calls["C"] != 1 {
				t.Errorf("C define calls = %d, want 1", rec.calls["C"])
			}
		})
	}
}

func TestLoadRootHandleAfterRequeue(t *testing.T) {
	// A references D, and the definer needs A before D, so D is defined
	// last in the call.
	m := classpath.Map{}
	m.Put("app.A", testclass.New("app.A").Field("d", "Lapp/D;").Bytes())
	m.Put("app.D", testclass.New("app.D").Bytes())
	rec := newRecorder()
	rec.requires["app.D"] = []string{"app.A"}
	l := mustLoader(t, m, rec)

	h, err := l.Load(context.Background(), "app/A.class")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h == nil || h.Name() != "app.A" {
		t.Fatalf("handle = %v, want app.A", h)
	}
	if want := []string{"app.A", "app.D"}; !slices.Equal(rec.order, want) {
		t.Errorf("order = %v, want %v", rec.order, want)
	}
}

func TestLoadStaleLookup(t *testing.T) {
	// The lookup claims B exists but the definer disagrees.
	stale := classload.LookupFunc(func(name string) (classload.Handle, bool) {
		if name == "B" {
			return classload.Named(name), true
		}
		return nil, false
	})
	m := classpath.Map{}
	m.Put("A", testclass.New("A").Field("b", "LB;").Bytes())
	m.Put("B", testclass.New("B").Bytes())

	for _, mode := range []loader.Mode{loader.ModeAnalyzing, loader.ModePlain} {
		t.Run(mode.String(), func(t *testing.T) {
			rec := newRecorder()
			rec.requires["A"] = []string{"B"}
			l := mustLoader(t, m, rec, loader.WithMode(mode), loader.WithLookup(stale))

			h, err := l.Load(context.Background(), "A.class")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if h.Name() != "A" {
				t.Errorf("handle = %s, want A", h.Name())
			}
			if want := []string{"B", "A"}; !slices.Equal(rec.order, want) {
				t.Errorf("order = %v, want %v", rec.order, want)
			}
			if rec.calls["B"] != 1 {
				t.Errorf("B define calls = %d, want 1", rec.calls["B"])
			}
		})
	}
}

func TestLoadPlainModeDoesNotScan(t *testing.T) {
	// Plain mode never parses the bytes, so garbage defines fine.
	m := classpath.Map{"a/A.class": []byte("not a class"), "a/B.class": []byte("nor this")}
	rec := newRecorder()
	rec.requires["a.A"] = []string{"a.B"}
	l := mustLoader(t, m, rec, loader.WithMode(loader.ModePlain))

	if _, err := l.Load(context.Background(), "a/A.class"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"a.B", "a.A"}; !slices.Equal(rec.order, want) {
		t.Errorf("order = %v, want %v", rec.order, want)
	}
}

func TestLoadMalformed(t *testing.T) {
	valid := testclass.New("a.A").Bytes()
	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 61, 0, 1}},
		{"truncated header", valid[:6]},
		{"truncated pool", valid[:14]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			l := mustLoader(t, classpath.Map{"a/A.class": tt.data}, rec)

			h, err := l.Load(context.Background(), "a/A.class")
			if !stderrors.Is(err, errors.ErrMalformed) {
				t.Fatalf("err = %v, want malformed", err)
			}
			if h != nil {
				t.Errorf("handle = %v, want nil", h)
			}
			if len(rec.calls) != 0 {
				t.Errorf("define calls = %v, want none", rec.calls)
			}

			var e *errors.Error
			if stderrors.As(err, &e) && e.Path != "a/A.class" {
				t.Errorf("Path = %q, want a/A.class", e.Path)
			}
		})
	}
}

func TestLoadNonComponentPath(t *testing.T) {
	rec := newRecorder()
	l := mustLoader(t, classpath.Map{}, rec)

	for _, p := range []string{"META-INF/MANIFEST.MF", "module-info.class", "app/module-info.class", "README"} {
		h, err := l.Load(context.Background(), p)
		if h != nil || err != nil {
			t.Errorf("Load(%q) = %v, %v; want nil, nil", p, h, err)
		}
	}
	if len(rec.calls) != 0 {
		t.Errorf("define calls = %v, want none", rec.calls)
	}
}

func TestLoadNotFound(t *testing.T) {
	m := chain()
	delete(m, "app/Z.class")
	rec := newRecorder()
	l := mustLoader(t, m, rec)

	_, err := l.Load(context.Background(), "app/X.class")
	if !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
	if len(rec.order) != 0 {
		t.Errorf("defined %v before failing, want nothing", rec.order)
	}
}

func TestLoadDefineError(t *testing.T) {
	boom := stderrors.New("boom")
	rec := newRecorder()
	rec.fail["app.Y"] = boom
	l := mustLoader(t, chain(), rec)

	_, err := l.Load(context.Background(), "app/X.class")
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	// Z was defined before the failure and stays defined.
	if want := []string{"app.Z"}; !slices.Equal(rec.order, want) {
		t.Errorf("order = %v, want %v", rec.order, want)
	}
}

func TestLoadExclude(t *testing.T) {
	m := classpath.Map{}
	m.Put("app.Main", testclass.New("app.Main").Field("lib", "Lext/Lib;").Bytes())

	t.Run("custom exclude", func(t *testing.T) {
		rec := newRecorder()
		l := mustLoader(t, m, rec, loader.WithExclude(func(name string) bool {
			return classpath.IsPlatformName(name) || strings.HasPrefix(name, "ext.")
		}))
		if _, err := l.Load(context.Background(), "app/Main.class"); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if want := []string{"app.Main"}; !slices.Equal(rec.order, want) {
			t.Errorf("order = %v, want %v", rec.order, want)
		}
	})

	t.Run("default exclude fetches ext", func(t *testing.T) {
		l := mustLoader(t, m, newRecorder())
		_, err := l.Load(context.Background(), "app/Main.class")
		if !stderrors.Is(err, errors.ErrNotFound) {
			t.Fatalf("err = %v, want not_found for ext/Lib.class", err)
		}
	})

	t.Run("nil exclude fetches platform", func(t *testing.T) {
		l := mustLoader(t, m, newRecorder(), loader.WithExclude(nil))
		_, err := l.Load(context.Background(), "app/Main.class")
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Kind != errors.KindNotFound {
			t.Fatalf("err = %v, want not_found", err)
		}
	})
}

func TestLoadLookup(t *testing.T) {
	t.Run("skips dependencies already defined", func(t *testing.T) {
		m := chain()
		delete(m, "app/Z.class")
		rec := newRecorder()
		rec.defined["app.Z"] = true
		l := mustLoader(t, m, lookupRecorder{rec})

		if _, err := l.Load(context.Background(), "app/X.class"); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if want := []string{"app.Y", "app.X"}; !slices.Equal(rec.order, want) {
			t.Errorf("order = %v, want %v", rec.order, want)
		}
	})

	t.Run("root already defined", func(t *testing.T) {
		rec := newRecorder()
		rec.defined["app.Z"] = true
		l := mustLoader(t, chain(), lookupRecorder{rec})

		h, err := l.Load(context.Background(), "app/Z.class")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if h.Name() != "app.Z" {
			t.Errorf("handle = %s", h.Name())
		}
		if len(rec.calls) != 0 {
			t.Errorf("define calls = %v, want none", rec.calls)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		rec := newRecorder()
		rec.defined["app.Z"] = true
		l := mustLoader(t, chain(), lookupRecorder{rec}, loader.WithLookup(nil))

		if _, err := l.Load(context.Background(), "app/X.class"); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if rec.calls["app.Z"] != 1 {
			t.Errorf("app.Z define calls = %d, want 1", rec.calls["app.Z"])
		}
	})
}

func TestLoadReferenceCycle(t *testing.T) {
	m := classpath.Map{}
	m.Put("a.A", testclass.New("a.A").Field("b", "La/B;").Bytes())
	m.Put("a.B", testclass.New("a.B").Field("a", "La/A;").Bytes())
	rec := newRecorder()
	l := mustLoader(t, m, rec)

	if _, err := l.Load(context.Background(), "a/A.class"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"a.B", "a.A"}; !slices.Equal(rec.order, want) {
		t.Errorf("order = %v, want %v", rec.order, want)
	}
}

func TestLoadUnresolvable(t *testing.T) {
	m := classpath.Map{}
	for _, n := range []string{"A", "B"} {
		m.Put(n, testclass.New(n).Bytes())
	}

	tests := []struct {
		name  string
		setup func(r *recorder)
	}{
		{
			name: "missing self",
			setup: func(r *recorder) {
				r.fail["A"] = errors.NewMissingDependency("A", "A")
			},
		},
		{
			name: "missing already defined",
			setup: func(r *recorder) {
				r.fail["A"] = errors.NewMissingDependency("B", "A")
			},
		},
		{
			name: "definer cycle",
			setup: func(r *recorder) {
				r.requires["A"] = []string{"B"}
				r.requires["B"] = []string{"A"}
			},
		},
		{
			name: "unnamed",
			setup: func(r *recorder) {
				r.fail["A"] = &errors.MissingDependencyError{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			tt.setup(rec)
			l := mustLoader(t, m, rec, loader.WithMode(loader.ModePlain))

			_, err := l.Load(context.Background(), "A.class")
			if !stderrors.Is(err, errors.ErrUnresolvable) {
				t.Fatalf("err = %v, want unresolvable", err)
			}
		})
	}
}

func TestLoadScanCache(t *testing.T) {
	m := chain()
	l := mustLoader(t, m, newRecorder(), loader.WithScanCache(16))

	if _, err := l.Load(context.Background(), "app/X.class"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Cached entries are served without looking at the bytes.
	deps, err := l.Dependencies("app/X.class", nil)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if want := []string{"app.X", "app.Y"}; !slices.Equal(deps, want) {
		t.Errorf("Dependencies = %v, want %v", deps, want)
	}

	uncached := mustLoader(t, m, newRecorder())
	if _, err := uncached.Dependencies("app/X.class", nil); !stderrors.Is(err, errors.ErrMalformed) {
		t.Errorf("uncached Dependencies err = %v, want malformed", err)
	}
}

func TestLoadAll(t *testing.T) {
	rec := newRecorder()
	l := mustLoader(t, chain(), lookupRecorder{rec})

	paths := []string{"app/X.class", "META-INF/MANIFEST.MF", "app/Y.class", "app/Z.class"}
	handles, err := l.LoadAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	var names []string
	for _, h := range handles {
		names = append(names, h.Name())
	}
	if want := []string{"app.X", "app.Y", "app.Z"}; !slices.Equal(names, want) {
		t.Errorf("handles = %v, want %v", names, want)
	}
	for name, n := range rec.calls {
		if n != 1 {
			t.Errorf("%s defined %d times, want 1", name, n)
		}
	}
}

func TestLoadAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := mustLoader(t, chain(), newRecorder())
	if _, err := l.LoadAll(ctx, []string{"app/X.class"}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewRequiresCapabilities(t *testing.T) {
	if _, err := loader.New(nil, newRecorder()); err == nil {
		t.Error("expected error for nil fetcher")
	}
	if _, err := loader.New(classpath.Map{}, nil); err == nil {
		t.Error("expected error for nil definer")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want loader.Mode
		ok   bool
	}{
		{"", loader.ModeAnalyzing, true},
		{"analyzing", loader.ModeAnalyzing, true},
		{"plain", loader.ModePlain, true},
		{"eager", loader.ModeAnalyzing, false},
	}
	for _, tt := range tests {
		got, ok := loader.ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoadConcurrent(t *testing.T) {
	m := chain()
	l := mustLoader(t, m, classload.DefineFunc(func(_ context.Context, name string, _ []byte) (classload.Handle, error) {
		return classload.Named(name), nil
	}), loader.WithScanCache(8))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(context.Background(), "app/X.class"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
