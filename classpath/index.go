package classpath

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/classload"
	"github.com/wippyai/classload/classfile"
	"github.com/wippyai/classload/errors"
)

// DefaultWorkers is the scan concurrency used when BuildIndex is given a
// non-positive limit.
const DefaultWorkers = 8

// Index is the dependency graph of a set of components. It is immutable
// once built.
type Index struct {
	paths      []string
	deps       map[string][]string
	dependents map[string][]string
}

// BuildIndex fetches and scans every component path concurrently, using at
// most limit workers. Paths that are not component paths are skipped. The
// first fetch or scan failure cancels the remaining work.
func BuildIndex(ctx context.Context, fetcher classload.Fetcher, paths []string, limit int) (*Index, error) {
	if limit <= 0 {
		limit = DefaultWorkers
	}

	selected := make([]string, 0, len(paths))
	for _, p := range paths {
		if IsComponentPath(p) {
			selected = append(selected, p)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	results := make([][]string, len(selected))
	for i, p := range selected {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fetcher.Fetch(ctx, p)
			if err != nil {
				return err
			}
			set, err := classfile.Scan(data)
			if err != nil {
				return errors.WithPath(err, p)
			}
			results[i] = set.Without(PathToName(p)).Names()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{
		paths:      selected,
		deps:       make(map[string][]string, len(selected)),
		dependents: make(map[string][]string),
	}
	for i, p := range selected {
		idx.deps[p] = results[i]
		self := PathToName(p)
		for _, dep := range results[i] {
			idx.dependents[dep] = append(idx.dependents[dep], self)
		}
	}
	for _, names := range idx.dependents {
		slices.SortFunc(names, CompareDependencies)
	}
	return idx, nil
}

// Paths returns the indexed component paths in input order.
func (x *Index) Paths() []string {
	return slices.Clone(x.paths)
}

// Dependencies returns the names referenced by the component at path,
// excluding itself, in discovery order.
func (x *Index) Dependencies(path string) ([]string, bool) {
	deps, ok := x.deps[path]
	return slices.Clone(deps), ok
}

// Dependents returns the names of indexed components that reference name.
func (x *Index) Dependents(name string) []string {
	return slices.Clone(x.dependents[name])
}

// Len returns the number of indexed components.
func (x *Index) Len() int {
	return len(x.paths)
}
