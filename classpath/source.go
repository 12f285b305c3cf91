package classpath

import (
	"archive/zip"
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/wippyai/classload/errors"
)

// Lister enumerates the paths a fetcher can serve.
type Lister interface {
	Paths() ([]string, error)
}

// Map is an in-memory set of components keyed by storage path. It is safe
// for concurrent reads.
type Map map[string][]byte

// Put stores data under the path of name.
func (m Map) Put(name string, data []byte) {
	m[NameToPath(name)] = data
}

// Fetch implements classload.Fetcher.
func (m Map) Fetch(_ context.Context, p string) ([]byte, error) {
	data, ok := m[p]
	if !ok {
		return nil, errors.NotFound(p, nil)
	}
	return data, nil
}

// Paths returns every stored path, sorted.
func (m Map) Paths() ([]string, error) {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// FS serves components from a file system, such as a directory of
// compiled classes.
type FS struct {
	fsys fs.FS
}

// NewFS wraps fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Dir serves components from the directory root.
func Dir(root string) *FS {
	return NewFS(os.DirFS(root))
}

// Fetch implements classload.Fetcher.
func (f *FS) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.IO(p, err)
	}
	data, err := fs.ReadFile(f.fsys, p)
	if err != nil {
		return nil, fetchError(p, err)
	}
	return data, nil
}

// Paths walks the file system and returns every file with the component
// suffix, module descriptors included.
func (f *FS) Paths() ([]string, error) {
	var out []string
	err := fs.WalkDir(f.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == Suffix {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.IO(".", err)
	}
	return out, nil
}

// Archive serves components from a jar or zip file.
type Archive struct {
	closer io.Closer
	files  map[string]*zip.File
	order  []string
}

// OpenArchive opens the archive at name. Close releases the file.
func OpenArchive(name string) (*Archive, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fetchError(name, err)
	}
	a := newArchive(&rc.Reader)
	a.closer = rc
	return a, nil
}

// NewArchive reads an archive of the given size from r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.IO("", err)
	}
	return newArchive(zr), nil
}

func newArchive(zr *zip.Reader) *Archive {
	a := &Archive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := a.files[f.Name]; dup {
			continue
		}
		a.files[f.Name] = f
		a.order = append(a.order, f.Name)
	}
	return a
}

// Fetch implements classload.Fetcher. Entries are decompressed on every
// call; safe for concurrent use.
func (a *Archive) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.IO(p, err)
	}
	f, ok := a.files[p]
	if !ok {
		return nil, errors.NotFound(p, nil)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.IO(p, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.IO(p, err)
	}
	return data, nil
}

// Paths returns every file entry in archive order.
func (a *Archive) Paths() ([]string, error) {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out, nil
}

// Close releases the underlying file when the archive was opened by name.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func fetchError(p string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NotFound(p, err)
	}
	return errors.IO(p, err)
}
