package repo

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func init() {
	if err := RegisterFactory("file", fileFactory{}); err != nil {
		panic(err)
	}
}

type fileFactory struct{}

func (fileFactory) Create(_ context.Context, u *url.URL) (Accessor, error) {
	root := u.Path
	if u.Host != "" {
		// file://relative/path parses the first segment as a host.
		root = filepath.Join(u.Host, u.Path)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, wrapErr("open", root, err)
	}
	return &FileRepo{root: root}, nil
}

// FileRepo serves a repository rooted at a local directory. Item names are
// slash-separated relative paths regardless of the host OS.
type FileRepo struct {
	root string
}

// NewFileRepo returns a FileRepo rooted at dir.
func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{root: dir}
}

func (f *FileRepo) List(_ context.Context, kind string) ([]string, error) {
	base := filepath.Join(f.root, kind)
	if _, err := os.Stat(base); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, wrapErr("list", kind, err)
	}

	var names []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, wrapErr("list", kind, err)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileRepo) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(f.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapErr("read", path, ErrNotFound)
		}
		return nil, wrapErr("read", path, err)
	}
	return data, nil
}

func (f *FileRepo) Write(_ context.Context, path string, data []byte) error {
	abs := f.abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return wrapErr("write", path, err)
	}
	// Write to a sibling temp file and rename so a crashed run never leaves
	// a half-written catalog behind.
	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*")
	if err != nil {
		return wrapErr("write", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return wrapErr("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return wrapErr("write", path, err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		os.Remove(tmp.Name())
		return wrapErr("write", path, err)
	}
	return nil
}

func (f *FileRepo) Delete(_ context.Context, path string) error {
	if err := os.Remove(f.abs(path)); err != nil {
		if os.IsNotExist(err) {
			return wrapErr("delete", path, ErrNotFound)
		}
		return wrapErr("delete", path, err)
	}
	return nil
}

func (f *FileRepo) abs(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(path))
}
