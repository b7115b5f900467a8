// Package repotest provides an in-memory repo.Accessor for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/catalogsmith/catalogsmith/internal/repo"
)

// Repo is an in-memory Accessor. Items are keyed by logical path
// ("<kind>/<name>"). Failure injection lets tests exercise the
// skip-with-warning paths.
type Repo struct {
	mu    sync.Mutex
	items map[string][]byte

	// FailReads / FailWrites / FailDeletes contain logical paths whose
	// operation should fail with the given error.
	FailReads   map[string]error
	FailWrites  map[string]error
	FailDeletes map[string]error
	// FailLists maps a kind to a listing error.
	FailLists map[string]error
}

func New() *Repo {
	return &Repo{items: map[string][]byte{}}
}

// Put seeds an item without going through Write.
func (r *Repo) Put(path string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[path] = data
}

// Paths returns every stored logical path, sorted.
func (r *Repo) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.items))
	for p := range r.items {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (r *Repo) List(_ context.Context, kind string) ([]string, error) {
	if err := r.FailLists[kind]; err != nil {
		return nil, &repo.RepoError{Op: "list", Path: kind, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := kind + "/"
	var names []string
	for p := range r.items {
		if strings.HasPrefix(p, prefix) {
			names = append(names, strings.TrimPrefix(p, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *Repo) Read(_ context.Context, path string) ([]byte, error) {
	if err := r.FailReads[path]; err != nil {
		return nil, &repo.RepoError{Op: "read", Path: path, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.items[path]
	if !ok {
		return nil, &repo.RepoError{Op: "read", Path: path, Err: repo.ErrNotFound}
	}
	return data, nil
}

func (r *Repo) Write(_ context.Context, path string, data []byte) error {
	if err := r.FailWrites[path]; err != nil {
		return &repo.RepoError{Op: "write", Path: path, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[path] = data
	return nil
}

func (r *Repo) Delete(_ context.Context, path string) error {
	if err := r.FailDeletes[path]; err != nil {
		return &repo.RepoError{Op: "delete", Path: path, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[path]; !ok {
		return &repo.RepoError{Op: "delete", Path: path, Err: repo.ErrNotFound}
	}
	delete(r.items, path)
	return nil
}
