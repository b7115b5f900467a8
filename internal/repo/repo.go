// Package repo abstracts the software-distribution repository that
// catalogsmith reads records and artifacts from and publishes catalogs to.
// Backends register themselves by URL scheme; file and s3 backends ship
// built in.
package repo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Well-known item kinds inside a repository. Logical paths are always
// composed as "<kind>/<name>".
const (
	KindPkgsinfo = "pkgsinfo"
	KindPkgs     = "pkgs"
	KindCatalogs = "catalogs"
	KindIcons    = "icons"
)

// ErrNotFound is returned by Read when the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Accessor is the minimal storage contract the catalog builder needs.
// List returns relative item names for a kind, in a stable order.
type Accessor interface {
	List(ctx context.Context, kind string) ([]string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
}

// RepoError wraps a backend failure with the operation and logical path it
// occurred on, so callers can report storage errors uniformly regardless of
// the backend behind the Accessor.
type RepoError struct {
	Op   string
	Path string
	Err  error
}

func (e *RepoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repo %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("repo %s %s failed", e.Op, e.Path)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

func wrapErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &RepoError{Op: op, Path: path, Err: err}
}

// Factory creates an Accessor from a parsed repo URL.
type Factory interface {
	Create(ctx context.Context, u *url.URL) (Accessor, error)
}

var registry = map[string]Factory{}

// RegisterFactory registers one backend factory for a URL scheme.
func RegisterFactory(scheme string, factory Factory) error {
	if scheme == "" {
		return errors.New("invalid scheme")
	}
	if factory == nil {
		return errors.New("empty backend factory")
	}
	if _, exist := registry[scheme]; exist {
		return fmt.Errorf("backend factory for %s already exists", scheme)
	}
	registry[scheme] = factory
	return nil
}

// Open parses rawURL and dispatches to the registered backend factory.
// A URL without a scheme is treated as a local filesystem path.
func Open(ctx context.Context, rawURL string) (Accessor, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse repo url: %w", err)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "file"
		u = &url.URL{Scheme: "file", Path: rawURL}
	}
	factory, exist := registry[scheme]
	if !exist {
		return nil, fmt.Errorf("no repo backend for scheme %q", scheme)
	}
	accessor, err := factory.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("open %s repo: %w", scheme, err)
	}
	return accessor, nil
}
