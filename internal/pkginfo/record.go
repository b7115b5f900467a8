// Package pkginfo loads and models the per-item package-description records
// a repository's catalogs are built from.
package pkginfo

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one decoded package-description item. The document is kept as a
// yaml mapping node rather than a fixed struct so fields the builder does
// not know about round-trip into the published catalogs untouched, in their
// original order.
type Record struct {
	// Path is the logical repo path the record was read from.
	Path string

	doc *yaml.Node
}

// Parse decodes one record document. The top level must be a mapping.
func Parse(path string, data []byte) (*Record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("decode %s: empty document", path)
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode %s: top level is not a mapping", path)
	}
	return &Record{Path: path, doc: doc}, nil
}

// field returns the value node for key, or nil.
func (r *Record) field(key string) *yaml.Node {
	for i := 0; i+1 < len(r.doc.Content); i += 2 {
		if r.doc.Content[i].Value == key {
			return r.doc.Content[i+1]
		}
	}
	return nil
}

// HasField reports whether the record declares key at the top level.
func (r *Record) HasField(key string) bool {
	return r.field(key) != nil
}

// StringField returns the scalar value of key, or "" when absent or not a
// scalar.
func (r *Record) StringField(key string) string {
	n := r.field(key)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func (r *Record) Name() string {
	return r.StringField("name")
}

func (r *Record) Version() string {
	return r.StringField("version")
}

// DisplayName identifies the record in diagnostics: "name-version", or just
// the name when no version is declared.
func (r *Record) DisplayName() string {
	name := r.Name()
	if v := r.Version(); v != "" {
		return name + "-" + v
	}
	return name
}

// Catalogs returns the declared catalog names in order, including blank
// entries so callers can warn on them.
func (r *Record) Catalogs() []string {
	n := r.field("catalogs")
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	names := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		if c.Kind != yaml.ScalarNode {
			continue
		}
		names = append(names, strings.TrimSpace(c.Value))
	}
	return names
}

// sanitize strips fields that must never be published: any "notes" key and
// any key starting with "_". Called once at load; records are immutable
// afterwards.
func (r *Record) sanitize() {
	kept := r.doc.Content[:0]
	for i := 0; i+1 < len(r.doc.Content); i += 2 {
		key := r.doc.Content[i].Value
		if key == "notes" || strings.HasPrefix(key, "_") {
			continue
		}
		kept = append(kept, r.doc.Content[i], r.doc.Content[i+1])
	}
	r.doc.Content = kept
}

// Node exposes the record document for catalog serialization.
func (r *Record) Node() *yaml.Node {
	return r.doc
}
