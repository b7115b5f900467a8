package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/catalogsmith/catalogsmith/internal/pkginfo"
	"github.com/catalogsmith/catalogsmith/internal/repo/repotest"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

func assembleFor(t *testing.T, docs ...string) *Set {
	t.Helper()
	records := make([]*pkginfo.Record, len(docs))
	for i, doc := range docs {
		records[i] = mustRecord(t, doc)
	}
	return Assemble(records, report.New())
}

func TestPublishWritesCatalogs(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	set := assembleFor(t, "name: Foo", "name: Bar\ncatalogs:\n  - testing")

	rpt := report.New()
	written, deleted := NewPublisher(r, zerolog.Nop()).Publish(ctx, set, nil, rpt)

	assert.ElementsMatch(t, []string{"catalogs/all", "catalogs/testing"}, written)
	assert.Empty(t, deleted)
	assert.Empty(t, rpt.Warnings())

	data, err := r.Read(ctx, "catalogs/all")
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Foo", decoded[0]["name"])
	assert.Equal(t, "Bar", decoded[1]["name"])
}

func TestPublishDeletesStaleCatalogs(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	r.Put("catalogs/empty_cat", []byte("old"))
	r.Put("catalogs/all", []byte("old"))
	set := assembleFor(t, "name: Foo")

	rpt := report.New()
	written, deleted := NewPublisher(r, zerolog.Nop()).Publish(ctx, set, nil, rpt)

	assert.Equal(t, []string{"catalogs/empty_cat"}, deleted)
	assert.Equal(t, []string{"catalogs/all"}, written)
	assert.Empty(t, rpt.Warnings())
	assert.Equal(t, []string{"catalogs/all"}, r.Paths())
}

func TestPublishDeleteFailureContinues(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	r.Put("catalogs/stale_a", []byte("old"))
	r.Put("catalogs/stale_b", []byte("old"))
	r.FailDeletes = map[string]error{"catalogs/stale_a": errors.New("locked")}
	set := assembleFor(t, "name: Foo")

	rpt := report.New()
	written, deleted := NewPublisher(r, zerolog.Nop()).Publish(ctx, set, nil, rpt)

	assert.Equal(t, []string{"catalogs/stale_b"}, deleted)
	assert.Equal(t, []string{"catalogs/all"}, written)
	require.Len(t, rpt.Warnings(), 1)
	assert.Contains(t, rpt.Warnings()[0], "stale_a")
}

func TestPublishWriteFailureContinues(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	r.FailWrites = map[string]error{"catalogs/all": errors.New("quota")}
	set := assembleFor(t, "name: Foo", "name: Bar\ncatalogs:\n  - testing")

	rpt := report.New()
	written, _ := NewPublisher(r, zerolog.Nop()).Publish(ctx, set, nil, rpt)

	assert.Equal(t, []string{"catalogs/testing"}, written)
	assert.Len(t, rpt.Warnings(), 1)
	assert.True(t, rpt.Failed())
}

func TestPublishEmptyCatalogIsAFailure(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	set := &Set{catalogs: map[string][]*pkginfo.Record{"empty_cat": nil}, names: []string{"empty_cat"}}

	rpt := report.New()
	written, _ := NewPublisher(r, zerolog.Nop()).Publish(ctx, set, nil, rpt)

	assert.Empty(t, written)
	require.Len(t, rpt.Warnings(), 1)
	assert.Contains(t, rpt.Warnings()[0], "empty_cat")
	assert.True(t, rpt.Failed())
}

func TestPublishIconIndex(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	set := assembleFor(t, "name: Foo")
	digests := map[string]string{"Foo.png": "abc123", "Bar.png": "def456"}

	rpt := report.New()
	written, _ := NewPublisher(r, zerolog.Nop()).Publish(ctx, set, digests, rpt)

	assert.Contains(t, written, "icons/"+IconIndexName)

	data, err := r.Read(ctx, "icons/"+IconIndexName)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, digests, decoded)

	t.Run("index write failure is a warning", func(t *testing.T) {
		r := repotest.New()
		r.FailWrites = map[string]error{"icons/" + IconIndexName: errors.New("quota")}
		rpt := report.New()
		written, _ := NewPublisher(r, zerolog.Nop()).Publish(ctx, assembleFor(t, "name: Foo"), digests, rpt)
		assert.Equal(t, []string{"catalogs/all"}, written)
		assert.Len(t, rpt.Warnings(), 1)
	})

	t.Run("no digests means no index", func(t *testing.T) {
		r := repotest.New()
		NewPublisher(r, zerolog.Nop()).Publish(ctx, assembleFor(t, "name: Foo"), nil, report.New())
		_, err := r.Read(ctx, "icons/"+IconIndexName)
		assert.Error(t, err)
	})
}

func TestPublishIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	set := assembleFor(t, "name: Foo", "name: Bar\ncatalogs:\n  - testing")
	digests := map[string]string{"Foo.png": "abc123"}

	NewPublisher(r, zerolog.Nop()).Publish(ctx, set, digests, report.New())
	first := r.Paths()
	firstAll, err := r.Read(ctx, "catalogs/all")
	require.NoError(t, err)

	NewPublisher(r, zerolog.Nop()).Publish(ctx, set, digests, report.New())
	assert.Equal(t, first, r.Paths())
	secondAll, err := r.Read(ctx, "catalogs/all")
	require.NoError(t, err)
	assert.Equal(t, firstAll, secondAll)
}
