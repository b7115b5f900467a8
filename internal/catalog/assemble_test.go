package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogsmith/catalogsmith/internal/pkginfo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

func recordNames(records []*pkginfo.Record) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name()
	}
	return names
}

func TestAssemble(t *testing.T) {
	foo := mustRecord(t, "name: Foo")
	bar := mustRecord(t, "name: Bar\ncatalogs:\n  - testing")
	baz := mustRecord(t, "name: Baz\ncatalogs:\n  - testing\n  - production")

	rpt := report.New()
	set := Assemble([]*pkginfo.Record{foo, bar, baz}, rpt)

	assert.Equal(t, []string{"all", "testing", "production"}, set.Names())
	assert.Equal(t, []string{"Foo", "Bar", "Baz"}, recordNames(set.Records("all")))
	assert.Equal(t, []string{"Bar", "Baz"}, recordNames(set.Records("testing")))
	assert.Equal(t, []string{"Baz"}, recordNames(set.Records("production")))
	assert.Empty(t, rpt.Warnings())
}

func TestAssembleEmptyInput(t *testing.T) {
	set := Assemble(nil, report.New())
	assert.Empty(t, set.Names())
	assert.False(t, set.Has(AllCatalog))
}

func TestAssembleBlankCatalogEntry(t *testing.T) {
	rec := mustRecord(t, "name: Foo\ncatalogs:\n  - \"\"\n  - testing")

	rpt := report.New()
	set := Assemble([]*pkginfo.Record{rec}, rpt)

	// The record still lands in its other catalogs and in all.
	assert.Equal(t, []string{"Foo"}, recordNames(set.Records("all")))
	assert.Equal(t, []string{"Foo"}, recordNames(set.Records("testing")))
	require.Len(t, rpt.Warnings(), 1)
	assert.Contains(t, rpt.Warnings()[0], "empty catalogs entry")
}

func TestAssembleCaseCollision(t *testing.T) {
	a := mustRecord(t, "name: A\ncatalogs:\n  - Testing")
	b := mustRecord(t, "name: B\ncatalogs:\n  - testing")

	rpt := report.New()
	set := Assemble([]*pkginfo.Record{a, b}, rpt)

	// Both spellings stay independent catalogs.
	assert.Equal(t, []string{"A"}, recordNames(set.Records("Testing")))
	assert.Equal(t, []string{"B"}, recordNames(set.Records("testing")))

	warnings := rpt.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Testing")
	assert.Contains(t, warnings[0], "testing")
}
