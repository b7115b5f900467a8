package catalog

import (
	"sort"
	"strings"

	"github.com/catalogsmith/catalogsmith/internal/pkginfo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

// AllCatalog is the synthetic catalog that contains every sane record.
const AllCatalog = "all"

// Set is the assembled result: catalog name -> records in encounter order.
// Order preserves the order catalogs were first declared in, so republishing
// an unchanged repo writes identical documents.
type Set struct {
	names    []string
	catalogs map[string][]*pkginfo.Record
}

// Names returns the catalog names in first-declaration order.
func (s *Set) Names() []string {
	return s.names
}

// Records returns the members of name, in encounter order.
func (s *Set) Records(name string) []*pkginfo.Record {
	return s.catalogs[name]
}

func (s *Set) Has(name string) bool {
	_, ok := s.catalogs[name]
	return ok
}

func (s *Set) append(name string, rec *pkginfo.Record) {
	if _, ok := s.catalogs[name]; !ok {
		s.names = append(s.names, name)
	}
	s.catalogs[name] = append(s.catalogs[name], rec)
}

// Assemble groups the sane records into catalogs. Every record lands in the
// "all" catalog exactly once; declared catalogs are created on first use.
// Blank catalog-name entries warn and are skipped. One warning is recorded
// when two or more catalog names collide under case-insensitive comparison.
func Assemble(records []*pkginfo.Record, rpt *report.Report) *Set {
	set := &Set{catalogs: map[string][]*pkginfo.Record{}}
	if len(records) == 0 {
		return set
	}

	set.catalogs[AllCatalog] = nil
	set.names = append(set.names, AllCatalog)

	for _, rec := range records {
		set.append(AllCatalog, rec)
		for _, name := range rec.Catalogs() {
			if name == "" {
				rpt.Warnf("WARNING: %s has an empty catalogs entry", rec.DisplayName())
				continue
			}
			set.append(name, rec)
		}
	}

	warnCaseCollisions(set.names, rpt)
	return set
}

func warnCaseCollisions(names []string, rpt *report.Report) {
	byFold := map[string][]string{}
	for _, name := range names {
		key := strings.ToLower(name)
		byFold[key] = append(byFold[key], name)
	}

	var colliding []string
	for _, group := range byFold {
		if len(group) > 1 {
			colliding = append(colliding, group...)
		}
	}
	if len(colliding) == 0 {
		return
	}
	sort.Strings(colliding)
	rpt.Warnf("WARNING: catalog names differ only in case: %s", strings.Join(colliding, ", "))
}
