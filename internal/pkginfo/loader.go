package pkginfo

import (
	"context"
	"fmt"
	"sync"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"

	"github.com/catalogsmith/catalogsmith/internal/repo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

// Loader reads and decodes record items from a repository. Per-item reads
// run on a bounded worker pool; results are reduced back into listing order
// so downstream output stays reproducible.
type Loader struct {
	accessor    repo.Accessor
	concurrency int
	ignores     []glob.Glob
	log         zerolog.Logger
}

// NewLoader compiles the ignore patterns and returns a Loader. Invalid
// patterns are rejected up front.
func NewLoader(accessor repo.Accessor, concurrency int, ignorePatterns []string, logger zerolog.Logger) (*Loader, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	ignores := make([]glob.Glob, 0, len(ignorePatterns))
	for _, p := range ignorePatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", p, err)
		}
		ignores = append(ignores, g)
	}
	return &Loader{
		accessor:    accessor,
		concurrency: concurrency,
		ignores:     ignores,
		log:         logger.With().Str("stage", "loading").Logger(),
	}, nil
}

func (l *Loader) ignored(name string) bool {
	for _, g := range l.ignores {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Load reads every listed record item. Items that fail to read or decode,
// and decoded records missing the required name field, are skipped with a
// warning; they never abort the batch. The returned slice preserves the
// order of names.
func (l *Loader) Load(ctx context.Context, names []string, rpt *report.Report) []*Record {
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if l.ignored(name) {
			l.log.Debug().Str("item", name).Msg("Ignored by pattern")
			continue
		}
		filtered = append(filtered, name)
	}

	type outcome struct {
		record  *Record
		warning string
	}
	results := make([]outcome, len(filtered))
	sem := make(chan struct{}, l.concurrency)
	var wg sync.WaitGroup

	for i, name := range filtered {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release
			results[i].record, results[i].warning = l.loadOne(ctx, name)
		}()
	}
	wg.Wait()

	// Reduce in listing order so records and diagnostics come out the same
	// way on every run regardless of fetch completion order.
	records := make([]*Record, 0, len(filtered))
	for _, r := range results {
		if r.warning != "" {
			rpt.Warnf("%s", r.warning)
		}
		if r.record != nil {
			records = append(records, r.record)
		}
	}
	l.log.Info().Int("listed", len(names)).Int("loaded", len(records)).Msg("Records loaded")
	return records
}

func (l *Loader) loadOne(ctx context.Context, name string) (*Record, string) {
	path := repo.KindPkgsinfo + "/" + name
	data, err := l.accessor.Read(ctx, path)
	if err != nil {
		l.log.Warn().Err(err).Str("item", name).Msg("Record read failed")
		return nil, fmt.Sprintf("WARNING: could not read %s: %v", path, err)
	}
	rec, err := Parse(path, data)
	if err != nil {
		l.log.Warn().Err(err).Str("item", name).Msg("Record decode failed")
		return nil, fmt.Sprintf("WARNING: could not decode %s: %v", path, err)
	}
	if rec.Name() == "" {
		l.log.Warn().Str("item", name).Msg("Record missing name")
		return nil, fmt.Sprintf("WARNING: %s is missing name", path)
	}
	rec.sanitize()
	return rec, ""
}
