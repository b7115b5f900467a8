package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/catalogsmith/catalogsmith/internal/pkginfo"
	"github.com/catalogsmith/catalogsmith/internal/repo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

// Options configures one catalog build run. Flags are passed in explicitly;
// stages never read ambient process state.
type Options struct {
	// Force includes records that failed reference validation anyway.
	Force bool
	// SkipPayloadCheck bypasses reference validation entirely.
	SkipPayloadCheck bool
	// Concurrency bounds the record-read and icon-hash worker pools.
	Concurrency int
	// IgnorePatterns filters the record listing (glob syntax).
	IgnorePatterns []string
}

// Result is what one completed run produced.
type Result struct {
	RecordsListed  int
	RecordsLoaded  int
	RecordsSane    int
	CatalogsWritten []string
	CatalogsDeleted []string
	IconsHashed    int
	Report         *report.Report
}

// Failed reports whether the run outcome is failed.
func (r *Result) Failed() bool {
	return r.Report.Failed()
}

// Builder runs the full pipeline: listing, loading, validating, assembling,
// publishing, with icon hashing overlapped since it has no data dependency
// on record processing.
type Builder struct {
	accessor repo.Accessor
	opts     Options
	log      zerolog.Logger
}

func NewBuilder(accessor repo.Accessor, opts Options, logger zerolog.Logger) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Builder{accessor: accessor, opts: opts, log: logger}
}

// Run executes one build. Only the initial listings are fatal; every later
// failure is recorded on the result's Report and the run continues.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	logger := b.log.With().Str("run_id", uuid.New().String()).Logger()
	logger.Info().
		Bool("force", b.opts.Force).
		Bool("skip_payload_check", b.opts.SkipPayloadCheck).
		Int("concurrency", b.opts.Concurrency).
		Msg("Starting catalog build")

	rpt := report.New()

	artifacts, err := b.accessor.List(ctx, repo.KindPkgs)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	items, err := b.accessor.List(ctx, repo.KindPkgsinfo)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	// Icon hashing only joins at the publishing stage; no partial digest
	// map is ever observed.
	hasher := NewIconHasher(b.accessor, b.opts.Concurrency, logger)
	digestCh := make(chan map[string]string, 1)
	go func() {
		digestCh <- hasher.Hash(ctx, rpt)
	}()

	loader, err := pkginfo.NewLoader(b.accessor, b.opts.Concurrency, b.opts.IgnorePatterns, logger)
	if err != nil {
		return nil, err
	}
	records := loader.Load(ctx, items, rpt)

	validator := NewValidator(artifacts, b.opts.Force, b.opts.SkipPayloadCheck)
	sane := validator.Filter(records, rpt)
	logger.Info().Int("sane", len(sane)).Int("loaded", len(records)).Msg("Records validated")

	set := Assemble(sane, rpt)
	digests := <-digestCh

	publisher := NewPublisher(b.accessor, logger)
	written, deleted := publisher.Publish(ctx, set, digests, rpt)

	result := &Result{
		RecordsListed:   len(items),
		RecordsLoaded:   len(records),
		RecordsSane:     len(sane),
		CatalogsWritten: written,
		CatalogsDeleted: deleted,
		IconsHashed:     len(digests),
		Report:          rpt,
	}
	logger.Info().
		Int("catalogs_written", len(written)).
		Int("catalogs_deleted", len(deleted)).
		Int("warnings", len(rpt.Warnings())).
		Msg("Catalog build finished")
	return result, nil
}
