package catalog

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/catalogsmith/catalogsmith/internal/pkginfo"
	"github.com/catalogsmith/catalogsmith/internal/repo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

// Publisher reconciles the assembled catalogs and icon digests against what
// the repository currently holds. It is the only component that mutates
// repository state.
type Publisher struct {
	accessor repo.Accessor
	log      zerolog.Logger
}

func NewPublisher(accessor repo.Accessor, logger zerolog.Logger) *Publisher {
	return &Publisher{
		accessor: accessor,
		log:      logger.With().Str("stage", "publishing").Logger(),
	}
}

// Publish deletes stale catalogs, writes the assembled ones, and writes the
// icon digest index when any digests were computed. Individual failures
// warn and processing continues; written and deleted artifact paths are
// returned for the end-of-run confirmation.
func (p *Publisher) Publish(ctx context.Context, set *Set, digests map[string]string, rpt *report.Report) (written, deleted []string) {
	current, err := p.accessor.List(ctx, repo.KindCatalogs)
	if err != nil {
		// Reconciliation needs the current listing; without it only the
		// new catalogs are written and nothing stale is removed.
		p.log.Warn().Err(err).Msg("Catalog listing failed")
		rpt.Warnf("WARNING: could not list existing catalogs: %v", err)
		current = nil
	}

	for _, name := range current {
		if set.Has(name) {
			continue
		}
		path := repo.KindCatalogs + "/" + name
		if err := p.accessor.Delete(ctx, path); err != nil {
			p.log.Warn().Err(err).Str("catalog", name).Msg("Stale catalog delete failed")
			rpt.Warnf("WARNING: could not delete stale catalog %s: %v", name, err)
			continue
		}
		p.log.Info().Str("catalog", name).Msg("Deleted stale catalog")
		deleted = append(deleted, path)
	}

	for _, name := range set.Names() {
		records := set.Records(name)
		if len(records) == 0 {
			rpt.Warnf("WARNING: catalog %s is empty and will not be written", name)
			continue
		}
		data, err := encodeCatalog(records)
		if err != nil {
			rpt.Warnf("WARNING: could not encode catalog %s: %v", name, err)
			continue
		}
		path := repo.KindCatalogs + "/" + name
		if err := p.accessor.Write(ctx, path, data); err != nil {
			p.log.Warn().Err(err).Str("catalog", name).Msg("Catalog write failed")
			rpt.Warnf("WARNING: could not write catalog %s: %v", name, err)
			continue
		}
		p.log.Info().Str("catalog", name).Int("records", len(records)).Msg("Wrote catalog")
		written = append(written, path)
	}

	if len(digests) > 0 {
		data, err := encodeDigests(digests)
		if err != nil {
			rpt.Warnf("WARNING: could not encode icon digest index: %v", err)
			return written, deleted
		}
		path := repo.KindIcons + "/" + IconIndexName
		if err := p.accessor.Write(ctx, path, data); err != nil {
			p.log.Warn().Err(err).Msg("Icon digest index write failed")
			rpt.Warnf("WARNING: could not write %s: %v", path, err)
			return written, deleted
		}
		p.log.Info().Int("icons", len(digests)).Msg("Wrote icon digest index")
		written = append(written, path)
	}

	return written, deleted
}

// encodeCatalog serializes records as a yaml sequence of their sanitized
// documents, preserving each record's own field order.
func encodeCatalog(records []*pkginfo.Record) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range records {
		seq.Content = append(seq.Content, rec.Node())
	}
	return yaml.Marshal(seq)
}

// encodeDigests serializes the icon digest map with sorted keys so the
// index is byte-stable across runs.
func encodeDigests(digests map[string]string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		// Quoted so names and digests stay strings even when they would
		// otherwise scan as numbers.
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: digests[name]},
		)
	}
	return yaml.Marshal(node)
}
