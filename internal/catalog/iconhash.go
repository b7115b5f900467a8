package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"

	"github.com/catalogsmith/catalogsmith/internal/repo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

// IconIndexName is the reserved name of the published digest index inside
// the icons namespace. It is never hashed itself.
const IconIndexName = "_icon_hashes.yaml"

// IconHasher digests every icon asset so catalog consumers can detect icon
// changes without re-downloading.
type IconHasher struct {
	accessor    repo.Accessor
	concurrency int
	log         zerolog.Logger
}

func NewIconHasher(accessor repo.Accessor, concurrency int, logger zerolog.Logger) *IconHasher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &IconHasher{
		accessor:    accessor,
		concurrency: concurrency,
		log:         logger.With().Str("stage", "hashing").Logger(),
	}
}

// Hash lists the icon assets and returns name -> hex SHA-256 digest.
// Unreadable assets are omitted with a warning; a listing failure warns and
// yields an empty map. Neither aborts the run.
func (h *IconHasher) Hash(ctx context.Context, rpt *report.Report) map[string]string {
	names, err := h.accessor.List(ctx, repo.KindIcons)
	if err != nil {
		h.log.Warn().Err(err).Msg("Icon listing failed")
		rpt.Warnf("WARNING: could not list icons: %v", err)
		return map[string]string{}
	}

	digests := make(map[string]string, len(names))
	var mu sync.Mutex
	sem := make(chan struct{}, h.concurrency)
	var wg sync.WaitGroup

	for _, name := range names {
		if name == IconIndexName {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			path := repo.KindIcons + "/" + name
			data, err := h.accessor.Read(ctx, path)
			if err != nil {
				h.log.Warn().Err(err).Str("icon", name).Msg("Icon read failed")
				rpt.Warnf("WARNING: error reading %s: %v", path, err)
				return
			}
			sum := sha256.Sum256(data)
			mu.Lock()
			digests[name] = hex.EncodeToString(sum[:])
			mu.Unlock()
		}()
	}
	wg.Wait()

	h.log.Info().Int("hashed", len(digests)).Msg("Icons hashed")
	return digests
}
