package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogsmith/catalogsmith/internal/repo/repotest"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

func TestIconHasher(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	r.Put("icons/Foo.png", []byte("foo-bytes"))
	r.Put("icons/Bar.png", []byte("bar-bytes"))
	r.Put("icons/"+IconIndexName, []byte("stale index"))

	rpt := report.New()
	digests := NewIconHasher(r, 2, zerolog.Nop()).Hash(ctx, rpt)

	require.Len(t, digests, 2)
	sum := sha256.Sum256([]byte("foo-bytes"))
	assert.Equal(t, hex.EncodeToString(sum[:]), digests["Foo.png"])
	assert.NotContains(t, digests, IconIndexName)
	assert.Empty(t, rpt.Warnings())
}

func TestIconHasherUnreadableAsset(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	r.Put("icons/good.png", []byte("ok"))
	r.Put("icons/bad.png", []byte("io"))
	r.FailReads = map[string]error{"icons/bad.png": errors.New("io failure")}

	rpt := report.New()
	digests := NewIconHasher(r, 2, zerolog.Nop()).Hash(ctx, rpt)

	assert.Contains(t, digests, "good.png")
	assert.NotContains(t, digests, "bad.png")
	require.Len(t, rpt.Warnings(), 1)
	assert.Contains(t, rpt.Warnings()[0], "icons/bad.png")
}

func TestIconHasherListFailure(t *testing.T) {
	ctx := context.Background()
	r := repotest.New()
	r.FailLists = map[string]error{"icons": errors.New("transport down")}

	rpt := report.New()
	digests := NewIconHasher(r, 2, zerolog.Nop()).Hash(ctx, rpt)

	assert.Empty(t, digests)
	assert.Len(t, rpt.Warnings(), 1)
}
