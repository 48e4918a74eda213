package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/record"
)

func entityIDs(entities []database.EntityRecord) []int64 {
	ids := make([]int64, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestEntityResolverByKey(t *testing.T) {
	f := setupFixture(t)
	r := NewEntityResolver(f.db, f.projectID)
	ctx := context.Background()

	got, err := r.Resolve(ctx, record.Record{Source: "ignored", Resource: "browser/main.ftl", Key: "goodbye"})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.goodbye}, entityIDs(got))
	assert.Equal(t, "browser/main.ftl:goodbye", got[0].Label())

	got, err = r.Resolve(ctx, record.Record{Source: "Goodbye", Resource: "browser/main.ftl", Key: "missing"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Resolve(ctx, record.Record{Source: "Goodbye", Resource: "nope.ftl", Key: "goodbye"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEntityResolverByNormalizedSource(t *testing.T) {
	f := setupFixture(t)
	r := NewEntityResolver(f.db, f.projectID)
	ctx := context.Background()

	got, err := r.Resolve(ctx, record.Record{Source: "  Hello, World!  "})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{f.hello, f.helloDup}, entityIDs(got))

	got, err = r.Resolve(ctx, record.Record{Source: "Good-bye?"})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.goodbye}, entityIDs(got))

	got, err = r.Resolve(ctx, record.Record{Source: "Never seen"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Resolve(ctx, record.Record{Source: "?!"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEntityResolverSkipsObsoleteEntities(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	cat := database.NewCatalogRepository(f.db)
	_, err := cat.UpsertEntity(ctx, f.resource, "goodbye", "Goodbye", true)
	require.NoError(t, err)

	r := NewEntityResolver(f.db, f.projectID)
	got, err := r.Resolve(ctx, record.Record{Source: "Goodbye"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Resolve(ctx, record.Record{Source: "Goodbye", Resource: "browser/main.ftl", Key: "goodbye"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
