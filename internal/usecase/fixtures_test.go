package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/provision"
)

const catalogYAML = `
users:
  - username: admin
  - username: alice
  - username: reviewer
locales:
  - code: fr
    name: French
  - code: de
    name: German
projects:
  - slug: firefox
    name: Firefox
    locales: [fr]
    resources:
      - path: main.ftl
        entities:
          - key: hello
            string: Hello world
          - key: bye
            string: Goodbye
      - path: menu.ftl
        entities:
          - key: hello
            string: "hello, world!"
          - key: quit
            string: Quit
`

func setupCatalog(t *testing.T) *database.Context {
	t.Helper()
	dbCtx, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDatabase(dbCtx) })
	provisionCatalog(t, dbCtx, catalogYAML)
	return dbCtx
}

func provisionCatalog(t *testing.T, dbCtx *database.Context, manifest string) {
	t.Helper()
	m, err := provision.Parse([]byte(manifest))
	require.NoError(t, err)
	_, err = provision.Apply(context.Background(), dbCtx, m)
	require.NoError(t, err)
}

func at(day int) time.Time {
	return time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC)
}

type aggregateIDs struct {
	project, locale, projectLocale int64
}

func lookupAggregates(t *testing.T, dbCtx *database.Context) aggregateIDs {
	t.Helper()
	ctx := context.Background()
	cat := database.NewCatalogRepository(dbCtx)
	project, err := cat.FindProject(ctx, "firefox")
	require.NoError(t, err)
	fr, err := cat.FindLocale(ctx, "fr")
	require.NoError(t, err)
	q, err := dbCtx.Q()
	require.NoError(t, err)
	pl, err := q.GetProjectLocale(ctx, project.ID, fr.ID)
	require.NoError(t, err)
	return aggregateIDs{project: project.ID, locale: fr.ID, projectLocale: pl.ID}
}

// requireCounters checks the project, locale and project locale counters.
func requireCounters(t *testing.T, dbCtx *database.Context, translated, approved int64) {
	t.Helper()
	ids := lookupAggregates(t, dbCtx)
	q, err := dbCtx.Q()
	require.NoError(t, err)
	for agg, id := range map[sqldb.Aggregate]int64{
		sqldb.AggregateProject:       ids.project,
		sqldb.AggregateLocale:        ids.locale,
		sqldb.AggregateProjectLocale: ids.projectLocale,
	} {
		c, err := q.GetAggregateCounters(context.Background(), agg, id)
		require.NoError(t, err)
		require.Equal(t, translated, c.TranslatedStrings, "%s translated", agg)
		require.Equal(t, approved, c.ApprovedStrings, "%s approved", agg)
	}
}

func entityID(t *testing.T, dbCtx *database.Context, path, key string) int64 {
	t.Helper()
	ctx := context.Background()
	q, err := dbCtx.Q()
	require.NoError(t, err)
	ids := lookupAggregates(t, dbCtx)
	res, err := q.GetResourceByPath(ctx, ids.project, path)
	require.NoError(t, err)
	e, err := q.GetEntityByKey(ctx, res.ID, key)
	require.NoError(t, err)
	return e.Entity.ID
}

func siblings(t *testing.T, dbCtx *database.Context, entity, locale int64) []sqldb.Translation {
	t.Helper()
	q, err := dbCtx.Q()
	require.NoError(t, err)
	rows, err := q.ListSiblings(context.Background(), entity, locale)
	require.NoError(t, err)
	return rows
}
