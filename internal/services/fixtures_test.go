package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
)

type fixture struct {
	db        *database.Context
	userID    int64
	reviewer  int64
	projectID int64
	frID      int64
	deID      int64
	resource  int64
	hello     int64
	goodbye   int64
	helloDup  int64
}

func setupServiceDB(t *testing.T) *database.Context {
	t.Helper()
	ctx, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.CloseDatabase(ctx))
	})
	return ctx
}

// setupFixture provisions one project with French enabled and German known
// but not enabled. Two entities share the source "Hello world".
func setupFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: setupServiceDB(t)}
	ctx := context.Background()

	err := f.db.RunInTx(ctx, func(ctx context.Context, q *sqldb.Queries) error {
		cat := database.NewCatalogRepositoryTx(q)
		var err error
		if f.userID, err = cat.GetOrCreateUser(ctx, "admin", "admin@example.com"); err != nil {
			return err
		}
		if f.reviewer, err = cat.GetOrCreateUser(ctx, "reviewer", ""); err != nil {
			return err
		}
		if f.projectID, err = cat.GetOrCreateProject(ctx, "firefox", "Firefox"); err != nil {
			return err
		}
		if f.frID, err = cat.GetOrCreateLocale(ctx, "fr", "French"); err != nil {
			return err
		}
		if f.deID, err = cat.GetOrCreateLocale(ctx, "de", "German"); err != nil {
			return err
		}
		if _, err = cat.EnableLocale(ctx, f.projectID, f.frID); err != nil {
			return err
		}
		if f.resource, err = cat.GetOrCreateResource(ctx, f.projectID, "browser/main.ftl"); err != nil {
			return err
		}
		if f.hello, err = cat.UpsertEntity(ctx, f.resource, "hello", "Hello world", false); err != nil {
			return err
		}
		if f.goodbye, err = cat.UpsertEntity(ctx, f.resource, "goodbye", "Goodbye", false); err != nil {
			return err
		}
		other, err := cat.GetOrCreateResource(ctx, f.projectID, "browser/menu.ftl")
		if err != nil {
			return err
		}
		f.helloDup, err = cat.UpsertEntity(ctx, other, "menu-hello", "hello, world!", false)
		return err
	})
	require.NoError(t, err)
	return f
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Second)
		return at
	}
}

// create inserts a draft translation and propagates it.
func (f *fixture) create(t *testing.T, svc *TranslationService, entityID int64, text string) *Creation {
	t.Helper()
	var created *Creation
	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		var err error
		created, err = svc.Create(ctx, q, NewTranslation{
			EntityID:       entityID,
			LocaleID:       f.frID,
			String:         text,
			EntityDocument: EntityDocument("hello", text),
			UserID:         &f.userID,
		})
		if err != nil {
			return err
		}
		return NewPropagator().Created(ctx, q, created)
	})
	require.NoError(t, err)
	return created
}

// transition runs op and propagates its flips in one transaction.
func (f *fixture) transition(op func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error)) error {
	return f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		flips, err := op(ctx, q)
		if err != nil {
			return err
		}
		return NewPropagator().Apply(ctx, q, flips)
	})
}

func (f *fixture) translation(t *testing.T, id int64) database.TranslationRecord {
	t.Helper()
	q, err := f.db.Q()
	require.NoError(t, err)
	rec, err := NewTranslationService(nil).Get(context.Background(), q, id)
	require.NoError(t, err)
	return *rec
}

// requireCounters checks the counters of the four ancestors of (entity, fr).
func (f *fixture) requireCounters(t *testing.T, entityID, translated, approved int64) {
	t.Helper()
	ctx := context.Background()
	q, err := f.db.Q()
	require.NoError(t, err)

	entity, err := q.GetEntityByID(ctx, entityID)
	require.NoError(t, err)
	tr, err := q.GetTranslatedResource(ctx, entity.Entity.ResourceID, f.frID)
	require.NoError(t, err)
	pl, err := q.GetProjectLocale(ctx, f.projectID, f.frID)
	require.NoError(t, err)

	ids := map[sqldb.Aggregate]int64{
		sqldb.AggregateTranslatedResource: tr.ID,
		sqldb.AggregateProjectLocale:      pl.ID,
		sqldb.AggregateLocale:             f.frID,
		sqldb.AggregateProject:            f.projectID,
	}
	for agg, id := range ids {
		c, err := q.GetAggregateCounters(ctx, agg, id)
		require.NoError(t, err)
		require.Equal(t, translated, c.TranslatedStrings, "%s translated", agg)
		require.Equal(t, approved, c.ApprovedStrings, "%s approved", agg)
	}
}

func (f *fixture) requireLatest(t *testing.T, translationID int64) {
	t.Helper()
	ctx := context.Background()
	q, err := f.db.Q()
	require.NoError(t, err)
	for _, agg := range []sqldb.Aggregate{sqldb.AggregateLocale, sqldb.AggregateProject} {
		id := f.frID
		if agg == sqldb.AggregateProject {
			id = f.projectID
		}
		c, err := q.GetAggregateCounters(ctx, agg, id)
		require.NoError(t, err)
		require.True(t, c.LatestTranslationID.Valid, "%s latest", agg)
		require.Equal(t, translationID, c.LatestTranslationID.Int64, "%s latest", agg)
	}
}
