package services

import (
	"context"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/logging"
)

// Ancestors are the ids of the four aggregates a translation counts towards.
type Ancestors struct {
	TranslatedResourceID int64
	ProjectLocaleID      int64
	LocaleID             int64
	ProjectID            int64
}

func (a Ancestors) each(fn func(agg sqldb.Aggregate, id int64) error) error {
	ids := map[sqldb.Aggregate]int64{
		sqldb.AggregateTranslatedResource: a.TranslatedResourceID,
		sqldb.AggregateProjectLocale:      a.ProjectLocaleID,
		sqldb.AggregateLocale:             a.LocaleID,
		sqldb.AggregateProject:            a.ProjectID,
	}
	for _, agg := range sqldb.Aggregates {
		if err := fn(agg, ids[agg]); err != nil {
			return err
		}
	}
	return nil
}

// Propagator maintains the latest-translation pointers and the
// translated/approved counters of every aggregate. It must run on the same
// transaction as the translation write it follows.
type Propagator struct{}

// NewPropagator creates a new Propagator.
func NewPropagator() *Propagator {
	return &Propagator{}
}

// Ancestors resolves the aggregates of an (entity, locale) pair. The
// translated resource row is created on first use. A locale that is not
// enabled for the entity's project is a NotFoundError.
func (p *Propagator) Ancestors(ctx context.Context, q *sqldb.Queries, entityID, localeID int64) (Ancestors, error) {
	entity, err := entityOf(ctx, q, entityID)
	if err != nil {
		return Ancestors{}, err
	}
	trID, err := q.EnsureTranslatedResource(ctx, entity.ResourceID, localeID)
	if err != nil {
		return Ancestors{}, err
	}
	pl, err := q.GetProjectLocale(ctx, entity.ProjectID, localeID)
	if err != nil {
		return Ancestors{}, database.NotFound(err, "project locale", entity.ResourcePath)
	}
	return Ancestors{
		TranslatedResourceID: trID,
		ProjectLocaleID:      pl.ID,
		LocaleID:             localeID,
		ProjectID:            entity.ProjectID,
	}, nil
}

// Created points every ancestor at the new translation, counts the pair as
// translated when it is the first translation, then applies the approval
// flips of the creation.
func (p *Propagator) Created(ctx context.Context, q *sqldb.Queries, c *Creation) error {
	t := c.Translation
	anc, err := p.Ancestors(ctx, q, t.EntityID, t.LocaleID)
	if err != nil {
		return err
	}

	err = anc.each(func(agg sqldb.Aggregate, id int64) error {
		if err := q.SetLatestTranslation(ctx, agg, id, t.ID); err != nil {
			return err
		}
		if c.First {
			return q.AdjustAggregateCounters(ctx, agg, id, 1, 0)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().
		Int64("translation_id", t.ID).
		Bool("first", c.First).
		Msg("propagated translation")

	return p.Apply(ctx, q, c.Flips)
}

// Apply moves one unit between the translated and approved counters of every
// ancestor for each flip.
func (p *Propagator) Apply(ctx context.Context, q *sqldb.Queries, flips []ApprovalFlip) error {
	cache := make(map[[2]int64]Ancestors)
	for _, f := range flips {
		pair := [2]int64{f.EntityID, f.LocaleID}
		anc, ok := cache[pair]
		if !ok {
			var err error
			anc, err = p.Ancestors(ctx, q, f.EntityID, f.LocaleID)
			if err != nil {
				return err
			}
			cache[pair] = anc
		}

		translated, approved := int64(1), int64(-1)
		if f.Approved {
			translated, approved = -1, 1
		}
		err := anc.each(func(agg sqldb.Aggregate, id int64) error {
			return q.AdjustAggregateCounters(ctx, agg, id, translated, approved)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
