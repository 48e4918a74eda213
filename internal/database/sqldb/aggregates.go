package sqldb

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// Aggregate names a table that carries translation counters and a latest pointer.
type Aggregate string

const (
	AggregateTranslatedResource Aggregate = "translated_resources"
	AggregateProjectLocale      Aggregate = "project_locales"
	AggregateLocale             Aggregate = "locales"
	AggregateProject            Aggregate = "projects"
)

// Aggregates lists every aggregate from the narrowest to the widest.
var Aggregates = []Aggregate{
	AggregateTranslatedResource,
	AggregateProjectLocale,
	AggregateLocale,
	AggregateProject,
}

type AggregateCounters struct {
	ID                  int64
	LatestTranslationID sql.NullInt64
	TranslatedStrings   int64
	ApprovedStrings     int64
}

func (q *Queries) GetAggregateCounters(ctx context.Context, agg Aggregate, id int64) (AggregateCounters, error) {
	row, err := q.queryRow(ctx, q.sb.Select("id", "latest_translation_id", "translated_strings", "approved_strings").
		From(string(agg)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return AggregateCounters{}, err
	}
	var c AggregateCounters
	err = row.Scan(&c.ID, &c.LatestTranslationID, &c.TranslatedStrings, &c.ApprovedStrings)
	return c, err
}

func (q *Queries) SetLatestTranslation(ctx context.Context, agg Aggregate, id, translationID int64) error {
	return q.execOne(ctx, q.sb.Update(string(agg)).
		Set("latest_translation_id", translationID).
		Where(sq.Eq{"id": id}))
}

// AdjustAggregateCounters applies the deltas inside the UPDATE so concurrent
// writers never lose an increment.
func (q *Queries) AdjustAggregateCounters(ctx context.Context, agg Aggregate, id, translatedDelta, approvedDelta int64) error {
	return q.execOne(ctx, q.sb.Update(string(agg)).
		Set("translated_strings", sq.Expr("translated_strings + ?", translatedDelta)).
		Set("approved_strings", sq.Expr("approved_strings + ?", approvedDelta)).
		Where(sq.Eq{"id": id}))
}

// CountTranslatedPairs counts the (entity, locale) pairs of a project locale
// that have at least one translation. Each pair adds one to
// translated_strings when first translated and approval flips only move that
// unit between the two counters, so their sum must equal this count.
func (q *Queries) CountTranslatedPairs(ctx context.Context, projectID, localeID int64) (int64, error) {
	row, err := q.queryRow(ctx, q.sb.Select("COUNT(*)").
		From("translated_entities te").
		Join("entities e ON e.id = te.entity_id").
		Join("resources r ON r.id = e.resource_id").
		Where(sq.Eq{"r.project_id": projectID, "te.locale_id": localeID}))
	if err != nil {
		return 0, err
	}
	var pairs int64
	if err := row.Scan(&pairs); err != nil {
		return 0, err
	}
	return pairs, nil
}
