package sqldb

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var localeColumns = []string{"id", "code", "name", "latest_translation_id", "translated_strings", "approved_strings"}

func scanLocale(row rowScanner) (Locale, error) {
	var l Locale
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.LatestTranslationID, &l.TranslatedStrings, &l.ApprovedStrings)
	return l, err
}

// GetLocaleByCode matches the code case-insensitively.
func (q *Queries) GetLocaleByCode(ctx context.Context, code string) (Locale, error) {
	row, err := q.queryRow(ctx, q.sb.Select(localeColumns...).From("locales").
		Where(sq.Expr("lower(code) = ?", strings.ToLower(code))))
	if err != nil {
		return Locale{}, err
	}
	return scanLocale(row)
}

func (q *Queries) GetLocaleByID(ctx context.Context, id int64) (Locale, error) {
	row, err := q.queryRow(ctx, q.sb.Select(localeColumns...).From("locales").Where(sq.Eq{"id": id}))
	if err != nil {
		return Locale{}, err
	}
	return scanLocale(row)
}

type InsertLocaleParams struct {
	Code string
	Name string
}

func (q *Queries) InsertLocale(ctx context.Context, arg InsertLocaleParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("locales").
		Columns("code", "name").
		Values(arg.Code, arg.Name))
}
