package sqldb

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var resourceColumns = []string{"id", "project_id", "path", "created_at"}

func scanResource(row rowScanner) (Resource, error) {
	var r Resource
	err := row.Scan(&r.ID, &r.ProjectID, &r.Path, &r.CreatedAt)
	return r, err
}

func (q *Queries) GetResourceByPath(ctx context.Context, projectID int64, path string) (Resource, error) {
	row, err := q.queryRow(ctx, q.sb.Select(resourceColumns...).From("resources").
		Where(sq.Eq{"project_id": projectID, "path": path}))
	if err != nil {
		return Resource{}, err
	}
	return scanResource(row)
}

func (q *Queries) GetResourceByID(ctx context.Context, id int64) (Resource, error) {
	row, err := q.queryRow(ctx, q.sb.Select(resourceColumns...).From("resources").Where(sq.Eq{"id": id}))
	if err != nil {
		return Resource{}, err
	}
	return scanResource(row)
}

type InsertResourceParams struct {
	ProjectID int64
	Path      string
	CreatedAt time.Time
}

func (q *Queries) InsertResource(ctx context.Context, arg InsertResourceParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("resources").
		Columns("project_id", "path", "created_at").
		Values(arg.ProjectID, arg.Path, arg.CreatedAt))
}

var translatedResourceColumns = []string{"id", "resource_id", "locale_id", "latest_translation_id", "translated_strings", "approved_strings"}

func scanTranslatedResource(row rowScanner) (TranslatedResource, error) {
	var tr TranslatedResource
	err := row.Scan(&tr.ID, &tr.ResourceID, &tr.LocaleID, &tr.LatestTranslationID, &tr.TranslatedStrings, &tr.ApprovedStrings)
	return tr, err
}

func (q *Queries) GetTranslatedResource(ctx context.Context, resourceID, localeID int64) (TranslatedResource, error) {
	row, err := q.queryRow(ctx, q.sb.Select(translatedResourceColumns...).From("translated_resources").
		Where(sq.Eq{"resource_id": resourceID, "locale_id": localeID}))
	if err != nil {
		return TranslatedResource{}, err
	}
	return scanTranslatedResource(row)
}

// EnsureTranslatedResource returns the id of the (resource, locale) row,
// creating it with zeroed counters when missing.
func (q *Queries) EnsureTranslatedResource(ctx context.Context, resourceID, localeID int64) (int64, error) {
	if _, err := q.exec(ctx, q.sb.Insert("translated_resources").
		Columns("resource_id", "locale_id").
		Values(resourceID, localeID).
		Suffix("ON CONFLICT (resource_id, locale_id) DO NOTHING")); err != nil {
		return 0, err
	}
	tr, err := q.GetTranslatedResource(ctx, resourceID, localeID)
	if err != nil {
		return 0, err
	}
	return tr.ID, nil
}
