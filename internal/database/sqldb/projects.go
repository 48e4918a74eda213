package sqldb

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var projectColumns = []string{"id", "slug", "name", "latest_translation_id", "translated_strings", "approved_strings", "created_at"}

func scanProject(row rowScanner) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.LatestTranslationID, &p.TranslatedStrings, &p.ApprovedStrings, &p.CreatedAt)
	return p, err
}

// GetProjectBySlugOrName prefers the oldest project when a slug and a name collide.
func (q *Queries) GetProjectBySlugOrName(ctx context.Context, ident string) (Project, error) {
	row, err := q.queryRow(ctx, q.sb.Select(projectColumns...).From("projects").
		Where(sq.Or{sq.Eq{"slug": ident}, sq.Eq{"name": ident}}).
		OrderBy("id").
		Limit(1))
	if err != nil {
		return Project{}, err
	}
	return scanProject(row)
}

func (q *Queries) GetProjectByID(ctx context.Context, id int64) (Project, error) {
	row, err := q.queryRow(ctx, q.sb.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}))
	if err != nil {
		return Project{}, err
	}
	return scanProject(row)
}

type InsertProjectParams struct {
	Slug      string
	Name      string
	CreatedAt time.Time
}

func (q *Queries) InsertProject(ctx context.Context, arg InsertProjectParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("projects").
		Columns("slug", "name", "created_at").
		Values(arg.Slug, arg.Name, arg.CreatedAt))
}

var projectLocaleColumns = []string{"pl.id", "pl.project_id", "pl.locale_id", "pl.latest_translation_id", "pl.translated_strings", "pl.approved_strings"}

func scanProjectLocale(row rowScanner, extra ...any) (ProjectLocale, error) {
	var pl ProjectLocale
	dest := append([]any{&pl.ID, &pl.ProjectID, &pl.LocaleID, &pl.LatestTranslationID, &pl.TranslatedStrings, &pl.ApprovedStrings}, extra...)
	err := row.Scan(dest...)
	return pl, err
}

func (q *Queries) GetProjectLocale(ctx context.Context, projectID, localeID int64) (ProjectLocale, error) {
	row, err := q.queryRow(ctx, q.sb.Select(projectLocaleColumns...).From("project_locales pl").
		Where(sq.Eq{"pl.project_id": projectID, "pl.locale_id": localeID}))
	if err != nil {
		return ProjectLocale{}, err
	}
	return scanProjectLocale(row)
}

func (q *Queries) InsertProjectLocale(ctx context.Context, projectID, localeID int64) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("project_locales").
		Columns("project_id", "locale_id").
		Values(projectID, localeID))
}

// ProjectLocaleRow is a configured locale of a project with its counters.
type ProjectLocaleRow struct {
	ProjectLocale ProjectLocale
	LocaleCode    string
	LocaleName    string
}

func (q *Queries) ListProjectLocales(ctx context.Context, projectID int64) ([]ProjectLocaleRow, error) {
	cols := append(append([]string{}, projectLocaleColumns...), "l.code", "l.name")
	rows, err := q.query(ctx, q.sb.Select(cols...).From("project_locales pl").
		Join("locales l ON l.id = pl.locale_id").
		Where(sq.Eq{"pl.project_id": projectID}).
		OrderBy("l.code"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ProjectLocaleRow
	for rows.Next() {
		var item ProjectLocaleRow
		pl, err := scanProjectLocale(rows, &item.LocaleCode, &item.LocaleName)
		if err != nil {
			return nil, err
		}
		item.ProjectLocale = pl
		items = append(items, item)
	}
	return items, rows.Err()
}
