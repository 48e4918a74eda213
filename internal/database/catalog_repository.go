package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locsync/locsync/internal/database/sqldb"
)

// CatalogRepository looks up and provisions the rows the engine only reads:
// users, locales, projects, their locales, resources and entities.
type CatalogRepository struct {
	q   *sqldb.Queries
	now func() time.Time
}

// NewCatalogRepository creates a repository on the non-transactional queries.
func NewCatalogRepository(ctx *Context) *CatalogRepository {
	return &CatalogRepository{q: queriesFromContext(ctx), now: utcNow}
}

// NewCatalogRepositoryTx creates a repository bound to a transaction's queries.
func NewCatalogRepositoryTx(q *sqldb.Queries) *CatalogRepository {
	return &CatalogRepository{q: q, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (r *CatalogRepository) queries() (*sqldb.Queries, error) {
	if r == nil || r.q == nil {
		return nil, fmt.Errorf("catalog repository: missing database context")
	}
	return r.q, nil
}

// FindUser returns nil when no user has the username.
func (r *CatalogRepository) FindUser(ctx context.Context, username string) (*UserRecord, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec := UserRecordFromRow(row)
	return &rec, nil
}

// GetOrCreateUser returns the user id, creating the user when missing.
func (r *CatalogRepository) GetOrCreateUser(ctx context.Context, username, email string) (int64, error) {
	existing, err := r.FindUser(ctx, username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	return r.q.InsertUser(ctx, sqldb.InsertUserParams{
		Username:  username,
		Email:     nullString(email),
		CreatedAt: r.now(),
	})
}

// FindLocale matches the exact code case-insensitively; nil when missing.
func (r *CatalogRepository) FindLocale(ctx context.Context, code string) (*LocaleRecord, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.GetLocaleByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec := LocaleRecordFromRow(row)
	return &rec, nil
}

// GetOrCreateLocale returns the locale id, creating the locale when missing.
func (r *CatalogRepository) GetOrCreateLocale(ctx context.Context, code, name string) (int64, error) {
	existing, err := r.FindLocale(ctx, code)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	return r.q.InsertLocale(ctx, sqldb.InsertLocaleParams{Code: code, Name: name})
}

// FindProject matches a slug or a name; nil when missing.
func (r *CatalogRepository) FindProject(ctx context.Context, ident string) (*ProjectRecord, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.GetProjectBySlugOrName(ctx, ident)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec := ProjectRecordFromRow(row)
	return &rec, nil
}

// GetOrCreateProject returns the project id, creating the project when missing.
func (r *CatalogRepository) GetOrCreateProject(ctx context.Context, slug, name string) (int64, error) {
	existing, err := r.FindProject(ctx, slug)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	if name == "" {
		name = slug
	}
	return r.q.InsertProject(ctx, sqldb.InsertProjectParams{Slug: slug, Name: name, CreatedAt: r.now()})
}

// EnableLocale configures a locale for a project. It is a no-op when already enabled.
func (r *CatalogRepository) EnableLocale(ctx context.Context, projectID, localeID int64) (int64, error) {
	q, err := r.queries()
	if err != nil {
		return 0, err
	}
	pl, err := q.GetProjectLocale(ctx, projectID, localeID)
	switch {
	case err == nil:
		return pl.ID, nil
	case errors.Is(err, sql.ErrNoRows):
		return q.InsertProjectLocale(ctx, projectID, localeID)
	default:
		return 0, err
	}
}

// ListProjectLocales returns the locales configured for a project.
func (r *CatalogRepository) ListProjectLocales(ctx context.Context, projectID int64) ([]ProjectLocaleRecord, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListProjectLocales(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectLocaleRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProjectLocaleRecordFromRow(row))
	}
	return out, nil
}

// GetOrCreateResource returns the resource id, creating the resource when missing.
func (r *CatalogRepository) GetOrCreateResource(ctx context.Context, projectID int64, path string) (int64, error) {
	q, err := r.queries()
	if err != nil {
		return 0, err
	}
	res, err := q.GetResourceByPath(ctx, projectID, path)
	switch {
	case err == nil:
		return res.ID, nil
	case errors.Is(err, sql.ErrNoRows):
		return q.InsertResource(ctx, sqldb.InsertResourceParams{ProjectID: projectID, Path: path, CreatedAt: r.now()})
	default:
		return 0, err
	}
}

// UpsertEntity creates the entity, or refreshes the source string and
// obsolete flag of the first entity with the same key.
func (r *CatalogRepository) UpsertEntity(ctx context.Context, resourceID int64, key, source string, obsolete bool) (int64, error) {
	q, err := r.queries()
	if err != nil {
		return 0, err
	}
	if key != "" {
		row, err := q.GetEntityByKey(ctx, resourceID, key)
		switch {
		case err == nil:
			return row.Entity.ID, q.UpdateEntity(ctx, row.Entity.ID, source, obsolete)
		case !errors.Is(err, sql.ErrNoRows):
			return 0, err
		}
	}
	return q.InsertEntity(ctx, sqldb.InsertEntityParams{
		ResourceID: resourceID,
		Key:        key,
		String:     source,
		Obsolete:   obsolete,
		CreatedAt:  r.now(),
	})
}
