package sqldb

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var entityColumns = []string{"e.id", "e.resource_id", "e.key", "e.string", "e.obsolete", "e.created_at"}

// EntityWithResource is an entity joined with its resource.
type EntityWithResource struct {
	Entity       Entity
	ResourcePath string
	ProjectID    int64
}

func (q *Queries) selectEntities() sq.SelectBuilder {
	cols := append(append([]string{}, entityColumns...), "r.path", "r.project_id")
	return q.sb.Select(cols...).From("entities e").Join("resources r ON r.id = e.resource_id")
}

func scanEntityWithResource(row rowScanner) (EntityWithResource, error) {
	var item EntityWithResource
	e := &item.Entity
	err := row.Scan(&e.ID, &e.ResourceID, &e.Key, &e.String, &e.Obsolete, &e.CreatedAt, &item.ResourcePath, &item.ProjectID)
	return item, err
}

func (q *Queries) listEntities(ctx context.Context, b sq.SelectBuilder) ([]EntityWithResource, error) {
	rows, err := q.query(ctx, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []EntityWithResource
	for rows.Next() {
		item, err := scanEntityWithResource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (q *Queries) GetEntityByID(ctx context.Context, id int64) (EntityWithResource, error) {
	row, err := q.queryRow(ctx, q.selectEntities().Where(sq.Eq{"e.id": id}))
	if err != nil {
		return EntityWithResource{}, err
	}
	return scanEntityWithResource(row)
}

// ListEntitiesByKey returns active entities of a resource with the exact key.
func (q *Queries) ListEntitiesByKey(ctx context.Context, resourceID int64, key string) ([]EntityWithResource, error) {
	return q.listEntities(ctx, q.selectEntities().
		Where(sq.Eq{"e.resource_id": resourceID, "e.key": key, "e.obsolete": false}).
		OrderBy("e.id"))
}

// ListActiveEntities returns every non-obsolete entity of a project.
func (q *Queries) ListActiveEntities(ctx context.Context, projectID int64) ([]EntityWithResource, error) {
	return q.listEntities(ctx, q.selectEntities().
		Where(sq.Eq{"r.project_id": projectID, "e.obsolete": false}).
		OrderBy("e.id"))
}

// ListUntranslatedEntities returns active entities of a project that have never
// been translated into the locale.
func (q *Queries) ListUntranslatedEntities(ctx context.Context, projectID, localeID int64) ([]EntityWithResource, error) {
	return q.listEntities(ctx, q.selectEntities().
		LeftJoin("translated_entities te ON te.entity_id = e.id AND te.locale_id = ?", localeID).
		Where(sq.Eq{"r.project_id": projectID, "e.obsolete": false}).
		Where("te.entity_id IS NULL").
		OrderBy("r.path", "e.id"))
}

type InsertEntityParams struct {
	ResourceID int64
	Key        string
	String     string
	Obsolete   bool
	CreatedAt  time.Time
}

func (q *Queries) InsertEntity(ctx context.Context, arg InsertEntityParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("entities").
		Columns("resource_id", "key", "string", "obsolete", "created_at").
		Values(arg.ResourceID, arg.Key, arg.String, arg.Obsolete, arg.CreatedAt))
}

// UpdateEntity rewrites the source string and obsolete flag.
func (q *Queries) UpdateEntity(ctx context.Context, id int64, str string, obsolete bool) error {
	return q.execOne(ctx, q.sb.Update("entities").
		Set("string", str).
		Set("obsolete", obsolete).
		Where(sq.Eq{"id": id}))
}

// GetEntityByKey returns the oldest entity with the key regardless of its obsolete flag.
func (q *Queries) GetEntityByKey(ctx context.Context, resourceID int64, key string) (EntityWithResource, error) {
	row, err := q.queryRow(ctx, q.selectEntities().
		Where(sq.Eq{"e.resource_id": resourceID, "e.key": key}).
		OrderBy("e.id").
		Limit(1))
	if err != nil {
		return EntityWithResource{}, err
	}
	return scanEntityWithResource(row)
}
