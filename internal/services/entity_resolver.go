package services

import (
	"context"
	"database/sql"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/normalize"
	"github.com/locsync/locsync/internal/record"
)

// EntityResolver maps incoming records to the active entities of one project.
// It caches resources and the normalised source-string index for its
// lifetime, so create one per import batch.
type EntityResolver struct {
	ctx       *database.Context
	projectID int64
	resources map[string]int64
	index     map[string][]database.EntityRecord
}

// NewEntityResolver creates a resolver scoped to a project.
func NewEntityResolver(ctx *database.Context, projectID int64) *EntityResolver {
	return &EntityResolver{
		ctx:       ctx,
		projectID: projectID,
		resources: make(map[string]int64),
	}
}

// Resolve returns every matching non-obsolete entity. Records with both a
// resource and a key match exactly on those; all others match on the
// normalised source string. No match is an empty result, not an error.
func (r *EntityResolver) Resolve(ctx context.Context, rec record.Record) ([]database.EntityRecord, error) {
	if rec.HasKey() {
		return r.byKey(ctx, rec.Resource, rec.Key)
	}
	return r.bySource(ctx, rec.Source)
}

func (r *EntityResolver) byKey(ctx context.Context, path, key string) ([]database.EntityRecord, error) {
	q, err := r.ctx.Q()
	if err != nil {
		return nil, err
	}

	resourceID, cached := r.resources[path]
	if !cached {
		res, err := q.GetResourceByPath(ctx, r.projectID, path)
		switch {
		case err == nil:
			resourceID = res.ID
		case errors.Is(err, sql.ErrNoRows):
			resourceID = 0
		default:
			return nil, err
		}
		r.resources[path] = resourceID
	}
	if resourceID == 0 {
		return nil, nil
	}

	rows, err := q.ListEntitiesByKey(ctx, resourceID, key)
	if err != nil {
		return nil, err
	}
	return database.EntityRecordsFromRows(rows), nil
}

func (r *EntityResolver) bySource(ctx context.Context, source string) ([]database.EntityRecord, error) {
	key := normalize.SourceString(source)
	if key == "" {
		return nil, nil
	}
	if r.index == nil {
		if err := r.buildIndex(ctx); err != nil {
			return nil, err
		}
	}
	return r.index[key], nil
}

func (r *EntityResolver) buildIndex(ctx context.Context) error {
	q, err := r.ctx.Q()
	if err != nil {
		return err
	}
	rows, err := q.ListActiveEntities(ctx, r.projectID)
	if err != nil {
		return err
	}

	index := make(map[string][]database.EntityRecord, len(rows))
	for _, entity := range database.EntityRecordsFromRows(rows) {
		key := normalize.SourceString(entity.String)
		if key == "" {
			continue
		}
		index[key] = append(index[key], entity)
	}
	r.index = index
	return nil
}
