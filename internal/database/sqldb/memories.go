package sqldb

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var memoryColumns = []string{"id", "source", "target", "entity_id", "locale_id", "translation_id", "project_id", "created_at"}

type InsertMemoryParams struct {
	Source        string
	Target        string
	EntityID      sql.NullInt64
	LocaleID      int64
	TranslationID sql.NullInt64
	ProjectID     sql.NullInt64
	CreatedAt     time.Time
}

func (q *Queries) InsertMemory(ctx context.Context, arg InsertMemoryParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("memories").
		Columns("source", "target", "entity_id", "locale_id", "translation_id", "project_id", "created_at").
		Values(arg.Source, arg.Target, arg.EntityID, arg.LocaleID, arg.TranslationID, arg.ProjectID, arg.CreatedAt))
}

func (q *Queries) ListMemoriesByTranslation(ctx context.Context, translationID int64) ([]Memory, error) {
	rows, err := q.query(ctx, q.sb.Select(memoryColumns...).From("memories").
		Where(sq.Eq{"translation_id": translationID}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Memory
	for rows.Next() {
		var m Memory
		if err := rows.Scan(&m.ID, &m.Source, &m.Target, &m.EntityID, &m.LocaleID, &m.TranslationID, &m.ProjectID, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) CountMemories(ctx context.Context) (int64, error) {
	row, err := q.queryRow(ctx, q.sb.Select("COUNT(*)").From("memories"))
	if err != nil {
		return 0, err
	}
	var n int64
	err = row.Scan(&n)
	return n, err
}
