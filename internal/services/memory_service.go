package services

import (
	"context"
	"time"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
)

// MemoryService records translation-memory pairs. Memories are written once
// and never updated.
type MemoryService struct {
	now func() time.Time
}

// NewMemoryService creates a new MemoryService. A nil clock means time.Now in UTC.
func NewMemoryService(now func() time.Time) *MemoryService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MemoryService{now: now}
}

// Capture stores the entity's source string paired with the translation text.
func (s *MemoryService) Capture(ctx context.Context, q *sqldb.Queries, t database.TranslationRecord) (*database.MemoryRecord, error) {
	entity, err := entityOf(ctx, q, t.EntityID)
	if err != nil {
		return nil, err
	}

	rec := database.MemoryRecord{
		Source:        entity.String,
		Target:        t.String,
		EntityID:      &entity.ID,
		LocaleID:      t.LocaleID,
		TranslationID: &t.ID,
		ProjectID:     &entity.ProjectID,
		CreatedAt:     s.now(),
	}
	id, err := q.InsertMemory(ctx, sqldb.InsertMemoryParams{
		Source:        rec.Source,
		Target:        rec.Target,
		EntityID:      database.NullInt64(rec.EntityID),
		LocaleID:      rec.LocaleID,
		TranslationID: database.NullInt64(rec.TranslationID),
		ProjectID:     database.NullInt64(rec.ProjectID),
		CreatedAt:     rec.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return &rec, nil
}

// ForTranslation lists the memories captured for a translation.
func (s *MemoryService) ForTranslation(ctx context.Context, q *sqldb.Queries, translationID int64) ([]database.MemoryRecord, error) {
	rows, err := q.ListMemoriesByTranslation(ctx, translationID)
	if err != nil {
		return nil, err
	}
	out := make([]database.MemoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, database.MemoryRecordFromRow(row))
	}
	return out, nil
}
