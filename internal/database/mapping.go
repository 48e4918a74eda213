package database

import (
	"database/sql"

	"github.com/locsync/locsync/internal/database/sqldb"
)

func countersFromRow(latest sql.NullInt64, translated, approved int64) Counters {
	return Counters{
		LatestTranslationID: optionalInt64(latest),
		TranslatedStrings:   translated,
		ApprovedStrings:     approved,
	}
}

// UserRecordFromRow converts a database user row to a UserRecord.
func UserRecordFromRow(row sqldb.User) UserRecord {
	return UserRecord{
		ID:        row.ID,
		Username:  row.Username,
		Email:     optionalString(row.Email),
		CreatedAt: row.CreatedAt,
	}
}

// LocaleRecordFromRow converts a database locale row to a LocaleRecord.
func LocaleRecordFromRow(row sqldb.Locale) LocaleRecord {
	return LocaleRecord{
		ID:       row.ID,
		Code:     row.Code,
		Name:     row.Name,
		Counters: countersFromRow(row.LatestTranslationID, row.TranslatedStrings, row.ApprovedStrings),
	}
}

// ProjectRecordFromRow converts a database project row to a ProjectRecord.
func ProjectRecordFromRow(row sqldb.Project) ProjectRecord {
	return ProjectRecord{
		ID:        row.ID,
		Slug:      row.Slug,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		Counters:  countersFromRow(row.LatestTranslationID, row.TranslatedStrings, row.ApprovedStrings),
	}
}

// ProjectLocaleRecordFromRow converts a joined project-locale row.
func ProjectLocaleRecordFromRow(row sqldb.ProjectLocaleRow) ProjectLocaleRecord {
	pl := row.ProjectLocale
	return ProjectLocaleRecord{
		ID:         pl.ID,
		ProjectID:  pl.ProjectID,
		LocaleID:   pl.LocaleID,
		LocaleCode: row.LocaleCode,
		LocaleName: row.LocaleName,
		Counters:   countersFromRow(pl.LatestTranslationID, pl.TranslatedStrings, pl.ApprovedStrings),
	}
}

// ResourceRecordFromRow converts a database resource row.
func ResourceRecordFromRow(row sqldb.Resource) ResourceRecord {
	return ResourceRecord{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		Path:      row.Path,
	}
}

// EntityRecordFromRow converts an entity joined with its resource.
func EntityRecordFromRow(row sqldb.EntityWithResource) EntityRecord {
	return EntityRecord{
		ID:           row.Entity.ID,
		ResourceID:   row.Entity.ResourceID,
		ProjectID:    row.ProjectID,
		ResourcePath: row.ResourcePath,
		Key:          row.Entity.Key,
		String:       row.Entity.String,
		Obsolete:     row.Entity.Obsolete,
	}
}

// EntityRecordsFromRows converts a slice of joined entity rows.
func EntityRecordsFromRows(rows []sqldb.EntityWithResource) []EntityRecord {
	out := make([]EntityRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, EntityRecordFromRow(row))
	}
	return out
}

// TranslationRecordFromRow converts a database translation row.
func TranslationRecordFromRow(row sqldb.Translation) TranslationRecord {
	return TranslationRecord{
		ID:               row.ID,
		EntityID:         row.EntityID,
		LocaleID:         row.LocaleID,
		UserID:           optionalInt64(row.UserID),
		String:           row.String,
		EntityDocument:   row.EntityDocument,
		Date:             row.Date,
		Approved:         row.Approved,
		ApprovedUserID:   optionalInt64(row.ApprovedUserID),
		ApprovedDate:     optionalTime(row.ApprovedDate),
		UnapprovedUserID: optionalInt64(row.UnapprovedUserID),
		UnapprovedDate:   optionalTime(row.UnapprovedDate),
		Rejected:         row.Rejected,
		RejectedUserID:   optionalInt64(row.RejectedUserID),
		RejectedDate:     optionalTime(row.RejectedDate),
		UnrejectedUserID: optionalInt64(row.UnrejectedUserID),
		UnrejectedDate:   optionalTime(row.UnrejectedDate),
		Fuzzy:            row.Fuzzy,
		Verbatim:         row.Verbatim,
		Extra:            row.Extra,
	}
}

// TranslationStateParams builds the review-field update for a translation.
func TranslationStateParams(t TranslationRecord) sqldb.UpdateTranslationStateParams {
	return sqldb.UpdateTranslationStateParams{
		ID:               t.ID,
		Approved:         t.Approved,
		ApprovedUserID:   NullInt64(t.ApprovedUserID),
		ApprovedDate:     NullTime(t.ApprovedDate),
		UnapprovedUserID: NullInt64(t.UnapprovedUserID),
		UnapprovedDate:   NullTime(t.UnapprovedDate),
		Rejected:         t.Rejected,
		RejectedUserID:   NullInt64(t.RejectedUserID),
		RejectedDate:     NullTime(t.RejectedDate),
		UnrejectedUserID: NullInt64(t.UnrejectedUserID),
		UnrejectedDate:   NullTime(t.UnrejectedDate),
	}
}

// TranslationInsertParams builds the insert for a new translation.
func TranslationInsertParams(t TranslationRecord) sqldb.InsertTranslationParams {
	return sqldb.InsertTranslationParams{
		EntityID:       t.EntityID,
		LocaleID:       t.LocaleID,
		UserID:         NullInt64(t.UserID),
		String:         t.String,
		EntityDocument: t.EntityDocument,
		Date:           t.Date,
		Approved:       t.Approved,
		ApprovedUserID: NullInt64(t.ApprovedUserID),
		ApprovedDate:   NullTime(t.ApprovedDate),
		Fuzzy:          t.Fuzzy,
		Verbatim:       t.Verbatim,
		Extra:          t.Extra,
	}
}

// MemoryRecordFromRow converts a database memory row.
func MemoryRecordFromRow(row sqldb.Memory) MemoryRecord {
	return MemoryRecord{
		ID:            row.ID,
		Source:        row.Source,
		Target:        row.Target,
		EntityID:      optionalInt64(row.EntityID),
		LocaleID:      row.LocaleID,
		TranslationID: optionalInt64(row.TranslationID),
		ProjectID:     optionalInt64(row.ProjectID),
		CreatedAt:     row.CreatedAt,
	}
}

// CountersFromAggregate converts an aggregate counter row.
func CountersFromAggregate(row sqldb.AggregateCounters) Counters {
	return countersFromRow(row.LatestTranslationID, row.TranslatedStrings, row.ApprovedStrings)
}
