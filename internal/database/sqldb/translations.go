package sqldb

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var translationColumns = []string{
	"id", "entity_id", "locale_id", "user_id", "string", "entity_document", "date",
	"approved", "approved_user_id", "approved_date",
	"unapproved_user_id", "unapproved_date",
	"rejected", "rejected_user_id", "rejected_date",
	"unrejected_user_id", "unrejected_date",
	"fuzzy", "verbatim", "extra",
}

func scanTranslation(row rowScanner) (Translation, error) {
	var t Translation
	err := row.Scan(
		&t.ID, &t.EntityID, &t.LocaleID, &t.UserID, &t.String, &t.EntityDocument, &t.Date,
		&t.Approved, &t.ApprovedUserID, &t.ApprovedDate,
		&t.UnapprovedUserID, &t.UnapprovedDate,
		&t.Rejected, &t.RejectedUserID, &t.RejectedDate,
		&t.UnrejectedUserID, &t.UnrejectedDate,
		&t.Fuzzy, &t.Verbatim, &t.Extra,
	)
	return t, err
}

func (q *Queries) GetTranslation(ctx context.Context, id int64) (Translation, error) {
	row, err := q.queryRow(ctx, q.sb.Select(translationColumns...).From("translations").Where(sq.Eq{"id": id}))
	if err != nil {
		return Translation{}, err
	}
	return scanTranslation(row)
}

// GetTranslationForUpdate reads a translation and, on PostgreSQL, locks it
// for the rest of the transaction.
func (q *Queries) GetTranslationForUpdate(ctx context.Context, id int64) (Translation, error) {
	row, err := q.queryRow(ctx, q.forUpdate(q.sb.Select(translationColumns...).From("translations").Where(sq.Eq{"id": id})))
	if err != nil {
		return Translation{}, err
	}
	return scanTranslation(row)
}

// ListSiblings returns all translations of an entity into a locale, oldest first.
func (q *Queries) ListSiblings(ctx context.Context, entityID, localeID int64) ([]Translation, error) {
	rows, err := q.query(ctx, q.sb.Select(translationColumns...).From("translations").
		Where(sq.Eq{"entity_id": entityID, "locale_id": localeID}).
		OrderBy("date", "id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

type InsertTranslationParams struct {
	EntityID       int64
	LocaleID       int64
	UserID         sql.NullInt64
	String         string
	EntityDocument string
	Date           time.Time
	Approved       bool
	ApprovedUserID sql.NullInt64
	ApprovedDate   sql.NullTime
	Fuzzy          bool
	Verbatim       bool
	Extra          string
}

func (q *Queries) InsertTranslation(ctx context.Context, arg InsertTranslationParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("translations").
		Columns("entity_id", "locale_id", "user_id", "string", "entity_document", "date",
			"approved", "approved_user_id", "approved_date", "rejected", "fuzzy", "verbatim", "extra").
		Values(arg.EntityID, arg.LocaleID, arg.UserID, arg.String, arg.EntityDocument, arg.Date,
			arg.Approved, arg.ApprovedUserID, arg.ApprovedDate, false, arg.Fuzzy, arg.Verbatim, arg.Extra))
}

// UpdateTranslationStateParams carries every review field; all are written.
type UpdateTranslationStateParams struct {
	ID               int64
	Approved         bool
	ApprovedUserID   sql.NullInt64
	ApprovedDate     sql.NullTime
	UnapprovedUserID sql.NullInt64
	UnapprovedDate   sql.NullTime
	Rejected         bool
	RejectedUserID   sql.NullInt64
	RejectedDate     sql.NullTime
	UnrejectedUserID sql.NullInt64
	UnrejectedDate   sql.NullTime
}

func (q *Queries) UpdateTranslationState(ctx context.Context, arg UpdateTranslationStateParams) error {
	return q.execOne(ctx, q.sb.Update("translations").
		SetMap(map[string]any{
			"approved":           arg.Approved,
			"approved_user_id":   arg.ApprovedUserID,
			"approved_date":      arg.ApprovedDate,
			"unapproved_user_id": arg.UnapprovedUserID,
			"unapproved_date":    arg.UnapprovedDate,
			"rejected":           arg.Rejected,
			"rejected_user_id":   arg.RejectedUserID,
			"rejected_date":      arg.RejectedDate,
			"unrejected_user_id": arg.UnrejectedUserID,
			"unrejected_date":    arg.UnrejectedDate,
		}).
		Where(sq.Eq{"id": arg.ID}))
}

// ClaimTranslatedEntity records that the entity has a translation in the
// locale. It reports true only for the call that created the row, which makes
// it the atomic "first translation" test under any isolation level.
func (q *Queries) ClaimTranslatedEntity(ctx context.Context, entityID, localeID int64, at time.Time) (bool, error) {
	res, err := q.exec(ctx, q.sb.Insert("translated_entities").
		Columns("entity_id", "locale_id", "created_at").
		Values(entityID, localeID, at).
		Suffix("ON CONFLICT (entity_id, locale_id) DO NOTHING"))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

