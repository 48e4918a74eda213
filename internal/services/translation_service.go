package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"
)

// ApprovalFlip records a persisted change of a translation's approved flag.
// Approved holds the new value.
type ApprovalFlip struct {
	TranslationID int64
	EntityID      int64
	LocaleID      int64
	Approved      bool
}

// NewTranslation describes a translation to insert.
type NewTranslation struct {
	EntityID       int64
	LocaleID       int64
	String         string
	EntityDocument string
	UserID         *int64
	Date           time.Time
	Approved       bool
	ApprovedUserID *int64
	ApprovedDate   *time.Time
	Fuzzy          bool
	Verbatim       bool
	Extra          string
	// Exclusive makes Create fail with AlreadyExistsError when the entity
	// already has any translation in the locale.
	Exclusive bool
}

// Creation is the result of inserting a translation.
type Creation struct {
	Translation database.TranslationRecord
	// First is true when this is the first translation of the entity into the locale.
	First bool
	// Flips holds the demotions of approved siblings. The inserted row is
	// counted once as translated whatever its approved flag, so it never
	// appears here.
	Flips []ApprovalFlip
}

// Transition is the result of a review operation.
type Transition struct {
	Translation database.TranslationRecord
	Flips       []ApprovalFlip
}

// Amendment is the result of Amend.
type Amendment struct {
	Rejected database.TranslationRecord
	Approved database.TranslationRecord
	// Created is set when a new sibling was inserted rather than reused. It
	// must be propagated with Propagator.Created before Flips are applied.
	Created *Creation
	Flips   []ApprovalFlip
}

// TranslationService implements the translation review state machine. Its
// methods run on transaction-scoped queries supplied by the caller, which
// also owns propagation of the returned flips.
type TranslationService struct {
	now func() time.Time
}

// NewTranslationService creates a new TranslationService. A nil clock means time.Now in UTC.
func NewTranslationService(now func() time.Time) *TranslationService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TranslationService{now: now}
}

// EntityDocument is the searchable text stored with a translation.
func EntityDocument(key, target string) string {
	return strings.TrimSpace(key + " " + target)
}

// Get returns a translation by id.
func (s *TranslationService) Get(ctx context.Context, q *sqldb.Queries, id int64) (*database.TranslationRecord, error) {
	row, err := q.GetTranslation(ctx, id)
	if err != nil {
		return nil, database.NotFound(err, "translation", id)
	}
	rec := database.TranslationRecordFromRow(row)
	return &rec, nil
}

// Siblings returns every translation of the entity into the locale, oldest first.
func (s *TranslationService) Siblings(ctx context.Context, q *sqldb.Queries, entityID, localeID int64) ([]database.TranslationRecord, error) {
	rows, err := q.ListSiblings(ctx, entityID, localeID)
	if err != nil {
		return nil, err
	}
	out := make([]database.TranslationRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, database.TranslationRecordFromRow(row))
	}
	return out, nil
}

// Create validates and inserts a translation. Creating an approved
// translation demotes any approved sibling first.
func (s *TranslationService) Create(ctx context.Context, q *sqldb.Queries, in NewTranslation) (*Creation, error) {
	rec := database.TranslationRecord{
		EntityID:       in.EntityID,
		LocaleID:       in.LocaleID,
		UserID:         in.UserID,
		String:         in.String,
		EntityDocument: in.EntityDocument,
		Date:           in.Date,
		Approved:       in.Approved,
		ApprovedUserID: in.ApprovedUserID,
		ApprovedDate:   in.ApprovedDate,
		Fuzzy:          in.Fuzzy,
		Verbatim:       in.Verbatim,
		Extra:          in.Extra,
	}
	if rec.Extra == "" {
		rec.Extra = "{}"
	}
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	if err := ValidateTranslation(rec); err != nil {
		return nil, err
	}

	first, err := q.ClaimTranslatedEntity(ctx, rec.EntityID, rec.LocaleID, s.now())
	if err != nil {
		return nil, err
	}
	if !first && in.Exclusive {
		return nil, errors.NewAlreadyExistsError("translation", fmt.Sprintf("entity %d locale %d", rec.EntityID, rec.LocaleID))
	}

	var flips []ApprovalFlip
	if rec.Approved && !first {
		demoted, err := s.demoteApproved(ctx, q, rec.EntityID, rec.LocaleID, 0, *rec.ApprovedUserID, *rec.ApprovedDate)
		if err != nil {
			return nil, err
		}
		flips = append(flips, demoted...)
	}

	id, err := q.InsertTranslation(ctx, database.TranslationInsertParams(rec))
	if err != nil {
		return nil, err
	}
	rec.ID = id

	return &Creation{Translation: rec, First: first, Flips: flips}, nil
}

// Approve marks the translation approved by actorID. Any other approved
// sibling is unapproved by the same actor.
func (s *TranslationService) Approve(ctx context.Context, q *sqldb.Queries, id, actorID int64) (*Transition, error) {
	cur, err := s.lock(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if cur.Approved {
		return nil, errors.NewInvalidStateError("translation", fmt.Sprint(id), "approve", "already approved")
	}

	now := s.now()
	flips, err := s.demoteApproved(ctx, q, cur.EntityID, cur.LocaleID, cur.ID, actorID, now)
	if err != nil {
		return nil, err
	}

	next := cur
	next.Approved = true
	next.ApprovedUserID = &actorID
	next.ApprovedDate = &now
	if cur.Rejected {
		next.UnrejectedUserID = &actorID
		next.UnrejectedDate = &now
	}
	next.Rejected = false
	next.RejectedUserID = nil
	next.RejectedDate = nil
	next.UnapprovedUserID = nil
	next.UnapprovedDate = nil

	flip, err := s.save(ctx, q, cur, next)
	if err != nil {
		return nil, err
	}
	return &Transition{Translation: next, Flips: append(flips, flip...)}, nil
}

// Unapprove withdraws the approval of an approved translation.
func (s *TranslationService) Unapprove(ctx context.Context, q *sqldb.Queries, id, actorID int64) (*Transition, error) {
	cur, err := s.lock(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if !cur.Approved {
		return nil, errors.NewInvalidStateError("translation", fmt.Sprint(id), "unapprove", "not approved")
	}

	next := unapproved(cur, actorID, s.now())
	flip, err := s.save(ctx, q, cur, next)
	if err != nil {
		return nil, err
	}
	return &Transition{Translation: next, Flips: flip}, nil
}

// Reject marks the translation rejected, clearing any approval.
func (s *TranslationService) Reject(ctx context.Context, q *sqldb.Queries, id, actorID int64) (*Transition, error) {
	cur, err := s.lock(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if cur.Rejected {
		return nil, errors.NewInvalidStateError("translation", fmt.Sprint(id), "reject", "already rejected")
	}

	now := s.now()
	next := cur
	next.Approved = false
	next.ApprovedUserID = nil
	next.ApprovedDate = nil
	next.UnapprovedUserID = nil
	next.UnapprovedDate = nil
	next.Rejected = true
	next.RejectedUserID = &actorID
	next.RejectedDate = &now

	flip, err := s.save(ctx, q, cur, next)
	if err != nil {
		return nil, err
	}
	return &Transition{Translation: next, Flips: flip}, nil
}

// Amend replaces the translation with text: the current row is rejected and
// a sibling carrying text is approved. An existing sibling with identical text
// is reused, otherwise a copy is inserted. Either both steps succeed or the
// caller's transaction must be rolled back.
func (s *TranslationService) Amend(ctx context.Context, q *sqldb.Queries, id int64, text string, actorID int64) (*Amendment, error) {
	cur, err := s.lock(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if cur.String == text {
		return nil, errors.NewInvalidStateError("translation", fmt.Sprint(id), "amend", "text unchanged")
	}

	siblings, err := s.Siblings(ctx, q, cur.EntityID, cur.LocaleID)
	if err != nil {
		return nil, err
	}

	var chosenID int64
	for _, sib := range siblings {
		if sib.ID != cur.ID && sib.String == text {
			chosenID = sib.ID
			break
		}
	}

	result := &Amendment{}
	if chosenID == 0 {
		entity, err := entityOf(ctx, q, cur.EntityID)
		if err != nil {
			return nil, err
		}
		created, err := s.Create(ctx, q, NewTranslation{
			EntityID:       cur.EntityID,
			LocaleID:       cur.LocaleID,
			String:         text,
			EntityDocument: EntityDocument(entity.Key, text),
			UserID:         &actorID,
			Date:           s.now(),
			Fuzzy:          cur.Fuzzy,
			Verbatim:       cur.Verbatim,
			Extra:          cur.Extra,
		})
		if err != nil {
			return nil, err
		}
		result.Created = created
		chosenID = created.Translation.ID
	}

	result.Rejected = cur
	if !cur.Rejected {
		rejected, err := s.Reject(ctx, q, cur.ID, actorID)
		if err != nil {
			return nil, err
		}
		result.Rejected = rejected.Translation
		result.Flips = append(result.Flips, rejected.Flips...)
	}

	approved, err := s.Approve(ctx, q, chosenID, actorID)
	if err != nil {
		return nil, err
	}
	result.Approved = approved.Translation
	result.Flips = append(result.Flips, approved.Flips...)
	return result, nil
}

func (s *TranslationService) lock(ctx context.Context, q *sqldb.Queries, id int64) (database.TranslationRecord, error) {
	row, err := q.GetTranslationForUpdate(ctx, id)
	if err != nil {
		return database.TranslationRecord{}, database.NotFound(err, "translation", id)
	}
	return database.TranslationRecordFromRow(row), nil
}

// save validates next and persists its review fields. It returns a flip when
// the approved flag changed relative to cur, the state read in this transaction.
func (s *TranslationService) save(ctx context.Context, q *sqldb.Queries, cur, next database.TranslationRecord) ([]ApprovalFlip, error) {
	if err := ValidateTranslation(next); err != nil {
		return nil, err
	}
	if err := q.UpdateTranslationState(ctx, database.TranslationStateParams(next)); err != nil {
		return nil, database.NotFound(err, "translation", next.ID)
	}
	if cur.Approved == next.Approved {
		return nil, nil
	}
	return []ApprovalFlip{flipOf(next)}, nil
}

func (s *TranslationService) demoteApproved(ctx context.Context, q *sqldb.Queries, entityID, localeID, exceptID, actorID int64, at time.Time) ([]ApprovalFlip, error) {
	siblings, err := s.Siblings(ctx, q, entityID, localeID)
	if err != nil {
		return nil, err
	}
	var flips []ApprovalFlip
	for _, sib := range siblings {
		if !sib.Approved || sib.ID == exceptID {
			continue
		}
		flip, err := s.save(ctx, q, sib, unapproved(sib, actorID, at))
		if err != nil {
			return nil, err
		}
		flips = append(flips, flip...)
	}
	return flips, nil
}

func unapproved(t database.TranslationRecord, actorID int64, at time.Time) database.TranslationRecord {
	t.Approved = false
	t.ApprovedUserID = nil
	t.ApprovedDate = nil
	t.UnapprovedUserID = &actorID
	t.UnapprovedDate = &at
	return t
}

func flipOf(t database.TranslationRecord) ApprovalFlip {
	return ApprovalFlip{
		TranslationID: t.ID,
		EntityID:      t.EntityID,
		LocaleID:      t.LocaleID,
		Approved:      t.Approved,
	}
}

// ValidateTranslation checks the review-field invariants of a translation.
func ValidateTranslation(t database.TranslationRecord) error {
	if t.EntityID == 0 {
		return errors.NewValidationError("entity_id", t.EntityID, "entity is required")
	}
	if t.LocaleID == 0 {
		return errors.NewValidationError("locale_id", t.LocaleID, "locale is required")
	}
	if t.Approved && t.Rejected {
		return errors.NewValidationError("approved", t.Approved, "a translation cannot be approved and rejected")
	}

	if t.Approved {
		if t.ApprovedUserID == nil {
			return errors.NewValidationError("approved_user_id", nil, "required when approved")
		}
		if t.ApprovedDate == nil {
			return errors.NewValidationError("approved_date", nil, "required when approved")
		}
	} else if t.ApprovedUserID != nil || t.ApprovedDate != nil {
		return errors.NewValidationError("approved_user_id", t.ApprovedUserID, "must be empty unless approved")
	}

	if t.Rejected {
		if t.RejectedUserID == nil {
			return errors.NewValidationError("rejected_user_id", nil, "required when rejected")
		}
		if t.RejectedDate == nil {
			return errors.NewValidationError("rejected_date", nil, "required when rejected")
		}
	} else if t.RejectedUserID != nil || t.RejectedDate != nil {
		return errors.NewValidationError("rejected_user_id", t.RejectedUserID, "must be empty unless rejected")
	}

	return nil
}
