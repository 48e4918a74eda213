package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"
)

func TestCreateCountsFirstTranslationOnce(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())

	first := f.create(t, svc, f.hello, "Bonjour le monde")
	assert.True(t, first.First)
	assert.Empty(t, first.Flips)
	f.requireCounters(t, f.hello, 1, 0)
	f.requireLatest(t, first.Translation.ID)

	second := f.create(t, svc, f.hello, "Salut le monde")
	assert.False(t, second.First)
	f.requireCounters(t, f.hello, 1, 0)
	f.requireLatest(t, second.Translation.ID)

	q, err := f.db.Q()
	require.NoError(t, err)
	siblings, err := svc.Siblings(context.Background(), q, f.hello, f.frID)
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, first.Translation.ID, siblings[0].ID)
}

func TestCreateExclusiveRejectsExistingPair(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	f.create(t, svc, f.hello, "Bonjour")

	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		_, err := svc.Create(ctx, q, NewTranslation{
			EntityID:  f.hello,
			LocaleID:  f.frID,
			String:    "Bonjour encore",
			Exclusive: true,
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))

	q, err := f.db.Q()
	require.NoError(t, err)
	rows, err := q.ListSiblings(context.Background(), f.hello, f.frID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCreateApprovedCountsAsTranslated(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	approvedAt := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	var created *Creation
	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		var err error
		created, err = svc.Create(ctx, q, NewTranslation{
			EntityID:       f.hello,
			LocaleID:       f.frID,
			String:         "Bonjour",
			UserID:         &f.userID,
			Approved:       true,
			ApprovedUserID: &f.userID,
			ApprovedDate:   &approvedAt,
		})
		if err != nil {
			return err
		}
		return NewPropagator().Created(ctx, q, created)
	})
	require.NoError(t, err)

	assert.True(t, created.First)
	assert.Empty(t, created.Flips)
	assert.True(t, f.translation(t, created.Translation.ID).Approved)
	f.requireCounters(t, f.hello, 1, 0)
	f.requireLatest(t, created.Translation.ID)
}

func TestCreateApprovedFlipsOnlyDemotedSiblings(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	a := f.create(t, svc, f.hello, "Bonjour").Translation

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Approve(ctx, q, a.ID, f.reviewer)
		if err != nil {
			return nil, err
		}
		return res.Flips, nil
	})
	require.NoError(t, err)
	f.requireCounters(t, f.hello, 0, 1)

	approvedAt := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	var created *Creation
	err = f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		var err error
		created, err = svc.Create(ctx, q, NewTranslation{
			EntityID:       f.hello,
			LocaleID:       f.frID,
			String:         "Salut",
			UserID:         &f.userID,
			Approved:       true,
			ApprovedUserID: &f.userID,
			ApprovedDate:   &approvedAt,
		})
		if err != nil {
			return err
		}
		return NewPropagator().Created(ctx, q, created)
	})
	require.NoError(t, err)

	assert.False(t, created.First)
	require.Len(t, created.Flips, 1)
	assert.Equal(t, a.ID, created.Flips[0].TranslationID)
	assert.False(t, created.Flips[0].Approved)
	assert.False(t, f.translation(t, a.ID).Approved)
	assert.True(t, f.translation(t, created.Translation.ID).Approved)
	f.requireCounters(t, f.hello, 1, 0)
}

func TestCreateValidatesApprovalFields(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())

	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		_, err := svc.Create(ctx, q, NewTranslation{
			EntityID: f.hello,
			LocaleID: f.frID,
			String:   "Bonjour",
			Approved: true,
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	f.requireNoPair(t, f.hello)
}

func TestApproveAndUnapprove(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	tr := f.create(t, svc, f.hello, "Bonjour").Translation

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Approve(ctx, q, tr.ID, f.reviewer)
		if err != nil {
			return nil, err
		}
		return res.Flips, nil
	})
	require.NoError(t, err)
	f.requireCounters(t, f.hello, 0, 1)

	got := f.translation(t, tr.ID)
	assert.True(t, got.Approved)
	require.NotNil(t, got.ApprovedUserID)
	assert.Equal(t, f.reviewer, *got.ApprovedUserID)
	assert.NotNil(t, got.ApprovedDate)

	err = f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		_, err := svc.Approve(ctx, q, tr.ID, f.reviewer)
		return nil, err
	})
	assert.True(t, errors.IsInvalidState(err))

	err = f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Unapprove(ctx, q, tr.ID, f.reviewer)
		if err != nil {
			return nil, err
		}
		return res.Flips, nil
	})
	require.NoError(t, err)
	f.requireCounters(t, f.hello, 1, 0)

	got = f.translation(t, tr.ID)
	assert.False(t, got.Approved)
	assert.Nil(t, got.ApprovedUserID)
	require.NotNil(t, got.UnapprovedUserID)
	assert.Equal(t, f.reviewer, *got.UnapprovedUserID)

	err = f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		_, err := svc.Unapprove(ctx, q, tr.ID, f.reviewer)
		return nil, err
	})
	assert.True(t, errors.IsInvalidState(err))
	f.requireCounters(t, f.hello, 1, 0)
}

func TestApproveDemotesApprovedSibling(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	a := f.create(t, svc, f.hello, "Bonjour").Translation
	b := f.create(t, svc, f.hello, "Salut").Translation

	approve := func(id int64) error {
		return f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
			res, err := svc.Approve(ctx, q, id, f.reviewer)
			if err != nil {
				return nil, err
			}
			return res.Flips, nil
		})
	}
	require.NoError(t, approve(a.ID))
	require.NoError(t, approve(b.ID))

	f.requireCounters(t, f.hello, 0, 1)
	assert.False(t, f.translation(t, a.ID).Approved)
	assert.True(t, f.translation(t, b.ID).Approved)
}

func TestRejectAndReapprove(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	tr := f.create(t, svc, f.hello, "Bonjour").Translation

	run := func(op func(ctx context.Context, q *sqldb.Queries, id, actor int64) (*Transition, error)) error {
		return f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
			res, err := op(ctx, q, tr.ID, f.reviewer)
			if err != nil {
				return nil, err
			}
			return res.Flips, nil
		})
	}

	require.NoError(t, run(svc.Approve))
	require.NoError(t, run(svc.Reject))
	f.requireCounters(t, f.hello, 1, 0)

	got := f.translation(t, tr.ID)
	assert.True(t, got.Rejected)
	assert.False(t, got.Approved)
	assert.Nil(t, got.ApprovedUserID)
	assert.Nil(t, got.ApprovedDate)
	require.NotNil(t, got.RejectedUserID)
	assert.Equal(t, "rejected", got.State())

	assert.True(t, errors.IsInvalidState(run(svc.Reject)))

	require.NoError(t, run(svc.Approve))
	got = f.translation(t, tr.ID)
	assert.True(t, got.Approved)
	assert.False(t, got.Rejected)
	assert.Nil(t, got.RejectedUserID)
	require.NotNil(t, got.UnrejectedUserID)
	assert.Equal(t, f.reviewer, *got.UnrejectedUserID)
	f.requireCounters(t, f.hello, 0, 1)
}

func TestRejectDraftLeavesCounters(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	tr := f.create(t, svc, f.hello, "Bonjour").Translation

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Reject(ctx, q, tr.ID, f.reviewer)
		if err != nil {
			return nil, err
		}
		assert.Empty(t, res.Flips)
		return res.Flips, nil
	})
	require.NoError(t, err)
	f.requireCounters(t, f.hello, 1, 0)
}

func TestAmendCreatesApprovedSibling(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	tr := f.create(t, svc, f.hello, "Bonjour").Translation

	var amended *Amendment
	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		var err error
		amended, err = svc.Amend(ctx, q, tr.ID, "Bonjour tout le monde", f.reviewer)
		if err != nil {
			return err
		}
		p := NewPropagator()
		if err := p.Created(ctx, q, amended.Created); err != nil {
			return err
		}
		return p.Apply(ctx, q, amended.Flips)
	})
	require.NoError(t, err)
	require.NotNil(t, amended.Created)
	assert.False(t, amended.Created.First)

	old := f.translation(t, tr.ID)
	assert.True(t, old.Rejected)
	assert.False(t, old.Approved)

	fresh := f.translation(t, amended.Approved.ID)
	assert.True(t, fresh.Approved)
	assert.False(t, fresh.Rejected)
	assert.Equal(t, "Bonjour tout le monde", fresh.String)
	require.NotNil(t, fresh.UserID)
	assert.Equal(t, f.reviewer, *fresh.UserID)

	f.requireCounters(t, f.hello, 0, 1)
	f.requireLatest(t, fresh.ID)
}

func TestAmendReusesSiblingWithSameText(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	a := f.create(t, svc, f.hello, "Bonjour").Translation
	b := f.create(t, svc, f.hello, "Salut").Translation

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Amend(ctx, q, a.ID, "Salut", f.reviewer)
		if err != nil {
			return nil, err
		}
		assert.Nil(t, res.Created)
		assert.Equal(t, b.ID, res.Approved.ID)
		return res.Flips, nil
	})
	require.NoError(t, err)

	q, err := f.db.Q()
	require.NoError(t, err)
	rows, err := q.ListSiblings(context.Background(), f.hello, f.frID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	f.requireCounters(t, f.hello, 0, 1)
}

func TestAmendRollsBackWhenApprovalFails(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	a := f.create(t, svc, f.hello, "Bonjour").Translation
	b := f.create(t, svc, f.hello, "Salut").Translation

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Approve(ctx, q, b.ID, f.reviewer)
		if err != nil {
			return nil, err
		}
		return res.Flips, nil
	})
	require.NoError(t, err)

	// b is already approved, so approving it again fails after a was rejected.
	err = f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		res, err := svc.Amend(ctx, q, a.ID, "Salut", f.reviewer)
		if err != nil {
			return nil, err
		}
		return res.Flips, nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidState(err))

	assert.False(t, f.translation(t, a.ID).Rejected)
	assert.True(t, f.translation(t, b.ID).Approved)
	f.requireCounters(t, f.hello, 0, 1)
}

func TestAmendToSameTextFails(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	tr := f.create(t, svc, f.hello, "Bonjour").Translation

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		_, err := svc.Amend(ctx, q, tr.ID, "Bonjour", f.reviewer)
		return nil, err
	})
	assert.True(t, errors.IsInvalidState(err))
}

func TestTransitionsOnMissingTranslation(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())

	err := f.transition(func(ctx context.Context, q *sqldb.Queries) ([]ApprovalFlip, error) {
		_, err := svc.Approve(ctx, q, 4242, f.reviewer)
		return nil, err
	})
	assert.True(t, errors.IsNotFound(err))
}

func TestValidateTranslation(t *testing.T) {
	user := int64(1)
	now := time.Now()
	base := database.TranslationRecord{EntityID: 1, LocaleID: 1}

	tests := []struct {
		name  string
		edit  func(r *database.TranslationRecord)
		valid bool
	}{
		{"draft", func(r *database.TranslationRecord) {}, true},
		{"approved", func(r *database.TranslationRecord) {
			r.Approved, r.ApprovedUserID, r.ApprovedDate = true, &user, &now
		}, true},
		{"approved without actor", func(r *database.TranslationRecord) {
			r.Approved, r.ApprovedDate = true, &now
		}, false},
		{"approval fields on draft", func(r *database.TranslationRecord) {
			r.ApprovedUserID = &user
		}, false},
		{"rejected", func(r *database.TranslationRecord) {
			r.Rejected, r.RejectedUserID, r.RejectedDate = true, &user, &now
		}, true},
		{"rejected without date", func(r *database.TranslationRecord) {
			r.Rejected, r.RejectedUserID = true, &user
		}, false},
		{"approved and rejected", func(r *database.TranslationRecord) {
			r.Approved, r.ApprovedUserID, r.ApprovedDate = true, &user, &now
			r.Rejected, r.RejectedUserID, r.RejectedDate = true, &user, &now
		}, false},
		{"no entity", func(r *database.TranslationRecord) { r.EntityID = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base
			tt.edit(&rec)
			err := ValidateTranslation(rec)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsValidationError(err), "got %v", err)
			}
		})
	}
}

func (f *fixture) requireNoPair(t *testing.T, entityID int64) {
	t.Helper()
	q, err := f.db.Q()
	require.NoError(t, err)
	siblings, err := q.ListSiblings(context.Background(), entityID, f.frID)
	require.NoError(t, err)
	require.Empty(t, siblings)
	rows, err := q.ListUntranslatedEntities(context.Background(), f.projectID, f.frID)
	require.NoError(t, err)
	var found bool
	for _, r := range rows {
		found = found || r.Entity.ID == entityID
	}
	require.True(t, found, "pair claim should have been rolled back")
}
