package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/logging"
	"github.com/locsync/locsync/internal/services"
)

// Review runs interactive review transitions on translations.
type Review struct {
	db           *database.Context
	users        *services.UserService
	translations *services.TranslationService
	propagator   *services.Propagator
	memories     *services.MemoryService
}

// NewReview creates a Review use case.
func NewReview(dbCtx *database.Context) *Review {
	now := func() time.Time { return time.Now().UTC() }
	return &Review{
		db:           dbCtx,
		users:        services.NewUserService(dbCtx, ""),
		translations: services.NewTranslationService(now),
		propagator:   services.NewPropagator(),
		memories:     services.NewMemoryService(now),
	}
}

// ReviewResult is the state after a transition. For Amend, Translation is the
// newly approved sibling and Rejected the amended row.
type ReviewResult struct {
	Translation database.TranslationRecord
	Rejected    *database.TranslationRecord
	Created     bool
}

type transitionFunc func(ctx context.Context, q *sqldb.Queries, id, actorID int64) (*services.Transition, error)

// Approve approves a translation as actor.
func (u *Review) Approve(ctx context.Context, id int64, actor string) (*ReviewResult, error) {
	return u.transition(ctx, "approve", id, actor, u.translations.Approve)
}

// Unapprove withdraws a translation's approval as actor.
func (u *Review) Unapprove(ctx context.Context, id int64, actor string) (*ReviewResult, error) {
	return u.transition(ctx, "unapprove", id, actor, u.translations.Unapprove)
}

// Reject rejects a translation as actor.
func (u *Review) Reject(ctx context.Context, id int64, actor string) (*ReviewResult, error) {
	return u.transition(ctx, "reject", id, actor, u.translations.Reject)
}

func (u *Review) transition(ctx context.Context, op string, id int64, actor string, fn transitionFunc) (*ReviewResult, error) {
	user, err := u.users.Lookup(ctx, actor)
	if err != nil {
		return nil, err
	}

	var result ReviewResult
	err = u.db.RunInTx(ctx, func(ctx context.Context, q *sqldb.Queries) error {
		res, err := fn(ctx, q, id, user.ID)
		if err != nil {
			return err
		}
		if err := u.propagator.Apply(ctx, q, res.Flips); err != nil {
			return err
		}
		result.Translation = res.Translation
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Str("op", op).
		Int64("translation_id", id).
		Str("actor", user.Username).
		Msg("translation reviewed")
	return &result, nil
}

// Amend replaces the text of a translation: the row is rejected and a sibling
// carrying text is approved, both or neither.
func (u *Review) Amend(ctx context.Context, id int64, text, actor string) (*ReviewResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewValidationError("text", text, "amended text must not be empty")
	}
	user, err := u.users.Lookup(ctx, actor)
	if err != nil {
		return nil, err
	}

	var result ReviewResult
	err = u.db.RunInTx(ctx, func(ctx context.Context, q *sqldb.Queries) error {
		res, err := u.translations.Amend(ctx, q, id, text, user.ID)
		if err != nil {
			return err
		}
		if res.Created != nil {
			if err := u.propagator.Created(ctx, q, res.Created); err != nil {
				return err
			}
			if _, err := u.memories.Capture(ctx, q, res.Created.Translation); err != nil {
				return err
			}
		}
		if err := u.propagator.Apply(ctx, q, res.Flips); err != nil {
			return err
		}
		rejected := res.Rejected
		result = ReviewResult{
			Translation: res.Approved,
			Rejected:    &rejected,
			Created:     res.Created != nil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Int64("translation_id", id).
		Int64("approved_id", result.Translation.ID).
		Bool("created", result.Created).
		Str("actor", user.Username).
		Msg("translation amended")
	return &result, nil
}

// History lists the translation and all of its siblings, oldest first.
func (u *Review) History(ctx context.Context, id int64) ([]database.TranslationRecord, error) {
	q, err := u.db.Q()
	if err != nil {
		return nil, err
	}
	tr, err := u.translations.Get(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return u.translations.Siblings(ctx, q, tr.EntityID, tr.LocaleID)
}
