package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/outcome"
	"github.com/locsync/locsync/internal/record"
)

// importBye imports one approved translation of main.ftl:bye and returns its id.
func importBye(t *testing.T, importer *Importer) int64 {
	t.Helper()
	sink := outcome.NewMemorySink()
	_, err := importer.Import(context.Background(), record.Slice{
		{Source: "Goodbye", Target: "Au revoir", Language: "fr", Resource: "main.ftl", Key: "bye"},
	}, "firefox", sink)
	require.NoError(t, err)
	rows := sink.Rows()
	require.Len(t, rows, 1)
	require.Equal(t, outcome.Import, rows[0].Outcome)
	return rows[0].TranslationID
}

func TestReviewTransitions(t *testing.T) {
	dbCtx := setupCatalog(t)
	ctx := context.Background()
	id := importBye(t, NewImporter(dbCtx, "admin"))
	review := NewReview(dbCtx)
	requireCounters(t, dbCtx, 1, 0)

	// The import counted the row as translated, so withdrawing its
	// approval still moves one unit from approved to translated.
	res, err := review.Unapprove(ctx, id, "reviewer")
	require.NoError(t, err)
	assert.False(t, res.Translation.Approved)
	requireCounters(t, dbCtx, 2, -1)

	_, err = review.Unapprove(ctx, id, "reviewer")
	assert.True(t, errors.IsInvalidState(err))

	_, err = review.Reject(ctx, id, "reviewer")
	require.NoError(t, err)
	requireCounters(t, dbCtx, 2, -1)

	res, err = review.Approve(ctx, id, "reviewer")
	require.NoError(t, err)
	assert.True(t, res.Translation.Approved)
	assert.NotNil(t, res.Translation.UnrejectedUserID)
	requireCounters(t, dbCtx, 1, 0)

	_, err = review.Approve(ctx, id, "ghost")
	assert.True(t, errors.IsNotFound(err))
}

func TestReviewAmend(t *testing.T) {
	dbCtx := setupCatalog(t)
	ctx := context.Background()
	id := importBye(t, NewImporter(dbCtx, "admin"))
	review := NewReview(dbCtx)

	res, err := review.Amend(ctx, id, "À bientôt", "reviewer")
	require.NoError(t, err)
	assert.True(t, res.Created)
	require.NotNil(t, res.Rejected)
	assert.True(t, res.Rejected.Rejected)
	assert.False(t, res.Rejected.Approved)
	assert.True(t, res.Translation.Approved)
	assert.Equal(t, "À bientôt", res.Translation.String)
	requireCounters(t, dbCtx, 1, 0)

	history, err := review.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	approved := 0
	for _, tr := range history {
		assert.False(t, tr.Approved && tr.Rejected)
		if tr.Approved {
			approved++
		}
	}
	assert.Equal(t, 1, approved)

	q, err := dbCtx.Q()
	require.NoError(t, err)
	n, err := q.CountMemories(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// Amending back to the original text reuses the rejected row.
	res, err = review.Amend(ctx, res.Translation.ID, "Au revoir", "reviewer")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, id, res.Translation.ID)
	assert.False(t, res.Translation.Rejected)
	requireCounters(t, dbCtx, 1, 0)
}

func TestReviewAmendValidation(t *testing.T) {
	dbCtx := setupCatalog(t)
	ctx := context.Background()
	id := importBye(t, NewImporter(dbCtx, "admin"))
	review := NewReview(dbCtx)

	_, err := review.Amend(ctx, id, "  ", "reviewer")
	assert.True(t, errors.IsValidationError(err))

	_, err = review.Amend(ctx, id, "Au revoir", "reviewer")
	assert.True(t, errors.IsInvalidState(err))

	_, err = review.Amend(ctx, 9999, "x", "reviewer")
	assert.True(t, errors.IsNotFound(err))

	history, err := review.History(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	requireCounters(t, dbCtx, 1, 0)
}
