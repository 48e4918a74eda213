package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database/sqldb"
)

func TestMemoryCapture(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	mem := NewMemoryService(fixedClock())
	tr := f.create(t, svc, f.hello, "Bonjour le monde").Translation

	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		got, err := mem.Capture(ctx, q, tr)
		if err != nil {
			return err
		}
		assert.NotZero(t, got.ID)
		return nil
	})
	require.NoError(t, err)

	q, err := f.db.Q()
	require.NoError(t, err)
	memories, err := mem.ForTranslation(context.Background(), q, tr.ID)
	require.NoError(t, err)
	require.Len(t, memories, 1)

	m := memories[0]
	assert.Equal(t, "Hello world", m.Source)
	assert.Equal(t, "Bonjour le monde", m.Target)
	assert.Equal(t, f.frID, m.LocaleID)
	require.NotNil(t, m.EntityID)
	assert.Equal(t, f.hello, *m.EntityID)
	require.NotNil(t, m.ProjectID)
	assert.Equal(t, f.projectID, *m.ProjectID)
}

func TestMemoryCaptureRollsBackWithTransaction(t *testing.T) {
	f := setupFixture(t)
	svc := NewTranslationService(fixedClock())
	mem := NewMemoryService(nil)
	tr := f.create(t, svc, f.hello, "Bonjour").Translation

	err := f.db.RunInTx(context.Background(), func(ctx context.Context, q *sqldb.Queries) error {
		if _, err := mem.Capture(ctx, q, tr); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	q, err := f.db.Q()
	require.NoError(t, err)
	n, err := q.CountMemories(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
