package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/record"
	"github.com/locsync/locsync/internal/report"
)

func TestMissingReport(t *testing.T) {
	dbCtx := setupCatalog(t)
	ctx := context.Background()

	_, err := NewImporter(dbCtx, "admin").Import(ctx, record.Slice{
		{Source: "Quit", Target: "Quitter", Language: "fr"},
	}, "firefox", nil)
	require.NoError(t, err)

	uc := NewMissingReport(dbCtx)

	condensed, err := uc.Build(ctx, "firefox", "fr-CA", report.ModeCondensed)
	require.NoError(t, err)
	assert.Equal(t, 3, condensed.Count)
	assert.Equal(t, "fr", condensed.Locale)
	require.Len(t, condensed.Sheet.Rows, 2)
	assert.Equal(t, "main.ftl:hello;menu.ftl:hello", condensed.Sheet.Rows[0][0])
	assert.Equal(t, "main.ftl:bye", condensed.Sheet.Rows[1][0])

	single, err := uc.Build(ctx, "firefox", "fr", report.ModeSingle)
	require.NoError(t, err)
	assert.Len(t, single.Sheet.Rows, 3)

	_, err = uc.Build(ctx, "firefox", "de", report.ModeSingle)
	assert.True(t, errors.IsNotFound(err))
}

func TestStatsUseCase(t *testing.T) {
	dbCtx := setupCatalog(t)
	ctx := context.Background()
	_, err := NewImporter(dbCtx, "admin").Import(ctx, record.Slice{
		{Source: "Goodbye", Target: "Au revoir", Language: "fr"},
	}, "firefox", nil)
	require.NoError(t, err)

	stats, err := NewStats(dbCtx).Project(ctx, "firefox")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Entities)
	assert.EqualValues(t, 1, stats.Project.TranslatedStrings)
	assert.EqualValues(t, 0, stats.Project.ApprovedStrings)
	assert.Empty(t, stats.Drift())
}
