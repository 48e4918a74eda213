package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/errors"
)

func TestLocaleServiceResolve(t *testing.T) {
	f := setupFixture(t)
	svc := NewLocaleService(f.db)
	ctx := context.Background()

	for _, code := range []string{"fr", "FR", "fr-CA", "fr_ca"} {
		loc, err := svc.Resolve(ctx, Code(code))
		require.NoError(t, err, code)
		assert.Equal(t, f.frID, loc.ID, code)
	}

	resolved, err := svc.Resolve(ctx, Code("de"))
	require.NoError(t, err)
	again, err := svc.Resolve(ctx, resolved)
	require.NoError(t, err)
	assert.Same(t, resolved, again)

	_, err = svc.Resolve(ctx, Code("ja"))
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.Resolve(ctx, Code(" "))
	assert.True(t, errors.IsValidationError(err))

	var missing *database.LocaleRecord
	_, err = svc.Resolve(ctx, missing)
	assert.True(t, errors.IsValidationError(err))
}

func TestLocaleServiceResolveKeepsRegionsApart(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := database.NewCatalogRepository(f.db)
	brazil, err := cat.GetOrCreateLocale(ctx, "pt-BR", "Portuguese (Brazil)")
	require.NoError(t, err)
	portugal, err := cat.GetOrCreateLocale(ctx, "pt-PT", "Portuguese (Portugal)")
	require.NoError(t, err)
	svc := NewLocaleService(f.db)

	for code, want := range map[string]int64{
		"pt-BR": brazil,
		"pt_br": brazil,
		"PT-pt": portugal,
		"pt_PT": portugal,
		"fr-CA": f.frID,
	} {
		loc, err := svc.Resolve(ctx, Code(code))
		require.NoError(t, err, code)
		assert.Equal(t, want, loc.ID, code)
	}

	// no base "pt" locale to fall back to
	_, err = svc.Resolve(ctx, Code("pt-AO"))
	assert.True(t, errors.IsNotFound(err))
}

func TestProjectServiceLookup(t *testing.T) {
	f := setupFixture(t)
	svc := NewProjectService(f.db)
	ctx := context.Background()

	bySlug, err := svc.Lookup(ctx, "firefox")
	require.NoError(t, err)
	byName, err := svc.Lookup(ctx, "Firefox")
	require.NoError(t, err)
	assert.Equal(t, bySlug.ID, byName.ID)

	_, err = svc.Lookup(ctx, "thunderbird")
	assert.True(t, errors.IsNotFound(err))

	locales, err := svc.ConfiguredLocales(ctx, f.projectID)
	require.NoError(t, err)
	require.Len(t, locales, 1)
	assert.Equal(t, "fr", locales[0].LocaleCode)
}

func TestUserServiceLookupOrDefault(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.db, "admin")

	user, err := svc.LookupOrDefault(ctx, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, f.reviewer, user.ID)

	user, err = svc.LookupOrDefault(ctx, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, f.userID, user.ID)

	user, err = svc.LookupOrDefault(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = svc.Lookup(ctx, "someone-else")
	assert.True(t, errors.IsNotFound(err))

	_, err = NewUserService(f.db, "ghost").Default(ctx)
	assert.True(t, errors.IsConfigError(err))
	assert.True(t, errors.IsNotFound(err))

	_, err = NewUserService(f.db, "").Default(ctx)
	assert.True(t, errors.IsConfigError(err))
}
