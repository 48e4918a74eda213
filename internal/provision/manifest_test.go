package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/errors"
)

const sample = `
users:
  - username: admin
    email: admin@example.com
locales:
  - code: fr
    name: French
projects:
  - slug: firefox
    name: Firefox
    locales: [fr, de]
    resources:
      - path: browser/main.ftl
        entities:
          - key: hello
            string: Hello world
          - key: old
            string: Old string
            obsolete: true
`

func setupDB(t *testing.T) *database.Context {
	t.Helper()
	ctx, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDatabase(ctx) })
	return ctx
}

func TestApplyIsIdempotent(t *testing.T) {
	dbCtx := setupDB(t)
	ctx := context.Background()

	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	first, err := Apply(ctx, dbCtx, m)
	require.NoError(t, err)
	assert.Equal(t, &Result{Users: 1, Locales: 2, Projects: 1, Resources: 1, Entities: 2}, first)

	_, err = Apply(ctx, dbCtx, m)
	require.NoError(t, err)

	cat := database.NewCatalogRepository(dbCtx)
	project, err := cat.FindProject(ctx, "firefox")
	require.NoError(t, err)
	require.NotNil(t, project)

	locales, err := cat.ListProjectLocales(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, locales, 2)

	de, err := cat.FindLocale(ctx, "de")
	require.NoError(t, err)
	require.NotNil(t, de)
	assert.Equal(t, "de", de.Name)

	q, err := dbCtx.Q()
	require.NoError(t, err)
	active, err := q.ListActiveEntities(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "hello", active[0].Entity.Key)
}

func TestParseRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		validate bool
	}{
		{"unknown field", "projects:\n  - slug: a\n    colour: red\n", false},
		{"not yaml", "projects: [", false},
		{"missing slug", "projects:\n  - name: A\n", true},
		{"missing entity key", "projects:\n  - slug: a\n    resources:\n      - path: p\n        entities:\n          - string: s\n", true},
		{"missing username", "users:\n  - email: a@b\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			if tt.validate {
				assert.True(t, errors.IsValidationError(err), "got %v", err)
			} else {
				assert.True(t, errors.Is(err, errors.ErrInvalidInput), "got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Projects, 1)
	assert.Equal(t, []string{"fr", "de"}, m.Projects[0].Locales)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("users: {"), 0o644))
	_, err = Load(bad)
	var pe *errors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, bad, pe.File)
}
